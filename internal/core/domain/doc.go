// Package domain defines the core entities of the repair pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - EquipmentQuery: what is being repaired
//   - CrawlTarget / CrawledDocument: discovered and fetched pages
//   - DocumentChunk / Store: embedded passages grouped per equipment
//   - Diagnosis / RepairGuide: generated outputs of the pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
