// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - GenerationService: Diagnosis, distillation, synthesis, grounded search
//   - ChunkStore: Storage of embedded chunks grouped into stores
//   - CrawlCache: Per-session cache of crawled documents
//   - PageFetcher: Defensive HTTP retrieval of third-party pages
//   - NormaliserRegistry: Text extraction from HTML, PDF and plain text
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - EmbeddingService: Without it, ingestion and retrieval are skipped and
//     the guide is grounded on web search only.
//   - WebSearch: Without it, source discovery yields no candidates.
//   - PartsSearch: Without it, every part gets the default sources.
//   - PromptStore: Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
