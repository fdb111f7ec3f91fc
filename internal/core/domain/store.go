package domain

import "time"

// StoreOrigin records how a store was populated.
type StoreOrigin string

// Store origins.
const (
	StoreOriginCrawl    StoreOrigin = "crawl"
	StoreOriginTargeted StoreOrigin = "targeted"
	StoreOriginManual   StoreOrigin = "manual"
)

// Store describes a named collection of embedded chunks for one equipment query.
// The chunks themselves are held by the chunk store.
type Store struct {
	ID           string      `json:"id"`
	EquipmentKey string      `json:"equipment_key"`
	Origin       StoreOrigin `json:"origin"`
	ChunkCount   int         `json:"chunk_count"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IngestionResult summarises one ingestion run. It is never mutated after
// the run returns it.
type IngestionResult struct {
	Success          bool          `json:"success"`
	DocumentsFound   int           `json:"documents_found"`
	DocumentsCrawled int           `json:"documents_crawled"`
	ChunksCreated    int           `json:"chunks_created"`
	StoreID          string        `json:"store_id,omitempty"`
	Errors           []string      `json:"errors,omitempty"`
	Elapsed          time.Duration `json:"elapsed"`

	// CompletedAt orders results produced by competing runs.
	CompletedAt time.Time `json:"completed_at"`
}
