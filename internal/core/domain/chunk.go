package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// DocumentChunk is a bounded passage of a document, the unit of retrieval.
type DocumentChunk struct {
	// ID is derived from (DocumentURL, Ordinal), see ChunkID.
	ID          string `json:"id"`
	DocumentURL string `json:"document_url"`
	Text        string `json:"text"`
	Ordinal     int    `json:"ordinal"`

	// Embedding is nil until the chunk has been indexed.
	Embedding []float32     `json:"-"`
	Metadata  ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries the parent document's descriptive fields.
type ChunkMetadata struct {
	Title       string      `json:"title,omitempty"`
	Source      string      `json:"source,omitempty"`
	ContentType ContentType `json:"content_type,omitempty"`
}

// ChunkID returns the deterministic identifier for the chunk at ordinal
// within the document at docURL.
func ChunkID(docURL string, ordinal int) string {
	sum := sha256.Sum256([]byte(docURL + "#" + strconv.Itoa(ordinal)))
	return "chk_" + hex.EncodeToString(sum[:8])
}

// RetrievedPassage is a chunk returned by the retriever with its score.
type RetrievedPassage struct {
	Chunk DocumentChunk `json:"chunk"`
	URL   string        `json:"url"`
	Score float64       `json:"score"`
}
