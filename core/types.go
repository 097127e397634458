package core

import "time"

// Memory is a single keyed record stored in a namespace.
type Memory struct {
	Key       string         `json:"key"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt,omitzero"`
	UpdatedAt time.Time      `json:"updatedAt,omitzero"`
}

// KeyRecord is the per-line record emitted by streaming key listings.
type KeyRecord struct {
	Key string `json:"key"`
}

// SearchMatch pairs a memory with its relevance score. Streaming search
// endpoints emit one SearchMatch per NDJSON line.
type SearchMatch struct {
	Memory         Memory  `json:"memory"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// Connection represents an external data-source connection (e.g. a drive or
// notes provider) attached to a namespace.
type Connection struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Settings is the namespace-level configuration document.
type Settings struct {
	Namespace        string   `json:"namespace"`
	SearchLimit      int      `json:"searchLimit"`
	EmbeddingModel   string   `json:"embeddingModel"`
	AutoSummarize    bool     `json:"autoSummarize"`
	ExcludedKeywords []string `json:"excludedKeywords,omitempty"`
}

// Document tracks an ingest submission through its processing lifecycle.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Document processing states reported by the ingest API.
const (
	DocumentStatusQueued     = "queued"
	DocumentStatusProcessing = "processing"
	DocumentStatusDone       = "done"
	DocumentStatusFailed     = "failed"
)
