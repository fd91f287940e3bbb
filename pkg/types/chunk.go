package types

import (
	"github.com/pgvector/pgvector-go"
)

type Chunk struct {
	ID         string          `json:"id" db:"id"`
	DocumentID string          `json:"document_id" db:"document_id"`
	ChunkIndex int             `json:"chunk_index" db:"chunk_index"`
	ChunkText  string          `json:"chunk_text" db:"chunk_text"`
	Embedding  pgvector.Vector `json:"-" db:"embedding"`
	UpdatedAt  int64           `json:"updated_at" db:"updated_at"`
	CreatedAt  int64           `json:"created_at" db:"created_at"`
}

// ChunkMatch is a chunk joined with its owning document, as returned by both
// the substring and the vector search paths. Distance is only meaningful on
// the vector path; substring hits select a literal zero.
type ChunkMatch struct {
	ChunkID     string  `json:"chunk_id" db:"chunk_id"`
	DocumentID  string  `json:"document_id" db:"document_id"`
	DocType     DocType `json:"doc_type" db:"doc_type"`
	EntityTable string  `json:"entity_table" db:"entity_table"`
	EntityID    string  `json:"entity_id" db:"entity_id"`
	Title       string  `json:"title" db:"title"`
	ChunkText   string  `json:"chunk_text" db:"chunk_text"`
	Distance    float32 `json:"distance" db:"distance"`
}
