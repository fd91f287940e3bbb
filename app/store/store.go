package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/catalab-ai/catalab/pkg/sqlstore"
	"github.com/catalab-ai/catalab/pkg/types"
)

// DocumentStore 定义 Document 的方法集合
// One row per source entity; the natural key is (doc_type, entity_table,
// entity_id) and the write path must look it up before inserting, storage
// enforces no uniqueness.
type DocumentStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Document) error
	Get(ctx context.Context, id string) (*types.Document, error)
	GetByEntity(ctx context.Context, docType types.DocType, entityTable, entityID string) (*types.Document, error)
	Update(ctx context.Context, id, title, rawText string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts types.GetDocumentsOptions, page, pageSize uint64) ([]types.Document, error)
	Total(ctx context.Context, opts types.GetDocumentsOptions) (uint64, error)
	CountByDocType(ctx context.Context) ([]types.DocTypeCount, error)
}

// ChunkStore 定义 DocumentChunk 的方法集合
// Chunks are owned by their document and replaced wholesale, never patched.
// Both search paths return chunks joined with the owning document.
type ChunkStore interface {
	sqlstore.SqlCommons
	BatchCreate(ctx context.Context, data []*types.Chunk) error
	DeleteByDocument(ctx context.Context, documentID string) error
	List(ctx context.Context, documentID string) ([]types.Chunk, error)
	Total(ctx context.Context) (uint64, error)
	SearchSubstring(ctx context.Context, pattern string, docTypes []types.DocType, limit uint64) ([]types.ChunkMatch, error)
	SearchVector(ctx context.Context, vector pgvector.Vector, docTypes []types.DocType, limit uint64) ([]types.ChunkMatch, error)
}
