package sqlstore

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"

	"github.com/catalab-ai/catalab/pkg/register"
	"github.com/catalab-ai/catalab/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ChunkStore = NewChunkStore(provider)
	})
}

type ChunkStore struct {
	CommonFields
}

// NewChunkStore 创建一个新的 ChunkStore 实例
func NewChunkStore(provider SqlProviderAchieve) *ChunkStore {
	repo := &ChunkStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_DOCUMENT_CHUNK)
	repo.SetAllColumns("id", "document_id", "chunk_index", "chunk_text", "embedding", "updated_at", "created_at")
	return repo
}

// BatchCreate 批量写入文档片段
func (s *ChunkStore) BatchCreate(ctx context.Context, data []*types.Chunk) error {
	if len(data) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "document_id", "chunk_index", "chunk_text", "embedding", "updated_at", "created_at")

	for _, item := range data {
		if item.CreatedAt == 0 {
			item.CreatedAt = time.Now().Unix()
		}
		if item.UpdatedAt == 0 {
			item.UpdatedAt = time.Now().Unix()
		}
		query = query.Values(item.ID, item.DocumentID, item.ChunkIndex, item.ChunkText, item.Embedding, item.UpdatedAt, item.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// DeleteByDocument 删除文档下的所有片段
// Re-ingestion replaces a document's chunks wholesale: delete-then-insert
// inside one transaction, never a partial patch.
func (s *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"document_id": documentID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// List 获取文档的全部片段，按片段序号排序
func (s *ChunkStore) List(ctx context.Context, documentID string) ([]types.Chunk, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"document_id": documentID}).OrderBy("chunk_index")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Chunk
	if err := s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ChunkStore) Total(ctx context.Context) (uint64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var res uint64
	if err := s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return 0, err
	}
	return res, nil
}

var matchColumns = []string{
	"c.id AS chunk_id", "c.document_id", "d.doc_type", "d.entity_table", "d.entity_id", "d.title", "c.chunk_text",
}

// SearchSubstring 子串检索
// Case-insensitive match over chunk text and document title. Chunk text is
// carved from the document raw text on ingest, so this is the raw-text
// search with chunk provenance attached.
func (s *ChunkStore) SearchSubstring(ctx context.Context, pattern string, docTypes []types.DocType, limit uint64) ([]types.ChunkMatch, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(pattern)
	like := "%" + escaped + "%"

	query := sq.Select(append(append([]string{}, matchColumns...), "0 AS distance")...).
		From(s.GetTable() + " c").
		Join(types.TABLE_DOCUMENT.Name() + " d ON d.id = c.document_id").
		Where(sq.Eq{"d.doc_type": docTypes}).
		Where(sq.Or{sq.Expr("c.chunk_text ILIKE ?", like), sq.Expr("d.title ILIKE ?", like)}).
		OrderBy("c.document_id", "c.chunk_index").
		Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.ChunkMatch
	if err := s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// SearchVector 向量近邻检索
// pgvector supported distance functions are:
// <-> - L2 distance
// <#> - (negative) inner product
// <=> - cosine distance
// Secondary sort on chunk id keeps equal-distance results stable, so the
// same corpus and the same embedding always produce the same ordering.
func (s *ChunkStore) SearchVector(ctx context.Context, vector pgvector.Vector, docTypes []types.DocType, limit uint64) ([]types.ChunkMatch, error) {
	distColumn, vectorArgs, _ := sq.Expr("c.embedding <=> ? AS distance", vector).ToSql()

	query := sq.Select(append(append([]string{}, matchColumns...), distColumn)...).
		From(s.GetTable() + " c").
		Join(types.TABLE_DOCUMENT.Name() + " d ON d.id = c.document_id").
		Where(sq.Eq{"d.doc_type": docTypes}).
		OrderBy("distance ASC", "c.id ASC").
		Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	args = append(vectorArgs, args...)

	var res []types.ChunkMatch
	if err := s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
