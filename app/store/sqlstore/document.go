package sqlstore

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/catalab-ai/catalab/pkg/register"
	"github.com/catalab-ai/catalab/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.DocumentStore = NewDocumentStore(provider)
	})
}

type DocumentStore struct {
	CommonFields
}

// NewDocumentStore 创建一个新的 DocumentStore 实例
func NewDocumentStore(provider SqlProviderAchieve) *DocumentStore {
	repo := &DocumentStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_DOCUMENT)
	repo.SetAllColumns("id", "doc_type", "entity_table", "entity_id", "title", "raw_text", "updated_at", "created_at")
	return repo
}

// Create 创建文档记录
func (s *DocumentStore) Create(ctx context.Context, data types.Document) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "doc_type", "entity_table", "entity_id", "title", "raw_text", "updated_at", "created_at").
		Values(data.ID, data.DocType, data.EntityTable, data.EntityID, data.Title, data.RawText, data.UpdatedAt, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Get 根据ID获取文档记录
// Returns nil when no row matches, same as GetByEntity.
func (s *DocumentStore) Get(ctx context.Context, id string) (*types.Document, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Document
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// GetByEntity looks a document up by its natural key. Returns nil when no
// row matches; the write path relies on this to stay duplicate-free.
func (s *DocumentStore) GetByEntity(ctx context.Context, docType types.DocType, entityTable, entityID string) (*types.Document, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"doc_type": docType, "entity_table": entityTable, "entity_id": entityID}).
		OrderBy("created_at").Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Document
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// Update 更新文档内容
func (s *DocumentStore) Update(ctx context.Context, id, title, rawText string) error {
	query := sq.Update(s.GetTable()).
		Set("title", title).
		Set("raw_text", rawText).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Delete 删除文档记录
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// List 分页获取文档列表
func (s *DocumentStore) List(ctx context.Context, opts types.GetDocumentsOptions, page, pageSize uint64) ([]types.Document, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC")
	if page > 0 && pageSize > 0 {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Document
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *DocumentStore) Total(ctx context.Context, opts types.GetDocumentsOptions) (uint64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	opts.Apply(&query)

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var res uint64
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return 0, err
	}
	return res, nil
}

// CountByDocType 按文档类型统计数量
func (s *DocumentStore) CountByDocType(ctx context.Context) ([]types.DocTypeCount, error) {
	query := sq.Select("doc_type", "COUNT(*) AS count").From(s.GetTable()).GroupBy("doc_type")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.DocTypeCount
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
