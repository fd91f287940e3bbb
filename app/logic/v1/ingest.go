package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/samber/lo"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/app/store"
	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/i18n"
	"github.com/catalab-ai/catalab/pkg/types"
	"github.com/catalab-ai/catalab/pkg/utils"
)

type IngestLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewIngestLogic(ctx context.Context, core *core.Core) *IngestLogic {
	return &IngestLogic{
		ctx:  ctx,
		core: core,
	}
}

type IngestRequest struct {
	DocType     types.DocType `json:"doc_type" binding:"required"`
	EntityTable string        `json:"entity_table"`
	EntityID    string        `json:"entity_id"`
	Title       string        `json:"title" binding:"required"`
	RawText     string        `json:"raw_text" binding:"required"`
}

// Ingest 文档入库
// Storage enforces no uniqueness on the natural key, so the write path looks
// the document up first. Chunks are replaced wholesale inside one
// transaction; readers may transiently see zero chunks for the document.
func (l *IngestLogic) Ingest(req IngestRequest) (*types.Document, error) {
	if !lo.Contains(types.KnownDocTypes, req.DocType) {
		return nil, errors.New("IngestLogic.Ingest", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	s := l.core.Store()

	existing, err := s.DocumentStore().GetByEntity(l.ctx, req.DocType, req.EntityTable, req.EntityID)
	if err != nil {
		return nil, errors.New("IngestLogic.Ingest.GetByEntity", i18n.ERROR_STORE_UNAVAILABLE, err)
	}

	doc := types.Document{
		DocType:     req.DocType,
		EntityTable: req.EntityTable,
		EntityID:    req.EntityID,
		Title:       req.Title,
		RawText:     req.RawText,
	}
	if existing != nil {
		doc.ID = existing.ID
	} else {
		doc.ID = utils.GenUniqIDStr()
	}

	texts := SplitChunks(req.RawText, l.core.Cfg().Pipeline.ChunkSize)
	embeddings, err := l.core.Srv().AI().EmbeddingForQuery(l.ctx, texts)
	if err != nil {
		return nil, errors.New("IngestLogic.Ingest.EmbeddingForQuery", i18n.ERROR_AI_EMBEDDING_MODEL_NOT_FOUND, err)
	}
	if len(embeddings.Data) != len(texts) {
		return nil, errors.New("IngestLogic.Ingest.EmbeddingForQuery", i18n.ERROR_INTERNAL, nil)
	}

	chunks := make([]*types.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &types.Chunk{
			ID:         utils.GenUniqIDStr(),
			DocumentID: doc.ID,
			ChunkIndex: i,
			ChunkText:  text,
			Embedding:  pgvector.NewVector(embeddings.Data[i]),
		})
	}

	err = s.Transaction(l.ctx, func(ctx context.Context) error {
		if existing != nil {
			if err := s.DocumentStore().Update(ctx, doc.ID, doc.Title, doc.RawText); err != nil {
				return err
			}
		} else {
			if err := s.DocumentStore().Create(ctx, doc); err != nil {
				return err
			}
		}
		if err := s.ChunkStore().DeleteByDocument(ctx, doc.ID); err != nil {
			return err
		}
		return s.ChunkStore().BatchCreate(ctx, chunks)
	})
	if err != nil {
		return nil, errors.New("IngestLogic.Ingest.Transaction", i18n.ERROR_STORE_UNAVAILABLE, err)
	}
	return &doc, nil
}

// Delete 删除文档及其片段
func (l *IngestLogic) Delete(id string) error {
	s := l.core.Store()
	return DeleteDocument(l.ctx, s.DocumentStore(), s.ChunkStore(), s.Transaction, id)
}

// DeleteDocument removes a document and its chunks inside one transaction.
// A missing id is a not-found, never a store failure.
func DeleteDocument(ctx context.Context, docs store.DocumentStore, chunks store.ChunkStore, tx func(context.Context, func(context.Context) error) error, id string) error {
	existing, err := docs.Get(ctx, id)
	if err != nil {
		return errors.New("DeleteDocument.Get", i18n.ERROR_STORE_UNAVAILABLE, err)
	}
	if existing == nil {
		return errors.New("DeleteDocument", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	err = tx(ctx, func(ctx context.Context) error {
		if err := chunks.DeleteByDocument(ctx, id); err != nil {
			return err
		}
		return docs.Delete(ctx, id)
	})
	if err != nil {
		return errors.New("DeleteDocument.Transaction", i18n.ERROR_STORE_UNAVAILABLE, err)
	}
	return nil
}

// List 分页查询文档
func (l *IngestLogic) List(docType types.DocType, page, pageSize uint64) ([]types.Document, uint64, error) {
	opts := types.GetDocumentsOptions{DocType: docType}
	docs, err := l.core.Store().DocumentStore().List(l.ctx, opts, page, pageSize)
	if err != nil {
		return nil, 0, errors.New("IngestLogic.List", i18n.ERROR_STORE_UNAVAILABLE, err)
	}
	total, err := l.core.Store().DocumentStore().Total(l.ctx, opts)
	if err != nil {
		return nil, 0, errors.New("IngestLogic.List.Total", i18n.ERROR_STORE_UNAVAILABLE, err)
	}
	return docs, total, nil
}

// SplitChunks 按行边界切分文本
// Lines are packed into spans of at most size runes; a single oversized line
// is hard-split rather than dropped.
func SplitChunks(text string, size int) []string {
	if size <= 0 {
		size = 800
	}

	var (
		chunks  []string
		current strings.Builder
		length  int
	)

	flush := func() {
		if length > 0 {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			length = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > size {
			flush()
			chunks = append(chunks, string(runes[:size]))
			runes = runes[size:]
		}
		if length > 0 && length+len(runes)+1 > size {
			flush()
		}
		current.WriteString(string(runes))
		current.WriteString("\n")
		length += len(runes) + 1
	}
	flush()
	return lo.Filter(chunks, func(c string, _ int) bool {
		return strings.TrimSpace(c) != ""
	})
}
