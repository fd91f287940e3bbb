package v1

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/types"
)

type fakeDocumentStore struct {
	docs    map[string]*types.Document
	getErr  error
	deleted []string
}

func (f *fakeDocumentStore) GetTable(...interface{}) string { return "fake" }

func (f *fakeDocumentStore) Create(ctx context.Context, data types.Document) error { return nil }

func (f *fakeDocumentStore) Get(ctx context.Context, id string) (*types.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.docs[id], nil
}

func (f *fakeDocumentStore) GetByEntity(ctx context.Context, docType types.DocType, entityTable, entityID string) (*types.Document, error) {
	return nil, nil
}

func (f *fakeDocumentStore) Update(ctx context.Context, id, title, rawText string) error {
	return nil
}

func (f *fakeDocumentStore) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocumentStore) List(ctx context.Context, opts types.GetDocumentsOptions, page, pageSize uint64) ([]types.Document, error) {
	return nil, nil
}

func (f *fakeDocumentStore) Total(ctx context.Context, opts types.GetDocumentsOptions) (uint64, error) {
	return 0, nil
}

func (f *fakeDocumentStore) CountByDocType(ctx context.Context) ([]types.DocTypeCount, error) {
	return nil, nil
}

func passthroughTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func TestDeleteDocumentNotFound(t *testing.T) {
	docs := &fakeDocumentStore{docs: map[string]*types.Document{}}
	chunks := &fakeChunkStore{texts: map[string]string{}}

	err := DeleteDocument(context.Background(), docs, chunks, passthroughTx, "ghost")
	require.Error(t, err)

	ce, ok := err.(*errors.CustomizedError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, ce.GetCode())
	assert.Empty(t, docs.deleted)
	assert.Empty(t, chunks.deletedDocs)
}

func TestDeleteDocumentRemovesChunksFirst(t *testing.T) {
	docs := &fakeDocumentStore{docs: map[string]*types.Document{
		"d1": {ID: "d1", DocType: types.DOC_TYPE_PRODUCT, Title: "Cable"},
	}}
	chunks := &fakeChunkStore{texts: map[string]string{}}

	err := DeleteDocument(context.Background(), docs, chunks, passthroughTx, "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, chunks.deletedDocs)
	assert.Equal(t, []string{"d1"}, docs.deleted)
}

func TestSplitChunksPacksLines(t *testing.T) {
	text := "Name: Cable\nCode: PE-100\nDescription: outdoor rated"
	chunks := SplitChunks(text, 800)
	assert.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitChunksRespectsSize(t *testing.T) {
	text := strings.Repeat("Attr: value\n", 100)
	chunks := SplitChunks(text, 60)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 60)
	}
}

func TestSplitChunksHardSplitsOversizedLine(t *testing.T) {
	line := strings.Repeat("x", 25)
	chunks := SplitChunks(line, 10)

	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), "xxxxx"}, chunks)
}

func TestSplitChunksDropsBlankOutput(t *testing.T) {
	assert.Empty(t, SplitChunks("\n\n  \n", 100))
}
