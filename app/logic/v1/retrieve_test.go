package v1

import (
	"context"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/types"
)

type fakeChunkStore struct {
	chunks      []types.ChunkMatch
	texts       map[string]string // chunk id -> searchable text
	deletedDocs []string
}

func (f *fakeChunkStore) GetTable(...interface{}) string { return "fake" }

func (f *fakeChunkStore) BatchCreate(ctx context.Context, data []*types.Chunk) error { return nil }
func (f *fakeChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	f.deletedDocs = append(f.deletedDocs, documentID)
	return nil
}
func (f *fakeChunkStore) List(ctx context.Context, documentID string) ([]types.Chunk, error) {
	return nil, nil
}
func (f *fakeChunkStore) Total(ctx context.Context) (uint64, error) { return 0, nil }

func (f *fakeChunkStore) SearchSubstring(ctx context.Context, pattern string, docTypes []types.DocType, limit uint64) ([]types.ChunkMatch, error) {
	var res []types.ChunkMatch
	for _, m := range f.chunks {
		if strings.Contains(strings.ToLower(f.texts[m.ChunkID]), strings.ToLower(pattern)) {
			res = append(res, m)
		}
		if uint64(len(res)) >= limit {
			break
		}
	}
	return res, nil
}

func (f *fakeChunkStore) SearchVector(ctx context.Context, vector pgvector.Vector, docTypes []types.DocType, limit uint64) ([]types.ChunkMatch, error) {
	res := append([]types.ChunkMatch{}, f.chunks...)
	if uint64(len(res)) > limit {
		res = res[:limit]
	}
	return res, nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	f.calls++
	data := make([][]float32, len(content))
	for i := range content {
		data[i] = []float32{0.1, 0.2, 0.3}
	}
	return ai.EmbeddingResult{Model: "fake", Data: data}, nil
}

func TestClassifyQueryMode(t *testing.T) {
	cases := []struct {
		query string
		want  types.QueryMode
	}{
		{"Look up product with code: PE: TX-3151-55/12", types.QUERY_MODE_IDENTIFIER},
		{"barcode 6901234", types.QUERY_MODE_IDENTIFIER},
		{"part 12345", types.QUERY_MODE_IDENTIFIER},
		{"TX-3150-33/11", types.QUERY_MODE_IDENTIFIER},
		{"查询编码 AB-12", types.QUERY_MODE_IDENTIFIER},
		{"Do we have Transformers?", types.QUERY_MODE_SEMANTIC},
		{"which cable is suitable for outdoor use", types.QUERY_MODE_SEMANTIC},
		{"33kV transformer", types.QUERY_MODE_SEMANTIC},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyQueryMode(c.query), c.query)
	}
}

func TestExtractIdentifierTokens(t *testing.T) {
	tokens := ExtractIdentifierTokens("Look up code TX-3151-55/12 or 69012345")
	assert.Contains(t, tokens, "TX-3151-55/12")
	assert.Contains(t, tokens, "69012345")
	assert.Contains(t, tokens, "Look up code TX-3151-55/12 or 69012345")

	many := ExtractIdentifierTokens("1111 2222 3333 4444 5555 6666 7777")
	assert.LessOrEqual(t, len(many), 5)
}

func TestRerankByDocType(t *testing.T) {
	matches := []types.ChunkMatch{
		{ChunkID: "s1", DocType: types.DOC_TYPE_SCHEMA, Distance: 0.1},
		{ChunkID: "d1", DocType: types.DOC_TYPE_DICTIONARY, Distance: 0.2},
		{ChunkID: "p2", DocType: types.DOC_TYPE_PRODUCT, Distance: 0.5},
		{ChunkID: "p1", DocType: types.DOC_TYPE_PRODUCT, Distance: 0.5},
		{ChunkID: "m1", DocType: types.DOC_TYPE_MATERIAL, Distance: 0.3},
		{ChunkID: "p3", DocType: types.DOC_TYPE_PRODUCT, Distance: 0.4},
	}

	got := lo.Map(RerankByDocType(matches), func(m types.ChunkMatch, _ int) string { return m.ChunkID })
	// product first despite worse distance, then distance, then id on ties
	assert.Equal(t, []string{"p3", "p1", "p2", "m1", "d1", "s1"}, got)
}

func TestHybridRetrieveIdentifierDominance(t *testing.T) {
	store := &fakeChunkStore{
		chunks: []types.ChunkMatch{
			{ChunkID: "c1", DocType: types.DOC_TYPE_PRODUCT, Title: "Transformer TX-3151"},
			{ChunkID: "c2", DocType: types.DOC_TYPE_PRODUCT, Title: "Cable PE"},
			{ChunkID: "c3", DocType: types.DOC_TYPE_MATERIAL, Title: "Steel"},
		},
		texts: map[string]string{
			"c1": "Name: Transformer\nBarcode: 69012345",
			"c2": "Name: Cable\nCode: PE-100",
			"c3": "Name: Steel\nBarcode: 69012345-B",
		},
	}
	embedder := &fakeEmbedder{}

	matches, mode, err := HybridRetrieve(context.Background(), store, embedder, "barcode 69012345", 10, 4)
	require.NoError(t, err)
	assert.Equal(t, types.QUERY_MODE_IDENTIFIER, mode)

	ids := lo.Map(matches, func(m types.ChunkMatch, _ int) string { return m.ChunkID })
	assert.Contains(t, ids, "c1")
}

func TestHybridRetrieveIdempotent(t *testing.T) {
	store := &fakeChunkStore{
		chunks: []types.ChunkMatch{
			{ChunkID: "a", DocType: types.DOC_TYPE_SCHEMA, Distance: 0.1},
			{ChunkID: "b", DocType: types.DOC_TYPE_PRODUCT, Distance: 0.4},
			{ChunkID: "c", DocType: types.DOC_TYPE_PRODUCT, Distance: 0.4},
			{ChunkID: "d", DocType: types.DOC_TYPE_MATERIAL, Distance: 0.2},
		},
		texts: map[string]string{},
	}

	first, mode, err := HybridRetrieve(context.Background(), store, &fakeEmbedder{}, "suitable outdoor cable", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, types.QUERY_MODE_SEMANTIC, mode)

	second, _, err := HybridRetrieve(context.Background(), store, &fakeEmbedder{}, "suitable outdoor cable", 3, 4)
	require.NoError(t, err)

	firstIDs := lo.Map(first, func(m types.ChunkMatch, _ int) string { return m.ChunkID })
	secondIDs := lo.Map(second, func(m types.ChunkMatch, _ int) string { return m.ChunkID })
	assert.Equal(t, firstIDs, secondIDs)
	assert.Equal(t, []string{"b", "c", "d"}, firstIDs)
	assert.Len(t, first, 3)
}
