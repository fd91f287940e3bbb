package v1

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/samber/lo"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/app/store"
	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/i18n"
	"github.com/catalab-ai/catalab/pkg/types"
)

type RetrieveLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewRetrieveLogic(ctx context.Context, core *core.Core) *RetrieveLogic {
	return &RetrieveLogic{
		ctx:  ctx,
		core: core,
	}
}

// Retrieve 混合检索入口
// Deterministic for a fixed corpus and fixed embedding output.
func (l *RetrieveLogic) Retrieve(query string, limit int) ([]types.ChunkMatch, types.QueryMode, error) {
	defer l.core.Metrics().StageTimer("retrieve")()

	matches, mode, err := HybridRetrieve(l.ctx, l.core.Store().ChunkStore(), l.core.Srv().AI(),
		query, limit, l.core.Cfg().Pipeline.OverFetchMultiple)
	if err != nil {
		l.core.Metrics().StageError("retrieve")
		return nil, mode, err
	}
	return matches, mode, nil
}

var (
	digitRunRe = regexp.MustCompile(`\d{4,}`)
	// hyphen/colon joined alphanumerics, e.g. TX-3150-33/11 or PE:1234
	joinedTokenRe = regexp.MustCompile(`[A-Za-z0-9]+(?:[-:/][A-Za-z0-9]+)+`)
)

const maxIdentifierTokens = 5

// ClassifyQueryMode 判定检索模式
// Identifier-like queries carry an explicit code/barcode token, a run of four
// or more digits, or a hyphen/colon-joined alphanumeric token.
func ClassifyQueryMode(query string) types.QueryMode {
	lower := strings.ToLower(query)
	for _, field := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '?' || r == ':' || r == '？' || r == '。' || r == '，'
	}) {
		if field == "code" || field == "barcode" || field == "编码" || field == "条码" {
			return types.QUERY_MODE_IDENTIFIER
		}
	}
	if digitRunRe.MatchString(query) {
		return types.QUERY_MODE_IDENTIFIER
	}
	if joinedTokenRe.MatchString(query) {
		return types.QUERY_MODE_IDENTIFIER
	}
	return types.QUERY_MODE_SEMANTIC
}

// ExtractIdentifierTokens 提取编号检索词
// Digit runs and joined tokens first, the full query last, capped at 5.
func ExtractIdentifierTokens(query string) []string {
	var tokens []string
	tokens = append(tokens, joinedTokenRe.FindAllString(query, -1)...)
	tokens = append(tokens, digitRunRe.FindAllString(query, -1)...)
	tokens = append(tokens, strings.TrimSpace(query))

	tokens = lo.Uniq(lo.Filter(tokens, func(t string, _ int) bool {
		return t != ""
	}))
	if len(tokens) > maxIdentifierTokens {
		tokens = tokens[:maxIdentifierTokens]
	}
	return tokens
}

// HybridRetrieve 混合检索
// Identifier-like queries run lexical-first, everything else vector-first.
// Dependencies come in as interfaces so the decision logic is testable with
// fakes.
func HybridRetrieve(ctx context.Context, chunks store.ChunkStore, embedder ai.Embedder, query string, limit, overFetchMultiple int) ([]types.ChunkMatch, types.QueryMode, error) {
	mode := ClassifyQueryMode(query)

	if mode == types.QUERY_MODE_IDENTIFIER {
		matches, err := lexicalFirst(ctx, chunks, embedder, query, limit, overFetchMultiple)
		return matches, mode, err
	}

	matches, err := vectorRank(ctx, chunks, embedder, query, limit, overFetchMultiple)
	return matches, mode, err
}

// lexicalFirst 编号优先检索
// Substring hits are trusted over semantic neighbours for exact-identifier
// intents; the vector path only backfills when lexical recall is thin.
func lexicalFirst(ctx context.Context, chunks store.ChunkStore, embedder ai.Embedder, query string, limit, overFetchMultiple int) ([]types.ChunkMatch, error) {
	var merged []types.ChunkMatch
	for _, token := range ExtractIdentifierTokens(query) {
		res, err := chunks.SearchSubstring(ctx, token, types.KnownDocTypes, uint64(limit))
		if err != nil {
			return nil, errors.New("retrieve.lexicalFirst.SearchSubstring", i18n.ERROR_RETRIEVAL_FAILED, err)
		}
		merged = append(merged, res...)
		merged = lo.UniqBy(merged, func(m types.ChunkMatch) string { return m.ChunkID })
		if len(merged) >= limit {
			break
		}
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}

	threshold := limit
	if threshold > 3 {
		threshold = 3
	}
	if len(merged) >= threshold {
		return merged, nil
	}

	// thin lexical recall, backfill from the vector path
	vectorMatches, err := vectorRank(ctx, chunks, embedder, query, limit, overFetchMultiple)
	if err != nil {
		return nil, err
	}

	merged = lo.UniqBy(append(merged, vectorMatches...), func(m types.ChunkMatch) string { return m.ChunkID })
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// vectorRank 向量检索加类型重排
// Over-fetch a wide window, then re-rank by record-kind priority before
// distance so entity records beat reference docs, and truncate to limit.
func vectorRank(ctx context.Context, chunks store.ChunkStore, embedder ai.Embedder, query string, limit, overFetchMultiple int) ([]types.ChunkMatch, error) {
	embedding, err := embedder.EmbeddingForQuery(ctx, []string{query})
	if err != nil {
		return nil, errors.New("retrieve.vectorRank.EmbeddingForQuery", i18n.ERROR_RETRIEVAL_FAILED, err)
	}
	if len(embedding.Data) == 0 || len(embedding.Data[0]) == 0 {
		return nil, errors.New("retrieve.vectorRank.EmbeddingForQuery", i18n.ERROR_RETRIEVAL_FAILED, nil)
	}

	window := uint64(limit * overFetchMultiple)
	matches, err := chunks.SearchVector(ctx, pgvector.NewVector(embedding.Data[0]), types.KnownDocTypes, window)
	if err != nil {
		return nil, errors.New("retrieve.vectorRank.SearchVector", i18n.ERROR_RETRIEVAL_FAILED, err)
	}

	matches = RerankByDocType(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// RerankByDocType 按文档类型优先级重排
// Priority first, ascending distance second, chunk id last so equal inputs
// always produce the same order.
func RerankByDocType(matches []types.ChunkMatch) []types.ChunkMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		pi, pj := types.DocTypePriority(matches[i].DocType), types.DocTypePriority(matches[j].DocType)
		if pi != pj {
			return pi < pj
		}
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})
	return matches
}
