package v1

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/i18n"
	"github.com/catalab-ai/catalab/pkg/types"
)

type EvidenceLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewEvidenceLogic(ctx context.Context, core *core.Core) *EvidenceLogic {
	return &EvidenceLogic{
		ctx:  ctx,
		core: core,
	}
}

// Filter 证据过滤
// The completion call proposes a keep set and an intent; enforcement of what
// the model cannot be trusted with happens in EnforceKeepSet. Malformed
// output is a hard stage failure, there is no safe fallback past this point.
func (l *EvidenceLogic) Filter(question string, mode types.QueryMode, candidates []types.ChunkMatch) ([]types.ChunkMatch, types.QuestionIntent, error) {
	defer l.core.Metrics().StageTimer("evidence_filter")()

	if len(candidates) == 0 {
		return nil, types.INTENT_LOOKUP, nil
	}

	pipeline := l.core.Cfg().Pipeline

	prompt := ai.ReplaceVars(ai.EvidenceFilterPrompt(ai.DetectLang(question)), map[string]string{
		ai.PROMPT_VAR_QUESTION: question,
		ai.PROMPT_VAR_EVIDENCE: ai.BuildEvidenceBlock(candidates, pipeline.PerChunkTokens),
	})

	var decision ai.EvidenceDecision
	if err := l.core.Srv().AI().CompleteObject(l.ctx, "evidence_filter", prompt, &decision); err != nil {
		l.core.Metrics().StageError("evidence_filter")
		return nil, "", errors.New("EvidenceLogic.Filter.CompleteObject", i18n.ERROR_AI_MALFORMED_OUTPUT, err)
	}

	intent := types.IntentFromString(decision.Intent)
	kept := EnforceKeepSet(question, mode, intent, decision.Keep, candidates, pipeline.EvidenceLimit, pipeline.OverlapMinTokens)
	return kept, intent, nil
}

// EnforceKeepSet 保留集合的确定性约束
// The kept ids must be a subset of the candidates, the set is capped, and
// detail questions get a deterministic overlap re-check. An empty admitted
// set falls back to the top-ranked candidate for semantic questions but to
// nothing for identifier questions: guessing an identifier match is worse
// than admitting no evidence.
func EnforceKeepSet(question string, mode types.QueryMode, intent types.QuestionIntent, keep []string, candidates []types.ChunkMatch, limit, overlapMinTokens int) []types.ChunkMatch {
	if len(candidates) == 0 {
		return nil
	}

	byID := lo.SliceToMap(candidates, func(m types.ChunkMatch) (string, types.ChunkMatch) {
		return m.ChunkID, m
	})

	var kept []types.ChunkMatch
	for _, id := range lo.Uniq(keep) {
		m, ok := byID[id]
		if !ok {
			// the model invented an id, drop it silently
			continue
		}
		if intent == types.INTENT_DETAIL && !admitDetail(question, m, overlapMinTokens) {
			continue
		}
		kept = append(kept, m)
		if len(kept) >= limit {
			break
		}
	}

	if len(kept) == 0 {
		if mode == types.QUERY_MODE_IDENTIFIER {
			return nil
		}
		return candidates[:1]
	}
	return kept
}

// admitDetail re-checks a use-case/suitability keep decision: the chunk must
// share a key concept with the question or carry a verbatim identifier hit.
func admitDetail(question string, m types.ChunkMatch, overlapMinTokens int) bool {
	if KeyConceptOverlap(question, m.ChunkText+" "+m.Title) >= overlapMinTokens {
		return true
	}
	for _, token := range ExtractIdentifierTokens(question) {
		if len(token) >= 3 && strings.Contains(strings.ToLower(m.ChunkText), strings.ToLower(token)) {
			return true
		}
	}
	return false
}

var conceptStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "for": true, "to": true,
	"is": true, "are": true, "do": true, "does": true, "we": true, "have": true,
	"what": true, "which": true, "with": true, "can": true, "i": true, "it": true,
	"in": true, "on": true, "and": true, "or": true, "use": true, "used": true,
	"的": true, "了": true, "吗": true, "是": true, "有": true, "我们": true,
}

// KeyConceptOverlap counts question tokens, stopwords removed, that appear in
// the chunk text. The threshold lives in config, not here.
func KeyConceptOverlap(question, text string) int {
	lowerText := strings.ToLower(text)
	count := 0
	for _, token := range lo.Uniq(strings.Fields(strings.ToLower(question))) {
		token = strings.Trim(token, "?,.!;:\"'？，。！")
		if token == "" || len(token) < 2 || conceptStopwords[token] {
			continue
		}
		if strings.Contains(lowerText, token) {
			count++
		}
	}
	return count
}
