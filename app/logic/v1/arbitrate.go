package v1

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/i18n"
	"github.com/catalab-ai/catalab/pkg/safe"
	"github.com/catalab-ai/catalab/pkg/types"
)

type ArbitrateLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewArbitrateLogic(ctx context.Context, core *core.Core) *ArbitrateLogic {
	return &ArbitrateLogic{
		ctx:  ctx,
		core: core,
	}
}

var errPolicyPanicked = fmt.Errorf("candidate generation panicked")

type candidateResult struct {
	policy ai.AnswerPolicy
	answer ai.CandidateAnswer
	err    error
}

// Arbitrate 双候选对决
// Both policies run concurrently against the same evidence, each is scored
// by the fixed rubric, and the higher score wins. A tie goes to the
// permissive policy. If one candidate fails the survivor wins by default;
// if both fail the stage fails.
func (l *ArbitrateLogic) Arbitrate(question string, matches []types.ChunkMatch) (ai.CandidateAnswer, error) {
	defer l.core.Metrics().StageTimer("arbitrate")()

	answer, err := Duel(l.ctx, l.core.Srv().AI(), question, matches, l.core.Cfg().Pipeline.PerChunkTokens)
	if err != nil {
		l.core.Metrics().StageError("arbitrate")
		return ai.CandidateAnswer{}, err
	}
	return answer, nil
}

// Duel runs the strict and permissive generations concurrently and reduces
// them with ScoreCandidate.
func Duel(ctx context.Context, completer ai.Completer, question string, matches []types.ChunkMatch, perChunkTokens int) (ai.CandidateAnswer, error) {
	lang := ai.DetectLang(question)
	evidence := ai.BuildEvidenceBlock(matches, perChunkTokens)

	policies := []ai.AnswerPolicy{ai.POLICY_STRICT, ai.POLICY_PERMISSIVE}
	results := make([]candidateResult, len(policies))

	var wg sync.WaitGroup
	for i, policy := range policies {
		// a panicked policy must stay a failed candidate, not a zero-value one
		results[i] = candidateResult{policy: policy, err: errPolicyPanicked}
		wg.Add(1)
		go safe.Run(func() {
			defer wg.Done()
			results[i] = generateCandidate(ctx, completer, policy, lang, question, evidence)
		})
	}
	wg.Wait()

	valid := lo.Filter(results, func(r candidateResult, _ int) bool { return r.err == nil })
	if len(valid) == 0 {
		return ai.CandidateAnswer{}, errors.New("arbitrate.Duel", i18n.ERROR_AI_MALFORMED_OUTPUT, results[0].err)
	}
	if len(valid) == 1 {
		return valid[0].answer, nil
	}

	validIDs := lo.SliceToMap(matches, func(m types.ChunkMatch) (string, bool) { return m.ChunkID, true })
	signal := DirectMatchSignal(question, matches)

	strict, permissive := valid[0], valid[1]
	if ScoreCandidate(strict.answer, validIDs, signal) > ScoreCandidate(permissive.answer, validIDs, signal) {
		return strict.answer, nil
	}
	return permissive.answer, nil
}

func generateCandidate(ctx context.Context, completer ai.Completer, policy ai.AnswerPolicy, lang, question, evidence string) candidateResult {
	prompt := ai.ReplaceVars(ai.AnswerPrompt(policy, lang), map[string]string{
		ai.PROMPT_VAR_QUESTION: question,
		ai.PROMPT_VAR_EVIDENCE: evidence,
		ai.PROMPT_VAR_LANG:     lang,
	})

	var answer ai.CandidateAnswer
	err := completer.CompleteObject(ctx, "answer_"+string(policy), prompt, &answer)
	return candidateResult{policy: policy, answer: answer, err: err}
}

// ScoreCandidate 候选评分
// The rubric is fixed. Invalid citations dominate every positive term, and a
// denial in the face of a verbatim identifier hit dominates everything.
func ScoreCandidate(c ai.CandidateAnswer, validIDs map[string]bool, directMatchSignal bool) int {
	score := 0

	if c.Grounded {
		score += 3
	} else {
		score--
	}
	if c.Confidence >= 0.9 && !c.Grounded {
		score -= 2
	}
	if c.Confidence >= 0.7 {
		score++
	}

	citationsValid := true
	for _, id := range c.Citations {
		if !validIDs[id] {
			citationsValid = false
			break
		}
	}
	if !citationsValid {
		score -= 5
	} else if len(c.Citations) > 0 {
		score++
	}

	if directMatchSignal {
		if DeniesExistence(c.AnswerText) {
			score -= 10
		} else if AffirmsExistence(c.AnswerText) {
			score++
		}
	}

	return score
}

// DirectMatchSignal reports whether an identifier token from the question
// appears verbatim in the evidence text.
func DirectMatchSignal(question string, matches []types.ChunkMatch) bool {
	tokens := lo.Filter(ExtractIdentifierTokens(question), func(t string, _ int) bool {
		return len(t) >= 3 && t != strings.TrimSpace(question)
	})
	if len(tokens) == 0 {
		return false
	}
	for _, m := range matches {
		text := strings.ToLower(m.ChunkText)
		for _, token := range tokens {
			if strings.Contains(text, strings.ToLower(token)) {
				return true
			}
		}
	}
	return false
}

var negativePhrases = []string{"couldn't find", "could not find", "not found", "找不到", "未找到", "没有找到"}

func DeniesExistence(answer string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(answer))
	if first := firstWord(trimmed); first == "no" || first == "not" {
		return true
	}
	if strings.HasPrefix(trimmed, "否") || strings.HasPrefix(trimmed, "没有") {
		return true
	}
	for _, phrase := range negativePhrases {
		if strings.Contains(trimmed, phrase) {
			return true
		}
	}
	return false
}

func AffirmsExistence(answer string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(answer))
	if firstWord(trimmed) == "yes" {
		return true
	}
	return strings.HasPrefix(trimmed, "是") || strings.HasPrefix(trimmed, "有")
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ",.!;:，。！")
}
