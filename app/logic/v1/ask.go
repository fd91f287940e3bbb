package v1

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/i18n"
	"github.com/catalab-ai/catalab/pkg/types"
)

type AskLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAskLogic(ctx context.Context, core *core.Core) *AskLogic {
	return &AskLogic{
		ctx:  ctx,
		core: core,
	}
}

// Ask 问答主流程
// reformulate → retrieve → filter → arbitrate → assemble. Reformulation
// failures fall back to the raw question inside the stage; retrieval and
// store failures are surfaced as errors; completion failures past retrieval
// degrade into an explicit ungrounded answer so the caller can always tell
// "infrastructure broke" apart from "answered: don't know".
func (l *AskLogic) Ask(question string) (*types.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("AskLogic.Ask", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	query := NewReformulateLogic(l.ctx, l.core).Reformulate(question)

	matches, mode, err := NewRetrieveLogic(l.ctx, l.core).Retrieve(query, l.core.Cfg().Pipeline.RetrieveLimit)
	if err != nil {
		return nil, errors.Trace("AskLogic.Ask", err)
	}

	kept, intent, err := NewEvidenceLogic(l.ctx, l.core).Filter(question, mode, matches)
	if err != nil {
		slog.Error("evidence filter failed", slog.String("error", err.Error()))
		// nothing was admitted, so nothing is presented as evidence
		return degradedAnswer(nil, "evidence filtering failed"), nil
	}

	slog.Debug("evidence admitted",
		slog.String("mode", string(mode)),
		slog.String("intent", string(intent)),
		slog.Int("candidates", len(matches)),
		slog.Int("kept", len(kept)))

	winner, err := NewArbitrateLogic(l.ctx, l.core).Arbitrate(question, kept)
	if err != nil {
		slog.Error("arbitration failed", slog.String("error", err.Error()))
		return degradedAnswer(kept, "answer arbitration failed"), nil
	}

	return assembleAnswer(winner, kept), nil
}

// assembleAnswer 组装最终回答
// Citations are recomputed here, never trusted from generation: the claimed
// list must be entirely inside the filtered set or it is dropped wholesale.
func assembleAnswer(winner ai.CandidateAnswer, kept []types.ChunkMatch) *types.Answer {
	byID := lo.SliceToMap(kept, func(m types.ChunkMatch) (string, types.ChunkMatch) {
		return m.ChunkID, m
	})

	citations := make([]types.Citation, 0, len(winner.Citations))
	for _, id := range lo.Uniq(winner.Citations) {
		m, ok := byID[id]
		if !ok {
			citations = nil
			break
		}
		citations = append(citations, types.Citation{ChunkID: m.ChunkID, Title: m.Title})
	}
	if citations == nil {
		citations = []types.Citation{}
	}

	return &types.Answer{
		AnswerText:    winner.AnswerText,
		Matches:       kept,
		Citations:     citations,
		Grounded:      winner.Grounded,
		Confidence:    winner.Confidence,
		MissingData:   winner.MissingData,
		NextQuestions: winner.NextQuestions,
	}
}

func degradedAnswer(matches []types.ChunkMatch, what string) *types.Answer {
	if matches == nil {
		matches = []types.ChunkMatch{}
	}
	return &types.Answer{
		Matches:     matches,
		Citations:   []types.Citation{},
		Grounded:    false,
		Confidence:  0,
		MissingData: []string{what},
	}
}
