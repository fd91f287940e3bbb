package v1

import (
	"context"
	"log/slog"
	"strings"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/pkg/ai"
)

type ReformulateLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewReformulateLogic(ctx context.Context, core *core.Core) *ReformulateLogic {
	return &ReformulateLogic{
		ctx:  ctx,
		core: core,
	}
}

// Reformulate 问题改写为检索词
// Never blocks the request: any failure or empty rewrite falls back to the
// raw question verbatim.
func (l *ReformulateLogic) Reformulate(question string) string {
	defer l.core.Metrics().StageTimer("reformulate")()

	query, err := ReformulateQuery(l.ctx, l.core.Srv().AI(), question)
	if err != nil {
		l.core.Metrics().StageError("reformulate")
		slog.Warn("reformulation failed, using raw question",
			slog.String("error", err.Error()))
	}
	return query
}

// ReformulateQuery rewrites the question into a retrieval query aligned to
// the indexed field layout. The returned query is always usable: on a
// completion failure or an empty rewrite it is the raw question itself, with
// the error reported alongside for the caller's accounting.
func ReformulateQuery(ctx context.Context, completer ai.Completer, question string) (string, error) {
	prompt := ai.ReplaceVars(ai.ReformulatePrompt(ai.DetectLang(question)), map[string]string{
		ai.PROMPT_VAR_QUESTION: question,
	})

	var result ai.ReformulateResult
	if err := completer.CompleteObject(ctx, "reformulate", prompt, &result); err != nil {
		return question, err
	}

	query := strings.TrimSpace(result.Query)
	if query == "" {
		return question, nil
	}
	return query, nil
}
