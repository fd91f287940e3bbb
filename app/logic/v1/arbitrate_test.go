package v1

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/types"
)

type fakeCompleter struct {
	strict      ai.CandidateAnswer
	permissive  ai.CandidateAnswer
	strictErr   error
	permErr     error
	reformulate ai.ReformulateResult
	reformErr   error
}

func (f *fakeCompleter) Lang() string { return ai.MODEL_BASE_LANGUAGE_EN }

func (f *fakeCompleter) CompleteObject(ctx context.Context, task, prompt string, out any) error {
	switch v := out.(type) {
	case *ai.ReformulateResult:
		if f.reformErr != nil {
			return f.reformErr
		}
		*v = f.reformulate
		return nil
	case *ai.CandidateAnswer:
		if strings.HasSuffix(task, string(ai.POLICY_STRICT)) {
			if f.strictErr != nil {
				return f.strictErr
			}
			*v = f.strict
			return nil
		}
		if f.permErr != nil {
			return f.permErr
		}
		*v = f.permissive
		return nil
	}
	return errors.New("unexpected output type")
}

func TestScoreCandidateInvalidCitationPenalty(t *testing.T) {
	validIDs := map[string]bool{"c1": true, "c2": true}

	good := ai.CandidateAnswer{
		AnswerText: "The record matches.",
		Grounded:   true,
		Confidence: 0.8,
		Citations:  []string{"c1"},
	}
	bad := good
	bad.Citations = []string{"c1", "ghost"}

	goodScore := ScoreCandidate(good, validIDs, false)
	badScore := ScoreCandidate(bad, validIDs, false)
	assert.GreaterOrEqual(t, goodScore-badScore, 5)
}

func TestScoreCandidateFalseNegativeCatch(t *testing.T) {
	matches := []types.ChunkMatch{
		{ChunkID: "c1", ChunkText: "Name: Pipe\nCode: PE-1234"},
	}
	question := "do we have PE-1234?"
	signal := DirectMatchSignal(question, matches)
	require.True(t, signal)

	validIDs := map[string]bool{"c1": true}
	negative := ai.CandidateAnswer{
		AnswerText: "No, I couldn't find any record for PE-1234.",
		Grounded:   true,
		Confidence: 0.8,
		Citations:  []string{"c1"},
	}
	affirmative := negative
	affirmative.AnswerText = "Yes, PE-1234 exists in the catalog."

	diff := ScoreCandidate(affirmative, validIDs, signal) - ScoreCandidate(negative, validIDs, signal)
	assert.GreaterOrEqual(t, diff, 10)
}

func TestScoreCandidateOverconfidentUngrounded(t *testing.T) {
	overconfident := ai.CandidateAnswer{Grounded: false, Confidence: 0.95}
	humble := ai.CandidateAnswer{Grounded: false, Confidence: 0.2}
	assert.Less(t, ScoreCandidate(overconfident, nil, false), ScoreCandidate(humble, nil, false))
}

func TestDirectMatchSignal(t *testing.T) {
	matches := []types.ChunkMatch{{ChunkID: "c1", ChunkText: "Code: TX-3151-55/12"}}
	assert.True(t, DirectMatchSignal("look up TX-3151-55/12", matches))
	assert.False(t, DirectMatchSignal("do we have transformers?", matches))
	assert.False(t, DirectMatchSignal("look up TX-3151-55/12", nil))
}

func TestDeniesAndAffirms(t *testing.T) {
	assert.True(t, DeniesExistence("No, nothing matches."))
	assert.True(t, DeniesExistence("I couldn't find that item."))
	assert.True(t, DeniesExistence("没有找到相关记录"))
	assert.False(t, DeniesExistence("Noted, the record exists."))
	assert.False(t, DeniesExistence("Yes, we have it."))

	assert.True(t, AffirmsExistence("Yes, we stock it."))
	assert.True(t, AffirmsExistence("是的，目录里有这条记录"))
	assert.False(t, AffirmsExistence("The record shows a 33kV rating."))
}

func TestDuelPicksHigherScore(t *testing.T) {
	matches := []types.ChunkMatch{{ChunkID: "c1", ChunkText: "Code: PE-1234"}}
	completer := &fakeCompleter{
		strict: ai.CandidateAnswer{
			AnswerText: "No, couldn't find it.",
			Grounded:   false,
			Confidence: 0.3,
		},
		permissive: ai.CandidateAnswer{
			AnswerText: "Yes, PE-1234 is in the catalog.",
			Grounded:   true,
			Confidence: 0.8,
			Citations:  []string{"c1"},
		},
	}

	winner, err := Duel(context.Background(), completer, "do we have PE-1234?", matches, 400)
	require.NoError(t, err)
	assert.Equal(t, completer.permissive.AnswerText, winner.AnswerText)
}

func TestDuelTieGoesToPermissive(t *testing.T) {
	same := ai.CandidateAnswer{
		AnswerText: "permissive text",
		Grounded:   true,
		Confidence: 0.8,
		Citations:  []string{"c1"},
	}
	strict := same
	strict.AnswerText = "strict text"

	completer := &fakeCompleter{strict: strict, permissive: same}
	matches := []types.ChunkMatch{{ChunkID: "c1", ChunkText: "Name: Cable"}}

	winner, err := Duel(context.Background(), completer, "show me the cable", matches, 400)
	require.NoError(t, err)
	assert.Equal(t, "permissive text", winner.AnswerText)
}

func TestDuelSurvivorWinsWhenOneFails(t *testing.T) {
	completer := &fakeCompleter{
		strictErr: errors.New("schema validation failed"),
		permissive: ai.CandidateAnswer{
			AnswerText: "Yes, found it.",
			Grounded:   true,
			Confidence: 0.9,
		},
	}

	winner, err := Duel(context.Background(), completer, "do we have cables?", nil, 400)
	require.NoError(t, err)
	assert.Equal(t, "Yes, found it.", winner.AnswerText)
}

func TestDuelFailsWhenBothFail(t *testing.T) {
	completer := &fakeCompleter{
		strictErr: errors.New("boom"),
		permErr:   errors.New("boom"),
	}

	_, err := Duel(context.Background(), completer, "anything", nil, 400)
	assert.Error(t, err)
}
