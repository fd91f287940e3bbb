package v1

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/types"
)

func TestAssembleAnswerCitationSubset(t *testing.T) {
	kept := []types.ChunkMatch{
		{ChunkID: "c1", Title: "Cable PE-100"},
		{ChunkID: "c2", Title: "Transformer"},
	}
	winner := ai.CandidateAnswer{
		AnswerText: "The cable PE-100 is rated for outdoor use.",
		Grounded:   true,
		Confidence: 0.85,
		Citations:  []string{"c1"},
	}

	answer := assembleAnswer(winner, kept)

	matchIDs := map[string]bool{}
	for _, m := range answer.Matches {
		matchIDs[m.ChunkID] = true
	}
	for _, c := range answer.Citations {
		assert.True(t, matchIDs[c.ChunkID], "citation outside the match set: %s", c.ChunkID)
	}
	assert.Len(t, answer.Citations, 1)
	assert.Equal(t, "Cable PE-100", answer.Citations[0].Title)
	assert.Len(t, answer.Matches, 2)
}

func TestAssembleAnswerDropsInvalidCitationSetEntirely(t *testing.T) {
	kept := []types.ChunkMatch{{ChunkID: "c1", Title: "Cable"}}
	winner := ai.CandidateAnswer{
		AnswerText: "Answer citing a ghost.",
		Grounded:   true,
		Citations:  []string{"c1", "ghost"},
	}

	answer := assembleAnswer(winner, kept)
	assert.Empty(t, answer.Citations)
	assert.Len(t, answer.Matches, 1)
}

func TestAssembleAnswerEmptyCitations(t *testing.T) {
	winner := ai.CandidateAnswer{
		AnswerText: "No, there are no transformers in the catalog.",
		Grounded:   true,
		Confidence: 0.9,
	}

	answer := assembleAnswer(winner, nil)
	assert.NotNil(t, answer.Citations)
	assert.Empty(t, answer.Citations)
	assert.True(t, answer.Grounded)
}

// Full pipeline over a fake corpus: an identifier question must ride the
// lexical path, keep the code-matching chunk, and cite exactly that chunk.
func TestPipelineIdentifierLookup(t *testing.T) {
	question := "Look up product with code: PE: TX-3151-55/12"
	codeLine := "Name: Distribution Transformer\nCode: PE: TX-3151-55/12\nType: 33/11kV"

	store := &fakeChunkStore{
		chunks: []types.ChunkMatch{
			{ChunkID: "c1", DocType: types.DOC_TYPE_PRODUCT, Title: "Distribution Transformer TX-3151", ChunkText: codeLine},
			{ChunkID: "c2", DocType: types.DOC_TYPE_PRODUCT, Title: "Cable PE-100", ChunkText: "Name: Cable\nCode: PE-100"},
			{ChunkID: "c3", DocType: types.DOC_TYPE_MATERIAL, Title: "Steel", ChunkText: "Name: Steel"},
		},
		texts: map[string]string{
			"c1": codeLine,
			"c2": "Name: Cable\nCode: PE-100",
			"c3": "Name: Steel",
		},
	}

	candidates, mode, err := HybridRetrieve(context.Background(), store, &fakeEmbedder{}, question, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, types.QUERY_MODE_IDENTIFIER, mode)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "c1", candidates[0].ChunkID, "the code-matching chunk must rank first")

	kept := EnforceKeepSet(question, mode, types.INTENT_LOOKUP, []string{"c1"}, candidates, 8, 1)
	require.Len(t, kept, 1)
	assert.Equal(t, "c1", kept[0].ChunkID)

	summary := ai.CandidateAnswer{
		AnswerText: "Distribution Transformer, code PE: TX-3151-55/12, rated 33/11kV.",
		Grounded:   true,
		Confidence: 0.9,
		Citations:  []string{"c1"},
	}
	completer := &fakeCompleter{strict: summary, permissive: summary}
	winner, err := Duel(context.Background(), completer, question, kept, 400)
	require.NoError(t, err)

	answer := assembleAnswer(winner, kept)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "c1", answer.Citations[0].ChunkID)
	assert.True(t, answer.Grounded)
	// a lookup answer is a record summary, not a yes/no verdict
	assert.False(t, DeniesExistence(answer.AnswerText))
	assert.False(t, AffirmsExistence(answer.AnswerText))
}

// Full pipeline with no matching records: the broad-category question ends in
// an explicitly negative, grounded answer with no citations.
func TestPipelineCategoryNoMatch(t *testing.T) {
	question := "Do we have Transformers?"
	store := &fakeChunkStore{texts: map[string]string{}}

	candidates, mode, err := HybridRetrieve(context.Background(), store, &fakeEmbedder{}, question, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, types.QUERY_MODE_SEMANTIC, mode)
	assert.Empty(t, candidates)

	kept := EnforceKeepSet(question, mode, types.INTENT_CATEGORY, nil, candidates, 8, 1)
	assert.Empty(t, kept)

	completer := &fakeCompleter{
		strict: ai.CandidateAnswer{
			AnswerText: "I couldn't find any transformer records.",
			Grounded:   false,
			Confidence: 0.4,
		},
		permissive: ai.CandidateAnswer{
			AnswerText: "No, the catalog has no transformer records.",
			Grounded:   true,
			Confidence: 0.8,
		},
	}
	winner, err := Duel(context.Background(), completer, question, kept, 400)
	require.NoError(t, err)

	answer := assembleAnswer(winner, kept)
	assert.True(t, DeniesExistence(answer.AnswerText))
	assert.True(t, answer.Grounded)
	assert.Empty(t, answer.Citations)
	assert.Empty(t, answer.Matches)
}

func TestDegradedAnswer(t *testing.T) {
	matches := []types.ChunkMatch{{ChunkID: "c1"}}
	answer := degradedAnswer(matches, "answer arbitration failed")

	assert.False(t, answer.Grounded)
	assert.Zero(t, answer.Confidence)
	assert.Equal(t, []string{"answer arbitration failed"}, answer.MissingData)
	assert.Empty(t, answer.Citations)
	assert.Len(t, answer.Matches, 1)
}

func TestDegradedAnswerWithoutEvidence(t *testing.T) {
	answer := degradedAnswer(nil, "evidence filtering failed")

	assert.NotNil(t, answer.Matches)
	assert.Empty(t, answer.Matches, "unadmitted candidates must not be presented as evidence")
	assert.Empty(t, answer.Citations)
	assert.False(t, answer.Grounded)
}
