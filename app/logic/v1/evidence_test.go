package v1

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/catalab-ai/catalab/pkg/types"
)

func TestEnforceKeepSetSubsetOnly(t *testing.T) {
	candidates := []types.ChunkMatch{
		{ChunkID: "c1", Title: "Cable"},
		{ChunkID: "c2", Title: "Transformer"},
	}

	kept := EnforceKeepSet("show transformer", types.QUERY_MODE_SEMANTIC, types.INTENT_LOOKUP,
		[]string{"c2", "ghost", "c2"}, candidates, 8, 1)

	ids := lo.Map(kept, func(m types.ChunkMatch, _ int) string { return m.ChunkID })
	assert.Equal(t, []string{"c2"}, ids)
}

func TestEnforceKeepSetCap(t *testing.T) {
	var candidates []types.ChunkMatch
	var keep []string
	for _, id := range []string{"a", "b", "c", "d"} {
		candidates = append(candidates, types.ChunkMatch{ChunkID: id})
		keep = append(keep, id)
	}

	kept := EnforceKeepSet("q", types.QUERY_MODE_SEMANTIC, types.INTENT_LOOKUP, keep, candidates, 2, 1)
	assert.Len(t, kept, 2)
}

func TestEnforceKeepSetIdentifierNeverGuesses(t *testing.T) {
	candidates := []types.ChunkMatch{{ChunkID: "c1", Title: "Cable"}}

	kept := EnforceKeepSet("code PE-9999", types.QUERY_MODE_IDENTIFIER, types.INTENT_EXISTENCE,
		nil, candidates, 8, 1)
	assert.Empty(t, kept)
}

func TestEnforceKeepSetSemanticFallsBackToTop(t *testing.T) {
	candidates := []types.ChunkMatch{
		{ChunkID: "top", Title: "Cable"},
		{ChunkID: "second", Title: "Transformer"},
	}

	kept := EnforceKeepSet("something vague", types.QUERY_MODE_SEMANTIC, types.INTENT_LOOKUP,
		nil, candidates, 8, 1)
	assert.Len(t, kept, 1)
	assert.Equal(t, "top", kept[0].ChunkID)
}

func TestEnforceKeepSetDetailRejectsNoOverlap(t *testing.T) {
	empty := types.ChunkMatch{
		ChunkID:   "empty",
		Title:     "Widget",
		ChunkText: "Name: Widget\nDescription:\nAttributes: (none)",
	}
	relevant := types.ChunkMatch{
		ChunkID:   "good",
		Title:     "Outdoor Cable",
		ChunkText: "Name: Outdoor Cable\nDescription: armored cable rated for outdoor burial",
	}

	kept := EnforceKeepSet("which cable works outdoor?", types.QUERY_MODE_SEMANTIC, types.INTENT_DETAIL,
		[]string{"empty", "good"}, []types.ChunkMatch{empty, relevant}, 8, 1)

	ids := lo.Map(kept, func(m types.ChunkMatch, _ int) string { return m.ChunkID })
	assert.Equal(t, []string{"good"}, ids)
}

func TestKeyConceptOverlap(t *testing.T) {
	assert.GreaterOrEqual(t, KeyConceptOverlap("which cable works outdoor?", "armored cable for outdoor use"), 2)
	assert.Zero(t, KeyConceptOverlap("do we have it?", "Name: Widget"))
}
