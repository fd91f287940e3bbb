package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPGConfigFormatDSN(t *testing.T) {
	cfg := PGConfig{DSN: "host=localhost dbname=catalab"}
	assert.Equal(t, "host=localhost dbname=catalab", cfg.FormatDSN())

	cfg.StatementTimeout = 3000
	assert.Equal(t, "host=localhost dbname=catalab options='-c statement_timeout=3000'", cfg.FormatDSN())
}

func TestPipelineConfigDefaults(t *testing.T) {
	var cfg PipelineConfig
	cfg.ApplyDefaults()

	assert.Equal(t, 10, cfg.RetrieveLimit)
	assert.Equal(t, 4, cfg.OverFetchMultiple)
	assert.Equal(t, 8, cfg.EvidenceLimit)
	assert.Equal(t, 400, cfg.PerChunkTokens)
	assert.Equal(t, 1, cfg.OverlapMinTokens)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 5, cfg.RateLimitPerIP)
}

func TestPipelineConfigKeepsExplicitValues(t *testing.T) {
	cfg := PipelineConfig{RetrieveLimit: 20, EvidenceLimit: 4}
	cfg.ApplyDefaults()

	assert.Equal(t, 20, cfg.RetrieveLimit)
	assert.Equal(t, 4, cfg.EvidenceLimit)
}
