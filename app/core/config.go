package core

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/catalab-ai/catalab/app/core/srv"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}
	conf.Pipeline.ApplyDefaults()

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	c.Pipeline.ApplyDefaults()
	return c
}

type CoreConfig struct {
	Addr     string         `toml:"addr"`
	Log      Log            `toml:"log"`
	Postgres PGConfig       `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	AI       srv.AIConfig   `toml:"ai"`
	Pipeline PipelineConfig `toml:"pipeline"`
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("CATALAB_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.AI.FromENV()
}

type PGConfig struct {
	DSN string `toml:"dsn"`
	// StatementTimeout bounds every statement on this connection, in
	// milliseconds. Requires the keyword/value DSN form.
	StatementTimeout int `toml:"statement_timeout"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("CATALAB_API_POSTGRESQL_DSN")
	m.StatementTimeout, _ = strconv.Atoi(os.Getenv("CATALAB_API_POSTGRESQL_STATEMENT_TIMEOUT"))
}

func (m PGConfig) FormatDSN() string {
	if m.StatementTimeout > 0 {
		return fmt.Sprintf("%s options='-c statement_timeout=%d'", m.DSN, m.StatementTimeout)
	}
	return m.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

func (m *RedisConfig) FromENV() {
	m.Addr = os.Getenv("CATALAB_API_REDIS_ADDR")
	m.Password = os.Getenv("CATALAB_API_REDIS_PASSWORD")
	m.DB, _ = strconv.Atoi(os.Getenv("CATALAB_API_REDIS_DB"))
}

// PipelineConfig 检索与仲裁链路的可调参数
type PipelineConfig struct {
	RetrieveLimit     int `toml:"retrieve_limit"`      // candidate list size handed to the filter
	OverFetchMultiple int `toml:"over_fetch_multiple"` // vector window = limit * multiple
	EvidenceLimit     int `toml:"evidence_limit"`      // hard cap on the admitted evidence set
	PerChunkTokens    int `toml:"per_chunk_tokens"`    // token budget per chunk in prompts
	OverlapMinTokens  int `toml:"overlap_min_tokens"`  // key-concept overlap threshold, tunable
	ChunkSize         int `toml:"chunk_size"`          // ingest chunk size in runes
	RateLimitPerIP    int `toml:"rate_limit_per_ip"`   // ask requests per second per client
}

func (c *PipelineConfig) ApplyDefaults() {
	if c.RetrieveLimit <= 0 {
		c.RetrieveLimit = 10
	}
	if c.OverFetchMultiple <= 0 {
		c.OverFetchMultiple = 4
	}
	if c.EvidenceLimit <= 0 {
		c.EvidenceLimit = 8
	}
	if c.PerChunkTokens <= 0 {
		c.PerChunkTokens = 400
	}
	if c.OverlapMinTokens <= 0 {
		c.OverlapMinTokens = 1
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 800
	}
	if c.RateLimitPerIP <= 0 {
		c.RateLimitPerIP = 5
	}
}

type Log struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

func (l *Log) FromENV() {
	l.Path = os.Getenv("CATALAB_API_LOG_PATH")
	l.Level = os.Getenv("CATALAB_API_LOG_LEVEL")
}

func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
