package srv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/catalab-ai/catalab/pkg/ai"
	"github.com/catalab-ai/catalab/pkg/metrics"
	"github.com/catalab-ai/catalab/pkg/types"
	"github.com/catalab-ai/catalab/pkg/utils"
)

// ErrMalformedOutput marks completion responses that failed schema
// validation. Callers must treat it as a completion failure, not coerce.
var ErrMalformedOutput = errors.New("completion output failed schema validation")

type AIConfig struct {
	Endpoint            string `toml:"endpoint"`
	Token               string `toml:"token"`
	ChatModel           string `toml:"chat_model"`
	EmbeddingModel      string `toml:"embedding_model"`
	EmbeddingDimensions int    `toml:"embedding_dimensions"`
	Timeout             int    `toml:"timeout"` // seconds, per upstream call
	Lang                string `toml:"lang"`    // "en" or "zh-CN", answer language default
}

func (c *AIConfig) FromENV() {
	c.Endpoint = os.Getenv("CATALAB_API_AI_ENDPOINT")
	c.Token = os.Getenv("CATALAB_API_AI_TOKEN")
	c.ChatModel = os.Getenv("CATALAB_API_AI_CHAT_MODEL")
	c.EmbeddingModel = os.Getenv("CATALAB_API_AI_EMBEDDING_MODEL")
	c.EmbeddingDimensions, _ = strconv.Atoi(os.Getenv("CATALAB_API_AI_EMBEDDING_DIMENSIONS"))
	c.Lang = os.Getenv("CATALAB_API_AI_LANG")
}

type AI struct {
	client     *openai.Client
	model      ai.ModelName
	dimensions int
	timeout    time.Duration
	lang       string
	cache      types.Cache
	cacheStats *prometheus.CounterVec
}

const embeddingCacheTTL = time.Minute * 10

func SetupAI(cfg AIConfig, cache types.Cache) (*AI, error) {
	if cfg.ChatModel == "" {
		return nil, errors.New("ai chat model is not configured")
	}
	if cfg.EmbeddingModel == "" {
		return nil, errors.New("ai embedding model is not configured")
	}

	clientCfg := openai.DefaultConfig(cfg.Token)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	dimensions := cfg.EmbeddingDimensions
	if dimensions == 0 {
		dimensions = 1024
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = time.Second * 30
	}

	lang := ai.MODEL_BASE_LANGUAGE_EN
	if cfg.Lang == "zh-CN" {
		lang = ai.MODEL_BASE_LANGUAGE_CN
	}

	return &AI{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      ai.ModelName{ChatModel: cfg.ChatModel, EmbeddingModel: cfg.EmbeddingModel},
		dimensions: dimensions,
		timeout:    timeout,
		lang:       lang,
		cache:      cache,
		cacheStats: metrics.NewCounterVec("embedding_cache_total", []string{"result"}),
	}, nil
}

func ApplyAI(cfg AIConfig, cache types.Cache) ApplyFunc {
	return func(s *Srv) {
		a, err := SetupAI(cfg, cache)
		if err != nil {
			panic(err)
		}
		s.ai = a
	}
}

func (s *AI) Lang() string {
	return s.lang
}

// EmbeddingForQuery 查询文本向量化
// Cached read-through per item; the upstream call is retried once since the
// pipeline is read-only and a repeat has no side effects.
func (s *AI) EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	result := ai.EmbeddingResult{
		Usage: &openai.Usage{},
		Data:  make([][]float32, len(content)),
	}

	var (
		missing      []string
		missingIndex []int
	)
	for i, text := range content {
		if vec, ok := s.cacheGet(ctx, text); ok {
			s.cacheStats.WithLabelValues("hit").Inc()
			result.Data[i] = vec
			continue
		}
		s.cacheStats.WithLabelValues("miss").Inc()
		missing = append(missing, text)
		missingIndex = append(missingIndex, i)
	}

	if len(missing) == 0 {
		result.Model = s.model.EmbeddingModel
		return result, nil
	}

	req := openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(s.model.EmbeddingModel),
		Input:      missing,
		Dimensions: s.dimensions,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	resp, err := s.client.CreateEmbeddings(callCtx, req)
	cancel()
	if err != nil {
		slog.Warn("embedding request failed, retrying once", slog.String("error", err.Error()))
		// fresh timeout for the retry, the first context may already be expired
		retryCtx, retryCancel := context.WithTimeout(ctx, s.timeout)
		resp, err = s.client.CreateEmbeddings(retryCtx, req)
		retryCancel()
	}
	if err != nil {
		return ai.EmbeddingResult{}, fmt.Errorf("error creating embedding: %w", err)
	}

	for i, v := range resp.Data {
		result.Data[missingIndex[i]] = v.Embedding
		s.cacheSet(ctx, missing[i], v.Embedding)
	}
	result.Usage.PromptTokens += resp.Usage.PromptTokens
	result.Usage.TotalTokens += resp.Usage.TotalTokens
	result.Model = string(resp.Model)

	return result, nil
}

// CompleteObject 结构化输出
// The response must conform to the JSON schema generated from out; anything
// else is surfaced as ErrMalformedOutput.
func (s *AI) CompleteObject(ctx context.Context, task, prompt string, out any) error {
	schema, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return fmt.Errorf("failed to generate output schema for %s: %w", task, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: s.model.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   task,
				Schema: schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("completion %s failed: %w", task, err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: empty choices for %s", ErrMalformedOutput, task)
	}

	content := resp.Choices[0].Message.Content
	if err = jsonschema.VerifySchemaAndUnmarshal(*schema, []byte(content), out); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrMalformedOutput, task, err.Error())
	}
	return nil
}

func (s *AI) embeddingCacheKey(text string) string {
	return "catalab:embedding:" + utils.MD5(s.model.EmbeddingModel+":"+text)
}

func (s *AI) cacheGet(ctx context.Context, text string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.embeddingCacheKey(text))
	if err != nil || raw == "" {
		return nil, false
	}
	var vec []float32
	if err = json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (s *AI) cacheSet(ctx context.Context, text string, vec []float32) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	// cache miss-path errors are ignored, the embedding call already succeeded
	_ = s.cache.SetEx(ctx, s.embeddingCacheKey(text), string(raw), embeddingCacheTTL)
}
