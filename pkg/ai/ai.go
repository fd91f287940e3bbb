package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/catalab-ai/catalab/pkg/types"
)

const (
	MODEL_BASE_LANGUAGE_CN = "简体中文"
	MODEL_BASE_LANGUAGE_EN = "English"
)

type ModelName struct {
	ChatModel      string `toml:"chat_model"`
	EmbeddingModel string `toml:"embedding_model"`
}

type EmbeddingResult struct {
	Model string
	Data  [][]float32
	Usage *openai.Usage
}

// Embedder is the embed(text) -> vector capability.
type Embedder interface {
	EmbeddingForQuery(ctx context.Context, content []string) (EmbeddingResult, error)
}

// Completer is the complete(prompt, schema) -> structured object capability.
// Implementations must treat schema-validation failures as completion
// failures, never coerce.
type Completer interface {
	CompleteObject(ctx context.Context, task, prompt string, out any) error
	Lang() string
}

// ReformulateResult is the structured output of the query reformulation step.
type ReformulateResult struct {
	Query string `json:"query"`
}

// EvidenceDecision is the structured output of the evidence filter step.
type EvidenceDecision struct {
	Intent string   `json:"intent"`
	Keep   []string `json:"keep"`
}

// CandidateAnswer is the structured output of one answer policy.
type CandidateAnswer struct {
	Intent        string   `json:"intent"`
	AnswerText    string   `json:"answer_text"`
	Citations     []string `json:"citations"`
	Grounded      bool     `json:"grounded"`
	Confidence    float64  `json:"confidence"`
	MissingData   []string `json:"missing_data"`
	NextQuestions []string `json:"next_questions"`
}

const (
	PROMPT_VAR_QUESTION = "${question}"
	PROMPT_VAR_QUERY    = "${query}"
	PROMPT_VAR_EVIDENCE = "${evidence}"
	PROMPT_VAR_LANG     = "${lang}"
)

// DetectLang maps the question text to the prompt language family.
func DetectLang(text string) string {
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Cmn {
		return MODEL_BASE_LANGUAGE_CN
	}
	return MODEL_BASE_LANGUAGE_EN
}

func ReplaceVars(prompt string, vars map[string]string) string {
	for k, v := range vars {
		prompt = strings.ReplaceAll(prompt, k, v)
	}
	return prompt
}

var tokenEncoder *tiktoken.Tiktoken

func init() {
	tokenEncoder, _ = tiktoken.GetEncoding("cl100k_base")
}

// TruncateTokens caps text at max tokens. Falls back to a rune cut when the
// encoder is unavailable (offline BPE files).
func TruncateTokens(text string, max int) string {
	if max <= 0 {
		return text
	}
	if tokenEncoder == nil {
		runes := []rune(text)
		if len(runes) <= max*2 {
			return text
		}
		return string(runes[:max*2])
	}
	tokens := tokenEncoder.Encode(text, nil, nil)
	if len(tokens) <= max {
		return text
	}
	return tokenEncoder.Decode(tokens[:max])
}

// BuildEvidenceBlock renders the filtered matches the way every prompt
// consumes them: one block per chunk, id first so the model can cite it.
func BuildEvidenceBlock(matches []types.ChunkMatch, perChunkTokens int) string {
	if len(matches) == 0 {
		return "null"
	}

	str := strings.Builder{}
	for _, v := range matches {
		str.WriteString(fmt.Sprintf("[%s] %s (%s)\n", v.ChunkID, v.Title, v.DocType))
		str.WriteString(TruncateTokens(v.ChunkText, perChunkTokens))
		str.WriteString("\n----------------\n")
	}
	return str.String()
}
