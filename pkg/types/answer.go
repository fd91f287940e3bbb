package types

// QueryMode selects the retrieval strategy for one query.
type QueryMode string

const (
	QUERY_MODE_IDENTIFIER QueryMode = "identifier"
	QUERY_MODE_SEMANTIC   QueryMode = "semantic"
)

// QuestionIntent is the four-way classification both answer policies and the
// evidence filter must agree on.
type QuestionIntent string

const (
	INTENT_DETAIL    QuestionIntent = "detail"    // detail request about a known record
	INTENT_LOOKUP    QuestionIntent = "lookup"    // lookup/show request, answer is a record summary
	INTENT_EXISTENCE QuestionIntent = "existence" // specific-existence check, answer starts yes/no
	INTENT_CATEGORY  QuestionIntent = "category"  // broad-category check
)

func IntentFromString(s string) QuestionIntent {
	switch QuestionIntent(s) {
	case INTENT_DETAIL, INTENT_LOOKUP, INTENT_EXISTENCE, INTENT_CATEGORY:
		return QuestionIntent(s)
	default:
		return INTENT_LOOKUP
	}
}

type Citation struct {
	ChunkID string `json:"chunk_id"`
	Title   string `json:"title"`
}

// Answer is the pipeline's single produced object. Citations are always a
// subset of Matches by chunk id; the assembler enforces this, the generation
// step is never trusted.
type Answer struct {
	AnswerText    string       `json:"answer_text"`
	Matches       []ChunkMatch `json:"matches"`
	Citations     []Citation   `json:"citations"`
	Grounded      bool         `json:"grounded"`
	Confidence    float64      `json:"confidence"`
	MissingData   []string     `json:"missing_data"`
	NextQuestions []string     `json:"next_questions"`
}
