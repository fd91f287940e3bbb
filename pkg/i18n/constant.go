package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"

	ERROR_AI_EMBEDDING_MODEL_NOT_FOUND = "error.ai.embedding.model.not.found"
	ERROR_AI_MALFORMED_OUTPUT          = "error.ai.malformed.output"

	ERROR_RETRIEVAL_FAILED  = "error.retrieval.failed"
	ERROR_STORE_UNAVAILABLE = "error.store.unavailable"
)
