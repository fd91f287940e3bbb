package types

import (
	sq "github.com/Masterminds/squirrel"
)

type DocType = string

const (
	DOC_TYPE_PRODUCT    DocType = "product"
	DOC_TYPE_MATERIAL   DocType = "material"
	DOC_TYPE_SCHEMA     DocType = "schema"
	DOC_TYPE_DICTIONARY DocType = "dictionary"
)

// KnownDocTypes is the full set of document kinds retrieval may touch.
var KnownDocTypes = []DocType{DOC_TYPE_PRODUCT, DOC_TYPE_MATERIAL, DOC_TYPE_SCHEMA, DOC_TYPE_DICTIONARY}

// DocTypePriority orders retrieval candidates by record kind. Lower is
// better: entity records beat reference docs even at a worse vector distance.
func DocTypePriority(t DocType) int {
	switch t {
	case DOC_TYPE_PRODUCT:
		return 0
	case DOC_TYPE_MATERIAL:
		return 1
	case DOC_TYPE_DICTIONARY:
		return 2
	case DOC_TYPE_SCHEMA:
		return 3
	default:
		return 4
	}
}

type Document struct {
	ID          string  `json:"id" db:"id"`
	DocType     DocType `json:"doc_type" db:"doc_type"`
	EntityTable string  `json:"entity_table" db:"entity_table"`
	EntityID    string  `json:"entity_id" db:"entity_id"`
	Title       string  `json:"title" db:"title"`
	RawText     string  `json:"raw_text" db:"raw_text"`
	UpdatedAt   int64   `json:"updated_at" db:"updated_at"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
}

type GetDocumentsOptions struct {
	ID          string
	DocType     DocType
	DocTypes    []DocType
	EntityTable string
	EntityID    string
}

func (opts GetDocumentsOptions) Apply(query *sq.SelectBuilder) {
	if opts.ID != "" {
		*query = query.Where(sq.Eq{"id": opts.ID})
	}
	if opts.DocType != "" {
		*query = query.Where(sq.Eq{"doc_type": opts.DocType})
	}
	if len(opts.DocTypes) > 0 {
		*query = query.Where(sq.Eq{"doc_type": opts.DocTypes})
	}
	if opts.EntityTable != "" {
		*query = query.Where(sq.Eq{"entity_table": opts.EntityTable})
	}
	if opts.EntityID != "" {
		*query = query.Where(sq.Eq{"entity_id": opts.EntityID})
	}
}

// DocTypeCount is the per-kind corpus size used by the stats process.
type DocTypeCount struct {
	DocType DocType `json:"doc_type" db:"doc_type"`
	Count   int64   `json:"count" db:"count"`
}
