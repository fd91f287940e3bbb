package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "catalab_"

const (
	TABLE_DOCUMENT       = TableName("document")
	TABLE_DOCUMENT_CHUNK = TableName("document_chunk")
)
