package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/catalab-ai/catalab/app/logic/v1"
	"github.com/catalab-ai/catalab/app/response"
	"github.com/catalab-ai/catalab/pkg/types"
	"github.com/catalab-ai/catalab/pkg/utils"
)

// IngestDocument 文档入库或刷新
func (s *HttpSrv) IngestDocument(c *gin.Context) {
	var req v1.IngestRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	doc, err := v1.NewIngestLogic(c.Request.Context(), s.Core).Ingest(req)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, doc)
}

// DeleteDocument 删除文档
func (s *HttpSrv) DeleteDocument(c *gin.Context) {
	id, _ := c.Params.Get("id")
	if err := v1.NewIngestLogic(c.Request.Context(), s.Core).Delete(id); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type ListDocumentsRequest struct {
	DocType  types.DocType `form:"doc_type"`
	Page     uint64        `form:"page"`
	PageSize uint64        `form:"pagesize"`
}

type ListDocumentsResponse struct {
	List  []types.Document `json:"list"`
	Total uint64           `json:"total"`
}

// ListDocuments 分页查询文档
func (s *HttpSrv) ListDocuments(c *gin.Context) {
	var req ListDocumentsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	docs, total, err := v1.NewIngestLogic(c.Request.Context(), s.Core).List(req.DocType, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, ListDocumentsResponse{
		List:  docs,
		Total: total,
	})
}
