package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/catalab-ai/catalab/app/logic/v1"
	"github.com/catalab-ai/catalab/app/response"
	"github.com/catalab-ai/catalab/pkg/utils"
)

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask 目录问答
func (s *HttpSrv) Ask(c *gin.Context) {
	var req AskRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	answer, err := v1.NewAskLogic(c.Request.Context(), s.Core).Ask(req.Question)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, answer)
}
