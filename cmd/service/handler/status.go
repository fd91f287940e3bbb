package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/catalab-ai/catalab/app/response"
)

// Status 服务状态
func (s *HttpSrv) Status(c *gin.Context) {
	dbName, err := s.Core.Store().GetDBName()
	dbStatus := "running"
	if err != nil {
		dbStatus = "unavailable"
		dbName = ""
	}

	corpus := map[string]int64{}
	if counts, err := s.Core.Store().DocumentStore().CountByDocType(c.Request.Context()); err == nil {
		for _, item := range counts {
			corpus[item.DocType] = item.Count
		}
	}

	response.APISuccess(c, gin.H{
		"ai": s.Core.Srv().GetAIStatus(),
		"store": gin.H{
			"status":   dbStatus,
			"database": dbName,
		},
		"corpus": corpus,
	})
}
