package service

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/cmd/service/handler"
	"github.com/catalab-ai/catalab/cmd/service/middleware"
	"github.com/catalab-ai/catalab/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func apiMetrics(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		core.Metrics().ObserveAPI(c.FullPath(), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(gin.Recovery())
	s.Engine.Use(middleware.I18n(), middleware.AcceptLanguage())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(apiMetrics(s.Core))

	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.GET("/status", s.Status)
		apiV1.POST("/ask", middleware.IPRateLimit(s.Core.Cfg().Pipeline.RateLimitPerIP), s.Ask)

		documents := apiV1.Group("/documents")
		{
			documents.GET("", s.ListDocuments)
			documents.POST("", s.IngestDocument)
			documents.DELETE("/:id", s.DeleteDocument)
		}
	}
}
