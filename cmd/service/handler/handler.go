package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/catalab-ai/catalab/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
