package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/i18n"
)

type Meta struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data"`
}

const (
	LOCALIZER_KEY = "localizer"
	LANGUAGE_KEY  = "language"
)

// ProvideResponseLocalizer 注入多语言组件
func ProvideResponseLocalizer(l i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(LOCALIZER_KEY, l)
	}
}

func localizeMessage(c *gin.Context, messageID string) string {
	raw, exists := c.Get(LOCALIZER_KEY)
	if !exists {
		return messageID
	}
	localizer, ok := raw.(i18n.Localizer)
	if !ok {
		return messageID
	}
	lang := c.GetString(LANGUAGE_KEY)
	if lang == "" {
		lang = i18n.DEFAULT_LANG
	}
	return localizer.Get(lang, messageID)
}

func APIError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	messageID := err.Error()
	if ce, ok := err.(*errors.CustomizedError); ok {
		code = ce.GetCode()
		messageID = ce.Message()
	}

	if code >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
	}

	c.AbortWithStatusJSON(code, Response{
		Meta: Meta{
			Code:    code,
			Message: localizeMessage(c, messageID),
		},
	})
}

func APISuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{
			Code:    http.StatusOK,
			Message: "ok",
		},
		Data: data,
	})
}
