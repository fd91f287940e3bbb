package middleware

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/time/rate"

	"github.com/catalab-ai/catalab/app/response"
	"github.com/catalab-ai/catalab/pkg/errors"
	"github.com/catalab-ai/catalab/pkg/i18n"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// AcceptLanguage 目前服务端支持 en: English, zh-CN: 简体中文
func AcceptLanguage() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		lang := ctx.Request.Header.Get("Accept-Language")
		if strings.Contains(lang, "zh") {
			ctx.Set(response.LANGUAGE_KEY, "zh-CN")
			return
		}
		ctx.Set(response.LANGUAGE_KEY, i18n.DEFAULT_LANG)
	}
}

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, Accept-Language")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix seconds
}

// IPRateLimit 基于客户端IP的限流
// One token bucket per client IP; stale entries are swept lazily so the map
// does not grow without bound.
func IPRateLimit(perSecond int) gin.HandlerFunc {
	limiters := cmap.New[*ipLimiterEntry]()
	var lastSweep atomic.Int64
	lastSweep.Store(time.Now().Unix())

	return func(c *gin.Context) {
		key := c.ClientIP()
		entry, ok := limiters.Get(key)
		if !ok {
			entry = &ipLimiterEntry{
				limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond*2),
			}
			limiters.SetIfAbsent(key, entry)
			entry, _ = limiters.Get(key)
		}
		now := time.Now().Unix()
		entry.lastSeen.Store(now)

		if sweep := lastSweep.Load(); now-sweep > 600 && lastSweep.CompareAndSwap(sweep, now) {
			for kv := range limiters.IterBuffered() {
				if now-kv.Val.lastSeen.Load() > 600 {
					limiters.Remove(kv.Key)
				}
			}
		}

		if !entry.limiter.Allow() {
			response.APIError(c, errors.New("middleware.IPRateLimit", i18n.ERROR_TOO_MANY_REQUESTS, nil).Code(http.StatusTooManyRequests))
		}
	}
}
