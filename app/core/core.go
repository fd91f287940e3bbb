package core

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/catalab-ai/catalab/app/core/srv"
	"github.com/catalab-ai/catalab/app/store/sqlstore"
	"github.com/catalab-ai/catalab/pkg/types"
	"github.com/catalab-ai/catalab/pkg/utils"
)

type Core struct {
	cfg        CoreConfig
	srv        *srv.Srv
	stores     func() *sqlstore.Provider
	httpEngine *gin.Engine
	metrics    *Metrics
	cache      types.Cache
}

func MustSetupCore(cfg CoreConfig) *Core {
	core := &Core{
		cfg: cfg,
	}

	setupLogger(cfg.Log)
	utils.SetupIDWorker(1)

	core.metrics = NewMetrics("catalab", "core")
	core.httpEngine = gin.New()
	core.stores = sqlstore.MustSetup(cfg.Postgres)
	core.cache = setupCache(cfg.Redis)
	core.srv = srv.SetupSrvs(
		srv.ApplyAI(cfg.AI, core.cache),
	)

	slog.Info("core setup finished", slog.String("addr", cfg.Addr))
	return core
}

func setupLogger(cfg Log) {
	var w = os.Stdout
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.Path != "" {
		logger := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(logger, opts)))
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Cache() types.Cache {
	return s.cache
}

// Install 初始化数据库结构
func (s *Core) Install() error {
	return s.Store().Install()
}
