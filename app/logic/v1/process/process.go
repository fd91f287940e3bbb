package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/pkg/safe"
)

// Process 周期性后台任务
type Process struct {
	core *core.Core
	cron *cron.Cron
}

func NewProcess(core *core.Core) *Process {
	return &Process{
		core: core,
		cron: cron.New(),
	}
}

// Start registers the corpus stats refresher and launches the scheduler.
func (p *Process) Start() error {
	if _, err := p.cron.AddFunc("@every 5m", func() {
		safe.RunWithLog(p.refreshCorpusStats, "process.refreshCorpusStats")
	}); err != nil {
		return err
	}

	p.cron.Start()

	// prime the gauges so /metrics is meaningful right after boot
	go safe.RunWithLog(p.refreshCorpusStats, "process.refreshCorpusStats")
	return nil
}

func (p *Process) Stop() {
	p.cron.Stop()
}

func (p *Process) refreshCorpusStats() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	counts, err := p.core.Store().DocumentStore().CountByDocType(ctx)
	if err != nil {
		slog.Warn("corpus stats refresh failed", slog.String("error", err.Error()))
		return
	}
	for _, c := range counts {
		p.core.Metrics().SetCorpusDocuments(c.DocType, float64(c.Count))
	}
}
