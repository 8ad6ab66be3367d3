package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"newswatch/internal/pipeline"
)

// runTimeout bounds one ingestion pass; work committed before the deadline
// stays committed.
const runTimeout = 2 * time.Minute

// Scheduler drives the ingestion pipeline on a cron spec. It plays the role
// of the external periodic trigger; the pipeline itself never self-schedules.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *pipeline.Pipeline
}

func New(spec string, p *pipeline.Pipeline) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, pipeline: p}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// First pass shortly after startup instead of waiting a full cron period.
	const startupDelay = 10 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce exposes a single pass for manual triggering.
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	res := s.pipeline.Run(ctx)
	log.Printf("scheduled pass done: processed=%d added=%d skipped=%d failed=%d",
		res.Processed, res.Added, res.Skipped, res.Failed)
}
