package scheduler

import (
	"context"
	"fmt"
	"sync"

	"TrendBot/internal/model"
	"TrendBot/internal/reporter"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reporter runs a trend report and reports failures to the requester.
type Reporter interface {
	Run(ctx context.Context, req model.Request) (*reporter.Result, error)
	Fail(ctx context.Context, req model.Request, err error)
}

// Scheduler runs the configured trend report on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Reporter Reporter
	Request  model.Request
	Ctx      context.Context
	log      *zap.SugaredLogger
	manual   sync.WaitGroup // runs started outside cron
}

// NewScheduler creates a new Scheduler for req.
func NewScheduler(ctx context.Context, rep Reporter, req model.Request, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Reporter: rep,
		Request:  req,
		Ctx:      ctx,
		log:      log,
	}
}

// Register adds the report job. expr uses the six-field format with seconds.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	s.log.Infow("report scheduled", "cron", expr, "ticker", s.Request.Ticker, "channel", s.Request.Channel)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs, including ones
// started with Trigger, to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.manual.Wait()
	s.log.Info("scheduler stopped")
}

// RunNow executes the report task immediately (for manual trigger).
func (s *Scheduler) RunNow() {
	s.reportTask()
}

// Trigger runs the report task in the background (run_on_start). Stop waits for it.
func (s *Scheduler) Trigger() {
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		s.reportTask()
	}()
}

func (s *Scheduler) reportTask() {
	s.log.Infow("running scheduled report", "ticker", s.Request.Ticker)
	if _, err := s.Reporter.Run(s.Ctx, s.Request); err != nil {
		s.log.Errorw("scheduled report", "ticker", s.Request.Ticker, "error", err)
		s.Reporter.Fail(s.Ctx, s.Request, err)
	}
}
