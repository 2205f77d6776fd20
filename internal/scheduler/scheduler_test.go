package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"TrendBot/internal/model"
	"TrendBot/internal/reporter"

	"go.uber.org/zap"
)

type fakeReporter struct {
	mu    sync.Mutex
	err   error
	runs  int
	fails []error
	done  chan struct{}

	started chan struct{}
	release chan struct{}
}

func (f *fakeReporter) Run(_ context.Context, req model.Request) (*reporter.Result, error) {
	if f.release != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	if f.done != nil && f.runs == 1 {
		close(f.done)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &reporter.Result{Report: &model.TrendReport{Symbol: req.Ticker}}, nil
}

func (f *fakeReporter) Fail(_ context.Context, _ model.Request, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fails = append(f.fails, err)
}

var req = model.Request{Ticker: "AAPL", User: "scheduler", Channel: "C1"}

func TestRunNow(t *testing.T) {
	rep := &fakeReporter{}
	s := NewScheduler(context.Background(), rep, req, zap.NewNop().Sugar())
	s.RunNow()
	if rep.runs != 1 || len(rep.fails) != 0 {
		t.Errorf("expected one clean run, got runs=%d fails=%d", rep.runs, len(rep.fails))
	}
}

func TestRunNow_PostsFailure(t *testing.T) {
	rep := &fakeReporter{err: model.ErrUpstream}
	s := NewScheduler(context.Background(), rep, req, zap.NewNop().Sugar())
	s.RunNow()
	if len(rep.fails) != 1 || rep.fails[0] != model.ErrUpstream {
		t.Errorf("expected failure to be reported, got %v", rep.fails)
	}
}

func TestRegister_InvalidExpression(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeReporter{}, req, zap.NewNop().Sugar())
	if err := s.Register("not a cron"); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	// Five-field expressions are rejected because seconds are required.
	if err := s.Register("0 9 * * 1-5"); err == nil {
		t.Fatal("expected error for five-field expression")
	}
}

func TestScheduledRun(t *testing.T) {
	rep := &fakeReporter{done: make(chan struct{})}
	s := NewScheduler(context.Background(), rep, req, zap.NewNop().Sugar())
	if err := s.Register("* * * * * *"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s.Start()
	defer s.Stop()

	select {
	case <-rep.done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestStop_WaitsForTriggeredRun(t *testing.T) {
	rep := &fakeReporter{started: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(context.Background(), rep, req, zap.NewNop().Sugar())
	s.Start()
	s.Trigger()
	<-rep.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the triggered report was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(rep.release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the report finished")
	}
	if rep.runs != 1 {
		t.Errorf("expected one run, got %d", rep.runs)
	}
}
