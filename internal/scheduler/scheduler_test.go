package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/stockverse/internal/common"
	"github.com/bobmcallan/stockverse/internal/models"
)

type countingJob struct {
	runs    atomic.Int32
	running atomic.Int32
	maxPar  atomic.Int32
	hold    time.Duration
	err     error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.running.Add(1)
	defer j.running.Add(-1)
	for {
		cur := j.maxPar.Load()
		if n <= cur || j.maxPar.CompareAndSwap(cur, n) {
			break
		}
	}
	j.runs.Add(1)
	select {
	case <-time.After(j.hold):
	case <-ctx.Done():
	}
	return j.err
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(common.NewSilentLogger())
	err := s.AddJob("every now and then", &countingJob{})
	assert.Error(t, err)
}

func TestScheduler_RunsJob(t *testing.T) {
	s := New(common.NewSilentLogger())
	job := &countingJob{}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := New(common.NewSilentLogger())
	job := &countingJob{hold: 2500 * time.Millisecond}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	time.Sleep(3500 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), job.maxPar.Load(), "runs never overlap")
}

func TestRunNow_ReturnsJobError(t *testing.T) {
	s := New(common.NewSilentLogger())
	boom := errors.New("boom")
	assert.ErrorIs(t, s.RunNow(&countingJob{err: boom}), boom)
}

type stubAlerts struct {
	report models.EvaluationReport
	calls  int
}

func (s *stubAlerts) EvaluateAll(context.Context) models.EvaluationReport {
	s.calls++
	return s.report
}
func (s *stubAlerts) CreateRule(context.Context, string, models.AlertKind, float64) (*models.AlertRule, error) {
	return nil, nil
}
func (s *stubAlerts) RemoveRule(context.Context, string) error { return nil }
func (s *stubAlerts) DismissNotification(string) bool { return false }
func (s *stubAlerts) Rules() []models.AlertRule { return nil }
func (s *stubAlerts) Notifications() []models.FiredNotification { return nil }
func (s *stubAlerts) Counts() models.AlertCounts { return models.AlertCounts{} }
func (s *stubAlerts) ActiveCount() int { return 0 }
func (s *stubAlerts) FiredCount() int { return 0 }

func TestAlertEvaluationJob_Run(t *testing.T) {
	alerts := &stubAlerts{report: models.EvaluationReport{RulesEvaluated: 2, Fired: []string{"r1"}}}
	job := &AlertEvaluationJob{Alerts: alerts, Logger: common.NewSilentLogger()}

	assert.Equal(t, "alert_evaluation", job.Name())
	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, alerts.calls)
}
