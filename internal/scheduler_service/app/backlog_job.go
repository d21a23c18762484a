package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

var (
	serviceCallBacklogGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dispatch",
			Name:      "service_calls",
			Help:      "Service calls currently in each lifecycle status.",
		},
		[]string{"status"},
	)
	backlogRefreshDurationHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "scheduler",
			Name:      "backlog_refresh_duration_seconds",
			Help:      "Duration of one service call backlog refresh.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	backlogRefreshFailuresCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "backlog_refresh_failures_total",
			Help:      "Backlog refreshes that failed to read the service call store.",
		},
	)
)

var trackedStatuses = []servicecall.ServiceCallStatus{
	servicecall.StatusOpen,
	servicecall.StatusAssigned,
	servicecall.StatusConfirmed,
	servicecall.StatusCompleted,
}

// ServiceCallCounter is the aggregate read side of the service call store.
type ServiceCallCounter interface {
	CountByStatus(ctx context.Context) (map[servicecall.ServiceCallStatus]int, error)
}

// BacklogJob periodically publishes the number of service calls per status.
type BacklogJob struct {
	calls   ServiceCallCounter
	timeout time.Duration
	logger  *slog.Logger
}

func NewBacklogJob(calls ServiceCallCounter, timeout time.Duration, logger *slog.Logger) *BacklogJob {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &BacklogJob{calls: calls, timeout: timeout, logger: logger.With("component", "backlog_job")}
}

// Refresh counts service calls by status and updates the gauge.
func (j *BacklogJob) Refresh(ctx context.Context) (map[servicecall.ServiceCallStatus]int, error) {
	timer := prometheus.NewTimer(backlogRefreshDurationHist)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	stored, err := j.calls.CountByStatus(ctx)
	if err != nil {
		backlogRefreshFailuresCounter.Inc()
		j.logger.ErrorContext(ctx, "Failed to count service calls for backlog", "error", err)
		return nil, fmt.Errorf("count service calls: %w", err)
	}

	counts := make(map[servicecall.ServiceCallStatus]int, len(trackedStatuses))
	for _, st := range trackedStatuses {
		counts[st] = stored[st]
	}
	for st, n := range counts {
		serviceCallBacklogGauge.WithLabelValues(string(st)).Set(float64(n))
	}

	j.logger.DebugContext(ctx, "Backlog refreshed", "open", counts[servicecall.StatusOpen], "assigned", counts[servicecall.StatusAssigned])
	return counts, nil
}

// Start schedules Refresh every interval, running once immediately. The caller shuts the scheduler down.
func (j *BacklogJob) Start(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(j.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			_, _ = j.Refresh(ctx)
		}),
		gocron.WithName("service_call_backlog"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to schedule backlog job: %w", err)
	}

	s.Start()
	j.logger.InfoContext(ctx, "Backlog job scheduled", "interval", interval)
	return s, nil
}
