package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"smartinventory/internal/config"
	"smartinventory/internal/jobs"
	"smartinventory/internal/services"
	"smartinventory/pkg/logger"
)

const (
	AlertRefreshJob     = "inventory-alert-refresh"
	DashboardArchiveJob = "dashboard-archive"
)

type AlertRefresher interface {
	Refresh(ctx context.Context) (*jobs.AlertRefreshResult, error)
}

type ReportArchiver interface {
	Archive(ctx context.Context) (*services.ArchivedReport, error)
}

// JobScheduler runs the periodic maintenance jobs. Runs of the same job
// never overlap.
type JobScheduler struct {
	scheduler gocron.Scheduler
	alerts    AlertRefresher
	archive   ReportArchiver
	ctx       context.Context
	cancel    context.CancelFunc
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler registers the alert refresh and, when archive is not nil,
// the dashboard archive. A zero interval leaves the job out.
func NewJobScheduler(cfg config.Jobs, alerts AlertRefresher, archive ReportArchiver) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		scheduler: scheduler,
		alerts:    alerts,
		archive:   archive,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]gocron.Job),
	}

	if alerts != nil {
		if err := js.addJob(AlertRefreshJob, cfg.AlertRefreshInterval, js.refreshInventoryAlerts); err != nil {
			cancel()
			return nil, err
		}
	}
	if archive != nil {
		if err := js.addJob(DashboardArchiveJob, cfg.DashboardArchiveInterval, js.archiveDashboard); err != nil {
			cancel()
			return nil, err
		}
	}

	logger.L().Info("background jobs registered", zap.Strings("jobs", js.JobNames()))
	return js, nil
}

func (js *JobScheduler) addJob(name string, interval time.Duration, run func(ctx context.Context) error) error {
	if interval <= 0 {
		logger.L().Info("background job disabled", zap.String("job", name))
		return nil
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := run(js.ctx); err != nil {
				logger.L().Error("background job failed", zap.String("job", name), zap.Error(err))
			}
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}

	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
	return nil
}

func (js *JobScheduler) Start() {
	logger.L().Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop cancels running jobs and waits for them to return.
func (js *JobScheduler) Stop() error {
	logger.L().Info("stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs in name order.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (js *JobScheduler) refreshInventoryAlerts(ctx context.Context) error {
	_, err := js.alerts.Refresh(ctx)
	return err
}

func (js *JobScheduler) archiveDashboard(ctx context.Context) error {
	report, err := js.archive.Archive(ctx)
	if err != nil {
		return err
	}
	logger.L().Info("dashboard archived", zap.String("object", report.Object))
	return nil
}
