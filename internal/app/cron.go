package app

import (
	"context"
	"flag"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fxpub/internal/config"
	"fxpub/internal/provider"
	"fxpub/internal/site"
)

// Scheduler runs a job on a cron schedule until its context is canceled.
// Shutdown may be called from multiple goroutines.
type Scheduler struct {
	spec string
	job  func(ctx context.Context, execID string)
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

func (s *Scheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()

	job := func(jobCtx context.Context) {
		s.job(jobCtx, uuid.NewString())
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(s.spec, false),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)

	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func NewScheduler(spec string, job func(ctx context.Context, execID string)) *Scheduler {
	return &Scheduler{spec: spec, job: job}
}

// cronCommand keeps the process alive and runs the full update-and-build
// pipeline for the current day on the configured cron spec.
func cronCommand(ctx context.Context, appCfg *config.AppConfig, registry *provider.Registry, args []string) error {
	flags := flag.NewFlagSet("cron", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return err
	}

	job := func(jobCtx context.Context, execID string) {
		if err := runPipeline(jobCtx, appCfg, registry, execID); err != nil {
			logrus.Errorf("Update job %s failed: %v", execID, err)
		}
	}

	scheduler := NewScheduler(appCfg.Cron.Spec, job)
	// Ensure the scheduler stops before the command returns.
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()

	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	<-ctx.Done()
	return nil
}

// runPipeline performs one scheduled tick: update today's data, then
// rebuild the site.
func runPipeline(ctx context.Context, appCfg *config.AppConfig, registry *provider.Registry, execID string) error {
	providers, err := registry.Resolve(nil)
	if err != nil {
		return err
	}

	quotes, currencies, cleanup, err := openStores(ctx, appCfg.Data.Dir, appCfg.Data.DatabaseURL)
	if err != nil {
		return err
	}
	defer cleanup()

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := updateData(ctx, execID, newCatalogClient(appCfg), currencies, providers, quotes, today, today); err != nil {
		return err
	}

	builder := site.NewBuilder(quotes, currencies, registry.Descriptors(), appCfg.Site.Dir)
	return builder.Build(ctx)
}
