package background

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"circuitweb/internal/common"
	"circuitweb/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const userSyncJob = "provider-user-sync"

// UserSyncer copies identity-provider accounts into the local users table.
type UserSyncer interface {
	SyncProviderUsers(ctx context.Context) (int, error)
}

// JobScheduler runs periodic maintenance jobs.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	syncer       UserSyncer
	syncInterval time.Duration
	log          zerolog.Logger
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

// NewJobScheduler creates a scheduler. A zero syncInterval disables the user sync job.
func NewJobScheduler(syncer UserSyncer, syncInterval time.Duration, log zerolog.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		syncer:       syncer,
		syncInterval: syncInterval,
		log:          log.With().Str("component", "scheduler").Logger(),
		jobs:         make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info().Strs("jobs", js.JobNames()).Msg("starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler.
func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// JobNames lists the registered jobs.
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

func (js *JobScheduler) registerJobs() error {
	if js.syncer == nil || js.syncInterval <= 0 {
		js.log.Info().Msg("provider user sync disabled")
		return nil
	}

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.syncInterval),
		gocron.NewTask(js.syncProviderUsers, context.Background()),
		gocron.WithName(userSyncJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", userSyncJob, err)
	}

	js.mu.Lock()
	js.jobs[userSyncJob] = job
	js.mu.Unlock()
	return nil
}

// syncProviderUsers runs one sync pass bounded by the job interval.
func (js *JobScheduler) syncProviderUsers(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, js.syncInterval)
	defer cancel()

	start := time.Now()
	created, err := js.syncer.SyncProviderUsers(ctx)
	if errors.Is(err, common.ErrUnsupported) {
		js.log.Debug().Msg("identity provider cannot list users, skipping sync")
		return nil
	}
	metrics.RecordSyncedUsers(created)
	if err != nil {
		js.log.Error().Err(err).Int("created", created).Msg("provider user sync failed")
		return err
	}

	js.log.Info().Int("created", created).Dur("took", time.Since(start)).Msg("provider user sync finished")
	return nil
}
