package cron

import (
	"context"
	"time"
)

// PresenceMaintainer is the part of the presence service the jobs drive.
type PresenceMaintainer interface {
	ResetDay(ctx context.Context) error
	Flush(ctx context.Context) error
}

// DirectoryRefresher reloads the cached employee directory.
type DirectoryRefresher interface {
	RefreshJob(ctx context.Context) error
}

const (
	presenceResetInterval = time.Minute
	presenceFlushInterval = time.Minute
)

// RegisterJobs adds the engine's periodic jobs. A nil collaborator skips its job.
func RegisterJobs(scheduler *Scheduler, presence PresenceMaintainer, directory DirectoryRefresher, refreshInterval time.Duration) {
	if directory != nil && refreshInterval > 0 {
		scheduler.AddJob("refresh_directory", refreshInterval, directory.RefreshJob)
	}
	if presence != nil {
		scheduler.AddJob("reset_presence_day", presenceResetInterval, presence.ResetDay)
		scheduler.AddJob("flush_presence_snapshot", presenceFlushInterval, presence.Flush)
	}
}
