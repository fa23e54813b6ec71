package scheduler

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/databases"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

const defaultRetentionHours = 24

// Scheduler handles periodic background jobs for the dispatch board
type Scheduler struct {
	cron      *cron.Cron
	Store     *dispatch.Store
	ArchDB    databases.ArchivedCaseDatabase
	retention time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(store *dispatch.Store, archDB databases.ArchivedCaseDatabase) *Scheduler {
	retention := time.Duration(defaultRetentionHours) * time.Hour
	if raw := os.Getenv("CASE_RETENTION_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			retention = time.Duration(hours) * time.Hour
		}
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		Store:     store,
		ArchDB:    archDB,
		retention: retention,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Sweep closed cases off the live board into the archive daily at 3 AM UTC
	_, err := s.cron.AddFunc("0 3 * * *", s.ArchiveClosedCases)
	if err != nil {
		zap.S().Errorw("failed to register case retention job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Case retention scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Case retention scheduler stopped")
}

// ArchiveClosedCases moves closed cases older than the retention window from
// the live board into the mongo archive
func (s *Scheduler) ArchiveClosedCases() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	due := s.Store.ClosedBefore(cutoff)
	if len(due) == 0 {
		zap.S().Debug("no closed cases past retention, nothing to archive")
		return
	}

	zap.S().Infow("Archiving closed cases", "count", len(due), "cutoff", cutoff)

	// A case leaves the live board only once its archive write succeeded;
	// failures stay on the board for the next sweep.
	var archivedIDs []string
	for _, c := range due {
		err := s.ArchDB.Insert(ctx, models.ArchivedCase{
			ID:         c.ID,
			Case:       c,
			ArchivedAt: time.Now(),
		})
		if err != nil {
			zap.S().Errorw("failed to archive closed case", "caseId", c.ID, "error", err)
			continue
		}
		archivedIDs = append(archivedIDs, c.ID)
	}
	s.Store.Remove(archivedIDs)
	zap.S().Infow("Closed case archive sweep finished", "archived", len(archivedIDs), "failed", len(due)-len(archivedIDs))
}
