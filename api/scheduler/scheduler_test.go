package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/databases/mocks"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

func closedCaseStore(t *testing.T) (*dispatch.Store, string) {
	t.Helper()
	store := dispatch.NewStore(audit.New(nil))
	actor := models.Actor{ID: "OP-001", Role: models.RoleOperator}
	created, err := store.Add(actor, models.EmergencyCase{LocationName: "Baixa"})
	assert.NoError(t, err)
	_, err = store.Dispatch(actor, created.ID)
	assert.NoError(t, err)
	_, err = store.Cancel(actor, created.ID)
	assert.NoError(t, err)
	return store, created.ID
}

func TestScheduler_ArchiveClosedCases(t *testing.T) {
	store, closedID := closedCaseStore(t)

	archDB := &mocks.ArchivedCaseDatabase{}
	archDB.On("Insert", mock.Anything, mock.MatchedBy(func(a models.ArchivedCase) bool {
		return a.ID == closedID && a.Case.Status == models.StatusClosed
	})).Return(nil)

	s := NewScheduler(store, archDB)
	s.retention = -time.Hour // everything closed is already past retention

	s.ArchiveClosedCases()

	archDB.AssertNumberOfCalls(t, "Insert", 1)
	assert.Empty(t, store.Snapshot(), "archived case must leave the live board")
}

func TestScheduler_ArchiveClosedCasesKeepsCaseWhenInsertFails(t *testing.T) {
	store, closedID := closedCaseStore(t)

	archDB := &mocks.ArchivedCaseDatabase{}
	archDB.On("Insert", mock.Anything, mock.Anything).Return(errors.New("mongo down"))

	s := NewScheduler(store, archDB)
	s.retention = -time.Hour

	s.ArchiveClosedCases()

	archDB.AssertNumberOfCalls(t, "Insert", 1)
	snap := store.Snapshot()
	assert.Len(t, snap, 1, "unarchived case must stay on the board for the next sweep")
	assert.Equal(t, closedID, snap[0].ID)

	// the next sweep picks the same case up again
	archDB2 := &mocks.ArchivedCaseDatabase{}
	archDB2.On("Insert", mock.Anything, mock.Anything).Return(nil)
	s.ArchDB = archDB2
	s.ArchiveClosedCases()

	archDB2.AssertNumberOfCalls(t, "Insert", 1)
	assert.Empty(t, store.Snapshot())
}

func TestScheduler_ArchiveClosedCasesNothingDue(t *testing.T) {
	store, _ := closedCaseStore(t)

	archDB := &mocks.ArchivedCaseDatabase{}
	s := NewScheduler(store, archDB)
	// default retention: the case closed moments ago, so it stays

	s.ArchiveClosedCases()

	archDB.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	assert.Len(t, store.Snapshot(), 1)
}

func TestScheduler_StartAndStop(t *testing.T) {
	store := dispatch.NewStore(audit.New(nil))
	s := NewScheduler(store, &mocks.ArchivedCaseDatabase{})

	s.Start()
	s.Stop()
}

func TestNewScheduler_RetentionFromEnvironment(t *testing.T) {
	t.Setenv("CASE_RETENTION_HOURS", "72")
	s := NewScheduler(dispatch.NewStore(audit.New(nil)), &mocks.ArchivedCaseDatabase{})
	assert.Equal(t, 72*time.Hour, s.retention)
}

func TestNewScheduler_RetentionIgnoresGarbage(t *testing.T) {
	t.Setenv("CASE_RETENTION_HOURS", "soon")
	s := NewScheduler(dispatch.NewStore(audit.New(nil)), &mocks.ArchivedCaseDatabase{})
	assert.Equal(t, time.Duration(defaultRetentionHours)*time.Hour, s.retention)
}
