package dispatch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

func newTestStore() *Store {
	s := NewStore(audit.New(nil))
	s.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }
	return s
}

func testOperator() models.Actor {
	return models.Actor{ID: "OP-001", Name: "Carlos Mabote", Role: models.RoleOperator}
}

func TestStore_AddAppliesDefaults(t *testing.T) {
	s := newTestStore()

	created, err := s.Add(testOperator(), models.EmergencyCase{
		Priority:     models.PriorityHigh,
		LocationName: "Av. Julius Nyerere",
		Type:         "Acidente de viação",
	})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "SSM-MZ-"))
	assert.Equal(t, models.StatusActive, created.Status)
	assert.Nil(t, created.AmbulanceState)
	assert.Nil(t, created.Report)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestStore_AddDefaultsPriorityToLow(t *testing.T) {
	s := newTestStore()

	created, err := s.Add(testOperator(), models.EmergencyCase{LocationName: "Matola"})
	assert.NoError(t, err)
	assert.Equal(t, models.PriorityLow, created.Priority)
}

func TestStore_AddRejectsInvalidPriority(t *testing.T) {
	s := newTestStore()

	_, err := s.Add(testOperator(), models.EmergencyCase{Priority: "Z", LocationName: "Matola"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStore_AddRejectsDuplicateID(t *testing.T) {
	s := newTestStore()

	_, err := s.Add(testOperator(), models.EmergencyCase{ID: "SSM-MZ-AAAAAA", LocationName: "Matola"})
	assert.NoError(t, err)

	_, err = s.Add(testOperator(), models.EmergencyCase{ID: "SSM-MZ-AAAAAA", LocationName: "Matola"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestStore_AddNewestFirst(t *testing.T) {
	s := newTestStore()

	first, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Baixa"})
	second, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Sommerschield"})

	snap := s.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, second.ID, snap[0].ID)
	assert.Equal(t, first.ID, snap[1].ID)
}

func TestStore_GetNotFound(t *testing.T) {
	s := newTestStore()

	_, err := s.Get("SSM-MZ-MISSING")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestStore_SnapshotReturnsCopies(t *testing.T) {
	s := newTestStore()
	created, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Baixa"})
	_, err := s.Dispatch(testOperator(), created.ID)
	assert.NoError(t, err)

	snap := s.Snapshot()
	snap[0].AmbulanceState.Phase = models.PhaseAtHospital

	fresh, _ := s.Get(created.ID)
	assert.Equal(t, models.PhaseIdle, fresh.AmbulanceState.Phase)
}

func TestStore_VisibleToCorporateSeesOwnCompanyOnly(t *testing.T) {
	s := newTestStore()
	mine, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Sede", CompanyID: "EMP-01"})
	s.Add(testOperator(), models.EmergencyCase{LocationName: "Outra", CompanyID: "EMP-02"})
	s.Add(testOperator(), models.EmergencyCase{LocationName: "Pública"})

	visible := s.VisibleTo(models.RoleCorporate, "EMP-01")
	assert.Len(t, visible, 1)
	assert.Equal(t, mine.ID, visible[0].ID)
}

func TestStore_VisibleToAmbulanceSeesDispatchedOnly(t *testing.T) {
	s := newTestStore()
	dispatched, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Baixa"})
	s.Add(testOperator(), models.EmergencyCase{LocationName: "Matola"})
	_, err := s.Dispatch(testOperator(), dispatched.ID)
	assert.NoError(t, err)

	visible := s.VisibleTo(models.RoleAmbulance, "")
	assert.Len(t, visible, 1)
	assert.Equal(t, dispatched.ID, visible[0].ID)
}

func TestStore_VisibleToOperatorRolesSeeEverything(t *testing.T) {
	s := newTestStore()
	s.Add(testOperator(), models.EmergencyCase{LocationName: "Sede", CompanyID: "EMP-01"})
	s.Add(testOperator(), models.EmergencyCase{LocationName: "Pública"})

	for _, role := range []models.Role{models.RoleAdmin, models.RoleOperator, models.RoleRiskAnalyst} {
		assert.Len(t, s.VisibleTo(role, ""), 2, "role %s", role)
	}
}

func TestStore_SubscribePublishesMutations(t *testing.T) {
	s := newTestStore()
	events, cancel := s.Subscribe()
	defer cancel()

	created, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Baixa"})

	select {
	case ev := <-events:
		assert.Equal(t, "case_created", ev.Action)
		assert.Equal(t, created.ID, ev.Case.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a case_created event")
	}
}

func TestStore_SubscribeCancelStopsDelivery(t *testing.T) {
	s := newTestStore()
	events, cancel := s.Subscribe()
	cancel()

	_, ok := <-events
	assert.False(t, ok)

	// publishing after cancel must not panic
	s.Add(testOperator(), models.EmergencyCase{LocationName: "Baixa"})
}

func TestStore_ClosedBeforeHonorsCutoff(t *testing.T) {
	s := newTestStore()
	_, _ = s.Add(testOperator(), models.EmergencyCase{LocationName: "Baixa"})
	closed, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Matola"})

	_, err := s.Dispatch(testOperator(), closed.ID)
	assert.NoError(t, err)
	_, err = s.Cancel(testOperator(), closed.ID)
	assert.NoError(t, err)

	// cutoff before the close time: nothing is old enough yet
	due := s.ClosedBefore(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	assert.Empty(t, due)

	due = s.ClosedBefore(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	assert.Len(t, due, 1)
	assert.Equal(t, closed.ID, due[0].ID)

	// listing is read-only, both cases are still on the board
	assert.Len(t, s.Snapshot(), 2)
}

func TestStore_RemoveDetachesOnlyNamedCases(t *testing.T) {
	s := newTestStore()
	open, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Baixa"})
	closed, _ := s.Add(testOperator(), models.EmergencyCase{LocationName: "Matola"})

	removed := s.Remove([]string{closed.ID, "SSM-MZ-NOPE"})
	assert.Equal(t, 1, removed)

	snap := s.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, open.ID, snap[0].ID)

	_, err := s.Get(closed.ID)
	assert.Error(t, err)
}
