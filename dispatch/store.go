package dispatch

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/metrics"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Fixed geography of the Maputo operation: the ambulance base station and
// the receiving hospital.
var (
	BasePosition   = models.Coordinates{Lat: -25.9692, Lng: 32.5732}
	HospitalCoords = models.Coordinates{Lat: -25.975, Lng: 32.585}
)

// HospitalName is the receiving hospital recorded on operation reports
const HospitalName = "Hospital Central de Maputo"

const subscriberBuffer = 32

// Store owns the live collection of emergency cases. It is the single source
// of truth for the session: every sanctioned mutation (the lifecycle
// operations in lifecycle.go and the simulator ticks in simulator.go) goes
// through its mutex, so no case is ever updated by two actors at once.
// Live state is memory-only; closed cases are archived out by the scheduler.
type Store struct {
	mu    sync.Mutex
	cases []*models.EmergencyCase

	auditLog *audit.Log

	subsMu sync.Mutex
	subs   map[int]chan models.CaseEvent
	nextID int

	now func() time.Time
}

// NewStore creates an empty case store wired to the given audit log
func NewStore(auditLog *audit.Log) *Store {
	return &Store{
		auditLog: auditLog,
		subs:     make(map[int]chan models.CaseEvent),
		now:      time.Now,
	}
}

// NewCaseID generates a dispatch board case identifier
func NewCaseID() string {
	return fmt.Sprintf("SSM-MZ-%s", strings.ToUpper(uuid.New().String()[:6]))
}

// Add registers a new case on the board, newest first. Missing fields get
// defaults: a generated ID, status active, priority LOW. The created case is
// returned.
func (s *Store) Add(actor models.Actor, c models.EmergencyCase) (models.EmergencyCase, error) {
	if c.ID == "" {
		c.ID = NewCaseID()
	}
	if c.Status == "" {
		c.Status = models.StatusActive
	}
	if c.Priority == "" {
		c.Priority = models.PriorityLow
	}
	if !c.Priority.IsValid() {
		return models.EmergencyCase{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, c.Priority)
	}
	if !c.Status.IsValid() {
		return models.EmergencyCase{}, fmt.Errorf("%w: status %q", ErrInvalidInput, c.Status)
	}
	// a freshly submitted case is never mid-mission or closed
	c.AmbulanceState = nil
	c.Report = nil
	c.CreatedAt = s.now()

	s.mu.Lock()
	if s.findLocked(c.ID) != nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: case %s", ErrDuplicateID, c.ID)
	}
	stored := c.Copy()
	s.cases = append([]*models.EmergencyCase{&stored}, s.cases...)
	s.mu.Unlock()

	metrics.RecordCaseCreated(c.Priority.String())
	s.auditLog.Record(actor, "CASE_CREATED", c.ID, fmt.Sprintf("Prioridade %s: %s", c.Priority, c.Type))
	s.publish("case_created", c)
	return c, nil
}

// Get returns a copy of the case with the given ID
func (s *Store) Get(id string) (models.EmergencyCase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(id)
	if c == nil {
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	return c.Copy(), nil
}

// Snapshot returns copies of all cases, newest first
func (s *Store) Snapshot() []models.EmergencyCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EmergencyCase, 0, len(s.cases))
	for _, c := range s.cases {
		out = append(out, c.Copy())
	}
	return out
}

// VisibleTo returns the cases the given role is allowed to see. Corporate
// clients see only their own company's cases, ambulance terminals see only
// dispatched cases, operator roles see the full board.
func (s *Store) VisibleTo(role models.Role, companyID string) []models.EmergencyCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.EmergencyCase{}
	for _, c := range s.cases {
		if !Visible(role, companyID, *c) {
			continue
		}
		out = append(out, c.Copy())
	}
	return out
}

// Visible reports whether a single case may be shown to the given role
func Visible(role models.Role, companyID string, c models.EmergencyCase) bool {
	switch role {
	case models.RoleCorporate:
		return c.CompanyID == companyID
	case models.RoleAmbulance:
		return c.AmbulanceState != nil
	}
	return true
}

// ClosedBefore returns copies of all closed cases that closed before the
// given cutoff. The board is not modified; the retention scheduler removes
// cases only after they are safely archived.
func (s *Store) ClosedBefore(cutoff time.Time) []models.EmergencyCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []models.EmergencyCase
	for _, c := range s.cases {
		if c.Status == models.StatusClosed && !c.ClosedAt.IsZero() && c.ClosedAt.Before(cutoff) {
			due = append(due, c.Copy())
		}
	}
	return due
}

// Remove detaches the given cases from the board and reports how many were
// actually present.
func (s *Store) Remove(ids []string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	kept := s.cases[:0]
	for _, c := range s.cases {
		if drop[c.ID] {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.cases = kept
	return removed
}

// Subscribe registers a listener for case events. The returned cancel
// function must be called to release the subscription. Slow consumers drop
// events rather than block the mutation path.
func (s *Store) Subscribe() (<-chan models.CaseEvent, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan models.CaseEvent, subscriberBuffer)
	s.subs[id] = ch
	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) publish(action string, c models.EmergencyCase) {
	event := models.CaseEvent{Action: action, Case: c}
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// findLocked returns the live record for id, caller holds s.mu
func (s *Store) findLocked(id string) *models.EmergencyCase {
	for _, c := range s.cases {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// activeMissionsLocked counts cases currently carrying a mission record
func (s *Store) activeMissionsLocked() int {
	n := 0
	for _, c := range s.cases {
		if c.AmbulanceState != nil {
			n++
		}
	}
	return n
}
