package dispatch

import (
	"errors"
	"fmt"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/metrics"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Lifecycle precondition violations. None of these leave the case mutated.
var (
	ErrCaseNotFound      = errors.New("case not found")
	ErrCaseClosed        = errors.New("case already closed")
	ErrAlreadyDispatched = errors.New("ambulance already dispatched")
	ErrNotDispatched     = errors.New("no ambulance dispatched")
	ErrBadPhase          = errors.New("operation not allowed in current phase")
	ErrMissingTimestamps = errors.New("mission timestamps incomplete")
	ErrPriorityDowngrade = errors.New("priority can only be raised")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateID       = errors.New("duplicate case id")
)

// Leg defaults shown on the terminal the moment a leg starts; the simulator
// decays them from here.
const (
	dispatchETA        = 4.0
	dispatchDistance   = 1.2
	evacuationETA      = 8.0
	evacuationDistance = 2.4
)

// phaseOrder gives the forward ordering of mission phases
var phaseOrder = map[models.MissionPhase]int{
	models.PhaseIdle:             0,
	models.PhaseEnRouteToPatient: 1,
	models.PhaseAtPatient:        2,
	models.PhaseEvacuating:       3,
	models.PhaseAtHospital:       4,
}

// Dispatch attaches a fresh mission record to an undispatched, open case.
// The unit starts idle at the base station; the dispatch timestamp is
// recorded once, here. Double-dispatch is rejected.
func (s *Store) Dispatch(actor models.Actor, caseID string) (models.EmergencyCase, error) {
	s.mu.Lock()
	c := s.findLocked(caseID)
	if c == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	if c.Status == models.StatusClosed {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseClosed
	}
	if c.AmbulanceState != nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrAlreadyDispatched
	}

	c.AmbulanceState = &models.AmbulanceState{
		CurrentPos: BasePosition,
		Phase:      models.PhaseIdle,
		Eta:        dispatchETA,
		Distance:   dispatchDistance,
		Timestamps: models.MissionTimestamps{Dispatched: s.clock()},
	}
	out := c.Copy()
	active := s.activeMissionsLocked()
	s.mu.Unlock()

	metrics.RecordDispatch()
	metrics.SetActiveMissions(active)
	s.auditLog.Record(actor, "DISPATCH_AMBULANCE", caseID, "")
	s.publish("dispatch", out)
	return out, nil
}

// Accept moves an idle mission en route to the patient. The dispatch
// timestamp was already recorded, so none is touched here.
func (s *Store) Accept(actor models.Actor, caseID string) (models.EmergencyCase, error) {
	s.mu.Lock()
	c := s.findLocked(caseID)
	if c == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	if c.AmbulanceState == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrNotDispatched
	}
	if c.AmbulanceState.Phase != models.PhaseIdle {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %s", ErrBadPhase, c.AmbulanceState.Phase)
	}

	from := c.AmbulanceState.Phase
	c.AmbulanceState.Phase = models.PhaseEnRouteToPatient
	out := c.Copy()
	s.mu.Unlock()

	metrics.RecordPhaseTransition(from.String(), models.PhaseEnRouteToPatient.String())
	s.auditLog.Record(actor, "MISSION_ACCEPTED_FIELD", caseID, "")
	s.publish("phase_change", out)
	return out, nil
}

// AdvancePhase moves the mission to targetPhase. Re-entering the current
// phase is a no-op; backward transitions are rejected. The timestamp tied to
// the new phase is populated only the first time that phase is entered.
func (s *Store) AdvancePhase(actor models.Actor, caseID string, targetPhase models.MissionPhase) (models.EmergencyCase, error) {
	if !targetPhase.IsValid() {
		return models.EmergencyCase{}, fmt.Errorf("%w: phase %q", ErrInvalidInput, targetPhase)
	}

	s.mu.Lock()
	c := s.findLocked(caseID)
	if c == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	if c.AmbulanceState == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrNotDispatched
	}
	current := c.AmbulanceState.Phase
	if targetPhase == current {
		out := c.Copy()
		s.mu.Unlock()
		return out, nil
	}
	if phaseOrder[targetPhase] < phaseOrder[current] {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %s -> %s", ErrBadPhase, current, targetPhase)
	}

	s.advancePhaseLocked(c, targetPhase)
	out := c.Copy()
	s.mu.Unlock()

	s.auditLog.Record(actor, "AMBULANCE_PHASE_CHANGE", caseID, fmt.Sprintf("Fase: %s", targetPhase))
	s.publish("phase_change", out)
	return out, nil
}

// StartEvacuation begins the hospital leg for a mission standing at the
// patient: phase moves to evacuating, the ETA/distance reset to the hospital
// leg defaults, and the case itself goes in transit.
func (s *Store) StartEvacuation(actor models.Actor, caseID string) (models.EmergencyCase, error) {
	s.mu.Lock()
	c := s.findLocked(caseID)
	if c == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	if c.AmbulanceState == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrNotDispatched
	}
	if c.AmbulanceState.Phase != models.PhaseAtPatient {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %s", ErrBadPhase, c.AmbulanceState.Phase)
	}

	s.advancePhaseLocked(c, models.PhaseEvacuating)
	c.AmbulanceState.Eta = evacuationETA
	c.AmbulanceState.Distance = evacuationDistance
	c.Status = models.StatusTransit
	out := c.Copy()
	s.mu.Unlock()

	s.auditLog.Record(actor, "EVACUATION_STARTED", caseID, fmt.Sprintf("Destino: %s", HospitalName))
	s.publish("phase_change", out)
	return out, nil
}

// Cancel abandons an in-progress mission: the mission record is detached and
// the case closes without a report, which is what distinguishes an abandoned
// mission from a finalized one in the audit history.
func (s *Store) Cancel(actor models.Actor, caseID string) (models.EmergencyCase, error) {
	s.mu.Lock()
	c := s.findLocked(caseID)
	if c == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	if c.Status == models.StatusClosed {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseClosed
	}
	if c.AmbulanceState == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrNotDispatched
	}

	c.AmbulanceState = nil
	c.Status = models.StatusClosed
	c.ClosedAt = s.now()
	out := c.Copy()
	active := s.activeMissionsLocked()
	s.mu.Unlock()

	metrics.RecordMissionClosed("cancelled")
	metrics.SetActiveMissions(active)
	s.auditLog.Record(actor, "MISSION_CANCELLED", caseID, "Missão abandonada sem relatório")
	s.publish("cancelled", out)
	return out, nil
}

// Finalize closes a mission standing at the hospital: elapsed durations are
// computed from the four timestamps, the operation report assembled from
// them plus the clinical input, the mission record detached and the case
// closed. Any missing timestamp refuses the whole operation.
func (s *Store) Finalize(actor models.Actor, caseID string, input models.ClinicalInput) (models.EmergencyCase, error) {
	if !input.ConsciousnessState.IsValid() {
		return models.EmergencyCase{}, fmt.Errorf("%w: consciousness state %q", ErrInvalidInput, input.ConsciousnessState)
	}

	s.mu.Lock()
	c := s.findLocked(caseID)
	if c == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	if c.AmbulanceState == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrNotDispatched
	}
	if c.AmbulanceState.Phase != models.PhaseAtHospital {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %s", ErrBadPhase, c.AmbulanceState.Phase)
	}
	ts := c.AmbulanceState.Timestamps
	if ts.Dispatched == "" || ts.ArrivedAtPatient == "" || ts.LeftForHospital == "" || ts.ArrivedAtHospital == "" {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrMissingTimestamps
	}

	baseToPatient, err := OperationDuration(ts.Dispatched, ts.ArrivedAtPatient)
	if err != nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %v", ErrMissingTimestamps, err)
	}
	patientToHospital, err := OperationDuration(ts.LeftForHospital, ts.ArrivedAtHospital)
	if err != nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %v", ErrMissingTimestamps, err)
	}
	total, err := OperationDuration(ts.Dispatched, ts.ArrivedAtHospital)
	if err != nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %v", ErrMissingTimestamps, err)
	}

	observations := input.FinalObservations
	if observations == "" {
		observations = "Atendimento realizado sem intercorrências graves no transporte."
	}

	c.Report = &models.OperationReport{
		HospitalName:          HospitalName,
		TimeBaseToPatient:     baseToPatient,
		TimePatientToHospital: patientToHospital,
		TotalOperationTime:    total,
		ConsciousnessState:    input.ConsciousnessState,
		ConditionWorsened:     input.ConditionWorsened,
		ParamedicName:         input.ParamedicName,
		FinalObservations:     observations,
		Timestamps:            ts,
	}
	c.AmbulanceState = nil
	c.Status = models.StatusClosed
	c.ClosedAt = s.now()
	out := c.Copy()
	active := s.activeMissionsLocked()
	s.mu.Unlock()

	metrics.RecordMissionClosed("finalized")
	metrics.SetActiveMissions(active)
	s.auditLog.Record(actor, "MISSION_FINALIZED_WITH_REPORT", caseID, fmt.Sprintf("Duração total: %s", total))
	s.publish("finalized", out)
	return out, nil
}

// EscalatePriority raises a case's priority. Lowering is rejected: once a
// case has been escalated it never quietly drops back. Re-asserting the
// current priority is a no-op.
func (s *Store) EscalatePriority(actor models.Actor, caseID string, to models.Priority) (models.EmergencyCase, error) {
	if !to.IsValid() {
		return models.EmergencyCase{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, to)
	}

	s.mu.Lock()
	c := s.findLocked(caseID)
	if c == nil {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseNotFound
	}
	if c.Status == models.StatusClosed {
		s.mu.Unlock()
		return models.EmergencyCase{}, ErrCaseClosed
	}
	if to == c.Priority {
		out := c.Copy()
		s.mu.Unlock()
		return out, nil
	}
	if to.Rank() < c.Priority.Rank() {
		s.mu.Unlock()
		return models.EmergencyCase{}, fmt.Errorf("%w: %s -> %s", ErrPriorityDowngrade, c.Priority, to)
	}

	from := c.Priority
	c.Priority = to
	out := c.Copy()
	s.mu.Unlock()

	s.auditLog.Record(actor, "PRIORITY_ESCALATED", caseID, fmt.Sprintf("%s -> %s", from, to))
	s.publish("priority_change", out)
	return out, nil
}

// advancePhaseLocked sets the new phase, recording its timestamp only the
// first time the phase is entered. Arrival at the patient also moves the
// case into triage. Caller holds s.mu.
func (s *Store) advancePhaseLocked(c *models.EmergencyCase, targetPhase models.MissionPhase) {
	from := c.AmbulanceState.Phase
	c.AmbulanceState.Phase = targetPhase
	ts := &c.AmbulanceState.Timestamps
	switch targetPhase {
	case models.PhaseAtPatient:
		if ts.ArrivedAtPatient == "" {
			ts.ArrivedAtPatient = s.clock()
		}
		c.Status = models.StatusTriage
	case models.PhaseEvacuating:
		if ts.LeftForHospital == "" {
			ts.LeftForHospital = s.clock()
		}
	case models.PhaseAtHospital:
		if ts.ArrivedAtHospital == "" {
			ts.ArrivedAtHospital = s.clock()
		}
	}
	metrics.RecordPhaseTransition(from.String(), targetPhase.String())
}

// clock returns the current wall-clock time as an "HH:MM:SS" string
func (s *Store) clock() string {
	return s.now().Format("15:04:05")
}
