package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Mission exported for testing purposes
type Mission struct {
	Store    *dispatch.Store
	Notifier *Notifier
}

type advancePhaseRequest struct {
	Phase models.MissionPhase `json:"phase"`
}

type escalatePriorityRequest struct {
	Priority models.Priority `json:"priority"`
}

// missionStatusCode maps lifecycle errors to http status codes
func missionStatusCode(err error) int {
	switch {
	case errors.Is(err, dispatch.ErrCaseNotFound):
		return http.StatusNotFound
	case errors.Is(err, dispatch.ErrCaseClosed),
		errors.Is(err, dispatch.ErrAlreadyDispatched),
		errors.Is(err, dispatch.ErrNotDispatched),
		errors.Is(err, dispatch.ErrBadPhase),
		errors.Is(err, dispatch.ErrMissingTimestamps),
		errors.Is(err, dispatch.ErrPriorityDowngrade):
		return http.StatusConflict
	case errors.Is(err, dispatch.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeCase(w http.ResponseWriter, c models.EmergencyCase) {
	b, err := json.Marshal(c)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DispatchHandler attaches an ambulance to a case and starts the mission
func (m Mission) DispatchHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	zap.S().Debugf("dispatch case_id: %v", caseID)

	updated, err := m.Store.Dispatch(api.ActorFrom(r.Context()), caseID)
	if err != nil {
		config.ErrorStatus("failed to dispatch ambulance", missionStatusCode(err), w, err)
		return
	}
	m.Notifier.MissionDispatched(updated)
	writeCase(w, updated)
}

// AcceptHandler marks the mission as accepted by the field crew
func (m Mission) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	updated, err := m.Store.Accept(api.ActorFrom(r.Context()), caseID)
	if err != nil {
		config.ErrorStatus("failed to accept mission", missionStatusCode(err), w, err)
		return
	}
	writeCase(w, updated)
}

// AdvancePhaseHandler moves the mission to the requested phase
func (m Mission) AdvancePhaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req advancePhaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !req.Phase.IsValid() {
		config.ErrorStatus("invalid mission phase", http.StatusBadRequest, w, dispatch.ErrInvalidInput)
		return
	}

	updated, err := m.Store.AdvancePhase(api.ActorFrom(r.Context()), caseID, req.Phase)
	if err != nil {
		config.ErrorStatus("failed to advance mission phase", missionStatusCode(err), w, err)
		return
	}
	writeCase(w, updated)
}

// StartEvacuationHandler starts the hospital evacuation leg
func (m Mission) StartEvacuationHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	updated, err := m.Store.StartEvacuation(api.ActorFrom(r.Context()), caseID)
	if err != nil {
		config.ErrorStatus("failed to start evacuation", missionStatusCode(err), w, err)
		return
	}
	writeCase(w, updated)
}

// CancelHandler aborts the mission and closes the case without a report
func (m Mission) CancelHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	updated, err := m.Store.Cancel(api.ActorFrom(r.Context()), caseID)
	if err != nil {
		config.ErrorStatus("failed to cancel mission", missionStatusCode(err), w, err)
		return
	}
	writeCase(w, updated)
}

// FinalizeHandler closes the mission with a clinical handover report
func (m Mission) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var input models.ClinicalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	updated, err := m.Store.Finalize(api.ActorFrom(r.Context()), caseID, input)
	if err != nil {
		config.ErrorStatus("failed to finalize mission", missionStatusCode(err), w, err)
		return
	}
	m.Notifier.MissionFinalized(updated)
	writeCase(w, updated)
}

// EscalatePriorityHandler raises the case priority
func (m Mission) EscalatePriorityHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	var req escalatePriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if !req.Priority.IsValid() {
		config.ErrorStatus("invalid priority", http.StatusBadRequest, w, dispatch.ErrInvalidInput)
		return
	}

	updated, err := m.Store.EscalatePriority(api.ActorFrom(r.Context()), caseID, req.Priority)
	if err != nil {
		config.ErrorStatus("failed to escalate priority", missionStatusCode(err), w, err)
		return
	}
	writeCase(w, updated)
}
