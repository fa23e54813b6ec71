package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Case exported for testing purposes
type Case struct {
	Store *dispatch.Store
}

// createCaseRequest is the payload for registering a new incident
type createCaseRequest struct {
	ID           string             `json:"id,omitempty"`
	Priority     models.Priority    `json:"priority"`
	LocationName string             `json:"locationName"`
	Type         string             `json:"type"`
	Coords       models.Coordinates `json:"coords"`
	PatientName  string             `json:"patientName,omitempty"`
	EmployeeID   string             `json:"employeeId,omitempty"`
	CompanyID    string             `json:"companyId,omitempty"`
}

// CaseHandler returns all cases visible to the authenticated operator's role
func (c Case) CaseHandler(w http.ResponseWriter, r *http.Request) {
	op, ok := api.OperatorFrom(r.Context())
	if !ok {
		config.ErrorStatus("no operator on request", http.StatusUnauthorized, w, nil)
		return
	}

	zap.S().Debugf("listing cases for role: %v", op.Role)

	cases := c.Store.VisibleTo(op.Role, op.CompanyID)
	b, err := json.Marshal(cases)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CaseByIDHandler returns a case by ID
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	zap.S().Debugf("case_id: %v", caseID)

	found, err := c.Store.Get(caseID)
	if err != nil {
		config.ErrorStatus("failed to get case by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(found)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateCaseHandler registers a new incident on the dispatch board
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if !req.Priority.IsValid() || req.LocationName == "" {
		config.ErrorStatus("priority and locationName are required", http.StatusBadRequest, w, dispatch.ErrInvalidInput)
		return
	}

	created, err := c.Store.Add(api.ActorFrom(r.Context()), models.EmergencyCase{
		ID:           req.ID,
		Priority:     req.Priority,
		LocationName: req.LocationName,
		Type:         req.Type,
		Coords:       req.Coords,
		PatientName:  req.PatientName,
		EmployeeID:   req.EmployeeID,
		CompanyID:    req.CompanyID,
	})
	if err != nil {
		config.ErrorStatus("failed to create case", http.StatusConflict, w, err)
		return
	}

	b, err := json.Marshal(created)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
