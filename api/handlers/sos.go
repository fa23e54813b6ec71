package handlers

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// sosJitterDegrees spreads simulated panic-button activations around the
// operations base so they do not stack on one point
const sosJitterDegrees = 0.005

// Sos exported for testing purposes
type Sos struct {
	Store    *dispatch.Store
	Audit    *audit.Log
	Notifier *Notifier
}

type sosRequest struct {
	EmployeeName string              `json:"employeeName"`
	EmployeeID   string              `json:"employeeId"`
	CompanyID    string              `json:"companyId"`
	LocationName string              `json:"locationName,omitempty"`
	Coords       *models.Coordinates `json:"coords,omitempty"`
}

// TriggerHandler registers a corporate panic-button activation as a new
// critical case
func (s Sos) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	var req sosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.EmployeeName == "" || req.CompanyID == "" {
		config.ErrorStatus("employeeName and companyId are required", http.StatusBadRequest, w, dispatch.ErrInvalidInput)
		return
	}

	coords := models.Coordinates{
		Lat: dispatch.BasePosition.Lat + (rand.Float64()-0.5)*2*sosJitterDegrees,
		Lng: dispatch.BasePosition.Lng + (rand.Float64()-0.5)*2*sosJitterDegrees,
	}
	if req.Coords != nil {
		coords = *req.Coords
	}
	locationName := req.LocationName
	if locationName == "" {
		locationName = fmt.Sprintf("SOS Corporativo - %s", req.CompanyID)
	}

	actor := api.ActorFrom(r.Context())
	created, err := s.Store.Add(actor, models.EmergencyCase{
		Priority:     models.PriorityCritical,
		LocationName: locationName,
		Type:         "SOS Corporativo",
		Coords:       coords,
		PatientName:  req.EmployeeName,
		EmployeeID:   req.EmployeeID,
		CompanyID:    req.CompanyID,
	})
	if err != nil {
		config.ErrorStatus("failed to register sos case", http.StatusConflict, w, err)
		return
	}

	s.Audit.Record(actor, "CORPORATE_SOS_TRIGGERED", created.ID,
		fmt.Sprintf("Funcionário: %s (%s)", req.EmployeeName, req.CompanyID))
	s.Notifier.SosTriggered(created)

	b, err := json.Marshal(created)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
