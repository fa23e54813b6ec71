package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/triage"
)

// Triage exported for testing purposes
type Triage struct {
	Store *dispatch.Store
	Audit *audit.Log
}

type classifyRequest struct {
	Answers map[string]bool `json:"answers"`

	// Optional: open a case on the board at the classified priority.
	CreateCase   bool               `json:"createCase,omitempty"`
	LocationName string             `json:"locationName,omitempty"`
	Type         string             `json:"type,omitempty"`
	Coords       models.Coordinates `json:"coords,omitempty"`
	PatientName  string             `json:"patientName,omitempty"`
	CompanyID    string             `json:"companyId,omitempty"`
}

type classifyResponse struct {
	Suggestion models.ProtocolSuggestion `json:"suggestion"`
	Case       *models.EmergencyCase     `json:"case,omitempty"`
}

// ProtocolHandler returns the full triage question tree
func (t Triage) ProtocolHandler(w http.ResponseWriter, r *http.Request) {
	b, err := json.Marshal(triage.Protocol())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ClassifyHandler runs the triage decision tree over the submitted answers
// and returns the suggested classification. When the caller asks for it, the
// classified incident is opened on the board in the same request.
func (t Triage) ClassifyHandler(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	suggestion := triage.Classify(req.Answers)
	resp := classifyResponse{Suggestion: suggestion}

	if req.CreateCase {
		if req.LocationName == "" {
			config.ErrorStatus("locationName is required to open a case", http.StatusBadRequest, w, dispatch.ErrInvalidInput)
			return
		}
		caseType := req.Type
		if caseType == "" {
			caseType = "Emergência Médica"
		}
		actor := api.ActorFrom(r.Context())
		created, err := t.Store.Add(actor, models.EmergencyCase{
			Priority:     suggestion.Classification,
			LocationName: req.LocationName,
			Type:         caseType,
			Coords:       req.Coords,
			PatientName:  req.PatientName,
			CompanyID:    req.CompanyID,
		})
		if err != nil {
			config.ErrorStatus("failed to open triaged case", http.StatusConflict, w, err)
			return
		}
		t.Audit.Record(actor, "TRIAGE_COMPLETED", created.ID, suggestion.Reasoning)
		resp.Case = &created
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
