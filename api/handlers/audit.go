package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/databases"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Audit exported for testing purposes
type Audit struct {
	Log *audit.Log
	DB  databases.AuditEventDatabase
}

// RecentHandler returns the in-memory tail of the audit trail, newest first
func (a Audit) RecentHandler(w http.ResponseWriter, r *http.Request) {
	events := a.Log.Recent()
	if len(events) == 0 {
		events = []models.AuditEvent{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ArchiveHandler returns archived audit events from the database, optionally
// filtered by case
func (a Audit) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if caseID := r.URL.Query().Get("caseId"); caseID != "" {
		filter["caseId"] = caseID
	}
	if eventType := r.URL.Query().Get("type"); eventType != "" {
		filter["type"] = eventType
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	limit := int64(100)
	dbResp, err := a.DB.Find(ctx, filter, &options.FindOptions{Limit: &limit})
	if err != nil {
		config.ErrorStatus("failed to get archived audit events", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.AuditEvent{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
