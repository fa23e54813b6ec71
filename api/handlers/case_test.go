package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/api/handlers"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

func newStore() *dispatch.Store {
	return dispatch.NewStore(audit.New(nil))
}

func operatorRequest(req *http.Request, role models.Role, companyID string) *http.Request {
	op := config.Operator{
		ID:        "OP-100",
		Name:      "Teresa Machava",
		Username:  "tmachava",
		Role:      role,
		CompanyID: companyID,
	}
	return req.WithContext(api.WithOperator(req.Context(), op))
}

func TestCase_CreateCaseHandler(t *testing.T) {
	store := newStore()
	u := handlers.Case{Store: store}

	body := `{"priority": "B", "locationName": "Av. Julius Nyerere", "type": "Acidente de viação", "coords": {"lat": -25.9655, "lng": 32.5832}}`
	req, err := http.NewRequest("POST", "/api/v1/case", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = operatorRequest(req, models.RoleOperator, "")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.EmergencyCase
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.ID, "SSM-MZ-"))
	assert.Equal(t, models.PriorityHigh, created.Priority)
	assert.Equal(t, models.StatusActive, created.Status)
}

func TestCase_CreateCaseHandlerMissingLocation(t *testing.T) {
	u := handlers.Case{Store: newStore()}

	req, _ := http.NewRequest("POST", "/api/v1/case", strings.NewReader(`{"priority": "A"}`))
	req = operatorRequest(req, models.RoleOperator, "")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CreateCaseHandlerMalformedBody(t *testing.T) {
	u := handlers.Case{Store: newStore()}

	req, _ := http.NewRequest("POST", "/api/v1/case", strings.NewReader(`{not json`))
	req = operatorRequest(req, models.RoleOperator, "")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CaseByIDHandler(t *testing.T) {
	store := newStore()
	created, _ := store.Add(models.Actor{ID: "OP-100", Role: models.RoleOperator}, models.EmergencyCase{
		Priority:     models.PriorityCritical,
		LocationName: "Baixa",
	})
	u := handlers.Case{Store: store}

	req, _ := http.NewRequest("GET", "/api/v1/case/"+created.ID, nil)
	req = mux.SetURLVars(req, map[string]string{"case_id": created.ID})
	req = operatorRequest(req, models.RoleOperator, "")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.EmergencyCase
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestCase_CaseByIDHandlerNotFound(t *testing.T) {
	u := handlers.Case{Store: newStore()}

	req, _ := http.NewRequest("GET", "/api/v1/case/SSM-MZ-MISSING", nil)
	req = mux.SetURLVars(req, map[string]string{"case_id": "SSM-MZ-MISSING"})
	req = operatorRequest(req, models.RoleOperator, "")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_CaseHandlerFiltersByRole(t *testing.T) {
	store := newStore()
	actor := models.Actor{ID: "OP-100", Role: models.RoleOperator}
	store.Add(actor, models.EmergencyCase{LocationName: "Sede", CompanyID: "EMP-01"})
	store.Add(actor, models.EmergencyCase{LocationName: "Pública"})
	u := handlers.Case{Store: store}

	req, _ := http.NewRequest("GET", "/api/v1/cases", nil)
	req = operatorRequest(req, models.RoleCorporate, "EMP-01")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.EmergencyCase
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "EMP-01", got[0].CompanyID)
}

func TestCase_CaseHandlerNoOperator(t *testing.T) {
	u := handlers.Case{Store: newStore()}

	req, _ := http.NewRequest("GET", "/api/v1/cases", nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
