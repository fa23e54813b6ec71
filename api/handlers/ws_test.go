package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api/handlers"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

func sessionToken(t *testing.T, conf config.Config, role models.Role, companyID string) string {
	t.Helper()
	u := handlers.Session{Config: conf, Audit: audit.New(nil)}
	req, _ := http.NewRequest("POST", "/api/v1/auth/session", nil)
	req = operatorRequest(req, role, companyID)

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.CreateSessionHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token
}

func TestCaseSocket_StreamsCaseEvents(t *testing.T) {
	conf := config.Config{JWTSecret: "test-secret"}
	store := dispatch.NewStore(audit.New(nil))
	srv := httptest.NewServer(handlers.NewCaseSocket(store, conf))
	defer srv.Close()

	token := sessionToken(t, conf, models.RoleOperator, "")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	// give the server a moment to register its store subscription
	time.Sleep(100 * time.Millisecond)

	created, err := store.Add(models.Actor{ID: "OP-100", Role: models.RoleOperator}, models.EmergencyCase{
		Priority:     models.PriorityCritical,
		LocationName: "Av. Marginal",
	})
	assert.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.CaseEvent
	assert.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "case_created", ev.Action)
	assert.Equal(t, created.ID, ev.Case.ID)
}

func TestCaseSocket_CorporateClientSeesOwnCompanyOnly(t *testing.T) {
	conf := config.Config{JWTSecret: "test-secret"}
	store := dispatch.NewStore(audit.New(nil))
	srv := httptest.NewServer(handlers.NewCaseSocket(store, conf))
	defer srv.Close()

	token := sessionToken(t, conf, models.RoleCorporate, "EMP-01")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	actor := models.Actor{ID: "OP-100", Role: models.RoleOperator}
	store.Add(actor, models.EmergencyCase{LocationName: "Outra empresa", CompanyID: "EMP-02"})
	mine, err := store.Add(actor, models.EmergencyCase{LocationName: "Sede", CompanyID: "EMP-01"})
	assert.NoError(t, err)

	// the first event delivered must already be the client's own case
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.CaseEvent
	assert.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, mine.ID, ev.Case.ID)
}

func TestCaseSocket_RejectsMissingToken(t *testing.T) {
	store := dispatch.NewStore(audit.New(nil))
	srv := httptest.NewServer(handlers.NewCaseSocket(store, config.Config{JWTSecret: "test-secret"}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCaseSocket_RejectsTokenWithoutRoleClaim(t *testing.T) {
	store := dispatch.NewStore(audit.New(nil))
	srv := httptest.NewServer(handlers.NewCaseSocket(store, config.Config{JWTSecret: "test-secret"}))
	defer srv.Close()

	// validly signed, but no role claim at all
	claims := jwt.MapClaims{
		"sub": "OP-100",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	resp, err := http.Get(srv.URL + "?token=" + token)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCaseSocket_RejectsForgedToken(t *testing.T) {
	store := dispatch.NewStore(audit.New(nil))
	srv := httptest.NewServer(handlers.NewCaseSocket(store, config.Config{JWTSecret: "test-secret"}))
	defer srv.Close()

	forged := sessionToken(t, config.Config{JWTSecret: "other-secret"}, models.RoleOperator, "")
	resp, err := http.Get(srv.URL + "?token=" + forged)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
