package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/api"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
)

// sessionTTL bounds how long a dashboard session token stays valid
const sessionTTL = 12 * time.Hour

// Session exported for testing purposes
type Session struct {
	Config config.Config
	Audit  *audit.Log
}

type sessionResponse struct {
	Token    string `json:"token"`
	Operator struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Role      string `json:"role"`
		CompanyID string `json:"companyId,omitempty"`
	} `json:"operator"`
}

// CreateSessionHandler issues a signed JWT carrying the operator's identity
// and role claims, used by the websocket feed and dashboard clients
func (s Session) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	op, ok := api.OperatorFrom(r.Context())
	if !ok {
		config.ErrorStatus("no operator on request", http.StatusUnauthorized, w, nil)
		return
	}

	jwtSecret := []byte(s.Config.JWTSecret)
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server auth misconfigured", http.StatusInternalServerError, w, nil)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       op.ID,
		"name":      op.Name,
		"role":      op.Role.String(),
		"companyId": op.CompanyID,
		"iat":       now.Unix(),
		"exp":       now.Add(sessionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("failed to sign session token", http.StatusInternalServerError, w, err)
		return
	}

	s.Audit.Record(api.ActorFrom(r.Context()), "SESSION_CREATED", "", "Sessão iniciada: "+op.Role.String())

	var resp sessionResponse
	resp.Token = signed
	resp.Operator.ID = op.ID
	resp.Operator.Name = op.Name
	resp.Operator.Role = op.Role.String()
	resp.Operator.CompanyID = op.CompanyID

	_ = json.NewEncoder(w).Encode(resp)
}

// ParseSessionToken validates a session JWT and returns its claims
func ParseSessionToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
