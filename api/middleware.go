package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Auth holds the provisioned operator accounts used to authenticate requests
type Auth struct {
	operators map[string]config.Operator
}

// NewAuth indexes the configured operator accounts by username
func NewAuth(conf *config.Config) *Auth {
	ops := make(map[string]config.Operator, len(conf.Operators))
	for _, op := range conf.Operators {
		ops[op.Username] = op
	}
	return &Auth{operators: ops}
}

var authenticator auth.Authenticator
var cache store.Cache

type contextKey string

const operatorContextKey contextKey = "operator"

// SetupGoGuardian sets up the go-guardian middleware
func (a *Auth) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*24)
	basicStrategy := basic.New(a.ValidateUser, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// Middleware adds authentication around accessing the routes and stores the
// resolved operator on the request context
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		op, ok := a.operators[user.UserName()]
		if !ok {
			zap.S().Errorw("authenticated user has no operator account", "user", user.UserName())
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), op)))
	})
}

// WithOperator returns a context carrying the authenticated operator
func WithOperator(ctx context.Context, op config.Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, op)
}

// OperatorFrom returns the authenticated operator stored on the context
func OperatorFrom(ctx context.Context) (config.Operator, bool) {
	op, ok := ctx.Value(operatorContextKey).(config.Operator)
	return op, ok
}

// ActorFrom converts the authenticated operator on the context to an audit
// actor. Requests that bypass auth (tests) get an anonymous operator actor.
func ActorFrom(ctx context.Context) models.Actor {
	op, ok := OperatorFrom(ctx)
	if !ok {
		return models.Actor{ID: "OP-000", Name: "Operador", Role: models.RoleOperator}
	}
	return models.Actor{ID: op.ID, Name: op.Name, Role: op.Role}
}

// CreateToken returns a token
func (a *Auth) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	username, _, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}

	op, found := a.operators[username]
	if !found {
		http.Error(w, "unknown operator account", http.StatusUnauthorized)
		return
	}

	token := uuid.New().String()
	authUser := auth.NewDefaultUser(username, op.ID, nil, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)

	response := map[string]string{
		"token": token,
		"_id":   op.ID,
		"role":  op.Role.String(),
	}

	responseBody, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Write(responseBody)
}

// ValidateUser validates an operator account's basic credentials
func (a *Auth) ValidateUser(ctx context.Context, r *http.Request, username, password string) (auth.Info, error) {
	op, found := a.operators[username]
	if !found {
		return nil, fmt.Errorf("no matching operator account found")
	}

	err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password))
	if err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}

	return auth.NewDefaultUser(username, op.ID, nil, nil), nil
}

// RevokeToken revokes a token
func RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "missing bearer token"}`))
		return
	}
	reqToken = splitToken[1]

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
