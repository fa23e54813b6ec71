package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/config"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/dispatch"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// CaseSocket streams case events to dashboard clients over a websocket. Each
// client authenticates with a session token and receives only the events its
// role may see.
type CaseSocket struct {
	store  *dispatch.Store
	config config.Config
}

// NewCaseSocket creates the websocket feed for the given store
func NewCaseSocket(store *dispatch.Store, conf config.Config) *CaseSocket {
	return &CaseSocket{store: store, config: conf}
}

func (cs *CaseSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, `{"error": "missing session token"}`, http.StatusUnauthorized)
		return
	}
	claims, err := ParseSessionToken(tokenString, cs.config.JWTSecret)
	if err != nil {
		zap.S().Warnw("websocket auth failed", "error", err)
		http.Error(w, `{"error": "invalid session token"}`, http.StatusUnauthorized)
		return
	}
	roleClaim, ok := claims["role"].(string)
	if !ok {
		zap.S().Warnw("websocket auth failed", "error", "session token missing role claim")
		http.Error(w, `{"error": "invalid session token"}`, http.StatusUnauthorized)
		return
	}
	role := models.Role(roleClaim)
	companyID, _ := claims["companyId"].(string)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	events, cancel := cs.store.Subscribe()
	done := make(chan struct{})

	// reader goroutine only notices the client going away
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go cs.writeLoop(conn, events, cancel, done, role, companyID)
}

func (cs *CaseSocket) writeLoop(conn *websocket.Conn, events <-chan models.CaseEvent, cancel func(), done chan struct{}, role models.Role, companyID string) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !dispatch.Visible(role, companyID, ev.Case) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				zap.S().Debugw("websocket write failed, dropping client", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
