package audit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

const maxRecent = 200

// Archiver persists audit events. Satisfied by databases.AuditEventDatabase.
type Archiver interface {
	Insert(ctx context.Context, event models.AuditEvent) error
}

// Log is the audit trail for every sanctioned mutation on the dispatch board.
// Record never blocks and never fails the calling mutation: events are logged,
// kept in a bounded in-memory window and archived to mongo in the background.
type Log struct {
	mu       sync.Mutex
	recent   []models.AuditEvent
	archiver Archiver

	now func() time.Time
}

// New creates a new audit log. A nil archiver keeps the trail memory-only.
func New(archiver Archiver) *Log {
	return &Log{
		archiver: archiver,
		now:      time.Now,
	}
}

// Record appends an audit event for the given actor and action. caseID and
// detail may be empty.
func (l *Log) Record(actor models.Actor, action, caseID, detail string) {
	event := models.AuditEvent{
		ID:        uuid.New().String(),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Action:    action,
		CaseID:    caseID,
		Detail:    detail,
		Type:      classify(action),
		Timestamp: l.now(),
	}

	zap.S().Infow("audit",
		"actor", event.ActorID,
		"action", event.Action,
		"caseId", event.CaseID,
		"detail", event.Detail,
	)

	l.mu.Lock()
	l.recent = append(l.recent, event)
	if len(l.recent) > maxRecent {
		l.recent = l.recent[len(l.recent)-maxRecent:]
	}
	l.mu.Unlock()

	if l.archiver != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.archiver.Insert(ctx, event); err != nil {
				zap.S().Warnw("failed to archive audit event", "action", event.Action, "error", err)
			}
		}()
	}
}

// Recent returns the most recent audit events, newest last
func (l *Log) Recent() []models.AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.AuditEvent, len(l.recent))
	copy(out, l.recent)
	return out
}

func classify(action string) string {
	switch {
	case strings.Contains(action, "LOGIN") || strings.Contains(action, "LOGOUT") || strings.Contains(action, "TOKEN") || strings.Contains(action, "SESSION"):
		return "auth"
	case strings.Contains(action, "TRIAGE") || strings.Contains(action, "PROTOCOL"):
		return "protocol"
	case strings.Contains(action, "DISPATCH") || strings.Contains(action, "MISSION") ||
		strings.Contains(action, "AMBULANCE") || strings.Contains(action, "SOS") ||
		strings.Contains(action, "PRIORITY") || strings.Contains(action, "CASE"):
		return "emergency"
	}
	return "system"
}
