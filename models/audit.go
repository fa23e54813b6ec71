package models

import "time"

// Role represents the access role attached to a session
type Role string

// Predefined Role values
const (
	RoleAdmin       Role = "ADMIN_OC"
	RoleOperator    Role = "OPERADOR_SALA"
	RoleRiskAnalyst Role = "ANALISTA_RISCO"
	RoleAmbulance   Role = "AMBULANCIA"
	RoleCorporate   Role = "EMPRESA_CLIENTE"
	RoleSystem      Role = "SYSTEM"
)

// IsValid checks if the Role value is one of the predefined constants
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleRiskAnalyst, RoleAmbulance, RoleCorporate, RoleSystem:
		return true
	}
	return false
}

// String returns the string representation of the Role
func (r Role) String() string {
	return string(r)
}

// Actor identifies who performed an audited action
type Actor struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	Role Role   `json:"role" bson:"role"`
}

// AuditEvent holds the structure for one entry in the audit trail and for
// the auditEvents collection in mongo
type AuditEvent struct {
	ID        string    `json:"id" bson:"_id"`
	ActorID   string    `json:"actorId" bson:"actorId"`
	ActorName string    `json:"actorName" bson:"actorName"`
	ActorRole Role      `json:"actorRole" bson:"actorRole"`
	Action    string    `json:"action" bson:"action"`
	CaseID    string    `json:"caseId,omitempty" bson:"caseId,omitempty"`
	Detail    string    `json:"detail,omitempty" bson:"detail,omitempty"`
	Type      string    `json:"type" bson:"type"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
