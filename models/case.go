package models

import "time"

// MissionPhase represents the state-machine state of an active ambulance mission
type MissionPhase string

// Mission phases, in forward order. There are no backward transitions.
const (
	PhaseIdle             MissionPhase = "idle"
	PhaseEnRouteToPatient MissionPhase = "en_route_to_patient"
	PhaseAtPatient        MissionPhase = "at_patient"
	PhaseEvacuating       MissionPhase = "evacuating"
	PhaseAtHospital       MissionPhase = "at_hospital"
)

// IsValid checks if the MissionPhase value is one of the predefined constants
func (p MissionPhase) IsValid() bool {
	switch p {
	case PhaseIdle, PhaseEnRouteToPatient, PhaseAtPatient, PhaseEvacuating, PhaseAtHospital:
		return true
	}
	return false
}

// String returns the string representation of the MissionPhase
func (p MissionPhase) String() string {
	return string(p)
}

// Coordinates holds a geographic point as raw lat/lng degrees
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// MissionTimestamps holds the wall-clock times recorded as a mission moves
// through its phases. Each field is populated exactly once, the first time
// its phase is entered, and never overwritten. Times are "HH:MM:SS" strings.
type MissionTimestamps struct {
	Dispatched        string `json:"dispatched" bson:"dispatched"`
	ArrivedAtPatient  string `json:"arrivedAtPatient,omitempty" bson:"arrivedAtPatient,omitempty"`
	LeftForHospital   string `json:"leftForHospital,omitempty" bson:"leftForHospital,omitempty"`
	ArrivedAtHospital string `json:"arrivedAtHospital,omitempty" bson:"arrivedAtHospital,omitempty"`
}

// AmbulanceState holds the mutable tracking record for one active mission.
// CurrentPos, Eta and Distance are owned by the position simulator while the
// unit is moving.
type AmbulanceState struct {
	CurrentPos Coordinates       `json:"currentPos" bson:"currentPos"`
	Phase      MissionPhase      `json:"phase" bson:"phase"`
	Eta        float64           `json:"eta" bson:"eta"`
	Distance   float64           `json:"distance" bson:"distance"`
	Timestamps MissionTimestamps `json:"timestamps" bson:"timestamps"`
}

// EmergencyCase holds the structure for one incident on the dispatch board.
// AmbulanceState is present only while a unit is on mission; Report is present
// only after the mission was finalized. The two never coexist.
type EmergencyCase struct {
	ID             string           `json:"id" bson:"id"`
	Priority       Priority         `json:"priority" bson:"priority"`
	LocationName   string           `json:"locationName" bson:"locationName"`
	Status         CaseStatus       `json:"status" bson:"status"`
	Type           string           `json:"type" bson:"type"`
	Coords         Coordinates      `json:"coords" bson:"coords"`
	PatientName    string           `json:"patientName,omitempty" bson:"patientName,omitempty"`
	EmployeeID     string           `json:"employeeId,omitempty" bson:"employeeId,omitempty"`
	CompanyID      string           `json:"companyId,omitempty" bson:"companyId,omitempty"`
	AmbulanceState *AmbulanceState  `json:"ambulanceState,omitempty" bson:"ambulanceState,omitempty"`
	Report         *OperationReport `json:"report,omitempty" bson:"report,omitempty"`
	CreatedAt      time.Time        `json:"createdAt" bson:"createdAt"`
	ClosedAt       time.Time        `json:"closedAt,omitempty" bson:"closedAt,omitempty"`
}

// Copy returns a deep copy of the case so readers never alias the store's
// live record.
func (c EmergencyCase) Copy() EmergencyCase {
	out := c
	if c.AmbulanceState != nil {
		amb := *c.AmbulanceState
		out.AmbulanceState = &amb
	}
	if c.Report != nil {
		rep := *c.Report
		out.Report = &rep
	}
	return out
}

// CaseEvent is pushed to store subscribers on every sanctioned mutation
type CaseEvent struct {
	Action string        `json:"action"`
	Case   EmergencyCase `json:"case"`
}

// ArchivedCase holds the structure for the closed-case archive collection in mongo
type ArchivedCase struct {
	ID         string        `json:"_id" bson:"_id"`
	Case       EmergencyCase `json:"case" bson:"case"`
	ArchivedAt time.Time     `json:"archivedAt" bson:"archivedAt"`
}
