package models

// Priority represents the standardized urgency tiers for an emergency case,
// ordered by severity. The wire values follow the Manchester-style letter
// codes used on the dispatch boards.
type Priority string

// Predefined Priority values
const (
	PriorityCritical Priority = "A"
	PriorityHigh     Priority = "B"
	PriorityModerate Priority = "C"
	PriorityLow      Priority = "D"
)

// ValidPriorities returns all valid Priority values
func ValidPriorities() []Priority {
	return []Priority{
		PriorityCritical,
		PriorityHigh,
		PriorityModerate,
		PriorityLow,
	}
}

// IsValid checks if the Priority value is one of the predefined constants
func (p Priority) IsValid() bool {
	for _, validPriority := range ValidPriorities() {
		if p == validPriority {
			return true
		}
	}
	return false
}

// Rank returns the severity rank of the priority, higher is more severe.
// Unknown priorities rank below LOW.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityModerate:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// String returns the string representation of the Priority
func (p Priority) String() string {
	return string(p)
}

// PriorityData holds the display label and color for a priority tier
type PriorityData struct {
	Label string `json:"label" bson:"label"`
	Color string `json:"color" bson:"color"`
}

// PriorityDisplay maps each priority tier to its display data
var PriorityDisplay = map[Priority]PriorityData{
	PriorityCritical: {Label: "CRÍTICA", Color: "#dc2626"},
	PriorityHigh:     {Label: "ALTA", Color: "#f97316"},
	PriorityModerate: {Label: "MÉDIA", Color: "#facc15"},
	PriorityLow:      {Label: "BAIXA", Color: "#10b981"},
}

// CaseStatus represents the coarse lifecycle stage of an emergency case
type CaseStatus string

// Predefined CaseStatus values
const (
	StatusActive  CaseStatus = "active"
	StatusTriage  CaseStatus = "triage"
	StatusTransit CaseStatus = "transit"
	StatusClosed  CaseStatus = "closed"
)

// IsValid checks if the CaseStatus value is one of the predefined constants
func (s CaseStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusTriage, StatusTransit, StatusClosed:
		return true
	}
	return false
}

// String returns the string representation of the CaseStatus
func (s CaseStatus) String() string {
	return string(s)
}

// StatusData holds the display label and icon name for a case status
type StatusData struct {
	Label string `json:"label" bson:"label"`
	Icon  string `json:"icon" bson:"icon"`
}

// StatusDisplay maps each case status to its display data
var StatusDisplay = map[CaseStatus]StatusData{
	StatusActive:  {Label: "Activo", Icon: "siren"},
	StatusTriage:  {Label: "Em Triagem", Icon: "stethoscope"},
	StatusTransit: {Label: "Em Trânsito", Icon: "ambulance"},
	StatusClosed:  {Label: "Encerrado", Icon: "check"},
}
