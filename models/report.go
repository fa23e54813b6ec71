package models

// ConsciousnessState is the AVPU-style consciousness classification entered
// by the field paramedic at mission close.
type ConsciousnessState string

// Predefined ConsciousnessState values
const (
	ConsciousnessConscious   ConsciousnessState = "Consciente"
	ConsciousnessUnconscious ConsciousnessState = "Inconsciente"
)

// IsValid checks if the ConsciousnessState value is one of the predefined constants
func (c ConsciousnessState) IsValid() bool {
	return c == ConsciousnessConscious || c == ConsciousnessUnconscious
}

// ClinicalInput holds the operator-entered clinical fields required to
// finalize a mission.
type ClinicalInput struct {
	ConsciousnessState ConsciousnessState `json:"consciousnessState" bson:"consciousnessState"`
	ConditionWorsened  bool               `json:"conditionWorsened" bson:"conditionWorsened"`
	ParamedicName      string             `json:"paramedicName" bson:"paramedicName"`
	FinalObservations  string             `json:"finalObservations" bson:"finalObservations"`
}

// OperationReport is the immutable closure record of a mission, computed once
// from the mission timestamps plus the clinical input. Never mutated after
// creation.
type OperationReport struct {
	HospitalName          string             `json:"hospitalName" bson:"hospitalName"`
	TimeBaseToPatient     string             `json:"timeBaseToPatient" bson:"timeBaseToPatient"`
	TimePatientToHospital string             `json:"timePatientToHospital" bson:"timePatientToHospital"`
	TotalOperationTime    string             `json:"totalOperationTime" bson:"totalOperationTime"`
	ConsciousnessState    ConsciousnessState `json:"consciousnessState" bson:"consciousnessState"`
	ConditionWorsened     bool               `json:"conditionWorsened" bson:"conditionWorsened"`
	ParamedicName         string             `json:"paramedicName" bson:"paramedicName"`
	FinalObservations     string             `json:"finalObservations" bson:"finalObservations"`
	Timestamps            MissionTimestamps  `json:"timestamps" bson:"timestamps"`
}
