package models

// ProtocolSuggestion is the classification produced by the triage protocol
type ProtocolSuggestion struct {
	Classification     Priority `json:"classification" bson:"classification"`
	ActionRequired     string   `json:"actionRequired" bson:"actionRequired"`
	Reasoning          string   `json:"reasoning" bson:"reasoning"`
	SuggestedResources []string `json:"suggestedResources" bson:"suggestedResources"`
}
