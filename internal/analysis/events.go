package analysis

import "time"

// Event is one row of the process-mining event log produced by the model for
// a single recording. The pipeline treats the rows as opaque beyond their
// ordering; the field set mirrors the JSON schema requested in the synthesis
// prompt.
type Event struct {
	StageSequenceID     int      `json:"StageSequenceID" dynamodbav:"stageSequenceId"`
	StartTime           string   `json:"StartTime" dynamodbav:"startTime"`
	EndTime             string   `json:"EndTime" dynamodbav:"endTime"`
	DurationMin         string   `json:"DurationMin" dynamodbav:"durationMin"`
	ActivityName        string   `json:"ActivityName" dynamodbav:"activityName"`
	ActivityDetail      string   `json:"ActivityDetail" dynamodbav:"activityDetail"`
	ProcessStageGeneric string   `json:"ProcessStageGeneric" dynamodbav:"processStageGeneric"`
	ToolsUsed           []string `json:"ToolsUsed" dynamodbav:"toolsUsed,omitempty"`
	FileTypeHandled     string   `json:"FileTypeHandled" dynamodbav:"fileTypeHandled"`
	CategoryType        string   `json:"CategoryType" dynamodbav:"categoryType"`
	ValueType           string   `json:"ValueType" dynamodbav:"valueType"`
	Frequency           int      `json:"Frequency" dynamodbav:"frequency"`
	ReworkFlag          string   `json:"ReworkFlag" dynamodbav:"reworkFlag"`
	ExceptionFlag       string   `json:"ExceptionFlag" dynamodbav:"exceptionFlag"`
	IdleTimeFlag        string   `json:"IdleTimeFlag" dynamodbav:"idleTimeFlag"`
	SwitchCount         int      `json:"SwitchCount" dynamodbav:"switchCount"`
	MicroTaskFlag       string   `json:"MicroTaskFlag" dynamodbav:"microTaskFlag"`
	ComplianceCheckFlag string   `json:"ComplianceCheckFlag" dynamodbav:"complianceCheckFlag"`
	ErrorRiskLevel      string   `json:"ErrorRiskLevel" dynamodbav:"errorRiskLevel"`
	AIOpportunityLevel  string   `json:"AIOpportunityLevel" dynamodbav:"aiOpportunityLevel"`
	EliminationPotential string   `json:"EliminationPotential" dynamodbav:"eliminationPotential"`
	// RootCauseTag is only meaningful when ExceptionFlag is "Yes".
	RootCauseTag string  `json:"RootCauseTag" dynamodbav:"rootCauseTag"`
	Observation  string  `json:"Observation" dynamodbav:"observation"`
	Confidence   float64 `json:"Confidence" dynamodbav:"confidence"`
}

// EventLog is the document persisted once per successfully processed
// recording. CaseID groups all recordings of one (employee, date) session.
type EventLog struct {
	FileName    string    `json:"fileName" dynamodbav:"-"`
	CaseID      string    `json:"caseID" dynamodbav:"-"`
	EmployeeID  string    `json:"employeeID" dynamodbav:"employeeId"`
	FullName    string    `json:"fullName" dynamodbav:"fullName"`
	Team        string    `json:"team" dynamodbav:"team"`
	Date        string    `json:"date" dynamodbav:"date"`
	Events      []Event   `json:"events" dynamodbav:"events"`
	ProcessedAt time.Time `json:"processedAt" dynamodbav:"processedAt"`
}

// CaseID builds the session grouping key for an (employee, date) pair.
func CaseID(employeeID, date string) string {
	return employeeID + "_" + date
}
