package models

import (
	"time"
)

// CodeType identifies one of the supported medical code categories. The
// string values are the code-system labels stored in the mapping tables.
type CodeType string

const (
	CodeTypeProcedure CodeType = "CPT"
	CodeTypeDiagnosis CodeType = "ICD10"
	CodeTypeDrug      CodeType = "NDC"
	CodeTypeRevenue   CodeType = "Revenue"
)

// AllCodeTypes lists the supported code types in canonical order.
var AllCodeTypes = []CodeType{CodeTypeProcedure, CodeTypeDiagnosis, CodeTypeDrug, CodeTypeRevenue}

// Intent signal types as stored in clinical_intent_events.signal_type.
const (
	SignalTypeEligibility = "eligibility"
	SignalTypePriorAuth   = "prior_auth"
	SignalTypeReferral    = "referral"
)

// Risk tiers as stored in prediction_results.risk_tier.
const (
	RiskTierVeryHigh = "very_high"
	RiskTierHigh     = "high"
	RiskTierModerate = "moderate"
	RiskTierLow      = "low"
)

// CodeQuery is a single (code type, code value) pair submitted for
// classification.
type CodeQuery struct {
	Type  CodeType
	Value string
}

// CodeMapping associates a billing code with an episode of care. Mappings are
// curated reference data owned by the mapping store; this service only reads
// them. A mapping is active when ExpirationDate is nil or strictly in the
// future.
type CodeMapping struct {
	ID             uint
	EpisodeID      string
	EpisodeName    string
	CodeType       CodeType
	CodeValue      string
	Description    string
	IsPrimary      bool
	SignalStrength *float64
	ExpirationDate *time.Time
	ClientID       string
}

// Active reports whether the mapping may contribute to classification at the
// given time.
func (m *CodeMapping) Active(asOf time.Time) bool {
	return m.ExpirationDate == nil || m.ExpirationDate.After(asOf)
}

// ClassificationContext carries the optional request context. ClientID is
// defaulted at the HTTP boundary, never inside scoring.
type ClassificationContext struct {
	MemberID          string `json:"member_id,omitempty"`
	ServiceDate       string `json:"service_date,omitempty"`
	ProviderSpecialty string `json:"provider_specialty,omitempty"`
	ClientID          string `json:"client_id,omitempty"`
}

// ClassificationRequest is the inbound payload for the classify-episode
// operation. All code lists are optional.
type ClassificationRequest struct {
	DiagnosisCodes []string              `json:"diagnosis_codes"`
	ProcedureCodes []string              `json:"procedure_codes"`
	NDCCodes       []string              `json:"ndc_codes"`
	RevenueCodes   []string              `json:"revenue_codes"`
	Context        ClassificationContext `json:"context"`
}

// Codes flattens the request into (type, value) pairs, deduplicated within
// each category with first-seen order preserved. Procedure codes lead since
// they are the strongest signal type.
func (r *ClassificationRequest) Codes() []CodeQuery {
	var out []CodeQuery
	for _, group := range []struct {
		codeType CodeType
		values   []string
	}{
		{CodeTypeProcedure, r.ProcedureCodes},
		{CodeTypeDiagnosis, r.DiagnosisCodes},
		{CodeTypeDrug, r.NDCCodes},
		{CodeTypeRevenue, r.RevenueCodes},
	} {
		seen := make(map[string]struct{}, len(group.values))
		for _, v := range group.values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, CodeQuery{Type: group.codeType, Value: v})
		}
	}
	return out
}

// MatchedCode is the per-code evidence carried on a classification result.
// The internal score contribution is deliberately not exposed.
type MatchedCode struct {
	CodeType       CodeType `json:"code_type"`
	CodeValue      string   `json:"code_value"`
	SignalStrength *float64 `json:"signal_strength"`
	IsPrimary      bool     `json:"is_primary"`
}

// ClassificationResult is the outcome of a classify-episode operation.
// EpisodeID and EpisodeName are both nil when no confident match exists, in
// which case ConfidenceScore is 0 and MatchedCodes is empty.
type ClassificationResult struct {
	EpisodeID       *string       `json:"episode_id"`
	EpisodeName     *string       `json:"episode_name"`
	ConfidenceScore int           `json:"confidence_score"`
	MatchedCodes    []MatchedCode `json:"matched_codes"`
	Reasoning       []string      `json:"reasoning"`
}

// EpisodeDefinition is a clinical pathway that mappings and predictions are
// organized around.
type EpisodeDefinition struct {
	EpisodeID       string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	AvgCost         float64 `json:"avgCost"`
	AvgLeadTimeDays int     `json:"avgLeadTime"`
}

// PredictionWindow aggregates predicted procedure volume and cost exposure
// over a date range.
type PredictionWindow struct {
	Count         int
	ProjectedCost float64
}

type SignalTypeCount struct {
	SignalType string
	Count      int
}

// SignalWeekCount buckets intent events by the week they occurred in.
type SignalWeekCount struct {
	WeekStart   time.Time
	Eligibility int
	PriorAuth   int
	Referral    int
}

// HighRiskMember is a prediction row joined with member demographics.
type HighRiskMember struct {
	MemberID      string
	DateOfBirth   time.Time
	Gender        string
	Probability   float64
	PredictedDate time.Time
	RiskTier      string
	EpisodeID     string
	EstimatedCost float64
	PlanID        string
	ProviderName  string
	ProviderNPI   string
	Diagnoses     []string
}

type MemberSignal struct {
	MemberID   string
	SignalType string
	EventDate  time.Time
	Details    string
	Strength   float64
}

type MonthCount struct {
	Month time.Time
	Count int
}

type QuarterlyCost struct {
	Quarter time.Time
	Cost    float64
}

type ModelPerformance struct {
	ModelVersion string
	Accuracy     float64
	MeasuredAt   time.Time
}
