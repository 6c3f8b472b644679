package service

import (
	"github.com/epihealth/epi-app/epi/constants"
	"github.com/epihealth/epi-app/epi/utils"
)

// ScoringConfig holds the episode scoring constants. The multipliers and the
// default strength are part of the scoring contract and are not tunable per
// environment.
type ScoringConfig struct {
	PrimaryMultiplier     float64
	ProcedureMultiplier   float64
	DefaultSignalStrength float64
	ConfidenceDivisor     float64
}

type Config struct {
	DefaultClientID string

	HighRiskMemberLimit      int
	SignalTimelineWeeks      int
	SignalComparisonDays     int
	MemberSignalLookbackDays int
	ForecastHistoryMonths    int
	ForecastFutureMonths     int

	Scoring ScoringConfig
}

func LoadConfig() *Config {
	return &Config{
		DefaultClientID:          utils.FromEnv("EPI_DEFAULT_CLIENT_ID", constants.DefaultClientID),
		HighRiskMemberLimit:      utils.GetEnvInt("EPI_HIGH_RISK_MEMBER_LIMIT", 25),
		SignalTimelineWeeks:      utils.GetEnvInt("EPI_SIGNAL_TIMELINE_WEEKS", 8),
		SignalComparisonDays:     utils.GetEnvInt("EPI_SIGNAL_COMPARISON_DAYS", 28),
		MemberSignalLookbackDays: utils.GetEnvInt("EPI_MEMBER_SIGNAL_LOOKBACK_DAYS", 90),
		ForecastHistoryMonths:    utils.GetEnvInt("EPI_FORECAST_HISTORY_MONTHS", 5),
		ForecastFutureMonths:     utils.GetEnvInt("EPI_FORECAST_FUTURE_MONTHS", 6),
		Scoring:                  defaultScoring(),
	}
}

func defaultScoring() ScoringConfig {
	return ScoringConfig{
		PrimaryMultiplier:     1.5,
		ProcedureMultiplier:   1.3,
		DefaultSignalStrength: 50,
		ConfidenceDivisor:     2,
	}
}
