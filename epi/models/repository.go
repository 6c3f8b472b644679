package models

import (
	"context"
	"time"
)

// Repository contains all of the methods needed to interact with the data
// represented in the models package. All reads are scoped to a client id.
type Repository interface {
	// GetActiveCodeMappings returns the mappings for the given client whose
	// (code type, code value) pair is in codes and which have not expired as
	// of asOf. Rows are ordered by episode id, code type, code value so the
	// caller's iteration order is deterministic regardless of the store.
	GetActiveCodeMappings(ctx context.Context, clientID string, codes []CodeQuery, asOf time.Time) ([]*CodeMapping, error)

	GetEpisodeDefinitions(ctx context.Context, clientID string) ([]*EpisodeDefinition, error)

	GetPredictionWindow(ctx context.Context, clientID string, from, thru time.Time) (*PredictionWindow, error)
	GetOutcomeWindow(ctx context.Context, clientID string, from, thru time.Time) (*PredictionWindow, error)
	GetHighRiskMemberCount(ctx context.Context, clientID string) (int, error)
	GetAvgLeadTimeDays(ctx context.Context, clientID string) (float64, error)

	GetSignalCountsByType(ctx context.Context, clientID string, from, thru time.Time) ([]*SignalTypeCount, error)
	GetSignalTimeline(ctx context.Context, clientID string, from, thru time.Time) ([]*SignalWeekCount, error)

	GetHighRiskMembers(ctx context.Context, clientID string, limit int) ([]*HighRiskMember, error)
	GetMemberSignals(ctx context.Context, clientID string, memberIDs []string, since time.Time) ([]*MemberSignal, error)

	GetMonthlyActuals(ctx context.Context, clientID string, from, thru time.Time) ([]*MonthCount, error)
	GetMonthlyPredictions(ctx context.Context, clientID string, from, thru time.Time) ([]*MonthCount, error)
	GetQuarterlyActualCosts(ctx context.Context, clientID string, from, thru time.Time) ([]*QuarterlyCost, error)
	GetQuarterlyProjectedCosts(ctx context.Context, clientID string, from, thru time.Time) ([]*QuarterlyCost, error)

	// GetLatestModelPerformance returns nil when no metrics row exists yet.
	GetLatestModelPerformance(ctx context.Context, clientID string) (*ModelPerformance, error)
}
