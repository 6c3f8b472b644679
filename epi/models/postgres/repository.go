package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/epihealth/epi-app/epi/models"
)

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const (
	sqlFlavor = sqlbuilder.PostgreSQL
)

// Ensure Repository satisfies the interface
var _ models.Repository = &Repository{}

type Repository struct {
	queryable
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func NewRepositoryTx(tx *sql.Tx) *Repository {
	return &Repository{tx}
}

func (r *Repository) GetActiveCodeMappings(ctx context.Context, clientID string, codes []models.CodeQuery, asOf time.Time) ([]*models.CodeMapping, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("m.id", "m.episode_id", "e.episode_name", "m.code_type", "m.code_value",
		"m.code_description", "m.is_primary", "m.signal_strength", "m.expiration_date", "m.client_id")
	sb.From("episode_code_mappings m")
	sb.Join("episode_definitions e", "m.episode_id = e.episode_id", "m.client_id = e.client_id")

	// Match on exact (code type, code value) pairs; no fuzzy matching.
	pairs := make([]string, len(codes))
	for i, c := range codes {
		pairs[i] = sb.And(sb.Equal("m.code_type", string(c.Type)), sb.Equal("m.code_value", c.Value))
	}

	sb.Where(
		sb.Equal("m.client_id", clientID),
		sb.Or(pairs...),
		sb.Or(sb.IsNull("m.expiration_date"), sb.GreaterThan("m.expiration_date", asOf)),
	)

	// Deterministic row order makes the classifier's tie-break lexicographic
	// by episode id rather than whatever the planner felt like.
	sb.OrderBy("m.episode_id", "m.code_type", "m.code_value")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*models.CodeMapping
	for rows.Next() {
		var (
			m        models.CodeMapping
			codeType string
			strength sql.NullFloat64
			expires  sql.NullTime
		)
		if err = rows.Scan(&m.ID, &m.EpisodeID, &m.EpisodeName, &codeType, &m.CodeValue,
			&m.Description, &m.IsPrimary, &strength, &expires, &m.ClientID); err != nil {
			return nil, err
		}
		m.CodeType = models.CodeType(codeType)
		if strength.Valid {
			m.SignalStrength = &strength.Float64
		}
		if expires.Valid {
			m.ExpirationDate = &expires.Time
		}
		mappings = append(mappings, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return mappings, nil
}

func (r *Repository) GetEpisodeDefinitions(ctx context.Context, clientID string) ([]*models.EpisodeDefinition, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("episode_id", "episode_name", "episode_category", "avg_cost", "avg_lead_time_days")
	sb.From("episode_definitions")
	sb.Where(sb.Equal("client_id", clientID))
	sb.OrderBy("episode_id")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var definitions []*models.EpisodeDefinition
	for rows.Next() {
		var d models.EpisodeDefinition
		if err = rows.Scan(&d.EpisodeID, &d.Name, &d.Category, &d.AvgCost, &d.AvgLeadTimeDays); err != nil {
			return nil, err
		}
		definitions = append(definitions, &d)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return definitions, nil
}

func (r *Repository) GetPredictionWindow(ctx context.Context, clientID string, from, thru time.Time) (*models.PredictionWindow, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("COUNT(1)", "COALESCE(SUM(e.avg_cost), 0)")
	sb.From("prediction_results p")
	sb.Join("episode_definitions e", "p.episode_id = e.episode_id", "p.client_id = e.client_id")
	sb.Where(
		sb.Equal("p.client_id", clientID),
		sb.GreaterThan("p.predicted_date", from),
		sb.LessEqualThan("p.predicted_date", thru),
	)

	query, args := sb.Build()
	var w models.PredictionWindow
	if err := r.QueryRowContext(ctx, query, args...).Scan(&w.Count, &w.ProjectedCost); err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *Repository) GetOutcomeWindow(ctx context.Context, clientID string, from, thru time.Time) (*models.PredictionWindow, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("COUNT(1)", "COALESCE(SUM(allowed_amount), 0)")
	sb.From("clinical_outcome_events")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.GreaterThan("event_date", from),
		sb.LessEqualThan("event_date", thru),
	)

	query, args := sb.Build()
	var w models.PredictionWindow
	if err := r.QueryRowContext(ctx, query, args...).Scan(&w.Count, &w.ProjectedCost); err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *Repository) GetHighRiskMemberCount(ctx context.Context, clientID string) (int, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("COUNT(DISTINCT member_id)")
	sb.From("prediction_results")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.In("risk_tier", models.RiskTierVeryHigh, models.RiskTierHigh),
	)

	query, args := sb.Build()
	var count int
	if err := r.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return -1, err
	}
	return count, nil
}

func (r *Repository) GetAvgLeadTimeDays(ctx context.Context, clientID string) (float64, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("COALESCE(AVG(e.avg_lead_time_days), 0)")
	sb.From("prediction_results p")
	sb.Join("episode_definitions e", "p.episode_id = e.episode_id", "p.client_id = e.client_id")
	sb.Where(sb.Equal("p.client_id", clientID))

	query, args := sb.Build()
	var avg float64
	if err := r.QueryRowContext(ctx, query, args...).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *Repository) GetSignalCountsByType(ctx context.Context, clientID string, from, thru time.Time) ([]*models.SignalTypeCount, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("signal_type", "COUNT(1)")
	sb.From("clinical_intent_events")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.GreaterThan("event_ts", from),
		sb.LessEqualThan("event_ts", thru),
	)
	sb.GroupBy("signal_type")
	sb.OrderBy("signal_type")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*models.SignalTypeCount
	for rows.Next() {
		var c models.SignalTypeCount
		if err = rows.Scan(&c.SignalType, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *Repository) GetSignalTimeline(ctx context.Context, clientID string, from, thru time.Time) ([]*models.SignalWeekCount, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(
		"DATE_TRUNC('week', event_ts) AS week_start",
		"COUNT(1) FILTER (WHERE signal_type = 'eligibility')",
		"COUNT(1) FILTER (WHERE signal_type = 'prior_auth')",
		"COUNT(1) FILTER (WHERE signal_type = 'referral')",
	)
	sb.From("clinical_intent_events")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.GreaterThan("event_ts", from),
		sb.LessEqualThan("event_ts", thru),
	)
	sb.GroupBy("week_start")
	sb.OrderBy("week_start")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weeks []*models.SignalWeekCount
	for rows.Next() {
		var w models.SignalWeekCount
		if err = rows.Scan(&w.WeekStart, &w.Eligibility, &w.PriorAuth, &w.Referral); err != nil {
			return nil, err
		}
		weeks = append(weeks, &w)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return weeks, nil
}

func (r *Repository) GetHighRiskMembers(ctx context.Context, clientID string, limit int) ([]*models.HighRiskMember, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("p.member_id", "m.date_of_birth", "m.gender", "p.probability", "p.predicted_date",
		"p.risk_tier", "p.episode_id", "p.estimated_cost", "m.plan_id", "p.provider_name",
		"p.provider_npi", "p.diagnosis_summary")
	sb.From("prediction_results p")
	sb.Join("members m", "p.member_id = m.member_id", "p.client_id = m.client_id")
	sb.Where(
		sb.Equal("p.client_id", clientID),
		sb.In("p.risk_tier", models.RiskTierVeryHigh, models.RiskTierHigh),
	)
	sb.OrderBy("p.probability").Desc()
	sb.Limit(limit)

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.HighRiskMember
	for rows.Next() {
		var m models.HighRiskMember
		if err = rows.Scan(&m.MemberID, &m.DateOfBirth, &m.Gender, &m.Probability, &m.PredictedDate,
			&m.RiskTier, &m.EpisodeID, &m.EstimatedCost, &m.PlanID, &m.ProviderName,
			&m.ProviderNPI, pq.Array(&m.Diagnoses)); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *Repository) GetMemberSignals(ctx context.Context, clientID string, memberIDs []string, since time.Time) ([]*models.MemberSignal, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	ids := make([]interface{}, len(memberIDs))
	for i, v := range memberIDs {
		ids[i] = v
	}

	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("member_id", "signal_type", "event_ts", "details", "strength")
	sb.From("clinical_intent_events")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.In("member_id", ids...),
		sb.GreaterThan("event_ts", since),
	)
	sb.OrderBy("member_id", "event_ts DESC")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []*models.MemberSignal
	for rows.Next() {
		var s models.MemberSignal
		if err = rows.Scan(&s.MemberID, &s.SignalType, &s.EventDate, &s.Details, &s.Strength); err != nil {
			return nil, err
		}
		signals = append(signals, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return signals, nil
}

func (r *Repository) GetMonthlyActuals(ctx context.Context, clientID string, from, thru time.Time) ([]*models.MonthCount, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("DATE_TRUNC('month', event_date) AS month", "COUNT(1)")
	sb.From("clinical_outcome_events")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.GreaterThan("event_date", from),
		sb.LessEqualThan("event_date", thru),
	)
	sb.GroupBy("month")
	sb.OrderBy("month")

	query, args := sb.Build()
	return r.getMonthCounts(ctx, query, args...)
}

func (r *Repository) GetMonthlyPredictions(ctx context.Context, clientID string, from, thru time.Time) ([]*models.MonthCount, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("DATE_TRUNC('month', predicted_date) AS month", "COUNT(1)")
	sb.From("prediction_results")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.GreaterThan("predicted_date", from),
		sb.LessEqualThan("predicted_date", thru),
	)
	sb.GroupBy("month")
	sb.OrderBy("month")

	query, args := sb.Build()
	return r.getMonthCounts(ctx, query, args...)
}

func (r *Repository) GetQuarterlyActualCosts(ctx context.Context, clientID string, from, thru time.Time) ([]*models.QuarterlyCost, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("DATE_TRUNC('quarter', event_date) AS quarter", "COALESCE(SUM(allowed_amount), 0)")
	sb.From("clinical_outcome_events")
	sb.Where(
		sb.Equal("client_id", clientID),
		sb.GreaterThan("event_date", from),
		sb.LessEqualThan("event_date", thru),
	)
	sb.GroupBy("quarter")
	sb.OrderBy("quarter")

	query, args := sb.Build()
	return r.getQuarterlyCosts(ctx, query, args...)
}

func (r *Repository) GetQuarterlyProjectedCosts(ctx context.Context, clientID string, from, thru time.Time) ([]*models.QuarterlyCost, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("DATE_TRUNC('quarter', p.predicted_date) AS quarter", "COALESCE(SUM(e.avg_cost), 0)")
	sb.From("prediction_results p")
	sb.Join("episode_definitions e", "p.episode_id = e.episode_id", "p.client_id = e.client_id")
	sb.Where(
		sb.Equal("p.client_id", clientID),
		sb.GreaterThan("p.predicted_date", from),
		sb.LessEqualThan("p.predicted_date", thru),
	)
	sb.GroupBy("quarter")
	sb.OrderBy("quarter")

	query, args := sb.Build()
	return r.getQuarterlyCosts(ctx, query, args...)
}

func (r *Repository) GetLatestModelPerformance(ctx context.Context, clientID string) (*models.ModelPerformance, error) {
	sb := sqlFlavor.NewSelectBuilder()
	sb.Select("model_version", "accuracy", "measured_at")
	sb.From("model_performance_metrics")
	sb.Where(sb.Equal("client_id", clientID))
	sb.OrderBy("measured_at").Desc()
	sb.Limit(1)

	query, args := sb.Build()
	var p models.ModelPerformance
	if err := r.QueryRowContext(ctx, query, args...).Scan(&p.ModelVersion, &p.Accuracy, &p.MeasuredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &p, nil
}

func (r *Repository) getMonthCounts(ctx context.Context, query string, args ...interface{}) ([]*models.MonthCount, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*models.MonthCount
	for rows.Next() {
		var c models.MonthCount
		if err = rows.Scan(&c.Month, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *Repository) getQuarterlyCosts(ctx context.Context, query string, args ...interface{}) ([]*models.QuarterlyCost, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var costs []*models.QuarterlyCost
	for rows.Next() {
		var c models.QuarterlyCost
		if err = rows.Scan(&c.Quarter, &c.Cost); err != nil {
			return nil, err
		}
		costs = append(costs, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return costs, nil
}
