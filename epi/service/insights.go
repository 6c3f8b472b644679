package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/epihealth/epi-app/epi/models"
	"github.com/epihealth/epi-app/log"
)

// Ensure insights satisfies the interface
var _ Insights = &insights{}

// Insights aggregates prediction, intent, and outcome data into the shapes
// the dashboard renders.
type Insights interface {
	EpisodeDefinitions(ctx context.Context, clientID string) ([]*models.EpisodeDefinition, error)
	Summary(ctx context.Context, clientID string) (*DashboardSummary, error)
	Forecast(ctx context.Context, clientID string) ([]ForecastPoint, error)
	SignalActivity(ctx context.Context, clientID string) (*SignalActivity, error)
	HighRiskMembers(ctx context.Context, clientID string) ([]HighRiskMemberDetail, error)
	CostProjection(ctx context.Context, clientID string) ([]CostProjectionPoint, error)
}

func NewInsights(r models.Repository, cfg *Config) Insights {
	return &insights{
		repository: r,
		logger:     log.API,
		cfg:        cfg,
		now:        time.Now,
	}
}

type insights struct {
	repository models.Repository
	logger     logrus.FieldLogger
	cfg        *Config
	now        func() time.Time
}

type VolumeBuckets struct {
	Next30Days  int `json:"next30Days"`
	Next60Days  int `json:"next60Days"`
	Next90Days  int `json:"next90Days"`
	Next180Days int `json:"next180Days"`
	TotalYear   int `json:"totalYear"`
}

type CostBuckets struct {
	Next30Days  float64 `json:"next30Days"`
	Next60Days  float64 `json:"next60Days"`
	Next90Days  float64 `json:"next90Days"`
	Next180Days float64 `json:"next180Days"`
	TotalYear   float64 `json:"totalYear"`
}

type IntentSignalTotals struct {
	EligibilityQueries int `json:"eligibilityQueries"`
	PriorAuths         int `json:"priorAuths"`
	Referrals          int `json:"referrals"`
	Total              int `json:"total"`
}

type Comparison struct {
	VolumeChange  float64 `json:"volumeChange"`
	CostChange    float64 `json:"costChange"`
	SignalsChange float64 `json:"signalsChange"`
}

type DashboardSummary struct {
	PredictedVolume VolumeBuckets      `json:"predictedVolume"`
	ProjectedCosts  CostBuckets        `json:"projectedCosts"`
	IntentSignals   IntentSignalTotals `json:"intentSignals"`
	HighRiskMembers int                `json:"highRiskMembers"`
	AvgLeadTime     float64            `json:"avgLeadTime"`
	ModelAccuracy   float64            `json:"modelAccuracy"`
	Comparison      Comparison         `json:"comparison"`
}

type ForecastPoint struct {
	Month     string `json:"month"`
	Actual    int    `json:"actual"`
	Predicted int    `json:"predicted"`
	Lower     int    `json:"lower"`
	Upper     int    `json:"upper"`
}

type SignalTypeActivity struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Change int    `json:"change"`
}

type SignalWeek struct {
	Week     string `json:"week"`
	Elig     int    `json:"elig"`
	PA       int    `json:"pa"`
	Referral int    `json:"referral"`
}

type SignalActivity struct {
	ByType   []SignalTypeActivity `json:"byType"`
	Timeline []SignalWeek         `json:"timeline"`
}

type MemberSignalDetail struct {
	Type     string  `json:"type"`
	Date     string  `json:"date"`
	Details  string  `json:"details"`
	Strength float64 `json:"strength"`
}

type HighRiskMemberDetail struct {
	MemberID           string               `json:"memberId"`
	Age                int                  `json:"age"`
	Gender             string               `json:"gender"`
	Probability        float64              `json:"probability"`
	PredictedDate      string               `json:"predictedDate"`
	RiskTier           string               `json:"riskTier"`
	Signals            []MemberSignalDetail `json:"signals"`
	Diagnosis          []string             `json:"diagnosis"`
	Provider           string               `json:"provider"`
	EstimatedCost      float64              `json:"estimatedCost"`
	PlanID             string               `json:"planId"`
	DaysUntilProcedure int                  `json:"daysUntilProcedure"`
}

type CostProjectionPoint struct {
	Quarter   string  `json:"quarter"`
	Actual    float64 `json:"actual"`
	Projected float64 `json:"projected"`
}

func (s *insights) EpisodeDefinitions(ctx context.Context, clientID string) ([]*models.EpisodeDefinition, error) {
	definitions, err := s.repository.GetEpisodeDefinitions(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get episode definitions")
	}
	return definitions, nil
}

func (s *insights) Summary(ctx context.Context, clientID string) (*DashboardSummary, error) {
	now := s.now()

	var volume VolumeBuckets
	var costs CostBuckets
	horizons := []struct {
		days  int
		count *int
		cost  *float64
	}{
		{30, &volume.Next30Days, &costs.Next30Days},
		{60, &volume.Next60Days, &costs.Next60Days},
		{90, &volume.Next90Days, &costs.Next90Days},
		{180, &volume.Next180Days, &costs.Next180Days},
		{365, &volume.TotalYear, &costs.TotalYear},
	}
	for _, h := range horizons {
		window, err := s.repository.GetPredictionWindow(ctx, clientID, now, now.AddDate(0, 0, h.days))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get %d day prediction window", h.days)
		}
		*h.count = window.Count
		*h.cost = window.ProjectedCost
	}

	comparisonDays := s.cfg.SignalComparisonDays
	current, err := s.repository.GetSignalCountsByType(ctx, clientID, now.AddDate(0, 0, -comparisonDays), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get signal counts")
	}
	prior, err := s.repository.GetSignalCountsByType(ctx, clientID,
		now.AddDate(0, 0, -2*comparisonDays), now.AddDate(0, 0, -comparisonDays))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get prior signal counts")
	}

	signals := intentTotals(current)

	highRisk, err := s.repository.GetHighRiskMemberCount(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get high risk member count")
	}

	leadTime, err := s.repository.GetAvgLeadTimeDays(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get average lead time")
	}

	accuracy := 0.0
	performance, err := s.repository.GetLatestModelPerformance(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get model performance")
	}
	if performance != nil {
		accuracy = performance.Accuracy
	}

	// Period-over-period deltas: predictions for the next 90 days against
	// realized outcomes over the previous 90.
	priorOutcome, err := s.repository.GetOutcomeWindow(ctx, clientID, now.AddDate(0, 0, -90), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get outcome window")
	}
	priorSignals := intentTotals(prior)

	return &DashboardSummary{
		PredictedVolume: volume,
		ProjectedCosts:  costs,
		IntentSignals:   signals,
		HighRiskMembers: highRisk,
		AvgLeadTime:     round1(leadTime),
		ModelAccuracy:   accuracy,
		Comparison: Comparison{
			VolumeChange:  percentChange(priorOutcome.Count, volume.Next90Days),
			CostChange:    percentChangeF(priorOutcome.ProjectedCost, costs.Next90Days),
			SignalsChange: percentChange(priorSignals.Total, signals.Total),
		},
	}, nil
}

func (s *insights) Forecast(ctx context.Context, clientID string) ([]ForecastPoint, error) {
	now := s.now()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := currentMonth.AddDate(0, -s.cfg.ForecastHistoryMonths, 0)
	thru := currentMonth.AddDate(0, s.cfg.ForecastFutureMonths+1, 0)

	actuals, err := s.repository.GetMonthlyActuals(ctx, clientID, from.AddDate(0, 0, -1), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get monthly actuals")
	}
	predictions, err := s.repository.GetMonthlyPredictions(ctx, clientID, from.AddDate(0, 0, -1), thru)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get monthly predictions")
	}

	actualByMonth := make(map[time.Time]int, len(actuals))
	for _, a := range actuals {
		actualByMonth[monthKey(a.Month)] = a.Count
	}
	predictedByMonth := make(map[time.Time]int, len(predictions))
	for _, p := range predictions {
		predictedByMonth[monthKey(p.Month)] = p.Count
	}

	var points []ForecastPoint
	for month := from; month.Before(thru); month = month.AddDate(0, 1, 0) {
		predicted := predictedByMonth[month]
		point := ForecastPoint{
			Month:     month.Format("Jan 2006"),
			Actual:    actualByMonth[month],
			Predicted: predicted,
			Lower:     predicted,
			Upper:     predicted,
		}
		if !month.Before(currentMonth) {
			// Rough 95% interval assuming Poisson-distributed volume.
			margin := int(math.Ceil(1.96 * math.Sqrt(float64(predicted))))
			point.Lower = predicted - margin
			if point.Lower < 0 {
				point.Lower = 0
			}
			point.Upper = predicted + margin
		}
		points = append(points, point)
	}

	return points, nil
}

func (s *insights) SignalActivity(ctx context.Context, clientID string) (*SignalActivity, error) {
	now := s.now()

	comparisonDays := s.cfg.SignalComparisonDays
	current, err := s.repository.GetSignalCountsByType(ctx, clientID, now.AddDate(0, 0, -comparisonDays), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get signal counts")
	}
	prior, err := s.repository.GetSignalCountsByType(ctx, clientID,
		now.AddDate(0, 0, -2*comparisonDays), now.AddDate(0, 0, -comparisonDays))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get prior signal counts")
	}

	priorByType := make(map[string]int, len(prior))
	for _, p := range prior {
		priorByType[p.SignalType] = p.Count
	}

	byType := []SignalTypeActivity{}
	for _, c := range current {
		byType = append(byType, SignalTypeActivity{
			Type:   signalDisplayName(c.SignalType),
			Count:  c.Count,
			Change: c.Count - priorByType[c.SignalType],
		})
	}

	weeks, err := s.repository.GetSignalTimeline(ctx, clientID,
		now.AddDate(0, 0, -7*s.cfg.SignalTimelineWeeks), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get signal timeline")
	}

	timeline := []SignalWeek{}
	for i, w := range weeks {
		timeline = append(timeline, SignalWeek{
			Week:     fmt.Sprintf("Week %d", i+1),
			Elig:     w.Eligibility,
			PA:       w.PriorAuth,
			Referral: w.Referral,
		})
	}

	return &SignalActivity{ByType: byType, Timeline: timeline}, nil
}

func (s *insights) HighRiskMembers(ctx context.Context, clientID string) ([]HighRiskMemberDetail, error) {
	now := s.now()

	members, err := s.repository.GetHighRiskMembers(ctx, clientID, s.cfg.HighRiskMemberLimit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get high risk members")
	}
	if len(members) == 0 {
		return []HighRiskMemberDetail{}, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.MemberID
	}
	signals, err := s.repository.GetMemberSignals(ctx, clientID, ids,
		now.AddDate(0, 0, -s.cfg.MemberSignalLookbackDays))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member signals")
	}

	signalsByMember := make(map[string][]MemberSignalDetail)
	for _, sig := range signals {
		signalsByMember[sig.MemberID] = append(signalsByMember[sig.MemberID], MemberSignalDetail{
			Type:     signalShortName(sig.SignalType),
			Date:     sig.EventDate.Format("2006-01-02"),
			Details:  sig.Details,
			Strength: sig.Strength,
		})
	}

	details := make([]HighRiskMemberDetail, 0, len(members))
	for _, m := range members {
		memberSignals := signalsByMember[m.MemberID]
		if memberSignals == nil {
			memberSignals = []MemberSignalDetail{}
		}
		diagnosis := m.Diagnoses
		if diagnosis == nil {
			diagnosis = []string{}
		}
		details = append(details, HighRiskMemberDetail{
			MemberID:           m.MemberID,
			Age:                ageAt(m.DateOfBirth, now),
			Gender:             m.Gender,
			Probability:        m.Probability,
			PredictedDate:      m.PredictedDate.Format("2006-01-02"),
			RiskTier:           m.RiskTier,
			Signals:            memberSignals,
			Diagnosis:          diagnosis,
			Provider:           fmt.Sprintf("%s (NPI: %s)", m.ProviderName, m.ProviderNPI),
			EstimatedCost:      m.EstimatedCost,
			PlanID:             m.PlanID,
			DaysUntilProcedure: daysUntil(m.PredictedDate, now),
		})
	}

	return details, nil
}

func (s *insights) CostProjection(ctx context.Context, clientID string) ([]CostProjectionPoint, error) {
	now := s.now()
	currentQuarter := quarterStart(now)
	from := currentQuarter.AddDate(0, -3, 0)
	thru := currentQuarter.AddDate(0, 9, 0)

	actuals, err := s.repository.GetQuarterlyActualCosts(ctx, clientID, from.AddDate(0, 0, -1), now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get quarterly actual costs")
	}
	projected, err := s.repository.GetQuarterlyProjectedCosts(ctx, clientID, from.AddDate(0, 0, -1), thru)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get quarterly projected costs")
	}

	actualByQuarter := make(map[time.Time]float64, len(actuals))
	for _, a := range actuals {
		actualByQuarter[quarterKey(a.Quarter)] = a.Cost
	}
	projectedByQuarter := make(map[time.Time]float64, len(projected))
	for _, p := range projected {
		projectedByQuarter[quarterKey(p.Quarter)] = p.Cost
	}

	var points []CostProjectionPoint
	for quarter := from; quarter.Before(thru); quarter = quarter.AddDate(0, 3, 0) {
		points = append(points, CostProjectionPoint{
			Quarter:   quarterLabel(quarter),
			Actual:    actualByQuarter[quarter],
			Projected: projectedByQuarter[quarter],
		})
	}

	return points, nil
}

func intentTotals(counts []*models.SignalTypeCount) IntentSignalTotals {
	var totals IntentSignalTotals
	for _, c := range counts {
		switch c.SignalType {
		case models.SignalTypeEligibility:
			totals.EligibilityQueries = c.Count
		case models.SignalTypePriorAuth:
			totals.PriorAuths = c.Count
		case models.SignalTypeReferral:
			totals.Referrals = c.Count
		}
		totals.Total += c.Count
	}
	return totals
}

func signalDisplayName(signalType string) string {
	switch signalType {
	case models.SignalTypeEligibility:
		return "Eligibility Query"
	case models.SignalTypePriorAuth:
		return "Prior Auth"
	case models.SignalTypeReferral:
		return "Referrals"
	}
	return signalType
}

func signalShortName(signalType string) string {
	switch signalType {
	case models.SignalTypeEligibility:
		return "elig"
	case models.SignalTypePriorAuth:
		return "pa"
	case models.SignalTypeReferral:
		return "referral"
	}
	return signalType
}

func percentChange(prior, current int) float64 {
	return percentChangeF(float64(prior), float64(current))
}

func percentChangeF(prior, current float64) float64 {
	if prior == 0 {
		return 0
	}
	return round1((current - prior) / prior * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ageAt(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
}

func daysUntil(date, now time.Time) int {
	days := int(math.Ceil(date.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func monthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func quarterStart(t time.Time) time.Time {
	month := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, time.UTC)
}

func quarterKey(t time.Time) time.Time {
	return quarterStart(t)
}

func quarterLabel(t time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
}
