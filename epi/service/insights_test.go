package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/epihealth/epi-app/epi/models"
	"github.com/epihealth/epi-app/log"
)

type InsightsTestSuite struct {
	suite.Suite
	repository *models.MockRepository
	insights   *insights
}

func (s *InsightsTestSuite) SetupTest() {
	s.repository = &models.MockRepository{}
	s.insights = &insights{
		repository: s.repository,
		logger:     log.API,
		cfg: &Config{
			DefaultClientID:          "default",
			HighRiskMemberLimit:      25,
			SignalTimelineWeeks:      8,
			SignalComparisonDays:     28,
			MemberSignalLookbackDays: 90,
			ForecastHistoryMonths:    2,
			ForecastFutureMonths:     2,
			Scoring:                  defaultScoring(),
		},
		now: func() time.Time { return testNow },
	}
}

func TestInsightsTestSuite(t *testing.T) {
	suite.Run(t, new(InsightsTestSuite))
}

func (s *InsightsTestSuite) TestEpisodeDefinitions() {
	definitions := []*models.EpisodeDefinition{
		{EpisodeID: "EP-001", Name: "Total Knee Replacement", Category: "Orthopedic", AvgCost: 38000, AvgLeadTimeDays: 45},
	}
	s.repository.On("GetEpisodeDefinitions", mock.Anything, testClientID).Return(definitions, nil)

	result, err := s.insights.EpisodeDefinitions(context.Background(), testClientID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), definitions, result)
}

func (s *InsightsTestSuite) TestSummary() {
	for _, h := range []struct {
		days  int
		count int
		cost  float64
	}{
		{30, 12, 456000}, {60, 28, 1064000}, {90, 45, 1710000}, {180, 89, 3382000}, {365, 156, 5928000},
	} {
		s.repository.On("GetPredictionWindow", mock.Anything, testClientID, testNow, testNow.AddDate(0, 0, h.days)).
			Return(&models.PredictionWindow{Count: h.count, ProjectedCost: h.cost}, nil)
	}

	s.repository.On("GetSignalCountsByType", mock.Anything, testClientID, testNow.AddDate(0, 0, -28), testNow).
		Return([]*models.SignalTypeCount{
			{SignalType: models.SignalTypeEligibility, Count: 847},
			{SignalType: models.SignalTypePriorAuth, Count: 234},
			{SignalType: models.SignalTypeReferral, Count: 156},
		}, nil)
	s.repository.On("GetSignalCountsByType", mock.Anything, testClientID, testNow.AddDate(0, 0, -56), testNow.AddDate(0, 0, -28)).
		Return([]*models.SignalTypeCount{
			{SignalType: models.SignalTypeEligibility, Count: 800},
			{SignalType: models.SignalTypePriorAuth, Count: 200},
		}, nil)
	s.repository.On("GetHighRiskMemberCount", mock.Anything, testClientID).Return(67, nil)
	s.repository.On("GetAvgLeadTimeDays", mock.Anything, testClientID).Return(42.04, nil)
	s.repository.On("GetLatestModelPerformance", mock.Anything, testClientID).
		Return(&models.ModelPerformance{ModelVersion: "v2.3.1", Accuracy: 0.87}, nil)
	s.repository.On("GetOutcomeWindow", mock.Anything, testClientID, testNow.AddDate(0, 0, -90), testNow).
		Return(&models.PredictionWindow{Count: 40, ProjectedCost: 1600000}, nil)

	summary, err := s.insights.Summary(context.Background(), testClientID)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), VolumeBuckets{12, 28, 45, 89, 156}, summary.PredictedVolume)
	assert.Equal(s.T(), CostBuckets{456000, 1064000, 1710000, 3382000, 5928000}, summary.ProjectedCosts)
	assert.Equal(s.T(), IntentSignalTotals{EligibilityQueries: 847, PriorAuths: 234, Referrals: 156, Total: 1237}, summary.IntentSignals)
	assert.Equal(s.T(), 67, summary.HighRiskMembers)
	assert.Equal(s.T(), 42.0, summary.AvgLeadTime)
	assert.Equal(s.T(), 0.87, summary.ModelAccuracy)
	// 40 -> 45 is +12.5%, 1.6M -> 1.71M is +6.9%, 1000 -> 1237 is +23.7%
	assert.Equal(s.T(), Comparison{VolumeChange: 12.5, CostChange: 6.9, SignalsChange: 23.7}, summary.Comparison)
}

func (s *InsightsTestSuite) TestSummaryNoModelPerformance() {
	for _, days := range []int{30, 60, 90, 180, 365} {
		s.repository.On("GetPredictionWindow", mock.Anything, testClientID, testNow, testNow.AddDate(0, 0, days)).
			Return(&models.PredictionWindow{}, nil)
	}
	s.repository.On("GetSignalCountsByType", mock.Anything, testClientID, mock.Anything, mock.Anything).
		Return(nil, nil)
	s.repository.On("GetHighRiskMemberCount", mock.Anything, testClientID).Return(0, nil)
	s.repository.On("GetAvgLeadTimeDays", mock.Anything, testClientID).Return(0.0, nil)
	s.repository.On("GetLatestModelPerformance", mock.Anything, testClientID).Return(nil, nil)
	s.repository.On("GetOutcomeWindow", mock.Anything, testClientID, mock.Anything, mock.Anything).
		Return(&models.PredictionWindow{}, nil)

	summary, err := s.insights.Summary(context.Background(), testClientID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 0.0, summary.ModelAccuracy)
	// Zero prior periods report no change rather than dividing by zero.
	assert.Equal(s.T(), Comparison{}, summary.Comparison)
}

func (s *InsightsTestSuite) TestForecast() {
	currentMonth := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	from := currentMonth.AddDate(0, -2, 0)
	thru := currentMonth.AddDate(0, 3, 0)

	s.repository.On("GetMonthlyActuals", mock.Anything, testClientID, from.AddDate(0, 0, -1), testNow).
		Return([]*models.MonthCount{
			{Month: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Count: 10},
			{Month: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Count: 12},
		}, nil)
	s.repository.On("GetMonthlyPredictions", mock.Anything, testClientID, from.AddDate(0, 0, -1), thru).
		Return([]*models.MonthCount{
			{Month: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), Count: 11},
			{Month: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Count: 13},
			{Month: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Count: 15},
			{Month: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), Count: 9},
			{Month: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Count: 16},
		}, nil)

	points, err := s.insights.Forecast(context.Background(), testClientID)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), []ForecastPoint{
		{Month: "Jun 2026", Actual: 10, Predicted: 11, Lower: 11, Upper: 11},
		{Month: "Jul 2026", Actual: 12, Predicted: 13, Lower: 13, Upper: 13},
		{Month: "Aug 2026", Actual: 0, Predicted: 15, Lower: 7, Upper: 23},
		{Month: "Sep 2026", Actual: 0, Predicted: 9, Lower: 3, Upper: 15},
		{Month: "Oct 2026", Actual: 0, Predicted: 16, Lower: 8, Upper: 24},
	}, points)
}

func (s *InsightsTestSuite) TestSignalActivity() {
	s.repository.On("GetSignalCountsByType", mock.Anything, testClientID, testNow.AddDate(0, 0, -28), testNow).
		Return([]*models.SignalTypeCount{
			{SignalType: models.SignalTypeEligibility, Count: 120},
			{SignalType: models.SignalTypePriorAuth, Count: 48},
			{SignalType: models.SignalTypeReferral, Count: 63},
		}, nil)
	s.repository.On("GetSignalCountsByType", mock.Anything, testClientID, testNow.AddDate(0, 0, -56), testNow.AddDate(0, 0, -28)).
		Return([]*models.SignalTypeCount{
			{SignalType: models.SignalTypeEligibility, Count: 100},
			{SignalType: models.SignalTypePriorAuth, Count: 50},
		}, nil)
	s.repository.On("GetSignalTimeline", mock.Anything, testClientID, testNow.AddDate(0, 0, -56), testNow).
		Return([]*models.SignalWeekCount{
			{WeekStart: time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC), Eligibility: 45, PriorAuth: 12, Referral: 8},
			{WeekStart: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), Eligibility: 52, PriorAuth: 15, Referral: 9},
		}, nil)

	activity, err := s.insights.SignalActivity(context.Background(), testClientID)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), []SignalTypeActivity{
		{Type: "Eligibility Query", Count: 120, Change: 20},
		{Type: "Prior Auth", Count: 48, Change: -2},
		{Type: "Referrals", Count: 63, Change: 63},
	}, activity.ByType)
	assert.Equal(s.T(), []SignalWeek{
		{Week: "Week 1", Elig: 45, PA: 12, Referral: 8},
		{Week: "Week 2", Elig: 52, PA: 15, Referral: 9},
	}, activity.Timeline)
}

func (s *InsightsTestSuite) TestHighRiskMembers() {
	s.repository.On("GetHighRiskMembers", mock.Anything, testClientID, 25).
		Return([]*models.HighRiskMember{
			{
				MemberID:      "M-1001",
				DateOfBirth:   time.Date(1958, 3, 14, 0, 0, 0, 0, time.UTC),
				Gender:        "F",
				Probability:   0.91,
				PredictedDate: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
				RiskTier:      models.RiskTierVeryHigh,
				EpisodeID:     "EP-001",
				EstimatedCost: 38000,
				PlanID:        "PPO-GOLD",
				ProviderName:  "Dr. Ngo",
				ProviderNPI:   "1234567893",
				Diagnoses:     []string{"M17.11 - Right knee OA"},
			},
		}, nil)
	s.repository.On("GetMemberSignals", mock.Anything, testClientID, []string{"M-1001"}, testNow.AddDate(0, 0, -90)).
		Return([]*models.MemberSignal{
			{MemberID: "M-1001", SignalType: models.SignalTypePriorAuth,
				EventDate: time.Date(2026, 7, 25, 9, 30, 0, 0, time.UTC),
				Details:   "PA Approved - CPT 27447", Strength: 0.91},
			{MemberID: "M-1001", SignalType: models.SignalTypeEligibility,
				EventDate: time.Date(2026, 7, 20, 14, 0, 0, 0, time.UTC),
				Details:   "Eligibility Check - Orthopedic Surgery", Strength: 0.35},
		}, nil)

	members, err := s.insights.HighRiskMembers(context.Background(), testClientID)
	assert.NoError(s.T(), err)
	assert.Len(s.T(), members, 1)

	m := members[0]
	assert.Equal(s.T(), "M-1001", m.MemberID)
	assert.Equal(s.T(), 68, m.Age)
	assert.Equal(s.T(), "2026-10-15", m.PredictedDate)
	assert.Equal(s.T(), "Dr. Ngo (NPI: 1234567893)", m.Provider)
	assert.Equal(s.T(), 75, m.DaysUntilProcedure)
	assert.Equal(s.T(), []MemberSignalDetail{
		{Type: "pa", Date: "2026-07-25", Details: "PA Approved - CPT 27447", Strength: 0.91},
		{Type: "elig", Date: "2026-07-20", Details: "Eligibility Check - Orthopedic Surgery", Strength: 0.35},
	}, m.Signals)
	assert.Equal(s.T(), []string{"M17.11 - Right knee OA"}, m.Diagnosis)
}

func (s *InsightsTestSuite) TestHighRiskMembersEmpty() {
	s.repository.On("GetHighRiskMembers", mock.Anything, testClientID, 25).Return(nil, nil)

	members, err := s.insights.HighRiskMembers(context.Background(), testClientID)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), []HighRiskMemberDetail{}, members)
	s.repository.AssertNotCalled(s.T(), "GetMemberSignals", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *InsightsTestSuite) TestCostProjection() {
	currentQuarter := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	from := currentQuarter.AddDate(0, -3, 0)
	thru := currentQuarter.AddDate(0, 9, 0)

	s.repository.On("GetQuarterlyActualCosts", mock.Anything, testClientID, from.AddDate(0, 0, -1), testNow).
		Return([]*models.QuarterlyCost{
			{Quarter: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), Cost: 5800000},
		}, nil)
	s.repository.On("GetQuarterlyProjectedCosts", mock.Anything, testClientID, from.AddDate(0, 0, -1), thru).
		Return([]*models.QuarterlyCost{
			{Quarter: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), Cost: 1710000},
			{Quarter: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Cost: 3510000},
			{Quarter: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), Cost: 2420000},
		}, nil)

	points, err := s.insights.CostProjection(context.Background(), testClientID)
	assert.NoError(s.T(), err)

	assert.Equal(s.T(), []CostProjectionPoint{
		{Quarter: "Q2 2026", Actual: 5800000, Projected: 0},
		{Quarter: "Q3 2026", Actual: 0, Projected: 1710000},
		{Quarter: "Q4 2026", Actual: 0, Projected: 3510000},
		{Quarter: "Q1 2027", Actual: 0, Projected: 2420000},
	}, points)
}

func (s *InsightsTestSuite) TestRepositoryErrorsPropagate() {
	s.repository.On("GetEpisodeDefinitions", mock.Anything, testClientID).
		Return(nil, errors.New("connection refused"))

	_, err := s.insights.EpisodeDefinitions(context.Background(), testClientID)
	assert.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "failed to get episode definitions")
}
