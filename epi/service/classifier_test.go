package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/epihealth/epi-app/epi/constants"
	"github.com/epihealth/epi-app/epi/models"
	"github.com/epihealth/epi-app/log"
)

const testClientID = "acme-health"

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type ClassifierTestSuite struct {
	suite.Suite
	repository *models.MockRepository
	classifier *classifier
}

func (s *ClassifierTestSuite) SetupTest() {
	s.repository = &models.MockRepository{}
	s.classifier = &classifier{
		repository: s.repository,
		logger:     log.Classifier,
		scoring:    defaultScoring(),
		now:        func() time.Time { return testNow },
	}
}

func TestClassifierTestSuite(t *testing.T) {
	suite.Run(t, new(ClassifierTestSuite))
}

func (s *ClassifierTestSuite) TestClassifyNoCodes() {
	result, err := s.classifier.Classify(context.Background(), testClientID, &models.ClassificationRequest{})

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), result.EpisodeID)
	assert.Nil(s.T(), result.EpisodeName)
	assert.Equal(s.T(), 0, result.ConfidenceScore)
	assert.Equal(s.T(), []models.MatchedCode{}, result.MatchedCodes)
	assert.Equal(s.T(), []string{constants.ReasonNoCodes}, result.Reasoning)
	s.repository.AssertNotCalled(s.T(), "GetActiveCodeMappings", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClassifierTestSuite) TestClassifyNoMatches() {
	req := &models.ClassificationRequest{DiagnosisCodes: []string{"Z00.00"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID,
		[]models.CodeQuery{{Type: models.CodeTypeDiagnosis, Value: "Z00.00"}}, testNow).
		Return(nil, nil)

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), result.EpisodeID)
	assert.Equal(s.T(), 0, result.ConfidenceScore)
	assert.Equal(s.T(), []string{constants.ReasonNoMatches}, result.Reasoning)
	s.repository.AssertExpectations(s.T())
}

func (s *ClassifierTestSuite) TestClassifySinglePrimaryProcedure() {
	// strength 90, primary, CPT: 90 * 1.5 * 1.3 = 175.5
	// normalized 175.5 / sqrt(1), confidence round(min(100, 175.5/2)) = 88
	strength := 90.0
	req := &models.ClassificationRequest{ProcedureCodes: []string{"27447"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID, mock.Anything, testNow).
		Return([]*models.CodeMapping{
			{EpisodeID: "EP-001", EpisodeName: "Total Knee Replacement", CodeType: models.CodeTypeProcedure,
				CodeValue: "27447", IsPrimary: true, SignalStrength: &strength, ClientID: testClientID},
		}, nil)

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "EP-001", *result.EpisodeID)
	assert.Equal(s.T(), "Total Knee Replacement", *result.EpisodeName)
	assert.Equal(s.T(), 88, result.ConfidenceScore)
	assert.Equal(s.T(), []models.MatchedCode{
		{CodeType: models.CodeTypeProcedure, CodeValue: "27447", SignalStrength: &strength, IsPrimary: true},
	}, result.MatchedCodes)
	assert.Equal(s.T(), []string{
		"Matched 1 code(s) to Total Knee Replacement",
		"1 primary code match(es) found",
		"Procedure code(s): 27447",
	}, result.Reasoning)
}

func (s *ClassifierTestSuite) TestClassifyDefaultStrength() {
	// Missing strength defaults to 50; non-primary diagnosis gets no boost.
	// confidence = round(min(100, 50/2)) = 25
	req := &models.ClassificationRequest{DiagnosisCodes: []string{"M17.11"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID, mock.Anything, testNow).
		Return([]*models.CodeMapping{
			{EpisodeID: "EP-001", EpisodeName: "Total Knee Replacement", CodeType: models.CodeTypeDiagnosis,
				CodeValue: "M17.11", ClientID: testClientID},
		}, nil)

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 25, result.ConfidenceScore)
	assert.Nil(s.T(), result.MatchedCodes[0].SignalStrength)
	assert.Equal(s.T(), []string{
		"Matched 1 code(s) to Total Knee Replacement",
		"Diagnosis code(s): M17.11",
	}, result.Reasoning)
}

func (s *ClassifierTestSuite) TestClassifyTieBreak() {
	// One diagnosis code mapping identically to two episodes; the first
	// candidate in mapping order wins.
	strength := 40.0
	req := &models.ClassificationRequest{DiagnosisCodes: []string{"M17.0"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID, mock.Anything, testNow).
		Return([]*models.CodeMapping{
			{EpisodeID: "EP-001", EpisodeName: "Total Knee Replacement", CodeType: models.CodeTypeDiagnosis,
				CodeValue: "M17.0", SignalStrength: &strength, ClientID: testClientID},
			{EpisodeID: "EP-002", EpisodeName: "Total Hip Replacement", CodeType: models.CodeTypeDiagnosis,
				CodeValue: "M17.0", SignalStrength: &strength, ClientID: testClientID},
		}, nil)

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "EP-001", *result.EpisodeID)
	assert.Equal(s.T(), 20, result.ConfidenceScore)
}

func (s *ClassifierTestSuite) TestClassifyNormalizationPrefersStrongEvidence() {
	// Five weak matches total 100, normalized 100/sqrt(5) ~ 44.7; a single
	// strong match of 60 beats it.
	weak, strong := 20.0, 60.0
	weakMappings := make([]*models.CodeMapping, 5)
	for i, v := range []string{"R00.0", "R00.1", "R00.2", "R00.3", "R00.4"} {
		weakMappings[i] = &models.CodeMapping{EpisodeID: "EP-001", EpisodeName: "Cardiac Workup",
			CodeType: models.CodeTypeDiagnosis, CodeValue: v, SignalStrength: &weak, ClientID: testClientID}
	}
	mappings := append(weakMappings, &models.CodeMapping{EpisodeID: "EP-002", EpisodeName: "Total Hip Replacement",
		CodeType: models.CodeTypeDiagnosis, CodeValue: "M16.11", SignalStrength: &strong, ClientID: testClientID})

	req := &models.ClassificationRequest{DiagnosisCodes: []string{"R00.0", "R00.1", "R00.2", "R00.3", "R00.4", "M16.11"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID, mock.Anything, testNow).
		Return(mappings, nil)

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "EP-002", *result.EpisodeID)
	assert.Equal(s.T(), 30, result.ConfidenceScore)
}

func (s *ClassifierTestSuite) TestClassifyConfidenceCapped() {
	strength := 100.0
	req := &models.ClassificationRequest{ProcedureCodes: []string{"27447", "27446"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID, mock.Anything, testNow).
		Return([]*models.CodeMapping{
			{EpisodeID: "EP-001", EpisodeName: "Total Knee Replacement", CodeType: models.CodeTypeProcedure,
				CodeValue: "27447", IsPrimary: true, SignalStrength: &strength, ClientID: testClientID},
			{EpisodeID: "EP-001", EpisodeName: "Total Knee Replacement", CodeType: models.CodeTypeProcedure,
				CodeValue: "27446", IsPrimary: true, SignalStrength: &strength, ClientID: testClientID},
		}, nil)

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 100, result.ConfidenceScore)
	assert.Equal(s.T(), []string{
		"Matched 2 code(s) to Total Knee Replacement",
		"2 primary code match(es) found",
		"Procedure code(s): 27447, 27446",
	}, result.Reasoning)
}

func (s *ClassifierTestSuite) TestClassifyZeroScoreIsNoConfidentMatch() {
	strength := 0.0
	req := &models.ClassificationRequest{RevenueCodes: []string{"0360"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID, mock.Anything, testNow).
		Return([]*models.CodeMapping{
			{EpisodeID: "EP-001", EpisodeName: "Total Knee Replacement", CodeType: models.CodeTypeRevenue,
				CodeValue: "0360", SignalStrength: &strength, ClientID: testClientID},
		}, nil)

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	assert.Nil(s.T(), result.EpisodeID)
	assert.Equal(s.T(), []string{constants.ReasonNoConfidentMatch}, result.Reasoning)
}

func (s *ClassifierTestSuite) TestClassifyRepositoryError() {
	req := &models.ClassificationRequest{ProcedureCodes: []string{"27447"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID, mock.Anything, testNow).
		Return(nil, errors.New("connection refused"))

	result, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.Nil(s.T(), result)
	var lookupErr LookupError
	assert.True(s.T(), errors.As(err, &lookupErr))
	assert.Equal(s.T(), testClientID, lookupErr.ClientID)
	assert.Contains(s.T(), err.Error(), "failed to get code mappings")
}

func (s *ClassifierTestSuite) TestClassifyQueriesWithRequestTime() {
	// The lookup is bound to the classifier's clock so expiring mappings
	// age out consistently.
	req := &models.ClassificationRequest{NDCCodes: []string{"00002-7510"}}
	s.repository.On("GetActiveCodeMappings", mock.Anything, testClientID,
		[]models.CodeQuery{{Type: models.CodeTypeDrug, Value: "00002-7510"}}, testNow).
		Return(nil, nil)

	_, err := s.classifier.Classify(context.Background(), testClientID, req)

	assert.NoError(s.T(), err)
	s.repository.AssertExpectations(s.T())
}
