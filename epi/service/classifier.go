package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/epihealth/epi-app/epi/constants"
	"github.com/epihealth/epi-app/epi/models"
	"github.com/epihealth/epi-app/log"
)

// Ensure classifier satisfies the interface
var _ Classifier = &classifier{}

// Classifier scores submitted billing codes against the active code mappings
// and selects the best-evidenced episode of care.
type Classifier interface {
	Classify(ctx context.Context, clientID string, req *models.ClassificationRequest) (*models.ClassificationResult, error)
}

func NewClassifier(r models.Repository, cfg *Config) Classifier {
	return &classifier{
		repository: r,
		logger:     log.Classifier,
		scoring:    cfg.Scoring,
		now:        time.Now,
	}
}

type classifier struct {
	repository models.Repository
	logger     logrus.FieldLogger
	scoring    ScoringConfig

	// Injected for tests that exercise mapping expiration.
	now func() time.Time
}

// candidate accumulates scoring state for a single episode.
type candidate struct {
	episodeID      string
	episodeName    string
	score          float64
	primaryMatches int
	totalMatches   int
	matchedCodes   []models.MatchedCode
}

func (c *classifier) Classify(ctx context.Context, clientID string, req *models.ClassificationRequest) (*models.ClassificationResult, error) {
	codes := req.Codes()
	if len(codes) == 0 {
		return terminalResult(constants.ReasonNoCodes), nil
	}

	mappings, err := c.repository.GetActiveCodeMappings(ctx, clientID, codes, c.now())
	if err != nil {
		return nil, LookupError{ClientID: clientID, Err: err}
	}
	if len(mappings) == 0 {
		return terminalResult(constants.ReasonNoMatches), nil
	}

	candidates := make(map[string]*candidate)
	var order []string
	for _, m := range mappings {
		cand, ok := candidates[m.EpisodeID]
		if !ok {
			cand = &candidate{episodeID: m.EpisodeID, episodeName: m.EpisodeName}
			candidates[m.EpisodeID] = cand
			order = append(order, m.EpisodeID)
		}

		contribution := c.scoring.DefaultSignalStrength
		if m.SignalStrength != nil {
			contribution = *m.SignalStrength
		}
		if m.IsPrimary {
			contribution *= c.scoring.PrimaryMultiplier
			cand.primaryMatches++
		}
		if m.CodeType == models.CodeTypeProcedure {
			contribution *= c.scoring.ProcedureMultiplier
		}

		cand.score += contribution
		cand.totalMatches++
		cand.matchedCodes = append(cand.matchedCodes, models.MatchedCode{
			CodeType:       m.CodeType,
			CodeValue:      m.CodeValue,
			SignalStrength: m.SignalStrength,
			IsPrimary:      m.IsPrimary,
		})
	}

	// Normalization dampens episodes that pile up many weak matches. Ties
	// resolve to the earlier candidate in mapping order; the repository
	// returns rows sorted by episode id, so this is deterministic.
	var best *candidate
	var bestScore float64
	for _, id := range order {
		cand := candidates[id]
		normalized := cand.score / math.Sqrt(float64(cand.totalMatches))
		if normalized > bestScore {
			bestScore = normalized
			best = cand
		}
	}

	if best == nil {
		return terminalResult(constants.ReasonNoConfidentMatch), nil
	}

	confidence := int(math.Round(math.Min(100, bestScore/c.scoring.ConfidenceDivisor)))

	c.logger.WithFields(logrus.Fields{
		"client_id":  clientID,
		"episode_id": best.episodeID,
		"confidence": confidence,
		"matches":    best.totalMatches,
	}).Info("classified episode")

	return &models.ClassificationResult{
		EpisodeID:       &best.episodeID,
		EpisodeName:     &best.episodeName,
		ConfidenceScore: confidence,
		MatchedCodes:    best.matchedCodes,
		Reasoning:       buildReasoning(best),
	}, nil
}

func buildReasoning(best *candidate) []string {
	reasoning := []string{fmt.Sprintf("Matched %d code(s) to %s", best.totalMatches, best.episodeName)}
	if best.primaryMatches > 0 {
		reasoning = append(reasoning, fmt.Sprintf("%d primary code match(es) found", best.primaryMatches))
	}
	if procs := codeValues(best.matchedCodes, models.CodeTypeProcedure); len(procs) > 0 {
		reasoning = append(reasoning, "Procedure code(s): "+strings.Join(procs, ", "))
	}
	if diags := codeValues(best.matchedCodes, models.CodeTypeDiagnosis); len(diags) > 0 {
		reasoning = append(reasoning, "Diagnosis code(s): "+strings.Join(diags, ", "))
	}
	return reasoning
}

func codeValues(codes []models.MatchedCode, t models.CodeType) []string {
	var vals []string
	for _, code := range codes {
		if code.CodeType == t {
			vals = append(vals, code.CodeValue)
		}
	}
	return vals
}

// terminalResult is the no-match response shape: null episode, zero
// confidence, empty (not null) matched codes.
func terminalResult(reason string) *models.ClassificationResult {
	return &models.ClassificationResult{
		ConfidenceScore: 0,
		MatchedCodes:    []models.MatchedCode{},
		Reasoning:       []string{reason},
	}
}
