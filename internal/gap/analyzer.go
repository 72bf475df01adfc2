// Package gap compares an employee's skills against a role's required skills.
package gap

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/skillmatch/internal/embedding"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/tfidf"
	"github.com/hyperjump/skillmatch/internal/vector"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

// DefaultThreshold is the similarity a required skill must exceed to count as matched.
const DefaultThreshold = 0.5

// ErrInsufficientData is returned when there is nothing to compare.
var ErrInsufficientData = errors.New("insufficient data for gap analysis")

// Analyzer classifies required skills as matched or missing. It holds no
// model between calls and is safe for concurrent use.
type Analyzer struct {
	threshold float64
	vecConfig tfidf.Config
	logger    *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithThreshold sets the match threshold.
func WithThreshold(t float64) Option {
	return func(a *Analyzer) { a.threshold = t }
}

// WithVectorizerConfig sets the parameters of the per-call model.
func WithVectorizerConfig(cfg tfidf.Config) Option {
	return func(a *Analyzer) { a.vecConfig = cfg }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer returns an analyzer with the default threshold and vectorizer config.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{threshold: DefaultThreshold, vecConfig: tfidf.DefaultConfig()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = utils.OrNop(a.logger)
	return a
}

// Threshold returns the match threshold.
func (a *Analyzer) Threshold() float64 { return a.threshold }

// Compare finds the best employee skill for every required skill.
//
// Employee skills are normalized with embedding.SkillText; required skills are
// used as given. Both sets share one model fit over employee texts followed by
// required texts. A required skill whose name equals an employee skill name
// (ignoring case and surrounding space) scores 1 against it. A score above the
// threshold is a match.
//
// No employee skills against a non-empty requirement list is a 100% gap.
// Every other empty input returns ErrInsufficientData.
func (a *Analyzer) Compare(employee []models.SkillRecord, required []string) (*models.GapResult, error) {
	if len(employee) == 0 {
		if len(required) == 0 {
			return nil, fmt.Errorf("%w: no employee or required skills", ErrInsufficientData)
		}
		return &models.GapResult{
			MatchedSkills:    []string{},
			MissingSkills:    append([]string(nil), required...),
			GapPercentage:    100,
			SimilarityScores: map[string]models.SkillMatch{},
		}, nil
	}
	if len(required) == 0 {
		return nil, fmt.Errorf("%w: no required skills", ErrInsufficientData)
	}

	corpus := append(embedding.SkillTexts(employee), required...)
	vec := tfidf.New(a.vecConfig)
	vectors, err := vec.FitTransform(corpus)
	if err != nil {
		return nil, fmt.Errorf("failed to fit comparison model: %w", err)
	}
	empVecs, reqVecs := vectors[:len(employee)], vectors[len(employee):]

	result := &models.GapResult{
		MatchedSkills:    []string{},
		MissingSkills:    []string{},
		SimilarityScores: make(map[string]models.SkillMatch, len(required)),
	}
	for i, req := range required {
		best, _ := vector.BestMatch(reqVecs[i], empVecs)
		if j := sameName(employee, req); j >= 0 && (best.Score < 1 || j < best.Index) {
			best = vector.Scored{Index: j, Score: 1}
		}
		result.SimilarityScores[req] = models.SkillMatch{
			MatchedSkill: employee[best.Index].SkillName,
			Similarity:   best.Score,
		}
		if best.Score > a.threshold {
			result.MatchedSkills = append(result.MatchedSkills, req)
		} else {
			result.MissingSkills = append(result.MissingSkills, req)
		}
	}
	result.GapPercentage = utils.Round(100*float64(len(result.MissingSkills))/float64(len(required)), 2)

	a.logger.Debug("gap analysis",
		zap.Int("employee_skills", len(employee)),
		zap.Int("required_skills", len(required)),
		zap.Int("vocabulary", vec.Dimensions()),
		zap.Float64("gap_percentage", result.GapPercentage))
	return result, nil
}

func sameName(employee []models.SkillRecord, name string) int {
	for i, e := range employee {
		if embedding.SameSkill(e.SkillName, name) {
			return i
		}
	}
	return -1
}
