// Package tfidf fits term-frequency / inverse-document-frequency models over
// skill texts and turns texts into fixed-width vectors.
package tfidf

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hyperjump/skillmatch/internal/embedding"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

const (
	DefaultMaxFeatures = 300
	DefaultNgramMin    = 1
	DefaultNgramMax    = 2
)

var (
	// ErrNotFitted is returned by Transform before any successful fit.
	ErrNotFitted = errors.New("vectorizer is not fitted")
	// ErrEmptyCorpus is returned when fitting on zero texts.
	ErrEmptyCorpus = errors.New("cannot fit vectorizer on an empty corpus")
)

// Config controls vocabulary size and n-gram range.
type Config struct {
	MaxFeatures int `json:"max_features" yaml:"max_features"`
	NgramMin    int `json:"ngram_min" yaml:"ngram_min"`
	NgramMax    int `json:"ngram_max" yaml:"ngram_max"`
}

// DefaultConfig is 300 features over unigrams and bigrams.
func DefaultConfig() Config {
	return Config{MaxFeatures: DefaultMaxFeatures, NgramMin: DefaultNgramMin, NgramMax: DefaultNgramMax}
}

func (c Config) withDefaults() Config {
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = DefaultMaxFeatures
	}
	if c.NgramMin <= 0 {
		c.NgramMin = DefaultNgramMin
	}
	if c.NgramMax < c.NgramMin {
		c.NgramMax = c.NgramMin
	}
	return c
}

// Vectorizer is a TF-IDF model. The zero value is unusable; use New.
// A Vectorizer is not safe for concurrent Fit; Transform on a fitted model is
// read-only and may run concurrently.
type Vectorizer struct {
	config   Config
	analyzer embedding.Analyzer
	vocab    map[string]int
	terms    []string
	idf      []float64
	fitted   bool
}

// New returns an unfitted vectorizer.
func New(cfg Config) *Vectorizer {
	cfg = cfg.withDefaults()
	return &Vectorizer{
		config:   cfg,
		analyzer: embedding.NewAnalyzer(cfg.NgramMin, cfg.NgramMax),
	}
}

// Config returns the effective configuration.
func (v *Vectorizer) Config() Config { return v.config }

// Fitted reports whether a model is available.
func (v *Vectorizer) Fitted() bool { return v.fitted }

// Dimensions returns the vocabulary size (vector width). Zero before fit.
func (v *Vectorizer) Dimensions() int { return len(v.terms) }

// Vocabulary returns the terms in column order.
func (v *Vectorizer) Vocabulary() []string {
	return append([]string(nil), v.terms...)
}

// Fit learns vocabulary and idf weights from texts, replacing any prior model.
//
// When more than MaxFeatures distinct terms exist, the terms with the highest
// total count across the corpus are kept; equal counts are ordered by term.
// Kept terms get columns in lexicographic order.
func (v *Vectorizer) Fit(texts []string) error {
	if len(texts) == 0 {
		return ErrEmptyCorpus
	}

	total := make(map[string]int)
	docFreq := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range v.analyzer.Terms(text) {
			total[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	if len(terms) > v.config.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.config.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(texts))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v.vocab = vocab
	v.terms = terms
	v.idf = idf
	v.fitted = true
	return nil
}

// FitTransform fits on texts and returns their vectors.
func (v *Vectorizer) FitTransform(texts []string) ([][]float64, error) {
	if err := v.Fit(texts); err != nil {
		return nil, err
	}
	return v.Transform(texts)
}

// Transform returns one L2-normalized vector per text using the fitted
// vocabulary. Terms outside the vocabulary are ignored.
func (v *Vectorizer) Transform(texts []string) ([][]float64, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = v.vector(text)
	}
	return out, nil
}

// TransformOne is Transform for a single text.
func (v *Vectorizer) TransformOne(text string) ([]float64, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	return v.vector(text), nil
}

func (v *Vectorizer) vector(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, term := range v.analyzer.Terms(text) {
		if col, ok := v.vocab[term]; ok {
			vec[col]++
		}
	}
	for col := range vec {
		vec[col] *= v.idf[col]
	}
	utils.NormalizeL2(vec)
	return vec
}

// Model is the serializable state of a fitted vectorizer.
type Model struct {
	Config     Config    `json:"config"`
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
}

// Model exports the fitted state, or ErrNotFitted.
func (v *Vectorizer) Model() (*Model, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	return &Model{
		Config:     v.config,
		Vocabulary: append([]string(nil), v.terms...),
		IDF:        append([]float64(nil), v.idf...),
	}, nil
}

// FromModel rebuilds a fitted vectorizer from exported state.
func FromModel(m *Model) (*Vectorizer, error) {
	if m == nil {
		return nil, fmt.Errorf("nil model")
	}
	if len(m.Vocabulary) != len(m.IDF) {
		return nil, fmt.Errorf("model has %d terms but %d idf weights", len(m.Vocabulary), len(m.IDF))
	}
	v := New(m.Config)
	v.vocab = make(map[string]int, len(m.Vocabulary))
	for i, term := range m.Vocabulary {
		if _, dup := v.vocab[term]; dup {
			return nil, fmt.Errorf("model vocabulary has duplicate term %q", term)
		}
		if m.IDF[i] <= 0 || math.IsNaN(m.IDF[i]) || math.IsInf(m.IDF[i], 0) {
			return nil, fmt.Errorf("model idf for %q is invalid: %v", term, m.IDF[i])
		}
		v.vocab[term] = i
	}
	v.terms = append([]string(nil), m.Vocabulary...)
	v.idf = append([]float64(nil), m.IDF...)
	v.fitted = true
	return v, nil
}
