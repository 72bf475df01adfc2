package indexer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/tfidf"
)

const bundleVersion = 1

// bundle is the persisted form of the index: ordered texts, id → metadata and
// the fitted model. An empty index has no model.
type bundle struct {
	Version  int                     `json:"version"`
	ModelID  string                  `json:"model_id,omitempty"`
	FittedAt *time.Time              `json:"fitted_at,omitempty"`
	Texts    []string                `json:"texts"`
	Metadata map[int]models.Metadata `json:"metadata"`
	Model    *tfidf.Model            `json:"model,omitempty"`
}

func encodeBundle(s *snapshot) ([]byte, error) {
	b := bundle{
		Version:  bundleVersion,
		ModelID:  s.modelID,
		Texts:    make([]string, len(s.texts)),
		Metadata: make(map[int]models.Metadata),
	}
	for i, t := range s.texts {
		b.Texts[i] = t.Text
		if len(t.Metadata) > 0 {
			b.Metadata[t.ID] = t.Metadata
		}
	}
	if s.vectorizer != nil {
		m, err := s.vectorizer.Model()
		if err != nil {
			return nil, err
		}
		b.Model = m
		fitted := s.fittedAt
		b.FittedAt = &fitted
	}
	return json.Marshal(&b)
}

// normalizeMetadata gives m the shape it has after a save and load: numbers
// become float64, nested maps map[string]any, slices []any.
func normalizeMetadata(m models.Metadata) (models.Metadata, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out models.Metadata
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeBundle(data []byte) (*bundle, error) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	if b.Version != bundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d", b.Version)
	}
	if len(b.Texts) > 0 && b.Model == nil {
		return nil, fmt.Errorf("bundle has %d texts but no model", len(b.Texts))
	}
	if len(b.Texts) == 0 && b.Model != nil {
		return nil, fmt.Errorf("bundle has a model but no texts")
	}
	for id := range b.Metadata {
		if id < 0 || id >= len(b.Texts) {
			return nil, fmt.Errorf("metadata for unknown id %d", id)
		}
	}
	return &b, nil
}
