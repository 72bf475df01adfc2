// Package indexer maintains the persisted skill index: an append-only corpus of
// normalized skill texts with metadata and a TF-IDF model refit over the whole
// corpus on every addition.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/skillmatch/internal/embedding"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/storage"
	"github.com/hyperjump/skillmatch/internal/tfidf"
	"github.com/hyperjump/skillmatch/internal/vector"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

// DefaultKey is the storage key of the index bundle.
const DefaultKey = "skills_index"

// Indexer is the skill index. Add and Clear are exclusive; Search, Size,
// Texts and Stats may run concurrently with each other.
type Indexer struct {
	store     storage.BlobStore
	key       string
	vecConfig tfidf.Config
	cache     *embedding.Cache
	logger    *zap.Logger

	mu  sync.RWMutex
	cur *snapshot
}

// snapshot is one consistent state of the index. vectorizer and index are
// nil until the first fit.
type snapshot struct {
	texts      []models.IndexedSkillText
	vectorizer *tfidf.Vectorizer
	index      *vector.MemoryIndex
	modelID    string
	fittedAt   time.Time
}

// Stats describes the index for status output.
type Stats struct {
	Size           int       `json:"size"`
	VocabularySize int       `json:"vocabulary_size"`
	ModelID        string    `json:"model_id,omitempty"`
	FittedAt       time.Time `json:"fitted_at"`
	Key            string    `json:"key"`
	Location       string    `json:"location"`
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for index lifecycle events.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithKey sets the storage key of the bundle.
func WithKey(key string) IndexerOption {
	return func(idx *Indexer) {
		if key != "" {
			idx.key = key
		}
	}
}

// WithVectorizerConfig sets the model parameters used on refit.
func WithVectorizerConfig(cfg tfidf.Config) IndexerOption {
	return func(idx *Indexer) { idx.vecConfig = cfg }
}

// WithCacheSize sets the number of query vectors cached per model; 0 disables the cache.
func WithCacheSize(n int) IndexerOption {
	return func(idx *Indexer) { idx.cache = embedding.NewCache(n) }
}

// New returns an empty index backed by store. Call Load to restore persisted state.
func New(store storage.BlobStore, opts ...IndexerOption) *Indexer {
	idx := &Indexer{
		store:     store,
		key:       DefaultKey,
		vecConfig: tfidf.DefaultConfig(),
		cache:     embedding.NewCache(1000),
		cur:       &snapshot{},
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = utils.OrNop(idx.logger)
	return idx
}

// Load restores the persisted bundle. A missing bundle leaves the index empty;
// an unreadable or corrupt one returns a *PersistenceError.
func (idx *Indexer) Load(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	data, err := idx.store.Load(ctx, idx.key)
	if errors.Is(err, storage.ErrNotFound) {
		idx.commit(&snapshot{})
		idx.logger.Info("skill index not found, starting empty", zap.String("key", idx.key))
		return nil
	}
	if err != nil {
		return &PersistenceError{Op: "load", Key: idx.key, Err: err}
	}

	s, err := restore(ctx, data)
	if err != nil {
		return &PersistenceError{Op: "decode", Key: idx.key, Err: err}
	}
	idx.commit(s)
	idx.logger.Info("skill index loaded",
		zap.String("key", idx.key),
		zap.Int("size", len(s.texts)),
		zap.String("model_id", s.modelID))
	return nil
}

func restore(ctx context.Context, data []byte) (*snapshot, error) {
	b, err := decodeBundle(data)
	if err != nil {
		return nil, err
	}
	s := &snapshot{modelID: b.ModelID, texts: make([]models.IndexedSkillText, len(b.Texts))}
	for i, text := range b.Texts {
		s.texts[i] = models.IndexedSkillText{ID: i, Text: text, Metadata: b.Metadata[i]}
	}
	if b.Model == nil {
		return s, nil
	}
	if b.FittedAt != nil {
		s.fittedAt = *b.FittedAt
	}
	if s.vectorizer, err = tfidf.FromModel(b.Model); err != nil {
		return nil, err
	}
	vectors, err := s.vectorizer.Transform(b.Texts)
	if err != nil {
		return nil, err
	}
	if s.index, err = buildIndex(ctx, s.vectorizer.Dimensions(), vectors); err != nil {
		return nil, err
	}
	return s, nil
}

func buildIndex(ctx context.Context, dims int, vectors [][]float64) (*vector.MemoryIndex, error) {
	mem, err := vector.NewMemoryIndex(dims)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(vectors))
	for i := range ids {
		ids[i] = i
	}
	if err := mem.Add(ctx, ids, vectors); err != nil {
		return nil, err
	}
	return mem, nil
}

// Add normalizes records, appends them with sequential ids, refits the model
// over the whole corpus and persists the result. It returns the assigned ids.
// Metadata is stored in its JSON form, so an int value reads back as float64
// both before and after a reload.
// Nothing changes in memory unless the bundle was saved. Empty input is a no-op.
func (idx *Indexer) Add(ctx context.Context, records []models.SkillRecord) ([]int, error) {
	if len(records) == 0 {
		return nil, nil
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	start := len(idx.cur.texts)
	texts := make([]models.IndexedSkillText, start, start+len(records))
	copy(texts, idx.cur.texts)
	ids := make([]int, len(records))
	for i, r := range records {
		meta, err := normalizeMetadata(r.Metadata)
		if err != nil {
			return nil, fmt.Errorf("skills[%d]: metadata is not JSON-serializable: %w", i, err)
		}
		ids[i] = start + i
		texts = append(texts, models.IndexedSkillText{
			ID:       start + i,
			Text:     embedding.SkillText(r),
			Metadata: meta,
		})
	}

	corpus := make([]string, len(texts))
	for i, t := range texts {
		corpus[i] = t.Text
	}
	vec := tfidf.New(idx.vecConfig)
	vectors, err := vec.FitTransform(corpus)
	if err != nil {
		return nil, fmt.Errorf("failed to refit skill index: %w", err)
	}
	mem, err := buildIndex(ctx, vec.Dimensions(), vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to build vector index: %w", err)
	}

	next := &snapshot{
		texts:      texts,
		vectorizer: vec,
		index:      mem,
		modelID:    uuid.NewString(),
		fittedAt:   time.Now().UTC(),
	}
	if err := idx.persist(ctx, next); err != nil {
		return nil, err
	}
	idx.commit(next)
	idx.logger.Info("skills added to index",
		zap.Int("added", len(records)),
		zap.Int("size", len(texts)),
		zap.Int("vocabulary", vec.Dimensions()),
		zap.String("model_id", next.modelID))
	return ids, nil
}

// Search returns up to k entries closest to query under the current model.
// An index that was never fit, or k <= 0, yields no hits.
func (idx *Indexer) Search(ctx context.Context, query string, k int) ([]*models.SearchHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	s := idx.cur
	if s.vectorizer == nil || k <= 0 {
		return []*models.SearchHit{}, nil
	}
	qv, ok := idx.cache.Get(query)
	if !ok {
		var err error
		if qv, err = s.vectorizer.TransformOne(query); err != nil {
			return nil, err
		}
		idx.cache.Set(query, qv)
	}
	results, err := s.index.Search(ctx, qv, k)
	if err != nil {
		return nil, err
	}
	hits := make([]*models.SearchHit, len(results))
	for i, r := range results {
		t := s.texts[r.ID]
		hits[i] = &models.SearchHit{
			ID:       t.ID,
			Text:     t.Text,
			Metadata: t.Metadata.Clone(),
			Score:    r.Score,
			Rank:     i + 1,
		}
	}
	idx.logger.Debug("skill index searched", zap.String("query", query), zap.Int("hits", len(hits)))
	return hits, nil
}

// Clear drops every text, all metadata and the model, then persists the empty index.
func (idx *Indexer) Clear(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	next := &snapshot{}
	if err := idx.persist(ctx, next); err != nil {
		return err
	}
	prior := len(idx.cur.texts)
	idx.commit(next)
	idx.logger.Info("skill index cleared", zap.Int("removed", prior))
	return nil
}

// Size returns the number of indexed texts.
func (idx *Indexer) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.cur.texts)
}

// Texts returns a copy of the corpus in id order.
func (idx *Indexer) Texts() []models.IndexedSkillText {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]models.IndexedSkillText, len(idx.cur.texts))
	for i, t := range idx.cur.texts {
		t.Metadata = t.Metadata.Clone()
		out[i] = t
	}
	return out
}

// Stats returns the index size and current model identity.
func (idx *Indexer) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	st := Stats{
		Size:     len(idx.cur.texts),
		ModelID:  idx.cur.modelID,
		FittedAt: idx.cur.fittedAt,
		Key:      idx.key,
		Location: idx.store.Location(),
	}
	if idx.cur.vectorizer != nil {
		st.VocabularySize = idx.cur.vectorizer.Dimensions()
	}
	return st
}

func (idx *Indexer) persist(ctx context.Context, s *snapshot) error {
	data, err := encodeBundle(s)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: idx.key, Err: err}
	}
	if err := idx.store.Save(ctx, idx.key, data); err != nil {
		return &PersistenceError{Op: "save", Key: idx.key, Err: err}
	}
	return nil
}

// commit swaps in s and drops query vectors of the previous model. Caller holds mu.
func (idx *Indexer) commit(s *snapshot) {
	idx.cur = s
	idx.cache.Purge()
}
