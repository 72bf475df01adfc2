// Package matching wires the skill index and the gap analyzer into the single
// service object used by the HTTP server, the queue consumer, the inbox
// watcher and the CLI.
package matching

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/gap"
	"github.com/hyperjump/skillmatch/internal/indexer"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/storage"
	"github.com/hyperjump/skillmatch/internal/tfidf"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

// Engine is the skill matching service. Construct it once with New, then Load.
type Engine struct {
	store    storage.BlobStore
	index    *indexer.Indexer
	analyzer *gap.Analyzer
	search   config.SearchConfig
	backend  string
	logger   *zap.Logger
	started  time.Time
}

// Status describes the engine for the status endpoint and CLI.
type Status struct {
	Index          indexer.Stats `json:"index"`
	Backend        string        `json:"backend"`
	DiskUsageBytes int64         `json:"disk_usage_bytes,omitempty"`
	MatchThreshold float64       `json:"match_threshold"`
	DefaultK       int           `json:"default_k"`
	MaxK           int           `json:"max_k"`
	Uptime         string        `json:"uptime"`
}

func vectorizerConfig(cfg *config.Config) tfidf.Config {
	return tfidf.Config{
		MaxFeatures: cfg.Vectorizer.MaxFeatures,
		NgramMin:    cfg.Vectorizer.NgramMin,
		NgramMax:    cfg.Vectorizer.NgramMax,
	}
}

// NewAnalyzer builds the gap analyzer configured by cfg. Gap analysis needs no
// index, so callers that only compare skill sets can skip storage entirely.
func NewAnalyzer(cfg *config.Config, logger *zap.Logger) *gap.Analyzer {
	return gap.NewAnalyzer(
		gap.WithThreshold(cfg.Analysis.MatchThreshold),
		gap.WithVectorizerConfig(vectorizerConfig(cfg)),
		gap.WithLogger(logger),
	)
}

// New builds an engine over store from cfg. The engine owns store and closes it in Close.
func New(store storage.BlobStore, cfg *config.Config, logger *zap.Logger) *Engine {
	logger = utils.OrNop(logger)
	vecCfg := vectorizerConfig(cfg)
	return &Engine{
		store: store,
		index: indexer.New(store,
			indexer.WithKey(cfg.Storage.IndexKey),
			indexer.WithVectorizerConfig(vecCfg),
			indexer.WithCacheSize(cfg.Vectorizer.CacheSize),
			indexer.WithLogger(logger),
		),
		analyzer: NewAnalyzer(cfg, logger),
		search:  cfg.Search,
		backend: cfg.Storage.Backend,
		logger:  logger,
		started: time.Now(),
	}
}

// Load restores the persisted index.
func (e *Engine) Load(ctx context.Context) error {
	return e.index.Load(ctx)
}

// AddSkills appends records to the index and returns their ids.
func (e *Engine) AddSkills(ctx context.Context, records []models.SkillRecord) ([]int, error) {
	return e.index.Add(ctx, records)
}

// Search returns the indexed skills closest to text. k <= 0 uses the configured
// default; k is capped at the configured maximum.
func (e *Engine) Search(ctx context.Context, text string, k int) (*models.SearchResponse, error) {
	start := time.Now()
	k = e.clampK(k)
	hits, err := e.index.Search(ctx, text, k)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{
		Query:     text,
		Hits:      hits,
		Total:     len(hits),
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}

func (e *Engine) clampK(k int) int {
	if k <= 0 {
		k = e.search.DefaultK
	}
	if e.search.MaxK > 0 && k > e.search.MaxK {
		k = e.search.MaxK
	}
	return k
}

// ClearIndex empties the index.
func (e *Engine) ClearIndex(ctx context.Context) error {
	return e.index.Clear(ctx)
}

// CompareSkillSets runs a gap analysis. It does not touch the index.
func (e *Engine) CompareSkillSets(_ context.Context, employee []models.SkillRecord, required []string) (*models.GapResult, error) {
	return e.analyzer.Compare(employee, required)
}

// Status reports index statistics and configuration.
func (e *Engine) Status(_ context.Context) (*Status, error) {
	st := &Status{
		Index:          e.index.Stats(),
		Backend:        e.backend,
		MatchThreshold: e.analyzer.Threshold(),
		DefaultK:       e.search.DefaultK,
		MaxK:           e.search.MaxK,
		Uptime:         time.Since(e.started).Round(time.Second).String(),
	}
	if e.backend != config.BackendS3 {
		n, err := storage.DiskUsageBytes(st.Index.Location)
		if err != nil {
			return nil, err
		}
		st.DiskUsageBytes = n
	}
	return st, nil
}

// Close closes the store. The index is already persisted by every Add and
// ClearIndex, so nothing is written here.
func (e *Engine) Close() error {
	e.logger.Debug("closing skill engine", zap.String("location", e.store.Location()))
	return e.store.Close()
}
