package matching

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/gap"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Storage.IndexDir = t.TempDir()
	config.ApplyDefaults(cfg)
	return cfg
}

func newEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	store, err := storage.New(context.Background(), cfg.Storage)
	require.NoError(t, err)
	e := New(store, cfg, nil)
	require.NoError(t, e.Load(context.Background()))
	return e
}

func TestEngine_AddSearchReload(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	e := newEngine(t, cfg)

	_, err := e.AddSkills(ctx, []models.SkillRecord{{SkillName: "Python", ProficiencyLevel: "advanced", YearsOfExperience: 3}})
	require.NoError(t, err)
	_, err = e.AddSkills(ctx, []models.SkillRecord{{SkillName: "SQL", ProficiencyLevel: "beginner", YearsOfExperience: 1}})
	require.NoError(t, err)

	resp, err := e.Search(ctx, "python advanced", 0)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Hits)
	assert.Equal(t, 0, resp.Hits[0].ID)
	assert.Equal(t, resp.Total, len(resp.Hits))
	require.NoError(t, e.Close())

	assert.FileExists(t, filepath.Join(cfg.Storage.IndexDir, "skills_index.json"))

	reopened := newEngine(t, cfg)
	defer reopened.Close()
	again, err := reopened.Search(ctx, "python advanced", 0)
	require.NoError(t, err)
	assert.Equal(t, resp.Hits, again.Hits)
}

func TestEngine_SearchKBounds(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Search.DefaultK = 2
	cfg.Search.MaxK = 3
	e := newEngine(t, cfg)
	defer e.Close()

	var records []models.SkillRecord
	for _, name := range []string{"Go", "Rust", "Java", "Python", "SQL"} {
		records = append(records, models.SkillRecord{SkillName: name, YearsOfExperience: 1})
	}
	_, err := e.AddSkills(ctx, records)
	require.NoError(t, err)

	resp, err := e.Search(ctx, "go", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Hits, 2)

	resp, err = e.Search(ctx, "go", 50)
	require.NoError(t, err)
	assert.Len(t, resp.Hits, 3)
}

func TestEngine_CompareSkillSets(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, testConfig(t))
	defer e.Close()

	got, err := e.CompareSkillSets(ctx, []models.SkillRecord{{SkillName: "Java"}}, []string{"Python", "Java", "SQL"})
	require.NoError(t, err)
	assert.Equal(t, 66.67, got.GapPercentage)
	assert.Equal(t, 0, e.index.Size(), "comparison must not touch the index")

	_, err = e.CompareSkillSets(ctx, nil, nil)
	assert.ErrorIs(t, err, gap.ErrInsufficientData)
}

func TestEngine_ClearAndStatus(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	e := newEngine(t, cfg)
	defer e.Close()

	_, err := e.AddSkills(ctx, []models.SkillRecord{{SkillName: "Go", YearsOfExperience: 2}})
	require.NoError(t, err)

	st, err := e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Index.Size)
	assert.NotEmpty(t, st.Index.ModelID)
	assert.Equal(t, config.BackendDisk, st.Backend)
	assert.Greater(t, st.DiskUsageBytes, int64(0))
	assert.Equal(t, 0.5, st.MatchThreshold)

	require.NoError(t, e.ClearIndex(ctx))
	st, err = e.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index.Size)
	assert.Empty(t, st.Index.ModelID)
}

func TestEngine_ReadOnlyCloseKeepsOtherWriters(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	writer := newEngine(t, cfg)
	defer writer.Close()
	_, err := writer.AddSkills(ctx, []models.SkillRecord{{SkillName: "Python", YearsOfExperience: 3}})
	require.NoError(t, err)

	reader := newEngine(t, cfg)
	_, err = writer.AddSkills(ctx, []models.SkillRecord{{SkillName: "Go", YearsOfExperience: 1}})
	require.NoError(t, err)

	resp, err := reader.Search(ctx, "python", 1)
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)
	_, err = reader.Status(ctx)
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	reopened := newEngine(t, cfg)
	defer reopened.Close()
	assert.Equal(t, 2, reopened.index.Size())
}

func TestNewAnalyzer_UsesConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.MatchThreshold = 0.9
	a := NewAnalyzer(cfg, nil)
	assert.Equal(t, 0.9, a.Threshold())

	got, err := a.Compare([]models.SkillRecord{{SkillName: "Java"}}, []string{"java", "SQL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"java"}, got.MatchedSkills)
	assert.Equal(t, 50.0, got.GapPercentage)
	assert.NoFileExists(t, filepath.Join(cfg.Storage.IndexDir, "skills_index.json"))
}
