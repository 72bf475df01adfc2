package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperjump/skillmatch/internal/models"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"machine learning", "-k", "3"},
			expected: []string{"-k", "3", "machine learning"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-k", "3", "machine learning"},
			expected: []string{"-k", "3", "machine learning"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"machine learning"},
			expected: []string{"machine learning"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"data", "analysis", "-output", "json"},
			expected: []string{"-output", "json", "data", "analysis"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"python"}, "python"},
		{"multiple words", []string{"machine", "learning"}, "machine learning"},
		{"single quoted phrase", []string{"machine learning"}, "machine learning"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  index_dir: "./store"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
analysis:
  match_threshold: 0.6
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Analysis.MatchThreshold != 0.6 {
		t.Errorf("match_threshold = %v, want 0.6", cfg.Analysis.MatchThreshold)
	}
}

func TestLoadConfig_explicitMissingPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestParseSkills(t *testing.T) {
	t.Run("submission event merges user id", func(t *testing.T) {
		records, err := parseSkills([]byte(`{"user_id": 7, "skills": [{"skill_name": "Python", "years_of_experience": 3}]}`))
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 1 || records[0].SkillName != "Python" {
			t.Fatalf("unexpected records: %+v", records)
		}
		if records[0].Metadata["user_id"] != float64(7) {
			t.Errorf("user_id metadata = %v", records[0].Metadata["user_id"])
		}
	})
	t.Run("bare array", func(t *testing.T) {
		records, err := parseSkills([]byte(`  [{"skill_name": "SQL"}, {"skill_name": "Go", "proficiency_level": "expert"}]`))
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 || records[1].ProficiencyLevel != models.ProficiencyExpert {
			t.Fatalf("unexpected records: %+v", records)
		}
	})
	t.Run("invalid records", func(t *testing.T) {
		inputs := []string{
			`[{"skill_name": ""}]`,
			`[{"skill_name": "Go", "proficiency_level": "guru"}]`,
			`{"skills": []}`,
			`not json`,
		}
		for _, in := range inputs {
			if _, err := parseSkills([]byte(in)); err == nil {
				t.Errorf("parseSkills(%q) expected error", in)
			}
		}
	})
}

func TestReadCompareFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "compare.json")
	content := `{"employee_skills": [{"skill_name": "Python"}], "required_skills": ["Python", "Docker"]}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	req, err := readCompareFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(req.EmployeeSkills) != 1 || !reflect.DeepEqual(req.RequiredSkills, []string{"Python", "Docker"}) {
		t.Errorf("unexpected request: %+v", req)
	}
	if _, err := readCompareFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSearchViaHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/skills/search" {
			http.NotFound(w, r)
			return
		}
		var req models.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(models.SearchResponse{
			Query: req.Query,
			Hits:  []*models.SearchHit{{ID: 0, Text: "Python", Score: 1, Rank: 1}},
			Total: req.K,
		})
	}))
	defer ts.Close()

	resp, err := searchViaHTTP(ts.URL+"/", "python", 4)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Query != "python" || resp.Total != 4 || len(resp.Hits) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestDoJSON_unexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"insufficient data"}`))
	}))
	defer ts.Close()

	_, err := compareViaHTTP(ts.URL, &models.CompareRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	want := `server returned 422: {"error":"insufficient data"}`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestStatusViaHTTP(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"engine": {"index": {"size": 3, "vocabulary_size": 12, "key": "skills_index"}, "backend": "disk", "match_threshold": 0.5}, "inbox_directories": []}`))
	}))
	defer ts.Close()

	st, err := statusViaHTTP(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if st.Index.Size != 3 || st.Index.VocabularySize != 12 || st.Backend != "disk" || st.MatchThreshold != 0.5 {
		t.Errorf("unexpected status: %+v", st)
	}
}

func TestInboxRemoveViaHTTP_escapesPath(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("path")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	if err := inboxRemoveViaHTTP(ts.URL, "/tmp/my inbox&x"); err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/my inbox&x" {
		t.Errorf("path = %q", got)
	}
}
