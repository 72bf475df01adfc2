package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hyperjump/skillmatch/internal/matching"
	"github.com/hyperjump/skillmatch/internal/models"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// doJSON sends body (if non-nil) as JSON and decodes the response into out
// (if non-nil). Any status other than want is an error carrying the body.
func doJSON(method, endpoint string, body, out interface{}, want int) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiURL(serverURL, path string) string {
	return strings.TrimRight(serverURL, "/") + "/api/v1" + path
}

func addViaHTTP(serverURL string, records []models.SkillRecord) ([]int, error) {
	var out struct {
		IDs []int `json:"ids"`
	}
	req := models.AddSkillsRequest{Skills: records}
	if err := doJSON(http.MethodPost, apiURL(serverURL, "/skills"), req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

func searchViaHTTP(serverURL, query string, k int) (*models.SearchResponse, error) {
	var response models.SearchResponse
	req := models.SearchRequest{Query: query, K: k}
	if err := doJSON(http.MethodPost, apiURL(serverURL, "/skills/search"), req, &response, http.StatusOK); err != nil {
		return nil, err
	}
	return &response, nil
}

func compareViaHTTP(serverURL string, req *models.CompareRequest) (*models.GapResult, error) {
	var result models.GapResult
	if err := doJSON(http.MethodPost, apiURL(serverURL, "/gap-analysis"), req, &result, http.StatusOK); err != nil {
		return nil, err
	}
	return &result, nil
}

func clearViaHTTP(serverURL string) error {
	return doJSON(http.MethodDelete, apiURL(serverURL, "/skills"), nil, nil, http.StatusOK)
}

func statusViaHTTP(serverURL string) (*matching.Status, error) {
	var out struct {
		Engine matching.Status `json:"engine"`
	}
	if err := doJSON(http.MethodGet, apiURL(serverURL, "/status"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Engine, nil
}

func inboxAddViaHTTP(serverURL, path string) error {
	req := map[string]string{"path": path}
	return doJSON(http.MethodPost, apiURL(serverURL, "/inbox/directories"), req, nil, http.StatusCreated)
}

func inboxRemoveViaHTTP(serverURL, path string) error {
	endpoint := apiURL(serverURL, "/inbox/directories") + "?path=" + url.QueryEscape(path)
	return doJSON(http.MethodDelete, endpoint, nil, nil, http.StatusOK)
}

func inboxListViaHTTP(serverURL string) ([]string, error) {
	var out struct {
		Directories []string `json:"directories"`
	}
	if err := doJSON(http.MethodGet, apiURL(serverURL, "/inbox/directories"), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Directories, nil
}

// readSubmissionFile reads a submission event ({"user_id": ..., "skills": [...]}).
func readSubmissionFile(path string) (*models.SubmissionEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return models.DecodeSubmission(data)
}

// readSkillsFile accepts either a submission event or a bare JSON array of skills.
func readSkillsFile(path string) ([]models.SkillRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseSkills(data)
}

func parseSkills(data []byte) ([]models.SkillRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []models.SkillRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
		if err := models.ValidateSkills(records); err != nil {
			return nil, err
		}
		return records, nil
	}
	ev, err := models.DecodeSubmission(trimmed)
	if err != nil {
		return nil, err
	}
	return ev.Records(), nil
}

func readCompareFile(path string) (*models.CompareRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var req models.CompareRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode comparison: %w", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
