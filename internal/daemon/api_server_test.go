package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"tagsmith/internal/api"
	"tagsmith/internal/daemon"
	"tagsmith/internal/history"
	"tagsmith/internal/logging"
	"tagsmith/internal/testsupport"
)

type apiFixture struct {
	daemon *daemon.Daemon
	base   string
	token  string
}

func startAPI(t *testing.T, opts ...testsupport.ConfigOption) *apiFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	store := testsupport.NewStore(t, cfg)

	var hist *history.Store
	if cfg.History.Enabled {
		var err error
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			t.Fatalf("history.Open: %v", err)
		}
	}

	d, err := daemon.New(cfg, store, hist, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	return &apiFixture{
		daemon: d,
		base:   "http://" + d.APIAddr(),
		token:  cfg.Paths.APIToken,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, f.base+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	payload, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, payload
}

func TestStatusEndpoint(t *testing.T) {
	f := startAPI(t)

	resp, body := f.do(t, http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var status api.DaemonStatus
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Running || status.TagCount != 2 {
		t.Fatalf("status = %+v", status)
	}
}

func TestAvailableEndpoint(t *testing.T) {
	f := startAPI(t)

	resp, body := f.do(t, http.MethodGet, "/api/tags/available", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var available api.AvailableTagsResponse
	if err := json.Unmarshal(body, &available); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Portrait is disabled, so only outdoor comes back by default.
	if len(available.Tags) != 1 || available.Tags[0].Tag != "outdoor" {
		t.Fatalf("tags = %+v", available.Tags)
	}
	if available.Tags[0].Name != "Outdoor" {
		t.Fatalf("display name = %q", available.Tags[0].Name)
	}
	if available.Defaults.RequiredSceneTagDuration != "35%" {
		t.Fatalf("defaults = %+v", available.Defaults)
	}

	resp, body = f.do(t, http.MethodGet, "/api/tags/available?include_disabled=true", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &available); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(available.Tags) != 2 {
		t.Fatalf("tags = %+v, want portrait included", available.Tags)
	}
}

func TestStatusesRoundTrip(t *testing.T) {
	f := startAPI(t)

	resp, body := f.do(t, http.MethodGet, "/api/tags/statuses", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var statuses api.StatusesResponse
	if err := json.Unmarshal(body, &statuses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !statuses.TagStatuses["outdoor"] || statuses.TagStatuses["portrait"] {
		t.Fatalf("statuses = %+v", statuses)
	}

	update := api.StatusUpdateRequest{
		EnabledTags:  []string{"Portrait"},
		DisabledTags: []string{"Outdoor"},
	}
	resp, body = f.do(t, http.MethodPut, "/api/tags/statuses", update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var result api.UpdateResult
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != "ok" || result.Updated != 2 || result.OperationID == "" {
		t.Fatalf("result = %+v", result)
	}

	resp, body = f.do(t, http.MethodGet, "/api/tags/statuses", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &statuses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if statuses.TagStatuses["outdoor"] || !statuses.TagStatuses["portrait"] {
		t.Fatalf("statuses after update = %+v", statuses)
	}
	if len(statuses.EnabledTags) != 1 || statuses.EnabledTags[0] != "portrait" {
		t.Fatalf("enabled_tags = %v", statuses.EnabledTags)
	}
}

func TestSettingsUpdateAndHistory(t *testing.T) {
	f := startAPI(t)

	body := map[string]any{
		"tags": map[string]any{
			"Outdoor": map[string]any{
				"max_gap":                     7.5,
				"required_scene_tag_duration": "40%",
			},
		},
	}
	resp, payload := f.do(t, http.MethodPut, "/api/tags/settings", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, payload)
	}
	var result api.UpdateResult
	if err := json.Unmarshal(payload, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("result = %+v", result)
	}

	resp, payload = f.do(t, http.MethodGet, "/api/history?tag=outdoor", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history status = %d", resp.StatusCode)
	}
	var hist api.HistoryResponse
	if err := json.Unmarshal(payload, &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Entries) != 2 {
		t.Fatalf("entries = %+v", hist.Entries)
	}
	for _, entry := range hist.Entries {
		if entry.OperationID != result.OperationID {
			t.Fatalf("operation_id = %q, want %q", entry.OperationID, result.OperationID)
		}
	}
}

func TestSettingsRejectsBadPayload(t *testing.T) {
	f := startAPI(t)

	body := map[string]any{
		"tags": map[string]any{
			"Outdoor": map[string]any{"enabled": "maybe"},
		},
	}
	resp, _ := f.do(t, http.MethodPut, "/api/tags/settings", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	f := startAPI(t, testsupport.WithAPIToken("sekrit"))

	req, err := http.NewRequest(http.MethodGet, f.base+"/api/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	// Rejections use the API's JSON error shape like every other failure.
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
	var errBody map[string]string
	if err := json.Unmarshal(raw, &errBody); err != nil || errBody["error"] != "unauthorized" {
		t.Fatalf("body = %q, want error field", raw)
	}

	// A wrong token is rejected the same way.
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", resp.StatusCode)
	}

	// With the token the same request passes.
	resp, _ = f.do(t, http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestWriteToMissingSheetFails(t *testing.T) {
	f := startAPI(t)

	if err := os.Remove(f.daemon.Status().SettingsPath); err != nil {
		t.Fatalf("remove sheet: %v", err)
	}

	update := api.StatusUpdateRequest{DisabledTags: []string{"Outdoor"}}
	resp, body := f.do(t, http.MethodPut, "/api/tags/statuses", update)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d (%s), want 503", resp.StatusCode, body)
	}
}

func TestReloadEndpoint(t *testing.T) {
	f := startAPI(t)

	path := f.daemon.Status().SettingsPath
	// Warm the cache, edit externally, reload, observe the change.
	f.do(t, http.MethodGet, "/api/tags/statuses", nil)

	edited := []byte(fmt.Sprintf("%s\n%s\n",
		"tag_name,category,enabled",
		"Solo,Other,TRUE"))
	if err := os.WriteFile(path, edited, 0o644); err != nil {
		t.Fatalf("rewrite sheet: %v", err)
	}

	resp, _ := f.do(t, http.MethodPost, "/api/tags/reload", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reload status = %d", resp.StatusCode)
	}

	resp, body := f.do(t, http.MethodGet, "/api/tags/statuses", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var statuses api.StatusesResponse
	if err := json.Unmarshal(body, &statuses); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := statuses.TagStatuses["solo"]; !ok {
		t.Fatalf("statuses = %+v, want reloaded sheet", statuses)
	}
}
