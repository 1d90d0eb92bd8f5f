package api_test

import (
	"encoding/json"
	"testing"

	"tagsmith/internal/api"
	"tagsmith/internal/tagsheet"
)

func decodePatch(t *testing.T, body string) api.SettingsPatch {
	t.Helper()
	var patch api.SettingsPatch
	if err := json.Unmarshal([]byte(body), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	return patch
}

func TestPatchAbsentFieldsUntouched(t *testing.T) {
	patch, err := decodePatch(t, `{"enabled": false}`).Patch()
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !patch.Enabled.Touched() || patch.Enabled.Value() != "FALSE" {
		t.Fatalf("Enabled = %+v", patch.Enabled)
	}
	if patch.MarkersEnabled.Touched() || patch.MaxGap.Touched() {
		t.Fatal("absent fields must stay untouched")
	}
}

func TestPatchNullClearsField(t *testing.T) {
	patch, err := decodePatch(t, `{"max_gap": null, "markers_enabled": null}`).Patch()
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !patch.MaxGap.Touched() || !patch.MaxGap.Cleared() {
		t.Fatalf("MaxGap = %+v, want cleared", patch.MaxGap)
	}
	if !patch.MarkersEnabled.Cleared() {
		t.Fatalf("MarkersEnabled = %+v, want cleared", patch.MarkersEnabled)
	}
}

func TestPatchDurationForms(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"required_scene_tag_duration": "35%"}`, "35%"},
		{`{"required_scene_tag_duration": "15s"}`, "15"},
		{`{"required_scene_tag_duration": 20}`, "20"},
		{`{"required_scene_tag_duration": "-2.5"}`, "-2.5"},
	}
	for _, tc := range cases {
		patch, err := decodePatch(t, tc.body).Patch()
		if err != nil {
			t.Fatalf("Patch(%s): %v", tc.body, err)
		}
		if got := patch.RequiredSceneTagDuration.Value(); got != tc.want {
			t.Fatalf("duration cell for %s = %q, want %q", tc.body, got, tc.want)
		}
	}
}

func TestPatchRejectsBadValues(t *testing.T) {
	for _, body := range []string{
		`{"enabled": "maybe"}`,
		`{"max_gap": "wide"}`,
		`{"required_scene_tag_duration": "abc"}`,
		`{"mystery_field": 1}`,
	} {
		patch := api.SettingsPatch{}
		err := json.Unmarshal([]byte(body), &patch)
		if err == nil {
			_, err = patch.Patch()
		}
		if err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestPatchBlankDurationClears(t *testing.T) {
	patch, err := decodePatch(t, `{"required_scene_tag_duration": ""}`).Patch()
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !patch.RequiredSceneTagDuration.Cleared() {
		t.Fatalf("blank duration should clear, got %+v", patch.RequiredSceneTagDuration)
	}
}

func TestStatusPatchesDisableWins(t *testing.T) {
	req := api.StatusUpdateRequest{
		TagStatuses:  map[string]bool{"outdoor": true},
		EnabledTags:  []string{"portrait", "both"},
		DisabledTags: []string{"both"},
	}
	statuses := req.StatusPatches()
	if !statuses["outdoor"] || !statuses["portrait"] {
		t.Fatalf("statuses = %v", statuses)
	}
	if statuses["both"] {
		t.Fatal("a tag in both lists must end up disabled")
	}
}

func TestStorePatchesPropagatesErrors(t *testing.T) {
	var req api.SettingsUpdateRequest
	body := `{"tags": {"Outdoor": {"max_gap": 7.5}, "Portrait": {"enabled": 3}}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if _, err := req.StorePatches(); err == nil {
		t.Fatal("expected error for non-boolean enabled")
	}
}

func TestPatchPercentRoundTrip(t *testing.T) {
	patch, err := decodePatch(t, `{"required_scene_tag_duration": "35%"}`).Patch()
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	parsed, err := tagsheet.ParseDuration(patch.RequiredSceneTagDuration.Value())
	if err != nil || parsed == nil || !parsed.IsPercent() {
		t.Fatalf("round trip = %v err %v", parsed, err)
	}
}
