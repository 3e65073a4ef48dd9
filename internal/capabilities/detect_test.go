package capabilities

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

const indicatorsPath = "/userprofile-service/userprofile/usage-indicators"

func detectWith(t *testing.T, transport *api.MockTransport) Result {
	t.Helper()
	return Detect(context.Background(), api.NewGarmin(transport, api.Identity{DisplayName: "runner42"}), nil)
}

func TestDetectDisablesGatedTools(t *testing.T) {
	transport := api.NewMockTransport(map[string]string{indicatorsPath: `{
		"deviceBasedIndicators": {
			"hasHrvStatusCapableDevice": false,
			"hasVO2MaxRunCapable": false,
			"hasFitnessAgeCapableDevice": false,
			"hasStressCapableDevice": true
		}
	}`})

	res := detectWith(t, transport)
	assert.Equal(t, []string{"get_hrv_data", "get_max_metrics"}, res.DisabledTools)
	assert.False(t, res.Capabilities["hasHrvStatusCapableDevice"])
	assert.True(t, res.Capabilities["hasStressCapableDevice"])
	assert.True(t, res.Capabilities["hasSleepScoreCapableDevice"], "missing flag defaults to capable")
	assert.Len(t, res.Capabilities, len(Gates))
	assert.True(t, res.Disabled("get_max_metrics"))
	assert.False(t, res.Disabled("get_stress"))
	assert.Len(t, transport.Requests(http.MethodGet, indicatorsPath), 1)
}

func TestDetectSortsAndDedupes(t *testing.T) {
	transport := api.NewMockTransport(map[string]string{indicatorsPath: `{
		"deviceBasedIndicators": {
			"hasTrainingStatusCapableDevice": false,
			"hasStressCapableDevice": false,
			"hasVO2MaxRunCapable": false,
			"hasFitnessAgeCapableDevice": false,
			"hasBodyBatteryCapableDevice": false
		}
	}`})

	res := detectWith(t, transport)
	assert.Equal(t, []string{
		"get_body_battery",
		"get_max_metrics",
		"get_stress",
		"get_training_readiness",
		"get_training_status",
	}, res.DisabledTools)
}

func TestDetectFailsOpen(t *testing.T) {
	tests := []struct {
		name      string
		transport *api.MockTransport
	}{
		{"upstream error", api.NewMockTransport(nil).Fail(http.MethodGet, indicatorsPath, errors.New("boom"))},
		{"not found", api.NewMockTransport(nil)},
		{"no device indicators", api.NewMockTransport(map[string]string{indicatorsPath: `{"userIndicators": {}}`})},
		{"indicators not an object", api.NewMockTransport(map[string]string{indicatorsPath: `{"deviceBasedIndicators": [true]}`})},
		{"empty body", api.NewMockTransport(map[string]string{indicatorsPath: ``})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := detectWith(t, tt.transport)
			assert.Empty(t, res.DisabledTools)
			assert.Empty(t, res.Capabilities)
			assert.Equal(t, map[string]any{
				"capabilities":   map[string]bool{},
				"disabled_tools": []string{},
			}, res.Map())
		})
	}
}

func TestDetectNonBooleanFlagCountsAsCapable(t *testing.T) {
	transport := api.NewMockTransport(map[string]string{indicatorsPath: `{
		"deviceBasedIndicators": {"hasSpO2CapableDevice": null, "hasSleepScoreCapableDevice": "no"}
	}`})

	res := detectWith(t, transport)
	require.NotNil(t, res.Capabilities)
	assert.Empty(t, res.DisabledTools)
	assert.True(t, res.Capabilities["hasSpO2CapableDevice"])
}
