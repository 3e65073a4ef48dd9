// Package capabilities decides which tools the connected account's devices
// cannot serve.
package capabilities

import (
	"context"
	"log/slog"
	"slices"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

// Gates maps a device capability flag to the tools that need it.
var Gates = []struct {
	Flag  string
	Tools []string
}{
	{"hasTrainingStatusCapableDevice", []string{"get_training_status", "get_training_readiness"}},
	{"hasHrvStatusCapableDevice", []string{"get_hrv_data"}},
	{"hasBodyBatteryCapableDevice", []string{"get_body_battery"}},
	{"hasVO2MaxRunCapable", []string{"get_max_metrics"}},
	{"hasSleepScoreCapableDevice", []string{"get_sleep"}},
	{"hasRespirationCapableDevice", []string{"get_respiration"}},
	{"hasSpO2CapableDevice", []string{"get_spo2_data"}},
	{"hasStressCapableDevice", []string{"get_stress"}},
	{"hasFitnessAgeCapableDevice", []string{"get_max_metrics"}},
}

// Result is the outcome of a capability check. An empty Result means every
// tool is assumed available.
type Result struct {
	Capabilities  map[string]bool `json:"capabilities"`
	DisabledTools []string        `json:"disabled_tools"`
}

// Detect reads the account's usage indicators once. Any failure yields an
// empty Result.
func Detect(ctx context.Context, up api.Upstream, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	indicators, err := up.UsageIndicators(ctx)
	if err != nil {
		logger.Debug("capability check failed", slog.Any("error", err))
		return Result{}
	}
	devices, ok := indicators["deviceBasedIndicators"].(map[string]any)
	if !ok {
		logger.Debug("capability check: no device indicators")
		return Result{}
	}

	res := Result{Capabilities: make(map[string]bool, len(Gates))}
	for _, gate := range Gates {
		capable := true
		if v, ok := devices[gate.Flag].(bool); ok {
			capable = v
		}
		res.Capabilities[gate.Flag] = capable
		if !capable {
			res.DisabledTools = append(res.DisabledTools, gate.Tools...)
		}
	}
	slices.Sort(res.DisabledTools)
	res.DisabledTools = slices.Compact(res.DisabledTools)
	return res
}

// Map renders the result for a tool response. Empty fields render as an
// empty object and an empty list.
func (r Result) Map() map[string]any {
	caps := r.Capabilities
	if caps == nil {
		caps = map[string]bool{}
	}
	tools := r.DisabledTools
	if tools == nil {
		tools = []string{}
	}
	return map[string]any{"capabilities": caps, "disabled_tools": tools}
}

// Disabled reports whether tool is in the disabled list.
func (r Result) Disabled(tool string) bool {
	_, found := slices.BinarySearch(r.DisabledTools, tool)
	return found
}
