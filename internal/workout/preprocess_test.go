package workout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessSimplifiedSteps(t *testing.T) {
	got, err := Preprocess(map[string]any{
		"workoutName": "Tempo",
		"sport":       "running",
		"steps":       []any{
			map[string]any{"stepType": "warmup", "endCondition": "time", "endConditionValue": 600.0},
			map[string]any{
				"stepOrder":         2.0,
				"stepType":          "interval",
				"endCondition":      "distance",
				"endConditionValue": 1000.0,
				"targetType":        "pace.zone",
				"targetValueHigh":   4.2,
				"targetValueLow":    3.8,
			},
			map[string]any{"stepType": "stroll"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tempo", got["workoutName"])
	assert.Equal(t, map[string]any{"sportTypeId": 1, "sportTypeKey": "running"}, got["sportType"])

	segments := got["workoutSegments"].([]any)
	require.Len(t, segments, 1)
	steps := segments[0].(map[string]any)["workoutSteps"].([]any)
	require.Len(t, steps, 3)

	warmup := steps[0].(map[string]any)
	assert.Equal(t, 1, warmup["stepOrder"])
	assert.Equal(t, map[string]any{"stepTypeId": 1, "stepTypeKey": "warmup"}, warmup["stepType"])
	assert.Equal(t, map[string]any{"conditionTypeId": 2, "conditionTypeKey": "time"}, warmup["endCondition"])
	assert.Equal(t, 600.0, warmup["endConditionValue"])

	interval := steps[1].(map[string]any)
	assert.Equal(t, 2.0, interval["stepOrder"])
	assert.Equal(t, 4.2, interval["targetValueOne"])
	assert.Equal(t, 3.8, interval["targetValueTwo"])
	assert.Equal(t, "pace.zone", interval["targetType"].(map[string]any)["workoutTargetTypeKey"])

	unknown := steps[2].(map[string]any)
	assert.Equal(t, "other", unknown["stepType"].(map[string]any)["stepTypeKey"])
	assert.Equal(t, "lap.button", unknown["endCondition"].(map[string]any)["conditionTypeKey"])
}

func TestPreprocessDefaults(t *testing.T) {
	got, err := Preprocess(map[string]any{"sportType": "rowing"})
	require.NoError(t, err)

	assert.Equal(t, "Workout", got["workoutName"])
	assert.Equal(t, "other", got["sportType"].(map[string]any)["sportTypeKey"])
	segments := got["workoutSegments"].([]any)
	require.Len(t, segments, 1)
	assert.Empty(t, segments[0].(map[string]any)["workoutSteps"])
}

func TestPreprocessKeepsFullForm(t *testing.T) {
	full := map[string]any{
		"workoutName":     "Long run",
		"sportType":       map[string]any{"sportTypeId": 1.0, "sportTypeKey": "running"},
		"workoutSegments": []any{map[string]any{
			"workoutSteps": []any{map[string]any{"stepType": map[string]any{"stepTypeKey": "interval"}}},
		}},
	}

	got, err := Preprocess(full)

	require.NoError(t, err)
	assert.Equal(t, full, got)
}

func TestPreprocessRejectsNonObjectStep(t *testing.T) {
	_, err := Preprocess(map[string]any{"steps": []any{"run fast"}})
	assert.EqualError(t, err, "workout step 1 is not an object")
}

func TestPrepareTurnsEqualZoneAliasesIntoZoneNumber(t *testing.T) {
	got, err := Prepare(map[string]any{
		"workoutName": "Hills",
		"sportType":   "running",
		"steps":       []any{map[string]any{
			"stepType":           "repeat",
			"numberOfIterations": 6.0,
			"workoutSteps":       []any{
				map[string]any{
					"stepType":        "interval",
					"endCondition":    "time",
					"targetType":      "heart.rate.zone",
					"targetValueHigh": 4.0,
					"targetValueLow":  4.0,
				},
				map[string]any{"stepType": "recovery", "endCondition": "lap.button"},
			},
		}},
	})
	require.NoError(t, err)

	steps := got["workoutSegments"].([]any)[0].(map[string]any)["workoutSteps"].([]any)
	require.Len(t, steps, 1)
	group := steps[0].(map[string]any)
	assert.Equal(t, "RepeatGroupDTO", group["type"])
	assert.Equal(t, 6.0, group["endConditionValue"])
	assert.Equal(t, "iterations", group["endCondition"].(map[string]any)["conditionTypeKey"])

	children := group["workoutSteps"].([]any)
	require.Len(t, children, 2)
	interval := children[0].(map[string]any)
	assert.Equal(t, 4, interval["zoneNumber"])
	assert.Nil(t, interval["targetValueOne"])
	assert.Equal(t, 2, interval["stepId"])
	assert.Equal(t, 3, children[1].(map[string]any)["stepId"])
	assert.Equal(t, false, got["isWheelchair"])
}
