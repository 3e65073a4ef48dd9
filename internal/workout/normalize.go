// Package workout prepares workout definitions for upload to Garmin Connect.
//
// Workouts are handled as generic JSON trees (map[string]any) so that fields
// this package does not know about pass through untouched. Normalize fills
// in what the upload endpoint requires; Preprocess expands the simplified
// format that agents tend to produce.
package workout

import "math"

// Step type keys and their Garmin ids. The id doubles as the display order.
var stepTypeIDs = map[string]int{
	"warmup":   1,
	"cooldown": 2,
	"interval": 3,
	"recovery": 4,
	"rest":     5,
	"repeat":   6,
	"other":    7,
}

var conditionDisplayOrder = map[string]int{
	"lap.button": 1,
	"time":       2,
	"distance":   3,
	"calories":   4,
	"heart.rate": 6,
}

var targetDisplayOrder = map[string]int{
	"no.target":       1,
	"speed.zone":      2,
	"cadence":         3,
	"heart.rate.zone": 4,
	"power.zone":      5,
	"pace.zone":       6,
}

// Highest valid zone per zone target type.
var zoneLimits = map[string]float64{
	"heart.rate.zone": 5,
	"power.zone":      7,
}

// Normalize returns a deep copy of w with every field the upload endpoint
// requires filled in. Values already present are kept. It never fails;
// anything it cannot make sense of is left for Garmin to reject.
func Normalize(w map[string]any) map[string]any {
	out, _ := deepCopy(w).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	setDefault(out, "avgTrainingSpeed", 2.5)
	setDefault(out, "estimatedDurationInSecs", 0)
	setDefault(out, "estimatedDistanceInMeters", 0.0)
	setDefault(out, "estimateType", nil)

	if sport, ok := out["sportType"].(map[string]any); ok {
		if sport["sportTypeKey"] == "running" {
			setDefault(out, "isWheelchair", false)
		}
		setDefault(sport, "displayOrder", 1)
	}

	segments, _ := out["workoutSegments"].([]any)
	for _, s := range segments {
		seg, ok := s.(map[string]any)
		if !ok {
			continue
		}
		if sport, ok := seg["sportType"].(map[string]any); ok {
			setDefault(sport, "displayOrder", 1)
		}
		if steps, ok := seg["workoutSteps"].([]any); ok {
			next := 1
			seg["workoutSteps"] = normalizeSteps(steps, &next)
		}
	}
	return out
}

// normalizeSteps restructures flat repeats and completes every step. next is
// the id handed to the next step that lacks one, shared depth-first across
// one segment.
func normalizeSteps(steps []any, next *int) []any {
	steps = RestructureFlatRepeats(steps)
	out := make([]any, 0, len(steps))
	for _, s := range steps {
		step, ok := s.(map[string]any)
		if !ok {
			out = append(out, s)
			continue
		}
		if isRepeat(step) {
			out = append(out, normalizeRepeat(step, next))
		} else {
			out = append(out, normalizeExecutable(step, next))
		}
	}
	return out
}

func normalizeRepeat(step map[string]any, next *int) map[string]any {
	assignID(step, next)
	step["type"] = "RepeatGroupDTO"

	if st, ok := step["stepType"].(map[string]any); ok {
		setDefault(st, "displayOrder", stepTypeIDs["repeat"])
	}
	setDefault(step, "endCondition", map[string]any{
		"conditionTypeId":  7,
		"conditionTypeKey": "iterations",
		"displayOrder":     7,
		"displayable":      false,
	})
	if n, ok := number(step["numberOfIterations"]); ok {
		setDefault(step, "endConditionValue", n)
	}
	setDefault(step, "skipLastRestStep", true)
	setDefault(step, "smartRepeat", false)

	if children, ok := step["workoutSteps"].([]any); ok {
		step["workoutSteps"] = normalizeSteps(children, next)
	}
	return step
}

func normalizeExecutable(step map[string]any, next *int) map[string]any {
	assignID(step, next)
	step["type"] = "ExecutableStepDTO"

	if st, ok := step["stepType"].(map[string]any); ok {
		key, _ := st["stepTypeKey"].(string)
		if id, known := stepTypeIDs[key]; known {
			st["stepTypeId"] = id
			setDefault(st, "displayOrder", id)
		}
	}

	if ec, ok := step["endCondition"].(map[string]any); ok {
		key, _ := ec["conditionTypeKey"].(string)
		if order, known := conditionDisplayOrder[key]; known {
			setDefault(ec, "displayOrder", order)
		}
		setDefault(ec, "displayable", true)
	}

	if tt, ok := step["targetType"].(map[string]any); ok {
		key, _ := tt["workoutTargetTypeKey"].(string)
		order, known := targetDisplayOrder[key]
		if !known {
			order = 1
		}
		setDefault(tt, "displayOrder", order)
		disambiguateZone(step, key)
	}

	setDefault(step, "strokeType", map[string]any{})
	setDefault(step, "equipmentType", map[string]any{
		"equipmentTypeId":  nil,
		"equipmentTypeKey": nil,
		"displayOrder":     nil,
	})
	return step
}

// disambiguateZone rewrites an equal target pair inside the zone range of a
// zone target into a zone number. Unequal pairs are raw ranges and stay.
func disambiguateZone(step map[string]any, targetKey string) {
	limit, ok := zoneLimits[targetKey]
	if !ok {
		return
	}
	one, ok1 := number(step["targetValueOne"])
	two, ok2 := number(step["targetValueTwo"])
	if !ok1 || !ok2 || one != two || one < 1 || one > limit {
		return
	}
	step["zoneNumber"] = int(one)
	step["targetValueOne"] = nil
	step["targetValueTwo"] = nil
}

// RestructureFlatRepeats nests the children of repeat steps that reference
// them through childStepId chains instead of carrying workoutSteps. Consumed
// children are removed from the returned list. Already nested input comes
// back unchanged.
func RestructureFlatRepeats(steps []any) []any {
	byID := make(map[int]map[string]any)
	for _, s := range steps {
		step, ok := s.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := intID(step["stepId"]); ok {
			byID[id] = step
		}
	}

	// moved holds consumed children, placed holds ids already emitted at
	// this level. Neither may be pulled into a chain again.
	moved := make(map[int]bool)
	placed := make(map[int]bool)
	out := make([]any, 0, len(steps))
	for _, s := range steps {
		step, ok := s.(map[string]any)
		if !ok {
			out = append(out, s)
			continue
		}
		id, hasID := intID(step["stepId"])
		if hasID && moved[id] {
			continue
		}
		if hasID {
			placed[id] = true
		}
		childID, hasChild := intID(step["childStepId"])
		nested, _ := step["workoutSteps"].([]any)
		if isRepeat(step) && hasChild && len(nested) == 0 {
			var children []any
			for {
				child, ok := byID[childID]
				if !ok || moved[childID] || placed[childID] {
					break
				}
				children = append(children, child)
				moved[childID] = true
				childID, ok = intID(child["childStepId"])
				if !ok {
					break
				}
			}
			step["workoutSteps"] = children
		}
		out = append(out, step)
	}
	return out
}

func isRepeat(step map[string]any) bool {
	if st, ok := step["stepType"].(map[string]any); ok && st["stepTypeKey"] == "repeat" {
		return true
	}
	n, ok := number(step["numberOfIterations"])
	return ok && n != 0
}

// assignID gives step the next counter value unless it already has an
// integral id.
func assignID(step map[string]any, next *int) {
	if _, ok := intID(step["stepId"]); ok {
		return
	}
	step["stepId"] = *next
	*next++
}

func setDefault(m map[string]any, key string, v any) {
	if _, ok := m[key]; !ok {
		m[key] = v
	}
}

// number reads a JSON number in any of the forms a decoded or hand-built
// tree may hold.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// intID reads an integral id. Fractional and non-numeric values do not count.
func intID(v any) (int, bool) {
	n, ok := number(v)
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = deepCopy(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = deepCopy(val)
		}
		return s
	case []map[string]any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = deepCopy(val)
		}
		return s
	}
	return v
}
