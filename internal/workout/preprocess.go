package workout

import (
	"fmt"
	"maps"
)

var sportTypes = map[string]map[string]any{
	"running":  {"sportTypeId": 1, "sportTypeKey": "running"},
	"cycling":  {"sportTypeId": 2, "sportTypeKey": "cycling"},
	"swimming": {"sportTypeId": 5, "sportTypeKey": "swimming"},
	"other":    {"sportTypeId": 99, "sportTypeKey": "other"},
}

var stepTypes = func() map[string]map[string]any {
	table := make(map[string]map[string]any, len(stepTypeIDs))
	for key, id := range stepTypeIDs {
		table[key] = map[string]any{"stepTypeId": id, "stepTypeKey": key}
	}
	return table
}()

var conditionTypes = map[string]map[string]any{
	"lap.button": {"conditionTypeId": 1, "conditionTypeKey": "lap.button"},
	"time":       {"conditionTypeId": 2, "conditionTypeKey": "time"},
	"distance":   {"conditionTypeId": 3, "conditionTypeKey": "distance"},
}

var targetTypes = map[string]map[string]any{
	"no.target":       {"workoutTargetTypeId": 1, "workoutTargetTypeKey": "no.target"},
	"heart.rate.zone": {"workoutTargetTypeId": 4, "workoutTargetTypeKey": "heart.rate.zone"},
	"power.zone":      {"workoutTargetTypeId": 5, "workoutTargetTypeKey": "power.zone"},
	"pace.zone":       {"workoutTargetTypeId": 6, "workoutTargetTypeKey": "pace.zone"},
}

// Target value aliases in the order they are applied. The first source
// present wins for each destination.
var targetAliases = [][2]string{
	{"targetValueOne", "targetValueOne"},
	{"targetValueTwo", "targetValueTwo"},
	{"targetValueHigh", "targetValueOne"},
	{"targetValueLow", "targetValueTwo"},
}

// Prepare expands a simplified workout and normalizes the result.
func Prepare(input map[string]any) (map[string]any, error) {
	full, err := Preprocess(input)
	if err != nil {
		return nil, err
	}
	return Normalize(full), nil
}

// Preprocess converts the simplified format into the full Garmin shape.
//
// The simplified format allows string sport, step, end condition and target
// types, a flat "steps" list instead of segments, and targetValueHigh/Low as
// aliases of targetValueOne/Two. Input that is already in full form is
// returned as is.
func Preprocess(input map[string]any) (map[string]any, error) {
	if isFullForm(input) {
		return input, nil
	}

	name, _ := input["workoutName"].(string)
	if name == "" {
		name = "Workout"
	}
	out := map[string]any{"workoutName": name}
	if desc, ok := input["description"]; ok {
		out["description"] = desc
	}

	sport := input["sportType"]
	if sport == nil {
		sport = input["sport"]
	}
	if sport == nil {
		sport = "running"
	}
	out["sportType"] = sportType(sport)

	steps, _ := input["steps"].([]any)
	if len(steps) == 0 {
		steps, _ = input["workoutSteps"].([]any)
	}
	rawSegments, hasSegments := input["workoutSegments"].([]any)

	switch {
	case len(steps) > 0:
		converted, err := preprocessSteps(steps)
		if err != nil {
			return nil, err
		}
		out["workoutSegments"] = []any{segment(1, out["sportType"], converted)}
	case hasSegments:
		segments := make([]any, 0, len(rawSegments))
		for i, s := range rawSegments {
			seg, ok := s.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("workout segment %d is not an object", i+1)
			}
			order := seg["segmentOrder"]
			if order == nil {
				order = 1
			}
			segSport := seg["sportType"]
			if segSport == nil {
				segSport = out["sportType"]
			}
			raw, _ := seg["workoutSteps"].([]any)
			converted, err := preprocessSteps(raw)
			if err != nil {
				return nil, err
			}
			segments = append(segments, segment(order, sportType(segSport), converted))
		}
		out["workoutSegments"] = segments
	default:
		out["workoutSegments"] = []any{segment(1, out["sportType"], []any{})}
	}
	return out, nil
}

// isFullForm reports whether input already carries an object sport type and
// segments whose steps all use object step types.
func isFullForm(input map[string]any) bool {
	if _, ok := input["sportType"].(map[string]any); !ok {
		return false
	}
	segments, ok := input["workoutSegments"].([]any)
	if !ok {
		return false
	}
	for _, s := range segments {
		seg, _ := s.(map[string]any)
		steps, _ := seg["workoutSteps"].([]any)
		for _, st := range steps {
			step, _ := st.(map[string]any)
			if _, isString := step["stepType"].(string); isString {
				return false
			}
		}
	}
	return true
}

func segment(order, sport any, steps []any) map[string]any {
	if m, ok := sport.(map[string]any); ok {
		sport = maps.Clone(m)
	}
	return map[string]any{
		"segmentOrder": order,
		"sportType":    sport,
		"workoutSteps": steps,
	}
}

func sportType(v any) map[string]any {
	switch t := v.(type) {
	case string:
		return lookup(sportTypes, t, "other")
	case map[string]any:
		if _, ok := t["sportTypeId"]; ok {
			return t
		}
		if key, ok := t["sportTypeKey"].(string); ok {
			return lookup(sportTypes, key, "other")
		}
	}
	return lookup(sportTypes, "other", "other")
}

func lookup(table map[string]map[string]any, key, fallback string) map[string]any {
	if v, ok := table[key]; ok {
		return maps.Clone(v)
	}
	return maps.Clone(table[fallback])
}

func preprocessSteps(steps []any) ([]any, error) {
	out := make([]any, 0, len(steps))
	for i, s := range steps {
		step, ok := s.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("workout step %d is not an object", i+1)
		}
		converted, err := preprocessStep(step)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func preprocessStep(step map[string]any) (map[string]any, error) {
	out := map[string]any{"stepOrder": 1}
	if order, ok := step["stepOrder"]; ok {
		out["stepOrder"] = order
	}

	switch st := step["stepType"].(type) {
	case nil:
		out["stepType"] = lookup(stepTypes, "interval", "other")
	case string:
		out["stepType"] = lookup(stepTypes, st, "other")
	default:
		out["stepType"] = st
	}

	ec := step["endCondition"]
	if ec == nil {
		ec = step["endConditionType"]
	}
	switch t := ec.(type) {
	case string:
		out["endCondition"] = lookup(conditionTypes, t, "lap.button")
	case map[string]any:
		out["endCondition"] = t
	default:
		// Repeat groups get their iterations condition from Normalize.
		if _, repeat := step["numberOfIterations"]; !repeat && step["stepType"] != "repeat" {
			out["endCondition"] = lookup(conditionTypes, "lap.button", "lap.button")
		}
	}

	if v, ok := step["endConditionValue"]; ok && v != nil {
		out["endConditionValue"] = v
	}

	switch t := step["targetType"].(type) {
	case string:
		out["targetType"] = lookup(targetTypes, t, "no.target")
	case map[string]any:
		if _, ok := t["workoutTargetTypeId"]; ok {
			out["targetType"] = t
		}
	}

	for _, alias := range targetAliases {
		src, dst := alias[0], alias[1]
		if v, ok := step[src]; ok && v != nil {
			setDefault(out, dst, v)
		}
	}

	for _, key := range []string{"zoneNumber", "numberOfIterations", "stepId", "childStepId"} {
		if v, ok := step[key]; ok {
			out[key] = v
		}
	}

	if children, ok := step["workoutSteps"].([]any); ok {
		converted, err := preprocessSteps(children)
		if err != nil {
			return nil, err
		}
		out["workoutSteps"] = converted
	}
	return out, nil
}
