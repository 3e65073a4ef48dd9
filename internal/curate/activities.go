package curate

import (
	"context"
	"fmt"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/core"
)

// ActivityQuery selects the activity list either by date range or by page.
// Date-range mode applies when both dates are set.
type ActivityQuery struct {
	StartDate    string
	EndDate      string
	ActivityType string
	Start        int
	Limit        int
}

// Activities lists activities by date range or by page. In page mode the
// result carries has_more (the page came back full) and next_start.
func Activities(ctx context.Context, up api.Upstream, q ActivityQuery) (Result, error) {
	if q.StartDate != "" && q.EndDate != "" {
		raw, err := up.ActivitiesByDate(ctx, q.StartDate, q.EndDate, q.ActivityType)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			msg := fmt.Sprintf("No activities between %s and %s", q.StartDate, q.EndDate)
			if q.ActivityType != "" {
				msg += fmt.Sprintf(" for type '%s'", q.ActivityType)
			}
			return Result{"error": msg}, nil
		}
		return clean(Result{
			"count":      len(raw),
			"date_range": dateRange(q.StartDate, q.EndDate),
			"activities": activitySummaries(raw),
		}), nil
	}

	limit := min(max(q.Limit, 1), core.MaxActivityLimit)
	start := max(q.Start, 0)
	raw, err := up.Activities(ctx, start, limit)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No activities found at index %d", start), nil
	}
	hasMore := len(raw) == limit
	r := Result{
		"start":      start,
		"limit":      limit,
		"count":      len(raw),
		"has_more":   hasMore,
		"activities": activitySummaries(raw),
	}
	if hasMore {
		r["next_start"] = start + limit
	}
	return clean(r), nil
}

func activitySummaries(raw []api.ActivitySummary) []Result {
	out := make([]Result, len(raw))
	for i, a := range raw {
		var typeKey *string
		if a.ActivityType != nil {
			typeKey = a.ActivityType.TypeKey
		}
		out[i] = Result{
			"activity_id":             a.ActivityID,
			"name":                    a.ActivityName,
			"type":                    typeKey,
			"start_time":              a.StartTimeLocal,
			"distance_meters":         a.Distance,
			"duration_seconds":        a.Duration,
			"moving_duration_seconds": a.MovingDuration,
			"calories_kcal":           a.Calories,
			"avg_hr_bpm":              a.AverageHR,
			"max_hr_bpm":              a.MaxHR,
			"step_count":              a.Steps,
			"avg_speed_mps":           a.AverageSpeed,
			"pace_per_km":             pace(a.AverageSpeed),
		}
	}
	return out
}

func pace(speed *float64) *string {
	if speed == nil {
		return nil
	}
	return nonEmpty(core.FormatPace(*speed))
}

// Activity returns one activity with timing, distance, heart rate, cadence,
// power and training effect. Weather is attached when available.
func Activity(ctx context.Context, up api.Upstream, id int64) (Result, error) {
	raw, err := up.Activity(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No activity found with ID %d", id), nil
	}

	r := Result{
		"activity_id": raw.ActivityID,
		"name":        raw.ActivityName,
	}
	if t := raw.ActivityType; t != nil {
		r["type"] = t.TypeKey
		r["parent_type_id"] = t.ParentTypeID
	}
	if s := raw.Summary; s != nil {
		r["start_time_local"] = s.StartTimeLocal
		r["start_time_gmt"] = s.StartTimeGMT
		r["duration_seconds"] = s.Duration
		r["moving_duration_seconds"] = s.MovingDuration
		r["elapsed_duration_seconds"] = s.ElapsedDuration
		r["distance_meters"] = s.Distance
		r["avg_speed_mps"] = s.AverageSpeed
		r["max_speed_mps"] = s.MaxSpeed
		r["pace_per_km"] = pace(s.AverageSpeed)
		r["avg_hr_bpm"] = s.AverageHR
		r["max_hr_bpm"] = s.MaxHR
		r["min_hr_bpm"] = s.MinHR
		r["calories_kcal"] = s.Calories
		r["avg_cadence_spm"] = s.AverageRunCadence
		r["max_cadence_spm"] = s.MaxRunCadence
		r["avg_stride_length_cm"] = s.StrideLength
		r["step_count"] = s.Steps
		r["avg_power_watts"] = s.AveragePower
		r["max_power_watts"] = s.MaxPower
		r["normalized_power_watts"] = s.NormalizedPower
		r["aerobic_training_effect"] = s.TrainingEffect
		r["anaerobic_training_effect"] = s.AnaerobicTrainingEffect
		r["training_effect_label"] = s.TrainingEffectLabel
		r["training_load"] = s.ActivityTrainingLoad
		r["recovery_hr_bpm"] = s.RecoveryHeartRate
		r["body_battery_impact"] = s.DifferenceBodyBattery
		r["temperature_celsius"] = celsius(s.StartingTemperatureInFahrenheit)
	}
	if m := raw.Metadata; m != nil {
		r["lap_count"] = m.LapCount
		r["has_splits"] = m.HasSplits
	}

	weather, ok := attempt(ctx, "activity weather", func() (*api.ActivityWeather, error) {
		return up.ActivityWeather(ctx, id)
	})
	if ok && weather != nil {
		w := Result{
			"temperature_celsius":          celsius(weather.Temp),
			"apparent_temperature_celsius": celsius(weather.ApparentTemp),
			"humidity_percent":             weather.RelativeHumidity,
			"wind_speed_mps":               weather.WindSpeed,
			"wind_direction_degrees":       weather.WindDirection,
		}
		if weather.WeatherType != nil {
			w["conditions"] = weather.WeatherType.Desc
		}
		r["weather"] = w
	}
	return clean(r), nil
}

// ActivitySplits returns per-lap splits.
func ActivitySplits(ctx context.Context, up api.Upstream, id int64) (Result, error) {
	raw, err := up.ActivitySplits(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No splits for activity %d", id), nil
	}
	laps := make([]Result, len(raw.Laps))
	for i, l := range raw.Laps {
		laps[i] = Result{
			"lap_number":       l.LapIndex,
			"start_time":       l.StartTimeGMT,
			"distance_meters":  l.Distance,
			"duration_seconds": l.Duration,
			"avg_speed_mps":    l.AverageSpeed,
			"max_speed_mps":    l.MaxSpeed,
			"pace_per_km":      pace(l.AverageSpeed),
			"avg_hr_bpm":       l.AverageHR,
			"max_hr_bpm":       l.MaxHR,
			"calories_kcal":    l.Calories,
			"avg_cadence_spm":  l.AverageRunCadence,
			"avg_power_watts":  l.AveragePower,
			"intensity_type":   l.IntensityType,
		}
	}
	return clean(Result{
		"activity_id": raw.ActivityID,
		"lap_count":   len(laps),
		"laps":        laps,
	}), nil
}

// ActivityHRZones returns the time spent in each heart-rate zone.
func ActivityHRZones(ctx context.Context, up api.Upstream, id int64) (Result, error) {
	raw, err := up.ActivityHRZones(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No HR zone data for activity %d", id), nil
	}
	zones := make([]Result, len(raw))
	for i, z := range raw {
		zones[i] = Result{
			"zone":             z.ZoneNumber,
			"seconds_in_zone":  z.SecsInZone,
			"low_boundary_bpm": z.ZoneLowBoundary,
		}
	}
	return clean(Result{
		"activity_id": id,
		"zones":       zones,
	}), nil
}

// ActivityTypes lists the activity type codes.
func ActivityTypes(ctx context.Context, up api.Upstream) (Result, error) {
	raw, err := up.ActivityTypes(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No activity types found"), nil
	}
	types := make([]Result, len(raw))
	for i, t := range raw {
		types[i] = Result{
			"type_id":        t.TypeID,
			"type_key":       t.TypeKey,
			"display_name":   t.DisplayName,
			"parent_type_id": t.ParentTypeID,
			"is_hidden":      t.IsHidden,
		}
	}
	return clean(Result{
		"count":          len(types),
		"activity_types": types,
	}), nil
}
