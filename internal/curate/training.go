package curate

import (
	"context"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/core"
)

// MaxMetrics returns VO2 max, fitness age, lactate threshold, max heart
// rate and FTP. Several records are returned under "metrics".
func MaxMetrics(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.MaxMetrics(ctx, date)
	if err != nil {
		return nil, err
	}
	var metrics []Result
	for _, m := range raw {
		r := Result{"date": date}
		if g := m.Generic; g != nil {
			r["date"] = firstString(g.CalendarDate, &date)
			r["vo2_max"] = g.VO2MaxValue
			r["vo2_max_precise"] = g.VO2MaxPreciseValue
			r["fitness_age_years"] = g.FitnessAge
			r["fitness_age_description"] = g.FitnessAgeDescription
			r["max_met_category"] = g.MaxMetCategory
			r["chronological_age_years"] = g.ChronologicalAge
			r["lactate_threshold_hr_bpm"] = g.LactateThresholdHR
			r["lactate_threshold_speed_mps"] = g.LactateThresholdSpeed
			r["max_heart_rate_bpm"] = g.MaxHeartRate
			r["ftp_watts"] = g.FTP
		}
		if c := m.Cycling; c != nil {
			r["cycling_vo2_max"] = c.VO2MaxValue
			r["cycling_vo2_max_precise"] = c.VO2MaxPreciseValue
		}
		if r = clean(r); len(r) > 1 {
			metrics = append(metrics, r)
		}
	}
	switch len(metrics) {
	case 0:
		return NotFound("No max metrics for %s", date), nil
	case 1:
		return metrics[0], nil
	}
	return Result{"metrics": metrics}, nil
}

// HRV returns the overnight HRV summary with its baseline.
func HRV(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.HRVData(ctx, date)
	if err != nil {
		return nil, err
	}
	if raw == nil || raw.HrvSummary == nil {
		return NotFound("No HRV data for %s", date), nil
	}
	s := raw.HrvSummary
	r := Result{
		"date":                        firstString(s.CalendarDate, &date),
		"last_night_avg_hrv_ms":       s.LastNightAvg,
		"last_night_5min_high_hrv_ms": s.LastNight5MinHigh,
		"weekly_avg_hrv_ms":           s.WeeklyAvg,
		"hrv_status":                  s.Status,
		"feedback":                    s.FeedbackPhrase,
	}
	if b := s.Baseline; b != nil {
		r["baseline_balanced_low_ms"] = b.BalancedLow
		r["baseline_balanced_upper_ms"] = b.BalancedUpper
	}
	return clean(r), nil
}

// TrainingStatus returns training status, acute:chronic load, VO2 max and
// monthly load balance. With several devices the lowest device id wins.
func TrainingStatus(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.TrainingStatus(ctx, date)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No training status for %s", date), nil
	}
	r := Result{"date": date}
	if d := raw.FirstDeviceStatus(); d != nil {
		r["date"] = firstString(d.CalendarDate, &date)
		r["training_status"] = d.TrainingStatus
		r["training_status_feedback"] = d.TrainingStatusFeedbackPhrase
		r["sport_type"] = d.Sport
		r["fitness_trend"] = d.FitnessTrend
		if a := d.AcuteTrainingLoad; a != nil {
			r["acute_load"] = a.DailyTrainingLoadAcute
			r["chronic_load"] = a.DailyTrainingLoadChronic
			r["load_ratio"] = a.DailyAcuteChronicWorkloadRatio
			r["acwr_status"] = a.AcwrStatus
			r["acwr_percent"] = a.AcwrPercent
			r["optimal_chronic_load_min"] = a.MinTrainingLoadChronic
			r["optimal_chronic_load_max"] = a.MaxTrainingLoadChronic
		}
	}
	if v := raw.MostRecentVO2Max; v != nil && v.Generic != nil {
		r["vo2_max"] = v.Generic.VO2MaxValue
		r["vo2_max_precise"] = v.Generic.VO2MaxPreciseValue
	}
	if lb := raw.FirstLoadBalance(); lb != nil {
		r["monthly_load_aerobic_low"] = lb.MonthlyLoadAerobicLow
		r["monthly_load_aerobic_high"] = lb.MonthlyLoadAerobicHigh
		r["monthly_load_anaerobic"] = lb.MonthlyLoadAnaerobic
		r["training_balance_feedback"] = lb.TrainingBalanceFeedbackPhrase
	}
	if r = clean(r); len(r) == 1 {
		return NotFound("No training status for %s", date), nil
	}
	return r, nil
}

// ProgressSummary aggregates one metric (distance, duration, elevationGain
// or movingDuration) between two dates.
func ProgressSummary(ctx context.Context, up api.Upstream, startDate, endDate, metric string) (Result, error) {
	raw, err := up.ProgressSummary(ctx, startDate, endDate, metric)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No progress data for %s between %s and %s", metric, startDate, endDate), nil
	}
	r := Result{
		"metric":     metric,
		"start_date": startDate,
		"end_date":   endDate,
	}
	switch metric {
	case "distance":
		r["total_distance_meters"] = raw.TotalDistance
		r["avg_distance_meters"] = raw.AvgDistance
	case "duration":
		r["total_duration_seconds"] = raw.TotalDuration
		r["avg_duration_seconds"] = raw.AvgDuration
	case "elevationGain":
		r["total_elevation_meters"] = raw.TotalElevationGain
		r["avg_elevation_meters"] = raw.AvgElevationGain
	case "movingDuration":
		r["total_moving_seconds"] = raw.TotalMovingDuration
		r["avg_moving_seconds"] = raw.AvgMovingDuration
	}
	r["aerobic_effect"] = raw.AerobicEffect
	r["anaerobic_effect"] = raw.AnaerobicEffect
	r["training_load"] = raw.TrainingLoad
	r["activity_count"] = raw.NumberOfActivities
	return clean(r), nil
}

// RacePredictions returns predicted finish times in seconds and as text.
func RacePredictions(ctx context.Context, up api.Upstream) (Result, error) {
	raw, err := up.RacePredictions(ctx)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No race predictions available"), nil
	}
	r := Result{"date": raw.CalendarDate}
	for _, p := range []struct {
		name string
		secs *float64
	}{
		{"5k", raw.Time5K},
		{"10k", raw.Time10K},
		{"half_marathon", raw.TimeHalfMarathon},
		{"marathon", raw.TimeMarathon},
	} {
		if p.secs == nil {
			continue
		}
		r["time_"+p.name+"_seconds"] = p.secs
		r["time_"+p.name+"_formatted"] = core.FormatDuration(*p.secs)
	}
	if len(r) == 1 {
		return NotFound("No race predictions available"), nil
	}
	return clean(r), nil
}

// Goals lists goals with the given status: active, future or past.
func Goals(ctx context.Context, up api.Upstream, status string) (Result, error) {
	raw, err := up.Goals(ctx, status)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No %s goals found", status), nil
	}
	goals := make([]Result, len(raw))
	for i, g := range raw {
		goals[i] = Result{
			"goal_id":       g.GoalID,
			"goal_type":     g.GoalType,
			"goal_name":     g.GoalName,
			"goal_status":   g.GoalStatus,
			"start_date":    g.StartDate,
			"end_date":      g.EndDate,
			"target_value":  g.GoalValue,
			"current_value": g.CurrentValue,
			"activity_type": g.ActivityType,
		}
	}
	return clean(Result{
		"count": len(goals),
		"goals": goals,
	}), nil
}

// PersonalRecords lists personal bests across all activities.
func PersonalRecords(ctx context.Context, up api.Upstream) (Result, error) {
	raw, err := up.PersonalRecords(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No personal records found"), nil
	}
	records := make([]Result, len(raw))
	for i, pr := range raw {
		records[i] = Result{
			"record_id":      pr.ID,
			"record_type_id": pr.TypeID,
			"activity_id":    pr.ActivityID,
			"activity_name":  pr.ActivityName,
			"activity_type":  pr.ActivityType,
			"record_value":   pr.Value,
			"achieved_at":    pr.PrStartTimeGmtFormatted,
		}
	}
	return clean(Result{
		"count":   len(records),
		"records": records,
	}), nil
}
