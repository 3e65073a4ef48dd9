package curate

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

// Stress buckets, upper bounds exclusive.
const (
	stressRestMax   = 26
	stressLowMax    = 51
	stressMediumMax = 76
)

// Stats returns the daily summary: steps, calories, heart rate, stress,
// body battery, SpO2 and respiration.
func Stats(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.UserSummary(ctx, date)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No stats for %s", date), nil
	}
	return curateStats(raw), nil
}

func curateStats(s *api.UserSummary) Result {
	return clean(Result{
		"date":                        s.CalendarDate,
		"total_steps":                 s.TotalSteps,
		"daily_step_goal":             s.DailyStepGoal,
		"distance_meters":             s.TotalDistanceMeters,
		"floors_ascended":             s.FloorsAscended,
		"total_calories_kcal":         s.TotalKilocalories,
		"active_calories_kcal":        s.ActiveKilocalories,
		"highly_active_seconds":       s.HighlyActiveSeconds,
		"active_seconds":              s.ActiveSeconds,
		"sedentary_seconds":           s.SedentarySeconds,
		"moderate_intensity_minutes":  s.ModerateIntensityMinutes,
		"vigorous_intensity_minutes":  s.VigorousIntensityMinutes,
		"intensity_minutes_goal":      s.IntensityMinutesGoal,
		"min_heart_rate_bpm":          s.MinHeartRate,
		"max_heart_rate_bpm":          s.MaxHeartRate,
		"resting_heart_rate_bpm":      s.RestingHeartRate,
		"last_7_days_avg_resting_bpm": s.LastSevenDaysAvgRestingHeartRate,
		"avg_stress_level":            s.AverageStressLevel,
		"max_stress_level":            s.MaxStressLevel,
		"body_battery_charged":        s.BodyBatteryChargedValue,
		"body_battery_drained":        s.BodyBatteryDrainedValue,
		"body_battery_highest":        s.BodyBatteryHighestValue,
		"body_battery_lowest":         s.BodyBatteryLowestValue,
		"body_battery_current":        s.BodyBatteryMostRecentValue,
		"avg_spo2_percent":            s.AverageSpo2,
		"lowest_spo2_percent":         s.LowestSpo2,
		"avg_waking_breaths_per_min":  s.AvgWakingRespirationValue,
		"highest_breaths_per_min":     s.HighestRespirationValue,
		"lowest_breaths_per_min":      s.LowestRespirationValue,
	})
}

// Sleep returns the nightly sleep summary with phases in hours.
func Sleep(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.SleepData(ctx, date)
	if err != nil {
		return nil, err
	}
	r := curateSleep(raw)
	if r == nil {
		return NotFound("No sleep data for %s", date), nil
	}
	return r, nil
}

func curateSleep(s *api.SleepData) Result {
	if s == nil || s.DailySleepDTO == nil {
		return nil
	}
	dto := s.DailySleepDTO
	r := Result{
		"date":                   dto.CalendarDate,
		"total_sleep_hours":      scaledPositive(dto.SleepTimeSeconds, 3600),
		"deep_sleep_hours":       scaledPositive(dto.DeepSleepSeconds, 3600),
		"light_sleep_hours":      scaledPositive(dto.LightSleepSeconds, 3600),
		"rem_sleep_hours":        scaledPositive(dto.RemSleepSeconds, 3600),
		"awake_hours":            scaledPositive(dto.AwakeSleepSeconds, 3600),
		"resting_heart_rate_bpm": dto.RestingHeartRate,
		"avg_sleep_stress":       dto.AvgSleepStress,
		"avg_breaths_per_min":    dto.AverageRespiration,
	}
	if sc := dto.SleepScores; sc != nil && sc.Overall != nil {
		r["sleep_score"] = sc.Overall.Value
		r["sleep_score_qualifier"] = sc.Overall.QualifierKey
	}
	if spo2 := s.WellnessSpO2SleepSummary; spo2 != nil {
		r["avg_spo2_percent"] = spo2.AverageSpo2
		r["lowest_spo2_percent"] = spo2.LowestSpo2
	}
	if s.AvgOvernightHrv != nil && *s.AvgOvernightHrv > 0 {
		r["avg_overnight_hrv_ms"] = s.AvgOvernightHrv
	}
	return clean(r)
}

// Stress returns average and maximum stress plus the share of valid samples
// in each stress bucket.
func Stress(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.StressData(ctx, date)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No stress data for %s", date), nil
	}
	r := Result{
		"date":             raw.CalendarDate,
		"max_stress_level": raw.MaxStressLevel,
		"avg_stress_level": raw.AvgStressLevel,
	}
	for k, v := range StressDistribution(raw.StressValuesArray) {
		r[k] = v
	}
	return clean(r), nil
}

// StressDistribution buckets positive samples into rest (<26), low (26-50),
// medium (51-75) and high (>=76) and returns each bucket's percentage,
// rounded to one decimal. It returns nil when no sample is positive.
func StressDistribution(samples []api.Sample) map[string]float64 {
	var rest, low, medium, high, total int
	for _, s := range samples {
		v := s.Value()
		if v == nil || *v <= 0 {
			continue
		}
		total++
		switch {
		case *v < stressRestMax:
			rest++
		case *v < stressLowMax:
			low++
		case *v < stressMediumMax:
			medium++
		default:
			high++
		}
	}
	if total == 0 {
		return nil
	}
	pct := func(n int) float64 { return round1(float64(n) / float64(total) * 100) }
	return map[string]float64{
		"rest_percent":          pct(rest),
		"low_stress_percent":    pct(low),
		"medium_stress_percent": pct(medium),
		"high_stress_percent":   pct(high),
	}
}

// HeartRate returns resting, minimum and maximum heart rate and the mean of
// the valid samples.
func HeartRate(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.HeartRates(ctx, date)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No heart rate data for %s", date), nil
	}
	return clean(Result{
		"date":                        raw.CalendarDate,
		"max_heart_rate_bpm":          raw.MaxHeartRate,
		"min_heart_rate_bpm":          raw.MinHeartRate,
		"resting_heart_rate_bpm":      raw.RestingHeartRate,
		"last_7_days_avg_resting_bpm": raw.LastSevenDaysAvgRestingHeartRate,
		"avg_heart_rate_bpm":          MeanPositive(raw.HeartRateValues),
	}), nil
}

// MeanPositive averages the positive samples, rounded to one decimal. It
// returns nil when there are none.
func MeanPositive(samples []api.Sample) *float64 {
	var sum float64
	var n int
	for _, s := range samples {
		if v := s.Value(); v != nil && *v > 0 {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	mean := round1(sum / float64(n))
	return &mean
}

// Respiration returns breathing rates in breaths per minute.
func Respiration(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.RespirationData(ctx, date)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No respiration data for %s", date), nil
	}
	return clean(Result{
		"date":                       raw.CalendarDate,
		"lowest_breaths_per_min":     raw.LowestRespirationValue,
		"highest_breaths_per_min":    raw.HighestRespirationValue,
		"avg_waking_breaths_per_min": raw.AvgWakingRespirationValue,
		"avg_sleep_breaths_per_min":  raw.AvgSleepRespirationValue,
	}), nil
}

// BodyBattery returns charge and drain per day with the activity events
// that moved it.
func BodyBattery(ctx context.Context, up api.Upstream, startDate, endDate string) (Result, error) {
	raw, err := up.BodyBattery(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No body battery data between %s and %s", startDate, endDate), nil
	}
	days := make([]Result, len(raw))
	for i, day := range raw {
		entry := bodyBatteryDay(day)
		if len(day.ActivityEvents) > 0 {
			events := make([]Result, len(day.ActivityEvents))
			for j, e := range day.ActivityEvents {
				events[j] = Result{
					"event_type":          e.EventType,
					"start_time":          e.EventStartTimeGmt,
					"duration_minutes":    scaled(e.DurationInMilliseconds, 60000),
					"body_battery_impact": e.BodyBatteryImpact,
					"feedback":            e.ShortFeedback,
				}
			}
			entry["events"] = events
		}
		if fb := day.DynamicFeedback; fb != nil {
			entry["current_feedback"] = fb.FeedbackShortType
			entry["body_battery_level"] = fb.BodyBatteryLevel
		}
		days[i] = entry
	}
	return clean(Result{"days": days}), nil
}

func bodyBatteryDay(day api.BodyBatteryDay) Result {
	return Result{
		"calendar_date":  day.Date,
		"charged_points": day.Charged,
		"drained_points": day.Drained,
	}
}

// SpO2 returns pulse-ox averages and the latest reading.
func SpO2(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.SpO2Data(ctx, date)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return NotFound("No SpO2 data for %s", date), nil
	}
	return clean(Result{
		"date":                         raw.CalendarDate,
		"avg_spo2_percent":             raw.AverageSpO2,
		"lowest_spo2_percent":          raw.LowestSpO2,
		"latest_spo2_percent":          raw.LatestSpO2,
		"latest_reading_time":          raw.LatestSpO2TimestampLocal,
		"last_7_days_avg_spo2_percent": raw.LastSevenDaysAvgSpO2,
		"avg_sleep_spo2_percent":       raw.AvgSleepSpO2,
	}), nil
}

// TrainingReadiness returns the readiness score and its contributing
// factors. Several evaluations on one day are returned under "entries".
func TrainingReadiness(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.TrainingReadiness(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No training readiness data for %s", date), nil
	}
	if len(raw) == 1 {
		return curateReadiness(raw[0]), nil
	}
	entries := make([]Result, len(raw))
	for i, r := range raw {
		entries[i] = curateReadiness(r)
	}
	return Result{"entries": entries}, nil
}

func curateReadiness(r api.TrainingReadiness) Result {
	return clean(Result{
		"date":                         r.CalendarDate,
		"readiness_level":              r.Level,
		"readiness_score":              r.Score,
		"feedback":                     r.FeedbackShort,
		"sleep_score":                  r.SleepScore,
		"sleep_factor_percent":         r.SleepScoreFactorPercent,
		"recovery_time_hours":          scaledPositive(r.RecoveryTime, 60),
		"recovery_factor_percent":      r.RecoveryTimeFactorPercent,
		"training_load_factor_percent": r.AcwrFactorPercent,
		"acute_training_load":          r.AcuteLoad,
		"hrv_factor_percent":           r.HrvFactorPercent,
		"hrv_weekly_avg_ms":            r.HrvWeeklyAverage,
	})
}

func curateHRVSnapshot(h *api.HRVData) Result {
	if h == nil || h.HrvSummary == nil {
		return nil
	}
	s := h.HrvSummary
	r := Result{
		"last_night_avg_hrv_ms": s.LastNightAvg,
		"weekly_avg_hrv_ms":     s.WeeklyAvg,
		"hrv_status":            s.Status,
	}
	if b := s.Baseline; b != nil {
		r["baseline_low_ms"] = b.BalancedLow
		r["baseline_upper_ms"] = b.BalancedUpper
	}
	return clean(r)
}

// CoachingSnapshot fetches stats, sleep, training readiness, body battery
// and HRV for one day concurrently. Parts without data are left out; the
// call fails only when every part failed.
func CoachingSnapshot(ctx context.Context, up api.Upstream, date string) (Result, error) {
	var (
		stats     *api.UserSummary
		sleep     *api.SleepData
		readiness []api.TrainingReadiness
		battery   []api.BodyBatteryDay
		hrv       *api.HRVData
		errs      [5]error
	)
	var g errgroup.Group
	g.Go(func() error { stats, errs[0] = up.UserSummary(ctx, date); return nil })
	g.Go(func() error { sleep, errs[1] = up.SleepData(ctx, date); return nil })
	g.Go(func() error { readiness, errs[2] = up.TrainingReadiness(ctx, date); return nil })
	g.Go(func() error { battery, errs[3] = up.BodyBattery(ctx, date, date); return nil })
	g.Go(func() error { hrv, errs[4] = up.HRVData(ctx, date); return nil })
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(errs) {
		return nil, errs[0]
	}

	r := Result{"snapshot_date": date}
	if errs[0] == nil && stats != nil {
		r["stats"] = undated(curateStats(stats))
	}
	if errs[1] == nil {
		if s := curateSleep(sleep); s != nil {
			r["sleep"] = undated(s)
		}
	}
	if errs[2] == nil && len(readiness) > 0 {
		r["training_readiness"] = undated(curateReadiness(readiness[0]))
	}
	if errs[3] == nil && len(battery) > 0 {
		r["body_battery"] = bodyBatteryDay(battery[0])
	}
	if errs[4] == nil {
		if h := curateHRVSnapshot(hrv); h != nil {
			r["hrv"] = h
		}
	}
	for i, err := range errs {
		if err != nil {
			slog.DebugContext(ctx, "snapshot part failed", slog.String("part", snapshotParts[i]), slog.Any("error", err))
		}
	}
	return clean(r), nil
}

var snapshotParts = [5]string{"stats", "sleep", "training readiness", "body battery", "hrv"}

// undated drops the per-part date, which the snapshot carries once at the
// top level.
func undated(r Result) Result {
	delete(r, "date")
	return r
}
