package curate

import (
	"context"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

// WeighIns lists the weight measurements recorded in a date range.
func WeighIns(ctx context.Context, up api.Upstream, startDate, endDate string) (Result, error) {
	raw, err := up.WeighIns(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	var metrics []api.WeightMetric
	if raw != nil {
		metrics = raw.Metrics()
	}
	if len(metrics) == 0 {
		return NotFound("No weight data between %s and %s", startDate, endDate), nil
	}
	out := make([]Result, len(metrics))
	for i := range metrics {
		out[i] = curateWeight(&metrics[i])
	}
	return clean(Result{
		"count":      len(out),
		"date_range": dateRange(startDate, endDate),
		"weigh_ins":  out,
	}), nil
}

// BodyComposition reports the measurements of a date range and their average.
func BodyComposition(ctx context.Context, up api.Upstream, startDate, endDate string) (Result, error) {
	if endDate == "" {
		endDate = startDate
	}
	raw, err := up.BodyComposition(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if raw == nil || (len(raw.DateWeightList) == 0 && raw.TotalAverage == nil) {
		return NotFound("No body composition data between %s and %s", startDate, endDate), nil
	}
	measurements := make([]Result, len(raw.DateWeightList))
	for i := range raw.DateWeightList {
		measurements[i] = curateWeight(&raw.DateWeightList[i])
	}
	r := Result{
		"date_range":   dateRange(startDate, endDate),
		"measurements": measurements,
	}
	if raw.TotalAverage != nil {
		r["total_average"] = curateWeight(raw.TotalAverage)
	}
	return clean(r), nil
}

func curateWeight(m *api.WeightMetric) Result {
	return Result{
		"calendar_date":      m.CalendarDate,
		"weight_kg":          scaled(m.Weight, 1000),
		"body_mass_index":    m.BMI,
		"body_fat_percent":   m.BodyFat,
		"body_water_percent": m.BodyWater,
		"bone_mass_kg":       scaled(m.BoneMass, 1000),
		"muscle_mass_kg":     scaled(m.MuscleMass, 1000),
		"source_type":        m.SourceType,
		"timestamp_gmt":      m.TimestampGMT,
	}
}

// AddWeighIn records a manual weight entry.
func AddWeighIn(ctx context.Context, up api.Upstream, in api.WeighIn) (Result, error) {
	if in.UnitKey == "" {
		in.UnitKey = "kg"
	}
	if err := up.AddWeighIn(ctx, in); err != nil {
		return nil, err
	}
	return clean(Result{
		"status":          "recorded",
		"weight_value":    in.Weight,
		"unit":            in.UnitKey,
		"local_timestamp": nonEmpty(in.LocalTimestamp),
	}), nil
}

// DeleteWeighIns removes the weight entries of one day, or only the latest
// when all is false.
func DeleteWeighIns(ctx context.Context, up api.Upstream, date string, all bool) (Result, error) {
	n, err := up.DeleteWeighIns(ctx, date, all)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return NotFound("No weigh-ins to delete on %s", date), nil
	}
	return Result{
		"status":        "deleted",
		"calendar_date": date,
		"deleted_count": n,
	}, nil
}

// SetBloodPressure records a manual blood pressure reading.
func SetBloodPressure(ctx context.Context, up api.Upstream, bp api.BloodPressure) (Result, error) {
	if err := up.SetBloodPressure(ctx, bp); err != nil {
		return nil, err
	}
	return clean(Result{
		"status":         "recorded",
		"systolic_mmhg":  bp.Systolic,
		"diastolic_mmhg": bp.Diastolic,
		"pulse_bpm":      bp.Pulse,
		"notes":          nonEmpty(bp.Notes),
	}), nil
}

// AddHydration logs water intake and reports the day's running total.
func AddHydration(ctx context.Context, up api.Upstream, h api.Hydration) (Result, error) {
	log, err := up.AddHydration(ctx, h)
	if err != nil {
		return nil, err
	}
	r := Result{
		"status":   "recorded",
		"added_ml": h.ValueInML,
	}
	if log != nil {
		r["calendar_date"] = log.CalendarDate
		r["total_intake_ml"] = log.ValueInML
		r["goal_ml"] = log.GoalInML
		r["sweat_loss_ml"] = log.SweatLossInML
	}
	return clean(r), nil
}
