package curate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/core"
	"github.com/colthorp/garmin-mcp-go/internal/workout"
)

// Workouts lists a page of the workout library.
func Workouts(ctx context.Context, up api.Upstream, start, limit int) (Result, error) {
	raw, err := up.Workouts(ctx, max(start, 0), max(limit, 1))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No workouts found"), nil
	}
	out := make([]Result, len(raw))
	for i := range raw {
		out[i] = workoutSummary(&raw[i])
	}
	return clean(Result{
		"count":    len(out),
		"workouts": out,
	}), nil
}

// WorkoutByID returns one workout including its step structure.
func WorkoutByID(ctx context.Context, up api.Upstream, id int64) (Result, error) {
	w, err := up.Workout(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return NotFound("No workout found with ID %d", id), nil
	}
	r := workoutSummary(w)
	r["avg_training_speed_mps"] = w.AvgTrainingSpeed
	segments := make([]Result, 0, len(w.WorkoutSegments))
	for _, seg := range w.WorkoutSegments {
		segments = append(segments, curateSegment(seg))
	}
	r["segments"] = segments
	return clean(r), nil
}

func workoutSummary(w *api.Workout) Result {
	var sport *string
	if w.SportType != nil {
		sport = w.SportType.SportTypeKey
	}
	return Result{
		"workout_id":                 w.WorkoutID,
		"name":                       w.WorkoutName,
		"sport_type":                 sport,
		"workout_description":        w.Description,
		"provider":                   w.WorkoutProvider,
		"created_date":               w.CreatedDate,
		"updated_date":               w.UpdatedDate,
		"estimated_duration_seconds": w.EstimatedDurationInSecs,
		"estimated_distance_meters":  w.EstimatedDistanceInMeters,
	}
}

func curateSegment(seg map[string]any) Result {
	steps, _ := seg["workoutSteps"].([]any)
	return Result{
		"segment_order": seg["segmentOrder"],
		"sport_type":    nested(seg, "sportType", "sportTypeKey"),
		"steps":         curateSteps(steps),
	}
}

func curateSteps(steps []any) []Result {
	out := make([]Result, 0, len(steps))
	for _, s := range steps {
		step, ok := s.(map[string]any)
		if !ok {
			continue
		}
		r := Result{
			"step_id":             step["stepId"],
			"step_order":          step["stepOrder"],
			"step_type":           nested(step, "stepType", "stepTypeKey"),
			"end_condition":       nested(step, "endCondition", "conditionTypeKey"),
			"end_condition_value": step["endConditionValue"],
			"target_type":         nested(step, "targetType", "workoutTargetTypeKey"),
			"target_value_one":    step["targetValueOne"],
			"target_value_two":    step["targetValueTwo"],
			"zone_number":         step["zoneNumber"],
			"iteration_count":     step["numberOfIterations"],
		}
		if children, ok := step["workoutSteps"].([]any); ok && len(children) > 0 {
			r["steps"] = curateSteps(children)
		}
		out = append(out, r)
	}
	return out
}

// nested reads m[outer][inner] from a generic tree, or nil.
func nested(m map[string]any, outer, inner string) any {
	sub, ok := m[outer].(map[string]any)
	if !ok {
		return nil
	}
	return sub[inner]
}

// ScheduledWorkouts lists the workouts on the calendar between two dates.
func ScheduledWorkouts(ctx context.Context, up api.Upstream, startDate, endDate string) (Result, error) {
	raw, err := up.ScheduledWorkouts(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No workouts scheduled between %s and %s", startDate, endDate), nil
	}
	out := make([]Result, len(raw))
	for i := range raw {
		out[i] = curateScheduled(&raw[i])
	}
	return clean(Result{
		"count":              len(out),
		"date_range":         dateRange(startDate, endDate),
		"scheduled_workouts": out,
	}), nil
}

// TrainingPlanWorkouts lists the training plan workouts of the week
// containing date, with the names of the plans they belong to.
func TrainingPlanWorkouts(ctx context.Context, up api.Upstream, date string) (Result, error) {
	raw, err := up.TrainingPlanWorkouts(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No training plan for %s", date), nil
	}
	plans := []string{}
	workouts := []Result{}
	for _, p := range raw {
		if p.PlanName != nil && *p.PlanName != "" && !slices.Contains(plans, *p.PlanName) {
			plans = append(plans, *p.PlanName)
		}
		for _, w := range p.Workouts {
			workouts = append(workouts, Result{
				"date":         w.ScheduleDate,
				"name":         w.WorkoutName,
				"workout_uuid": w.WorkoutUUID,
				"completed":    w.AssociatedActivityID != nil,
			})
		}
	}
	return clean(Result{
		"training_plans": plans,
		"count":          len(workouts),
		"workouts":       workouts,
	}), nil
}

func curateScheduled(s *api.ScheduledWorkout) Result {
	r := Result{
		"scheduled_date": s.ScheduledOn(),
		"schedule_id":    s.WorkoutScheduleID,
		"is_completed":   s.Completed != nil && *s.Completed,
	}
	if w := s.Workout; w != nil {
		summary := workoutSummary(w)
		for _, k := range []string{"workout_id", "name", "sport_type", "provider", "estimated_duration_seconds", "estimated_distance_meters"} {
			r[k] = summary[k]
		}
	}
	return r
}

// CreateWorkout uploads a workout and, when date is set, schedules it. A
// failed schedule does not undo the upload; it is reported in
// schedule_error instead.
func CreateWorkout(ctx context.Context, up api.Upstream, input map[string]any, date string) (Result, error) {
	prepared, err := workout.Prepare(input)
	if err != nil {
		return nil, fmt.Errorf("invalid workout: %w", err)
	}
	created, err := up.UploadWorkout(ctx, prepared)
	if err != nil {
		return nil, err
	}
	if created == nil || created.WorkoutID == nil {
		return NotFound("Failed to create workout: no workout ID returned"), nil
	}
	id := *created.WorkoutID
	r := Result{
		"status":       "created",
		"workout_id":   id,
		"name":         created.WorkoutName,
		"created_date": created.CreatedDate,
	}
	if date != "" {
		scheduled, err := up.ScheduleWorkout(ctx, id, date)
		if err != nil {
			r["schedule_error"] = err.Error()
			r["message"] = "Workout created but scheduling failed"
		} else {
			r["status"] = "planned"
			r["scheduled_date"] = date
			if scheduled != nil {
				r["schedule_id"] = scheduled.WorkoutScheduleID
			}
		}
	}
	return clean(r), nil
}

// UpdateWorkout replaces the definition of an existing workout.
func UpdateWorkout(ctx context.Context, up api.Upstream, id int64, input map[string]any) (Result, error) {
	existing, err := up.Workout(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return NotFound("No workout found with ID %d", id), nil
	}
	prepared, err := workout.Prepare(input)
	if err != nil {
		return nil, fmt.Errorf("invalid workout: %w", err)
	}
	prepared["workoutId"] = id

	updated, err := up.UpdateWorkout(ctx, id, prepared)
	if err != nil {
		return nil, err
	}
	r := Result{
		"status":     "updated",
		"workout_id": id,
		"name":       prepared["workoutName"],
	}
	if updated != nil {
		if updated.WorkoutName != nil {
			r["name"] = updated.WorkoutName
		}
		r["updated_date"] = updated.UpdatedDate
	}
	return clean(r), nil
}

// DeleteWorkout removes a workout from the library after unscheduling its
// calendar entries between 30 days before and a year after today. Cleanup
// failures are reported but do not stop the delete.
func DeleteWorkout(ctx context.Context, up api.Upstream, id int64, today time.Time) (Result, error) {
	var unscheduled, failures []Result

	from := core.FormatDate(today.AddDate(0, 0, -core.UnscheduleLookbackDays))
	to := core.FormatDate(today.AddDate(0, 0, core.UnscheduleLookaheadDays))
	entries, err := up.ScheduledWorkouts(ctx, from, to)
	if err != nil {
		failures = append(failures, Result{"error": "Failed to query schedules: " + err.Error()})
	}
	for i := range entries {
		e := &entries[i]
		if e.Workout == nil || e.Workout.WorkoutID == nil || *e.Workout.WorkoutID != id || e.WorkoutScheduleID == nil {
			continue
		}
		sid := *e.WorkoutScheduleID
		if err := up.UnscheduleWorkout(ctx, sid); err != nil {
			failures = append(failures, Result{"schedule_id": sid, "error": err.Error()})
			continue
		}
		unscheduled = append(unscheduled, Result{"schedule_id": sid, "scheduled_date": e.ScheduledOn()})
	}

	if err := up.DeleteWorkout(ctx, id); err != nil {
		return nil, err
	}
	r := Result{
		"status":     "deleted",
		"workout_id": id,
	}
	if len(unscheduled) > 0 {
		r["unscheduled_count"] = len(unscheduled)
		r["unscheduled"] = unscheduled
	}
	if len(failures) > 0 {
		r["unschedule_errors"] = failures
	}
	return clean(r), nil
}

// ScheduleWorkout places a library workout on the calendar.
func ScheduleWorkout(ctx context.Context, up api.Upstream, id int64, date string) (Result, error) {
	s, err := up.ScheduleWorkout(ctx, id, date)
	if err != nil {
		return nil, err
	}
	r := Result{
		"status":         "scheduled",
		"workout_id":     id,
		"scheduled_date": date,
	}
	if s != nil {
		r["schedule_id"] = s.WorkoutScheduleID
	}
	return clean(r), nil
}

// UnscheduleWorkout removes a calendar entry. The library workout stays.
func UnscheduleWorkout(ctx context.Context, up api.Upstream, scheduleID int64) (Result, error) {
	if err := up.UnscheduleWorkout(ctx, scheduleID); err != nil {
		return nil, err
	}
	return Result{"status": "unscheduled", "schedule_id": scheduleID}, nil
}

// RescheduleWorkout moves a calendar entry to another date.
func RescheduleWorkout(ctx context.Context, up api.Upstream, scheduleID int64, date string) (Result, error) {
	s, err := up.RescheduleWorkout(ctx, scheduleID, date)
	if err != nil {
		return nil, err
	}
	r := Result{
		"status":         "rescheduled",
		"schedule_id":    scheduleID,
		"scheduled_date": date,
	}
	if s != nil && s.Workout != nil {
		r["workout_name"] = s.Workout.WorkoutName
	}
	return clean(r), nil
}
