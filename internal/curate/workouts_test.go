package curate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkoutByIDCuratesSegments(t *testing.T) {
	up := newStub(map[string]string{
		"Workout": `{"workoutId":42,"workoutName":"Intervals","description":"6x800","sportType":{"sportTypeId":1,"sportTypeKey":"running"},
			"workoutSegments":[{"segmentOrder":1,"sportType":{"sportTypeKey":"running"},"workoutSteps":[
				{"stepId":1,"stepOrder":1,"stepType":{"stepTypeKey":"warmup"},"endCondition":{"conditionTypeKey":"time"},"endConditionValue":600},
				{"stepId":2,"stepOrder":2,"stepType":{"stepTypeKey":"repeat"},"numberOfIterations":6,"workoutSteps":[
					{"stepId":3,"stepOrder":3,"stepType":{"stepTypeKey":"interval"},"targetType":{"workoutTargetTypeKey":"heart.rate.zone"},"zoneNumber":4,"targetValueOne":null}
				]}
			]}]}`,
	})

	got, err := WorkoutByID(context.Background(), up, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), got["workout_id"])
	assert.Equal(t, "6x800", got["workout_description"])
	assert.Equal(t, "running", got["sport_type"])
	segments := got["segments"].([]any)
	require.Len(t, segments, 1)
	steps := segments[0].(map[string]any)["steps"].([]any)
	require.Len(t, steps, 2)
	assert.Equal(t, map[string]any{
		"step_id":             1.0,
		"step_order":          1.0,
		"step_type":           "warmup",
		"end_condition":       "time",
		"end_condition_value": 600.0,
	}, steps[0])
	repeat := steps[1].(map[string]any)
	assert.Equal(t, 6.0, repeat["iteration_count"])
	assert.Equal(t, []any{map[string]any{
		"step_id":     3.0,
		"step_order":  3.0,
		"step_type":   "interval",
		"target_type": "heart.rate.zone",
		"zone_number": 4.0,
	}}, repeat["steps"])
}

func TestScheduledWorkouts(t *testing.T) {
	up := newStub(map[string]string{
		"ScheduledWorkouts": `[{"workoutScheduleId":7001,"date":"2024-02-01","workout":{"workoutId":42,"workoutName":"Intervals"}},
			{"workoutScheduleId":7002,"calendarDate":"2024-02-03","completed":true}]`,
	})

	got, err := ScheduledWorkouts(context.Background(), up, "2024-02-01", "2024-02-07")

	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"scheduled_date": "2024-02-01", "schedule_id": int64(7001), "is_completed": false, "workout_id": int64(42), "name": "Intervals"},
		map[string]any{"scheduled_date": "2024-02-03", "schedule_id": int64(7002), "is_completed": true},
	}, got["scheduled_workouts"])
}

func TestTrainingPlanWorkouts(t *testing.T) {
	t.Run("plans", func(t *testing.T) {
		up := newStub(map[string]string{"TrainingPlanWorkouts": `[
			{"planName":"Half Marathon","workoutScheduleSummaries":[
				{"scheduleDate":"2024-01-16","workoutName":"Easy Run","workoutUuid":"u-1","associatedActivityId":100},
				{"scheduleDate":"2024-01-18","workoutName":"Tempo","workoutUuid":"u-2"}]},
			{"planName":"Half Marathon","workoutScheduleSummaries":[
				{"scheduleDate":"2024-01-20","workoutName":"Long Run"}]},
			{"planName":"","workoutScheduleSummaries":[]}]`})

		got, err := TrainingPlanWorkouts(context.Background(), up, "2024-01-15")

		require.NoError(t, err)
		assert.Equal(t, Result{
			"training_plans": []any{"Half Marathon"},
			"count":          3,
			"workouts": []any{
				map[string]any{"date": "2024-01-16", "name": "Easy Run", "workout_uuid": "u-1", "completed": true},
				map[string]any{"date": "2024-01-18", "name": "Tempo", "workout_uuid": "u-2", "completed": false},
				map[string]any{"date": "2024-01-20", "name": "Long Run", "completed": false},
			},
		}, got)
		assert.Equal(t, []string{"TrainingPlanWorkouts[2024-01-15]"}, up.calls)
	})

	t.Run("no plan", func(t *testing.T) {
		got, err := TrainingPlanWorkouts(context.Background(), newStub(nil), "2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, NotFound("No training plan for 2024-01-15"), got)
	})

	t.Run("upstream error", func(t *testing.T) {
		up := newStub(nil).fail("TrainingPlanWorkouts", errors.New("graphql down"))
		_, err := TrainingPlanWorkouts(context.Background(), up, "2024-01-15")
		assert.EqualError(t, err, "graphql down")
	})
}

func TestCreateWorkoutUploadsNormalizedWorkout(t *testing.T) {
	input := map[string]any{
		"workoutName": "Easy",
		"sportType":   "running",
		"steps":       []any{map[string]any{"stepType": "interval", "endCondition": "time", "endConditionValue": 1800.0}},
	}
	ctx := context.Background()

	planned := newStub(map[string]string{
		"UploadWorkout":   `{"workoutId":42,"workoutName":"Easy"}`,
		"ScheduleWorkout": `{"workoutScheduleId":7001}`,
	})
	got, err := CreateWorkout(ctx, planned, input, "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, Result{
		"status":         "planned",
		"workout_id":     int64(42),
		"name":           "Easy",
		"scheduled_date": "2024-02-01",
		"schedule_id":    int64(7001),
	}, got)
	require.Len(t, planned.uploaded, 1)
	step := planned.uploaded[0]["workoutSegments"].([]any)[0].(map[string]any)["workoutSteps"].([]any)[0].(map[string]any)
	assert.Equal(t, "ExecutableStepDTO", step["type"])
	assert.Equal(t, 1, step["stepId"])

	unscheduled := newStub(map[string]string{"UploadWorkout": `{"workoutId":43}`}).fail("ScheduleWorkout", errors.New("date in the past"))
	got, err = CreateWorkout(ctx, unscheduled, input, "2020-01-01")
	require.NoError(t, err)
	assert.Equal(t, "created", got["status"])
	assert.Equal(t, "date in the past", got["schedule_error"])
	assert.NotContains(t, got, "scheduled_date")
}

func TestCreateWorkoutWithoutID(t *testing.T) {
	got, err := CreateWorkout(context.Background(), newStub(nil), map[string]any{"workoutName": "x"}, "")
	require.NoError(t, err)
	assert.True(t, IsNotFound(got))
}

func TestUpdateWorkoutChecksExistence(t *testing.T) {
	up := newStub(nil)

	got, err := UpdateWorkout(context.Background(), up, 42, map[string]any{"workoutName": "x"})

	require.NoError(t, err)
	assert.Equal(t, Result{"error": "No workout found with ID 42"}, got)
	assert.Empty(t, up.called("UpdateWorkout"))
}

func TestUpdateWorkoutSendsID(t *testing.T) {
	up := newStub(map[string]string{"Workout": `{"workoutId":42}`})

	got, err := UpdateWorkout(context.Background(), up, 42, map[string]any{"workoutName": "Renamed", "sportType": "cycling"})

	require.NoError(t, err)
	assert.Equal(t, Result{"status": "updated", "workout_id": int64(42), "name": "Renamed"}, got)
	require.Len(t, up.uploaded, 1)
	assert.Equal(t, int64(42), up.uploaded[0]["workoutId"])
}

func TestDeleteWorkoutUnschedulesCalendarEntries(t *testing.T) {
	up := newStub(map[string]string{
		"ScheduledWorkouts": `[
			{"workoutScheduleId":1,"date":"2024-06-03","workout":{"workoutId":42}},
			{"workoutScheduleId":2,"date":"2024-06-04","workout":{"workoutId":99}},
			{"workoutScheduleId":3,"date":"2024-06-10","workout":{"workoutId":42}}
		]`,
	})
	today := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	got, err := DeleteWorkout(context.Background(), up, 42, today)

	require.NoError(t, err)
	assert.Equal(t, []string{"ScheduledWorkouts[2024-05-02 2025-06-01]"}, up.called("ScheduledWorkouts"))
	assert.Equal(t, []string{"UnscheduleWorkout[1]", "UnscheduleWorkout[3]"}, up.called("UnscheduleWorkout"))
	assert.Equal(t, Result{
		"status":            "deleted",
		"workout_id":        int64(42),
		"unscheduled_count": 2,
		"unscheduled":       []any{
			map[string]any{"schedule_id": int64(1), "scheduled_date": "2024-06-03"},
			map[string]any{"schedule_id": int64(3), "scheduled_date": "2024-06-10"},
		},
	}, got)
}

func TestDeleteWorkoutReportsCleanupFailures(t *testing.T) {
	up := newStub(nil).fail("ScheduledWorkouts", errors.New("graphql down"))

	got, err := DeleteWorkout(context.Background(), up, 42, time.Now())

	require.NoError(t, err)
	assert.Equal(t, "deleted", got["status"])
	assert.Equal(t, []any{map[string]any{"error": "Failed to query schedules: graphql down"}}, got["unschedule_errors"])
	assert.Len(t, up.called("DeleteWorkout"), 1)
}

func TestDeleteWorkoutFailure(t *testing.T) {
	boom := errors.New("forbidden")
	up := newStub(nil).fail("DeleteWorkout", boom)

	_, err := DeleteWorkout(context.Background(), up, 42, time.Now())

	assert.ErrorIs(t, err, boom)
}
