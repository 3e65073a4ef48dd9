package cli

import (
	"context"

	"github.com/colthorp/garmin-mcp-go/internal/api"
	"github.com/colthorp/garmin-mcp-go/internal/capabilities"
	"github.com/colthorp/garmin-mcp-go/internal/core"
	"github.com/colthorp/garmin-mcp-go/internal/curate"
)

// Catalog returns every tool the server exposes, in listing order.
func Catalog() []*Tool {
	var tools []*Tool
	for _, group := range [][]*Tool{
		sessionTools(),
		activityTools(),
		healthTools(),
		trainingTools(),
		profileTools(),
		gearTools(),
		bodyTools(),
		workoutTools(),
	} {
		tools = append(tools, group...)
	}
	return tools
}

func activityTools() []*Tool {
	activityID := jsonSchema(map[string]any{
		"activity_id": propInteger("Activity ID"),
	}, "activity_id")

	return []*Tool{
		{
			Name: "get_activities",
			Description: "List activities. With start_date and end_date, returns every activity in the range " +
				"(optionally filtered by activity_type). Otherwise returns a page of the most recent activities; " +
				"has_more and next_start describe the following page.",
			InputSchema: jsonSchema(map[string]any{
				"start_date":    propDate("Range start"),
				"end_date":      propDate("Range end"),
				"activity_type": propString("Optional type filter (running, cycling, swimming, ...)"),
				"start":         propInteger("Page offset", 0),
				"limit":         propInteger("Page size, 1-100", core.DefaultActivityLimit),
			}),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				var q curate.ActivityQuery
				var err error
				if q.StartDate, err = c.OptionalDate("start_date", ""); err != nil {
					return nil, err
				}
				if q.EndDate, err = c.OptionalDate("end_date", ""); err != nil {
					return nil, err
				}
				if q.Start, err = c.Args.Int("start", 0); err != nil {
					return nil, err
				}
				if q.Limit, err = c.Args.Int("limit", core.DefaultActivityLimit); err != nil {
					return nil, err
				}
				q.ActivityType = c.Args.String("activity_type")
				return curate.Activities(ctx, up, q)
			}),
		},
		{
			Name:        "get_activity",
			Description: "Details of one activity: timing, distance, pace, heart rate, power, training effect and weather when available.",
			InputSchema: activityID,
			Handler:     byActivity(curate.Activity),
		},
		{
			Name:        "get_activity_splits",
			Description: "Per-lap splits of an activity.",
			InputSchema: activityID,
			Handler:     byActivity(curate.ActivitySplits),
		},
		{
			Name:        "get_activity_hr_in_timezones",
			Description: "Time spent in each heart rate zone during an activity.",
			InputSchema: activityID,
			Handler:     byActivity(curate.ActivityHRZones),
		},
		{
			Name:        "get_activity_types",
			Description: "Activity type keys usable as activity_type filters.",
			InputSchema: noParams,
			Handler: upstream(func(ctx context.Context, up api.Upstream, _ *Call) (curate.Result, error) {
				return curate.ActivityTypes(ctx, up)
			}),
		},
	}
}

func healthTools() []*Tool {
	date := jsonSchema(map[string]any{"date": propDate("Day")}, "date")
	dateRange := jsonSchema(map[string]any{
		"start_date": propDate("Range start"),
		"end_date":   propDate("Range end, defaults to start_date"),
	}, "start_date")

	return []*Tool{
		{
			Name: "get_coaching_snapshot",
			Description: "One-call morning briefing: daily stats, sleep, training readiness, body battery and HRV " +
				"for a day. Parts without data are omitted.",
			InputSchema: date,
			Handler:     dated(curate.CoachingSnapshot),
		},
		{
			Name:        "get_stats",
			Description: "Daily activity summary: steps, distance, calories, heart rate, stress, intensity minutes, floors.",
			InputSchema: date,
			Handler:     dated(curate.Stats),
		},
		{
			Name:        "get_sleep",
			Description: "Sleep duration, stages, score and overnight vitals for the night ending on the day.",
			InputSchema: date,
			Handler:     dated(curate.Sleep),
		},
		{
			Name:        "get_stress",
			Description: "Stress levels for a day with the share of time in rest, low, medium and high stress.",
			InputSchema: date,
			Handler:     dated(curate.Stress),
		},
		{
			Name:        "get_heart_rate",
			Description: "Resting, minimum, maximum and average heart rate for a day.",
			InputSchema: date,
			Handler:     dated(curate.HeartRate),
		},
		{
			Name:        "get_respiration",
			Description: "Breathing rate summary for a day.",
			InputSchema: date,
			Handler:     dated(curate.Respiration),
		},
		{
			Name:        "get_body_battery",
			Description: "Body battery charge, drain and notable events per day over a date range.",
			InputSchema: dateRange,
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				start, end, err := rangeArgs(c)
				if err != nil {
					return nil, err
				}
				return curate.BodyBattery(ctx, up, start, end)
			}),
		},
		{
			Name:        "get_spo2_data",
			Description: "Blood oxygen saturation summary for a day.",
			InputSchema: date,
			Handler:     dated(curate.SpO2),
		},
		{
			Name:        "get_training_readiness",
			Description: "Training readiness score and its contributing factors.",
			InputSchema: date,
			Handler:     dated(curate.TrainingReadiness),
		},
		{
			Name:        "get_body_composition",
			Description: "Weight and body composition measurements over a date range with the period average.",
			InputSchema: dateRange,
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				start, end, err := rangeArgs(c)
				if err != nil {
					return nil, err
				}
				return curate.BodyComposition(ctx, up, start, end)
			}),
		},
	}
}

func trainingTools() []*Tool {
	date := jsonSchema(map[string]any{"date": propDate("Day")}, "date")

	return []*Tool{
		{
			Name:        "get_max_metrics",
			Description: "VO2 max, fitness age, lactate threshold, max heart rate and FTP estimates.",
			InputSchema: date,
			Handler:     dated(curate.MaxMetrics),
		},
		{
			Name:        "get_hrv_data",
			Description: "Overnight heart rate variability summary and baseline.",
			InputSchema: date,
			Handler:     dated(curate.HRV),
		},
		{
			Name:        "get_training_status",
			Description: "Training status, acute and chronic load, and load balance.",
			InputSchema: date,
			Handler:     dated(curate.TrainingStatus),
		},
		{
			Name:        "get_progress_summary",
			Description: "Totals of one metric per activity type between two dates.",
			InputSchema: jsonSchema(map[string]any{
				"start_date": propDate("Range start"),
				"end_date":   propDate("Range end"),
				"metric": propStringEnum("Metric to aggregate",
					[]string{"distance", "duration", "elevationGain", "movingDuration"}, "distance"),
			}, "start_date", "end_date"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				start, err := c.Date("start_date")
				if err != nil {
					return nil, err
				}
				end, err := c.Date("end_date")
				if err != nil {
					return nil, err
				}
				metric := c.Args.String("metric")
				if metric == "" {
					metric = "distance"
				}
				return curate.ProgressSummary(ctx, up, start, end, metric)
			}),
		},
		{
			Name:        "get_race_predictions",
			Description: "Predicted finish times for 5K, 10K, half marathon and marathon.",
			InputSchema: noParams,
			Handler: upstream(func(ctx context.Context, up api.Upstream, _ *Call) (curate.Result, error) {
				return curate.RacePredictions(ctx, up)
			}),
		},
		{
			Name:        "get_goals",
			Description: "Fitness goals by status.",
			InputSchema: jsonSchema(map[string]any{
				"goal_type": propStringEnum("Goal status", []string{"active", "future", "past"}, "active"),
			}),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				status := c.Args.String("goal_type")
				if status == "" {
					status = "active"
				}
				return curate.Goals(ctx, up, status)
			}),
		},
		{
			Name:        "get_personal_record",
			Description: "Personal records across activity types.",
			InputSchema: noParams,
			Handler: upstream(func(ctx context.Context, up api.Upstream, _ *Call) (curate.Result, error) {
				return curate.PersonalRecords(ctx, up)
			}),
		},
	}
}

func profileTools() []*Tool {
	return []*Tool{
		{
			Name:        "get_full_name",
			Description: "The account holder's full name.",
			InputSchema: noParams,
			Handler: func(ctx context.Context, c *Call) (any, error) {
				up, err := c.Upstream()
				if err != nil {
					return nil, err
				}
				return curate.Result{"full_name": curate.FullName(ctx, up)}, nil
			},
		},
		{
			Name:        "get_user_profile",
			Description: "Profile and physiological settings: weight, height, thresholds, measurement system.",
			InputSchema: noParams,
			Handler: upstream(func(ctx context.Context, up api.Upstream, _ *Call) (curate.Result, error) {
				return curate.UserProfile(ctx, up)
			}),
		},
		{
			Name:        "get_devices",
			Description: "Registered devices with last-used and primary training device flags.",
			InputSchema: noParams,
			Handler: upstream(func(ctx context.Context, up api.Upstream, _ *Call) (curate.Result, error) {
				return curate.Devices(ctx, up)
			}),
		},
		{
			Name:        "get_device_capabilities",
			Description: "Device capability flags and the tools unsupported by the user's devices.",
			InputSchema: noParams,
			Handler: func(ctx context.Context, c *Call) (any, error) {
				up, err := c.Upstream()
				if err != nil {
					return nil, err
				}
				return capabilities.Detect(ctx, up, c.srv.logger).Map(), nil
			},
		},
	}
}

func gearTools() []*Tool {
	link := jsonSchema(map[string]any{
		"activity_id": propInteger("Activity ID"),
		"gear_uuid":   propString("Gear UUID from get_gear"),
	}, "activity_id", "gear_uuid")

	linkHandler := func(fn func(context.Context, api.Upstream, string, int64) (curate.Result, error)) func(context.Context, *Call) (any, error) {
		return upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
			id, err := c.Args.ID("activity_id")
			if err != nil {
				return nil, err
			}
			uuid := c.Args.String("gear_uuid")
			if uuid == "" {
				return nil, errRequired("gear_uuid")
			}
			return fn(ctx, up, uuid, id)
		})
	}

	return []*Tool{
		{
			Name:        "get_gear",
			Description: "Shoes, bikes and other gear with optional usage totals.",
			InputSchema: jsonSchema(map[string]any{
				"include_stats": propBoolean("Include total activities and distance per item", true),
			}),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				stats, err := c.Args.Bool("include_stats", true)
				if err != nil {
					return nil, err
				}
				return curate.Gear(ctx, up, stats)
			}),
		},
		{
			Name:        "add_gear_to_activity",
			Description: "Link a gear item to an activity.",
			InputSchema: link,
			Handler:     linkHandler(curate.AddGearToActivity),
		},
		{
			Name:        "remove_gear_from_activity",
			Description: "Unlink a gear item from an activity.",
			InputSchema: link,
			Handler:     linkHandler(curate.RemoveGearFromActivity),
		},
	}
}

func bodyTools() []*Tool {
	return []*Tool{
		{
			Name:        "get_weigh_ins",
			Description: "Weight entries between two dates.",
			InputSchema: jsonSchema(map[string]any{
				"start_date": propDate("Range start"),
				"end_date":   propDate("Range end"),
			}, "start_date", "end_date"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				start, err := c.Date("start_date")
				if err != nil {
					return nil, err
				}
				end, err := c.Date("end_date")
				if err != nil {
					return nil, err
				}
				return curate.WeighIns(ctx, up, start, end)
			}),
		},
		{
			Name:        "add_weigh_in",
			Description: "Record a manual weight entry.",
			InputSchema: jsonSchema(map[string]any{
				"weight":    propNumber("Weight value"),
				"unit_key":  propStringEnum("Unit", []string{"kg", "lbs"}, "kg"),
				"timestamp": propString("Optional local timestamp YYYY-MM-DDThh:mm:ss, defaults to now"),
			}, "weight"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				weight, err := c.Args.Float("weight")
				if err != nil {
					return nil, err
				}
				return curate.AddWeighIn(ctx, up, api.WeighIn{
					Weight:         weight,
					UnitKey:        c.Args.String("unit_key"),
					LocalTimestamp: c.Args.String("timestamp"),
				})
			}),
		},
		{
			Name:        "delete_weigh_ins",
			Description: "Delete the weight entries of a day, or only the latest one.",
			InputSchema: jsonSchema(map[string]any{
				"date":       propDate("Day"),
				"delete_all": propBoolean("Delete every entry of the day", true),
			}, "date"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				date, err := c.Date("date")
				if err != nil {
					return nil, err
				}
				all, err := c.Args.Bool("delete_all", true)
				if err != nil {
					return nil, err
				}
				return curate.DeleteWeighIns(ctx, up, date, all)
			}),
		},
		{
			Name:        "set_blood_pressure",
			Description: "Record a blood pressure reading.",
			InputSchema: jsonSchema(map[string]any{
				"systolic":  propInteger("Systolic pressure (top number)"),
				"diastolic": propInteger("Diastolic pressure (bottom number)"),
				"pulse":     propInteger("Pulse rate"),
				"notes":     propString("Optional notes"),
			}, "systolic", "diastolic", "pulse"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				var bp api.BloodPressure
				var err error
				if bp.Systolic, err = requiredInt(c.Args, "systolic"); err != nil {
					return nil, err
				}
				if bp.Diastolic, err = requiredInt(c.Args, "diastolic"); err != nil {
					return nil, err
				}
				if bp.Pulse, err = requiredInt(c.Args, "pulse"); err != nil {
					return nil, err
				}
				bp.Notes = c.Args.String("notes")
				return curate.SetBloodPressure(ctx, up, bp)
			}),
		},
		{
			Name:        "add_hydration_data",
			Description: "Log water intake in milliliters.",
			InputSchema: jsonSchema(map[string]any{
				"value_in_ml": propNumber("Amount of liquid in ml"),
				"date":        propDate("Day, defaults to today"),
			}, "value_in_ml"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				ml, err := c.Args.Float("value_in_ml")
				if err != nil {
					return nil, err
				}
				date, err := c.OptionalDate("date", core.FormatDate(c.Today()))
				if err != nil {
					return nil, err
				}
				return curate.AddHydration(ctx, up, api.Hydration{ValueInML: ml, Date: date})
			}),
		},
	}
}

func workoutTools() []*Tool {
	workoutID := jsonSchema(map[string]any{"workout_id": propInteger("Workout ID")}, "workout_id")

	return []*Tool{
		{
			Name:        "get_workouts",
			Description: "Workouts in the library.",
			InputSchema: jsonSchema(map[string]any{
				"start": propInteger("Offset", 0),
				"limit": propInteger("Maximum workouts", 100),
			}),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				start, err := c.Args.Int("start", 0)
				if err != nil {
					return nil, err
				}
				limit, err := c.Args.Int("limit", 100)
				if err != nil {
					return nil, err
				}
				return curate.Workouts(ctx, up, start, limit)
			}),
		},
		{
			Name:        "get_workout_by_id",
			Description: "One workout with its segments and steps.",
			InputSchema: workoutID,
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				id, err := c.Args.ID("workout_id")
				if err != nil {
					return nil, err
				}
				return curate.WorkoutByID(ctx, up, id)
			}),
		},
		{
			Name:        "get_scheduled_workouts",
			Description: "Workouts on the calendar between two dates.",
			InputSchema: jsonSchema(map[string]any{
				"start_date": propDate("Range start"),
				"end_date":   propDate("Range end"),
			}, "start_date", "end_date"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				start, err := c.Date("start_date")
				if err != nil {
					return nil, err
				}
				end, err := c.Date("end_date")
				if err != nil {
					return nil, err
				}
				return curate.ScheduledWorkouts(ctx, up, start, end)
			}),
		},
		{
			Name:        "get_training_plan_workouts",
			Description: "Workouts from active training plans around a day, with completion state.",
			InputSchema: jsonSchema(map[string]any{"date": propDate("Day")}, "date"),
			Handler:     dated(curate.TrainingPlanWorkouts),
		},
		{
			Name: "create_workout",
			Description: "Create a structured workout and optionally put it on the calendar. workout_data accepts " +
				"either the full upstream shape or the simplified form: {workoutName, sportType: 'running', " +
				"steps: [{stepType: 'warmup', endCondition: 'time', endConditionValue: 600, " +
				"targetType: 'heart.rate.zone', zoneNumber: 2}, {stepType: 'repeat', numberOfIterations: 4, " +
				"workoutSteps: [...]}]}.",
			InputSchema: jsonSchema(map[string]any{
				"workout_data": propObject("Workout definition"),
				"date":         propDate("Optional day to schedule the workout on"),
			}, "workout_data"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				data, err := c.Args.Object("workout_data")
				if err != nil {
					return nil, err
				}
				date, err := c.OptionalDate("date", "")
				if err != nil {
					return nil, err
				}
				return curate.CreateWorkout(ctx, up, data, date)
			}),
		},
		{
			Name:        "update_workout",
			Description: "Replace the definition of an existing workout. workout_data takes the same forms as create_workout.",
			InputSchema: jsonSchema(map[string]any{
				"workout_id":   propInteger("Workout ID"),
				"workout_data": propObject("Workout definition"),
			}, "workout_id", "workout_data"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				id, err := c.Args.ID("workout_id")
				if err != nil {
					return nil, err
				}
				data, err := c.Args.Object("workout_data")
				if err != nil {
					return nil, err
				}
				return curate.UpdateWorkout(ctx, up, id, data)
			}),
		},
		{
			Name:        "delete_workout",
			Description: "Delete a workout and remove its scheduled instances from the calendar.",
			InputSchema: workoutID,
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				id, err := c.Args.ID("workout_id")
				if err != nil {
					return nil, err
				}
				return curate.DeleteWorkout(ctx, up, id, c.Today())
			}),
		},
		{
			Name:        "schedule_workout",
			Description: "Put an existing workout on the calendar.",
			InputSchema: jsonSchema(map[string]any{
				"workout_id": propInteger("Workout ID"),
				"date":       propDate("Day"),
			}, "workout_id", "date"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				id, err := c.Args.ID("workout_id")
				if err != nil {
					return nil, err
				}
				date, err := c.Date("date")
				if err != nil {
					return nil, err
				}
				return curate.ScheduleWorkout(ctx, up, id, date)
			}),
		},
		{
			Name:        "unschedule_workout",
			Description: "Remove one scheduled instance from the calendar. The workout itself is kept.",
			InputSchema: jsonSchema(map[string]any{
				"schedule_id": propInteger("Schedule ID from get_scheduled_workouts"),
			}, "schedule_id"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				id, err := c.Args.ID("schedule_id")
				if err != nil {
					return nil, err
				}
				return curate.UnscheduleWorkout(ctx, up, id)
			}),
		},
		{
			Name:        "reschedule_workout",
			Description: "Move a scheduled instance to another day.",
			InputSchema: jsonSchema(map[string]any{
				"schedule_id": propInteger("Schedule ID from get_scheduled_workouts"),
				"new_date":    propDate("New day"),
			}, "schedule_id", "new_date"),
			Handler: upstream(func(ctx context.Context, up api.Upstream, c *Call) (curate.Result, error) {
				id, err := c.Args.ID("schedule_id")
				if err != nil {
					return nil, err
				}
				date, err := c.Date("new_date")
				if err != nil {
					return nil, err
				}
				return curate.RescheduleWorkout(ctx, up, id, date)
			}),
		},
	}
}

func rangeArgs(c *Call) (string, string, error) {
	start, err := c.Date("start_date")
	if err != nil {
		return "", "", err
	}
	end, err := c.OptionalDate("end_date", start)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

func requiredInt(a Args, key string) (int, error) {
	if _, ok := a[key]; !ok {
		return 0, errRequired(key)
	}
	return a.Int(key, 0)
}
