package curate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

// stubUpstream answers Upstream calls from JSON fixtures keyed by method
// name. Methods without a fixture return no data; methods the stub does not
// implement panic through the nil embedded interface.
type stubUpstream struct {
	api.Upstream

	fixtures map[string]string
	errs     map[string]error

	mu       sync.Mutex
	calls    []string
	uploaded []map[string]any
}

func newStub(fixtures map[string]string) *stubUpstream {
	if fixtures == nil {
		fixtures = map[string]string{}
	}
	return &stubUpstream{fixtures: fixtures, errs: map[string]error{}}
}

func (s *stubUpstream) fail(method string, err error) *stubUpstream {
	s.errs[method] = err
	return s
}

func (s *stubUpstream) answer(method string, args ...any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("%s%v", method, args))
	return s.fixtures[method], s.errs[method]
}

func (s *stubUpstream) called(method string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if len(c) > len(method) && c[:len(method)] == method && c[len(method)] == '[' {
			out = append(out, c)
		}
	}
	return out
}

func object[T any](s *stubUpstream, method string, args ...any) (*T, error) {
	body, err := s.answer(method, args...)
	if err != nil || body == "" {
		return nil, err
	}
	var out T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func list[T any](s *stubUpstream, method string, args ...any) ([]T, error) {
	body, err := s.answer(method, args...)
	if err != nil || body == "" {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *stubUpstream) FullName(ctx context.Context) (string, error) {
	return s.answer("FullName")
}

func (s *stubUpstream) SocialProfile(ctx context.Context) (*api.SocialProfile, error) {
	return object[api.SocialProfile](s, "SocialProfile")
}

func (s *stubUpstream) UserSettings(ctx context.Context) (*api.UserSettings, error) {
	return object[api.UserSettings](s, "UserSettings")
}

func (s *stubUpstream) UserSummary(ctx context.Context, date string) (*api.UserSummary, error) {
	return object[api.UserSummary](s, "UserSummary", date)
}

func (s *stubUpstream) SleepData(ctx context.Context, date string) (*api.SleepData, error) {
	return object[api.SleepData](s, "SleepData", date)
}

func (s *stubUpstream) StressData(ctx context.Context, date string) (*api.StressData, error) {
	return object[api.StressData](s, "StressData", date)
}

func (s *stubUpstream) HeartRates(ctx context.Context, date string) (*api.HeartRateData, error) {
	return object[api.HeartRateData](s, "HeartRates", date)
}

func (s *stubUpstream) BodyBattery(ctx context.Context, startDate, endDate string) ([]api.BodyBatteryDay, error) {
	return list[api.BodyBatteryDay](s, "BodyBattery", startDate, endDate)
}

func (s *stubUpstream) TrainingReadiness(ctx context.Context, date string) ([]api.TrainingReadiness, error) {
	return list[api.TrainingReadiness](s, "TrainingReadiness", date)
}

func (s *stubUpstream) HRVData(ctx context.Context, date string) (*api.HRVData, error) {
	return object[api.HRVData](s, "HRVData", date)
}

func (s *stubUpstream) MaxMetrics(ctx context.Context, date string) ([]api.MaxMetric, error) {
	return list[api.MaxMetric](s, "MaxMetrics", date)
}

func (s *stubUpstream) ProgressSummary(ctx context.Context, startDate, endDate, metric string) (*api.ProgressSummary, error) {
	return object[api.ProgressSummary](s, "ProgressSummary", startDate, endDate, metric)
}

func (s *stubUpstream) Goals(ctx context.Context, status string) ([]api.Goal, error) {
	return list[api.Goal](s, "Goals", status)
}

func (s *stubUpstream) TrainingStatus(ctx context.Context, date string) (*api.TrainingStatus, error) {
	return object[api.TrainingStatus](s, "TrainingStatus", date)
}

func (s *stubUpstream) RacePredictions(ctx context.Context) (*api.RacePredictions, error) {
	return object[api.RacePredictions](s, "RacePredictions")
}

func (s *stubUpstream) PersonalRecords(ctx context.Context) ([]api.PersonalRecord, error) {
	return list[api.PersonalRecord](s, "PersonalRecords")
}

func (s *stubUpstream) Activities(ctx context.Context, start, limit int) ([]api.ActivitySummary, error) {
	return list[api.ActivitySummary](s, "Activities", start, limit)
}

func (s *stubUpstream) ActivitiesByDate(ctx context.Context, startDate, endDate, activityType string) ([]api.ActivitySummary, error) {
	return list[api.ActivitySummary](s, "ActivitiesByDate", startDate, endDate, activityType)
}

func (s *stubUpstream) Activity(ctx context.Context, id int64) (*api.ActivityDetail, error) {
	return object[api.ActivityDetail](s, "Activity", id)
}

func (s *stubUpstream) ActivityWeather(ctx context.Context, id int64) (*api.ActivityWeather, error) {
	return object[api.ActivityWeather](s, "ActivityWeather", id)
}

func (s *stubUpstream) Devices(ctx context.Context) ([]api.Device, error) {
	return list[api.Device](s, "Devices")
}

func (s *stubUpstream) DeviceLastUsed(ctx context.Context) (*api.DeviceRef, error) {
	return object[api.DeviceRef](s, "DeviceLastUsed")
}

func (s *stubUpstream) PrimaryTrainingDevice(ctx context.Context) (*api.DeviceRef, error) {
	return object[api.DeviceRef](s, "PrimaryTrainingDevice")
}

func (s *stubUpstream) Gear(ctx context.Context, userProfileID int64) ([]api.Gear, error) {
	return list[api.Gear](s, "Gear", userProfileID)
}

func (s *stubUpstream) GearStats(ctx context.Context, uuid string) (*api.GearStats, error) {
	return object[api.GearStats](s, "GearStats", uuid)
}

func (s *stubUpstream) WeighIns(ctx context.Context, startDate, endDate string) (*api.WeighIns, error) {
	return object[api.WeighIns](s, "WeighIns", startDate, endDate)
}

func (s *stubUpstream) DeleteWeighIns(ctx context.Context, date string, all bool) (int, error) {
	body, err := s.answer("DeleteWeighIns", date, all)
	if err != nil || body == "" {
		return 0, err
	}
	return strconv.Atoi(body)
}

func (s *stubUpstream) Workouts(ctx context.Context, start, limit int) ([]api.Workout, error) {
	return list[api.Workout](s, "Workouts", start, limit)
}

func (s *stubUpstream) Workout(ctx context.Context, id int64) (*api.Workout, error) {
	return object[api.Workout](s, "Workout", id)
}

func (s *stubUpstream) ScheduledWorkouts(ctx context.Context, startDate, endDate string) ([]api.ScheduledWorkout, error) {
	return list[api.ScheduledWorkout](s, "ScheduledWorkouts", startDate, endDate)
}

func (s *stubUpstream) TrainingPlanWorkouts(ctx context.Context, date string) ([]api.TrainingPlan, error) {
	return list[api.TrainingPlan](s, "TrainingPlanWorkouts", date)
}

func (s *stubUpstream) UploadWorkout(ctx context.Context, workout map[string]any) (*api.Workout, error) {
	s.mu.Lock()
	s.uploaded = append(s.uploaded, workout)
	s.mu.Unlock()
	return object[api.Workout](s, "UploadWorkout")
}

func (s *stubUpstream) UpdateWorkout(ctx context.Context, id int64, workout map[string]any) (*api.Workout, error) {
	s.mu.Lock()
	s.uploaded = append(s.uploaded, workout)
	s.mu.Unlock()
	return object[api.Workout](s, "UpdateWorkout", id)
}

func (s *stubUpstream) DeleteWorkout(ctx context.Context, id int64) error {
	_, err := s.answer("DeleteWorkout", id)
	return err
}

func (s *stubUpstream) ScheduleWorkout(ctx context.Context, id int64, date string) (*api.ScheduledWorkout, error) {
	return object[api.ScheduledWorkout](s, "ScheduleWorkout", id, date)
}

func (s *stubUpstream) UnscheduleWorkout(ctx context.Context, scheduleID int64) error {
	_, err := s.answer("UnscheduleWorkout", scheduleID)
	return err
}
