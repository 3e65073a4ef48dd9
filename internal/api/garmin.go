package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/colthorp/garmin-mcp-go/internal/core"
)

// Garmin Connect endpoints.
const (
	socialProfilePath     = "/userprofile-service/socialProfile"
	userSettingsPath      = "/userprofile-service/userprofile/user-settings"
	usageIndicatorsPath   = "/userprofile-service/userprofile/usage-indicators"
	userSummaryPath       = "/usersummary-service/usersummary/daily/"
	sleepPath             = "/wellness-service/wellness/dailySleepData/"
	stressPath            = "/wellness-service/wellness/dailyStress/"
	heartRatePath         = "/wellness-service/wellness/dailyHeartRate/"
	respirationPath       = "/wellness-service/wellness/daily/respiration/"
	spo2Path              = "/wellness-service/wellness/daily/spo2/"
	bodyBatteryPath       = "/wellness-service/wellness/bodyBattery/reports/daily"
	trainingReadinessPath = "/metrics-service/metrics/trainingreadiness/"
	hrvPath               = "/hrv-service/hrv/"
	maxMetricsPath        = "/metrics-service/metrics/maxmet/daily/"
	trainingStatusPath    = "/metrics-service/metrics/trainingstatus/aggregated/"
	racePredictionsPath   = "/metrics-service/metrics/racepredictions/latest/"
	progressSummaryPath   = "/fitnessstats-service/activity"
	goalsPath             = "/goal-service/goal/goals"
	personalRecordsPath   = "/personalrecord-service/personalrecord/prs/"
	activitySearchPath    = "/activitylist-service/activities/search/activities"
	activityPath          = "/activity-service/activity/"
	activityTypesPath     = "/activity-service/activity/activityTypes"
	devicesPath           = "/device-service/deviceregistration/devices"
	deviceLastUsedPath    = "/device-service/deviceservice/mylastused"
	primaryDevicePath     = "/web-gateway/device-info/primary-training-device"
	gearPath              = "/gear-service/gear/filterGear"
	gearStatsPath         = "/gear-service/gear/stats/"
	gearLinkPath          = "/gear-service/gear/link/"
	gearUnlinkPath        = "/gear-service/gear/unlink/"
	weighInsPath          = "/weight-service/weight/range/"
	weightDayViewPath     = "/weight-service/weight/dayview/"
	weightDeletePath      = "/weight-service/weight/"
	userWeightPath        = "/weight-service/user-weight"
	bodyCompositionPath   = "/weight-service/weight/dateRange"
	bloodPressurePath     = "/bloodpressure-service/bloodpressure"
	hydrationPath         = "/usersummary-service/usersummary/hydration/log"
	workoutsPath          = "/workout-service/workouts"
	workoutPath           = "/workout-service/workout"
	workoutSchedulePath   = "/workout-service/schedule/"
	graphqlPath           = "/graphql-gateway/graphql"
)

// Upstream is every Garmin Connect operation the curation layer uses.
// Methods return nil records (or empty slices) when Garmin has no data.
type Upstream interface {
	DisplayName(ctx context.Context) (string, error)
	FullName(ctx context.Context) (string, error)
	SocialProfile(ctx context.Context) (*SocialProfile, error)
	UserSettings(ctx context.Context) (*UserSettings, error)
	UsageIndicators(ctx context.Context) (map[string]any, error)

	UserSummary(ctx context.Context, date string) (*UserSummary, error)
	SleepData(ctx context.Context, date string) (*SleepData, error)
	StressData(ctx context.Context, date string) (*StressData, error)
	HeartRates(ctx context.Context, date string) (*HeartRateData, error)
	RespirationData(ctx context.Context, date string) (*RespirationData, error)
	SpO2Data(ctx context.Context, date string) (*SpO2Data, error)
	BodyBattery(ctx context.Context, startDate, endDate string) ([]BodyBatteryDay, error)
	TrainingReadiness(ctx context.Context, date string) ([]TrainingReadiness, error)
	HRVData(ctx context.Context, date string) (*HRVData, error)

	MaxMetrics(ctx context.Context, date string) ([]MaxMetric, error)
	TrainingStatus(ctx context.Context, date string) (*TrainingStatus, error)
	ProgressSummary(ctx context.Context, startDate, endDate, metric string) (*ProgressSummary, error)
	RacePredictions(ctx context.Context) (*RacePredictions, error)
	Goals(ctx context.Context, status string) ([]Goal, error)
	PersonalRecords(ctx context.Context) ([]PersonalRecord, error)

	Activities(ctx context.Context, start, limit int) ([]ActivitySummary, error)
	ActivitiesByDate(ctx context.Context, startDate, endDate, activityType string) ([]ActivitySummary, error)
	Activity(ctx context.Context, id int64) (*ActivityDetail, error)
	ActivityWeather(ctx context.Context, id int64) (*ActivityWeather, error)
	ActivitySplits(ctx context.Context, id int64) (*ActivitySplits, error)
	ActivityHRZones(ctx context.Context, id int64) ([]ActivityHRZone, error)
	ActivityTypes(ctx context.Context) ([]ActivityTypeRef, error)

	Devices(ctx context.Context) ([]Device, error)
	DeviceLastUsed(ctx context.Context) (*DeviceRef, error)
	PrimaryTrainingDevice(ctx context.Context) (*DeviceRef, error)

	Gear(ctx context.Context, userProfileID int64) ([]Gear, error)
	GearStats(ctx context.Context, uuid string) (*GearStats, error)
	AddGearToActivity(ctx context.Context, uuid string, activityID int64) error
	RemoveGearFromActivity(ctx context.Context, uuid string, activityID int64) error

	WeighIns(ctx context.Context, startDate, endDate string) (*WeighIns, error)
	AddWeighIn(ctx context.Context, in WeighIn) error
	DeleteWeighIns(ctx context.Context, date string, all bool) (int, error)
	BodyComposition(ctx context.Context, startDate, endDate string) (*BodyComposition, error)
	SetBloodPressure(ctx context.Context, bp BloodPressure) error
	AddHydration(ctx context.Context, h Hydration) (*HydrationLog, error)

	Workouts(ctx context.Context, start, limit int) ([]Workout, error)
	Workout(ctx context.Context, id int64) (*Workout, error)
	ScheduledWorkouts(ctx context.Context, startDate, endDate string) ([]ScheduledWorkout, error)
	TrainingPlanWorkouts(ctx context.Context, date string) ([]TrainingPlan, error)
	UploadWorkout(ctx context.Context, workout map[string]any) (*Workout, error)
	UpdateWorkout(ctx context.Context, id int64, workout map[string]any) (*Workout, error)
	DeleteWorkout(ctx context.Context, id int64) error
	ScheduleWorkout(ctx context.Context, id int64, date string) (*ScheduledWorkout, error)
	UnscheduleWorkout(ctx context.Context, scheduleID int64) error
	RescheduleWorkout(ctx context.Context, scheduleID int64, date string) (*ScheduledWorkout, error)
}

// WeighIn is a manual weight entry. Timestamps are optional local/GMT
// YYYY-MM-DDThh:mm:ss values; both default to now.
type WeighIn struct {
	Weight         float64
	UnitKey        string
	LocalTimestamp string
	GMTTimestamp   string
}

// BloodPressure is a manual blood pressure entry.
type BloodPressure struct {
	Systolic  int
	Diastolic int
	Pulse     int
	Notes     string
}

// Hydration is a manual water intake entry in milliliters.
type Hydration struct {
	ValueInML float64
	Date      string
}

// Garmin implements Upstream over a Transport for one session.
type Garmin struct {
	transport Transport
	now       func() time.Time

	mu       sync.Mutex
	identity Identity
}

var _ Upstream = (*Garmin)(nil)

// NewGarmin wraps a transport. The identity may be empty; the display name
// is then looked up once on first use.
func NewGarmin(t Transport, id Identity) *Garmin {
	return &Garmin{transport: t, identity: id, now: time.Now}
}

// NewGarminFromSession builds the HTTP-backed client for a decoded session.
func NewGarminFromSession(s *Session, cfg core.UpstreamConfig, logger *slog.Logger) *Garmin {
	return NewGarmin(NewClient(cfg, s.Tokens.OAuth2.AccessToken, logger), s.Identity)
}

func (g *Garmin) get(ctx context.Context, endpoint string, params map[string]string, out any) (bool, error) {
	return g.do(ctx, http.MethodGet, endpoint, params, nil, out)
}

func (g *Garmin) do(ctx context.Context, method, endpoint string, params map[string]string, body, out any) (bool, error) {
	data, err := g.transport.Do(ctx, method, endpoint, params, body)
	if err != nil {
		return false, err
	}
	if out == nil || isEmptyBody(data) {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decoding %s: %w", endpoint, err)
	}
	return true, nil
}

func getObject[T any](ctx context.Context, g *Garmin, endpoint string, params map[string]string) (*T, error) {
	var out T
	ok, err := g.get(ctx, endpoint, params, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func getList[T any](ctx context.Context, g *Garmin, endpoint string, params map[string]string) ([]T, error) {
	var out []T
	if _, err := g.get(ctx, endpoint, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func id64(id int64) string { return strconv.FormatInt(id, 10) }

// DisplayName returns the cached display name, fetching the social profile
// on first use.
func (g *Garmin) DisplayName(ctx context.Context) (string, error) {
	g.mu.Lock()
	name := g.identity.DisplayName
	g.mu.Unlock()
	if name != "" {
		return name, nil
	}
	if _, err := g.SocialProfile(ctx); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.identity.DisplayName == "" {
		return "", fmt.Errorf("social profile has no display name")
	}
	return g.identity.DisplayName, nil
}

// FullName returns the cached full name, falling back to the social profile.
// It returns "" without error when Garmin has none.
func (g *Garmin) FullName(ctx context.Context) (string, error) {
	g.mu.Lock()
	name := g.identity.FullName
	g.mu.Unlock()
	if name != "" {
		return name, nil
	}
	p, err := g.SocialProfile(ctx)
	if err != nil || p == nil {
		return "", err
	}
	switch {
	case p.FullName != nil && *p.FullName != "":
		return *p.FullName, nil
	case p.DisplayName != nil:
		return *p.DisplayName, nil
	}
	return "", nil
}

// SocialProfile fetches the public profile and caches the identity it carries.
func (g *Garmin) SocialProfile(ctx context.Context) (*SocialProfile, error) {
	p, err := getObject[SocialProfile](ctx, g, socialProfilePath, nil)
	if err != nil || p == nil {
		return p, err
	}
	g.mu.Lock()
	if g.identity.DisplayName == "" && p.DisplayName != nil {
		g.identity.DisplayName = *p.DisplayName
	}
	if g.identity.FullName == "" && p.FullName != nil {
		g.identity.FullName = *p.FullName
	}
	g.mu.Unlock()
	return p, nil
}

func (g *Garmin) UserSettings(ctx context.Context) (*UserSettings, error) {
	return getObject[UserSettings](ctx, g, userSettingsPath, nil)
}

func (g *Garmin) UsageIndicators(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if _, err := g.get(ctx, usageIndicatorsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Garmin) UserSummary(ctx context.Context, date string) (*UserSummary, error) {
	dn, err := g.DisplayName(ctx)
	if err != nil {
		return nil, err
	}
	return getObject[UserSummary](ctx, g, userSummaryPath+dn, map[string]string{"calendarDate": date})
}

func (g *Garmin) SleepData(ctx context.Context, date string) (*SleepData, error) {
	dn, err := g.DisplayName(ctx)
	if err != nil {
		return nil, err
	}
	return getObject[SleepData](ctx, g, sleepPath+dn, map[string]string{"date": date, "nonSleepBufferMinutes": "60"})
}

func (g *Garmin) StressData(ctx context.Context, date string) (*StressData, error) {
	return getObject[StressData](ctx, g, stressPath+date, nil)
}

func (g *Garmin) HeartRates(ctx context.Context, date string) (*HeartRateData, error) {
	dn, err := g.DisplayName(ctx)
	if err != nil {
		return nil, err
	}
	return getObject[HeartRateData](ctx, g, heartRatePath+dn, map[string]string{"date": date})
}

func (g *Garmin) RespirationData(ctx context.Context, date string) (*RespirationData, error) {
	return getObject[RespirationData](ctx, g, respirationPath+date, nil)
}

func (g *Garmin) SpO2Data(ctx context.Context, date string) (*SpO2Data, error) {
	return getObject[SpO2Data](ctx, g, spo2Path+date, nil)
}

func (g *Garmin) BodyBattery(ctx context.Context, startDate, endDate string) ([]BodyBatteryDay, error) {
	if endDate == "" {
		endDate = startDate
	}
	return getList[BodyBatteryDay](ctx, g, bodyBatteryPath, map[string]string{"startDate": startDate, "endDate": endDate})
}

// TrainingReadiness accepts both the single-object and list response shapes.
func (g *Garmin) TrainingReadiness(ctx context.Context, date string) ([]TrainingReadiness, error) {
	var raw json.RawMessage
	ok, err := g.get(ctx, trainingReadinessPath+date, nil, &raw)
	if err != nil || !ok {
		return nil, err
	}
	var list []TrainingReadiness
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var one TrainingReadiness
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decoding training readiness: %w", err)
	}
	return []TrainingReadiness{one}, nil
}

func (g *Garmin) HRVData(ctx context.Context, date string) (*HRVData, error) {
	return getObject[HRVData](ctx, g, hrvPath+date, nil)
}

func (g *Garmin) MaxMetrics(ctx context.Context, date string) ([]MaxMetric, error) {
	return getList[MaxMetric](ctx, g, maxMetricsPath+date+"/"+date, nil)
}

func (g *Garmin) TrainingStatus(ctx context.Context, date string) (*TrainingStatus, error) {
	return getObject[TrainingStatus](ctx, g, trainingStatusPath+date, nil)
}

// ProgressSummary accepts a single aggregate or a list whose first entry is used.
func (g *Garmin) ProgressSummary(ctx context.Context, startDate, endDate, metric string) (*ProgressSummary, error) {
	var raw json.RawMessage
	ok, err := g.get(ctx, progressSummaryPath, map[string]string{
		"startDate":                 startDate,
		"endDate":                   endDate,
		"aggregation":               "lifetime",
		"groupByParentActivityType": "true",
		"metric":                    metric,
	}, &raw)
	if err != nil || !ok {
		return nil, err
	}
	var list []ProgressSummary
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}
	var one ProgressSummary
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("decoding progress summary: %w", err)
	}
	return &one, nil
}

func (g *Garmin) RacePredictions(ctx context.Context) (*RacePredictions, error) {
	dn, err := g.DisplayName(ctx)
	if err != nil {
		return nil, err
	}
	return getObject[RacePredictions](ctx, g, racePredictionsPath+dn, nil)
}

func (g *Garmin) Goals(ctx context.Context, status string) ([]Goal, error) {
	return getList[Goal](ctx, g, goalsPath, map[string]string{"status": status, "start": "1", "limit": "30"})
}

func (g *Garmin) PersonalRecords(ctx context.Context) ([]PersonalRecord, error) {
	dn, err := g.DisplayName(ctx)
	if err != nil {
		return nil, err
	}
	return getList[PersonalRecord](ctx, g, personalRecordsPath+dn, nil)
}

func (g *Garmin) Activities(ctx context.Context, start, limit int) ([]ActivitySummary, error) {
	return getList[ActivitySummary](ctx, g, activitySearchPath, map[string]string{
		"start": strconv.Itoa(start),
		"limit": strconv.Itoa(limit),
	})
}

// ActivitiesByDate pages through the search endpoint until exhausted.
func (g *Garmin) ActivitiesByDate(ctx context.Context, startDate, endDate, activityType string) ([]ActivitySummary, error) {
	const page = 20
	var all []ActivitySummary
	for start := 0; ; start += page {
		params := map[string]string{
			"startDate": startDate,
			"endDate":   endDate,
			"start":     strconv.Itoa(start),
			"limit":     strconv.Itoa(page),
		}
		if activityType != "" {
			params["activityType"] = activityType
		}
		batch, err := getList[ActivitySummary](ctx, g, activitySearchPath, params)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page {
			return all, nil
		}
	}
}

func (g *Garmin) Activity(ctx context.Context, id int64) (*ActivityDetail, error) {
	return getObject[ActivityDetail](ctx, g, activityPath+id64(id), nil)
}

func (g *Garmin) ActivityWeather(ctx context.Context, id int64) (*ActivityWeather, error) {
	return getObject[ActivityWeather](ctx, g, activityPath+id64(id)+"/weather", nil)
}

func (g *Garmin) ActivitySplits(ctx context.Context, id int64) (*ActivitySplits, error) {
	return getObject[ActivitySplits](ctx, g, activityPath+id64(id)+"/splits", nil)
}

func (g *Garmin) ActivityHRZones(ctx context.Context, id int64) ([]ActivityHRZone, error) {
	return getList[ActivityHRZone](ctx, g, activityPath+id64(id)+"/hrTimeInZones", nil)
}

func (g *Garmin) ActivityTypes(ctx context.Context) ([]ActivityTypeRef, error) {
	return getList[ActivityTypeRef](ctx, g, activityTypesPath, nil)
}

func (g *Garmin) Devices(ctx context.Context) ([]Device, error) {
	return getList[Device](ctx, g, devicesPath, nil)
}

func (g *Garmin) DeviceLastUsed(ctx context.Context) (*DeviceRef, error) {
	return getObject[DeviceRef](ctx, g, deviceLastUsedPath, nil)
}

func (g *Garmin) PrimaryTrainingDevice(ctx context.Context) (*DeviceRef, error) {
	return getObject[DeviceRef](ctx, g, primaryDevicePath, nil)
}

func (g *Garmin) Gear(ctx context.Context, userProfileID int64) ([]Gear, error) {
	return getList[Gear](ctx, g, gearPath, map[string]string{"userProfilePk": id64(userProfileID)})
}

func (g *Garmin) GearStats(ctx context.Context, uuid string) (*GearStats, error) {
	return getObject[GearStats](ctx, g, gearStatsPath+uuid, nil)
}

func (g *Garmin) AddGearToActivity(ctx context.Context, uuid string, activityID int64) error {
	_, err := g.do(ctx, http.MethodPut, gearLinkPath+uuid+"/activity/"+id64(activityID), nil, nil, nil)
	return err
}

func (g *Garmin) RemoveGearFromActivity(ctx context.Context, uuid string, activityID int64) error {
	_, err := g.do(ctx, http.MethodPut, gearUnlinkPath+uuid+"/activity/"+id64(activityID), nil, nil, nil)
	return err
}

func (g *Garmin) WeighIns(ctx context.Context, startDate, endDate string) (*WeighIns, error) {
	return getObject[WeighIns](ctx, g, weighInsPath+startDate+"/"+endDate, map[string]string{"includeAll": "true"})
}

func (g *Garmin) AddWeighIn(ctx context.Context, in WeighIn) error {
	now := g.now()
	local, gmt := in.LocalTimestamp, in.GMTTimestamp
	if local == "" {
		local = now.Format(core.APIDatetimeFmt)
	}
	if gmt == "" {
		gmt = now.UTC().Format(core.APIDatetimeFmt)
	}
	unit := in.UnitKey
	if unit == "" {
		unit = "kg"
	}
	body := map[string]any{
		"dateTimestamp": local + ".00",
		"gmtTimestamp":  gmt + ".00",
		"unitKey":       unit,
		"sourceType":    "MANUAL",
		"value":         in.Weight,
	}
	_, err := g.do(ctx, http.MethodPost, userWeightPath, nil, body, nil)
	return err
}

// DeleteWeighIns removes the samples recorded on date: all of them, or only
// the most recent. It returns the number deleted.
func (g *Garmin) DeleteWeighIns(ctx context.Context, date string, all bool) (int, error) {
	view, err := getObject[DayView](ctx, g, weightDayViewPath+date, map[string]string{"includeAll": "true"})
	if err != nil || view == nil {
		return 0, err
	}
	samples := view.DateWeightList
	if !all && len(samples) > 1 {
		samples = samples[len(samples)-1:]
	}
	deleted := 0
	for _, s := range samples {
		if s.SamplePK == nil {
			continue
		}
		endpoint := weightDeletePath + date + "/byversion/" + id64(*s.SamplePK)
		if _, err := g.do(ctx, http.MethodDelete, endpoint, nil, nil, nil); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (g *Garmin) BodyComposition(ctx context.Context, startDate, endDate string) (*BodyComposition, error) {
	if endDate == "" {
		endDate = startDate
	}
	return getObject[BodyComposition](ctx, g, bodyCompositionPath, map[string]string{"startDate": startDate, "endDate": endDate})
}

func (g *Garmin) SetBloodPressure(ctx context.Context, bp BloodPressure) error {
	now := g.now()
	body := map[string]any{
		"measurementTimestampLocal": now.Format(core.APIDatetimeFmt) + ".00",
		"measurementTimestampGMT":   now.UTC().Format(core.APIDatetimeFmt) + ".00",
		"systolic":                  bp.Systolic,
		"diastolic":                 bp.Diastolic,
		"pulse":                     bp.Pulse,
		"sourceType":                "MANUAL",
		"notes":                     bp.Notes,
	}
	_, err := g.do(ctx, http.MethodPost, bloodPressurePath, nil, body, nil)
	return err
}

func (g *Garmin) AddHydration(ctx context.Context, h Hydration) (*HydrationLog, error) {
	now := g.now()
	date := h.Date
	if date == "" {
		date = core.FormatDate(now)
	}
	body := map[string]any{
		"calendarDate":   date,
		"timestampLocal": now.Format(core.APIDatetimeFmt) + ".0",
		"valueInML":      h.ValueInML,
	}
	var out HydrationLog
	ok, err := g.do(ctx, http.MethodPut, hydrationPath, nil, body, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (g *Garmin) Workouts(ctx context.Context, start, limit int) ([]Workout, error) {
	return getList[Workout](ctx, g, workoutsPath, map[string]string{
		"start": strconv.Itoa(start),
		"limit": strconv.Itoa(limit),
	})
}

func (g *Garmin) Workout(ctx context.Context, id int64) (*Workout, error) {
	return getObject[Workout](ctx, g, workoutPath+"/"+id64(id), nil)
}

// ScheduledWorkouts queries the calendar through the GraphQL gateway.
func (g *Garmin) ScheduledWorkouts(ctx context.Context, startDate, endDate string) ([]ScheduledWorkout, error) {
	query := map[string]any{
		"query": fmt.Sprintf(`query{workoutScheduleSummariesScalar(startDate:"%s", endDate:"%s")}`, startDate, endDate),
	}
	var out struct {
		Data *struct {
			Scheduled []ScheduledWorkout `json:"workoutScheduleSummariesScalar"`
		} `json:"data"`
	}
	ok, err := g.do(ctx, http.MethodPost, graphqlPath, nil, query, &out)
	if err != nil || !ok || out.Data == nil {
		return nil, err
	}
	return out.Data.Scheduled, nil
}

// TrainingPlanWorkouts returns the plan workouts of the week containing date.
func (g *Garmin) TrainingPlanWorkouts(ctx context.Context, date string) ([]TrainingPlan, error) {
	query := map[string]any{
		"query": fmt.Sprintf(`query{trainingPlanScalar(calendarDate:"%s", lang:"en-US", firstDayOfWeek:"monday")}`, date),
	}
	var out struct {
		Data *struct {
			Plan *struct {
				Plans []TrainingPlan `json:"trainingPlanWorkoutScheduleDTOS"`
			} `json:"trainingPlanScalar"`
		} `json:"data"`
	}
	ok, err := g.do(ctx, http.MethodPost, graphqlPath, nil, query, &out)
	if err != nil || !ok || out.Data == nil || out.Data.Plan == nil {
		return nil, err
	}
	return out.Data.Plan.Plans, nil
}

func (g *Garmin) UploadWorkout(ctx context.Context, workout map[string]any) (*Workout, error) {
	var out Workout
	ok, err := g.do(ctx, http.MethodPost, workoutPath, nil, workout, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (g *Garmin) UpdateWorkout(ctx context.Context, id int64, workout map[string]any) (*Workout, error) {
	var out Workout
	ok, err := g.do(ctx, http.MethodPut, workoutPath+"/"+id64(id), nil, workout, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (g *Garmin) DeleteWorkout(ctx context.Context, id int64) error {
	_, err := g.do(ctx, http.MethodDelete, workoutPath+"/"+id64(id), nil, nil, nil)
	return err
}

func (g *Garmin) ScheduleWorkout(ctx context.Context, id int64, date string) (*ScheduledWorkout, error) {
	var out ScheduledWorkout
	ok, err := g.do(ctx, http.MethodPost, workoutSchedulePath+id64(id), nil, map[string]any{"date": date}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (g *Garmin) UnscheduleWorkout(ctx context.Context, scheduleID int64) error {
	_, err := g.do(ctx, http.MethodDelete, workoutSchedulePath+id64(scheduleID), nil, nil, nil)
	return err
}

func (g *Garmin) RescheduleWorkout(ctx context.Context, scheduleID int64, date string) (*ScheduledWorkout, error) {
	var out ScheduledWorkout
	ok, err := g.do(ctx, http.MethodPut, workoutSchedulePath+id64(scheduleID), nil, map[string]any{"date": date}, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}
