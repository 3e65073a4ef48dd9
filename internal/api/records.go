package api

import (
	"bytes"
	"sort"
)

// Response records. Fields are pointers so that absent and null upstream
// values stay distinguishable from zero.

// UserSummary is the daily summary for one calendar date.
type UserSummary struct {
	CalendarDate                     *string  `json:"calendarDate"`
	TotalSteps                       *float64 `json:"totalSteps"`
	DailyStepGoal                    *float64 `json:"dailyStepGoal"`
	TotalDistanceMeters              *float64 `json:"totalDistanceMeters"`
	FloorsAscended                   *float64 `json:"floorsAscended"`
	TotalKilocalories                *float64 `json:"totalKilocalories"`
	ActiveKilocalories               *float64 `json:"activeKilocalories"`
	HighlyActiveSeconds              *float64 `json:"highlyActiveSeconds"`
	ActiveSeconds                    *float64 `json:"activeSeconds"`
	SedentarySeconds                 *float64 `json:"sedentarySeconds"`
	ModerateIntensityMinutes         *float64 `json:"moderateIntensityMinutes"`
	VigorousIntensityMinutes         *float64 `json:"vigorousIntensityMinutes"`
	IntensityMinutesGoal             *float64 `json:"intensityMinutesGoal"`
	MinHeartRate                     *float64 `json:"minHeartRate"`
	MaxHeartRate                     *float64 `json:"maxHeartRate"`
	RestingHeartRate                 *float64 `json:"restingHeartRate"`
	LastSevenDaysAvgRestingHeartRate *float64 `json:"lastSevenDaysAvgRestingHeartRate"`
	AverageStressLevel               *float64 `json:"averageStressLevel"`
	MaxStressLevel                   *float64 `json:"maxStressLevel"`
	BodyBatteryChargedValue          *float64 `json:"bodyBatteryChargedValue"`
	BodyBatteryDrainedValue          *float64 `json:"bodyBatteryDrainedValue"`
	BodyBatteryHighestValue          *float64 `json:"bodyBatteryHighestValue"`
	BodyBatteryLowestValue           *float64 `json:"bodyBatteryLowestValue"`
	BodyBatteryMostRecentValue       *float64 `json:"bodyBatteryMostRecentValue"`
	AverageSpo2                      *float64 `json:"averageSpo2"`
	LowestSpo2                       *float64 `json:"lowestSpo2"`
	AvgWakingRespirationValue        *float64 `json:"avgWakingRespirationValue"`
	HighestRespirationValue          *float64 `json:"highestRespirationValue"`
	LowestRespirationValue           *float64 `json:"lowestRespirationValue"`
}

// SleepData is the nightly sleep report.
type SleepData struct {
	DailySleepDTO            *DailySleep `json:"dailySleepDTO"`
	WellnessSpO2SleepSummary *SleepSpO2  `json:"wellnessSpO2SleepSummaryDTO"`
	AvgOvernightHrv          *float64    `json:"avgOvernightHrv"`
	RestingHeartRate         *float64    `json:"restingHeartRate"`
}

// DailySleep is the summary block inside SleepData.
type DailySleep struct {
	CalendarDate       *string      `json:"calendarDate"`
	SleepTimeSeconds   *float64     `json:"sleepTimeSeconds"`
	DeepSleepSeconds   *float64     `json:"deepSleepSeconds"`
	LightSleepSeconds  *float64     `json:"lightSleepSeconds"`
	RemSleepSeconds    *float64     `json:"remSleepSeconds"`
	AwakeSleepSeconds  *float64     `json:"awakeSleepSeconds"`
	RestingHeartRate   *float64     `json:"restingHeartRate"`
	AvgSleepStress     *float64     `json:"avgSleepStress"`
	AverageRespiration *float64     `json:"averageRespirationValue"`
	SleepScores        *SleepScores `json:"sleepScores"`
}

// SleepScores holds the overall sleep score.
type SleepScores struct {
	Overall *struct {
		Value        *float64 `json:"value"`
		QualifierKey *string  `json:"qualifierKey"`
	} `json:"overall"`
}

// SleepSpO2 is the overnight pulse-ox summary.
type SleepSpO2 struct {
	AverageSpo2 *float64 `json:"averageSpo2"`
	LowestSpo2  *float64 `json:"lowestSpo2"`
}

// Sample is one [timestamp, value] pair of a daily time series.
type Sample []*float64

// Value returns the sample value, or nil when missing.
func (s Sample) Value() *float64 {
	if len(s) < 2 {
		return nil
	}
	return s[1]
}

// StressData is the daily stress report.
type StressData struct {
	CalendarDate      *string  `json:"calendarDate"`
	MaxStressLevel    *float64 `json:"maxStressLevel"`
	AvgStressLevel    *float64 `json:"avgStressLevel"`
	StressValuesArray []Sample `json:"stressValuesArray"`
}

// HeartRateData is the daily heart-rate report.
type HeartRateData struct {
	CalendarDate                     *string  `json:"calendarDate"`
	MaxHeartRate                     *float64 `json:"maxHeartRate"`
	MinHeartRate                     *float64 `json:"minHeartRate"`
	RestingHeartRate                 *float64 `json:"restingHeartRate"`
	LastSevenDaysAvgRestingHeartRate *float64 `json:"lastSevenDaysAvgRestingHeartRate"`
	HeartRateValues                  []Sample `json:"heartRateValues"`
}

// RespirationData is the daily respiration report.
type RespirationData struct {
	CalendarDate              *string  `json:"calendarDate"`
	LowestRespirationValue    *float64 `json:"lowestRespirationValue"`
	HighestRespirationValue   *float64 `json:"highestRespirationValue"`
	AvgWakingRespirationValue *float64 `json:"avgWakingRespirationValue"`
	AvgSleepRespirationValue  *float64 `json:"avgSleepRespirationValue"`
}

// BodyBatteryDay is one day of the body battery report.
type BodyBatteryDay struct {
	Date            *string              `json:"date"`
	Charged         *float64             `json:"charged"`
	Drained         *float64             `json:"drained"`
	ActivityEvents  []BodyBatteryEvent   `json:"bodyBatteryActivityEvent"`
	DynamicFeedback *BodyBatteryFeedback `json:"bodyBatteryDynamicFeedbackEvent"`
}

// BodyBatteryEvent is an activity that charged or drained body battery.
type BodyBatteryEvent struct {
	EventType              *string  `json:"eventType"`
	EventStartTimeGmt      *string  `json:"eventStartTimeGmt"`
	DurationInMilliseconds *float64 `json:"durationInMilliseconds"`
	BodyBatteryImpact      *float64 `json:"bodyBatteryImpact"`
	ShortFeedback          *string  `json:"shortFeedback"`
}

// BodyBatteryFeedback is the most recent body battery coaching message.
type BodyBatteryFeedback struct {
	FeedbackShortType *string `json:"feedbackShortType"`
	BodyBatteryLevel  *string `json:"bodyBatteryLevel"`
}

// SpO2Data is the daily pulse-ox report.
type SpO2Data struct {
	CalendarDate             *string  `json:"calendarDate"`
	AverageSpO2              *float64 `json:"averageSpO2"`
	LowestSpO2               *float64 `json:"lowestSpO2"`
	LatestSpO2               *float64 `json:"latestSpO2"`
	LatestSpO2TimestampLocal *string  `json:"latestSpO2TimestampLocal"`
	LastSevenDaysAvgSpO2     *float64 `json:"lastSevenDaysAvgSpO2"`
	AvgSleepSpO2             *float64 `json:"avgSleepSpO2"`
}

// TrainingReadiness is one readiness evaluation.
type TrainingReadiness struct {
	CalendarDate              *string  `json:"calendarDate"`
	Level                     *string  `json:"level"`
	Score                     *float64 `json:"score"`
	FeedbackShort             *string  `json:"feedbackShort"`
	SleepScore                *float64 `json:"sleepScore"`
	SleepScoreFactorPercent   *float64 `json:"sleepScoreFactorPercent"`
	RecoveryTime              *float64 `json:"recoveryTime"`
	RecoveryTimeFactorPercent *float64 `json:"recoveryTimeFactorPercent"`
	AcwrFactorPercent         *float64 `json:"acwrFactorPercent"`
	AcuteLoad                 *float64 `json:"acuteLoad"`
	HrvFactorPercent          *float64 `json:"hrvFactorPercent"`
	HrvWeeklyAverage          *float64 `json:"hrvWeeklyAverage"`
}

// HRVData is the overnight HRV report.
type HRVData struct {
	HrvSummary *HRVSummary `json:"hrvSummary"`
}

// HRVSummary is the summary block of HRVData.
type HRVSummary struct {
	CalendarDate      *string  `json:"calendarDate"`
	WeeklyAvg         *float64 `json:"weeklyAvg"`
	LastNightAvg      *float64 `json:"lastNightAvg"`
	LastNight5MinHigh *float64 `json:"lastNight5MinHigh"`
	Status            *string  `json:"status"`
	FeedbackPhrase    *string  `json:"feedbackPhrase"`
	Baseline          *struct {
		BalancedLow   *float64 `json:"balancedLow"`
		BalancedUpper *float64 `json:"balancedUpper"`
	} `json:"baseline"`
}

// MaxMetric is one VO2 max / fitness age record.
type MaxMetric struct {
	Generic *MaxMetricValues `json:"generic"`
	Cycling *MaxMetricValues `json:"cycling"`
}

// MaxMetricValues is the sport-specific block of a MaxMetric.
type MaxMetricValues struct {
	CalendarDate          *string  `json:"calendarDate"`
	VO2MaxValue           *float64 `json:"vo2MaxValue"`
	VO2MaxPreciseValue    *float64 `json:"vo2MaxPreciseValue"`
	FitnessAge            *float64 `json:"fitnessAge"`
	FitnessAgeDescription *string  `json:"fitnessAgeDescription"`
	MaxMetCategory        *float64 `json:"maxMetCategory"`
	ChronologicalAge      *float64 `json:"chronologicalAge"`
	LactateThresholdHR    *float64 `json:"lactateThresholdHeartRate"`
	LactateThresholdSpeed *float64 `json:"lactateThresholdSpeed"`
	MaxHeartRate          *float64 `json:"maxHeartRate"`
	FTP                   *float64 `json:"functionalThresholdPower"`
}

// TrainingStatus is the aggregated training status report.
type TrainingStatus struct {
	MostRecentVO2Max *struct {
		Generic *MaxMetricValues `json:"generic"`
	} `json:"mostRecentVO2Max"`
	MostRecentTrainingStatus *struct {
		LatestTrainingStatusData map[string]DeviceTrainingStatus `json:"latestTrainingStatusData"`
	} `json:"mostRecentTrainingStatus"`
	MostRecentTrainingLoadBalance *struct {
		MetricsTrainingLoadBalanceDTOMap map[string]TrainingLoadBalance `json:"metricsTrainingLoadBalanceDTOMap"`
	} `json:"mostRecentTrainingLoadBalance"`
}

// DeviceTrainingStatus is the per-device training status entry.
type DeviceTrainingStatus struct {
	CalendarDate                 *string    `json:"calendarDate"`
	TrainingStatus               *float64   `json:"trainingStatus"`
	TrainingStatusFeedbackPhrase *string    `json:"trainingStatusFeedbackPhrase"`
	Sport                        *string    `json:"sport"`
	FitnessTrend                 *float64   `json:"fitnessTrend"`
	AcuteTrainingLoad            *AcuteLoad `json:"acuteTrainingLoadDTO"`
}

// AcuteLoad is the acute:chronic workload block.
type AcuteLoad struct {
	DailyTrainingLoadAcute         *float64 `json:"dailyTrainingLoadAcute"`
	DailyTrainingLoadChronic       *float64 `json:"dailyTrainingLoadChronic"`
	DailyAcuteChronicWorkloadRatio *float64 `json:"dailyAcuteChronicWorkloadRatio"`
	AcwrStatus                     *string  `json:"acwrStatus"`
	AcwrPercent                    *float64 `json:"acwrPercent"`
	MinTrainingLoadChronic         *float64 `json:"minTrainingLoadChronic"`
	MaxTrainingLoadChronic         *float64 `json:"maxTrainingLoadChronic"`
}

// TrainingLoadBalance is the per-device monthly load balance.
type TrainingLoadBalance struct {
	MonthlyLoadAerobicLow         *float64 `json:"monthlyLoadAerobicLow"`
	MonthlyLoadAerobicHigh        *float64 `json:"monthlyLoadAerobicHigh"`
	MonthlyLoadAnaerobic          *float64 `json:"monthlyLoadAnaerobic"`
	TrainingBalanceFeedbackPhrase *string  `json:"trainingBalanceFeedbackPhrase"`
}

// FirstDeviceStatus returns the status entry of the lowest device id, or nil.
func (t *TrainingStatus) FirstDeviceStatus() *DeviceTrainingStatus {
	if t.MostRecentTrainingStatus == nil {
		return nil
	}
	return firstByKey(t.MostRecentTrainingStatus.LatestTrainingStatusData)
}

// FirstLoadBalance returns the load balance entry of the lowest device id, or nil.
func (t *TrainingStatus) FirstLoadBalance() *TrainingLoadBalance {
	if t.MostRecentTrainingLoadBalance == nil {
		return nil
	}
	return firstByKey(t.MostRecentTrainingLoadBalance.MetricsTrainingLoadBalanceDTOMap)
}

func firstByKey[T any](m map[string]T) *T {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	v := m[keys[0]]
	return &v
}

// ProgressSummary is the fitness stats aggregate for a date range.
type ProgressSummary struct {
	TotalDistance       *float64 `json:"totalDistance"`
	AvgDistance         *float64 `json:"avgDistance"`
	TotalDuration       *float64 `json:"totalDuration"`
	AvgDuration         *float64 `json:"avgDuration"`
	TotalElevationGain  *float64 `json:"totalElevationGain"`
	AvgElevationGain    *float64 `json:"avgElevationGain"`
	TotalMovingDuration *float64 `json:"totalMovingDuration"`
	AvgMovingDuration   *float64 `json:"avgMovingDuration"`
	AerobicEffect       *float64 `json:"aerobicEffect"`
	AnaerobicEffect     *float64 `json:"anaerobicEffect"`
	TrainingLoad        *float64 `json:"trainingLoad"`
	NumberOfActivities  *float64 `json:"numberOfActivities"`
}

// RacePredictions holds predicted finish times in seconds.
type RacePredictions struct {
	CalendarDate     *string  `json:"calendarDate"`
	Time5K           *float64 `json:"time5K"`
	Time10K          *float64 `json:"time10K"`
	TimeHalfMarathon *float64 `json:"timeHalfMarathon"`
	TimeMarathon     *float64 `json:"timeMarathon"`
}

// Goal is one user goal.
type Goal struct {
	GoalID       *int64   `json:"goalId"`
	GoalType     *string  `json:"goalType"`
	GoalName     *string  `json:"goalName"`
	GoalStatus   *string  `json:"goalStatus"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	GoalValue    *float64 `json:"goalValue"`
	CurrentValue *float64 `json:"currentValue"`
	ActivityType *string  `json:"activityTypeKey"`
}

// PersonalRecord is one personal best.
type PersonalRecord struct {
	ID                      *int64   `json:"id"`
	TypeID                  *int64   `json:"typeId"`
	ActivityID              *int64   `json:"activityId"`
	ActivityName            *string  `json:"activityName"`
	ActivityType            *string  `json:"activityType"`
	Value                   *float64 `json:"value"`
	PrStartTimeGmtFormatted *string  `json:"prStartTimeGmtFormatted"`
}

// ActivityTypeRef is the embedded activity type of an activity.
type ActivityTypeRef struct {
	TypeID       *int64  `json:"typeId"`
	TypeKey      *string `json:"typeKey"`
	ParentTypeID *int64  `json:"parentTypeId"`
	IsHidden     *bool   `json:"isHidden"`
	DisplayName  *string `json:"displayName"`
}

// ActivitySummary is one entry of the activity list.
type ActivitySummary struct {
	ActivityID     *int64           `json:"activityId"`
	ActivityName   *string          `json:"activityName"`
	ActivityType   *ActivityTypeRef `json:"activityType"`
	StartTimeLocal *string          `json:"startTimeLocal"`
	Distance       *float64         `json:"distance"`
	Duration       *float64         `json:"duration"`
	MovingDuration *float64         `json:"movingDuration"`
	Calories       *float64         `json:"calories"`
	AverageHR      *float64         `json:"averageHR"`
	MaxHR          *float64         `json:"maxHR"`
	Steps          *float64         `json:"steps"`
	AverageSpeed   *float64         `json:"averageSpeed"`
}

// ActivityDetail is the full record of one activity.
type ActivityDetail struct {
	ActivityID   *int64           `json:"activityId"`
	ActivityName *string          `json:"activityName"`
	ActivityType *ActivityTypeRef `json:"activityTypeDTO"`
	Summary      *struct {
		StartTimeLocal                  *string  `json:"startTimeLocal"`
		StartTimeGMT                    *string  `json:"startTimeGMT"`
		Duration                        *float64 `json:"duration"`
		MovingDuration                  *float64 `json:"movingDuration"`
		ElapsedDuration                 *float64 `json:"elapsedDuration"`
		Distance                        *float64 `json:"distance"`
		AverageSpeed                    *float64 `json:"averageSpeed"`
		MaxSpeed                        *float64 `json:"maxSpeed"`
		AverageHR                       *float64 `json:"averageHR"`
		MaxHR                           *float64 `json:"maxHR"`
		MinHR                           *float64 `json:"minHR"`
		Calories                        *float64 `json:"calories"`
		AverageRunCadence               *float64 `json:"averageRunCadence"`
		MaxRunCadence                   *float64 `json:"maxRunCadence"`
		StrideLength                    *float64 `json:"strideLength"`
		Steps                           *float64 `json:"steps"`
		AveragePower                    *float64 `json:"averagePower"`
		MaxPower                        *float64 `json:"maxPower"`
		NormalizedPower                 *float64 `json:"normalizedPower"`
		TrainingEffect                  *float64 `json:"trainingEffect"`
		AnaerobicTrainingEffect         *float64 `json:"anaerobicTrainingEffect"`
		TrainingEffectLabel             *string  `json:"trainingEffectLabel"`
		ActivityTrainingLoad            *float64 `json:"activityTrainingLoad"`
		RecoveryHeartRate               *float64 `json:"recoveryHeartRate"`
		DifferenceBodyBattery           *float64 `json:"differenceBodyBattery"`
		StartingTemperatureInFahrenheit *float64 `json:"startingTemperatureInFahrenheit"`
	} `json:"summaryDTO"`
	Metadata *struct {
		LapCount  *float64 `json:"lapCount"`
		HasSplits *bool    `json:"hasSplits"`
	} `json:"metadataDTO"`
}

// ActivityWeather is the weather recorded at the activity start.
type ActivityWeather struct {
	Temp             *float64 `json:"temp"`
	ApparentTemp     *float64 `json:"apparentTemp"`
	RelativeHumidity *float64 `json:"relativeHumidity"`
	WindSpeed        *float64 `json:"windSpeed"`
	WindDirection    *float64 `json:"windDirection"`
	WeatherType      *struct {
		Desc *string `json:"desc"`
	} `json:"weatherTypeDTO"`
}

// ActivitySplits holds the laps of an activity.
type ActivitySplits struct {
	ActivityID *int64 `json:"activityId"`
	Laps       []Lap  `json:"lapDTOs"`
}

// Lap is one split.
type Lap struct {
	LapIndex          *float64 `json:"lapIndex"`
	StartTimeGMT      *string  `json:"startTimeGMT"`
	Distance          *float64 `json:"distance"`
	Duration          *float64 `json:"duration"`
	AverageSpeed      *float64 `json:"averageSpeed"`
	MaxSpeed          *float64 `json:"maxSpeed"`
	AverageHR         *float64 `json:"averageHR"`
	MaxHR             *float64 `json:"maxHR"`
	Calories          *float64 `json:"calories"`
	AverageRunCadence *float64 `json:"averageRunCadence"`
	AveragePower      *float64 `json:"averagePower"`
	IntensityType     *string  `json:"intensityType"`
}

// ActivityHRZone is the time spent in one heart-rate zone.
type ActivityHRZone struct {
	ZoneNumber      *float64 `json:"zoneNumber"`
	SecsInZone      *float64 `json:"secsInZone"`
	ZoneLowBoundary *float64 `json:"zoneLowBoundary"`
}

// SocialProfile is the public profile of the signed-in user.
type SocialProfile struct {
	ID                    *int64  `json:"id"`
	ProfileID             *int64  `json:"profileId"`
	DisplayName           *string `json:"displayName"`
	FullName              *string `json:"fullName"`
	UserName              *string `json:"userName"`
	ProfileImageURLLarge  *string `json:"profileImageUrlLarge"`
	ProfileImageURLMedium *string `json:"profileImageUrlMedium"`
	Location              *string `json:"location"`
	AboutMe               *string `json:"aboutMe"`
}

// UserSettings is the private settings document.
type UserSettings struct {
	ID       *int64 `json:"id"`
	UserData *struct {
		Gender                    *string  `json:"gender"`
		Weight                    *float64 `json:"weight"`
		Height                    *float64 `json:"height"`
		BirthDate                 *string  `json:"birthDate"`
		MeasurementSystem         *string  `json:"measurementSystem"`
		ActivityLevel             *float64 `json:"activityLevel"`
		Handedness                *string  `json:"handedness"`
		VO2MaxRunning             *float64 `json:"vo2MaxRunning"`
		VO2MaxCycling             *float64 `json:"vo2MaxCycling"`
		LactateThresholdHeartRate *float64 `json:"lactateThresholdHeartRate"`
		LactateThresholdSpeed     *float64 `json:"lactateThresholdSpeed"`
	} `json:"userData"`
}

// Device is one registered device.
type Device struct {
	DeviceID              *int64   `json:"deviceId"`
	DisplayName           *string  `json:"displayName"`
	ProductDisplayName    *string  `json:"productDisplayName"`
	PartNumber            *string  `json:"partNumber"`
	SerialNumber          *string  `json:"serialNumber"`
	SoftwareVersionString *string  `json:"softwareVersionString"`
	DeviceStatusName      *string  `json:"deviceStatusName"`
	LastSyncTime          *float64 `json:"lastSyncTime"`
	BatteryStatus         *string  `json:"batteryStatus"`
	DeviceTypeName        *string  `json:"deviceTypeName"`
}

// DeviceRef identifies a device in the last-used and primary device lookups.
type DeviceRef struct {
	DeviceID          *int64 `json:"deviceId"`
	UserDeviceID      *int64 `json:"userDeviceId"`
	UserProfileNumber *int64 `json:"userProfileNumber"`
}

// ID returns the device id from whichever field is populated, or 0.
func (d *DeviceRef) ID() int64 {
	switch {
	case d == nil:
		return 0
	case d.DeviceID != nil:
		return *d.DeviceID
	case d.UserDeviceID != nil:
		return *d.UserDeviceID
	}
	return 0
}

// Gear is one piece of tracked equipment.
type Gear struct {
	UUID           *string  `json:"uuid"`
	DisplayName    *string  `json:"displayName"`
	ModelName      *string  `json:"modelName"`
	BrandName      *string  `json:"brandName"`
	GearTypeName   *string  `json:"gearTypeName"`
	GearStatusName *string  `json:"gearStatusName"`
	MaximumMeters  *float64 `json:"maximumMeters"`
	DateBegin      *string  `json:"dateBegin"`
	DateEnd        *string  `json:"dateEnd"`
}

// GearStats is the usage total of one piece of gear.
type GearStats struct {
	TotalDistance   *float64 `json:"totalDistance"`
	TotalActivities *float64 `json:"totalActivities"`
}

// WeightMetric is one body weight measurement. Masses are in grams.
type WeightMetric struct {
	SamplePK     *int64   `json:"samplePk"`
	CalendarDate *string  `json:"calendarDate"`
	Weight       *float64 `json:"weight"`
	BMI          *float64 `json:"bmi"`
	BodyFat      *float64 `json:"bodyFat"`
	BodyWater    *float64 `json:"bodyWater"`
	BoneMass     *float64 `json:"boneMass"`
	MuscleMass   *float64 `json:"muscleMass"`
	SourceType   *string  `json:"sourceType"`
	TimestampGMT *float64 `json:"timestampGMT"`
}

// WeighIns is the weight range report.
type WeighIns struct {
	DailyWeightSummaries []struct {
		SummaryDate      *string        `json:"summaryDate"`
		AllWeightMetrics []WeightMetric `json:"allWeightMetrics"`
	} `json:"dailyWeightSummaries"`
}

// Metrics flattens every measurement of the report.
func (w *WeighIns) Metrics() []WeightMetric {
	var out []WeightMetric
	for _, day := range w.DailyWeightSummaries {
		out = append(out, day.AllWeightMetrics...)
	}
	return out
}

// DayView lists the weight samples recorded on one day.
type DayView struct {
	DateWeightList []WeightMetric `json:"dateWeightList"`
}

// BodyComposition is the body composition report for a date range.
type BodyComposition struct {
	StartDate      *string        `json:"startDate"`
	EndDate        *string        `json:"endDate"`
	DateWeightList []WeightMetric `json:"dateWeightList"`
	TotalAverage   *WeightMetric  `json:"totalAverage"`
}

// HydrationLog is the daily hydration state after a log entry.
type HydrationLog struct {
	CalendarDate  *string  `json:"calendarDate"`
	ValueInML     *float64 `json:"valueInML"`
	GoalInML      *float64 `json:"goalInML"`
	SweatLossInML *float64 `json:"sweatLossInML"`
}

// SportType identifies the sport of a workout.
type SportType struct {
	SportTypeID  *int64  `json:"sportTypeId"`
	SportTypeKey *string `json:"sportTypeKey"`
}

// Workout is a workout library entry. Segments are kept as generic trees.
type Workout struct {
	WorkoutID                 *int64           `json:"workoutId"`
	WorkoutName               *string          `json:"workoutName"`
	Description               *string          `json:"description"`
	SportType                 *SportType       `json:"sportType"`
	WorkoutProvider           *string          `json:"workoutProvider"`
	CreatedDate               *string          `json:"createdDate"`
	UpdatedDate               *string          `json:"updatedDate"`
	EstimatedDurationInSecs   *float64         `json:"estimatedDurationInSecs"`
	EstimatedDistanceInMeters *float64         `json:"estimatedDistanceInMeters"`
	AvgTrainingSpeed          *float64         `json:"avgTrainingSpeed"`
	WorkoutSegments           []map[string]any `json:"workoutSegments"`
}

// ScheduledWorkout is a workout placed on the calendar.
type ScheduledWorkout struct {
	WorkoutScheduleID *int64   `json:"workoutScheduleId"`
	Date              *string  `json:"date"`
	CalendarDate      *string  `json:"calendarDate"`
	Completed         *bool    `json:"completed"`
	Workout           *Workout `json:"workout"`
}

// TrainingPlan is one plan's week of workouts from the GraphQL gateway.
type TrainingPlan struct {
	PlanName *string               `json:"planName"`
	Workouts []TrainingPlanWorkout `json:"workoutScheduleSummaries"`
}

// TrainingPlanWorkout is one dated workout of a training plan.
type TrainingPlanWorkout struct {
	ScheduleDate         *string `json:"scheduleDate"`
	WorkoutName          *string `json:"workoutName"`
	WorkoutUUID          *string `json:"workoutUuid"`
	AssociatedActivityID *int64  `json:"associatedActivityId"`
}

// ScheduledOn returns the calendar date of the entry.
func (s *ScheduledWorkout) ScheduledOn() *string {
	if s.Date != nil {
		return s.Date
	}
	return s.CalendarDate
}

// isEmptyBody reports whether a response carries no data.
func isEmptyBody(data []byte) bool {
	switch string(bytes.TrimSpace(data)) {
	case "", "null", "{}", "[]", `""`:
		return true
	}
	return false
}
