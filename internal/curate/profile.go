package curate

import (
	"context"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

// UnknownName is returned by FullName when Garmin has no name on file.
const UnknownName = "Unknown"

// FullName returns the user's full name, falling back to the display name
// and then to UnknownName. It never fails.
func FullName(ctx context.Context, up api.Upstream) string {
	name, ok := attempt(ctx, "full name", func() (string, error) {
		return up.FullName(ctx)
	})
	if !ok || name == "" {
		return UnknownName
	}
	return name
}

// UserProfile merges the public profile with the private settings.
func UserProfile(ctx context.Context, up api.Upstream) (Result, error) {
	p, err := up.SocialProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return NotFound("No user profile found"), nil
	}
	r := Result{
		"user_profile_id":   p.ProfileID,
		"display_name":      p.DisplayName,
		"full_name":         p.FullName,
		"profile_image_url": firstString(p.ProfileImageURLLarge, p.ProfileImageURLMedium),
		"home_location":     p.Location,
		"bio":               p.AboutMe,
	}

	settings, ok := attempt(ctx, "user settings", func() (*api.UserSettings, error) {
		return up.UserSettings(ctx)
	})
	if ok && settings != nil && settings.UserData != nil {
		u := settings.UserData
		r["settings"] = Result{
			"weight_kg":                   scaled(u.Weight, 1000),
			"height_cm":                   u.Height,
			"birth_date":                  u.BirthDate,
			"sex":                         u.Gender,
			"measurement_system":          u.MeasurementSystem,
			"activity_level":              u.ActivityLevel,
			"dominant_hand":               u.Handedness,
			"vo2_max_running":             u.VO2MaxRunning,
			"vo2_max_cycling":             u.VO2MaxCycling,
			"lactate_threshold_hr_bpm":    u.LactateThresholdHeartRate,
			"lactate_threshold_speed_mps": u.LactateThresholdSpeed,
		}
	}
	return clean(r), nil
}

// Devices lists registered devices, flagging the last used and the primary
// training device when those lookups succeed.
func Devices(ctx context.Context, up api.Upstream) (Result, error) {
	raw, err := up.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No devices found"), nil
	}
	lastUsed, _ := attempt(ctx, "last used device", func() (*api.DeviceRef, error) {
		return up.DeviceLastUsed(ctx)
	})
	primary, _ := attempt(ctx, "primary training device", func() (*api.DeviceRef, error) {
		return up.PrimaryTrainingDevice(ctx)
	})
	lastUsedID, primaryID := lastUsed.ID(), primary.ID()

	devices := make([]Result, len(raw))
	for i, d := range raw {
		var id int64
		if d.DeviceID != nil {
			id = *d.DeviceID
		}
		devices[i] = Result{
			"device_id":           d.DeviceID,
			"name":                firstString(d.DisplayName, d.ProductDisplayName),
			"model":               d.PartNumber,
			"serial_number":       d.SerialNumber,
			"software_version":    d.SoftwareVersionString,
			"device_status":       d.DeviceStatusName,
			"last_sync_time":      d.LastSyncTime,
			"battery_status":      d.BatteryStatus,
			"device_type":         d.DeviceTypeName,
			"is_last_used":        trueOrNil(id != 0 && id == lastUsedID),
			"is_primary_training": trueOrNil(id != 0 && id == primaryID),
		}
	}
	return clean(Result{
		"count":   len(devices),
		"devices": devices,
	}), nil
}
