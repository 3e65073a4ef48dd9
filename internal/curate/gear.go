package curate

import (
	"context"

	"github.com/colthorp/garmin-mcp-go/internal/api"
)

// Gear lists the user's equipment. The profile id comes from the last used
// device. With includeStats, each entry also gets its usage totals when
// those can be fetched.
func Gear(ctx context.Context, up api.Upstream, includeStats bool) (Result, error) {
	ref, err := up.DeviceLastUsed(ctx)
	if err != nil {
		return nil, err
	}
	if ref == nil || ref.UserProfileNumber == nil {
		return NotFound("Could not determine the user profile for gear lookup"), nil
	}
	raw, err := up.Gear(ctx, *ref.UserProfileNumber)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return NotFound("No gear found"), nil
	}

	gear := make([]Result, len(raw))
	for i, g := range raw {
		item := Result{
			"gear_uuid":           g.UUID,
			"name":                g.DisplayName,
			"model":               g.ModelName,
			"brand":               g.BrandName,
			"gear_type":           g.GearTypeName,
			"gear_status":         g.GearStatusName,
			"max_distance_meters": g.MaximumMeters,
			"date_begin":          g.DateBegin,
			"date_end":            g.DateEnd,
		}
		if includeStats && g.UUID != nil {
			uuid := *g.UUID
			stats, ok := attempt(ctx, "gear stats", func() (*api.GearStats, error) {
				return up.GearStats(ctx, uuid)
			})
			if ok && stats != nil {
				item["total_activities"] = stats.TotalActivities
				item["total_distance_km"] = scaled(stats.TotalDistance, 1000)
			}
		}
		gear[i] = item
	}
	return clean(Result{
		"count": len(gear),
		"gear":  gear,
	}), nil
}

// AddGearToActivity links gear to an activity.
func AddGearToActivity(ctx context.Context, up api.Upstream, gearUUID string, activityID int64) (Result, error) {
	if err := up.AddGearToActivity(ctx, gearUUID, activityID); err != nil {
		return nil, err
	}
	return gearLinkResult("linked", gearUUID, activityID), nil
}

// RemoveGearFromActivity unlinks gear from an activity.
func RemoveGearFromActivity(ctx context.Context, up api.Upstream, gearUUID string, activityID int64) (Result, error) {
	if err := up.RemoveGearFromActivity(ctx, gearUUID, activityID); err != nil {
		return nil, err
	}
	return gearLinkResult("unlinked", gearUUID, activityID), nil
}

func gearLinkResult(status, gearUUID string, activityID int64) Result {
	return Result{
		"status":      status,
		"gear_uuid":   gearUUID,
		"activity_id": activityID,
	}
}
