package curate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullNameFallsBackToUnknown(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, "Pat Runner", FullName(ctx, newStub(map[string]string{"FullName": "Pat Runner"})))
	assert.Equal(t, UnknownName, FullName(ctx, newStub(nil)))
	assert.Equal(t, UnknownName, FullName(ctx, newStub(nil).fail("FullName", errors.New("offline"))))
}

func TestUserProfileSettingsAreBestEffort(t *testing.T) {
	profile := `{"profileId":91,"displayName":"runner1","fullName":"Pat Runner","location":"Oslo"}`
	ctx := context.Background()

	full := newStub(map[string]string{
		"SocialProfile": profile,
		"UserSettings":  `{"userData":{"weight":72570,"height":180,"gender":"FEMALE","handedness":"LEFT"}}`,
	})
	got, err := UserProfile(ctx, full)
	require.NoError(t, err)
	assert.Equal(t, int64(91), got["user_profile_id"])
	assert.Equal(t, "Oslo", got["home_location"])
	assert.Equal(t, map[string]any{
		"weight_kg":     72.6,
		"height_cm":     180.0,
		"sex":           "FEMALE",
		"dominant_hand": "LEFT",
	}, got["settings"])

	partial := newStub(map[string]string{"SocialProfile": profile}).fail("UserSettings", errors.New("forbidden"))
	got, err = UserProfile(ctx, partial)
	require.NoError(t, err)
	assert.NotContains(t, got, "settings")
	assert.Equal(t, "Pat Runner", got["full_name"])
}

func TestDevicesFlagsLastUsedAndPrimary(t *testing.T) {
	up := newStub(map[string]string{
		"Devices": `[
			{"deviceId":1,"productDisplayName":"Edge 540","deviceStatusName":"ACTIVE"},
			{"deviceId":2,"displayName":"My Forerunner","productDisplayName":"Forerunner 965"}
		]`,
		"DeviceLastUsed": `{"userDeviceId":2,"userProfileNumber":91}`,
	}).fail("PrimaryTrainingDevice", errors.New("not supported"))

	got, err := Devices(context.Background(), up)

	require.NoError(t, err)
	assert.Equal(t, 2, got["count"])
	devices := got["devices"].([]any)
	assert.Equal(t, map[string]any{
		"device_id":     int64(1),
		"name":          "Edge 540",
		"device_status": "ACTIVE",
	}, devices[0])
	assert.Equal(t, map[string]any{
		"device_id":    int64(2),
		"name":         "My Forerunner",
		"is_last_used": true,
	}, devices[1])
}

func TestDevicesNotFound(t *testing.T) {
	got, err := Devices(context.Background(), newStub(map[string]string{"Devices": `[]`}))
	require.NoError(t, err)
	assert.Equal(t, Result{"error": "No devices found"}, got)
}
