package curate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeighInsConvertsGrams(t *testing.T) {
	up := newStub(map[string]string{
		"WeighIns": `{"dailyWeightSummaries":[
			{"summaryDate":"2024-01-15","allWeightMetrics":[{"samplePk":1,"calendarDate":"2024-01-15","weight":72570,"bmi":22.4,"bodyFat":null,"sourceType":"INDEX_SCALE"}]},
			{"summaryDate":"2024-01-16","allWeightMetrics":[{"samplePk":2,"calendarDate":"2024-01-16","weight":72100,"boneMass":3100}]}
		]}`,
	})

	got, err := WeighIns(context.Background(), up, "2024-01-15", "2024-01-16")

	require.NoError(t, err)
	assert.Equal(t, 2, got["count"])
	entries := got["weigh_ins"].([]any)
	assert.Equal(t, map[string]any{
		"calendar_date":   "2024-01-15",
		"weight_kg":       72.6,
		"body_mass_index": 22.4,
		"source_type":     "INDEX_SCALE",
	}, entries[0])
	assert.Equal(t, 3.1, entries[1].(map[string]any)["bone_mass_kg"])
}

func TestWeighInsEmpty(t *testing.T) {
	up := newStub(map[string]string{"WeighIns": `{"dailyWeightSummaries":[]}`})

	got, err := WeighIns(context.Background(), up, "2024-01-15", "2024-01-16")

	require.NoError(t, err)
	assert.Equal(t, Result{"error": "No weight data between 2024-01-15 and 2024-01-16"}, got)
}

func TestDeleteWeighIns(t *testing.T) {
	ctx := context.Background()

	got, err := DeleteWeighIns(ctx, newStub(map[string]string{"DeleteWeighIns": "2"}), "2024-01-15", true)
	require.NoError(t, err)
	assert.Equal(t, Result{"status": "deleted", "calendar_date": "2024-01-15", "deleted_count": 2}, got)

	got, err = DeleteWeighIns(ctx, newStub(nil), "2024-01-15", false)
	require.NoError(t, err)
	assert.Equal(t, Result{"error": "No weigh-ins to delete on 2024-01-15"}, got)
}
