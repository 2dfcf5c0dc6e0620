package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lake-route/internal/route"
)

func TestRunBatch_PreservesOrder(t *testing.T) {
	queries := []batchQuery{
		{ID: "a", StartLng: 0, StartLat: 0, EndLng: 0.002, EndLat: 0},
		{ID: "b", StartLng: 0.002, StartLat: 0, EndLng: 0.002, EndLat: 0},
		{ID: "c", StartLng: 5, StartLat: 5, EndLng: 6, EndLat: 6},
	}

	results, err := runBatch(context.Background(), shoreEvaluator(), queries, 3, false)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, 71, results[0].DirectQuality)
	assert.Equal(t, 55.0, results[0].DirectScore)
	assert.Equal(t, 88, results[0].QualityQuality)
	assert.Equal(t, 68.0, results[0].QualityScore)
	assert.Equal(t, route.VariantQuality, results[0].Preferred)

	assert.Equal(t, "b", results[1].ID)
	assert.Equal(t, 80, results[1].DirectQuality)
	assert.Equal(t, 64.0, results[1].DirectScore)

	assert.Equal(t, "c", results[2].ID)
	assert.Empty(t, results[2].Error)
	assert.False(t, results[2].DirectValid)
}

func TestRunBatch_SnapFailureIsPerRow(t *testing.T) {
	queries := []batchQuery{
		{ID: "near", StartLng: 0.0001, EndLng: 0.0019},
		{ID: "far", StartLng: 5, StartLat: 5, EndLng: 0.002},
	}

	results, err := runBatch(context.Background(), shoreEvaluator(), queries, 0, true)
	require.NoError(t, err)

	assert.Empty(t, results[0].Error)
	assert.True(t, results[0].DirectValid)
	assert.Contains(t, results[1].Error, "no sample near start")
	assert.Zero(t, results[1].DirectQuality)
}

func TestRunBatch_RejectsBadCoordinates(t *testing.T) {
	queries := []batchQuery{
		{ID: "nan", StartLng: math.NaN(), EndLng: 0.002},
		{ID: "huge", StartLng: 1e308, EndLng: 0.002},
		{ID: "ok", EndLng: 0.002},
	}

	results, err := runBatch(context.Background(), shoreEvaluator(), queries, 2, false)
	require.NoError(t, err)

	assert.Contains(t, results[0].Error, "not finite")
	assert.Zero(t, results[0].DirectScore)
	assert.Contains(t, results[1].Error, "out of range")
	assert.Empty(t, results[2].Error)
	assert.Equal(t, 55.0, results[2].DirectScore)
}

func TestBatchCommand_NaNRowIsReported(t *testing.T) {
	dir := useTestConfig(t)
	in := filepath.Join(dir, "queries.csv")
	require.NoError(t, os.WriteFile(in, []byte("id,start_lng,start_lat,end_lng,end_lat\n"+
		"bad,NaN,0,0.002,0\n"), 0o644))
	out := filepath.Join(dir, "results.csv")

	batchInput, batchOutput, batchSnap = in, out, false
	t.Cleanup(func() { batchInput, batchOutput = "", "" })

	cmd := withContext(batchCmd)
	require.NoError(t, cmd.RunE(cmd, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []batchResult
	require.NoError(t, csvutil.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].Error, "not finite")
}

func TestRunBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runBatch(ctx, shoreEvaluator(), []batchQuery{{ID: "x"}}, 1, false)
	assert.Error(t, err)
}

func TestBatchCommand_CSVRoundTrip(t *testing.T) {
	dir := useTestConfig(t)
	in := filepath.Join(dir, "queries.csv")
	require.NoError(t, os.WriteFile(in, []byte("id,start_lng,start_lat,end_lng,end_lat\n"+
		"q1,0,0,0.002,0\n"+
		"q2,0.002,0,0,0\n"), 0o644))
	out := filepath.Join(dir, "results.csv")

	batchInput, batchOutput, batchSnap = in, out, false
	t.Cleanup(func() { batchInput, batchOutput = "", "" })

	cmd := withContext(batchCmd)
	require.NoError(t, cmd.RunE(cmd, nil))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var rows []batchResult
	require.NoError(t, csvutil.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "q1", rows[0].ID)
	assert.Equal(t, 71, rows[0].DirectQuality)
	assert.Equal(t, "q2", rows[1].ID)
	assert.True(t, rows[1].QualityValid)
}
