package output

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/gridsim-oss/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCheckpointDoc(t *testing.T) {
	runID := uuid.NewString()
	doc := CheckpointDoc(runID, "job0", 1800, metrics.Checkpoint{Seconds: 60, Value: 12, Captured: true})
	assert.Equal(t, runID, doc["run_id"])
	assert.Equal(t, "job0", doc["job"])
	assert.Equal(t, KindCheckpoint, doc["kind"])
	assert.Equal(t, int32(1800), doc["step"])
	assert.Equal(t, 60., doc["seconds"])
	assert.Equal(t, int32(12), doc["exited"])

	// 可以编码为BSON
	b, err := bson.Marshal(doc)
	require.NoError(t, err)
	var back bson.M
	require.NoError(t, bson.Unmarshal(b, &back))
	assert.Equal(t, runID, back["run_id"])
}

func TestSummaryDocSkipsPending(t *testing.T) {
	doc := SummaryDoc("run", "job0", 2000, metrics.Summary{
		Exited:    20,
		Spawned:   40,
		Uncounted: 3,
		Checkpoints: []metrics.Checkpoint{
			{Seconds: 60, Value: 12, Captured: true},
			{Seconds: 90},
		},
	})
	assert.Equal(t, KindSummary, doc["kind"])
	assert.Equal(t, int32(20), doc["exited"])
	assert.Equal(t, int32(40), doc["spawned"])
	assert.Equal(t, int32(3), doc["uncounted"])
	checkpoints, ok := doc["checkpoints"].(bson.A)
	require.True(t, ok)
	require.Len(t, checkpoints, 1)
	assert.Equal(t, bson.M{"seconds": 60., "exited": int32(12)}, checkpoints[0])
}
