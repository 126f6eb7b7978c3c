// 将通过量采样与汇总写入MongoDB
package output

import (
	"context"
	"time"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/gridsim-oss/metrics"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	KindCheckpoint = "checkpoint"
	KindSummary    = "summary"

	writeTimeout = 10 * time.Second
)

// Writer MongoDB输出
// 功能：每个冻结的采样点写入一条文档，仿真结束时写入一条汇总文档
// 说明：同一次运行的文档共用一个run_id
type Writer struct {
	runID string
	job   string

	client *mongo.Client
	col    *mongo.Collection
}

// New 连接MongoDB并创建输出
// 参数：c-输出配置，job-任务名
func New(c config.Output, job string) *Writer {
	client := mongoutil.NewClient(c.URI)
	w := &Writer{
		runID:  uuid.NewString(),
		job:    job,
		client: client,
		col:    client.Database(c.DB).Collection(c.Col),
	}
	log.Infof("output to %s.%s, run id %s", c.DB, c.Col, w.runID)
	return w
}

// RunID 本次运行的ID
func (w *Writer) RunID() string {
	return w.runID
}

// WriteCheckpoint 写入一个采样点
func (w *Writer) WriteCheckpoint(step int32, cp metrics.Checkpoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_, err := w.col.InsertOne(ctx, CheckpointDoc(w.runID, w.job, step, cp))
	return err
}

// WriteSummary 写入汇总
func (w *Writer) WriteSummary(step int32, summary metrics.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_, err := w.col.InsertOne(ctx, SummaryDoc(w.runID, w.job, step, summary))
	return err
}

// Close 断开连接
func (w *Writer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return w.client.Disconnect(ctx)
}

// CheckpointDoc 采样点文档
func CheckpointDoc(runID, job string, step int32, cp metrics.Checkpoint) bson.M {
	return bson.M{
		"run_id":  runID,
		"job":     job,
		"kind":    KindCheckpoint,
		"step":    step,
		"seconds": cp.Seconds,
		"exited":  cp.Value,
	}
}

// SummaryDoc 汇总文档
func SummaryDoc(runID, job string, step int32, summary metrics.Summary) bson.M {
	checkpoints := make(bson.A, 0, len(summary.Checkpoints))
	for _, cp := range summary.Checkpoints {
		if !cp.Captured {
			continue
		}
		checkpoints = append(checkpoints, bson.M{
			"seconds": cp.Seconds,
			"exited":  cp.Value,
		})
	}
	return bson.M{
		"run_id":      runID,
		"job":         job,
		"kind":        KindSummary,
		"step":        step,
		"exited":      summary.Exited,
		"spawned":     summary.Spawned,
		"uncounted":   summary.Uncounted,
		"checkpoints": checkpoints,
	}
}
