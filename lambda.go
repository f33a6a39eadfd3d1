package flightquery

import (
	"context"
	"encoding/json"
	"os"

	"github.com/airlinestats/flightquery/internal/pkg/awsinvoke"
	"github.com/airlinestats/flightquery/internal/pkg/tabfs"
)

var (
	currentJob *Job
)

// runningInLambda infers if the program is running in AWS lambda via inspection of the environment
func runningInLambda() bool {
	expectedEnvVars := []string{"LAMBDA_TASK_ROOT", "AWS_EXECUTION_ENV", "LAMBDA_RUNTIME_DIR"}
	for _, envVar := range expectedEnvVars {
		if os.Getenv(envVar) == "" {
			return false
		}
	}
	return true
}

func handleRequest(ctx context.Context, t task) (PartitionResult, error) {
	store, err := tabfs.InferStore(t.InputLocation)
	if err != nil {
		return PartitionResult{}, err
	}
	tables, err := tabfs.NewCache(store, t.CacheSize)
	if err != nil {
		return PartitionResult{}, err
	}
	defer tables.Close()

	currentJob.DescriptorName = t.DescriptorName
	currentJob.tables = tables
	return currentJob.runPartition(t.TailNum)
}

type lambdaExecutor struct {
	*awsinvoke.Client
	functionName string
}

func (l *lambdaExecutor) RunPartition(job *Job, taskID int, tailNum int64) (PartitionResult, error) {
	partitionTask := task{
		TaskID:         taskID,
		TailNum:        tailNum,
		DescriptorName: job.DescriptorName,
		InputLocation:  job.config.InputLocation,
		CacheSize:      job.config.CacheSize,
	}
	payload, err := json.Marshal(partitionTask)
	if err != nil {
		return PartitionResult{}, err
	}

	response, err := l.Invoke(l.functionName, payload)
	if err != nil {
		return PartitionResult{}, err
	}

	var result PartitionResult
	err = json.Unmarshal(response, &result)
	return result, err
}
