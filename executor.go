package flightquery

type executor interface {
	RunPartition(job *Job, taskID int, tailNum int64) (PartitionResult, error)
}

type localExecutor struct{}

func (localExecutor) RunPartition(job *Job, taskID int, tailNum int64) (PartitionResult, error) {
	return job.runPartition(tailNum)
}
