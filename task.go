package flightquery

// task is the payload handed to a remote executor. It carries everything
// a worker needs to re-open the table and answer one partition's query.
type task struct {
	TaskID         int    `json:"task_id"`
	TailNum        int64  `json:"tail_num"`
	DescriptorName string `json:"descriptor_name"`
	InputLocation  string `json:"input_location"`
	CacheSize      int    `json:"cache_size"`
}
