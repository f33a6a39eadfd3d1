package flightquery

import (
	"fmt"
	"io"
)

// PartitionResult is the answer for one aircraft: the earliest calendar
// month at which it appears in the table.
type PartitionResult struct {
	TailNum int64 `json:"tail_num"`
	Year    int   `json:"year"`
	Month   int   `json:"month"`
}

func (r PartitionResult) String() string {
	return fmt.Sprintf("First flight for: %d on: %d/%d", r.TailNum, r.Year, r.Month)
}

// Report holds all partition results in task-dispatch order.
type Report struct {
	Results []PartitionResult
}

// WriteTo renders the report as text, one result per line.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, result := range r.Results {
		n, err := fmt.Fprintln(w, result.String())
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
