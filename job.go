package flightquery

import (
	"errors"
	"fmt"
	"math"
	"sort"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/airlinestats/flightquery/internal/pkg/bigtab"
	"github.com/airlinestats/flightquery/internal/pkg/tabfs"
)

// FlightColumns is the fixed column layout shared by every flight table.
// All files that may be unioned into "all flights" carry exactly these
// columns, in this order.
var FlightColumns = []string{
	"Year", "Month", "DayofMonth", "DayOfWeek", "DepTime", "CRSDepTime",
	"ArrTime", "CRSArrTime", "UniqueCarrier", "FlightNum", "TailNum",
	"ActualElapsedTime", "CRSElapsedTime", "AirTime", "ArrDelay",
	"DepDelay", "Origin", "Dest", "Distance", "TaxiIn", "TaxiOut",
	"Cancelled", "CancellationCode", "Diverted", "CarrierDelay",
	"WeatherDelay", "NASDelay", "SecurityDelay", "LateAircraftDelay",
}

const (
	colYear    = 0
	colMonth   = 1
	colTailNum = 10
)

// TailNumSentinel is the TailNum value marking a record whose aircraft
// identifier is unknown. Sentinel records are excluded from aggregation.
const TailNumSentinel = -1

// ErrEmptyPartition reports a partition key with no matching rows. Keys
// are derived from the same table they are queried against, so this only
// happens when descriptor versions disagree mid-run.
var ErrEmptyPartition = errors.New("no rows for partition key")

// Job computes the first recorded flight of every aircraft in a table.
type Job struct {
	DescriptorName string

	tables *tabfs.Cache
	config *config
}

// NewJob creates a Job over the named table.
func NewJob(descriptorName string) *Job {
	return &Job{DescriptorName: descriptorName}
}

// open acquires a table handle from the process-wide cache and verifies
// the flight schema.
func (j *Job) open() (*bigtab.Table, error) {
	table, err := j.tables.Open(j.DescriptorName)
	if err != nil {
		return nil, err
	}
	if err := checkFlightSchema(table); err != nil {
		return nil, err
	}
	return table, nil
}

func checkFlightSchema(table *bigtab.Table) error {
	columns := table.Columns()
	if len(columns) != len(FlightColumns) {
		return &bigtab.FormatError{
			Reason: fmt.Sprintf("table has %d columns, flight tables have %d", len(columns), len(FlightColumns)),
		}
	}
	for i, name := range FlightColumns {
		if columns[i] != name {
			return &bigtab.FormatError{
				Reason: fmt.Sprintf("column %d is %q, expected %q", i, columns[i], name),
			}
		}
	}
	return nil
}

// partitionKeys scans the TailNum column once and returns the distinct
// aircraft identifiers, sentinel excluded, sorted ascending. Sorting
// makes dispatch order (and therefore report order) deterministic.
func (j *Job) partitionKeys() ([]int64, error) {
	table, err := j.open()
	if err != nil {
		return nil, err
	}

	tails, err := table.Column(colTailNum)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{})
	err = tails.Scan(func(_ int64, v float64) error {
		if math.IsNaN(v) || int64(v) == TailNumSentinel {
			return nil
		}
		seen[int64(v)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]int64, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	size := uint64(table.Rows()) * uint64(len(table.Columns())) * 8
	log.Debugf("Found %d distinct aircraft across %d rows (%s)",
		len(keys), table.Rows(), humanize.Bytes(size))
	return keys, nil
}

// runPartition answers the sub-query for one aircraft: the earliest year
// it appears in, and the earliest month within that year. Missing values
// are skipped; a partition where every value in scope is missing is fatal.
func (j *Job) runPartition(tailNum int64) (PartitionResult, error) {
	// Each task acquires its own handle lazily; the cache collapses
	// concurrent opens of the same table within the process.
	table, err := j.open()
	if err != nil {
		return PartitionResult{}, err
	}

	rows, err := table.FilterRows(colTailNum, float64(tailNum))
	if err != nil {
		return PartitionResult{}, err
	}
	if len(rows) == 0 {
		return PartitionResult{}, fmt.Errorf("aircraft %d: %w", tailNum, ErrEmptyPartition)
	}

	dates, err := table.Submatrix(rows, []int{colYear, colMonth})
	if err != nil {
		return PartitionResult{}, err
	}

	minYear := math.NaN()
	for _, date := range dates {
		if y := date[0]; !math.IsNaN(y) && (math.IsNaN(minYear) || y < minYear) {
			minYear = y
		}
	}
	if math.IsNaN(minYear) {
		return PartitionResult{}, fmt.Errorf("aircraft %d: no usable year values", tailNum)
	}

	minMonth := math.NaN()
	for _, date := range dates {
		if date[0] != minYear {
			continue
		}
		if m := date[1]; !math.IsNaN(m) && (math.IsNaN(minMonth) || m < minMonth) {
			minMonth = m
		}
	}
	if math.IsNaN(minMonth) {
		return PartitionResult{}, fmt.Errorf("aircraft %d: no usable month values in year %d", tailNum, int(minYear))
	}

	return PartitionResult{
		TailNum: tailNum,
		Year:    int(minYear),
		Month:   int(minMonth),
	}, nil
}
