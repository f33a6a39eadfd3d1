package flightquery

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionResultString(t *testing.T) {
	result := PartitionResult{TailNum: 4805, Year: 1999, Month: 11}
	assert.Equal(t, "First flight for: 4805 on: 1999/11", result.String())
}

func TestReportWriteTo(t *testing.T) {
	report := &Report{Results: []PartitionResult{
		{TailNum: 10, Year: 2007, Month: 5},
		{TailNum: 20, Year: 2006, Month: 12},
	}}

	var buf bytes.Buffer
	n, err := report.WriteTo(&buf)
	assert.Nil(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t,
		"First flight for: 10 on: 2007/5\nFirst flight for: 20 on: 2006/12\n",
		buf.String())
}

func TestEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	n, err := (&Report{}).WriteTo(&buf)
	assert.Nil(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}
