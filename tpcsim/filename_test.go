package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampedFilename(t *testing.T) {
	stamp := time.Date(2016, time.March, 7, 9, 5, 2, 0, time.Local)
	assert.Equal(t, "2016-3-7_9-5-2_events.h5", timestampedFilename("events.h5", stamp))
	assert.Equal(t, "data/2016-3-7_9-5-2_events.h5", timestampedFilename("data/events.h5", stamp))
}

func TestWorkerFilename(t *testing.T) {
	assert.Equal(t, "events_t0.h5", workerFilename("events.h5", 0))
	assert.Equal(t, "out/run_t3.h5", workerFilename("out/run.h5", 3))
	assert.Equal(t, "events_t1", workerFilename("events", 1))
}

func TestSummaryFilename(t *testing.T) {
	assert.Equal(t, "out/run.yoda", summaryFilename("out/run.h5"))
}
