package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// timestampedFilename prefixes the base name with the local start time of
// the run, e.g. data/events.h5 -> data/2016-3-7_9-5-2_events.h5.
func timestampedFilename(filename string, t time.Time) string {
	dir, base := filepath.Split(filename)
	stamp := fmt.Sprintf("%d-%d-%d_%d-%d-%d_",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	return dir + stamp + base
}

// workerFilename is the output of worker i in a parallel run:
// events.h5 -> events_t0.h5.
func workerFilename(filename string, i int) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%s_t%d%s", strings.TrimSuffix(filename, ext), i, ext)
}

// summaryFilename is the YODA file written next to the output.
func summaryFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + ".yoda"
}
