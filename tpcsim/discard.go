package main

import (
	tpcsim "github.com/next-exp/tpcsim_go/pkg"
)

// discardWriter accepts every row without storing it. Used with
// write_data set to false to time the aggregation alone.
type discardWriter struct{}

func (discardWriter) WriteHeader(tpcsim.RunHeader) error   { return nil }
func (discardWriter) WriteEvent(*tpcsim.EventRecord) error { return nil }
func (discardWriter) Flush() error                         { return nil }
func (discardWriter) Close() error                         { return nil }

func discardTable(string, tpcsim.ArrayLayout) (tpcsim.TableWriter, error) {
	return discardWriter{}, nil
}
