package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	tpcsim "github.com/next-exp/tpcsim_go/pkg"
	"github.com/next-exp/tpcsim_go/pkg/h5"
)

var logger Logger

func init() {
	logger = Logger{
		InfoLog:  slog.New(slog.NewTextHandler(os.Stdout, nil)),
		ErrorLog: slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}
}

// Result is the cost of writing the whole input with one compression setting.
type Result struct {
	Compression h5.Compression
	Duration    time.Duration
	Size        int64
}

func (r Result) String() string {
	return fmt.Sprintf("(%s) Time: %d ms, size %d bytes",
		r.Compression, r.Duration.Milliseconds(), r.Size)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	chunks := flag.String("chunks", "1024,4096,32768", "Comma separated chunk sizes, in rows")
	repeat := flag.Int("repeat", 1, "Writes per setting")
	flag.Parse()

	configuration, err := tpcsim.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	tpcsim.SetLogger(logger)
	tpcsim.SetVerbosity(configuration.Verbosity)

	chunkSizes, err := parseChunkSizes(*chunks)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	events, registry, err := readEvents(configuration)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Total events read: %d", len(events)), "main")

	start := time.Now()
	for _, compression := range deflateSettings(chunkSizes) {
		for i := 0; i < *repeat; i++ {
			result, err := measure(configuration, compression, events, registry)
			if err != nil {
				logger.Error(err.Error())
				continue
			}
			fmt.Println(result)
		}
	}
	fmt.Printf("Total time: %d ms\n", time.Since(start).Milliseconds())
}

func readEvents(configuration tpcsim.Configuration) ([]tpcsim.Event, *tpcsim.CollectionRegistry, error) {
	file, err := os.Open(configuration.FileIn)
	if err != nil {
		return nil, nil, fmt.Errorf("Error opening file: %w", err)
	}
	defer file.Close()

	reader, err := tpcsim.NewHitsReader(file, configuration.MaxEvents, configuration.Skip)
	if err != nil {
		return nil, nil, err
	}
	events := make([]tpcsim.Event, 0)
	for {
		event, err := reader.NextEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading event: %w", err)
		}
		events = append(events, event)
	}
	return events, reader.Registry, nil
}

func parseChunkSizes(list string) ([]uint, error) {
	sizes := make([]uint, 0)
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		size, err := strconv.ParseUint(field, 10, 32)
		if err != nil || size == 0 {
			return nil, fmt.Errorf("invalid chunk size: %q", field)
		}
		sizes = append(sizes, uint(size))
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no chunk sizes in %q", list)
	}
	return sizes, nil
}

// deflateSettings sweeps every deflate level for each chunk size.
func deflateSettings(chunkSizes []uint) []h5.Compression {
	settings := make([]h5.Compression, 0, 10*len(chunkSizes))
	for _, chunk := range chunkSizes {
		for level := 0; level < 10; level++ {
			settings = append(settings, h5.Compression{Level: level, ChunkSize: chunk})
		}
	}
	return settings
}

func measure(configuration tpcsim.Configuration, compression h5.Compression,
	events []tpcsim.Event, registry *tpcsim.CollectionRegistry) (Result, error) {
	opts := configuration.AggregatorOptions(configuration.FileOut)
	aggregator := tpcsim.NewAggregator(opts, registry, h5.Opener(compression))

	start := time.Now()
	if err := aggregator.BeginRun(len(events), configuration.Layout); err != nil {
		return Result{}, err
	}
	if err := writeEvents(aggregator, events, configuration.Discard); err != nil {
		return Result{}, err
	}
	duration := time.Since(start)

	fileInfo, err := os.Stat(configuration.FileOut)
	if err != nil {
		return Result{}, fmt.Errorf("Error getting file info: %w", err)
	}
	return Result{Compression: compression, Duration: duration, Size: fileInfo.Size()}, nil
}

// writeEvents runs the events through the aggregator and ends the run. Only
// events with PMT numbers outside the layout are discarded.
func writeEvents(aggregator *tpcsim.Aggregator, events []tpcsim.Event, discard bool) error {
	for _, event := range events {
		if _, err := aggregator.ProcessEvent(event); err != nil {
			var inconsistent *tpcsim.ErrPmtIndexOutOfRange
			if errors.As(err, &inconsistent) && discard {
				logger.Error(err.Error())
				logger.Error(fmt.Sprintf("discarding event %d", event.EventID))
				continue
			}
			err = fmt.Errorf("error processing event %d: %w", event.EventID, err)
			return errors.Join(err, aggregator.EndRun())
		}
	}
	return aggregator.EndRun()
}
