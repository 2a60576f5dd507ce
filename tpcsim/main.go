package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	sqlx "github.com/jmoiron/sqlx"
	tpcsim "github.com/next-exp/tpcsim_go/pkg"
	"github.com/next-exp/tpcsim_go/pkg/h5"
)

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	fileIn := flag.String("f", "", "Hit dump to process")
	fileOut := flag.String("o", "", "Output file")
	nbEvents := flag.Int("n", -1, "Maximum number of events")
	verbosity := flag.Int("v", -1, "Verbosity level")
	flag.Parse()

	configuration, err := tpcsim.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	if *fileIn != "" {
		configuration.FileIn = *fileIn
	}
	if *fileOut != "" {
		configuration.FileOut = *fileOut
	}
	if *nbEvents >= 0 {
		configuration.MaxEvents = *nbEvents
	}
	if *verbosity >= 0 {
		configuration.Verbosity = *verbosity
	}

	tpcsim.SetLogger(logger)
	tpcsim.SetVerbosity(configuration.Verbosity)
	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		tpcsim.PrintConfiguration(configuration)
	}

	if err := run(configuration); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(configuration tpcsim.Configuration) error {
	start := time.Now()
	runID := uuid.New()

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		return fmt.Errorf("Error opening file: %w", err)
	}
	defer file.Close()

	evtCount, err := tpcsim.CountEvents(file)
	if err != nil {
		return err
	}
	reader, err := tpcsim.NewHitsReader(file, configuration.MaxEvents, configuration.Skip)
	if err != nil {
		return err
	}
	evtsToRead := tpcsim.NumberOfEventsToProcess(evtCount, configuration.Skip, configuration.MaxEvents)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d, to process: %d", evtCount, evtsToRead)
		logger.Info(message, "main")
	}
	if reader.Info.Geant4Version != "" {
		configuration.Geant4Version = reader.Info.Geant4Version
	}

	var dbConn *sqlx.DB
	layout := configuration.Layout
	if !configuration.NoDB {
		dbConn, err = tpcsim.ConnectToDatabase(configuration.DBDriver, configuration.User,
			configuration.Passwd, configuration.Host, configuration.DBName)
		if err != nil {
			return fmt.Errorf("Error connection to database: %w", err)
		}
		defer dbConn.Close()
		if configuration.DBDriver == "sqlite" {
			if err := tpcsim.CreateTables(dbConn); err != nil {
				return err
			}
		}
		layout, err = tpcsim.LoadArrayLayout(dbConn, configuration.RunNumber)
		if err != nil {
			return fmt.Errorf("Error loading PMT layout: %w", err)
		}
	}

	compression, err := h5.NewCompression(configuration.CompressionLevel, configuration.ChunkSize)
	if err != nil {
		return err
	}
	open := h5.Opener(compression)
	if !configuration.WriteData {
		open = discardTable
	}

	filename := configuration.FileOut
	if configuration.TimestampOutput {
		filename = timestampedFilename(filename, start)
	}

	var summary *tpcsim.Summary
	if configuration.Summary {
		summary = tpcsim.NewSummary(layout, configuration.SummaryBins, configuration.SummaryMaxEnergy)
	}

	nWorkers := configuration.NumWorkers
	aggregators := make([]*tpcsim.Aggregator, nWorkers)
	for i := range aggregators {
		name := filename
		if nWorkers > 1 {
			name = workerFilename(filename, i)
		}
		opts := configuration.AggregatorOptions(name)
		if summary != nil {
			opts.Observers = append(opts.Observers, summary)
		}
		aggregators[i] = tpcsim.NewAggregator(opts, reader.Registry, open)
		if err := aggregators[i].BeginRun(evtsToRead, layout); err != nil {
			endRun(aggregators[:i])
			return err
		}
	}

	progress := tpcsim.NewProgress(evtsToRead)
	if nWorkers > 1 {
		err = tpcsim.ProcessEventsParallel(context.Background(), reader, aggregators, progress, configuration.Discard)
	} else {
		err = tpcsim.ProcessEvents(reader, aggregators[0], progress, configuration.Discard)
	}
	if endErr := endRun(aggregators); err == nil {
		err = endErr
	}
	if err != nil {
		return err
	}

	for _, aggregator := range aggregators {
		logger.Info(fmt.Sprintf("Output file: %s", aggregator.Filename()), "main")
	}

	if summary != nil {
		summaryFile := summaryFilename(filename)
		if err := summary.WriteYODA(summaryFile); err != nil {
			return err
		}
		logger.Info(fmt.Sprintf("Summary file: %s", summaryFile), "main")
	}

	if dbConn != nil {
		record := tpcsim.RunRecord{
			RunUUID:         runID.String(),
			RunNumber:       configuration.RunNumber,
			FileOut:         filename,
			EventsRequested: evtsToRead,
			StartTime:       start,
			EndTime:         time.Now(),
		}
		for _, aggregator := range aggregators {
			stats := aggregator.Stats()
			record.EventsProcessed += stats.Processed
			record.EventsWritten += stats.Written
			record.EventsRejected += stats.Rejected
		}
		if err := tpcsim.RecordRun(dbConn, record); err != nil {
			return err
		}
	}

	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Run %s finished in %d ms", runID, duration.Milliseconds()), "main")
	return nil
}

func endRun(aggregators []*tpcsim.Aggregator) error {
	var err error
	for _, aggregator := range aggregators {
		if endErr := aggregator.EndRun(); endErr != nil {
			logger.Error(endErr.Error())
			if err == nil {
				err = endErr
			}
		}
	}
	return err
}
