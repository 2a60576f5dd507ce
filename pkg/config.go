package tpcsim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

type Configuration struct {
	MaxEvents        int            `json:"max_events" env:"MAX_EVENTS"`
	Skip             int            `json:"skip" env:"SKIP"`
	Verbosity        int            `json:"verbosity" env:"VERBOSITY"`
	FileIn           string         `json:"file_in" env:"FILE_IN"`
	FileOut          string         `json:"file_out" env:"FILE_OUT"`
	TimestampOutput  bool           `json:"timestamp_output" env:"TIMESTAMP_OUTPUT"`
	WriteEmpty       bool           `json:"write_empty" env:"WRITE_EMPTY"`
	AutoSaveInterval int            `json:"autosave_interval" env:"AUTOSAVE_INTERVAL"`
	Discard          bool           `json:"discard" env:"DISCARD"`
	WriteData        bool           `json:"write_data" env:"WRITE_DATA"`
	NumWorkers       int            `json:"num_workers" env:"NUM_WORKERS"`
	NoDB             bool           `json:"no_db" env:"NO_DB"`
	DBDriver         string         `json:"db_driver" env:"DB_DRIVER"`
	Host             string         `json:"host" env:"DB_HOST"`
	User             string         `json:"user" env:"DB_USER"`
	Passwd           string         `json:"pass" env:"DB_PASS"`
	DBName           string         `json:"dbname" env:"DB_NAME"`
	RunNumber        int            `json:"run_number" env:"RUN_NUMBER"`
	Layout           ArrayLayout    `json:"layout"`
	FiducialCut      bool           `json:"fiducial_cut" env:"FIDUCIAL_CUT"`
	Fiducial         FiducialVolume `json:"fiducial"`
	Geant4Version    string         `json:"geant4_version" env:"GEANT4_VERSION"`
	MCVersion        string         `json:"mc_version" env:"MC_VERSION"`
	CompressionLevel int            `json:"compression_level" env:"COMPRESSION_LEVEL"`
	ChunkSize        int            `json:"chunk_size" env:"CHUNK_SIZE"`
	Summary          bool           `json:"summary" env:"SUMMARY"`
	SummaryBins      int            `json:"summary_bins" env:"SUMMARY_BINS"`
	SummaryMaxEnergy float64        `json:"summary_max_energy" env:"SUMMARY_MAX_ENERGY"`
}

const EnvPrefix = "TPCSIM_"

func DefaultConfiguration() Configuration {
	return Configuration{
		MaxEvents:        1000000000,
		Skip:             0,
		Verbosity:        0,
		FileOut:          "events.h5",
		TimestampOutput:  true,
		WriteEmpty:       false,
		AutoSaveInterval: DefaultAutoSaveInterval,
		Discard:          true,
		WriteData:        true,
		NumWorkers:       1,
		NoDB:             true,
		DBDriver:         "mysql",
		Host:             "localhost",
		User:             "tpcreader",
		Passwd:           "readonly",
		DBName:           "MuensterTPC",
		Layout:           DefaultArrayLayout(),
		FiducialCut:      false,
		Fiducial:         DefaultFiducialVolume(),
		Geant4Version:    "geant4-10-02-patch-01",
		MCVersion:        "X.Y.Z",
		CompressionLevel: 4,
		ChunkSize:        4096,
		Summary:          false,
		SummaryBins:      100,
		SummaryMaxEnergy: 1000,
	}
}

// LoadConfiguration reads the JSON file over the defaults and applies the
// TPCSIM_* environment variables on top. An empty filename only applies
// the environment.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return config, err
		}
		err = json.Unmarshal(data, &config)
		if err != nil {
			return config, fmt.Errorf("error parsing %s: %w", filename, err)
		}
	}

	err := env.ParseWithOptions(&config, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return config, fmt.Errorf("error reading environment: %w", err)
	}
	return config, config.Validate()
}

func (c Configuration) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.AutoSaveInterval <= 0 {
		return fmt.Errorf("invalid autosave interval: %d", c.AutoSaveInterval)
	}
	if c.NumWorkers < 1 {
		return fmt.Errorf("invalid number of workers: %d", c.NumWorkers)
	}
	if c.CompressionLevel < 0 || c.CompressionLevel > 9 {
		return fmt.Errorf("invalid compression level: %d", c.CompressionLevel)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size: %d", c.ChunkSize)
	}
	if c.FiducialCut && (c.Fiducial.DriftLength <= 0 || c.Fiducial.Radius <= 0) {
		return fmt.Errorf("invalid fiducial volume: drift length %g mm, radius %g mm",
			c.Fiducial.DriftLength, c.Fiducial.Radius)
	}
	return nil
}

// AggregatorOptions translates the configuration for an aggregator writing
// to filename.
func (c Configuration) AggregatorOptions(filename string) Options {
	opts := Options{
		Filename:         filename,
		WriteEmpty:       c.WriteEmpty,
		AutoSaveInterval: c.AutoSaveInterval,
		Geant4Version:    c.Geant4Version,
		MCVersion:        c.MCVersion,
	}
	if c.FiducialCut {
		fiducial := c.Fiducial
		opts.Fiducial = &fiducial
	}
	return opts
}

func PrintConfiguration(config Configuration) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Timestamp output: %t", config.TimestampOutput), "config")
	logger.Info(fmt.Sprintf("Write empty events: %t", config.WriteEmpty), "config")
	logger.Info(fmt.Sprintf("Autosave interval: %d", config.AutoSaveInterval), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("PMTs top/bottom/top veto/bottom veto: %d/%d/%d/%d",
		config.Layout.NbTopPmts, config.Layout.NbBottomPmts,
		config.Layout.NbTopVetoPmts, config.Layout.NbBottomVetoPmts), "config")
	logger.Info(fmt.Sprintf("Fiducial cut: %t (drift length %g mm, radius %g mm)",
		config.FiducialCut, config.Fiducial.DriftLength, config.Fiducial.Radius), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
	logger.Info(fmt.Sprintf("Chunk size: %d rows", config.ChunkSize), "config")
	logger.Info(fmt.Sprintf("Summary: %t", config.Summary), "config")
}
