package tpcsim

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

// ConnectToDatabase opens the run-conditions database. For the sqlite
// driver dbname is the database file.
func ConnectToDatabase(driver string, user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	var dbURI string
	switch driver {
	case "mysql":
		port := "3306"
		dbURI = fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	case "sqlite":
		dbURI = dbname
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Connect(driver, dbURI)
	return db, err
}

const schema = `
CREATE TABLE IF NOT EXISTS PmtArrays (
	MinRun    INTEGER NOT NULL,
	MaxRun    INTEGER NOT NULL,
	ArrayName VARCHAR(32) NOT NULL,
	NbPmts    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS SimulationRuns (
	RunUUID         VARCHAR(36) NOT NULL PRIMARY KEY,
	RunNumber       INTEGER NOT NULL,
	FileOut         VARCHAR(255) NOT NULL,
	EventsRequested INTEGER NOT NULL,
	EventsProcessed INTEGER NOT NULL,
	EventsWritten   INTEGER NOT NULL,
	EventsRejected  INTEGER NOT NULL,
	StartTime       TIMESTAMP NOT NULL,
	EndTime         TIMESTAMP NOT NULL
);`

// CreateTables creates the tables used by the simulation if they do not
// exist. Meant for local sqlite databases.
func CreateTables(db *sqlx.DB) error {
	for _, stmt := range splitStatements(schema) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("error creating tables: %w", err)
		}
	}
	return nil
}

func splitStatements(s string) []string {
	var stmts []string
	start := 0
	for i, c := range s {
		if c == ';' {
			stmts = append(stmts, s[start:i])
			start = i + 1
		}
	}
	return stmts
}

type PmtArrayEntry struct {
	ArrayName string `db:"ArrayName"`
	NbPmts    int    `db:"NbPmts"`
}

// LoadArrayLayout reads the PMT arrays valid for a run.
func LoadArrayLayout(db *sqlx.DB, runNumber int) (ArrayLayout, error) {
	query := "SELECT ArrayName, NbPmts FROM PmtArrays WHERE MinRun <= ? and MaxRun >= ?"
	if logVerbosity > 0 {
		logger.Info("PMT arrays read from DB", "database")
	}
	if logVerbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s (run %d)", query, runNumber), "database")
	}

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		return ArrayLayout{}, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	var layout ArrayLayout
	found := 0
	for rows.Next() {
		entry := PmtArrayEntry{}
		if err := rows.StructScan(&entry); err != nil {
			return ArrayLayout{}, fmt.Errorf("error scanning DB row: %w", err)
		}
		switch entry.ArrayName {
		case "top":
			layout.NbTopPmts = entry.NbPmts
		case "bottom":
			layout.NbBottomPmts = entry.NbPmts
		case "top_veto":
			layout.NbTopVetoPmts = entry.NbPmts
		case "bottom_veto":
			layout.NbBottomVetoPmts = entry.NbPmts
		default:
			return ArrayLayout{}, fmt.Errorf("unknown PMT array %q for run %d", entry.ArrayName, runNumber)
		}
		found++
	}
	if err := rows.Err(); err != nil {
		return ArrayLayout{}, fmt.Errorf("error reading DB rows: %w", err)
	}
	if found == 0 {
		return ArrayLayout{}, fmt.Errorf("no PMT arrays defined for run %d", runNumber)
	}
	return layout, layout.Validate()
}

// RunRecord is the bookkeeping row of a finished run.
type RunRecord struct {
	RunUUID         string    `db:"RunUUID"`
	RunNumber       int       `db:"RunNumber"`
	FileOut         string    `db:"FileOut"`
	EventsRequested int       `db:"EventsRequested"`
	EventsProcessed int       `db:"EventsProcessed"`
	EventsWritten   int       `db:"EventsWritten"`
	EventsRejected  int       `db:"EventsRejected"`
	StartTime       time.Time `db:"StartTime"`
	EndTime         time.Time `db:"EndTime"`
}

func RecordRun(db *sqlx.DB, run RunRecord) error {
	query := `INSERT INTO SimulationRuns
		(RunUUID, RunNumber, FileOut, EventsRequested, EventsProcessed, EventsWritten, EventsRejected, StartTime, EndTime)
		VALUES (:RunUUID, :RunNumber, :FileOut, :EventsRequested, :EventsProcessed, :EventsWritten, :EventsRejected, :StartTime, :EndTime)`
	if _, err := db.NamedExec(query, run); err != nil {
		return fmt.Errorf("error recording run %s: %w", run.RunUUID, err)
	}
	return nil
}
