package tpcsim

import (
	"testing"
	"time"

	"github.com/google/uuid"
	sqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := ConnectToDatabase("sqlite", "", "", "", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a new database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, CreateTables(db))
	return db
}

func insertArrays(t *testing.T, db *sqlx.DB, minRun, maxRun int, arrays map[string]int) {
	t.Helper()
	for name, n := range arrays {
		_, err := db.Exec("INSERT INTO PmtArrays (MinRun, MaxRun, ArrayName, NbPmts) VALUES (?, ?, ?, ?)",
			minRun, maxRun, name, n)
		require.NoError(t, err)
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := ConnectToDatabase("postgres", "u", "p", "localhost", "db")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLoadArrayLayout(t *testing.T) {
	db := openTestDB(t)
	insertArrays(t, db, 0, 99, map[string]int{"top": 7, "bottom": 7})
	insertArrays(t, db, 100, 1000, map[string]int{"top": 7, "bottom": 7, "top_veto": 4, "bottom_veto": 4})

	layout, err := LoadArrayLayout(db, 50)
	require.NoError(t, err)
	assert.Equal(t, DefaultArrayLayout(), layout)

	layout, err = LoadArrayLayout(db, 100)
	require.NoError(t, err)
	assert.Equal(t, ArrayLayout{NbTopPmts: 7, NbBottomPmts: 7, NbTopVetoPmts: 4, NbBottomVetoPmts: 4}, layout)
}

func TestLoadArrayLayoutErrors(t *testing.T) {
	db := openTestDB(t)

	_, err := LoadArrayLayout(db, 1)
	assert.ErrorContains(t, err, "no PMT arrays defined for run 1")

	insertArrays(t, db, 0, 10, map[string]int{"side": 3})
	_, err = LoadArrayLayout(db, 5)
	assert.ErrorContains(t, err, `unknown PMT array "side"`)
}

func TestRecordRun(t *testing.T) {
	db := openTestDB(t)
	start := time.Date(2016, time.March, 7, 9, 5, 2, 0, time.UTC)
	run := RunRecord{
		RunUUID:         uuid.NewString(),
		RunNumber:       12,
		FileOut:         "events.h5",
		EventsRequested: 100,
		EventsProcessed: 100,
		EventsWritten:   80,
		EventsRejected:  1,
		StartTime:       start,
		EndTime:         start.Add(time.Minute),
	}
	require.NoError(t, RecordRun(db, run))

	var written int
	require.NoError(t, db.Get(&written, "SELECT EventsWritten FROM SimulationRuns WHERE RunUUID = ?", run.RunUUID))
	assert.Equal(t, 80, written)

	// The uuid is the primary key
	assert.Error(t, RecordRun(db, run))
}

func TestSplitStatements(t *testing.T) {
	assert.Equal(t, []string{"a", " b"}, splitStatements("a; b;"))
}
