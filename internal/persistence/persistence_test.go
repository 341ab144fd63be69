package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/markusressel/twiddle/internal/pid"
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func createPersistence(t *testing.T) (Persistence, string) {
	dbPath := filepath.Join(t.TempDir(), "db", "twiddle.db")
	p := NewPersistence(dbPath)
	require.NoError(t, p.Init())
	return p, dbPath
}

func createReport(controllerId string, startedAt time.Time) tuning.Report {
	return tuning.Report{
		ControllerId: controllerId,
		Plant:        "vehicle",
		Status:       tuning.StatusConverged,
		StartedAt:    startedAt,
		FinishedAt:   startedAt.Add(3 * time.Second),
		Iterations:   2,
		InitialGains: pid.DefaultGains,
		Gains:        pid.Gains{P: 0.3, I: 0.001, D: 9.5},
		StepSizes:    [3]float64{0.05, 0.06, 0.07},
		BestError:    0.0123,
		Windows: []tuning.WindowResult{
			{Iteration: 1, Error: 0.02, BestError: 0.02, Phase: pid.PhaseTryDecrease},
			{Iteration: 2, Error: 0.01, BestError: 0.01, Index: 1, Phase: pid.PhaseTryIncrease},
		},
	}
}

func TestPersistence_Init_CreatesDirectory(t *testing.T) {
	// GIVEN
	_, dbPath := createPersistence(t)

	// THEN
	info, err := os.Stat(filepath.Dir(dbPath))
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPersistence_LoadReports_Missing(t *testing.T) {
	// GIVEN
	p, _ := createPersistence(t)

	// WHEN
	reports, err := p.LoadReports("steering")

	// THEN
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, reports)
}

func TestPersistence_SaveAndLoadReports(t *testing.T) {
	// GIVEN
	p, _ := createPersistence(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := createReport("steering", start)
	second := createReport("steering", start.Add(time.Hour))
	other := createReport("steering-2", start)

	// WHEN
	assert.NoError(t, p.SaveReport(second))
	assert.NoError(t, p.SaveReport(first))
	assert.NoError(t, p.SaveReport(other))
	reports, err := p.LoadReports("steering")

	// THEN
	assert.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, first, reports[0])
	assert.Equal(t, second, reports[1])
	assert.Equal(t, pid.PhaseTryIncrease, reports[0].Windows[1].Phase)
}

func TestPersistence_SaveReport_MissingId(t *testing.T) {
	// GIVEN
	p, _ := createPersistence(t)

	// WHEN
	err := p.SaveReport(createReport("", time.Now()))

	// THEN
	assert.Error(t, err)
}

func TestPersistence_SaveReport_IdWithSeparator(t *testing.T) {
	// GIVEN
	p, _ := createPersistence(t)
	require.NoError(t, p.SaveReport(createReport("a", time.Now())))

	// WHEN
	err := p.SaveReport(createReport("a/b", time.Now()))

	// THEN
	assert.EqualError(t, err, "controller id must not contain '/': a/b")
	reports, err := p.LoadReports("a")
	assert.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "a", reports[0].ControllerId)
}

func TestPersistence_DeleteReports(t *testing.T) {
	// GIVEN
	p, _ := createPersistence(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveReport(createReport("steering", start)))
	require.NoError(t, p.SaveReport(createReport("steering", start.Add(time.Minute))))
	require.NoError(t, p.SaveReport(createReport("altitude", start)))

	// WHEN
	deleted, err := p.DeleteReports("steering")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 2, deleted)
	_, err = p.LoadReports("steering")
	assert.ErrorIs(t, err, os.ErrNotExist)
	reports, err := p.LoadReports("altitude")
	assert.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestPersistence_DeleteReports_EmptyDb(t *testing.T) {
	// GIVEN
	p, _ := createPersistence(t)

	// WHEN
	deleted, err := p.DeleteReports("steering")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestPersistence_LoadReports_DeletesCorruptData(t *testing.T) {
	// GIVEN
	p, dbPath := createPersistence(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.SaveReport(createReport("steering", start)))

	db, err := bolt.Open(dbPath, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketReports)).Put([]byte("steering/corrupt"), []byte("{not json"))
	}))
	require.NoError(t, db.Close())

	// WHEN
	reports, err := p.LoadReports("steering")

	// THEN
	assert.NoError(t, err)
	assert.Len(t, reports, 1)
	deleted, err := p.DeleteReports("steering")
	assert.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
