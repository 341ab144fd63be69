package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/markusressel/twiddle/internal/ui"
	"github.com/markusressel/twiddle/internal/util"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketReports = "reports"

	keySeparator = "/"
)

// Persistence stores the reports of finished tuning sessions.
// Stored gains are never used to initialize a controller.
type Persistence interface {
	Init() error

	SaveReport(report tuning.Report) (err error)
	LoadReports(controllerId string) ([]tuning.Report, error)
	DeleteReports(controllerId string) (deleted int, err error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	return util.EnsureParentDir(p.dbPath)
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// reports of a controller share a common prefix and are ordered by their start time
func reportKey(report tuning.Report) []byte {
	return []byte(report.ControllerId + keySeparator + report.StartedAt.UTC().Format("20060102T150405.000000000Z"))
}

func reportPrefix(controllerId string) []byte {
	return []byte(controllerId + keySeparator)
}

// SaveReport saves the given report to persistence
func (p persistence) SaveReport(report tuning.Report) (err error) {
	if len(report.ControllerId) <= 0 {
		return errors.New("report is missing a controller id")
	}
	if strings.Contains(report.ControllerId, keySeparator) {
		return fmt.Errorf("controller id must not contain '%s': %s", keySeparator, report.ControllerId)
	}

	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketReports))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put(reportKey(report), data)
	})
}

// LoadReports loads all reports of the given controller, oldest first.
// Returns os.ErrNotExist if there are none.
func (p persistence) LoadReports(controllerId string) ([]tuning.Report, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var reports []tuning.Report
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketReports))
		if b == nil {
			return os.ErrNotExist
		}

		var corrupt [][]byte
		prefix := reportPrefix(controllerId)
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var report tuning.Report
			if err := json.Unmarshal(v, &report); err != nil {
				// if we cannot read the saved data, delete it
				ui.Warning("Unable to unmarshal saved report %s: %v", string(k), err)
				corrupt = append(corrupt, append([]byte{}, k...))
				continue
			}
			reports = append(reports, report)
		}

		for _, k := range corrupt {
			if err := b.Delete(k); err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", string(k), err)
			}
		}

		if len(reports) <= 0 {
			return os.ErrNotExist
		}
		return nil
	})

	return reports, err
}

// DeleteReports deletes all reports of the given controller
func (p persistence) DeleteReports(controllerId string) (deleted int, err error) {
	db, err := p.openPersistence()
	if err != nil {
		return 0, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketReports))
		if b == nil {
			// no reports yet
			return nil
		}

		var keys [][]byte
		prefix := reportPrefix(controllerId)
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte{}, k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(keys)
		return nil
	})

	return deleted, err
}
