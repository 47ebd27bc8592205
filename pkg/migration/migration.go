// Package migration runs versioned schema changes and records them in the
// fastbite_migrations table.
//
// Migrations register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("20261018000000_create_visitor_preferences_table", createVisitorPreferences{})
//	}
//
// and the CLI applies them:
//
//	fastbite migrate            // run all pending
//	fastbite migrate:rollback   // undo the last batch
//	fastbite migrate:status
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/logger"
)

// Migration is one reversible schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "fastbite_migrations" }

// ------------------- Registry -------------------

type registered struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry []registered
)

// Register adds a migration. name must start with a sortable timestamp;
// migrations always run in name order.
func Register(name string, m Migration) {
	mu.Lock()
	defer mu.Unlock()
	registry = append(registry, registered{name: name, m: m})
}

func registeredSorted() []registered {
	mu.Lock()
	out := append([]registered(nil), registry...)
	mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ------------------- Runner -------------------

// Runner executes and tracks migrations. Progress lines go to out.
type Runner struct {
	db  *gorm.DB
	out io.Writer
}

func New(db *gorm.DB, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&migrationRecord{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran() (map[string]migrationRecord, error) {
	var rows []migrationRecord
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read history: %w", err)
	}
	out := make(map[string]migrationRecord, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the names of registered migrations not yet applied.
func (r *Runner) Pending() ([]string, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, reg := range registeredSorted() {
		if _, ok := done[reg.name]; !ok {
			names = append(names, reg.name)
		}
	}
	return names, nil
}

// Run applies every pending migration as one batch and returns how many ran.
// Each migration and its history row commit together.
func (r *Runner) Run() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	done, err := r.ran()
	if err != nil {
		return 0, err
	}

	batch, err := r.lastBatch()
	if err != nil {
		return 0, err
	}
	batch++

	n := 0
	for _, reg := range registeredSorted() {
		if _, ok := done[reg.name]; ok {
			continue
		}
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := reg.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error
		})
		if err != nil {
			return n, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		logger.Info("migration applied", "name", reg.name, "batch", batch)
		fmt.Fprintf(r.out, "  ▶ Migrated:  %s\n", reg.name)
		n++
	}

	if n == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
	}
	return n, nil
}

// Rollback reverses the most recent batch, newest first, and returns how
// many migrations were undone.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	batch, err := r.lastBatch()
	if err != nil {
		return 0, err
	}
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var rows []migrationRecord
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("migration: read batch %d: %w", batch, err)
	}

	byName := make(map[string]Migration)
	for _, reg := range registeredSorted() {
		byName[reg.name] = reg.m
	}

	n := 0
	for _, rec := range rows {
		m, ok := byName[rec.Name]
		if !ok {
			return n, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&migrationRecord{}, rec.ID).Error
		})
		if err != nil {
			return n, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		logger.Info("migration rolled back", "name", rec.Name, "batch", batch)
		fmt.Fprintf(r.out, "  ◀ Rolled back:  %s\n", rec.Name)
		n++
	}
	return n, nil
}

// Status writes every registered migration with its batch, or "Pending".
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	done, err := r.ran()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	for _, reg := range registeredSorted() {
		if rec, ok := done[reg.name]; ok {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", reg.name, "Ran", rec.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", reg.name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch() (int, error) {
	var last struct{ Max int }
	if err := r.db.Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&last).Error; err != nil {
		return 0, fmt.Errorf("migration: read last batch: %w", err)
	}
	return last.Max, nil
}
