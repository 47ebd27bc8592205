package migration

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/database"
)

type dish struct {
	ID   uint
	Name string
}

type createDishes struct{}

func (createDishes) Up(db *gorm.DB) error   { return db.Migrator().CreateTable(&dish{}) }
func (createDishes) Down(db *gorm.DB) error { return db.Migrator().DropTable(&dish{}) }

type addDishIndex struct{}

func (addDishIndex) Up(db *gorm.DB) error {
	return db.Exec("CREATE INDEX idx_dishes_name ON dishes(name)").Error
}
func (addDishIndex) Down(db *gorm.DB) error {
	return db.Exec("DROP INDEX idx_dishes_name").Error
}

type broken struct{}

func (broken) Up(*gorm.DB) error   { return errors.New("boom") }
func (broken) Down(*gorm.DB) error { return nil }

func withRegistry(t *testing.T, entries ...registered) {
	t.Helper()
	mu.Lock()
	saved := registry
	registry = entries
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "fastbite.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestRun_AppliesPendingInNameOrder(t *testing.T) {
	// registered out of order on purpose
	withRegistry(t,
		registered{"20261018000001_add_dish_index", addDishIndex{}},
		registered{"20261018000000_create_dishes", createDishes{}},
	)
	db := openDB(t)
	var out bytes.Buffer
	r := New(db, &out)

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"20261018000000_create_dishes", "20261018000001_add_dish_index"}, pending)

	n, err := r.Run()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable(&dish{}))
	assert.Contains(t, out.String(), "Migrated:  20261018000000_create_dishes")

	pending, err = r.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	out.Reset()
	n, err = r.Run()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out.String(), "Nothing to migrate.")
}

func TestRollback_UndoesLastBatchOnly(t *testing.T) {
	withRegistry(t, registered{"20261018000000_create_dishes", createDishes{}})
	db := openDB(t)
	r := New(db, nil)

	_, err := r.Run()
	require.NoError(t, err)

	Register("20261018000001_add_dish_index", addDishIndex{})
	_, err = r.Run()
	require.NoError(t, err)

	n, err := r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, db.Migrator().HasTable(&dish{}), "first batch stays")

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"20261018000001_add_dish_index"}, pending)

	n, err = r.Rollback()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, db.Migrator().HasTable(&dish{}))

	var out bytes.Buffer
	n, err = New(db, &out).Rollback()
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out.String(), "Nothing to roll back.")
}

func TestRun_FailureLeavesMigrationPending(t *testing.T) {
	withRegistry(t,
		registered{"20261018000000_create_dishes", createDishes{}},
		registered{"20261018000001_broken", broken{}},
	)
	db := openDB(t)
	r := New(db, nil)

	n, err := r.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20261018000001_broken up: boom")
	assert.Equal(t, 1, n)

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"20261018000001_broken"}, pending)
}

func TestStatus(t *testing.T) {
	withRegistry(t, registered{"20261018000000_create_dishes", createDishes{}})
	db := openDB(t)
	var out bytes.Buffer
	r := New(db, &out)

	require.NoError(t, r.Status())
	assert.Regexp(t, `20261018000000_create_dishes\s+Pending\s+-`, out.String())

	_, err := r.Run()
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, r.Status())
	assert.Regexp(t, `20261018000000_create_dishes\s+Ran\s+1`, out.String())
}
