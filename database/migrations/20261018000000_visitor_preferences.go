package migrations

import (
	"gorm.io/gorm"

	"github.com/jhonlemus05/FastBite-Delivery/app/repositories"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/migration"
)

func init() {
	migration.Register("20261018000000_create_visitor_preferences_table", &CreateVisitorPreferencesTable{})
}

// CreateVisitorPreferencesTable stores accessibility settings by visitor cookie.
type CreateVisitorPreferencesTable struct{}

func (m *CreateVisitorPreferencesTable) Up(db *gorm.DB) error {
	return repositories.NewPreferenceRepository(db).Migrate()
}

func (m *CreateVisitorPreferencesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("visitor_preferences")
}
