package Identity

import (
	"testing"

	"DentalOffice/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// An in-memory sqlite database exists per connection; pin the pool to
	// one so every caller sees the same data.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Models.Migrate(db))
	return db
}

func seedPatients(t *testing.T, db *gorm.DB) (Models.Patient, Models.Patient) {
	t.Helper()

	alice := Models.Patient{
		PatientNumber: "1000001",
		FirstName:     "Alice",
		LastName:      "Nguyen",
		Phone:         "+15551230001",
	}
	require.NoError(t, db.Create(&alice).Error)

	bob := Models.Patient{
		PatientNumber: "1000002",
		FirstName:     "Bob",
		LastName:      "Carter",
		Phone:         "+15551230002",
	}
	require.NoError(t, db.Create(&bob).Error)

	return alice, bob
}

func TestFindByNumber(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPatients(t, db)

	found, err := FindByNumber(db, "1000001")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	_, err = FindByNumber(db, "9999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByNumberAcceptsInternalID(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPatients(t, db)

	found, err := FindByNumber(db, "1")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
}

func TestFindByName(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPatients(t, db)

	found, err := FindByName(db, "Alice", "Nguyen")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)

	// Case and whitespace tolerant.
	found, err = FindByName(db, "  alice ", "NGUYEN")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
}

func TestFindByNameSwapped(t *testing.T) {
	db := setupTestDB(t)
	alice, _ := seedPatients(t, db)

	found, err := FindByName(db, "Nguyen", "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.ID)
}

func TestFindByNameAmbiguous(t *testing.T) {
	db := setupTestDB(t)
	seedPatients(t, db)

	twin := Models.Patient{
		PatientNumber: "1000003",
		FirstName:     "Alice",
		LastName:      "Nguyen",
		Phone:         "+15551230003",
	}
	require.NoError(t, db.Create(&twin).Error)

	_, err := FindByName(db, "Alice", "Nguyen")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestFindByNameNotFound(t *testing.T) {
	db := setupTestDB(t)
	seedPatients(t, db)

	_, err := FindByName(db, "Zara", "Quill")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByPhone(t *testing.T) {
	db := setupTestDB(t)
	_, bob := seedPatients(t, db)

	// Raw dictated form is normalized before the lookup.
	found, err := FindByPhone(db, "555-123-0002")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, found.ID)

	_, err = FindByPhone(db, "555-999-9999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = FindByPhone(db, "bad")
	assert.ErrorIs(t, err, ErrInvalidPhoneFormat)
}
