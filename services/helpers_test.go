package services

import (
	"fmt"
	"testing"
	"time"

	"dispatch_crm_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:mem_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createTestLead(t *testing.T, db *gorm.DB, company, phone string) *models.Lead {
	t.Helper()
	lead, err := CreateLead(db, LeadInput{CompanyName: company, PhoneNumber: phone})
	require.NoError(t, err)
	return lead
}

func reloadLead(t *testing.T, db *gorm.DB, id string) *models.Lead {
	t.Helper()
	var lead models.Lead
	require.NoError(t, db.First(&lead, "id = ?", id).Error)
	return &lead
}

func setLastCall(t *testing.T, db *gorm.DB, id string, ts time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Lead{}).Where("id = ?", id).Update("last_call_time", ts.UTC()).Error)
}

func stringPtr(s string) *string {
	return &s
}
