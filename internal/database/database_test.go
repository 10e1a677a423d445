package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/angagu/internal/models"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := Open("sqlite", "file:migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{
		&models.Customer{}, &models.SMSVerification{}, &models.Company{}, &models.Admin{},
		&models.Product{}, &models.ProductImage{}, &models.Address{}, &models.Order{},
		&models.OrderDetail{}, &models.Review{}, &models.Board{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestEnsureDatabaseIgnoresKeywordDSN(t *testing.T) {
	assert.NoError(t, ensureDatabase("host=localhost user=postgres dbname=angagu"))
}
