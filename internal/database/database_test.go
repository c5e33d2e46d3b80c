package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestEmbeddedMigrations(t *testing.T) {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	collected, err := goose.CollectMigrations("migrations", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, int64(1), collected[0].Version)
}

func TestClose(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		DriverName:           "postgres",
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectClose()
	assert.NoError(t, Close(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
