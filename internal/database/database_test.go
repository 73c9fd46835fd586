package database

import (
	"context"
	"path/filepath"
	"testing"

	"payway-adapter/config"
	"payway-adapter/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "payway.db")}

	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.ProviderConfig{}))
	assert.True(t, db.Migrator().HasTable(&models.Transaction{}))
	assert.True(t, db.Migrator().HasTable(&models.NotificationLog{}))
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := ConnectRedis(context.Background(), &config.Config{RedisAddr: mr.Host(), RedisPort: mr.Port()})
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()

	client, err = ConnectRedis(context.Background(), &config.Config{})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
