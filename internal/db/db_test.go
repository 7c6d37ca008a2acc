package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AlexFame/bazaar-sub001/internal/config"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestGormLoggerGoesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gdb, err := OpenSQLite(filepath.Join(t.TempDir(), "log.db"), zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, Migrate(gdb))
	logs.TakeAll()

	var acc model.Account
	err = gdb.WithContext(context.Background()).Where("external_id = ?", 1).First(&acc).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len(), "missing rows are not logged")

	err = gdb.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	entries := logs.FilterMessageSnippet("no_such_table").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "gorm", entries[0].LoggerName)
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t,
		"u:p@unix(/cloudsql/proj:region:inst)/bazaar?charset=utf8mb4&parseTime=True&loc=UTC",
		BuildDSN(&config.Config{DBUser: "u", DBPassword: "p", DBName: "bazaar", InstanceConnectionName: "proj:region:inst"}))
	assert.Equal(t,
		"u:p@tcp(db:3306)/bazaar?charset=utf8mb4&parseTime=True&loc=UTC",
		BuildDSN(&config.Config{DBUser: "u", DBPassword: "p", DBName: "bazaar", DBHost: "db", DBPort: "3306"}))
}
