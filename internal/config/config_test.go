package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "reclamation-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "SAV", cfg.Workflow.ServiceCode)
	assert.Equal(t, 255, cfg.Workflow.FaultDescriptionMax)
	assert.Equal(t, 60*time.Second, cfg.Workflow.SnapshotTTL())
	assert.True(t, cfg.Postgres.RunMigrations)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("WORKFLOW_DI_SERVICE_CODE", "FIELD")
	t.Setenv("WORKFLOW_FAULT_DESCRIPTION_MAX", "120")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "FIELD", cfg.Workflow.ServiceCode)
	assert.Equal(t, 120, cfg.Workflow.FaultDescriptionMax)
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestSnapshotTTLDisabled(t *testing.T) {
	w := WorkflowConfig{SnapshotCacheTTLSec: 0}
	assert.Equal(t, time.Duration(0), w.SnapshotTTL())
}
