package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgriggs0072/fliptrack-ai/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.AI.Enabled = false
	cfg.AI.Retries = 2
	cfg.AI.BackoffMillis = 500
	cfg.Import.AcceptanceThreshold = 0.35
	cfg.Import.Workers = 1
	cfg.Import.AutoLearn = true
	cfg.Data.DatabasePath = filepath.Join(dir, "fliptrack.db")
	cfg.Data.VendorsPath = filepath.Join(dir, "vendors.yaml")
	return cfg
}

func TestNewContainerNilConfig(t *testing.T) {
	c, err := NewContainer(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration cannot be nil")
	assert.Nil(t, c)
}

func TestNewContainerWiresDependencies(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetConfig())
	assert.NotNil(t, c.GetEngine())
	assert.NotNil(t, c.GetImportService())
	assert.NotNil(t, c.GetVendorStore())
}

func TestNewContainerWithoutDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.DatabasePath = ""

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	// Imports still work without a persistence store.
	assert.NotNil(t, c.GetImportService())
}

func TestContainerCloseSavesVendors(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)

	c.GetVendorStore().Update("Ray Tallant", "Plumbing")
	require.NoError(t, c.Close())

	reopened, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	category, found := reopened.GetVendorStore().Lookup("ray tallant")
	assert.True(t, found)
	assert.Equal(t, "Plumbing", category)
}
