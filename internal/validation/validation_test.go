package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidInputPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "expenses.csv")
	require.NoError(t, os.WriteFile(file, []byte("Desc,Amt\n"), 0600))

	assert.NoError(t, IsValidInputPath(file))
	assert.Error(t, IsValidInputPath(filepath.Join(dir, "missing.csv")))
	assert.Error(t, IsValidInputPath(dir))
}

func TestIsValidSummaryFormat(t *testing.T) {
	assert.NoError(t, IsValidSummaryFormat("json"))
	assert.NoError(t, IsValidSummaryFormat("xml"))
	assert.Error(t, IsValidSummaryFormat("yaml"))
	assert.Error(t, IsValidSummaryFormat(""))
}
