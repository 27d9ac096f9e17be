package utils

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	exporter := NewFileExporter(dir, logrus.New())

	err := exporter.Export(context.Background(), "orders.csv", "text/csv", []byte("title\nLamp"))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "orders.csv"))
	require.NoError(t, err)
	assert.Equal(t, "title\nLamp", string(content))
}

func TestFileExporter_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	exporter := NewFileExporter(dir, logrus.New())

	require.NoError(t, exporter.Export(context.Background(), "../../INVOICE-B01", "text/html", []byte("<html/>")))

	_, err := os.Stat(filepath.Join(dir, "INVOICE-B01"))
	assert.NoError(t, err)
}

func TestPromptConfirmer(t *testing.T) {
	var out bytes.Buffer
	confirm := PromptConfirmer(strings.NewReader("y\nno\nYES\n"), &out)

	assert.True(t, confirm("first?"))
	assert.False(t, confirm("second?"))
	assert.True(t, confirm("third?"))
	assert.False(t, confirm("after end of input?"))
	assert.Contains(t, out.String(), "first? [y/N]: ")
}

func TestConfirmPolicies(t *testing.T) {
	assert.True(t, AlwaysConfirm("anything"))
	assert.False(t, NeverConfirm("anything"))
}

func TestNewLogger_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	logger := NewLogger(&bytes.Buffer{}, true)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	t.Setenv("LOG_LEVEL", "")
	logger = NewLogger(&bytes.Buffer{}, true)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger = NewLogger(&bytes.Buffer{}, false)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
