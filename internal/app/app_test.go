package app

import (
	"context"
	"io"
	"testing"

	"orderwalk/internal/types"
	"orderwalk/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNew_MemoryState(t *testing.T) {
	config := types.DefaultConfig()
	config.StateURL = "memory://"
	config.OutputDir = t.TempDir()
	config.FetchInvoices = true

	a, err := New(context.Background(), config, testLogger(), utils.AlwaysConfirm)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Walker)
	assert.NotNil(t, a.Metrics)
	assert.NotNil(t, a.http)
	active, err := a.Walker.Active(context.Background())
	require.NoError(t, err)
	assert.False(t, active)
}

func TestNew_InvalidConfig(t *testing.T) {
	config := types.DefaultConfig()
	config.MaxConcurrentRequests = 0

	_, err := New(context.Background(), config, testLogger(), utils.AlwaysConfirm)

	assert.Error(t, err)
}

func TestNew_UnsupportedState(t *testing.T) {
	config := types.DefaultConfig()
	config.StateURL = "ftp://nowhere"

	_, err := New(context.Background(), config, testLogger(), utils.AlwaysConfirm)

	assert.Error(t, err)
}

func TestOpenPage_StaticWhenBrowserDisabled(t *testing.T) {
	config := types.DefaultConfig()
	config.StateURL = "memory://"
	config.UseHeadlessBrowser = false

	a, err := New(context.Background(), config, testLogger(), utils.AlwaysConfirm)
	require.NoError(t, err)
	defer a.Close()

	page, err := a.OpenPage(context.Background(), "https://shop.test/orders")
	require.NoError(t, err)
	assert.IsType(t, &utils.StaticPage{}, page)
	assert.Equal(t, "https://shop.test/orders", page.URL())
}

func TestNewWalker_SharesState(t *testing.T) {
	config := types.DefaultConfig()
	config.StateURL = "memory://"

	a, err := New(context.Background(), config, testLogger(), utils.NeverConfirm)
	require.NoError(t, err)
	defer a.Close()

	w, err := a.NewWalker(utils.AlwaysConfirm, false)
	require.NoError(t, err)
	require.NoError(t, a.State.Begin(context.Background()))

	active, err := w.Active(context.Background())
	require.NoError(t, err)
	assert.True(t, active)
	assert.False(t, config.FetchInvoices)
}
