package util_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-keyvault/internal/util"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("KEYVAULT_TEST_STR", "value")
	t.Setenv("KEYVAULT_TEST_INT", "12")
	t.Setenv("KEYVAULT_TEST_BAD_INT", "twelve")
	t.Setenv("KEYVAULT_TEST_UINT", "262144")
	t.Setenv("KEYVAULT_TEST_BOOL", "true")
	t.Setenv("KEYVAULT_TEST_ARR", "a, b,,c")

	assert.Equal(t, "value", util.GetEnv("KEYVAULT_TEST_STR", "x"))
	assert.Equal(t, "x", util.GetEnv("KEYVAULT_TEST_MISSING", "x"))
	assert.Equal(t, 12, util.GetEnvAsInt("KEYVAULT_TEST_INT", 1))
	assert.Equal(t, 1, util.GetEnvAsInt("KEYVAULT_TEST_BAD_INT", 1))
	assert.Equal(t, uint64(262144), util.GetEnvAsUint64("KEYVAULT_TEST_UINT", 1))
	assert.True(t, util.GetEnvAsBool("KEYVAULT_TEST_BOOL", false))
	assert.True(t, util.GetEnvAsBool("KEYVAULT_TEST_MISSING", true))
	assert.Equal(t, []string{"a", "b", "c"}, util.GetEnvAsStringArr("KEYVAULT_TEST_ARR", nil))
	assert.Equal(t, []string{"d"}, util.GetEnvAsStringArr("KEYVAULT_TEST_MISSING", []string{"d"}))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KEYVAULT_DOTENV_TEST=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("KEYVAULT_DOTENV_TEST") })

	util.LoadDotEnv(path)
	assert.Equal(t, "from-file", os.Getenv("KEYVAULT_DOTENV_TEST"))
}

func TestLogFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())

	util.LogFromContext(ctx).Info().Msg("scoped")
	assert.Contains(t, buf.String(), "scoped")

	assert.Equal(t, &log.Logger, util.LogFromContext(context.Background()))
}

func TestContextWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := util.ContextWithComponent(l.WithContext(context.Background()), "vault")

	util.LogFromContext(ctx).Info().Msg("tagged")
	assert.Contains(t, buf.String(), `"component":"vault"`)
}

func TestConfigureLoggerOutput(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	util.ConfigureLoggerOutput(&buf, zerolog.WarnLevel, false)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
