package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "ORGNAV_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "modules", "orgnav")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	chdir(t, sub)

	_ = os.Unsetenv("ORGNAV_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("ORGNAV_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("ORGNAV_TEST_ENV_LOAD"))
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	c, err := Load([]string{".env.missing"})
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, 50, c.Locator.MaxAttempts)
	require.Equal(t, 100*time.Millisecond, c.Locator.Interval)
	require.Equal(t, 3, c.Locator.FitAttempt)
	require.Equal(t, 10, c.SearchLimit)
	require.Equal(t, "file", c.DataSource)
	require.Equal(t, "localhost:3200", c.SocketAddress)
	require.Equal(t, logrus.ErrorLevel, c.LogrusLogLevel())
	require.NotNil(t, c.Logger())
	require.Contains(t, c.Database.Opts, "dbname=orgnav")
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	requireWriteFile(t, filepath.Join(dir, ".env"), "ORGNAV_LOCATOR_INTERVAL=20ms\nORGNAV_SEARCH_LIMIT=5\nORGNAV_DATA_SOURCE=Postgres\nLOG_LEVEL=debug\n")
	for _, key := range []string{"ORGNAV_LOCATOR_INTERVAL", "ORGNAV_SEARCH_LIMIT", "ORGNAV_DATA_SOURCE", "LOG_LEVEL"} {
		t.Cleanup(func() { _ = os.Unsetenv(key) })
	}

	c, err := Load([]string{".env"})
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, 20*time.Millisecond, c.Locator.Interval)
	require.Equal(t, 5, c.SearchLimit)
	require.Equal(t, "postgres", c.DataSource)
	require.Equal(t, logrus.DebugLevel, c.LogrusLogLevel())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("ORGNAV_DATA_SOURCE", "mongo")
	_, err := Load(nil)
	require.ErrorContains(t, err, "ORGNAV_DATA_SOURCE")

	t.Setenv("ORGNAV_DATA_SOURCE", "file")
	t.Setenv("ORGNAV_LOCATOR_FIT_ATTEMPT", "80")
	_, err = Load(nil)
	require.ErrorContains(t, err, "fit attempt")
}

func TestLoad_FileLogger(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("LOG_PATH", filepath.Join(dir, "logs", "orgnav.log"))

	c, err := Load(nil)
	require.NoError(t, err)
	c.Logger().Error("hello")
	c.Unload()

	data, err := os.ReadFile(filepath.Join(dir, "logs", "orgnav.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(dir))
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
