package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs LoadConfig from an empty directory so no .env is picked up.
func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		viper.Reset()
	})
	viper.Reset()
}

func TestLoadConfig_Defaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("JWT_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "http://localhost:8080/dcm4chee-arc", cfg.Archive.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Archive.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Archive.DirectoryCacheTTL)
	assert.Equal(t, []string{"root", "admin"}, cfg.UI.SuperRoles)
	assert.False(t, cfg.DB.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	inTempDir(t)
	env := "ARCHIVE_URL=http://pacs:8080/dcm4chee-arc/\n" +
		"JWT_SECRET=secret\n" +
		"UI_INTERNAL_AETS=DCM4CHEE, IOCM_REGULAR_USE\n" +
		"ARCHIVE_TIMEOUT=5s\n" +
		"SESSION_TTL=not-a-duration\n" +
		"DB_HOST=db\n"
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte(env), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://pacs:8080/dcm4chee-arc", cfg.Archive.BaseURL)
	assert.Equal(t, []string{"DCM4CHEE", "IOCM_REGULAR_USE"}, cfg.UI.InternalAets)
	assert.Equal(t, 5*time.Second, cfg.Archive.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.JWT.Enabled)
	assert.True(t, cfg.DB.Enabled())
}

func TestLoadConfig_JWTSecretRequired(t *testing.T) {
	inTempDir(t)
	t.Setenv("JWT_ENABLED", "true")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()

	assert.Error(t, err)
}
