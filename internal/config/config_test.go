package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "deliveryboard/internal/errors"
	"deliveryboard/pkg/contracts/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadFrom tests layering of defaults, file and environment
func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 200, cfg.Reports.MaxRecords)
				assert.Equal(t, "latin1", cfg.Reports.Encoding)
				assert.Equal(t, StoreSQLite, cfg.Store.Driver)
				assert.Equal(t, "@every 5m", cfg.Schedule.Refresh)
				assert.Equal(t, "0 0 * * *", cfg.Schedule.Reclassify)
				assert.True(t, filepath.IsAbs(cfg.Reports.ReservationsDir))
				assert.True(t, filepath.IsAbs(cfg.Store.Path))
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"BOARD_SERVER_PORT":              "9090",
				"BOARD_SERVER_READ_TIMEOUT":      "30s",
				"BOARD_REPORTS_ENCODING":         "windows1252",
				"BOARD_REPORTS_MAX_RECORDS":      "0",
				"BOARD_REPORTS_RESERVATIONS_DIR": "/srv/erp/reservas",
				"BOARD_SECURITY_ALLOWED_ORIGINS": "http://a.example,http://b.example",
				"BOARD_STORE_DRIVER":             "memory",
				"BOARD_REPORTS_COMPACT_COLUMNS":  "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "windows1252", cfg.Reports.Encoding)
				assert.Equal(t, 0, cfg.Reports.MaxRecords)
				assert.Equal(t, "/srv/erp/reservas", cfg.Reports.ReservationsDir)
				assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, StoreMemory, cfg.Store.Driver)
				assert.True(t, cfg.Reports.CompactColumns)
			},
		},
		{
			name: "file overrides defaults and keeps the rest",
			file: `
server:
  port: 7070
reports:
  requisitions_dir: /srv/erp/requisicoes
  max_records: 50
  timezone: America/Sao_Paulo
schedule:
  refresh: ""
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "/srv/erp/requisicoes", cfg.Reports.RequisitionsDir)
				assert.Equal(t, 50, cfg.Reports.MaxRecords)
				assert.Empty(t, cfg.Schedule.Refresh)
				assert.Equal(t, "0 0 * * *", cfg.Schedule.Reclassify)
				loc, err := cfg.Location()
				require.NoError(t, err)
				assert.Equal(t, "America/Sao_Paulo", loc.String())
			},
		},
		{
			name: "environment beats file",
			env:  map[string]string{"BOARD_SERVER_PORT": "6060"},
			file: "server:\n  port: 7070\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"BOARD_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "unknown encoding",
			env:     map[string]string{"BOARD_REPORTS_ENCODING": "ebcdic"},
			wantErr: true,
		},
		{
			name:    "negative max records",
			env:     map[string]string{"BOARD_REPORTS_MAX_RECORDS": "-1"},
			wantErr: true,
		},
		{
			name:    "unknown timezone",
			env:     map[string]string{"BOARD_REPORTS_TIMEZONE": "Mars/Olympus"},
			wantErr: true,
		},
		{
			name:    "unknown store driver",
			env:     map[string]string{"BOARD_STORE_DRIVER": "redis"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [port",
			wantErr: true,
		},
		{
			name:    "unparsable env value",
			env:     map[string]string{"BOARD_SERVER_PORT": "eighty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				var appErr *apierrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := LoadFrom(path)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
	assert.Equal(t, path, appErr.Context["file"])
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetConfigFilePath(t *testing.T) {
	t.Run("explicit variable wins", func(t *testing.T) {
		t.Setenv("BOARD_CONFIG", "/etc/board/config.yaml")
		assert.Equal(t, "/etc/board/config.yaml", getConfigFilePath())
	})

	t.Run("finds config.yaml in working directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{}"), 0o644))
		t.Chdir(dir)
		assert.Equal(t, "config.yaml", getConfigFilePath())
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Chdir(t.TempDir())
		assert.Empty(t, getConfigFilePath())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(*Config) {}, false},
		{"cors without origins", func(c *Config) { c.Security.AllowedOrigins = nil }, true},
		{"cors disabled without origins", func(c *Config) {
			c.Security.EnableCORS = false
			c.Security.AllowedOrigins = nil
		}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"bad log output", func(c *Config) { c.Logging.Output = "printer" }, true},
		{"missing reservations dir", func(c *Config) { c.Reports.ReservationsDir = "" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }, true},
		{"memory without path", func(c *Config) {
			c.Store.Driver = StoreMemory
			c.Store.Path = ""
		}, false},
		{"negative file limit", func(c *Config) { c.Reports.MaxFileBytes = -1 }, true},
		{"zero write timeout", func(c *Config) { c.Server.WriteTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateForcesJSONFormat(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestReportDirs(t *testing.T) {
	cfg := Default()
	cfg.Reports.ReservationsDir = "/a"
	cfg.Reports.RequisitionsDir = "/b"

	dirs := cfg.ReportDirs()
	assert.Equal(t, "/a", dirs[domain.KindReservation])
	assert.Equal(t, "/b", dirs[domain.KindRequisition])
	assert.Len(t, dirs, len(domain.Kinds))
}

func TestLocationLocal(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogsDir = filepath.Join(root, "logs")
	cfg.Store.Path = filepath.Join(root, "db", "confirmations.db")

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{"data", "logs", "db"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
