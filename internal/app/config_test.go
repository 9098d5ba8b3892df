package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtualstage/backlot/internal/auth"
	"github.com/virtualstage/backlot/internal/auth/providers"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "https://studio.example.com", cfg.Server.BaseURL)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "cache.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.Equal(t, 3*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, "sk-test-key", cfg.AI.APIKey)
	require.Equal(t, "https://llm.example.com/v1", cfg.AI.BaseURL)
	require.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	require.Equal(t, 90*time.Second, cfg.AI.Timeout)

	require.True(t, cfg.Storage.S3.Enabled)
	require.Equal(t, "eu-west-1", cfg.Storage.S3.Region)
	require.Equal(t, "backlot-media", cfg.Storage.S3.Bucket)
	require.Equal(t, "AKIAEXAMPLE", cfg.Storage.S3.AccessKeyID)
	require.Equal(t, 30, cfg.Storage.S3.PresignExpireMinutes)
	require.True(t, cfg.Storage.S3.PublicRead)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Monitoring.Health.Enabled)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 1440*time.Hour, cfg.Auth.Session.RefreshTTL)
	require.Equal(t, 64, cfg.Auth.Session.RefreshLength)
	require.Equal(t, 7, cfg.Auth.Local.LockoutThreshold)
	require.Equal(t, 20*time.Minute, cfg.Auth.Local.LockoutDuration)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, "smtp-user", cfg.Email.SMTP.Username)
	require.Equal(t, "smtp-pass", cfg.Email.SMTP.Password)
	require.Equal(t, "no-reply@example.com", cfg.Email.SMTP.From)
	require.True(t, cfg.Email.SMTP.UseTLS)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/backlot.sqlite", cfg.Database.Path)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "gpt-4o", cfg.AI.Model)
	require.False(t, cfg.AI.Enabled())
	require.False(t, cfg.Storage.S3.Enabled)
	require.Equal(t, 60, cfg.Storage.S3.PresignExpireMinutes)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 48, cfg.Auth.Session.RefreshLength)
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := Config{
		Auth: AuthConfig{
			JWT: JWTSettings{
				Secret: "secret",
				Issuer: "issuer",
				TTL:    30 * time.Minute,
			},
			Session: SessionSettings{
				RefreshTTL:    10 * time.Hour,
				RefreshLength: 32,
			},
			Local: LocalAuthSettings{
				LockoutThreshold: 4,
				LockoutDuration:  10 * time.Minute,
			},
		},
	}

	jwtCfg := cfg.Auth.JWTServiceConfig()
	require.Equal(t, auth.JWTConfig{
		Secret:         "secret",
		Issuer:         "issuer",
		AccessTokenTTL: 30 * time.Minute,
	}, jwtCfg)

	sessionCfg := cfg.Auth.SessionServiceConfig()
	require.Equal(t, auth.SessionConfig{
		RefreshTokenTTL: 10 * time.Hour,
		RefreshLength:   32,
	}, sessionCfg)

	localCfg := cfg.Auth.LocalProviderConfig()
	require.Equal(t, providers.LocalConfig{
		LockoutThreshold: 4,
		LockoutDuration:  10 * time.Minute,
	}, localCfg)
}

func TestAuthConfigAdaptersFallback(t *testing.T) {
	var cfg AuthConfig

	jwtCfg := cfg.JWTServiceConfig()
	require.Equal(t, auth.DefaultAccessTokenTTL, jwtCfg.AccessTokenTTL)

	sessionCfg := cfg.SessionServiceConfig()
	require.Equal(t, auth.DefaultRefreshTokenTTL, sessionCfg.RefreshTokenTTL)
	require.Equal(t, 48, sessionCfg.RefreshLength)

	localCfg := cfg.LocalProviderConfig()
	require.Equal(t, defaultLockoutThreshold, localCfg.LockoutThreshold)
	require.Equal(t, defaultLockoutDuration, localCfg.LockoutDuration)
}

func TestDatabaseConfigAdapter(t *testing.T) {
	t.Run("defaults to sqlite", func(t *testing.T) {
		cfg := DatabaseConfig{Path: " ./data/backlot.sqlite "}

		dbCfg := cfg.ConnectionConfig()
		require.Equal(t, "sqlite", dbCfg.Driver)
		require.Equal(t, "./data/backlot.sqlite", dbCfg.Path)
	})

	t.Run("postgres aliases normalise", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver: "PostgreSQL",
			Postgres: DBAuthConfig{
				Host:     " db.internal ",
				Port:     5433,
				Database: "backlot",
				Username: "backlot",
				Password: "secret",
			},
		}

		dbCfg := cfg.ConnectionConfig()
		require.Equal(t, "postgres", dbCfg.Driver)
		require.Equal(t, "db.internal", dbCfg.Host)
		require.Equal(t, 5433, dbCfg.Port)
		require.Equal(t, "backlot", dbCfg.Name)
		require.Equal(t, "backlot", dbCfg.User)
		require.Equal(t, "secret", dbCfg.Password)
	})

	t.Run("mariadb maps to mysql", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver: "mariadb",
			MySQL: DBAuthConfig{
				Host:     "mysql.internal",
				Port:     3306,
				Database: "backlot",
				Username: "root",
			},
		}

		dbCfg := cfg.ConnectionConfig()
		require.Equal(t, "mysql", dbCfg.Driver)
		require.Equal(t, "mysql.internal", dbCfg.Host)
		require.Equal(t, 3306, dbCfg.Port)
	})

	t.Run("unknown driver passes through", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "oracle"}
		require.Equal(t, "oracle", cfg.ConnectionConfig().Driver)
	})
}

func TestAIConfigAdapter(t *testing.T) {
	cfg := AIConfig{
		APIKey:  "  sk-key  ",
		BaseURL: " https://llm.example.com/v1 ",
		Model:   " gpt-4o ",
		Timeout: time.Minute,
	}

	require.True(t, cfg.Enabled())

	clientCfg := cfg.ClientConfig()
	require.Equal(t, "sk-key", clientCfg.APIKey)
	require.Equal(t, "https://llm.example.com/v1", clientCfg.BaseURL)
	require.Equal(t, "gpt-4o", clientCfg.Model)
	require.Equal(t, time.Minute, clientCfg.Timeout)

	require.False(t, AIConfig{}.Enabled())
}

func TestStorageConfigAdapter(t *testing.T) {
	cfg := StorageConfig{
		S3: S3StorageConfig{
			Enabled:              true,
			Region:               " eu-west-1 ",
			Bucket:               " backlot-media ",
			AccessKeyID:          "key",
			SecretAccessKey:      "secret",
			PresignExpireMinutes: 30,
			PublicRead:           true,
		},
	}

	bucketCfg := cfg.BucketConfig()
	require.Equal(t, "eu-west-1", bucketCfg.Region)
	require.Equal(t, "backlot-media", bucketCfg.Bucket)
	require.Equal(t, "key", bucketCfg.AccessKeyID)
	require.Equal(t, "secret", bucketCfg.SecretAccessKey)
	require.Equal(t, 30, bucketCfg.PresignExpireMinutes)
	require.True(t, bucketCfg.PublicRead)
}

func TestEmailConfigAdapter(t *testing.T) {
	cfg := EmailConfig{
		SMTP: SMTPConfig{
			Enabled:  true,
			Host:     "smtp.example.com",
			Port:     2525,
			Username: "user",
			Password: "pass",
			From:     "no-reply@example.com",
			UseTLS:   true,
			Timeout:  10 * time.Second,
		},
	}

	settings := cfg.SMTPSettings()
	require.True(t, settings.Enabled)
	require.Equal(t, "smtp.example.com", settings.Host)
	require.Equal(t, 2525, settings.Port)
	require.Equal(t, "user", settings.Username)
	require.Equal(t, "pass", settings.Password)
	require.Equal(t, "no-reply@example.com", settings.From)
	require.True(t, settings.UseTLS)
	require.Equal(t, 10*time.Second, settings.Timeout)
}
