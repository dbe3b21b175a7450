package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_REPLICA_DSNS", " replica-a , ,replica-b")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 168, cfg.JWT.ExpirationHours)
	assert.Equal(t, 12, cfg.Plan.BcryptCost)
	assert.Equal(t, 3, cfg.Plan.FreeNoteLimit)
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"replica-a", "replica-b"}, cfg.DB.ReplicaDSNs)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DB:     DBConfig{Driver: "postgres"},
			Server: ServerConfig{Env: "development"},
			JWT:    JWTConfig{SigningKey: defaultSigningKey, ExpirationHours: 168},
			Plan:   PlanConfig{FreeNoteLimit: 3, BcryptCost: 12},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Server.Env = "production"
	assert.Error(t, cfg.Validate(), "default signing key must be rejected in production")

	cfg = base()
	cfg.Plan.BcryptCost = 10
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DB.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Plan.FreeNoteLimit = 0
	assert.Error(t, cfg.Validate())
}

func TestGetDSN(t *testing.T) {
	c := DBConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.GetDSN())

	c.Driver = "mysql"
	assert.Equal(t, "u:p@tcp(db:5432)/n?charset=utf8mb4&parseTime=True&loc=UTC", c.GetDSN())

	c.DSN = "explicit"
	assert.Equal(t, "explicit", c.GetDSN())
}
