package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skoom21/zocdoc-scraper/internal/config"
	"github.com/skoom21/zocdoc-scraper/internal/logger"
)

func TestDisabledProxying(t *testing.T) {
	cfg := &config.ProxyConfig{Enabled: false, Server: "http://1.2.3.4:8080"}
	m := NewManager(cfg, logger.NewNop())

	assert.Equal(t, 1, m.MaxAttempts())
	assert.True(t, m.EndpointFor(0).IsZero())
}

func TestPrimaryOnly(t *testing.T) {
	cfg := &config.ProxyConfig{
		Enabled:  true,
		Server:   "http://1.2.3.4:8080",
		Username: "user",
		Password: "pass",
	}
	m := NewManager(cfg, logger.NewNop())

	assert.Equal(t, 1, m.MaxAttempts())
	ep := m.EndpointFor(0)
	assert.Equal(t, "http://1.2.3.4:8080", ep.Server)
	assert.Equal(t, "user", ep.Username)
	assert.Equal(t, "primary", ep.Tier)
}

func TestBackupRotation(t *testing.T) {
	cfg := &config.ProxyConfig{
		Enabled: true,
		Server:  "http://1.2.3.4:8080",
		Backups: []string{
			"5.6.7.8:9999:bob:secret",
			"9.8.7.6:1111:alice:hunter2",
		},
	}
	m := NewManager(cfg, logger.NewNop())

	assert.Equal(t, 3, m.MaxAttempts())

	assert.Equal(t, "primary", m.EndpointFor(0).Tier)

	first := m.EndpointFor(1)
	assert.Equal(t, "http://5.6.7.8:9999", first.Server)
	assert.Equal(t, "bob", first.Username)
	assert.Equal(t, "secret", first.Password)
	assert.Equal(t, "backup_1", first.Tier)

	second := m.EndpointFor(2)
	assert.Equal(t, "http://9.8.7.6:1111", second.Server)
	assert.Equal(t, "backup_2", second.Tier)
}

func TestMalformedBackupFallsThroughToPrimary(t *testing.T) {
	cfg := &config.ProxyConfig{
		Enabled: true,
		Server:  "http://1.2.3.4:8080",
		Backups: []string{"not-a-proxy"},
	}
	m := NewManager(cfg, logger.NewNop())

	// The malformed entry still counts as an attempt, resolved to primary.
	assert.Equal(t, 2, m.MaxAttempts())
	ep := m.EndpointFor(1)
	assert.Equal(t, "http://1.2.3.4:8080", ep.Server)
	assert.Equal(t, "primary", ep.Tier)
}
