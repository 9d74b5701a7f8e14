// Package proxy implements the proxy failover controller: the primary
// endpoint is always tried first, then backups in configured order.
// Rotation itself is driven by the orchestrator's error classification;
// this package only resolves which endpoint an attempt uses.
package proxy

import (
	"fmt"
	"strings"

	"github.com/skoom21/zocdoc-scraper/internal/config"
	"github.com/skoom21/zocdoc-scraper/internal/logger"
)

// Endpoint is a resolved proxy. The zero value means "no proxy".
type Endpoint struct {
	Server   string
	Username string
	Password string
	Tier     string // "primary" or "backup_N"
}

// IsZero reports whether the endpoint represents a direct connection.
func (e Endpoint) IsZero() bool { return e.Server == "" }

// Manager resolves proxy endpoints per top-level attempt.
type Manager struct {
	cfg *config.ProxyConfig
	log logger.Logger
}

func NewManager(cfg *config.ProxyConfig, log logger.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// MaxAttempts returns the total number of top-level attempts: 1 when
// proxying is disabled, otherwise one primary attempt plus one per
// configured backup.
func (m *Manager) MaxAttempts() int {
	if !m.cfg.Enabled {
		return 1
	}
	return 1 + len(m.cfg.Backups)
}

// EndpointFor resolves the endpoint for the given 0-based attempt.
// Attempt 0 is the primary; attempt k>0 is backups[k-1], parsed from the
// flat ip:port:username:password encoding. Malformed backup entries fall
// through to the primary.
func (m *Manager) EndpointFor(attempt int) Endpoint {
	if !m.cfg.Enabled {
		return Endpoint{}
	}

	if attempt > 0 && attempt-1 < len(m.cfg.Backups) {
		raw := m.cfg.Backups[attempt-1]
		parts := strings.Split(raw, ":")
		if len(parts) == 4 {
			m.log.Infof("Using backup proxy %d/%d: %s:%s",
				attempt, len(m.cfg.Backups), parts[0], parts[1])
			return Endpoint{
				Server:   fmt.Sprintf("http://%s:%s", parts[0], parts[1]),
				Username: parts[2],
				Password: parts[3],
				Tier:     fmt.Sprintf("backup_%d", attempt),
			}
		}
		m.log.Warnf("Malformed backup proxy entry %d, falling back to primary", attempt)
	}

	return Endpoint{
		Server:   m.cfg.Server,
		Username: m.cfg.Username,
		Password: m.cfg.Password,
		Tier:     "primary",
	}
}
