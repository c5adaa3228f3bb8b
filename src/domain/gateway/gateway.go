package gateway

import (
	"fmt"
	"time"
)

// Config holds the per-condominium credentials and toggles for the external
// messaging gateway. Settings is a JSON document carrying feature toggles
// (auto_birthday, auto_package) and the running counters the dispatcher
// maintains (sent_count, last_sync_at, connection_status).
type Config struct {
	ID            int
	CondominiumID int
	BaseURL       string
	SendEndpoint  string
	InstanceID    string
	ClientToken   string
	Active        bool
	Settings      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ConfigCacheKey is the cache key under which the dispatcher holds a tenant's
// config. Every writer that mutates the config must invalidate this exact key.
func ConfigCacheKey(condominiumID int) string {
	return fmt.Sprintf("gateway_config:%d", condominiumID)
}

// ConfigRepository persists gateway configs in the entity store.
type ConfigRepository interface {
	GetActiveByCondominium(condominiumID int) (*Config, error)
	GetByCondominium(condominiumID int) (*Config, error)
	Update(condominiumID int, configMap map[string]interface{}) (*Config, error)
	RecordSend(condominiumID int, sentAt time.Time) error
}

// Button is one option in a consent-handshake button list.
type Button struct {
	ID    string
	Label string
}

// Client is the wire contract with the external messaging gateway.
// SendText delivers a plain text message; SendButtonList delivers the
// consent handshake variant. Both return the raw response body (already
// truncated for storage) and treat any non-2xx status as an error.
type Client interface {
	SendText(cfg *Config, phone, message string) (string, error)
	SendButtonList(cfg *Config, phone, message string, buttons []Button) (string, error)
}
