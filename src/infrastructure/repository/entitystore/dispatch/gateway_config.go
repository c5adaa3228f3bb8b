package dispatch

import (
	"encoding/json"
	"time"

	domainErrors "condo-notify-api/src/domain/errors"
	domainGateway "condo-notify-api/src/domain/gateway"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GatewayConfig is the database model for per-condominium gateway settings.
type GatewayConfig struct {
	ID            int       `gorm:"primaryKey"`
	CondominiumID int       `gorm:"column:condominium_id;uniqueIndex"`
	BaseURL       string    `gorm:"column:base_url"`
	SendEndpoint  string    `gorm:"column:send_endpoint"`
	InstanceID    string    `gorm:"column:instance_id"`
	ClientToken   string    `gorm:"column:client_token"`
	Active        bool      `gorm:"column:active;default:false;index"`
	Settings      string    `gorm:"column:settings;type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:mili"`
}

func (GatewayConfig) TableName() string {
	return "gateway_configs"
}

var ColumnsGatewayConfigMapping = map[string]string{
	"id":            "id",
	"condominiumID": "condominium_id",
	"baseURL":       "base_url",
	"sendEndpoint":  "send_endpoint",
	"instanceID":    "instance_id",
	"clientToken":   "client_token",
	"active":        "active",
	"settings":      "settings",
}

type GatewayConfigRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewGatewayConfigRepository(db *gorm.DB, loggerInstance *logger.Logger) domainGateway.ConfigRepository {
	return &GatewayConfigRepository{DB: db, Logger: loggerInstance}
}

func (r *GatewayConfigRepository) GetActiveByCondominium(condominiumID int) (*domainGateway.Config, error) {
	var cfg GatewayConfig
	err := r.DB.Where("condominium_id = ? AND active = ?", condominiumID, true).First(&cfg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting active gateway config", zap.Error(err), zap.Int("condominiumID", condominiumID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return cfg.toDomainMapper(), nil
}

func (r *GatewayConfigRepository) GetByCondominium(condominiumID int) (*domainGateway.Config, error) {
	var cfg GatewayConfig
	err := r.DB.Where("condominium_id = ?", condominiumID).First(&cfg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting gateway config", zap.Error(err), zap.Int("condominiumID", condominiumID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return cfg.toDomainMapper(), nil
}

func (r *GatewayConfigRepository) Update(condominiumID int, configMap map[string]interface{}) (*domainGateway.Config, error) {
	updateData := make(map[string]interface{})
	for k, v := range configMap {
		if column, ok := ColumnsGatewayConfigMapping[k]; ok {
			updateData[column] = v
		} else {
			updateData[k] = v
		}
	}

	tx := r.DB.Model(&GatewayConfig{}).
		Where("condominium_id = ?", condominiumID).
		Updates(updateData)
	if tx.Error != nil {
		r.Logger.Error("Error updating gateway config", zap.Error(tx.Error), zap.Int("condominiumID", condominiumID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	if tx.RowsAffected == 0 {
		return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}

	return r.GetByCondominium(condominiumID)
}

// RecordSend bumps the running sent counter and stamps the last sync inside
// the settings JSON document. sjson rewrites just the touched paths so other
// toggles in the blob are preserved.
func (r *GatewayConfigRepository) RecordSend(condominiumID int, sentAt time.Time) error {
	var cfg GatewayConfig
	if err := r.DB.Where("condominium_id = ?", condominiumID).First(&cfg).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error reading gateway config for send record", zap.Error(err), zap.Int("condominiumID", condominiumID))
		return domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}

	settings := cfg.Settings
	if settings == "" {
		settings = "{}"
	}

	settings, err := sjson.Set(settings, "sent_count", currentSentCount(settings)+1)
	if err != nil {
		return domainErrors.NewAppError(err, domainErrors.UnknownError)
	}
	settings, err = sjson.Set(settings, "last_sync_at", sentAt.UTC().Format(time.RFC3339))
	if err != nil {
		return domainErrors.NewAppError(err, domainErrors.UnknownError)
	}
	settings, err = sjson.Set(settings, "connection_status", "connected")
	if err != nil {
		return domainErrors.NewAppError(err, domainErrors.UnknownError)
	}

	if err := r.DB.Model(&GatewayConfig{}).
		Where("condominium_id = ?", condominiumID).
		Update("settings", settings).Error; err != nil {
		r.Logger.Error("Error recording send on gateway config", zap.Error(err), zap.Int("condominiumID", condominiumID))
		return domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return nil
}

func currentSentCount(settings string) int {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(settings), &doc); err != nil {
		return 0
	}
	if v, ok := doc["sent_count"].(float64); ok {
		return int(v)
	}
	return 0
}

// Mappers
func (c *GatewayConfig) toDomainMapper() *domainGateway.Config {
	return &domainGateway.Config{
		ID:            c.ID,
		CondominiumID: c.CondominiumID,
		BaseURL:       c.BaseURL,
		SendEndpoint:  c.SendEndpoint,
		InstanceID:    c.InstanceID,
		ClientToken:   c.ClientToken,
		Active:        c.Active,
		Settings:      c.Settings,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
