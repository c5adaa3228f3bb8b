package gatewayconfig

import (
	"net/http"
	"time"

	domainGateway "condo-notify-api/src/domain/gateway"
	"condo-notify-api/src/infrastructure/cache"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConfigRequest struct {
	CondominiumID int `uri:"condominium_id" binding:"required"`
}

type UpdateConfigRequest struct {
	BaseURL      *string `json:"base_url,omitempty"`
	SendEndpoint *string `json:"send_endpoint,omitempty"`
	InstanceID   *string `json:"instance_id,omitempty"`
	ClientToken  *string `json:"client_token,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	Settings     *string `json:"settings,omitempty"`
}

type ConfigResponse struct {
	CondominiumID int    `json:"condominium_id"`
	BaseURL       string `json:"base_url"`
	SendEndpoint  string `json:"send_endpoint"`
	InstanceID    string `json:"instance_id"`
	Active        bool   `json:"active"`
	Settings      string `json:"settings"`
	UpdatedAt     string `json:"updated_at"`
}

type IGatewayConfigController interface {
	Get(ctx *gin.Context)
	Update(ctx *gin.Context)
}

// GatewayConfigController is the admin surface for per-condominium gateway
// credentials. Updates invalidate the dispatcher's cached copy so the next
// processing pass sees the new values.
type GatewayConfigController struct {
	configRepository domainGateway.ConfigRepository
	configCache      *cache.TTLCache
	Logger           *logger.Logger
}

func NewGatewayConfigController(
	configRepository domainGateway.ConfigRepository,
	configCache *cache.TTLCache,
	loggerInstance *logger.Logger,
) IGatewayConfigController {
	return &GatewayConfigController{
		configRepository: configRepository,
		configCache:      configCache,
		Logger:           loggerInstance,
	}
}

func (c *GatewayConfigController) Get(ctx *gin.Context) {
	var request ConfigRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid condominium ID"})
		return
	}

	cfg, err := c.configRepository.GetByCondominium(request.CondominiumID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}
	ctx.JSON(http.StatusOK, toResponse(cfg))
}

func (c *GatewayConfigController) Update(ctx *gin.Context) {
	var request ConfigRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid condominium ID"})
		return
	}

	var body UpdateConfigRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	configMap := make(map[string]interface{})
	if body.BaseURL != nil {
		configMap["baseURL"] = *body.BaseURL
	}
	if body.SendEndpoint != nil {
		configMap["sendEndpoint"] = *body.SendEndpoint
	}
	if body.InstanceID != nil {
		configMap["instanceID"] = *body.InstanceID
	}
	if body.ClientToken != nil {
		configMap["clientToken"] = *body.ClientToken
	}
	if body.Active != nil {
		configMap["active"] = *body.Active
	}
	if body.Settings != nil {
		configMap["settings"] = *body.Settings
	}
	if len(configMap) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	cfg, err := c.configRepository.Update(request.CondominiumID, configMap)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	c.configCache.Invalidate(domainGateway.ConfigCacheKey(request.CondominiumID))

	c.Logger.Info("Gateway config updated", zap.Int("condominiumID", request.CondominiumID))
	ctx.JSON(http.StatusOK, toResponse(cfg))
}

func toResponse(cfg *domainGateway.Config) ConfigResponse {
	return ConfigResponse{
		CondominiumID: cfg.CondominiumID,
		BaseURL:       cfg.BaseURL,
		SendEndpoint:  cfg.SendEndpoint,
		InstanceID:    cfg.InstanceID,
		Active:        cfg.Active,
		Settings:      cfg.Settings,
		UpdatedAt:     cfg.UpdatedAt.Format(time.RFC3339),
	}
}
