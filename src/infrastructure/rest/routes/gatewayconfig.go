package routes

import (
	"condo-notify-api/src/infrastructure/rest/controllers/gatewayconfig"
	"condo-notify-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func GatewayConfigRoutes(router *gin.RouterGroup, controller gatewayconfig.IGatewayConfigController) {
	configRoute := router.Group("/gateway-config")
	configRoute.Use(middlewares.AuthJWTMiddleware(), middlewares.RequiresRoleMiddleware("admin"))
	{
		configRoute.GET("/:condominium_id", controller.Get)
		configRoute.PUT("/:condominium_id", controller.Update)
	}
}
