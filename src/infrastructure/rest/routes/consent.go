package routes

import (
	"condo-notify-api/src/infrastructure/rest/controllers/consent"
	"condo-notify-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func ConsentRoutes(router *gin.RouterGroup, controller consent.IConsentController) {
	consentRoute := router.Group("/consent")
	{
		// The webhook is called by the gateway itself and carries no JWT.
		consentRoute.POST("/webhook", controller.Webhook)
		consentRoute.POST("/request", middlewares.AuthJWTMiddleware(), controller.RequestOptIn)
	}
}
