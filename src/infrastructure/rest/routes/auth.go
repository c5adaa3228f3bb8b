package routes

import (
	"condo-notify-api/src/infrastructure/rest/controllers/auth"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(router *gin.RouterGroup, controller auth.IAuthController) {
	authRoute := router.Group("/auth")
	{
		authRoute.POST("/login", controller.Login)
		authRoute.POST("/access-token", controller.GetAccessTokenByRefreshToken)
	}
}
