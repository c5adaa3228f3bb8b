package routes

import (
	"condo-notify-api/src/infrastructure/rest/controllers/dispatch"
	"condo-notify-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
)

func DispatchRoutes(router *gin.RouterGroup, controller dispatch.IDispatchController) {
	dispatchRoute := router.Group("/dispatch")
	dispatchRoute.Use(middlewares.AuthJWTMiddleware())
	{
		dispatchRoute.POST("/batch", controller.CreateBatch)
		dispatchRoute.POST("/status", controller.GetStatuses)
		dispatchRoute.GET("/batch/:batch_id", controller.GetBatchProgress)
		dispatchRoute.POST("/process", middlewares.RequiresRoleMiddleware("admin"), controller.TriggerProcess)
	}
}
