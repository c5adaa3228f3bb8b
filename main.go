package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"condo-notify-api/src/infrastructure/di"
	logger "condo-notify-api/src/infrastructure/logger"
	"condo-notify-api/src/infrastructure/rest/middlewares"
	"condo-notify-api/src/infrastructure/rest/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("SERVER_PORT", "8080"),
	}
}

func main() {
	_ = godotenv.Load()

	env := getEnvOrDefault("GO_ENV", "development")
	var loggerInstance *logger.Logger
	var err error

	if env == "development" {
		loggerInstance, err = logger.NewDevelopmentLogger()
	} else {
		loggerInstance, err = logger.NewLogger()
	}

	if err != nil {
		panic(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() {
		_ = loggerInstance.Log.Sync()
	}()

	loggerInstance.Info("Starting condo-notify-api application")

	serverConfig := loadServerConfig()

	// Initialize application context with dependencies and logger. The queue
	// processor starts its workers and pending-job sweep here.
	appContext, err := di.SetupDependencies(loggerInstance)
	if err != nil {
		loggerInstance.Panic("Error initializing application context", zap.Error(err))
	}
	defer appContext.QueueProcessor.Shutdown()

	router := setupRouter(appContext, loggerInstance)
	server := setupServer(router, serverConfig.Port)

	loggerInstance.Info("Server starting", zap.String("port", serverConfig.Port))
	if err := server.ListenAndServe(); err != nil {
		loggerInstance.Panic("Server failed to start", zap.Error(err))
	}
}

func setupRouter(appContext *di.ApplicationContext, logger *logger.Logger) *gin.Engine {
	env := getEnvOrDefault("GO_ENV", "development")
	if env == "development" {
		logger.SetupGinWithZapLoggerInDevelopment()
	} else {
		logger.SetupGinWithZapLogger()
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.Use(middlewares.ErrorHandler())
	router.Use(middlewares.GinBodyLogMiddleware(logger))
	router.Use(middlewares.CommonHeaders)

	router.Use(logger.GinZapLogger())

	routes.ApplicationRouter(router, appContext)
	return router
}

func setupServer(router *gin.Engine, port string) *http.Server {
	return &http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// Helper function
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
