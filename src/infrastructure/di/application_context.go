package di

import (
	"sync"
	"time"

	authUseCase "condo-notify-api/src/application/usecases/auth"
	batchUseCase "condo-notify-api/src/application/usecases/batch"
	consentUseCase "condo-notify-api/src/application/usecases/consent"
	"condo-notify-api/src/domain/common"
	"condo-notify-api/src/infrastructure/cache"
	"condo-notify-api/src/infrastructure/gateway"
	"condo-notify-api/src/infrastructure/guard"
	"condo-notify-api/src/infrastructure/helper"
	logger "condo-notify-api/src/infrastructure/logger"
	"condo-notify-api/src/infrastructure/messaging"
	"condo-notify-api/src/infrastructure/repository/entitystore"
	dispatchRepo "condo-notify-api/src/infrastructure/repository/entitystore/dispatch"
	operatorRepo "condo-notify-api/src/infrastructure/repository/entitystore/operator"
	authController "condo-notify-api/src/infrastructure/rest/controllers/auth"
	consentController "condo-notify-api/src/infrastructure/rest/controllers/consent"
	dispatchController "condo-notify-api/src/infrastructure/rest/controllers/dispatch"
	gatewayConfigController "condo-notify-api/src/infrastructure/rest/controllers/gatewayconfig"
	"condo-notify-api/src/infrastructure/security"
	"condo-notify-api/src/infrastructure/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ApplicationContext holds all application dependencies and services.
type ApplicationContext struct {
	DB                      *gorm.DB
	Logger                  *logger.Logger
	QueueProcessor          *messaging.QueueProcessor
	AuthController          authController.IAuthController
	DispatchController      dispatchController.IDispatchController
	ConsentController       consentController.IConsentController
	GatewayConfigController gatewayConfigController.IGatewayConfigController
	JWTService              security.IJWTService
	CommonService           common.CommonService
}

var (
	loggerInstance *logger.Logger
	loggerOnce     sync.Once
)

func GetLogger() *logger.Logger {
	loggerOnce.Do(func() {
		loggerInstance, _ = logger.NewLogger()
	})
	return loggerInstance
}

// SetupDependencies creates a new application context with all dependencies.
// The guards and the cache are explicitly constructed here, never ambient
// package-level singletons, so tests can build isolated instances.
func SetupDependencies(loggerInstance *logger.Logger) (*ApplicationContext, error) {
	db, err := entitystore.InitDB(loggerInstance)
	if err != nil {
		return nil, err
	}

	templates, err := messaging.LoadTemplates(utils.GetEnv("MESSAGE_TEMPLATES_PATH", ""))
	if err != nil {
		loggerInstance.Warn("Template file not loaded, using defaults", zap.Error(err))
	}

	jobRepository := dispatchRepo.NewJobRepository(db, loggerInstance)
	configRepository := dispatchRepo.NewGatewayConfigRepository(db, loggerInstance)
	residentRepository := dispatchRepo.NewResidentRepository(db, loggerInstance)
	operatorRepository := operatorRepo.NewOperatorRepository(db, loggerInstance)

	gatewayClient := gateway.NewHTTPClient(loggerInstance)
	configCache := cache.NewTTLCache()
	configSequencer := guard.NewUpdateSequencer()
	operationLock := guard.NewOperationLock(guard.DefaultLockExpiry)

	processor := messaging.NewQueueProcessor(
		jobRepository,
		configRepository,
		residentRepository,
		gatewayClient,
		configCache,
		configSequencer,
		templates,
		loggerInstance,
		utils.GetEnvInt("DISPATCH_WORKER_COUNT", 3),
		time.Duration(utils.GetEnvInt("DISPATCH_SWEEP_SECONDS", 60))*time.Second,
	)
	processor.Start()

	jwtService := security.NewJWTService()
	commonService := common.NewCommonService(helper.NewValidator())

	authUC := authUseCase.NewAuthUseCase(operatorRepository, jwtService, loggerInstance)
	batchUC := batchUseCase.NewBatchUseCase(jobRepository, residentRepository, processor, operationLock, loggerInstance)
	consentUC := consentUseCase.NewConsentUseCase(residentRepository, configRepository, gatewayClient, templates, loggerInstance)

	return &ApplicationContext{
		DB:                      db,
		Logger:                  loggerInstance,
		QueueProcessor:          processor,
		AuthController:          authController.NewAuthController(commonService, authUC, loggerInstance),
		DispatchController:      dispatchController.NewDispatchController(commonService, batchUC, processor, loggerInstance),
		ConsentController:       consentController.NewConsentController(commonService, consentUC, loggerInstance),
		GatewayConfigController: gatewayConfigController.NewGatewayConfigController(configRepository, configCache, loggerInstance),
		JWTService:              jwtService,
		CommonService:           commonService,
	}, nil
}
