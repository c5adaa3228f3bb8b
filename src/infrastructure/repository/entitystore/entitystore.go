package entitystore

import (
	"fmt"
	"os"
	"strings"

	logger "condo-notify-api/src/infrastructure/logger"
	"condo-notify-api/src/infrastructure/repository/entitystore/dispatch"
	"condo-notify-api/src/infrastructure/repository/entitystore/operator"
	"condo-notify-api/src/infrastructure/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseConfig holds the connection settings for the shared entity store.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	var missingVars []string
	if host == "" {
		missingVars = append(missingVars, "DB_HOST")
	}
	if port == "" {
		missingVars = append(missingVars, "DB_PORT")
	}
	if user == "" {
		missingVars = append(missingVars, "DB_USER")
	}
	if password == "" {
		missingVars = append(missingVars, "DB_PASSWORD")
	}
	if dbName == "" {
		missingVars = append(missingVars, "DB_NAME")
	}
	if len(missingVars) > 0 {
		return DatabaseConfig{}, fmt.Errorf("missing required database environment variables: %s", strings.Join(missingVars, ", "))
	}

	return DatabaseConfig{
		Driver:   utils.GetEnv("DB_DRIVER", "mysql"),
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  utils.GetEnv("DB_SSLMODE", "disable"),
	}, nil
}

// InitDB opens the entity store, migrates the schema this subsystem owns and
// seeds the default operator account when none exists.
func InitDB(loggerInstance *logger.Logger) (*gorm.DB, error) {
	cfg, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		loggerInstance.Error("Error connecting to entity store", zap.Error(err), zap.String("driver", cfg.Driver))
		return nil, err
	}

	if err := db.AutoMigrate(
		&dispatch.DispatchJob{},
		&dispatch.GatewayConfig{},
		&operator.Operator{},
	); err != nil {
		loggerInstance.Error("Error migrating entity store schema", zap.Error(err))
		return nil, err
	}

	if err := seedDefaultOperator(db, loggerInstance); err != nil {
		return nil, err
	}

	loggerInstance.Info("Entity store initialized", zap.String("driver", cfg.Driver), zap.String("database", cfg.DBName))
	return db, nil
}

func seedDefaultOperator(db *gorm.DB, loggerInstance *logger.Logger) error {
	var count int64
	if err := db.Model(&operator.Operator{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := utils.GetEnv("DEFAULT_OPERATOR_EMAIL", "admin@condo-notify.local")
	password := utils.GetEnv("DEFAULT_OPERATOR_PASSWORD", "change-me")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	op := operator.Operator{
		Name:         "Administrator",
		Email:        email,
		HashPassword: string(hash),
		Role:         "admin",
		Status:       true,
	}
	if err := db.Create(&op).Error; err != nil {
		loggerInstance.Error("Error seeding default operator", zap.Error(err))
		return err
	}

	loggerInstance.Info("Seeded default operator account", zap.String("email", email))
	return nil
}
