package operator

import (
	"time"

	domainErrors "condo-notify-api/src/domain/errors"
	domainOperator "condo-notify-api/src/domain/operator"
	logger "condo-notify-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Operator is the database model for staff accounts.
type Operator struct {
	ID           int       `gorm:"primaryKey"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	HashPassword string    `gorm:"column:hash_password"`
	Role         string    `gorm:"column:role;default:operator"`
	Status       bool      `gorm:"column:status;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime:mili"`
}

func (Operator) TableName() string {
	return "operators"
}

type OperatorRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewOperatorRepository(db *gorm.DB, loggerInstance *logger.Logger) domainOperator.Repository {
	return &OperatorRepository{DB: db, Logger: loggerInstance}
}

func (r *OperatorRepository) GetByID(id int) (*domainOperator.Operator, error) {
	var op Operator
	err := r.DB.Where("id = ?", id).First(&op).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting operator", zap.Error(err), zap.Int("id", id))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return op.toDomainMapper(), nil
}

func (r *OperatorRepository) GetByEmail(email string) (*domainOperator.Operator, error) {
	var op Operator
	err := r.DB.Where("email = ?", email).First(&op).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting operator by email", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return op.toDomainMapper(), nil
}

func (r *OperatorRepository) Create(op *domainOperator.Operator) (*domainOperator.Operator, error) {
	record := operatorFromDomainMapper(op)
	if err := r.DB.Create(record).Error; err != nil {
		r.Logger.Error("Error creating operator", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return record.toDomainMapper(), nil
}

func (op *Operator) toDomainMapper() *domainOperator.Operator {
	return &domainOperator.Operator{
		ID:           op.ID,
		Name:         op.Name,
		Email:        op.Email,
		HashPassword: op.HashPassword,
		Role:         op.Role,
		Status:       op.Status,
		CreatedAt:    op.CreatedAt,
		UpdatedAt:    op.UpdatedAt,
	}
}

func operatorFromDomainMapper(op *domainOperator.Operator) *Operator {
	return &Operator{
		ID:           op.ID,
		Name:         op.Name,
		Email:        op.Email,
		HashPassword: op.HashPassword,
		Role:         op.Role,
		Status:       op.Status,
	}
}
