package dispatch

import (
	domainDispatch "condo-notify-api/src/domain/dispatch"
	domainErrors "condo-notify-api/src/domain/errors"
	domainResident "condo-notify-api/src/domain/resident"
	logger "condo-notify-api/src/infrastructure/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resident is a read-only projection over the resident table owned by the
// external entity store. It is never migrated or created from here; the only
// column this subsystem writes is whatsapp_consent.
type Resident struct {
	ID            int    `gorm:"primaryKey"`
	CondominiumID int    `gorm:"column:condominium_id"`
	Name          string `gorm:"column:name"`
	Phone         string `gorm:"column:phone"`
	Consent       string `gorm:"column:whatsapp_consent"`
}

func (Resident) TableName() string {
	return "residents"
}

type ResidentRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewResidentRepository(db *gorm.DB, loggerInstance *logger.Logger) domainResident.Repository {
	return &ResidentRepository{DB: db, Logger: loggerInstance}
}

func (r *ResidentRepository) GetByID(id int) (*domainResident.Resident, error) {
	var res Resident
	err := r.DB.Where("id = ?", id).First(&res).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting resident", zap.Error(err), zap.Int("id", id))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return res.toDomainMapper(), nil
}

// GetByPhone resolves a resident from a normalized phone number. The resident
// table stores phones in whatever form they were registered, so the lookup
// matches every storage variant of the number, not the E.164 form alone.
func (r *ResidentRepository) GetByPhone(phone string) (*domainResident.Resident, error) {
	var res Resident
	err := r.DB.Where("phone IN ?", domainDispatch.PhoneVariants(phone)).First(&res).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting resident by phone", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return res.toDomainMapper(), nil
}

// CountPendingPackages counts still-undelivered packages for a resident. The
// count is frozen into the job at batch-build time.
func (r *ResidentRepository) CountPendingPackages(residentID int) (int, error) {
	var count int64
	err := r.DB.Table("packages").
		Where("resident_id = ? AND delivered_at IS NULL", residentID).
		Count(&count).Error
	if err != nil {
		r.Logger.Error("Error counting pending packages", zap.Error(err), zap.Int("residentID", residentID))
		return 0, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return int(count), nil
}

func (r *ResidentRepository) UpdateConsent(residentID int, state domainResident.ConsentState) error {
	tx := r.DB.Model(&Resident{}).
		Where("id = ?", residentID).
		Update("whatsapp_consent", string(state))
	if tx.Error != nil {
		r.Logger.Error("Error updating resident consent", zap.Error(tx.Error), zap.Int("residentID", residentID))
		return domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	if tx.RowsAffected == 0 {
		return domainErrors.NewAppErrorWithType(domainErrors.NotFound)
	}
	r.Logger.Info("Updated resident consent", zap.Int("residentID", residentID), zap.String("state", string(state)))
	return nil
}

func (res *Resident) toDomainMapper() *domainResident.Resident {
	consent := domainResident.ConsentState(res.Consent)
	if consent == "" {
		consent = domainResident.ConsentUnset
	}
	return &domainResident.Resident{
		ID:            res.ID,
		CondominiumID: res.CondominiumID,
		Name:          res.Name,
		Phone:         res.Phone,
		Consent:       consent,
	}
}
