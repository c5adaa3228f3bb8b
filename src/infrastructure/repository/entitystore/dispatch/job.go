package dispatch

import (
	"time"

	domainDispatch "condo-notify-api/src/domain/dispatch"
	domainErrors "condo-notify-api/src/domain/errors"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DispatchJob is the database model for dispatch jobs.
type DispatchJob struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"`
	ResidentID    int       `gorm:"column:resident_id;index"`
	CondominiumID int       `gorm:"column:condominium_id;index"`
	Phone         string    `gorm:"column:phone;type:varchar(20)"`
	ContextCount  int       `gorm:"column:context_count"`
	Status        string    `gorm:"column:status;index"`
	Attempts      int       `gorm:"column:attempts;default:0"`
	ErrorMessage  string    `gorm:"column:error_message;type:text"`
	ResponseData  string    `gorm:"column:response_data;type:text"`
	BatchID       string    `gorm:"column:batch_id;index"`
	TriggeredBy   string    `gorm:"column:triggered_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime:mili"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:mili"`
}

func (DispatchJob) TableName() string {
	return "dispatch_jobs"
}

var ColumnsDispatchJobMapping = map[string]string{
	"id":            "id",
	"residentID":    "resident_id",
	"condominiumID": "condominium_id",
	"phone":         "phone",
	"contextCount":  "context_count",
	"status":        "status",
	"attempts":      "attempts",
	"errorMessage":  "error_message",
	"responseData":  "response_data",
	"batchID":       "batch_id",
	"triggeredBy":   "triggered_by",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

type JobRepository struct {
	DB     *gorm.DB
	Logger *logger.Logger
}

func NewJobRepository(db *gorm.DB, loggerInstance *logger.Logger) domainDispatch.JobRepository {
	return &JobRepository{DB: db, Logger: loggerInstance}
}

// Create persists a set of jobs, assigning each a fresh id, and returns the
// assigned ids in input order.
func (r *JobRepository) Create(jobs []domainDispatch.Job) ([]string, error) {
	if len(jobs) == 0 {
		return []string{}, nil
	}

	records := make([]DispatchJob, len(jobs))
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, domainErrors.NewAppError(err, domainErrors.UnknownError)
		}
		ids[i] = id.String()
		j.ID = ids[i]
		records[i] = *jobFromDomainMapper(&j)
	}

	if err := r.DB.Create(&records).Error; err != nil {
		r.Logger.Error("Error creating dispatch jobs", zap.Error(err), zap.Int("count", len(jobs)))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}

	r.Logger.Info("Created dispatch jobs", zap.Int("count", len(jobs)), zap.String("batchID", jobs[0].BatchID))
	return ids, nil
}

func (r *JobRepository) GetByID(id string) (*domainDispatch.Job, error) {
	var job DispatchJob
	err := r.DB.Where("id = ?", id).First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			r.Logger.Warn("Dispatch job not found", zap.String("id", id))
			return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
		}
		r.Logger.Error("Error getting dispatch job", zap.Error(err), zap.String("id", id))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return job.toDomainMapper(), nil
}

func (r *JobRepository) GetByIDs(ids []string) ([]domainDispatch.Job, error) {
	var jobs []DispatchJob
	if err := r.DB.Where("id IN (?)", ids).Find(&jobs).Error; err != nil {
		r.Logger.Error("Error getting dispatch jobs by ids", zap.Error(err), zap.Int("count", len(ids)))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return jobArrayToDomainMapper(jobs), nil
}

func (r *JobRepository) GetByBatchID(batchID string) ([]domainDispatch.Job, error) {
	var jobs []DispatchJob
	if err := r.DB.Where("batch_id = ?", batchID).Order("created_at ASC").Find(&jobs).Error; err != nil {
		r.Logger.Error("Error getting batch jobs", zap.Error(err), zap.String("batchID", batchID))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return jobArrayToDomainMapper(jobs), nil
}

// Transition applies a compare-and-swap status change: the UPDATE is
// conditioned on the job still holding the expected `from` status, so a
// concurrent pass that already moved the job leaves RowsAffected at zero and
// the caller skips it. The pending->sending edge additionally increments the
// attempt counter in the same statement.
func (r *JobRepository) Transition(id string, from, to domainDispatch.JobStatus, fields map[string]interface{}) (*domainDispatch.Job, bool, error) {
	updateData := map[string]interface{}{
		"status": string(to),
	}
	for k, v := range fields {
		if column, ok := ColumnsDispatchJobMapping[k]; ok {
			updateData[column] = v
		} else {
			updateData[k] = v
		}
	}
	if from == domainDispatch.StatusPending && to == domainDispatch.StatusSending {
		updateData["attempts"] = gorm.Expr("attempts + 1")
	}

	tx := r.DB.Model(&DispatchJob{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updateData)
	if tx.Error != nil {
		r.Logger.Error("Error transitioning dispatch job",
			zap.Error(tx.Error),
			zap.String("id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return nil, false, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	if tx.RowsAffected == 0 {
		r.Logger.Warn("Dispatch job transition skipped, status moved by another pass",
			zap.String("id", id),
			zap.String("expected", string(from)),
			zap.String("to", string(to)))
		return nil, false, nil
	}

	var job DispatchJob
	if err := r.DB.Where("id = ?", id).First(&job).Error; err != nil {
		r.Logger.Error("Error reading job after transition", zap.Error(err), zap.String("id", id))
		return nil, true, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return job.toDomainMapper(), true, nil
}

// SelectForProcessing returns up to limit pending jobs, newest first.
func (r *JobRepository) SelectForProcessing(limit int) ([]domainDispatch.Job, error) {
	if limit <= 0 {
		limit = 25
	}
	var jobs []DispatchJob
	if err := r.DB.Where("status = ? AND attempts < ?", string(domainDispatch.StatusPending), domainDispatch.MaxAttempts).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		r.Logger.Error("Error selecting jobs for processing", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}
	return jobArrayToDomainMapper(jobs), nil
}

// ReleaseStuckSending recovers jobs wedged in `sending` by a crash mid-call.
// Jobs past the threshold with attempts left go back to pending; exhausted
// jobs go to error. The crashed attempt stays counted, which keeps retries
// bounded.
func (r *JobRepository) ReleaseStuckSending(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	retry := r.DB.Model(&DispatchJob{}).
		Where("status = ? AND updated_at <= ? AND attempts < ?",
			string(domainDispatch.StatusSending), cutoff, domainDispatch.MaxAttempts).
		Updates(map[string]interface{}{
			"status":        string(domainDispatch.StatusPending),
			"error_message": "send attempt timed out",
		})
	if retry.Error != nil {
		r.Logger.Error("Error releasing stuck sending jobs", zap.Error(retry.Error))
		return 0, domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}

	exhausted := r.DB.Model(&DispatchJob{}).
		Where("status = ? AND updated_at <= ? AND attempts >= ?",
			string(domainDispatch.StatusSending), cutoff, domainDispatch.MaxAttempts).
		Updates(map[string]interface{}{
			"status":        string(domainDispatch.StatusError),
			"error_message": "send attempt timed out",
		})
	if exhausted.Error != nil {
		r.Logger.Error("Error expiring stuck sending jobs", zap.Error(exhausted.Error))
		return int(retry.RowsAffected), domainErrors.NewAppErrorWithType(domainErrors.RepositoryError)
	}

	released := int(retry.RowsAffected + exhausted.RowsAffected)
	if released > 0 {
		r.Logger.Info("Released stuck sending jobs",
			zap.Int64("requeued", retry.RowsAffected),
			zap.Int64("expired", exhausted.RowsAffected))
	}
	return released, nil
}

// Mappers
func (j *DispatchJob) toDomainMapper() *domainDispatch.Job {
	return &domainDispatch.Job{
		ID:            j.ID,
		ResidentID:    j.ResidentID,
		CondominiumID: j.CondominiumID,
		Phone:         j.Phone,
		ContextCount:  j.ContextCount,
		Status:        domainDispatch.JobStatus(j.Status),
		Attempts:      j.Attempts,
		ErrorMessage:  j.ErrorMessage,
		ResponseData:  j.ResponseData,
		BatchID:       j.BatchID,
		TriggeredBy:   j.TriggeredBy,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func jobFromDomainMapper(j *domainDispatch.Job) *DispatchJob {
	return &DispatchJob{
		ID:            j.ID,
		ResidentID:    j.ResidentID,
		CondominiumID: j.CondominiumID,
		Phone:         j.Phone,
		ContextCount:  j.ContextCount,
		Status:        string(j.Status),
		Attempts:      j.Attempts,
		ErrorMessage:  j.ErrorMessage,
		ResponseData:  j.ResponseData,
		BatchID:       j.BatchID,
		TriggeredBy:   j.TriggeredBy,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func jobArrayToDomainMapper(jobs []DispatchJob) []domainDispatch.Job {
	out := make([]domainDispatch.Job, len(jobs))
	for i := range jobs {
		out[i] = *jobs[i].toDomainMapper()
	}
	return out
}
