package batch

import (
	"errors"
	"fmt"
	"time"

	domainDispatch "condo-notify-api/src/domain/dispatch"
	domainErrors "condo-notify-api/src/domain/errors"
	domainResident "condo-notify-api/src/domain/resident"
	"condo-notify-api/src/infrastructure/guard"
	logger "condo-notify-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

// BuildResult is returned to the trigger caller so it can poll progress.
type BuildResult struct {
	BatchID      string
	JobIDs       []string
	CreatedCount int
}

// JobStatusItem is one row of a status poll.
type JobStatusItem struct {
	ID           string
	ResidentID   int
	Status       string
	Attempts     int
	ErrorMessage string
}

// BatchProgress summarizes a whole batch for the UI progress view.
type BatchProgress struct {
	BatchID string
	Total   int
	Pending int
	Sending int
	Sent    int
	Errored int
	Items   []JobStatusItem
}

type IBatchUseCase interface {
	Build(condominiumID int, residentIDs []int, requestedBy string) (*BuildResult, error)
	GetJobStatuses(jobIDs []string) ([]JobStatusItem, error)
	GetBatchProgress(batchID string) (*BatchProgress, error)
}

// BatchUseCase turns a recipient selection into a set of eligible,
// deduplicated dispatch jobs and hands them to the queue processor.
type BatchUseCase struct {
	jobRepository      domainDispatch.JobRepository
	residentRepository domainResident.Repository
	enqueuer           domainDispatch.Enqueuer
	operationLock      *guard.OperationLock
	Logger             *logger.Logger
}

func NewBatchUseCase(
	jobRepository domainDispatch.JobRepository,
	residentRepository domainResident.Repository,
	enqueuer domainDispatch.Enqueuer,
	operationLock *guard.OperationLock,
	loggerInstance *logger.Logger,
) IBatchUseCase {
	return &BatchUseCase{
		jobRepository:      jobRepository,
		residentRepository: residentRepository,
		enqueuer:           enqueuer,
		operationLock:      operationLock,
		Logger:             loggerInstance,
	}
}

// Build resolves each requested resident to a phone number and pending
// package count, silently excluding residents with nothing to announce, an
// unusable phone or a declined consent. The resulting jobs share one batch id
// and start in pending with zero attempts. Processing is triggered
// fire-and-forget; the scheduled sweep covers a lost trigger.
func (u *BatchUseCase) Build(condominiumID int, residentIDs []int, requestedBy string) (*BuildResult, error) {
	opID := fmt.Sprintf("dispatch:%d", condominiumID)
	if !u.operationLock.Acquire(opID) {
		u.Logger.Warn("Duplicate batch trigger suppressed", zap.Int("condominiumID", condominiumID))
		return nil, domainErrors.NewAppError(errors.New("a dispatch for this condominium is already in flight"), domainErrors.ConflictError)
	}
	defer u.operationLock.Release(opID)

	batchID := fmt.Sprintf("batch_%d", time.Now().UnixMilli())

	seen := make(map[int]bool, len(residentIDs))
	var jobs []domainDispatch.Job
	for _, residentID := range residentIDs {
		if seen[residentID] {
			continue
		}
		seen[residentID] = true

		res, err := u.residentRepository.GetByID(residentID)
		if err != nil {
			u.Logger.Warn("Skipping unresolvable resident", zap.Error(err), zap.Int("residentID", residentID))
			continue
		}
		if res.Consent == domainResident.ConsentDeclined {
			u.Logger.Info("Skipping resident with declined consent", zap.Int("residentID", residentID))
			continue
		}

		count, err := u.residentRepository.CountPendingPackages(residentID)
		if err != nil {
			u.Logger.Warn("Skipping resident, package count unavailable", zap.Error(err), zap.Int("residentID", residentID))
			continue
		}
		if count == 0 {
			continue
		}

		phone, ok := domainDispatch.NormalizePhone(res.Phone)
		if !ok {
			u.Logger.Warn("Skipping resident with unusable phone", zap.Int("residentID", residentID))
			continue
		}

		jobs = append(jobs, domainDispatch.Job{
			ResidentID:    residentID,
			CondominiumID: condominiumID,
			Phone:         phone,
			ContextCount:  count,
			Status:        domainDispatch.StatusPending,
			Attempts:      0,
			BatchID:       batchID,
			TriggeredBy:   requestedBy,
		})
	}

	if len(jobs) == 0 {
		u.Logger.Warn("No eligible recipients in batch request",
			zap.Int("condominiumID", condominiumID),
			zap.Int("requested", len(residentIDs)))
		return nil, domainErrors.NewAppError(errors.New("no eligible recipients"), domainErrors.UnprocessableError)
	}

	ids, err := u.jobRepository.Create(jobs)
	if err != nil {
		return nil, err
	}

	u.Logger.Info("Batch created",
		zap.String("batchID", batchID),
		zap.Int("createdCount", len(ids)),
		zap.String("requestedBy", requestedBy))

	// Fire-and-forget: a full queue only delays processing until the sweep.
	u.enqueuer.EnqueueJobs(ids)

	return &BuildResult{
		BatchID:      batchID,
		JobIDs:       ids,
		CreatedCount: len(ids),
	}, nil
}

func (u *BatchUseCase) GetJobStatuses(jobIDs []string) ([]JobStatusItem, error) {
	jobs, err := u.jobRepository.GetByIDs(jobIDs)
	if err != nil {
		return nil, err
	}
	items := make([]JobStatusItem, len(jobs))
	for i, j := range jobs {
		items[i] = jobStatusItem(j)
	}
	return items, nil
}

func (u *BatchUseCase) GetBatchProgress(batchID string) (*BatchProgress, error) {
	jobs, err := u.jobRepository.GetByBatchID(batchID)
	if err != nil {
		return nil, err
	}

	progress := &BatchProgress{BatchID: batchID, Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case domainDispatch.StatusPending:
			progress.Pending++
		case domainDispatch.StatusSending:
			progress.Sending++
		case domainDispatch.StatusSent:
			progress.Sent++
		case domainDispatch.StatusError:
			progress.Errored++
		}
		progress.Items = append(progress.Items, jobStatusItem(j))
	}
	return progress, nil
}

func jobStatusItem(j domainDispatch.Job) JobStatusItem {
	return JobStatusItem{
		ID:           j.ID,
		ResidentID:   j.ResidentID,
		Status:       string(j.Status),
		Attempts:     j.Attempts,
		ErrorMessage: j.ErrorMessage,
	}
}
