package batch

import (
	"fmt"
	"testing"
	"time"

	domainDispatch "condo-notify-api/src/domain/dispatch"
	domainErrors "condo-notify-api/src/domain/errors"
	domainResident "condo-notify-api/src/domain/resident"
	"condo-notify-api/src/infrastructure/guard"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

type jobRepositoryMock struct {
	CreateFn       func(jobs []domainDispatch.Job) ([]string, error)
	GetByIDsFn     func(ids []string) ([]domainDispatch.Job, error)
	GetByBatchIDFn func(batchID string) ([]domainDispatch.Job, error)
}

func (m *jobRepositoryMock) Create(jobs []domainDispatch.Job) ([]string, error) {
	return m.CreateFn(jobs)
}

func (m *jobRepositoryMock) GetByID(id string) (*domainDispatch.Job, error) {
	return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
}

func (m *jobRepositoryMock) GetByIDs(ids []string) ([]domainDispatch.Job, error) {
	return m.GetByIDsFn(ids)
}

func (m *jobRepositoryMock) GetByBatchID(batchID string) ([]domainDispatch.Job, error) {
	return m.GetByBatchIDFn(batchID)
}

func (m *jobRepositoryMock) Transition(id string, from, to domainDispatch.JobStatus, fields map[string]interface{}) (*domainDispatch.Job, bool, error) {
	return nil, false, nil
}

func (m *jobRepositoryMock) SelectForProcessing(limit int) ([]domainDispatch.Job, error) {
	return nil, nil
}

func (m *jobRepositoryMock) ReleaseStuckSending(olderThan time.Duration) (int, error) {
	return 0, nil
}

type residentRepositoryMock struct {
	GetByIDFn              func(id int) (*domainResident.Resident, error)
	CountPendingPackagesFn func(residentID int) (int, error)
}

func (m *residentRepositoryMock) GetByID(id int) (*domainResident.Resident, error) {
	return m.GetByIDFn(id)
}

func (m *residentRepositoryMock) GetByPhone(phone string) (*domainResident.Resident, error) {
	return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
}

func (m *residentRepositoryMock) CountPendingPackages(residentID int) (int, error) {
	return m.CountPendingPackagesFn(residentID)
}

func (m *residentRepositoryMock) UpdateConsent(residentID int, state domainResident.ConsentState) error {
	return nil
}

type enqueuerMock struct {
	enqueued [][]string
}

func (m *enqueuerMock) EnqueueJobs(jobIDs []string) {
	m.enqueued = append(m.enqueued, jobIDs)
}

func residentFixture(id int) *domainResident.Resident {
	return &domainResident.Resident{
		ID:            id,
		CondominiumID: 10,
		Name:          fmt.Sprintf("Resident %d", id),
		Phone:         "11999998888",
		Consent:       domainResident.ConsentAccepted,
	}
}

func TestBuild_ExcludesIneligibleResidents(t *testing.T) {
	// Resident 2 has nothing waiting, resident 3 declined; 1 and 4 go out.
	residentRepo := &residentRepositoryMock{
		GetByIDFn: func(id int) (*domainResident.Resident, error) {
			res := residentFixture(id)
			if id == 3 {
				res.Consent = domainResident.ConsentDeclined
			}
			return res, nil
		},
		CountPendingPackagesFn: func(residentID int) (int, error) {
			if residentID == 2 {
				return 0, nil
			}
			return 2, nil
		},
	}

	var created []domainDispatch.Job
	jobRepo := &jobRepositoryMock{
		CreateFn: func(jobs []domainDispatch.Job) ([]string, error) {
			created = jobs
			ids := make([]string, len(jobs))
			for i := range jobs {
				ids[i] = fmt.Sprintf("id-%d", i)
			}
			return ids, nil
		},
	}
	enqueuer := &enqueuerMock{}

	useCase := NewBatchUseCase(jobRepo, residentRepo, enqueuer, guard.NewOperationLock(0), setupLogger(t))
	result, err := useCase.Build(10, []int{1, 2, 3, 4}, "operator:7")

	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Contains(t, result.BatchID, "batch_")
	require.Len(t, created, 2)
	for _, j := range created {
		assert.Equal(t, domainDispatch.StatusPending, j.Status)
		assert.Equal(t, 0, j.Attempts)
		assert.Equal(t, "+5511999998888", j.Phone)
		assert.Equal(t, result.BatchID, j.BatchID)
		assert.Equal(t, "operator:7", j.TriggeredBy)
	}
	require.Len(t, enqueuer.enqueued, 1)
	assert.Len(t, enqueuer.enqueued[0], 2)
}

func TestBuild_DeduplicatesResidentIDs(t *testing.T) {
	residentRepo := &residentRepositoryMock{
		GetByIDFn: func(id int) (*domainResident.Resident, error) {
			return residentFixture(id), nil
		},
		CountPendingPackagesFn: func(residentID int) (int, error) {
			return 1, nil
		},
	}
	jobRepo := &jobRepositoryMock{
		CreateFn: func(jobs []domainDispatch.Job) ([]string, error) {
			ids := make([]string, len(jobs))
			for i := range jobs {
				ids[i] = fmt.Sprintf("id-%d", i)
			}
			return ids, nil
		},
	}

	useCase := NewBatchUseCase(jobRepo, residentRepo, &enqueuerMock{}, guard.NewOperationLock(0), setupLogger(t))
	result, err := useCase.Build(10, []int{1, 1, 1, 2}, "system")

	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedCount)
}

func TestBuild_NoEligibleRecipientsIsUnprocessable(t *testing.T) {
	residentRepo := &residentRepositoryMock{
		GetByIDFn: func(id int) (*domainResident.Resident, error) {
			return residentFixture(id), nil
		},
		CountPendingPackagesFn: func(residentID int) (int, error) {
			return 0, nil
		},
	}
	jobRepo := &jobRepositoryMock{
		CreateFn: func(jobs []domainDispatch.Job) ([]string, error) {
			t.Fatal("Create must not be called when no resident is eligible")
			return nil, nil
		},
	}

	useCase := NewBatchUseCase(jobRepo, residentRepo, &enqueuerMock{}, guard.NewOperationLock(0), setupLogger(t))
	_, err := useCase.Build(10, []int{1, 2}, "system")

	require.Error(t, err)
	var appErr *domainErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainErrors.UnprocessableError, appErr.Type)
}

func TestBuild_ConcurrentTriggerForSameCondominiumConflicts(t *testing.T) {
	residentRepo := &residentRepositoryMock{
		GetByIDFn: func(id int) (*domainResident.Resident, error) {
			return residentFixture(id), nil
		},
		CountPendingPackagesFn: func(residentID int) (int, error) {
			return 1, nil
		},
	}
	jobRepo := &jobRepositoryMock{
		CreateFn: func(jobs []domainDispatch.Job) ([]string, error) {
			return []string{"id-0"}, nil
		},
	}

	lock := guard.NewOperationLock(0)
	require.True(t, lock.Acquire("dispatch:10"))

	useCase := NewBatchUseCase(jobRepo, residentRepo, &enqueuerMock{}, lock, setupLogger(t))
	_, err := useCase.Build(10, []int{1}, "system")

	require.Error(t, err)
	var appErr *domainErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainErrors.ConflictError, appErr.Type)

	// A different condominium is unaffected.
	result, err := useCase.Build(11, []int{1}, "system")
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)
}

func TestBuild_UnresolvableResidentIsSkipped(t *testing.T) {
	residentRepo := &residentRepositoryMock{
		GetByIDFn: func(id int) (*domainResident.Resident, error) {
			if id == 1 {
				return nil, domainErrors.NewAppErrorWithType(domainErrors.NotFound)
			}
			return residentFixture(id), nil
		},
		CountPendingPackagesFn: func(residentID int) (int, error) {
			return 1, nil
		},
	}
	jobRepo := &jobRepositoryMock{
		CreateFn: func(jobs []domainDispatch.Job) ([]string, error) {
			return []string{"id-0"}, nil
		},
	}

	useCase := NewBatchUseCase(jobRepo, residentRepo, &enqueuerMock{}, guard.NewOperationLock(0), setupLogger(t))
	result, err := useCase.Build(10, []int{1, 2}, "system")

	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)
}

func TestGetBatchProgress_CountsByStatus(t *testing.T) {
	jobRepo := &jobRepositoryMock{
		GetByBatchIDFn: func(batchID string) ([]domainDispatch.Job, error) {
			return []domainDispatch.Job{
				{ID: "a", Status: domainDispatch.StatusSent},
				{ID: "b", Status: domainDispatch.StatusSent},
				{ID: "c", Status: domainDispatch.StatusPending},
				{ID: "d", Status: domainDispatch.StatusSending},
				{ID: "e", Status: domainDispatch.StatusError, ErrorMessage: "gateway status 500"},
			}, nil
		},
	}

	useCase := NewBatchUseCase(jobRepo, &residentRepositoryMock{}, &enqueuerMock{}, guard.NewOperationLock(0), setupLogger(t))
	progress, err := useCase.GetBatchProgress("batch_123")

	require.NoError(t, err)
	assert.Equal(t, 5, progress.Total)
	assert.Equal(t, 1, progress.Pending)
	assert.Equal(t, 1, progress.Sending)
	assert.Equal(t, 2, progress.Sent)
	assert.Equal(t, 1, progress.Errored)
	assert.Len(t, progress.Items, 5)
}

func TestGetJobStatuses_MapsFields(t *testing.T) {
	jobRepo := &jobRepositoryMock{
		GetByIDsFn: func(ids []string) ([]domainDispatch.Job, error) {
			return []domainDispatch.Job{
				{ID: "a", ResidentID: 5, Status: domainDispatch.StatusError, Attempts: 3, ErrorMessage: "gateway status 500"},
			}, nil
		},
	}

	useCase := NewBatchUseCase(jobRepo, &residentRepositoryMock{}, &enqueuerMock{}, guard.NewOperationLock(0), setupLogger(t))
	items, err := useCase.GetJobStatuses([]string{"a"})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, 5, items[0].ResidentID)
	assert.Equal(t, "error", items[0].Status)
	assert.Equal(t, 3, items[0].Attempts)
	assert.Equal(t, "gateway status 500", items[0].ErrorMessage)
}
