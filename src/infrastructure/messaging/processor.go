package messaging

import (
	"errors"
	"fmt"
	"sync"
	"time"

	domainDispatch "condo-notify-api/src/domain/dispatch"
	domainErrors "condo-notify-api/src/domain/errors"
	domainGateway "condo-notify-api/src/domain/gateway"
	domainResident "condo-notify-api/src/domain/resident"
	"condo-notify-api/src/infrastructure/cache"
	"condo-notify-api/src/infrastructure/gateway"
	"condo-notify-api/src/infrastructure/guard"
	logger "condo-notify-api/src/infrastructure/logger"

	"go.uber.org/zap"
)

const (
	// selectLimit caps how many pending jobs one sweep pass picks up.
	selectLimit = 25

	// stuckSendingThreshold is how long a job may sit in `sending` before the
	// sweep treats the attempt as crashed and releases it.
	stuckSendingThreshold = 2 * time.Minute

	// maxStoredError caps persisted error strings.
	maxStoredError = 1500

	noActiveConfigMessage = "no active gateway configuration"
)

func isNotFound(err error) bool {
	var appErr *domainErrors.AppError
	return errors.As(err, &appErr) && appErr.Type == domainErrors.NotFound
}

// QueueProcessor pulls dispatch jobs, resolves per-condominium gateway
// credentials and drives each job through its state machine. It is safe under
// overlapping invocation (manual trigger plus scheduled sweep): every status
// transition is a compare-and-swap in the job store, so a job another pass
// already moved is skipped, never double-sent.
type QueueProcessor struct {
	jobRepository      domainDispatch.JobRepository
	configRepository   domainGateway.ConfigRepository
	residentRepository domainResident.Repository
	gatewayClient      domainGateway.Client
	configCache        *cache.TTLCache
	configSequencer    *guard.UpdateSequencer
	templates          *Templates
	Logger             *logger.Logger

	workerCount   int
	sweepInterval time.Duration
	jobQueue      chan []string
	wg            sync.WaitGroup
	shutdown      chan struct{}
	startOnce     sync.Once
	stopOnce      sync.Once
}

func NewQueueProcessor(
	jobRepository domainDispatch.JobRepository,
	configRepository domainGateway.ConfigRepository,
	residentRepository domainResident.Repository,
	gatewayClient domainGateway.Client,
	configCache *cache.TTLCache,
	configSequencer *guard.UpdateSequencer,
	templates *Templates,
	loggerInstance *logger.Logger,
	workerCount int,
	sweepInterval time.Duration,
) *QueueProcessor {
	if workerCount <= 0 {
		workerCount = 3
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &QueueProcessor{
		jobRepository:      jobRepository,
		configRepository:   configRepository,
		residentRepository: residentRepository,
		gatewayClient:      gatewayClient,
		configCache:        configCache,
		configSequencer:    configSequencer,
		templates:          templates,
		Logger:             loggerInstance,
		workerCount:        workerCount,
		sweepInterval:      sweepInterval,
		jobQueue:           make(chan []string, 100),
		shutdown:           make(chan struct{}),
	}
}

// Start launches the worker pool and the scheduled sweep.
func (p *QueueProcessor) Start() {
	p.startOnce.Do(func() {
		p.Logger.Info("Starting queue processor", zap.Int("workerCount", p.workerCount))
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
		go p.watchPendingJobs()
	})
}

func (p *QueueProcessor) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case ids := <-p.jobQueue:
			p.ProcessJobs(ids)
		case <-p.shutdown:
			p.Logger.Info("Shutting down queue processor worker", zap.Int("workerID", id))
			return
		}
	}
}

// watchPendingJobs periodically releases stuck sending jobs and sweeps
// pending jobs into the queue, independent of batch-builder triggers.
func (p *QueueProcessor) watchPendingJobs() {
	ticker := time.NewTicker(p.sweepInterval)
	defer ticker.Stop()

	p.Sweep()

	for {
		select {
		case <-ticker.C:
			p.Sweep()
		case <-p.shutdown:
			return
		}
	}
}

// Sweep runs one scheduled pass: recover stuck jobs, then process a slice of
// the pending backlog.
func (p *QueueProcessor) Sweep() int {
	if _, err := p.jobRepository.ReleaseStuckSending(stuckSendingThreshold); err != nil {
		p.Logger.Error("Error releasing stuck jobs during sweep", zap.Error(err))
	}

	jobs, err := p.jobRepository.SelectForProcessing(selectLimit)
	if err != nil {
		p.Logger.Error("Error selecting jobs during sweep", zap.Error(err))
		return 0
	}
	if len(jobs) == 0 {
		return 0
	}

	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return p.ProcessJobs(ids)
}

// EnqueueJobs hands job ids to the worker pool without blocking. A full queue
// is only logged: the scheduled sweep picks pending jobs up regardless.
func (p *QueueProcessor) EnqueueJobs(jobIDs []string) {
	select {
	case p.jobQueue <- jobIDs:
		p.Logger.Info("Jobs added to processing queue", zap.Int("count", len(jobIDs)))
	default:
		p.Logger.Warn("Job queue is full, relying on scheduled sweep", zap.Int("count", len(jobIDs)))
	}
}

// ProcessJobs processes the given jobs grouped by condominium so each group
// shares one resolved gateway config. Each job's outcome is independent: one
// failure never aborts its siblings. Returns the number of jobs that reached
// a gateway call or a terminal validation state in this pass.
func (p *QueueProcessor) ProcessJobs(jobIDs []string) int {
	jobs, err := p.jobRepository.GetByIDs(jobIDs)
	if err != nil {
		p.Logger.Error("Error loading jobs for processing", zap.Error(err))
		return 0
	}

	groups := make(map[int][]domainDispatch.Job)
	for _, j := range jobs {
		if j.Status != domainDispatch.StatusPending {
			// Terminal or in-flight elsewhere; selection races are expected.
			continue
		}
		groups[j.CondominiumID] = append(groups[j.CondominiumID], j)
	}

	processed := 0
	for condominiumID, group := range groups {
		cfg, err := p.resolveConfig(condominiumID)
		if err != nil {
			// Only a confirmed missing config is terminal. A storage failure
			// leaves the group pending for the next pass.
			if isNotFound(err) {
				p.failGroupWithoutConfig(group)
				processed += len(group)
			} else {
				p.Logger.Error("Skipping group, gateway config unavailable",
					zap.Error(err), zap.Int("condominiumID", condominiumID), zap.Int("jobs", len(group)))
			}
			continue
		}
		if cfg == nil || !cfg.Active {
			p.failGroupWithoutConfig(group)
			processed += len(group)
			continue
		}
		for i := range group {
			if p.processJob(&group[i], cfg) {
				processed++
			}
		}
	}
	return processed
}

// resolveConfig reads the condominium's gateway config through the cache.
func (p *QueueProcessor) resolveConfig(condominiumID int) (*domainGateway.Config, error) {
	value, err := p.configCache.GetOrLoad(domainGateway.ConfigCacheKey(condominiumID), cache.DefaultConfigTTL, func() (interface{}, error) {
		return p.configRepository.GetActiveByCondominium(condominiumID)
	})
	if err != nil {
		p.Logger.Warn("No active gateway config resolved", zap.Error(err), zap.Int("condominiumID", condominiumID))
		return nil, err
	}
	cfg, ok := value.(*domainGateway.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected cache value for condominium %d", condominiumID)
	}
	return cfg, nil
}

// failGroupWithoutConfig sends every job of a tenant group straight to error.
// No attempt is consumed: the jobs never reached the sending state.
func (p *QueueProcessor) failGroupWithoutConfig(group []domainDispatch.Job) {
	for _, j := range group {
		_, _, err := p.jobRepository.Transition(j.ID, domainDispatch.StatusPending, domainDispatch.StatusError,
			map[string]interface{}{"errorMessage": noActiveConfigMessage})
		if err != nil {
			p.Logger.Error("Error failing job without gateway config", zap.Error(err), zap.String("jobID", j.ID))
		}
	}
}

// processJob drives a single job: claim it, validate, render, send, settle.
// Reports whether this pass owned the job.
func (p *QueueProcessor) processJob(job *domainDispatch.Job, cfg *domainGateway.Config) bool {
	claimed, ok, err := p.jobRepository.Transition(job.ID, domainDispatch.StatusPending, domainDispatch.StatusSending, nil)
	if err != nil {
		// The claim itself failed; nothing was sent, so skipping is safe.
		p.Logger.Error("Error claiming job", zap.Error(err), zap.String("jobID", job.ID))
		return false
	}
	if !ok {
		return false
	}

	if claimed.ContextCount <= 0 || claimed.Phone == "" {
		p.settle(claimed.ID, domainDispatch.StatusError, map[string]interface{}{
			"errorMessage": "precondition failed: missing phone or zero context count",
		})
		return true
	}

	residentName := p.lookupResidentName(claimed.ResidentID)
	message := Render(p.templates.PackageNotification, residentName, claimed.ContextCount)

	response, sendErr := p.gatewayClient.SendText(cfg, claimed.Phone, message)
	if sendErr != nil {
		errMsg := gateway.Truncate(sendErr.Error(), maxStoredError)
		next := domainDispatch.StatusPending
		if claimed.Attempts >= domainDispatch.MaxAttempts {
			next = domainDispatch.StatusError
		}
		p.Logger.Warn("Gateway send failed",
			zap.String("jobID", claimed.ID),
			zap.Int("attempts", claimed.Attempts),
			zap.String("next", string(next)))
		p.settle(claimed.ID, next, map[string]interface{}{"errorMessage": errMsg})
		return true
	}

	p.settle(claimed.ID, domainDispatch.StatusSent, map[string]interface{}{
		"errorMessage": "",
		"responseData": gateway.Truncate(response, maxStoredError),
	})
	p.recordSend(cfg.CondominiumID)

	p.Logger.Info("Dispatch job sent",
		zap.String("jobID", claimed.ID),
		zap.Int("residentID", claimed.ResidentID),
		zap.Int("attempts", claimed.Attempts))
	return true
}

// settle moves a job out of `sending`. A failed status write is logged and
// swallowed: the gateway call already happened (or terminally failed) and the
// loop must continue. The job may be left stuck in `sending`, which the sweep
// recovers, but this invocation never issues a second outbound call.
func (p *QueueProcessor) settle(jobID string, to domainDispatch.JobStatus, fields map[string]interface{}) {
	_, applied, err := p.jobRepository.Transition(jobID, domainDispatch.StatusSending, to, fields)
	if err != nil {
		p.Logger.Error("Error settling job status", zap.Error(err), zap.String("jobID", jobID), zap.String("to", string(to)))
		return
	}
	if !applied {
		p.Logger.Warn("Job settle skipped, status moved elsewhere", zap.String("jobID", jobID), zap.String("to", string(to)))
	}
}

// recordSend bumps the tenant's sent counter and last-sync stamp, serialized
// per condominium so concurrent workers cannot lose updates, then drops the
// cache entry so the next read reflects the write.
func (p *QueueProcessor) recordSend(condominiumID int) {
	key := fmt.Sprintf("%d", condominiumID)
	err := p.configSequencer.Enqueue(key, func() error {
		return p.configRepository.RecordSend(condominiumID, time.Now())
	})
	if err != nil {
		p.Logger.Error("Error recording send on gateway config", zap.Error(err), zap.Int("condominiumID", condominiumID))
		return
	}
	p.configCache.Invalidate(domainGateway.ConfigCacheKey(condominiumID))
}

func (p *QueueProcessor) lookupResidentName(residentID int) string {
	res, err := p.residentRepository.GetByID(residentID)
	if err != nil {
		p.Logger.Warn("Resident lookup failed for message rendering", zap.Error(err), zap.Int("residentID", residentID))
		return "resident"
	}
	return res.Name
}

// Shutdown stops the sweep and drains the worker pool.
func (p *QueueProcessor) Shutdown() {
	p.stopOnce.Do(func() {
		p.Logger.Info("Shutting down queue processor")
		close(p.shutdown)
		p.wg.Wait()
		p.Logger.Info("Queue processor shutdown complete")
	})
}
