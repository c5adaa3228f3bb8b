package dispatch

import (
	"errors"
	"net/http"
	"strconv"

	"condo-notify-api/src/application/usecases/batch"
	"condo-notify-api/src/domain/common"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Sweeper triggers one manual processing pass over the pending backlog.
type Sweeper interface {
	Sweep() int
}

type IDispatchController interface {
	CreateBatch(ctx *gin.Context)
	GetStatuses(ctx *gin.Context)
	GetBatchProgress(ctx *gin.Context)
	TriggerProcess(ctx *gin.Context)
}

type DispatchController struct {
	commonService common.CommonService
	batchUseCase  batch.IBatchUseCase
	sweeper       Sweeper
	Logger        *logger.Logger
}

func NewDispatchController(
	commonService common.CommonService,
	batchUseCase batch.IBatchUseCase,
	sweeper Sweeper,
	loggerInstance *logger.Logger,
) IDispatchController {
	return &DispatchController{
		commonService: commonService,
		batchUseCase:  batchUseCase,
		sweeper:       sweeper,
		Logger:        loggerInstance,
	}
}

func (c *DispatchController) CreateBatch(ctx *gin.Context) {
	var request BatchRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Couldn't process batch request - invalid body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	requestedBy := "system"
	if operatorID, ok := ctx.Get("operatorID"); ok {
		requestedBy = "operator:" + strconv.Itoa(operatorID.(int))
	}

	result, err := c.batchUseCase.Build(request.CondominiumID, request.ResidentIDs, requestedBy)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	c.Logger.Info("Batch queued for dispatch",
		zap.String("batchID", result.BatchID),
		zap.Int("createdCount", result.CreatedCount))

	ctx.JSON(http.StatusAccepted, BatchResponse{
		BatchID:      result.BatchID,
		LogIDs:       result.JobIDs,
		CreatedCount: result.CreatedCount,
	})
}

func (c *DispatchController) GetStatuses(ctx *gin.Context) {
	var request StatusRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Invalid status poll request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	items, err := c.batchUseCase.GetJobStatuses(request.LogIDs)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	response := StatusResponse{Items: make([]StatusItem, len(items))}
	for i, item := range items {
		response.Items[i] = statusItem(item)
	}
	ctx.JSON(http.StatusOK, response)
}

func (c *DispatchController) GetBatchProgress(ctx *gin.Context) {
	var request BatchProgressRequest
	if err := ctx.ShouldBindUri(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID"})
		return
	}

	progress, err := c.batchUseCase.GetBatchProgress(request.BatchID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	response := BatchProgressResponse{
		BatchID: progress.BatchID,
		Total:   progress.Total,
		Pending: progress.Pending,
		Sending: progress.Sending,
		Sent:    progress.Sent,
		Errored: progress.Errored,
		Items:   make([]StatusItem, len(progress.Items)),
	}
	for i, item := range progress.Items {
		response.Items[i] = statusItem(item)
	}
	ctx.JSON(http.StatusOK, response)
}

// TriggerProcess runs one manual sweep pass, for admins chasing a backlog.
func (c *DispatchController) TriggerProcess(ctx *gin.Context) {
	processed := c.sweeper.Sweep()
	c.Logger.Info("Manual processing pass completed", zap.Int("processedCount", processed))
	ctx.JSON(http.StatusOK, ProcessResponse{ProcessedCount: processed})
}

func statusItem(item batch.JobStatusItem) StatusItem {
	return StatusItem{
		ID:           item.ID,
		ResidentID:   item.ResidentID,
		Status:       item.Status,
		Attempts:     item.Attempts,
		ErrorMessage: item.ErrorMessage,
	}
}

