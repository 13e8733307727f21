package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/inaciosamuel465/estateflow/internal/state"
	"github.com/inaciosamuel465/estateflow/internal/storage"
	"github.com/inaciosamuel465/estateflow/internal/tasks"
)

// IAsynqClient abstracts the asynq client for testing.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// UploadHandler issues pre-signed upload URLs for property photos and hands
// the uploaded object to the image worker.
type UploadHandler struct {
	controller *state.Controller
	storage    storage.IS3Storage
	taskClient IAsynqClient
}

func NewUploadHandler(controller *state.Controller, storage storage.IS3Storage, taskClient IAsynqClient) *UploadHandler {
	return &UploadHandler{controller: controller, storage: storage, taskClient: taskClient}
}

type presignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// PresignUpload handles POST /v1/admin/properties/:id/images/presign.
func (h *UploadHandler) PresignUpload(c *gin.Context) {
	propertyID := c.Param("id")
	if _, ok := h.controller.Store().PropertyByID(propertyID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, key, err := h.storage.GeneratePresignedPutURL(c.Request.Context(), propertyID, req.Filename, req.ContentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to presign upload"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upload_url": url, "key": key})
}

type completeUploadRequest struct {
	Key string `json:"key" binding:"required"`
}

// CompleteUpload handles POST /v1/admin/properties/:id/images/complete:
// the client finished its PUT, so enqueue normalization.
func (h *UploadHandler) CompleteUpload(c *gin.Context) {
	propertyID := c.Param("id")
	if _, ok := h.controller.Store().PropertyByID(propertyID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	var req completeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := tasks.NewImageProcessTask(req.Key, propertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build image task"})
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue image processing"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "processing"})
}
