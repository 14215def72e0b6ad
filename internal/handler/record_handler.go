package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadsense/telemetry-hub/internal/models"
	"github.com/roadsense/telemetry-hub/internal/repository"
	"github.com/roadsense/telemetry-hub/internal/service"
	"github.com/roadsense/telemetry-hub/pkg/response"
)

// RecordHandler handles HTTP requests for processed agent data.
type RecordHandler struct {
	recordService *service.RecordService
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(recordService *service.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
	}
}

// CreateRecords handles POST /processed_agent_data/. The batch is accepted
// or rejected as a whole; a plain OK body signals full success.
func (h *RecordHandler) CreateRecords(c *gin.Context) {
	var batch []models.ProcessedAgentData
	if err := c.ShouldBindJSON(&batch); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.recordService.CreateRecords(c.Request.Context(), batch); err != nil {
		if errors.Is(err, service.ErrInvalidRecord) {
			response.BadRequest(c, err.Error())
			return
		}
		log.Printf("store error on batch insert: %v", err)
		response.InternalError(c, "failed to store batch")
		return
	}

	c.String(http.StatusOK, "OK")
}

// GetRecord handles GET /processed_agent_data/:id.
func (h *RecordHandler) GetRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	record, err := h.recordService.GetRecord(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "record not found")
			return
		}
		log.Printf("store error on get: %v", err)
		response.InternalError(c, "failed to get record")
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListRecords handles GET /processed_agent_data/.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	records, err := h.recordService.ListRecords(c.Request.Context())
	if err != nil {
		log.Printf("store error on list: %v", err)
		response.InternalError(c, "failed to list records")
		return
	}

	c.JSON(http.StatusOK, records)
}

// UpdateRecord handles PUT /processed_agent_data/:id.
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	var item models.ProcessedAgentData
	if err := c.ShouldBindJSON(&item); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	updated, err := h.recordService.UpdateRecord(c.Request.Context(), id, item)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRecord):
			response.BadRequest(c, err.Error())
		case errors.Is(err, repository.ErrNotFound):
			response.NotFound(c, "record not found")
		default:
			log.Printf("store error on update: %v", err)
			response.InternalError(c, "failed to update record")
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteRecord handles DELETE /processed_agent_data/:id.
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	id, ok := h.recordID(c)
	if !ok {
		return
	}

	if err := h.recordService.DeleteRecord(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.NotFound(c, "record not found")
			return
		}
		log.Printf("store error on delete: %v", err)
		response.InternalError(c, "failed to delete record")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "record deleted successfully"})
}

func (h *RecordHandler) recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid record id")
		return 0, false
	}
	return id, true
}
