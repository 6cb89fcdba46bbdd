// internal/api/handlers/dataset_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/perfdash/backend-go/internal/ingest"
	"github.com/perfdash/backend-go/internal/service"
	"github.com/perfdash/backend-go/internal/storage"
)

type DatasetHandler struct {
	service *service.AnalyticsService
	archive storage.ObjectStorage
}

// NewDatasetHandler wires the upload surface. archive may be nil; uploads
// then skip archival.
func NewDatasetHandler(svc *service.AnalyticsService, archive storage.ObjectStorage) *DatasetHandler {
	return &DatasetHandler{service: svc, archive: archive}
}

// Upload replaces the whole dataset from a multipart CSV file.
func (h *DatasetHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field", "details": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload", "details": err.Error()})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload", "details": err.Error()})
		return
	}

	records, err := ingest.ParseCSV(bytes.NewReader(raw))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to parse CSV", "details": err.Error()})
		return
	}

	info := h.service.ReplaceDataset(c.Request.Context(), records)

	if h.archive != nil {
		key := fmt.Sprintf("datasets/%s_%s", time.Now().UTC().Format("20060102T150405Z"), fileHeader.Filename)
		if err := h.archive.UploadObject(c.Request.Context(), key, raw); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dataset archive failed")
		}
	}

	c.JSON(http.StatusOK, info)
}

// Clear empties the dataset.
func (h *DatasetHandler) Clear(c *gin.Context) {
	h.service.ClearDataset(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// Info returns the dataset size, content hash and detected month range.
func (h *DatasetHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.DatasetInfo(c.Request.Context()))
}
