package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fuelops/backend/internal/application/fuelreport"
	"github.com/fuelops/backend/internal/domain/fuel"
	"github.com/fuelops/backend/internal/interfaces/http/dto"
	"github.com/fuelops/backend/internal/interfaces/http/middleware"
)

const maxCalibrationFileSize = 2 << 20 // 2MB

// FuelReportHandler handles fuel report API endpoints
type FuelReportHandler struct {
	BaseHandler
	service *fuelreport.Service
}

// NewFuelReportHandler creates a new FuelReportHandler
func NewFuelReportHandler(service *fuelreport.Service) *FuelReportHandler {
	return &FuelReportHandler{
		service: service,
	}
}

// ReportTextRequest carries pasted report text. Empty text is allowed and
// yields an empty result.
type ReportTextRequest struct {
	Text string `json:"text" binding:"max=1000000"`
}

// SubmitRequest selects which usage estimate is stored
type SubmitRequest struct {
	FuelUsageSource string `json:"fuel_usage_source" binding:"omitempty,oneof=flowmeter report"`
}

// WorkspaceURI identifies a workspace in the path
type WorkspaceURI struct {
	ID string `uri:"id" binding:"required,max=128"`
}

// UnitURI identifies a unit inside a workspace
type UnitURI struct {
	ID   string `uri:"id" binding:"required,max=128"`
	Unit string `uri:"unit" binding:"required,max=32"`
}

func (h *FuelReportHandler) bindWorkspace(c *gin.Context) (string, bool) {
	var uri WorkspaceURI
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleValidationError(c, err)
		return "", false
	}
	return uri.ID, true
}

// Parse parses and reconciles text without touching any workspace
// POST /fuel-reports/parse
func (h *FuelReportHandler) Parse(c *gin.Context) {
	var req ReportTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ws, err := h.service.Analyze(c.Request.Context(), req.Text, fuel.ReportHeader{})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// Process replaces the workspace with the analysis of the posted text
// POST /fuel-reports/workspaces/:id/process
func (h *FuelReportHandler) Process(c *gin.Context) {
	id, ok := h.bindWorkspace(c)
	if !ok {
		return
	}

	var req ReportTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ws, err := h.service.Process(c.Request.Context(), id, req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// Get returns the current workspace snapshot
// GET /fuel-reports/workspaces/:id
func (h *FuelReportHandler) Get(c *gin.Context) {
	id, ok := h.bindWorkspace(c)
	if !ok {
		return
	}

	ws, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// UpdateUnit applies a field patch to one unit
// PATCH /fuel-reports/workspaces/:id/units/:unit
func (h *FuelReportHandler) UpdateUnit(c *gin.Context) {
	var uri UnitURI
	if err := c.ShouldBindUri(&uri); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if len(patch) == 0 {
		h.BadRequest(c, "No fields to update")
		return
	}

	ws, err := h.service.UpdateUnit(c.Request.Context(), uri.ID, uri.Unit, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ws)
}

// Submit stores the workspace as stock rows
// POST /fuel-reports/workspaces/:id/submit
func (h *FuelReportHandler) Submit(c *gin.Context) {
	id, ok := h.bindWorkspace(c)
	if !ok {
		return
	}

	// the body is optional; an empty one selects the configured default
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), id, req.FuelUsageSource)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete discards a workspace
// DELETE /fuel-reports/workspaces/:id
func (h *FuelReportHandler) Delete(c *gin.Context) {
	id, ok := h.bindWorkspace(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Export downloads the reconciliation as a spreadsheet
// GET /fuel-reports/workspaces/:id/export
func (h *FuelReportHandler) Export(c *gin.Context) {
	id, ok := h.bindWorkspace(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	header, err := h.service.Export(c.Request.Context(), id, &buf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(header)))
	c.Data(http.StatusOK, h.service.ExportContentType(), buf.Bytes())
}

func exportFilename(header fuel.ReportHeader) string {
	if !header.IsComplete() {
		return "fuel-report.xlsx"
	}
	return fmt.Sprintf("fuel-report-%s-shift%d.xlsx", header.Date, header.Shift)
}

// Render returns the canonical report text
// GET /fuel-reports/workspaces/:id/render
func (h *FuelReportHandler) Render(c *gin.Context) {
	id, ok := h.bindWorkspace(c)
	if !ok {
		return
	}

	text, err := h.service.Render(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

// ImportCalibration replaces tera tables from an uploaded CSV
// POST /fuel-reports/calibration/import
func (h *FuelReportHandler) ImportCalibration(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxCalibrationFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "file exceeds maximum size of 2MB")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "text/csv" && contentType != "application/octet-stream" &&
		contentType != "text/plain" && contentType != "application/vnd.ms-excel" {
		h.Error(c, http.StatusUnsupportedMediaType, dto.ErrCodeValidation, "file must be a CSV file")
		return
	}

	result, err := h.service.ImportCalibration(c.Request.Context(), file)
	if errors.Is(err, fuel.ErrInvalidCalibration) {
		resp := dto.NewErrorResponseWithRequestID(fuel.ErrInvalidCalibration.Code, calibrationErrorMessage(result), getRequestID(c))
		c.JSON(http.StatusBadRequest, resp.WithData(result))
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// calibrationErrorMessage prefers the file-level problem when there is one
func calibrationErrorMessage(result *fuelreport.CalibrationImportResult) string {
	for _, e := range result.Errors {
		if e.Row == 0 {
			return e.Message
		}
	}
	return fmt.Sprintf("%s (%d rows)", fuel.ErrInvalidCalibration.Message, result.TotalErrors)
}
