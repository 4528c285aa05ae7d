package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silverbackhw/portal-sync/internal/service"
)

type syncRequest struct {
	Module    string         `json:"module"`
	Limit     int            `json:"limit" binding:"gte=0"`
	Fields    map[string]any `json:"fields"`
	DateField string         `json:"dateField"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	RecordID  string         `json:"recordId"`
	RecordIDs []string       `json:"recordIds"`
}

func (r syncRequest) toService() service.SyncRequest {
	return service.SyncRequest{
		Module:    r.Module,
		Limit:     r.Limit,
		Fields:    r.Fields,
		DateField: r.DateField,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		RecordID:  r.RecordID,
		RecordIDs: r.RecordIDs,
	}
}

type syncAllRequest struct {
	Limit     int    `json:"limit" binding:"gte=0"`
	DateField string `json:"dateField"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// bindOptionalJSON binds a body that callers may omit entirely
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return false
	}
	return true
}

func (h *handler) syncPolicies(c *gin.Context) {
	var req syncRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.deps.Sync.SyncPolicies(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err, result)
		return
	}

	body := gin.H{
		"success":   true,
		"policies":  result.Policies,
		"claims":    result.Claims,
		"total":     result.Total,
		"debugInfo": result.Debug,
	}
	withErrors(body, result)
	c.JSON(http.StatusOK, body)
}

func (h *handler) syncClaims(c *gin.Context) {
	var req syncRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.deps.Sync.SyncClaims(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err, result)
		return
	}
	c.JSON(http.StatusOK, countsBody(result.Claims, result))
}

func (h *handler) syncREPros(c *gin.Context) {
	var req syncRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.deps.Sync.SyncREPros(c.Request.Context(), req.toService())
	if err != nil {
		respondError(c, err, result)
		return
	}
	c.JSON(http.StatusOK, countsBody(result.REPros, result))
}

func (h *handler) syncAll(c *gin.Context) {
	var req syncAllRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.deps.Sync.SyncAll(c.Request.Context(), service.SyncAllRequest{
		Limit:     req.Limit,
		DateField: req.DateField,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respondError(c, err, result)
		return
	}

	body := gin.H{
		"success":  true,
		"policies": result.Policies,
		"claims":   result.Claims,
		"rePros":   result.REPros,
		"total":    result.Total,
	}
	withErrors(body, result)
	c.JSON(http.StatusOK, body)
}

func (h *handler) zohoFields(c *gin.Context) {
	var req struct {
		Module string `json:"module"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	fields, err := h.deps.Sync.RemoteFields(c.Request.Context(), req.Module)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"module":          fields.Module,
		"availableFields": fields.AvailableFields,
		"sampleRecord":    fields.SampleRecord,
	})
}

func countsBody(counts service.Counts, result *service.SyncResult) gin.H {
	body := gin.H{
		"success":   true,
		"created":   counts.Created,
		"updated":   counts.Updated,
		"total":     result.Total,
		"debugInfo": result.Debug,
	}
	withErrors(body, result)
	return body
}

func withErrors(body gin.H, result *service.SyncResult) {
	if len(result.Errors) > 0 {
		body["errors"] = result.Errors
	}
}
