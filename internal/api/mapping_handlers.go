package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silverbackhw/portal-sync/internal/mapping"
	"github.com/silverbackhw/portal-sync/internal/models"
)

type createMappingRequest struct {
	ModuleType models.RecordType `json:"module_type" binding:"required"`
	AppField   string            `json:"app_field" binding:"required"`
	ZohoField  string            `json:"zoho_field" binding:"required"`
}

type updateMappingRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (h *handler) listMappings(c *gin.Context) {
	recordType := models.RecordType(c.DefaultQuery("module_type", string(models.RecordTypePolicy)))

	mappings, err := h.deps.Mappings.List(c.Request.Context(), recordType)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if mappings == nil {
		mappings = []models.FieldMapping{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"mappings":    mappings,
		"knownFields": mapping.KnownFields(recordType),
	})
}

func (h *handler) createMapping(c *gin.Context) {
	var req createMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	m, err := h.deps.Mappings.Create(c.Request.Context(), req.ModuleType, req.AppField, req.ZohoField)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "mapping": m})
}

func (h *handler) updateMapping(c *gin.Context) {
	var req updateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	m, err := h.deps.Mappings.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "mapping": m})
}

func (h *handler) deleteMapping(c *gin.Context) {
	if err := h.deps.Mappings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
