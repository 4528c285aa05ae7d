package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silverbackhw/portal-sync/internal/repository"
	"github.com/silverbackhw/portal-sync/internal/service"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrSyncInProgress), errors.Is(err, service.ErrMappingExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, repository.ErrMappingNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, zoho.ErrConfiguration),
		errors.Is(err, zoho.ErrAuth),
		errors.Is(err, service.ErrNoRecords),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrInvalidRecordType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err with its status. Per-key misses of a partial result
// are passed through so callers can see what was not found.
func respondError(c *gin.Context, err error, result *service.SyncResult) {
	status := statusOf(err)
	body := gin.H{"success": false, "error": err.Error()}

	var authErr *zoho.AuthError
	switch {
	case errors.As(err, &authErr):
		body["error"] = zoho.ErrAuth.Error()
		body["details"] = authErr.Details
	case status == http.StatusInternalServerError:
		body["error"] = "Internal server error"
		body["details"] = err.Error()
	}

	var unknown *service.UnknownFieldError
	if errors.As(err, &unknown) {
		body["knownFields"] = unknown.Known
	}

	if result != nil && len(result.Errors) > 0 {
		body["errors"] = result.Errors
	}

	c.JSON(status, body)
}
