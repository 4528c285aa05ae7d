package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/service"
)

// Syncer interface for dependency injection
type Syncer interface {
	SyncPolicies(ctx context.Context, req service.SyncRequest) (*service.SyncResult, error)
	SyncClaims(ctx context.Context, req service.SyncRequest) (*service.SyncResult, error)
	SyncREPros(ctx context.Context, req service.SyncRequest) (*service.SyncResult, error)
	SyncAll(ctx context.Context, req service.SyncAllRequest) (*service.SyncResult, error)
	RemoteFields(ctx context.Context, module string) (*service.RemoteFields, error)
	ApplyWebhook(ctx context.Context, event service.WebhookEvent) (string, error)
}

// MappingEditor interface for dependency injection
type MappingEditor interface {
	List(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error)
	Create(ctx context.Context, recordType models.RecordType, appField string, zohoField string) (*models.FieldMapping, error)
	SetActive(ctx context.Context, id string, active bool) (*models.FieldMapping, error)
	Delete(ctx context.Context, id string) error
}

// Connector interface for dependency injection
type Connector interface {
	AuthURL(ctx context.Context, redirectURL string) (string, error)
	CompleteAuthorization(ctx context.Context, code string, redirectURL string) (string, error)
	SaveRefreshToken(ctx context.Context, userID string, refreshToken string) error
}

// UserLookup resolves the caller named by a token
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Deps struct {
	Sync      Syncer
	Mappings  MappingEditor
	Connector Connector
	Users     UserLookup

	JWTSecret string
	// RedirectURL is the registered OAuth callback; derived from the request when empty
	RedirectURL string
}

type handler struct {
	deps Deps
}

// NewRouter wires every endpoint. Everything under /api requires an admin
// token except the OAuth callback and the CRM webhook.
func NewRouter(deps Deps) *gin.Engine {
	h := &handler{deps: deps}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := router.Group("/api")
	public.GET("/zoho/callback", h.zohoCallback)
	public.POST("/webhooks/zoho", h.zohoWebhook)

	admin := router.Group("/api")
	admin.Use(RequireAdmin(deps.JWTSecret, deps.Users))

	admin.POST("/sync/policies", h.syncPolicies)
	admin.POST("/sync/claims", h.syncClaims)
	admin.POST("/sync/repros", h.syncREPros)
	admin.POST("/sync/all", h.syncAll)

	admin.POST("/zoho/fields", h.zohoFields)
	admin.GET("/zoho/auth-url", h.zohoAuthURL)
	admin.POST("/zoho/refresh-token", h.zohoRefreshToken)

	admin.GET("/mappings", h.listMappings)
	admin.POST("/mappings", h.createMapping)
	admin.PATCH("/mappings/:id", h.updateMapping)
	admin.DELETE("/mappings/:id", h.deleteMapping)

	return router
}
