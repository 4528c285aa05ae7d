package service

import (
	"context"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

// AccessTokenProvider hands out a fresh CRM bearer token per invocation
type AccessTokenProvider interface {
	AccessToken(ctx context.Context) (zoho.BearerToken, error)
}

// RemoteAPI is the subset of the CRM REST API used by sync
type RemoteAPI interface {
	List(ctx context.Context, accessToken string, module string, page int, perPage int) (*zoho.Page, error)
	Query(ctx context.Context, accessToken string, selectQuery string) (*zoho.Page, error)
	Search(ctx context.Context, accessToken string, module string, field string, value string) ([]zoho.Record, error)
	Get(ctx context.Context, accessToken string, module string, id string) ([]zoho.Record, error)
	Related(ctx context.Context, accessToken string, module string, parentID string, relatedList string) ([]zoho.Record, error)
}

// PolicyRepository interface for dependency injection
type PolicyRepository interface {
	FindByZohoID(ctx context.Context, zohoID string) (*models.Policy, error)
	Create(ctx context.Context, policy *models.Policy) error
	Update(ctx context.Context, policy *models.Policy) error
	Delete(ctx context.Context, id string) error
	ExistsByCustomerEmail(ctx context.Context, email string) (bool, error)
}

// ClaimRepository interface for dependency injection
type ClaimRepository interface {
	FindByZohoID(ctx context.Context, zohoID string) (*models.Claim, error)
	Create(ctx context.Context, claim *models.Claim) error
	Update(ctx context.Context, claim *models.Claim) error
	Delete(ctx context.Context, id string) error
}

// REProRepository interface for dependency injection
type REProRepository interface {
	FindByZohoID(ctx context.Context, zohoID string) (*models.REPro, error)
	Create(ctx context.Context, rePro *models.REPro) error
	Update(ctx context.Context, rePro *models.REPro) error
}

// UserRepository interface for dependency injection
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AdminWithRefreshToken(ctx context.Context) (*models.User, error)
	UpdateCustomerType(ctx context.Context, userID string, customerType string) error
	SetZohoRefreshToken(ctx context.Context, userID string, refreshToken string) error
}

// FieldMappingRepository interface for dependency injection
type FieldMappingRepository interface {
	ActiveMappings(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error)
	ListByType(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error)
	GetByID(ctx context.Context, id string) (*models.FieldMapping, error)
	Create(ctx context.Context, mapping *models.FieldMapping) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// Reporter delivers a summary of a completed sync
type Reporter interface {
	SendReport(ctx context.Context, result *SyncResult) error
}
