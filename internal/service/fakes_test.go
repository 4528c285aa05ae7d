package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/silverbackhw/portal-sync/internal/models"
	"github.com/silverbackhw/portal-sync/internal/repository"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

// memoryStore is an in-memory stand-in for the gorm repositories
type memoryStore struct {
	policies map[string]models.Policy
	claims   map[string]models.Claim
	rePros   map[string]models.REPro
	users    map[string]models.User
	mappings []models.FieldMapping

	failClaimCreate map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		policies:        make(map[string]models.Policy),
		claims:          make(map[string]models.Claim),
		rePros:          make(map[string]models.REPro),
		users:           make(map[string]models.User),
		failClaimCreate: make(map[string]bool),
	}
}

func (s *memoryStore) stores() Stores {
	return Stores{
		Policies: policyRepo{s},
		Claims:   claimRepo{s},
		REPros:   reProRepo{s},
		Users:    userRepo{s},
		Mappings: mappingRepo{s},
	}
}

func (s *memoryStore) claimByZohoID(zohoID string) (models.Claim, bool) {
	for _, c := range s.claims {
		if c.ZohoID == zohoID {
			return c, true
		}
	}
	return models.Claim{}, false
}

func (s *memoryStore) policyByZohoID(zohoID string) (models.Policy, bool) {
	for _, p := range s.policies {
		if p.ZohoID == zohoID {
			return p, true
		}
	}
	return models.Policy{}, false
}

type policyRepo struct{ s *memoryStore }

func (r policyRepo) FindByZohoID(ctx context.Context, zohoID string) (*models.Policy, error) {
	if p, ok := r.s.policyByZohoID(zohoID); ok {
		return &p, nil
	}
	return nil, repository.ErrPolicyNotFound
}

func (r policyRepo) Create(ctx context.Context, policy *models.Policy) error {
	if _, ok := r.s.policyByZohoID(policy.ZohoID); ok {
		return fmt.Errorf("duplicate zoho_id %s", policy.ZohoID)
	}
	policy.CreatedAt = time.Now()
	r.s.policies[policy.ID] = *policy
	return nil
}

func (r policyRepo) Update(ctx context.Context, policy *models.Policy) error {
	if _, ok := r.s.policies[policy.ID]; !ok {
		return errors.New("update of unknown policy")
	}
	r.s.policies[policy.ID] = *policy
	return nil
}

func (r policyRepo) Delete(ctx context.Context, id string) error {
	delete(r.s.policies, id)
	return nil
}

func (r policyRepo) ExistsByCustomerEmail(ctx context.Context, email string) (bool, error) {
	for _, p := range r.s.policies {
		if p.CustomerEmail != nil && strings.EqualFold(strings.TrimSpace(*p.CustomerEmail), strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

type claimRepo struct{ s *memoryStore }

func (r claimRepo) FindByZohoID(ctx context.Context, zohoID string) (*models.Claim, error) {
	if c, ok := r.s.claimByZohoID(zohoID); ok {
		return &c, nil
	}
	return nil, repository.ErrClaimNotFound
}

func (r claimRepo) Create(ctx context.Context, claim *models.Claim) error {
	if r.s.failClaimCreate[claim.ZohoID] {
		return errors.New("insert rejected")
	}
	if _, ok := r.s.claimByZohoID(claim.ZohoID); ok {
		return fmt.Errorf("duplicate zoho_id %s", claim.ZohoID)
	}
	r.s.claims[claim.ID] = *claim
	return nil
}

func (r claimRepo) Update(ctx context.Context, claim *models.Claim) error {
	if _, ok := r.s.claims[claim.ID]; !ok {
		return errors.New("update of unknown claim")
	}
	r.s.claims[claim.ID] = *claim
	return nil
}

func (r claimRepo) Delete(ctx context.Context, id string) error {
	delete(r.s.claims, id)
	return nil
}

type reProRepo struct{ s *memoryStore }

func (r reProRepo) FindByZohoID(ctx context.Context, zohoID string) (*models.REPro, error) {
	for _, p := range r.s.rePros {
		if p.ZohoID == zohoID {
			return &p, nil
		}
	}
	return nil, repository.ErrREProNotFound
}

func (r reProRepo) Create(ctx context.Context, rePro *models.REPro) error {
	r.s.rePros[rePro.ID] = *rePro
	return nil
}

func (r reProRepo) Update(ctx context.Context, rePro *models.REPro) error {
	r.s.rePros[rePro.ID] = *rePro
	return nil
}

type userRepo struct{ s *memoryStore }

func (r userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r userRepo) AdminWithRefreshToken(ctx context.Context) (*models.User, error) {
	var found *models.User
	for _, u := range r.s.users {
		if !u.IsAdmin() || u.ZohoRefreshToken == nil || *u.ZohoRefreshToken == "" {
			continue
		}
		if found == nil || u.UpdatedAt.After(found.UpdatedAt) {
			found = &u
		}
	}
	if found == nil {
		return nil, repository.ErrUserNotFound
	}
	return found, nil
}

func (r userRepo) UpdateCustomerType(ctx context.Context, userID string, customerType string) error {
	u := r.s.users[userID]
	u.CustomerType = &customerType
	r.s.users[userID] = u
	return nil
}

func (r userRepo) SetZohoRefreshToken(ctx context.Context, userID string, refreshToken string) error {
	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ZohoRefreshToken = &refreshToken
	u.UpdatedAt = time.Now()
	r.s.users[userID] = u
	return nil
}

type mappingRepo struct{ s *memoryStore }

func (r mappingRepo) ActiveMappings(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error) {
	var out []models.FieldMapping
	for _, m := range r.s.mappings {
		if m.ModuleType == recordType && m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r mappingRepo) ListByType(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error) {
	var out []models.FieldMapping
	for _, m := range r.s.mappings {
		if m.ModuleType == recordType {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r mappingRepo) GetByID(ctx context.Context, id string) (*models.FieldMapping, error) {
	for _, m := range r.s.mappings {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, repository.ErrMappingNotFound
}

func (r mappingRepo) Create(ctx context.Context, mapping *models.FieldMapping) error {
	r.s.mappings = append(r.s.mappings, *mapping)
	return nil
}

func (r mappingRepo) SetActive(ctx context.Context, id string, active bool) error {
	for i := range r.s.mappings {
		if r.s.mappings[i].ID == id {
			r.s.mappings[i].IsActive = active
			return nil
		}
	}
	return repository.ErrMappingNotFound
}

func (r mappingRepo) Delete(ctx context.Context, id string) error {
	for i := range r.s.mappings {
		if r.s.mappings[i].ID == id {
			r.s.mappings = append(r.s.mappings[:i], r.s.mappings[i+1:]...)
			return nil
		}
	}
	return repository.ErrMappingNotFound
}

// mockRemote is a func-field double of the CRM API that records its calls
type mockRemote struct {
	listFunc    func(module string, page int, perPage int) (*zoho.Page, error)
	queryFunc   func(selectQuery string) (*zoho.Page, error)
	searchFunc  func(module string, field string, value string) ([]zoho.Record, error)
	getFunc     func(module string, id string) ([]zoho.Record, error)
	relatedFunc func(module string, parentID string, relatedList string) ([]zoho.Record, error)

	calls []string
}

func (m *mockRemote) List(ctx context.Context, accessToken string, module string, page int, perPage int) (*zoho.Page, error) {
	m.calls = append(m.calls, fmt.Sprintf("list %s %d", module, page))
	if m.listFunc != nil {
		return m.listFunc(module, page, perPage)
	}
	return &zoho.Page{}, nil
}

func (m *mockRemote) Query(ctx context.Context, accessToken string, selectQuery string) (*zoho.Page, error) {
	m.calls = append(m.calls, "query "+selectQuery)
	if m.queryFunc != nil {
		return m.queryFunc(selectQuery)
	}
	return &zoho.Page{}, nil
}

func (m *mockRemote) Search(ctx context.Context, accessToken string, module string, field string, value string) ([]zoho.Record, error) {
	m.calls = append(m.calls, fmt.Sprintf("search %s %s=%s", module, field, value))
	if m.searchFunc != nil {
		return m.searchFunc(module, field, value)
	}
	return nil, nil
}

func (m *mockRemote) Get(ctx context.Context, accessToken string, module string, id string) ([]zoho.Record, error) {
	m.calls = append(m.calls, fmt.Sprintf("get %s %s", module, id))
	if m.getFunc != nil {
		return m.getFunc(module, id)
	}
	return nil, nil
}

func (m *mockRemote) Related(ctx context.Context, accessToken string, module string, parentID string, relatedList string) ([]zoho.Record, error) {
	m.calls = append(m.calls, fmt.Sprintf("related %s %s %s", module, parentID, relatedList))
	if m.relatedFunc != nil {
		return m.relatedFunc(module, parentID, relatedList)
	}
	return nil, nil
}

func (m *mockRemote) countCalls(prefix string) int {
	n := 0
	for _, c := range m.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type mockTokens struct {
	accessTokenFunc func(ctx context.Context) (zoho.BearerToken, error)
}

func (m *mockTokens) AccessToken(ctx context.Context) (zoho.BearerToken, error) {
	if m.accessTokenFunc != nil {
		return m.accessTokenFunc(ctx)
	}
	return zoho.BearerToken{AccessToken: "test-token", Expiry: time.Now().Add(time.Hour)}, nil
}

func records(n int, prefix string) []zoho.Record {
	out := make([]zoho.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, zoho.Record{"id": fmt.Sprintf("%s-%d", prefix, i), "Name": fmt.Sprintf("%s %d", prefix, i)})
	}
	return out
}

func sortedIdentifiers(errs []RecordError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Identifier)
	}
	sort.Strings(out)
	return out
}

func strPtr(s string) *string {
	return &s
}
