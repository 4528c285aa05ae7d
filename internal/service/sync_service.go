package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/silverbackhw/portal-sync/internal/mapping"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

const (
	ModulePolicies = "Policies"
	ModuleClaims   = "Claims"
	ModuleREPros   = "RE_Pros"
)

// SyncRequest describes one sync trigger. Fields is accepted for
// compatibility with existing callers and not interpreted.
type SyncRequest struct {
	Module    string
	Limit     int
	Fields    map[string]any
	DateField string
	StartDate string
	EndDate   string
	RecordID  string
	RecordIDs []string
}

// keys folds the legacy single id into the id list
func (r SyncRequest) keys() []string {
	source := r.RecordIDs
	if len(source) == 0 && r.RecordID != "" {
		source = []string{r.RecordID}
	}

	var keys []string
	for _, k := range source {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func (r SyncRequest) module(fallback string) string {
	if m := strings.TrimSpace(r.Module); m != "" {
		return m
	}
	return fallback
}

// SyncAllRequest bounds a full sync. The date range, when complete, applies
// to the policy and claim sweeps.
type SyncAllRequest struct {
	Limit     int
	DateField string
	StartDate string
	EndDate   string
}

// RemoteFields is a sample of a module's record shape
type RemoteFields struct {
	Module          string
	AvailableFields []string
	SampleRecord    zoho.Record
}

// Stores groups the local repositories sync writes to
type Stores struct {
	Policies PolicyRepository
	Claims   ClaimRepository
	REPros   REProRepository
	Users    UserRepository
	Mappings FieldMappingRepository
}

type SyncService struct {
	tokens     AccessTokenProvider
	remote     RemoteAPI
	fetcher    *Fetcher
	reconciler *Reconciler
	tagger     *UserTagger
	stores     Stores
	reporter   Reporter
	limit      int

	running atomic.Bool
}

func NewSyncService(tokens AccessTokenProvider, remote RemoteAPI, stores Stores, defaultLimit int) *SyncService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	resolver := mapping.NewResolver(stores.Mappings)
	return &SyncService{
		tokens:     tokens,
		remote:     remote,
		fetcher:    NewFetcher(remote),
		reconciler: NewReconciler(stores.Policies, stores.Claims, stores.REPros, remote, resolver),
		tagger:     NewUserTagger(stores.Users, stores.Policies),
		stores:     stores,
		limit:      defaultLimit,
	}
}

// SetReporter enables sync reports after SyncAll
func (s *SyncService) SetReporter(reporter Reporter) {
	s.reporter = reporter
}

// begin claims the process-wide sync slot
func (s *SyncService) begin() (func(), error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	return func() { s.running.Store(false) }, nil
}

func (s *SyncService) accessToken(ctx context.Context) (string, error) {
	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (s *SyncService) limitOf(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.limit
}

// SyncPolicies syncs policies and the claims related to them
func (s *SyncService) SyncPolicies(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.syncPolicies(ctx, token, req)
}

func (s *SyncService) syncPolicies(ctx context.Context, token string, req SyncRequest) (*SyncResult, error) {
	module := req.module(ModulePolicies)
	keys := req.keys()

	log.Printf("[sync] Syncing %s (limit: %d, keys: %d, date field: %q)", module, s.limitOf(req.Limit), len(keys), req.DateField)

	fetched, err := s.fetcher.Fetch(ctx, token, FetchRequest{
		Module:    module,
		Limit:     s.limitOf(req.Limit),
		DateField: req.DateField,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Keys:      keys,
		KeyFields: []string{"Policy_Number", "Name"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch policies: %w", err)
	}

	if len(fetched.Records) == 0 {
		return emptyResult(fetched, len(keys) > 0, "policies")
	}

	result, err := s.reconciler.ReconcilePolicies(ctx, token, module, fetched.Records)
	if err != nil {
		return nil, err
	}
	result.Errors = append(fetched.Errors, result.Errors...)
	result.Debug = newDebugInfo(fetched.Records)
	return result, nil
}

// SyncClaims syncs standalone claims
func (s *SyncService) SyncClaims(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	return s.syncClaims(ctx, token, req)
}

func (s *SyncService) syncClaims(ctx context.Context, token string, req SyncRequest) (*SyncResult, error) {
	module := req.module(ModuleClaims)
	keys := req.keys()

	log.Printf("[sync] Syncing %s (limit: %d, keys: %d, date field: %q)", module, s.limitOf(req.Limit), len(keys), req.DateField)

	fetched, err := s.fetcher.Fetch(ctx, token, FetchRequest{
		Module:    module,
		Limit:     s.limitOf(req.Limit),
		DateField: req.DateField,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Keys:      keys,
		KeyFields: []string{"Claim_Number", "Name"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch claims: %w", err)
	}

	if len(fetched.Records) == 0 {
		return emptyResult(fetched, len(keys) > 0, "claims")
	}

	result, err := s.reconciler.ReconcileClaims(ctx, fetched.Records)
	if err != nil {
		return nil, err
	}
	result.Errors = append(fetched.Errors, result.Errors...)
	result.Debug = newDebugInfo(fetched.Records)
	return result, nil
}

// SyncREPros syncs RE Pros and retags the matching users
func (s *SyncService) SyncREPros(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.syncREPros(ctx, token, req)
	if err != nil {
		return result, err
	}

	_, tagErrs := s.tagger.Tag(ctx, result.REProEmails)
	result.Errors = append(result.Errors, tagErrs...)
	return result, nil
}

func (s *SyncService) syncREPros(ctx context.Context, token string, req SyncRequest) (*SyncResult, error) {
	module := req.module(ModuleREPros)
	keys := req.keys()

	log.Printf("[sync] Syncing %s (limit: %d, keys: %d)", module, s.limitOf(req.Limit), len(keys))

	fetched, err := s.fetcher.Fetch(ctx, token, FetchRequest{
		Module:       module,
		Limit:        s.limitOf(req.Limit),
		Keys:         keys,
		KeyFields:    []string{"Email"},
		ByIDFallback: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch re pros: %w", err)
	}

	if len(fetched.Records) == 0 {
		return emptyResult(fetched, len(keys) > 0, "RE Pros")
	}

	result, err := s.reconciler.ReconcileREPros(ctx, fetched.Records)
	if err != nil {
		return nil, err
	}
	result.Errors = append(fetched.Errors, result.Errors...)
	result.Debug = newDebugInfo(fetched.Records)
	return result, nil
}

// SyncAll runs policies first so RE Pro ids are known and customer data is
// present for tagging, then the referenced RE Pros, then standalone claims.
func (s *SyncService) SyncAll(ctx context.Context, req SyncAllRequest) (*SyncResult, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	started := time.Now()
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	total := &SyncResult{}
	window := SyncRequest{
		Limit:     req.Limit,
		DateField: req.DateField,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	policies, err := s.syncPolicies(ctx, token, window)
	if err != nil && !isEmpty(err) {
		return nil, err
	}
	total.merge(policies)

	if len(total.REProIDs) > 0 {
		rePros, err := s.syncREPros(ctx, token, SyncRequest{RecordIDs: total.REProIDs})
		if err != nil && !isEmpty(err) {
			return nil, err
		}
		total.merge(rePros)
	}

	claims, err := s.syncClaims(ctx, token, window)
	if err != nil && !isEmpty(err) {
		return nil, err
	}
	total.merge(claims)

	_, tagErrs := s.tagger.Tag(ctx, total.REProEmails)
	total.Errors = append(total.Errors, tagErrs...)

	log.Printf("[sync] Full sync finished in %s: policies %d/%d, claims %d/%d, RE Pros %d/%d (created/updated), %d errors",
		time.Since(started).Round(time.Millisecond),
		total.Policies.Created, total.Policies.Updated,
		total.Claims.Created, total.Claims.Updated,
		total.REPros.Created, total.REPros.Updated,
		len(total.Errors))

	if s.reporter != nil {
		if err := s.reporter.SendReport(ctx, total); err != nil {
			log.Printf("[sync] Failed to send sync report: %v", err)
		}
	}

	return total, nil
}

// RemoteFields samples one record of a module for the mapping editor
func (s *SyncService) RemoteFields(ctx context.Context, module string) (*RemoteFields, error) {
	if module = strings.TrimSpace(module); module == "" {
		module = ModulePolicies
	}

	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.remote.List(ctx, token, module, 1, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sample record: %w", err)
	}
	if len(page.Records) == 0 {
		return nil, fmt.Errorf("%w in module %s", ErrNoRecords, module)
	}

	debug := newDebugInfo(page.Records)
	return &RemoteFields{
		Module:          module,
		AvailableFields: debug.AvailableFields,
		SampleRecord:    debug.SampleRecord,
	}, nil
}

// emptyResult reports a fetch that yielded nothing. The result is still
// returned so callers can surface the per-key misses.
func emptyResult(fetched *FetchResult, targeted bool, noun string) (*SyncResult, error) {
	result := &SyncResult{Errors: fetched.Errors, Debug: newDebugInfo(nil)}
	if targeted {
		return result, fmt.Errorf("no %s found for the provided keys: %w", noun, ErrNotFound)
	}
	return result, fmt.Errorf("no %s found: %w", noun, ErrNoRecords)
}

func isEmpty(err error) bool {
	return errorsIsAny(err, ErrNoRecords, ErrNotFound)
}
