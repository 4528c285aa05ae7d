package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/silverbackhw/portal-sync/internal/zoho"
)

const (
	DefaultLimit = 10000

	notFoundInRemote = "Not found in remote system"
)

var coqlIdentifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// FetchRequest selects one of three retrieval strategies.
// Keys select a targeted lookup; a complete date range selects a query;
// otherwise the whole module is swept.
type FetchRequest struct {
	Module string
	Limit  int

	DateField string
	StartDate string
	EndDate   string

	Keys []string
	// KeyFields are searched in order for each key
	KeyFields []string
	// ByIDFallback treats a key as a CRM record id when every search misses
	ByIDFallback bool
}

func (r FetchRequest) hasDateRange() bool {
	return r.DateField != "" && r.StartDate != "" && r.EndDate != ""
}

// FetchResult is a flat, possibly duplicated, list of raw records plus per-key misses
type FetchResult struct {
	Records []zoho.Record
	Errors  []RecordError
}

type Fetcher struct {
	remote RemoteAPI
}

func NewFetcher(remote RemoteAPI) *Fetcher {
	return &Fetcher{remote: remote}
}

// Fetch retrieves raw records. Zero results are not an error.
func (f *Fetcher) Fetch(ctx context.Context, accessToken string, req FetchRequest) (*FetchResult, error) {
	if len(req.Keys) > 0 {
		return f.lookup(ctx, accessToken, req)
	}

	if req.hasDateRange() {
		if err := validateDateRange(req); err != nil {
			return nil, err
		}
	}
	return f.sweep(ctx, accessToken, req)
}

func (f *Fetcher) sweep(ctx context.Context, accessToken string, req FetchRequest) (*FetchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	pageSize := min(limit, zoho.MaxPerPage)

	result := &FetchResult{}
	for page := 1; len(result.Records) < limit; page++ {
		var (
			resp *zoho.Page
			err  error
		)
		if req.hasDateRange() {
			resp, err = f.remote.Query(ctx, accessToken, coqlQuery(req, page, pageSize))
		} else {
			resp, err = f.remote.List(ctx, accessToken, req.Module, page, pageSize)
		}

		if err != nil {
			if page == 1 {
				return nil, err
			}
			// Keep what earlier pages returned
			log.Printf("[fetcher] %s page %d failed, stopping: %v", req.Module, page, err)
			result.Errors = append(result.Errors, RecordError{
				Identifier: fmt.Sprintf("%s page %d", req.Module, page),
				Error:      err.Error(),
			})
			break
		}

		if len(resp.Records) == 0 {
			break
		}
		result.Records = append(result.Records, resp.Records...)

		if !resp.MoreRecords {
			break
		}
	}

	if len(result.Records) > limit {
		result.Records = result.Records[:limit]
	}

	log.Printf("[fetcher] Fetched %d %s records", len(result.Records), req.Module)
	return result, nil
}

func (f *Fetcher) lookup(ctx context.Context, accessToken string, req FetchRequest) (*FetchResult, error) {
	result := &FetchResult{}

	for _, key := range req.Keys {
		records, err := f.lookupKey(ctx, accessToken, req, key)
		if err != nil {
			return nil, err
		}

		if len(records) == 0 {
			log.Printf("[fetcher] %s %s not found", req.Module, key)
			result.Errors = append(result.Errors, RecordError{Identifier: key, Error: notFoundInRemote})
			continue
		}
		result.Records = append(result.Records, records...)
	}

	log.Printf("[fetcher] Found %d %s records for %d keys", len(result.Records), req.Module, len(req.Keys))
	return result, nil
}

// lookupKey tries each search field, then the id fallback.
// A rejected search counts as a miss; a transport failure aborts.
func (f *Fetcher) lookupKey(ctx context.Context, accessToken string, req FetchRequest, key string) ([]zoho.Record, error) {
	for _, field := range req.KeyFields {
		records, err := f.remote.Search(ctx, accessToken, req.Module, field, key)
		if err != nil {
			var apiErr *zoho.APIError
			if !errors.As(err, &apiErr) {
				return nil, err
			}
			log.Printf("[fetcher] Search %s by %s rejected: %v", req.Module, field, err)
			continue
		}
		if len(records) > 0 {
			return records, nil
		}
	}

	if !req.ByIDFallback {
		return nil, nil
	}

	records, err := f.remote.Get(ctx, accessToken, req.Module, key)
	if err != nil {
		log.Printf("[fetcher] Lookup of %s %s by id failed: %v", req.Module, key, err)
		return nil, nil
	}
	return records, nil
}

// coqlQuery builds the paged date-range query. Pages are 1-based.
func coqlQuery(req FetchRequest, page int, pageSize int) string {
	return fmt.Sprintf("select * from %s where %s between '%s' and '%s' order by Created_Time desc limit %d offset %d",
		req.Module, req.DateField, req.StartDate, req.EndDate, pageSize, (page-1)*pageSize)
}

func validateDateRange(req FetchRequest) error {
	if !coqlIdentifier.MatchString(req.Module) {
		return fmt.Errorf("%w: module %q cannot be queried", ErrInvalidRequest, req.Module)
	}
	if !coqlIdentifier.MatchString(req.DateField) {
		return fmt.Errorf("%w: date field %q is not a field name", ErrInvalidRequest, req.DateField)
	}
	if strings.ContainsAny(req.StartDate, `'\`) || strings.ContainsAny(req.EndDate, `'\`) {
		return fmt.Errorf("%w: dates must not contain quotes", ErrInvalidRequest)
	}
	return nil
}
