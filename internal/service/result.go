package service

import (
	"sort"

	"github.com/silverbackhw/portal-sync/internal/zoho"
)

// RecordError is a per-record or per-key failure that did not abort the batch
type RecordError struct {
	Identifier string `json:"identifier"`
	Error      string `json:"error"`
}

type Counts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// DebugInfo helps operators configure mappings against the live record shape
type DebugInfo struct {
	AvailableFields []string    `json:"availableFields"`
	SampleRecord    zoho.Record `json:"sampleRecord"`
}

// SyncResult summarizes one sync invocation. It is never persisted.
type SyncResult struct {
	Policies Counts
	Claims   Counts
	REPros   Counts
	Total    int
	Errors   []RecordError
	Debug    DebugInfo

	// REProIDs are the CRM ids of RE Pros referenced by synced policies, first seen first
	REProIDs []string
	// REProEmails are the emails of synced RE Pros, input to user tagging
	REProEmails []string
}

func (r *SyncResult) addError(identifier string, err error) {
	r.Errors = append(r.Errors, RecordError{Identifier: identifier, Error: err.Error()})
}

func (r *SyncResult) addREProIDs(ids []string) {
	for _, id := range ids {
		seen := false
		for _, existing := range r.REProIDs {
			if existing == id {
				seen = true
				break
			}
		}
		if !seen {
			r.REProIDs = append(r.REProIDs, id)
		}
	}
}

// merge folds another result into r
func (r *SyncResult) merge(other *SyncResult) {
	if other == nil {
		return
	}
	r.Policies.Created += other.Policies.Created
	r.Policies.Updated += other.Policies.Updated
	r.Claims.Created += other.Claims.Created
	r.Claims.Updated += other.Claims.Updated
	r.REPros.Created += other.REPros.Created
	r.REPros.Updated += other.REPros.Updated
	r.Total += other.Total
	r.Errors = append(r.Errors, other.Errors...)
	r.addREProIDs(other.REProIDs)
	r.REProEmails = append(r.REProEmails, other.REProEmails...)
}

// newDebugInfo describes the first record of a batch.
// Field names are sorted; the CRM does not guarantee key order.
func newDebugInfo(records []zoho.Record) DebugInfo {
	if len(records) == 0 {
		return DebugInfo{AvailableFields: []string{}}
	}

	sample := records[0]
	fields := make([]string, 0, len(sample))
	for key := range sample {
		fields = append(fields, key)
	}
	sort.Strings(fields)

	return DebugInfo{AvailableFields: fields, SampleRecord: sample}
}
