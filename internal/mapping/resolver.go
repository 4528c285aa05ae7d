package mapping

import (
	"context"
	"fmt"
	"log"

	"github.com/silverbackhw/portal-sync/internal/models"
)

// Extractor is a hard-coded default rule for one app field
type Extractor func(raw map[string]any) any

// MappingSource defines the interface for reading field mapping overrides
type MappingSource interface {
	ActiveMappings(ctx context.Context, recordType models.RecordType) ([]models.FieldMapping, error)
}

// Resolver turns raw CRM records into app field values.
// Operator mappings override the default rule of a single field; everything
// else falls through to the defaults.
type Resolver struct {
	source MappingSource
}

func NewResolver(source MappingSource) *Resolver {
	return &Resolver{source: source}
}

// Rules loads the active overrides of a record type.
// Mappings are read fresh on every call so edits apply to the next run.
func (r *Resolver) Rules(ctx context.Context, recordType models.RecordType) (*Rules, error) {
	mappings, err := r.source.ActiveMappings(ctx, recordType)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s field mappings: %w", recordType, err)
	}

	paths := make(map[string]string, len(mappings))
	for _, m := range mappings {
		if !m.IsActive || m.ModuleType != recordType {
			continue
		}
		if _, exists := paths[m.AppField]; exists {
			log.Printf("[mapping] Duplicate active %s mapping for %s, keeping the first", recordType, m.AppField)
			continue
		}
		paths[m.AppField] = m.ZohoField
	}

	if len(paths) > 0 {
		log.Printf("[mapping] Loaded %d active %s field mappings", len(paths), recordType)
	}

	return &Rules{recordType: recordType, paths: paths}, nil
}

// ResolveField resolves a single field against the current mappings
func (r *Resolver) ResolveField(ctx context.Context, recordType models.RecordType, raw map[string]any, appField string, def Extractor) (any, error) {
	rules, err := r.Rules(ctx, recordType)
	if err != nil {
		return nil, err
	}
	return rules.Resolve(raw, appField, def), nil
}

// Rules is a snapshot of the overrides for one record type.
// A nil *Rules resolves every field by its default.
type Rules struct {
	recordType models.RecordType
	paths      map[string]string
}

// Resolve returns the mapped path's value when the field is overridden,
// otherwise the default extractor's value
func (r *Rules) Resolve(raw map[string]any, appField string, def Extractor) any {
	if path, ok := r.Path(appField); ok {
		return lookup(raw, path)
	}
	if def == nil {
		return nil
	}
	return def(raw)
}

// Path returns the override path of a field, if any
func (r *Rules) Path(appField string) (string, bool) {
	if r == nil {
		return "", false
	}
	path, ok := r.paths[appField]
	return path, ok
}

// Apply resolves every field into a name -> value map
func (r *Rules) Apply(raw map[string]any, fields []Field) map[string]any {
	values := make(map[string]any, len(fields))
	for _, field := range fields {
		values[field.Name] = r.Resolve(raw, field.Name, field.Default)
	}
	return values
}
