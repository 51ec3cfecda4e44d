package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/merge"
)

// MergeRequest is the decoded body of a merge request.
type MergeRequest struct {
	Kind       string            `json:"kind"`
	Self       string            `json:"self"`
	Other      string            `json:"other"`
	Priorities map[string]string `json:"priorities"`
	Commit     bool              `json:"commit"`
	Actor      string            `json:"actor,omitempty"`
}

var mergeKinds = []domain.OwnerKind{domain.OwnerKindArtist, domain.OwnerKindMusic, domain.OwnerKindPlace}

var (
	mergeSchemaOnce sync.Once
	mergeSchema     *Schema
	mergeSchemaErr  error
)

// MergeRequestSchema returns the JSON schema document for merge requests.
func MergeRequestSchema() map[string]any {
	keys := map[string]struct{}{merge.KeyDefault: {}}
	kinds := make([]any, 0, len(mergeKinds))
	for _, kind := range mergeKinds {
		kinds = append(kinds, string(kind))
		for _, key := range merge.RequiredKeys(kind) {
			keys[key] = struct{}{}
		}
	}
	names := make([]string, 0, len(keys))
	for key := range keys {
		names = append(names, key)
	}
	sort.Strings(names)
	enum := make([]any, len(names))
	for i, name := range names {
		enum[i] = name
	}

	uuidString := map[string]any{"type": "string", "format": "uuid"}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"kind", "self", "other", "priorities"},
		"properties": map[string]any{
			"kind":  map[string]any{"type": "string", "enum": kinds},
			"self":  uuidString,
			"other": uuidString,
			"actor": uuidString,
			"priorities": map[string]any{
				"type":                 "object",
				"minProperties":        1,
				"propertyNames":        map[string]any{"enum": enum},
				"additionalProperties": map[string]any{"type": "string", "enum": []any{"self", "other"}},
			},
			"commit": map[string]any{"type": "boolean"},
		},
	}
}

func compiledMergeSchema() (*Schema, error) {
	mergeSchemaOnce.Do(func() {
		mergeSchema, mergeSchemaErr = Compile("merge_request", MergeRequestSchema())
	})
	return mergeSchema, mergeSchemaErr
}

// DecodeMergeRequest validates raw against the merge request schema and
// decodes it.
func DecodeMergeRequest(raw []byte) (*MergeRequest, error) {
	schema, err := compiledMergeSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, err
	}
	req := &MergeRequest{}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadMalformed, err)
	}
	return req, nil
}
