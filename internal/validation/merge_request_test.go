package validation_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-polyglot/internal/validation"
	"github.com/goliatone/go-polyglot/pkg/testsupport"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := testsupport.LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	return raw
}

func TestDecodeMergeRequestAcceptsValidPayload(t *testing.T) {
	req, err := validation.DecodeMergeRequest(loadFixture(t, "merge_request_valid.json"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Kind != "music" || !req.Commit {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Priorities["lang_trans"] != "other" || req.Priorities["default"] != "self" {
		t.Fatalf("unexpected priorities %v", req.Priorities)
	}
}

func TestDecodeMergeRequestReportsEveryIssue(t *testing.T) {
	_, err := validation.DecodeMergeRequest(loadFixture(t, "merge_request_invalid.json"))
	if !errors.Is(err, validation.ErrSchemaValidation) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
	issues := validation.Issues(err)
	if len(issues) < 3 {
		t.Fatalf("expected issues for kind, self and priorities, got %+v", issues)
	}
	locations := map[string]bool{}
	for _, issue := range issues {
		locations[issue.Location] = true
	}
	for _, want := range []string{"/kind", "/self"} {
		if !locations[want] {
			t.Fatalf("expected an issue at %s, got %+v", want, issues)
		}
	}
}

func TestDecodeMergeRequestRejectsMalformedJSON(t *testing.T) {
	_, err := validation.DecodeMergeRequest([]byte(`{"kind":`))
	if !errors.Is(err, validation.ErrPayloadMalformed) {
		t.Fatalf("expected ErrPayloadMalformed, got %v", err)
	}
}

func TestMergeRequestSchemaCompiles(t *testing.T) {
	if _, err := validation.Compile("merge_request", validation.MergeRequestSchema()); err != nil {
		t.Fatalf("compile: %v", err)
	}
}
