package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goliatone/go-polyglot"
	"github.com/goliatone/go-polyglot/internal/di"
	"github.com/goliatone/go-polyglot/pkg/testsupport"
	"github.com/google/uuid"
)

func useTestModule(t *testing.T) *polyglot.Module {
	t.Helper()
	ctx := context.Background()
	db, err := testsupport.NewBunDB(ctx)
	if err != nil {
		t.Fatalf("new bun db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })
	moduleBuilder = func(cfg polyglot.Config) (*polyglot.Module, error) {
		return polyglot.New(cfg, di.WithBunDB(db))
	}

	module, err := moduleBuilder(polyglot.DefaultConfig())
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	return module
}

func createMusic(t *testing.T, module *polyglot.Module, title, lang string) polyglot.OwnerRef {
	t.Helper()
	orig := true
	created, err := module.CreateOwner(context.Background(), uuid.Nil, &polyglot.Music{}, []polyglot.TranslationInput{
		{Title: title, Langcode: lang, IsOrig: &orig},
	})
	if err != nil {
		t.Fatalf("create music: %v", err)
	}
	return created.Owner
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"explode"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected unknown command error")
	}
	if err := run(context.Background(), nil, &bytes.Buffer{}); err == nil {
		t.Fatal("expected usage error")
	}
}

func TestRunMigrate(t *testing.T) {
	useTestModule(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"migrate"}, &out); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out.String(), "schema up to date") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunTitle(t *testing.T) {
	module := useTestModule(t)
	ref := createMusic(t, module, "Imagine", "en")

	var out bytes.Buffer
	err := run(context.Background(), []string{"title", "-kind", "music", "-id", ref.ID.String(), "-lang", "ja"}, &out)
	if err != nil {
		t.Fatalf("title: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Imagine" {
		t.Fatalf("expected fallback title, got %q", out.String())
	}
}

func TestRunMergePrintsReport(t *testing.T) {
	module := useTestModule(t)
	self := createMusic(t, module, "Imagine", "en")
	other := createMusic(t, module, "イマジン", "ja")

	var out bytes.Buffer
	args := []string{"merge", "-kind", "music", "-self", self.ID.String(), "-other", other.ID.String(), "-priorities", "default=self", "-commit"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("merge: %v", err)
	}

	var report struct {
		Committed bool                       `json:"committed"`
		Entries   map[string]json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	if !report.Committed {
		t.Fatalf("expected committed report")
	}
	if _, ok := report.Entries["lang_orig"]; !ok {
		t.Fatalf("expected lang_orig entry, got %v", report.Entries)
	}
}

func TestParsePriorities(t *testing.T) {
	got, err := parsePriorities("default=self, note=other")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got["default"] != "self" || got["note"] != "other" {
		t.Fatalf("unexpected priorities %v", got)
	}
	if _, err := parsePriorities("note"); err == nil {
		t.Fatal("expected malformed pair to fail")
	}
}
