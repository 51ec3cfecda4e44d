package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewProviderCreatesModuleLogger(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console", Focus: []string{" polyglot.merge ", ""}})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	logger := p.GetLogger("polyglot.merge")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	logger.Debug("merge.adapter.ready")
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	if logger := p.GetLogger("polyglot"); logger == nil {
		t.Fatal("expected no-op logger from nil provider")
	}
}

func TestAdapterClonesFieldsAndPropagatesContext(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	fields := map[string]any{"owner_kind": "artist"}
	if child := adapted.(*adapter).WithFields(fields); child == nil {
		t.Fatal("expected WithFields to return logger")
	}
	fields["owner_kind"] = "music"
	if len(stub.fields) != 1 || stub.fields[0]["owner_kind"] != "artist" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "merge")
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context propagation, got %#v", stub.contexts)
	}

	adapted.Warn("translation.reassign.retry")
	adapted.Error("merge.failed")
	if len(stub.calls) != 2 || stub.calls[0] != "warn" || stub.calls[1] != "error" {
		t.Fatalf("unexpected delegated calls %v", stub.calls)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}
