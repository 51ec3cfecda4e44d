package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-polyglot/pkg/interfaces"
)

const (
	rootModule         = "polyglot"
	translationsModule = "polyglot.translations"
	titlesModule       = "polyglot.titles"
	mergeModule        = "polyglot.merge"
	storageModule      = "polyglot.storage"
)

const (
	fieldOwnerKind  = "owner_kind"
	fieldOwnerID    = "owner_id"
	fieldMergeSelf  = "merge_self"
	fieldMergeOther = "merge_other"
	fieldMergeStage = "merge_stage"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// TranslationsLogger returns the logger namespace reserved for the translation store.
func TranslationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translationsModule)
}

// TitlesLogger returns the logger namespace reserved for title resolution.
func TitlesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, titlesModule)
}

// MergeLogger returns the logger namespace reserved for the merge engine.
func MergeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mergeModule)
}

// StorageLogger returns the logger namespace reserved for storage bootstrap.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// WithOwnerContext tags entries with the owner a translation operation targets.
func WithOwnerContext(logger interfaces.Logger, kind, id string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(kind); trimmed != "" {
		fields[fieldOwnerKind] = trimmed
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldOwnerID] = trimmed
	}
	return WithFields(logger, fields)
}

// WithMergeContext tags entries with both merge participants and the current stage.
// Empty values are ignored.
func WithMergeContext(logger interfaces.Logger, self, other, stage string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(self); trimmed != "" {
		fields[fieldMergeSelf] = trimmed
	}
	if trimmed := strings.TrimSpace(other); trimmed != "" {
		fields[fieldMergeOther] = trimmed
	}
	if trimmed := strings.TrimSpace(stage); trimmed != "" {
		fields[fieldMergeStage] = trimmed
	}
	return WithFields(logger, fields)
}

// EnsureLogger substitutes the no-op logger for nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
