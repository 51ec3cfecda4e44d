package mergecmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-polyglot/internal/commands"
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/merge"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/goliatone/go-polyglot/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	codeMissingPriority = "MERGE_PRIORITY_MISSING"
	codeInvalidPair     = "MERGE_OWNERS_INVALID"
	codeNotFound        = "MERGE_OWNER_NOT_FOUND"
)

// Merger runs merges.
type Merger interface {
	Merge(ctx context.Context, actor uuid.UUID, self, other domain.OwnerRef, priorities merge.Priorities, commit bool) (*merge.Report, error)
}

// ReportSink receives the report of every successful merge.
type ReportSink func(ctx context.Context, msg MergeOwnersCommand, report *merge.Report)

// MergeOwnersHandler runs MergeOwnersCommand messages.
type MergeOwnersHandler struct {
	inner *commands.Handler[MergeOwnersCommand]
}

// NewMergeOwnersHandler wires a handler to merger. sink may be nil.
func NewMergeOwnersHandler(merger Merger, sink ReportSink, logger interfaces.Logger, opts ...commands.HandlerOption[MergeOwnersCommand]) *MergeOwnersHandler {
	exec := func(ctx context.Context, msg MergeOwnersCommand) error {
		priorities, err := merge.ParsePriorities(msg.Priorities)
		if err != nil {
			return err
		}
		self, other := msg.Refs()
		report, err := merger.Merge(ctx, msg.Actor, self, other, priorities, msg.Commit)
		if err != nil {
			return err
		}
		if sink != nil {
			sink(ctx, msg, report)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[MergeOwnersCommand]{
		commands.WithLogger[MergeOwnersCommand](logger),
		commands.WithOperation[MergeOwnersCommand]("merge.owners"),
		commands.WithErrorClassifier[MergeOwnersCommand](classifyMergeError),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MergeOwnersHandler{
		inner: commands.NewHandler[MergeOwnersCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[MergeOwnersCommand].
func (h *MergeOwnersHandler) Execute(ctx context.Context, msg MergeOwnersCommand) error {
	return h.inner.Execute(ctx, msg)
}

func classifyMergeError(err error) error {
	switch {
	case errors.Is(err, merge.ErrMissingPriority):
		return commands.ValidationFailure(err, codeMissingPriority, "merge priorities incomplete")
	case errors.Is(err, merge.ErrKindMismatch), errors.Is(err, merge.ErrSameEntity), errors.Is(err, merge.ErrUnsupportedKind):
		return commands.ValidationFailure(err, codeInvalidPair, "owners cannot be merged")
	case errors.Is(err, translations.ErrNotFound):
		return commands.ValidationFailure(err, codeNotFound, "owner not found")
	}
	return err
}
