// Package mergecmd exposes owner merges through go-command handlers.
package mergecmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/goliatone/go-polyglot/internal/merge"
	polyvalidation "github.com/goliatone/go-polyglot/internal/validation"
	"github.com/google/uuid"
)

const mergeOwnersMessageType = "polyglot.merge.owners"

// MergeOwnersCommand folds Other into Self.
type MergeOwnersCommand struct {
	Kind       domain.OwnerKind  `json:"kind"`
	SelfID     uuid.UUID         `json:"self"`
	OtherID    uuid.UUID         `json:"other"`
	Priorities map[string]string `json:"priorities"`
	Commit     bool              `json:"commit"`
	Actor      uuid.UUID         `json:"actor"`
}

// Type implements command.Message.
func (MergeOwnersCommand) Type() string { return mergeOwnersMessageType }

// Validate checks identifiers and priority values. Missing priority keys are
// reported by the engine.
func (m MergeOwnersCommand) Validate() error {
	errs := validation.Errors{}
	if !merge.Supported(domain.NormalizeOwnerKind(string(m.Kind))) {
		errs["kind"] = validation.NewError("polyglot.merge.kind_invalid", "kind must be artist, music or place")
	}
	if m.SelfID == uuid.Nil {
		errs["self"] = validation.NewError("polyglot.merge.self_required", "self is required")
	}
	if m.OtherID == uuid.Nil {
		errs["other"] = validation.NewError("polyglot.merge.other_required", "other is required")
	} else if m.OtherID == m.SelfID {
		errs["other"] = validation.NewError("polyglot.merge.same_owner", "other must differ from self")
	}
	if _, err := merge.ParsePriorities(m.Priorities); err != nil {
		errs["priorities"] = validation.NewError("polyglot.merge.priority_invalid", err.Error())
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Refs returns the owner references of both sides.
func (m MergeOwnersCommand) Refs() (domain.OwnerRef, domain.OwnerRef) {
	kind := domain.NormalizeOwnerKind(string(m.Kind))
	return domain.Ref(kind, m.SelfID), domain.Ref(kind, m.OtherID)
}

// DecodeMergeOwners validates a JSON request body and converts it into a command.
func DecodeMergeOwners(raw []byte) (MergeOwnersCommand, error) {
	req, err := polyvalidation.DecodeMergeRequest(raw)
	if err != nil {
		return MergeOwnersCommand{}, err
	}
	cmd := MergeOwnersCommand{
		Kind:       domain.NormalizeOwnerKind(req.Kind),
		Priorities: req.Priorities,
		Commit:     req.Commit,
	}
	// The schema already asserted the uuid format.
	cmd.SelfID = uuid.MustParse(req.Self)
	cmd.OtherID = uuid.MustParse(req.Other)
	if req.Actor != "" {
		cmd.Actor = uuid.MustParse(req.Actor)
	}
	return cmd, nil
}
