package storage

import (
	"context"
	"fmt"

	"github.com/goliatone/go-polyglot/internal/records"
	"github.com/goliatone/go-polyglot/internal/translations"
	"github.com/uptrace/bun"
)

type index struct {
	model   any
	name    string
	columns []string
	unique  bool
}

var indexes = []index{
	{model: (*translations.Translation)(nil), name: "idx_translations_owner_lang", columns: []string{"owner_kind", "owner_id", "langcode"}},
	{model: (*translations.Translation)(nil), name: "idx_translations_title", columns: []string{"owner_kind", "title"}},
	{model: (*records.Place)(nil), name: "idx_places_parent", columns: []string{"parent_id"}},
	{model: (*records.Engage)(nil), name: "idx_engages_artist", columns: []string{"artist_id"}},
	{model: (*records.Engage)(nil), name: "idx_engages_music", columns: []string{"music_id"}},
	{model: (*records.MusicAssoc)(nil), name: "idx_music_assocs_music", columns: []string{"music_id"}},
	{model: (*records.Performance)(nil), name: "idx_performances_artist", columns: []string{"artist_id"}},
	{model: (*records.Performance)(nil), name: "idx_performances_music", columns: []string{"music_id"}},
	{model: (*records.Channel)(nil), name: "idx_channels_owner", columns: []string{"channel_owner_id"}},
	{model: (*records.ReviewFlag)(nil), name: "idx_review_flags_owner", columns: []string{"owner_kind", "owner_id"}},
}

// EnsureSchema creates every table and index that does not exist yet.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range records.Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	for _, idx := range indexes {
		q := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists()
		if idx.unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("storage: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
