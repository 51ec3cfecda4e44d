package records

import (
	"time"

	"github.com/goliatone/go-polyglot/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sex values follow ISO 5218.
const (
	SexUnknown       = 0
	SexMale          = 1
	SexFemale        = 2
	SexNotApplicable = 9
)

// EngageUnknown is the placeholder role used when the contribution is not known.
const EngageUnknown = "unknown"

// Artist is a performer or composer.
type Artist struct {
	bun.BaseModel `bun:"table:artists,alias:a"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Sex        int        `bun:"sex,notnull,default:0" json:"sex"`
	BirthYear  *int       `bun:"birth_year" json:"birth_year,omitempty"`
	BirthMonth *int       `bun:"birth_month" json:"birth_month,omitempty"`
	BirthDay   *int       `bun:"birth_day" json:"birth_day,omitempty"`
	PlaceID    *uuid.UUID `bun:"place_id,type:uuid" json:"place_id,omitempty"`
	Note       *string    `bun:"note" json:"note,omitempty"`
	UpdatedBy  uuid.UUID  `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (a *Artist) OwnerKind() domain.OwnerKind { return domain.OwnerKindArtist }
func (a *Artist) OwnerID() uuid.UUID          { return a.ID }
func (a *Artist) AssignOwnerID(id uuid.UUID)  { a.ID = id }
func (a *Artist) Ref() domain.OwnerRef        { return domain.Ref(domain.OwnerKindArtist, a.ID) }

// Music is a song or piece.
type Music struct {
	bun.BaseModel `bun:"table:musics,alias:m"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Year      *int       `bun:"year" json:"year,omitempty"`
	PlaceID   *uuid.UUID `bun:"place_id,type:uuid" json:"place_id,omitempty"`
	Note      *string    `bun:"note" json:"note,omitempty"`
	UpdatedBy uuid.UUID  `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (m *Music) OwnerKind() domain.OwnerKind { return domain.OwnerKindMusic }
func (m *Music) OwnerID() uuid.UUID          { return m.ID }
func (m *Music) AssignOwnerID(id uuid.UUID)  { m.ID = id }
func (m *Music) Ref() domain.OwnerRef        { return domain.Ref(domain.OwnerKindMusic, m.ID) }

// Place is a node of the place hierarchy. A place without parent is the
// unknown/world placeholder.
type Place struct {
	bun.BaseModel `bun:"table:places,alias:p"`

	ID        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ParentID  *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Note      *string    `bun:"note" json:"note,omitempty"`
	UpdatedBy uuid.UUID  `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (p *Place) OwnerKind() domain.OwnerKind { return domain.OwnerKindPlace }
func (p *Place) OwnerID() uuid.UUID          { return p.ID }
func (p *Place) AssignOwnerID(id uuid.UUID)  { p.ID = id }
func (p *Place) Ref() domain.OwnerRef        { return domain.Ref(domain.OwnerKindPlace, p.ID) }

// IsUnknown reports whether the place is a root placeholder.
func (p *Place) IsUnknown() bool {
	return p == nil || p.ParentID == nil
}

// Engage links an artist to a music with a role.
type Engage struct {
	bun.BaseModel `bun:"table:engages,alias:e"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ArtistID     uuid.UUID `bun:"artist_id,notnull,type:uuid" json:"artist_id"`
	MusicID      uuid.UUID `bun:"music_id,notnull,type:uuid" json:"music_id"`
	EngageHow    string    `bun:"engage_how,notnull" json:"engage_how"`
	Year         *int      `bun:"year" json:"year,omitempty"`
	Contribution *float64  `bun:"contribution" json:"contribution,omitempty"`
	Note         *string   `bun:"note" json:"note,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// MusicAssoc ties a music to a timestamp inside a video.
type MusicAssoc struct {
	bun.BaseModel `bun:"table:music_assocs,alias:ma"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	MusicID      uuid.UUID `bun:"music_id,notnull,type:uuid" json:"music_id"`
	VideoID      uuid.UUID `bun:"video_id,notnull,type:uuid" json:"video_id"`
	Timing       *int      `bun:"timing" json:"timing,omitempty"`
	Completeness *float64  `bun:"completeness" json:"completeness,omitempty"`
	Note         *string   `bun:"note" json:"note,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Performance records an artist playing a music at an event item.
type Performance struct {
	bun.BaseModel `bun:"table:performances,alias:pf"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	EventItemID uuid.UUID `bun:"event_item_id,notnull,type:uuid" json:"event_item_id"`
	ArtistID    uuid.UUID `bun:"artist_id,notnull,type:uuid" json:"artist_id"`
	MusicID     uuid.UUID `bun:"music_id,notnull,type:uuid" json:"music_id"`
	Instrument  string    `bun:"instrument,notnull" json:"instrument"`
	PlayRole    string    `bun:"play_role,notnull" json:"play_role"`
	CoverRatio  *float64  `bun:"cover_ratio" json:"cover_ratio,omitempty"`
	Note        *string   `bun:"note" json:"note,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// ChannelOwner marks an artist as owner of external channels.
type ChannelOwner struct {
	bun.BaseModel `bun:"table:channel_owners,alias:co"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	ArtistID   *uuid.UUID `bun:"artist_id,type:uuid,unique" json:"artist_id,omitempty"`
	Themselves bool       `bun:"themselves,notnull,default:false" json:"themselves"`
	Note       *string    `bun:"note" json:"note,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Channel is an external channel owned through a ChannelOwner.
type Channel struct {
	bun.BaseModel `bun:"table:channels,alias:ch"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ChannelOwnerID uuid.UUID `bun:"channel_owner_id,notnull,type:uuid" json:"channel_owner_id"`
	Platform       string    `bun:"platform,notnull" json:"platform"`
	Handle         string    `bun:"handle,notnull" json:"handle"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// ReviewFlag marks an owner as needing editorial attention.
type ReviewFlag struct {
	bun.BaseModel `bun:"table:review_flags,alias:rf"`

	ID        uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	OwnerKind domain.OwnerKind `bun:"owner_kind,notnull" json:"owner_kind"`
	OwnerID   uuid.UUID        `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Reason    string           `bun:"reason,notnull" json:"reason"`
	Resolved  bool             `bun:"resolved,notnull,default:false" json:"resolved"`
	Note      *string          `bun:"note" json:"note,omitempty"`
	CreatedAt time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
