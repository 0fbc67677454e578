package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/engine"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type draftRecord struct {
	ID               string `gorm:"primaryKey;size:36"`
	Name             string `gorm:"not null"`
	Status           string `gorm:"size:16;not null;index"`
	ParticipantCount int
	TotalRounds      int
	IsSnakeDraft     bool
	CurrentRound     int
	CurrentPick      int
	CreatedBy        string    `gorm:"size:50"`
	PIN              string    `gorm:"column:pin;size:4"`
	CreatedAt        time.Time `gorm:"index"`
	StartedAt        *time.Time
	CompletedAt      *time.Time

	Participants []participantRecord `gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE"`
	Picks        []pickRecord        `gorm:"foreignKey:DraftID;constraint:OnDelete:CASCADE"`
}

func (draftRecord) TableName() string { return "live_drafts" }

type participantRecord struct {
	ID         uint   `gorm:"primaryKey"`
	DraftID    string `gorm:"size:36;not null;uniqueIndex:idx_participant_position"`
	Position   string `gorm:"size:1;not null;uniqueIndex:idx_participant_position"`
	Nickname   string `gorm:"size:50;not null"`
	IsReady    bool
	IsVerified bool
	JoinedAt   time.Time
}

func (participantRecord) TableName() string { return "draft_participants" }

type pickRecord struct {
	ID          uint    `gorm:"primaryKey"`
	DraftID     string  `gorm:"size:36;not null;uniqueIndex:idx_pick_number;uniqueIndex:idx_pick_player"`
	PickNumber  int     `gorm:"not null;uniqueIndex:idx_pick_number"`
	RoundNumber int     `gorm:"not null"`
	Position    string  `gorm:"size:1;not null"`
	ForcedBy    *string `gorm:"size:1"`
	PlayerID    int64   `gorm:"not null;uniqueIndex:idx_pick_player"`
	PickedAt    time.Time
}

func (pickRecord) TableName() string { return "draft_picks" }

// Open connects to Postgres. Migrations are run separately by Migrate.
func Open(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	return p.db.WithContext(ctx).AutoMigrate(&draftRecord{}, &participantRecord{}, &pickRecord{})
}

func (p *Postgres) Create(ctx context.Context, d engine.Draft) error {
	rec := toRecord(d)
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create draft %s: %w", d.ID, err)
	}
	return nil
}

func (p *Postgres) FindByID(ctx context.Context, id string) (engine.Draft, error) {
	var rec draftRecord
	err := p.preloaded(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return engine.Draft{}, ErrDraftNotFound
	}
	if err != nil {
		return engine.Draft{}, fmt.Errorf("find draft %s: %w", id, err)
	}
	return rec.toDraft(), nil
}

func (p *Postgres) Save(ctx context.Context, d engine.Draft) error {
	rec := toRecord(d)
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&draftRecord{ID: d.ID}).
			Select("*").
			Omit(clause.Associations).
			Updates(&rec)
		if res.Error != nil {
			return fmt.Errorf("save draft %s: %w", d.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDraftNotFound
		}

		if err := tx.Where("draft_id = ?", d.ID).Delete(&participantRecord{}).Error; err != nil {
			return fmt.Errorf("save draft %s: clear participants: %w", d.ID, err)
		}
		if err := tx.Where("draft_id = ?", d.ID).Delete(&pickRecord{}).Error; err != nil {
			return fmt.Errorf("save draft %s: clear picks: %w", d.ID, err)
		}
		if len(rec.Participants) > 0 {
			if err := tx.Create(&rec.Participants).Error; err != nil {
				return fmt.Errorf("save draft %s: participants: %w", d.ID, err)
			}
		}
		if len(rec.Picks) > 0 {
			if err := tx.Create(&rec.Picks).Error; err != nil {
				return fmt.Errorf("save draft %s: picks: %w", d.ID, err)
			}
		}
		return nil
	})
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("draft_id = ?", id).Delete(&pickRecord{}).Error; err != nil {
			return fmt.Errorf("delete draft %s: picks: %w", id, err)
		}
		if err := tx.Where("draft_id = ?", id).Delete(&participantRecord{}).Error; err != nil {
			return fmt.Errorf("delete draft %s: participants: %w", id, err)
		}
		res := tx.Delete(&draftRecord{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete draft %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDraftNotFound
		}
		return nil
	})
}

func (p *Postgres) ListByStatus(ctx context.Context, status engine.Status) ([]engine.Draft, error) {
	var recs []draftRecord
	err := p.preloaded(ctx).
		Where("status = ?", string(status)).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list drafts by status %s: %w", status, err)
	}
	return toDrafts(recs), nil
}

func (p *Postgres) ListStaleLobbies(ctx context.Context, cutoff time.Time) ([]engine.Draft, error) {
	var recs []draftRecord
	err := p.preloaded(ctx).
		Where("status = ? AND created_at < ?", string(engine.StatusLobby), cutoff).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list stale lobbies: %w", err)
	}
	return toDrafts(recs), nil
}

func (p *Postgres) preloaded(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Picks", func(db *gorm.DB) *gorm.DB { return db.Order("pick_number") })
}

func toRecord(d engine.Draft) draftRecord {
	rec := draftRecord{
		ID:               d.ID,
		Name:             d.Name,
		Status:           string(d.Status),
		ParticipantCount: d.ParticipantCount,
		TotalRounds:      d.TotalRounds,
		IsSnakeDraft:     d.IsSnakeDraft,
		CurrentRound:     d.CurrentRound,
		CurrentPick:      d.CurrentPick,
		CreatedBy:        d.CreatedBy,
		PIN:              d.PIN,
		CreatedAt:        d.CreatedAt,
		StartedAt:        d.StartedAt,
		CompletedAt:      d.CompletedAt,
		Participants:     make([]participantRecord, 0, len(d.Participants)),
		Picks:            make([]pickRecord, 0, len(d.Picks)),
	}
	for _, p := range d.Participants {
		rec.Participants = append(rec.Participants, participantRecord{
			DraftID:    d.ID,
			Position:   p.Position,
			Nickname:   p.Nickname,
			IsReady:    p.IsReady,
			IsVerified: p.IsVerified,
			JoinedAt:   p.JoinedAt,
		})
	}
	for _, pk := range d.Picks {
		var forcedBy *string
		if pk.ForcedBy != "" {
			f := pk.ForcedBy
			forcedBy = &f
		}
		rec.Picks = append(rec.Picks, pickRecord{
			DraftID:     d.ID,
			PickNumber:  pk.PickNumber,
			RoundNumber: pk.RoundNumber,
			Position:    pk.Position,
			ForcedBy:    forcedBy,
			PlayerID:    pk.PlayerID,
			PickedAt:    pk.PickedAt,
		})
	}
	return rec
}

func (r draftRecord) toDraft() engine.Draft {
	d := engine.Draft{
		ID:               r.ID,
		Name:             r.Name,
		Status:           engine.Status(r.Status),
		ParticipantCount: r.ParticipantCount,
		TotalRounds:      r.TotalRounds,
		IsSnakeDraft:     r.IsSnakeDraft,
		CurrentRound:     r.CurrentRound,
		CurrentPick:      r.CurrentPick,
		CreatedBy:        r.CreatedBy,
		PIN:              r.PIN,
		CreatedAt:        r.CreatedAt,
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
		Participants:     make([]engine.Participant, 0, len(r.Participants)),
		Picks:            make([]engine.Pick, 0, len(r.Picks)),
	}
	for _, p := range r.Participants {
		d.Participants = append(d.Participants, engine.Participant{
			Position:   p.Position,
			Nickname:   p.Nickname,
			IsReady:    p.IsReady,
			IsVerified: p.IsVerified,
			JoinedAt:   p.JoinedAt,
		})
	}
	for _, pk := range r.Picks {
		var forcedBy string
		if pk.ForcedBy != nil {
			forcedBy = *pk.ForcedBy
		}
		d.Picks = append(d.Picks, engine.Pick{
			PickNumber:  pk.PickNumber,
			RoundNumber: pk.RoundNumber,
			Position:    pk.Position,
			ForcedBy:    forcedBy,
			PlayerID:    pk.PlayerID,
			PickedAt:    pk.PickedAt,
		})
	}
	return d
}

func toDrafts(recs []draftRecord) []engine.Draft {
	out := make([]engine.Draft, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toDraft())
	}
	return out
}
