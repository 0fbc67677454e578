package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Migrate(ctx context.Context) error {
	return g.db.WithContext(ctx).AutoMigrate(&Player{})
}

// Seed upserts players by id.
func (g *Gorm) Seed(ctx context.Context, players []Player) error {
	if len(players) == 0 {
		return nil
	}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&players).Error
	if err != nil {
		return fmt.Errorf("seed players: %w", err)
	}
	return nil
}

func (g *Gorm) GetByID(ctx context.Context, id int64) (Player, error) {
	var p Player
	err := g.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("get player %d: %w", id, err)
	}
	return p, nil
}

func (g *Gorm) ListVerified(ctx context.Context) ([]Player, error) {
	var players []Player
	err := g.db.WithContext(ctx).
		Where("verified = ?", true).
		Order("id").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("list verified players: %w", err)
	}
	return players, nil
}
