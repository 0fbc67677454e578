// Package catalog is the read side of the player pool drafts pick from.
package catalog

import (
	"context"
	"errors"
)

var ErrPlayerNotFound = errors.New("player not found")

type Player struct {
	ID       int64  `json:"id" yaml:"id" gorm:"primaryKey"`
	Name     string `json:"name" yaml:"name" gorm:"not null"`
	Position string `json:"position" yaml:"position"`
	Team     string `json:"team" yaml:"team"`
	College  string `json:"college" yaml:"college"`
	Verified bool   `json:"verified" yaml:"verified" gorm:"index"`
}

func (Player) TableName() string { return "players" }

type Catalog interface {
	GetByID(ctx context.Context, id int64) (Player, error)
	// ListVerified returns the verified pool ordered by id.
	ListVerified(ctx context.Context) ([]Player, error)
}
