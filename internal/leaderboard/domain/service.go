package domain

import (
	"context"

	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

type Entry struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	PhotoURL  string `json:"photo_url,omitempty"`
	Points    int64  `json:"points"`
}

type Service interface {
	// Top returns the highest-scoring accounts, served from cache when one
	// is configured.
	Top(ctx context.Context, limit int) ([]Entry, error)

	// Rollup recomputes users.global_rank from current point balances. It
	// derives analytics state only; point balances and grants are never
	// touched.
	Rollup(ctx context.Context) error
}

func EntryFromUser(rank int, u userdomain.User) Entry {
	return Entry{
		Rank:      rank,
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		PhotoURL:  u.PhotoURL,
		Points:    u.Points,
	}
}
