package core

import (
	"context"
	"errors"

	"github.com/githubayushraj/My-Lobby-Backend/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// MeetingRepository stores meeting directory records keyed by friendly id.
type MeetingRepository interface {
	// Create fails with ErrDuplicate when the friendly id is taken.
	Create(ctx context.Context, room *domain.MeetingRoom) error
	// Find returns ErrNotFound when no record exists.
	Find(ctx context.Context, friendlyID string) (*domain.MeetingRoom, error)
}

// MediaProvisioner allocates rooms on the external media server.
type MediaProvisioner interface {
	AllocateRoom(ctx context.Context) (int64, error)
}
