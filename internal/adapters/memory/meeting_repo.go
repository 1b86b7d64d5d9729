package memory

import (
	"context"
	"sync"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/domain"
)

// MeetingRepository keeps meetings for the lifetime of the process.
type MeetingRepository struct {
	mu       sync.RWMutex
	meetings map[string]domain.MeetingRoom
}

func NewMeetingRepository() *MeetingRepository {
	return &MeetingRepository{
		meetings: make(map[string]domain.MeetingRoom),
	}
}

func (r *MeetingRepository) Create(ctx context.Context, room *domain.MeetingRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[room.FriendlyID]; ok {
		return core.ErrDuplicate
	}
	r.meetings[room.FriendlyID] = *room
	return nil
}

func (r *MeetingRepository) Find(ctx context.Context, friendlyID string) (*domain.MeetingRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.meetings[friendlyID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &room, nil
}

