package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/githubayushraj/My-Lobby-Backend/internal/core"
	"github.com/githubayushraj/My-Lobby-Backend/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	friendlyAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	friendlyIDLen    = 6
	friendlyAttempts = 8

	DefaultDescription = "New Meeting"
)

var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrFriendlyIDSpace = errors.New("could not generate a free friendly id")
)

// MeetingService is the meeting directory: it maps friendly codes to media
// rooms allocated on the media server.
type MeetingService struct {
	repo  core.MeetingRepository
	media core.MediaProvisioner
	now   func() time.Time
}

func NewMeetingService(repo core.MeetingRepository, media core.MediaProvisioner) *MeetingService {
	return &MeetingService{repo: repo, media: media, now: time.Now}
}

func (s *MeetingService) CreateMeeting(ctx context.Context, description string) (*domain.MeetingRoom, error) {
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}
	mediaRoomID, err := s.media.AllocateRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate media room: %w", err)
	}

	for range friendlyAttempts {
		id, err := newFriendlyID()
		if err != nil {
			return nil, err
		}
		room := &domain.MeetingRoom{
			FriendlyID:  id,
			MediaRoomID: mediaRoomID,
			Description: description,
			CreatedAt:   s.now().UTC(),
		}
		err = s.repo.Create(ctx, room)
		if errors.Is(err, core.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save meeting: %w", err)
		}
		log.Info().Str("module", "app.meetings").Str("friendly_id", id).Int64("media_room", mediaRoomID).Msg("meeting created")
		return room, nil
	}
	return nil, ErrFriendlyIDSpace
}

// FindMeeting looks a meeting up by its friendly code, ignoring case.
func (s *MeetingService) FindMeeting(ctx context.Context, friendlyID string) (*domain.MeetingRoom, error) {
	room, err := s.repo.Find(ctx, strings.ToUpper(strings.TrimSpace(friendlyID)))
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find meeting: %w", err)
	}
	return room, nil
}

// AllocateMediaRoom provisions a bare media room without a directory entry.
func (s *MeetingService) AllocateMediaRoom(ctx context.Context) (int64, error) {
	return s.media.AllocateRoom(ctx)
}

func newFriendlyID() (string, error) {
	var b strings.Builder
	base := big.NewInt(int64(len(friendlyAlphabet)))
	for range friendlyIDLen {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b.WriteByte(friendlyAlphabet[n.Int64()])
	}
	return b.String(), nil
}
