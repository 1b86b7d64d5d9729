package domain

import "time"

// RoomID identifies a signaling room. Clients use the media room id handed
// out by the meeting directory.
type RoomID string

// ParseRoomID follows the same rules as ParseUserID.
func ParseRoomID(raw string) (RoomID, error) {
	if len(raw) == 0 {
		return "", ErrRoomIDEmpty
	}
	if len(raw) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(raw), nil
}

// MeetingRoom is a meeting directory record: a human friendly code mapped to
// the numeric room allocated on the media server.
type MeetingRoom struct {
	FriendlyID  string    `json:"friendlyRoomId"`
	MediaRoomID int64     `json:"janusRoomId"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
