package domain

// Member represents user's participation in a room.
// No transport or lifecycle logic here.
type Member struct {
	User UserID
	Room RoomID
}

// NewMember builds a Member.
func NewMember(user UserID, room RoomID) *Member {
	return &Member{User: user, Room: room}
}
