package models

import "time"

// Match statuses.
const (
	MatchActive    = "active"
	MatchUnmatched = "unmatched"
)

// Match records mutual interest between two users in a room.
// User1ID is always the lexicographically smaller id.
type Match struct {
	ID          string    `db:"id" json:"id"`
	User1ID     string    `db:"user1_id" json:"user1_id"`
	User2ID     string    `db:"user2_id" json:"user2_id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	Interest1ID *string   `db:"interest1_id" json:"interest1_id"`
	Interest2ID *string   `db:"interest2_id" json:"interest2_id"`
	Status      string    `db:"status" json:"status"`
	MatchedAt   time.Time `db:"matched_at" json:"matched_at"`
}

// PartnerOf returns the other user of the match.
func (m Match) PartnerOf(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// Involves reports whether userID is one of the matched users.
func (m Match) Involves(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// MatchKey is the canonical identity of a match: the two users ordered so that
// User1 < User2, with their interest ids following the same order.
type MatchKey struct {
	User1ID     string
	User2ID     string
	RoomID      string
	Interest1ID string
	Interest2ID string
}

// CanonicalMatchKey orders the pair (a, b) and their interests by user id.
func CanonicalMatchKey(userA, interestA, userB, interestB, roomID string) MatchKey {
	if userA < userB {
		return MatchKey{User1ID: userA, User2ID: userB, RoomID: roomID, Interest1ID: interestA, Interest2ID: interestB}
	}
	return MatchKey{User1ID: userB, User2ID: userA, RoomID: roomID, Interest1ID: interestB, Interest2ID: interestA}
}

// MatchView is what a user sees for one of their matches.
type MatchView struct {
	ID        string         `json:"id"`
	Partner   ProfileSummary `json:"partner"`
	Room      MatchRoom      `json:"room"`
	MatchedAt time.Time      `json:"matched_at"`
}

// MatchRoom is the room summary embedded in a match view.
type MatchRoom struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Place PlaceSummary `json:"place"`
}
