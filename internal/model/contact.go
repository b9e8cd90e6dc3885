package model

import "time"

// Contact is a directed owner -> contact edge. The relay creates both
// directions the first time two users exchange a message, so presence
// notifications reach peers on either side of the relationship.
type Contact struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   UserID    `db:"owner_id" json:"owner_id"`
	ContactID UserID    `db:"contact_id" json:"contact_id"`
	AddedAt   time.Time `db:"added_at" json:"added_at"`
}

// ChatPreference holds a user's per-friend chat settings, currently just the
// language their incoming history should be translated into.
type ChatPreference struct {
	ID                int64  `db:"id" json:"id"`
	UserID            UserID `db:"user_id" json:"user_id"`
	FriendID          UserID `db:"friend_id" json:"friend_id"`
	PreferredLanguage string `db:"preferred_language" json:"preferred_language"`
}
