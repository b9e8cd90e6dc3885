package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

// Preference returns the chat preference for (user, friend), or nil when the
// user never set one.
func (s *store) Preference(user, friend model.UserID) (*model.ChatPreference, error) {
	pref := &model.ChatPreference{}
	err := s.db.Get(pref, `select * from chat_preferences
		where user_id = ? and friend_id = ?`, user, friend)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching chat preference: %w", err)
	}
	return pref, nil
}

func (s *store) SetPreference(user, friend model.UserID, language string) error {
	_, err := s.db.Exec(`insert into chat_preferences(user_id, friend_id, preferred_language)
		values(?, ?, ?)
		on conflict(user_id, friend_id) do update set preferred_language = excluded.preferred_language`,
		user, friend, language)
	if err != nil {
		return fmt.Errorf("storing chat preference: %w", err)
	}
	return nil
}
