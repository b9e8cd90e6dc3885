package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

func (s *store) CreateMessage(params *model.CreateMessageParams) (*model.Message, error) {
	res, err := s.db.Exec(`insert into messages
		(sender_id, receiver_id, content, media_url, media_type, status)
		values(?, ?, ?, ?, ?, ?)`,
		params.SenderID, params.ReceiverID, params.Content,
		params.MediaURL, params.MediaType, params.Status)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inserted message id: %w", err)
	}

	return s.MessageByID(model.MessageID(id))
}

func (s *store) MessageByID(id model.MessageID) (*model.Message, error) {
	msg := &model.Message{}
	err := s.db.Get(msg, `select * from messages where id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorMessageNotFound
		}
		return nil, fmt.Errorf("fetching message: %w", err)
	}
	return msg, nil
}

func (s *store) UpdateMessageStatus(id model.MessageID, status model.DeliveryStatus) error {
	res, err := s.db.Exec(`update messages set status = ? where id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating message status: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return model.ErrorMessageNotFound
	}
	return nil
}

// PendingMessages returns every message addressed to receiver still in the
// sent state, oldest first. The relay sweeps these to delivered on connect.
func (s *store) PendingMessages(receiver model.UserID) ([]*model.Message, error) {
	msgs := []*model.Message{}
	err := s.db.Select(&msgs, `select * from messages
		where receiver_id = ? and status = ?
		order by timestamp asc`, receiver, model.StatusSent)
	if err != nil {
		return nil, fmt.Errorf("fetching pending messages: %w", err)
	}
	return msgs, nil
}

func (s *store) Conversation(userA, userB model.UserID, limit, offset int) ([]*model.Message, error) {
	msgs := []*model.Message{}
	err := s.db.Select(&msgs, `select * from messages
		where (sender_id = ? and receiver_id = ?)
		   or (sender_id = ? and receiver_id = ?)
		order by timestamp asc, id asc
		limit ? offset ?`,
		userA, userB, userB, userA, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetching conversation: %w", err)
	}
	return msgs, nil
}

// SetTranslation stores a cached translation alongside the original content.
// The target language is kept so a later preference change invalidates the
// cache instead of serving a translation into the wrong language.
func (s *store) SetTranslation(id model.MessageID, source, target, translated string) error {
	_, err := s.db.Exec(`update messages set
		original_language = ?, translated_language = ?, translated_content = ?, is_translated = true
		where id = ?`, source, target, translated, id)
	if err != nil {
		return fmt.Errorf("storing translation: %w", err)
	}
	return nil
}
