package store

import (
	"fmt"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

func (s *store) ContactExists(owner, contact model.UserID) (bool, error) {
	var count int
	err := s.db.Get(&count, `select count(*) from contacts
		where owner_id = ? and contact_id = ?`, owner, contact)
	if err != nil {
		return false, fmt.Errorf("checking contact: %w", err)
	}
	return count > 0, nil
}

// CreateContactPair inserts both edges a->b and b->a in one transaction.
func (s *store) CreateContactPair(a, b model.UserID) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`insert into contacts(owner_id, contact_id) values(?, ?)`, a, b); err != nil {
		return fmt.Errorf("inserting contact: %w", err)
	}
	if _, err := tx.Exec(`insert into contacts(owner_id, contact_id) values(?, ?)`, b, a); err != nil {
		return fmt.Errorf("inserting reverse contact: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *store) ContactsByOwner(owner model.UserID) ([]*model.Contact, error) {
	contacts := []*model.Contact{}
	err := s.db.Select(&contacts, `select * from contacts where owner_id = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("fetching contacts by owner: %w", err)
	}
	return contacts, nil
}

func (s *store) ContactsByContact(contact model.UserID) ([]*model.Contact, error) {
	contacts := []*model.Contact{}
	err := s.db.Select(&contacts, `select * from contacts where contact_id = ?`, contact)
	if err != nil {
		return nil, fmt.Errorf("fetching contacts by contact: %w", err)
	}
	return contacts, nil
}
