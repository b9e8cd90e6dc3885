package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

func (s *store) CreateUser(params *model.CreateUserParams) (*model.User, error) {
	res, err := s.db.Exec(`insert into users
		(username, password, display_name, gender, profile_pic)
		values(?, ?, ?, ?, ?)`,
		params.Username, params.Password, params.DisplayName, params.Gender, params.ProfilePic)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inserted user id: %w", err)
	}

	return s.UserByID(model.UserID(id))
}

func (s *store) UserByID(id model.UserID) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from users where id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

func (s *store) UserByUsername(username string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Get(user, `select * from users where username = ?`, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrorUserNotFound
		}
		return nil, fmt.Errorf("fetching user by username: %w", err)
	}
	return user, nil
}

func (s *store) UpdateUser(user *model.User) error {
	res, err := s.db.NamedExec(`update users set
		password = :password, display_name = :display_name, profile_pic = :profile_pic
		where id = :id`, user)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if rows, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	} else if rows != 1 {
		return model.ErrorUserNotFound
	}
	return nil
}

func (s *store) SetOnline(id model.UserID, online bool) error {
	_, err := s.db.Exec(`update users set is_online = ? where id = ?`, online, id)
	if err != nil {
		return fmt.Errorf("updating online flag: %w", err)
	}
	return nil
}

func (s *store) SearchUsers(query string, excluding model.UserID, limit int) ([]*model.User, error) {
	users := []*model.User{}
	err := s.db.Select(&users, `select * from users
		where username like ? and id != ?
		order by username limit ?`,
		"%"+query+"%", excluding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return users, nil
}

func (s *store) OnlineUserIDs() ([]model.UserID, error) {
	ids := []model.UserID{}
	err := s.db.Select(&ids, `select id from users where is_online = true`)
	if err != nil {
		return nil, fmt.Errorf("fetching online users: %w", err)
	}
	return ids, nil
}

// ResetOnline marks exactly the given users online and everyone else offline,
// in one transaction. Used to resync the database with the live registry.
func (s *store) ResetOnline(online []model.UserID) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`update users set is_online = false`); err != nil {
		return fmt.Errorf("clearing online flags: %w", err)
	}
	for _, id := range online {
		if _, err := tx.Exec(`update users set is_online = true where id = ?`, id); err != nil {
			return fmt.Errorf("setting online flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
