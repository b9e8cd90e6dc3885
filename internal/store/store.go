package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type store struct {
	db *sqlx.DB
}

// New opens (creating if necessary) the chat database at path.
func New(path string) (*store, error) {
	db, err := sqlx.Connect("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &store{db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return s, nil
}

func (s *store) Close() error {
	return s.db.Close()
}

func (s *store) createTables() error {
	_, err := s.db.Exec(`create table if not exists users(
		id           integer primary key autoincrement,
		username     text not null unique,
		password     text not null,
		display_name text not null,
		gender       text not null default '',
		profile_pic  text not null default '',
		is_online    boolean not null default false,
		created_at   datetime not null default current_timestamp
	)`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists contacts(
		id         integer primary key autoincrement,
		owner_id   integer not null references users(id),
		contact_id integer not null references users(id),
		added_at   datetime not null default current_timestamp
	)`)
	if err != nil {
		return fmt.Errorf("creating contacts table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists messages(
		id                 integer primary key autoincrement,
		sender_id          integer not null references users(id),
		receiver_id        integer not null references users(id),
		content            text not null default '',
		original_language  text not null default '',
		translated_content text not null default '',
		translated_language text not null default '',
		is_translated      boolean not null default false,
		media_url          text not null default '',
		media_type         text not null default 'text',
		status             text not null default 'sent',
		timestamp          datetime not null default current_timestamp
	)`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	_, err = s.db.Exec(`create table if not exists chat_preferences(
		id                 integer primary key autoincrement,
		user_id            integer not null references users(id),
		friend_id          integer not null references users(id),
		preferred_language text not null default 'en',
		unique(user_id, friend_id)
	)`)
	if err != nil {
		return fmt.Errorf("creating chat_preferences table: %w", err)
	}

	return nil
}
