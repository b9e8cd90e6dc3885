package model

import "time"

type MessageID int64

type Message struct {
	ID                MessageID      `db:"id" json:"id"`
	SenderID          UserID         `db:"sender_id" json:"sender_id"`
	ReceiverID        UserID         `db:"receiver_id" json:"receiver_id"`
	Content           string         `db:"content" json:"content"`
	OriginalLanguage  string         `db:"original_language" json:"original_language,omitempty"`
	TranslatedContent string         `db:"translated_content" json:"translated_content,omitempty"`
	TranslatedLang    string         `db:"translated_language" json:"translated_language,omitempty"`
	IsTranslated      bool           `db:"is_translated" json:"is_translated"`
	MediaURL          string         `db:"media_url" json:"media_url,omitempty"`
	MediaType         string         `db:"media_type" json:"media_type"`
	Status            DeliveryStatus `db:"status" json:"status"`
	Timestamp         time.Time      `db:"timestamp" json:"timestamp"`
}

type CreateMessageParams struct {
	SenderID   UserID
	ReceiverID UserID
	Content    string
	MediaURL   string
	MediaType  string
	Status     DeliveryStatus
}
