package chat

import (
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/Neeraj-0217/real-time-chat-app/internal/model"
)

const SearchLimit = 5

type MessageStore interface {
	Conversation(userA, userB model.UserID, limit, offset int) ([]*model.Message, error)
	SetTranslation(id model.MessageID, source, target, translated string) error
}

type PreferenceStore interface {
	Preference(user, friend model.UserID) (*model.ChatPreference, error)
	SetPreference(user, friend model.UserID, language string) error
}

type UserStore interface {
	SearchUsers(query string, excluding model.UserID, limit int) ([]*model.User, error)
}

// Presence answers live online state; the registry satisfies it.
type Presence interface {
	IsOnline(user model.UserID) bool
}

// Translator is the optional cross-language capability. A nil Translator
// disables translation entirely.
type Translator interface {
	DetectLanguage(text string) string
	Translate(text, target, source string) (string, error)
}

type service struct {
	messages    MessageStore
	preferences PreferenceStore
	users       UserStore
	presence    Presence
	translator  Translator
	logger      *log.Logger
}

func New(messages MessageStore, preferences PreferenceStore, users UserStore, presence Presence, translator Translator, logger *log.Logger) *service {
	return &service{
		messages:    messages,
		preferences: preferences,
		users:       users,
		presence:    presence,
		translator:  translator,
		logger:      logger,
	}
}

// History returns the conversation between user and friend, oldest first.
// When the user set a preferred language for this friend, incoming messages
// are translated into it; a failed translation leaves the original text in
// place and is only logged.
func (s *service) History(user, friend model.UserID, limit, offset int) ([]*model.Message, error) {
	msgs, err := s.messages.Conversation(user, friend, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("fetching conversation: %w", err)
	}

	if s.translator == nil {
		return msgs, nil
	}

	pref, err := s.preferences.Preference(user, friend)
	if err != nil {
		return nil, fmt.Errorf("fetching chat preference: %w", err)
	}
	if pref == nil {
		return msgs, nil
	}

	for _, msg := range msgs {
		// Only what the friend wrote gets translated for the reader.
		if msg.ReceiverID != user || msg.Content == "" {
			continue
		}
		s.translateMessage(msg, pref.PreferredLanguage)
	}

	return msgs, nil
}

func (s *service) translateMessage(msg *model.Message, target string) {
	// The cache only counts when it was produced for the same target
	// language; a preference change re-translates.
	if msg.IsTranslated && msg.TranslatedLang == target && msg.TranslatedContent != "" {
		return
	}

	source := s.translator.DetectLanguage(msg.Content)
	if source == target {
		// Hide any translation left over from a previous preference.
		msg.IsTranslated = false
		msg.TranslatedContent = ""
		msg.TranslatedLang = ""
		return
	}

	translated, err := s.translator.Translate(msg.Content, target, source)
	if err != nil {
		s.logger.Warnf("chat: translating message %d: %v", msg.ID, err)
		return
	}

	msg.OriginalLanguage = source
	msg.TranslatedContent = translated
	msg.TranslatedLang = target
	msg.IsTranslated = true

	if err := s.messages.SetTranslation(msg.ID, source, target, translated); err != nil {
		s.logger.Warnf("chat: caching translation for message %d: %v", msg.ID, err)
	}
}

// Search finds up to SearchLimit users matching query by username, excluding
// the caller, each annotated with its live online state.
func (s *service) Search(query string, self model.UserID) ([]*model.UserSummary, error) {
	users, err := s.users.SearchUsers(query, self, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}

	results := make([]*model.UserSummary, 0, len(users))
	for _, u := range users {
		results = append(results, &model.UserSummary{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			ProfilePic:  u.ProfilePic,
			IsOnline:    s.presence.IsOnline(u.ID),
		})
	}
	return results, nil
}

func (s *service) IsOnline(user model.UserID) bool {
	return s.presence.IsOnline(user)
}

func (s *service) SetPreference(user, friend model.UserID, language string) error {
	if _, ok := SupportedLanguage(language); !ok {
		return fmt.Errorf("unsupported language %q", language)
	}
	return s.preferences.SetPreference(user, friend, language)
}

// SupportedLanguage reports whether code is a language history translation
// can target.
func SupportedLanguage(code string) (string, bool) {
	switch code {
	case "en":
		return "English", true
	case "hi":
		return "Hindi", true
	case "es":
		return "Spanish", true
	}
	return "", false
}
