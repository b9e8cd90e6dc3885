package translate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
)

// SupportedLanguages is the whitelist detection may return.
var SupportedLanguages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"es": "Spanish",
}

var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// spanish function words that rarely appear in English text
var spanishMarkers = map[string]struct{}{
	"el": {}, "la": {}, "los": {}, "las": {}, "es": {}, "está": {},
	"que": {}, "como": {}, "pero": {}, "porque": {}, "gracias": {},
	"hola": {}, "adiós": {}, "buenos": {}, "días": {}, "noches": {},
	"una": {}, "tú": {}, "usted": {}, "muy": {}, "también": {},
}

// service detects languages and translates text through an external
// translation endpoint. Every failure path falls back to the original text;
// translation must never block or break message delivery.
type service struct {
	endpoint string
	client   *http.Client

	mu    sync.Mutex
	cache map[string]string
}

func New(endpoint string) *service {
	return &service{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		cache:    make(map[string]string),
	}
}

// DetectLanguage guesses the language of text, returning "en" whenever it
// cannot tell. Detection is script-based for Hindi and marker-word based for
// Spanish, mirroring the narrow language set the product supports.
func (s *service) DetectLanguage(text string) string {
	clean := cleanForDetection(text)
	if len(clean) < 3 {
		return "en"
	}

	for _, r := range clean {
		if unicode.Is(unicode.Devanagari, r) {
			return "hi"
		}
	}

	words := strings.Fields(strings.ToLower(clean))
	hits := 0
	for _, w := range words {
		if _, ok := spanishMarkers[w]; ok {
			hits++
		}
	}
	detected := "en"
	if len(words) > 0 && hits*4 >= len(words) {
		detected = "es"
	}

	if _, ok := SupportedLanguages[detected]; !ok {
		return "en"
	}
	return detected
}

// Translate renders text in the target language. The source language is
// detected when empty. On any failure the original text comes back together
// with the error, so callers can always show something.
func (s *service) Translate(text, target, source string) (string, error) {
	if source == "" {
		source = s.DetectLanguage(text)
	}
	if source == target || text == "" {
		return text, nil
	}

	key := source + "_" + target + "_" + text
	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	translated, err := s.request(text, target, source)
	if err != nil {
		return text, fmt.Errorf("translating text: %w", err)
	}

	s.mu.Lock()
	s.cache[key] = translated
	s.mu.Unlock()

	return translated, nil
}

func (s *service) request(text, target, source string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	resp, err := s.client.Get(s.endpoint + "?" + params.Encode())
	if err != nil {
		return "", fmt.Errorf("calling translation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation endpoint returned %d", resp.StatusCode)
	}

	// Response shape is [[["translated","original",...],...],...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decoding translation segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			return "", fmt.Errorf("decoding translation segment: %w", err)
		}
		sb.WriteString(part)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated text in response")
	}
	return sb.String(), nil
}

func cleanForDetection(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	var sb strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
