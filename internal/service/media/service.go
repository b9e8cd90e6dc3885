package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxFileSize = 5 * 1024 * 1024

var ErrorFileTooLarge = errors.New("file too large")
var ErrorExtensionNotAllowed = errors.New("file type not allowed")

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
}

var documentExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".txt": {},
}

// Upload describes a stored attachment as returned to the client.
type Upload struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// service stores chat attachments on the local filesystem under a single
// directory, served back at /media/.
type service struct {
	dir string
}

func New(dir string) (*service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &service{dir: dir}, nil
}

func (s *service) Dir() string {
	return s.dir
}

// Store validates and persists one attachment. The reader is consumed up to
// MaxFileSize+1 bytes; anything beyond the cap rejects the upload.
func (s *service) Store(filename string, r io.Reader) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mediaType, err := classify(ext)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("chat_%s%s", uuid.NewString(), ext)
	target := filepath.Join(s.dir, name)

	f, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("creating media file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		os.Remove(target)
		return nil, fmt.Errorf("writing media file: %w", err)
	}
	if written > MaxFileSize {
		os.Remove(target)
		return nil, ErrorFileTooLarge
	}

	return &Upload{
		URL:      "/media/" + name,
		Type:     mediaType,
		Filename: filename,
		Size:     written,
	}, nil
}

func classify(ext string) (string, error) {
	if _, ok := imageExtensions[ext]; ok {
		return "image", nil
	}
	if _, ok := documentExtensions[ext]; ok {
		return "document", nil
	}
	return "", fmt.Errorf("%w: %s", ErrorExtensionNotAllowed, ext)
}
