// Package storage keeps uploaded media on the local filesystem under a single root.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/CrownKira/recipe-app-api/pkg/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// RecipeImageDir is the directory, relative to the media root, holding recipe images.
const RecipeImageDir = "uploads/recipe"

var (
	ErrNotImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	ErrTooLarge = errors.New("uploaded file is too large")
)

// Storage writes files below Root and builds their public URLs from BaseURL.
type Storage struct {
	root    string
	baseURL string
	maxSize int64
}

var defaultStorage *Storage

// New prepares the media root and returns a Storage for it.
func New(cfg *config.MediaConfig) (*Storage, error) {
	if err := os.MkdirAll(filepath.Join(cfg.Root, filepath.FromSlash(RecipeImageDir)), 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Storage{
		root:    cfg.Root,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		maxSize: cfg.MaxUploadSize,
	}, nil
}

// Initialize sets the storage returned by Get.
func Initialize(cfg *config.MediaConfig) error {
	s, err := New(cfg)
	if err != nil {
		return err
	}
	defaultStorage = s
	return nil
}

// Get returns the storage configured by Initialize.
func Get() *Storage {
	return defaultStorage
}

// Root returns the filesystem directory served as media.
func (s *Storage) Root() string {
	return s.root
}

// SaveRecipeImage validates r as an image and stores it under a generated unique name.
// It returns the path relative to the media root.
func (s *Storage) SaveRecipeImage(r io.Reader, title string) (string, error) {
	limit := s.maxSize
	if limit <= 0 {
		limit = 10 << 20
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotImage
	}

	name := uuid.NewString() + extension(format)
	if prefix := slug.Make(title); prefix != "" {
		name = prefix + "-" + name
	}
	rel := path.Join(RecipeImageDir, name)

	if err := os.WriteFile(s.Path(rel), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return rel, nil
}

// Path maps a stored relative path to its location on disk.
func (s *Storage) Path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// URL returns the public URL for a stored relative path, or "" when rel is empty.
func (s *Storage) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.baseURL + "/" + rel
}

// Delete removes a stored file. Missing files are not an error.
func (s *Storage) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	if err := os.Remove(s.Path(rel)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ""
	default:
		return "." + format
	}
}
