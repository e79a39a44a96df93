package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DiskImageStore downloads pet pictures into a local directory and serves
// them back by filename.
type DiskImageStore struct {
	dir  string
	http *http.Client
}

// NewDiskImageStore creates the image directory if needed
func NewDiskImageStore(dir string, timeout time.Duration) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiskImageStore{
		dir:  dir,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// Filename builds the stored filename for a pet picture:
// <petName>-<typeNameWithoutSpaces><ext>, with .jpeg normalized to .jpg and
// anything other than .jpg/.png forced to .jpg.
func (s *DiskImageStore) Filename(petName, typeName, pictureURL string) string {
	ext := ".jpg"
	if parsed, err := url.Parse(pictureURL); err == nil {
		ext = strings.ToLower(path.Ext(parsed.Path))
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if ext != ".jpg" && ext != ".png" {
		ext = ".jpg"
	}

	return petName + "-" + strings.ReplaceAll(typeName, " ", "") + ext
}

// Download fetches the picture and writes it under the image directory
func (s *DiskImageStore) Download(ctx context.Context, pictureURL, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pictureURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	file, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}

// Remove deletes a stored picture; missing files are not an error
func (s *DiskImageStore) Remove(filename string) {
	if filename == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("filename", filename).Msg("Failed to remove image file")
	}
}

// Path returns the on-disk path of a stored picture and whether it exists
func (s *DiskImageStore) Path(filename string) (string, bool) {
	full := filepath.Join(s.dir, filename)
	if _, err := os.Stat(full); err != nil {
		return "", false
	}
	return full, true
}
