package artwork

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/lmoretti/waxshelf/src/features/config"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// Service downloads cover images, resizes them to thumbnail size and caches
// the result on disk so repeated views don't refetch from the catalog CDN.
type Service struct {
	config     *config.Manager
	httpClient *http.Client
}

// NewService creates a new artwork service
func NewService(config *config.Manager) *Service {
	return &Service{
		config:     config,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Thumbnail returns the resized JPEG thumbnail for the given image URL, from
// the disk cache when a fresh entry exists.
func (s *Service) Thumbnail(imageURL string) ([]byte, string, error) {
	if imageURL == "" {
		return nil, "", fmt.Errorf("empty artwork URL")
	}

	cfg := s.config.Get().Artwork
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "waxshelf-artwork")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	hash := md5.Sum([]byte(imageURL))
	cachePath := filepath.Join(cacheDir, fmt.Sprintf("%x.jpg", hash))

	// Cache entries are good for 24 hours.
	if info, err := os.Stat(cachePath); err == nil {
		if time.Since(info.ModTime()) < 24*time.Hour {
			data, err := os.ReadFile(cachePath)
			if err == nil {
				slog.Debug("Using cached artwork", "path", cachePath)
				return data, "image/jpeg", nil
			}
		}
		os.Remove(cachePath)
	}

	slog.Debug("Downloading artwork", "url", imageURL)
	data, err := s.download(imageURL)
	if err != nil {
		return nil, "", err
	}

	thumb, err := s.shrink(data)
	if err != nil {
		return nil, "", err
	}

	if err := os.WriteFile(cachePath, thumb, 0644); err != nil {
		slog.Warn("Failed to cache artwork", "path", cachePath, "error", err)
	}
	return thumb, "image/jpeg", nil
}

func (s *Service) download(imageURL string) ([]byte, error) {
	resp, err := s.httpClient.Get(imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// shrink decodes the image and re-encodes it as a JPEG thumbnail.
func (s *Service) shrink(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}

	cfg := s.config.Get().Artwork
	size := cfg.Size
	if size <= 0 {
		size = 300
	}
	quality := cfg.Quality
	if quality <= 0 {
		quality = 85
	}

	resized := resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode artwork image: %w", err)
	}
	return buf.Bytes(), nil
}
