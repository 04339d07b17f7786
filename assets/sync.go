package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/hollis-cloud/pyxis/metrics"
)

// Source describes where one boot asset comes from.
type Source struct {
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
	SHA256 string `yaml:"sha256"`
}

// Validate is
func (s *Source) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("source has no path")
	}
	if s.URL == "" {
		return fmt.Errorf("source %s has no url", s.Path)
	}
	return nil
}

// Syncer downloads missing boot assets into a served root.
type Syncer struct {
	root   string
	client *retryablehttp.Client
	logger *zap.Logger
}

// NewSyncer is
func NewSyncer(root string, logger *zap.Logger) *Syncer {
	client := retryablehttp.NewClient()
	client.RetryMax = 4
	client.Logger = newRHZapLogger(logger)

	return &Syncer{
		root:   root,
		client: client,
		logger: logger,
	}
}

// Sync downloads every source that is not already present below the root.
// Files already on disk are trusted; only fresh downloads are checksummed.
func (s *Syncer) Sync(ctx context.Context, sources []Source) error {
	for _, source := range sources {
		if err := source.Validate(); err != nil {
			return err
		}
		path := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(source.Path, "/")))
		if _, err := os.Stat(path); err == nil {
			s.logger.Debug("asset already present", zap.String("path", source.Path))
			continue
		}
		if err := s.download(ctx, source, path); err != nil {
			return fmt.Errorf("failed to sync %s: %w", source.Path, err)
		}
		metrics.AssetDownloads.Inc()
		s.logger.Info("downloaded asset", zap.String("path", source.Path), zap.String("url", source.URL))
	}
	return nil
}

func (s *Syncer) download(ctx context.Context, source Source, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodGet, source.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req = req.WithContext(ctx)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", source.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, source.URL)
	}

	tmp, err := ioutil.TempFile(filepath.Dir(path), ".sync-")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	sum := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, sum), resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if source.SHA256 != "" {
		got := hex.EncodeToString(sum.Sum(nil))
		if !strings.EqualFold(got, source.SHA256) {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, source.SHA256)
		}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}
