// shipper.go mirrors activity entries to destinations outside the primary
// database. The trail in activity_log is authoritative; shipped copies exist
// because audit records have different consumers and retention than
// application logs: a security team's SIEM or a compliance archive can
// ingest the mirror without touching the registry database. Shipping is
// best-effort: a destination failure is reported to the caller (which logs
// and moves on) and never blocks the recorded mutation.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/student-registry/student-registry/internal/db/models"
)

// Shipper sends activity entries to an external destination.
type Shipper interface {
	// Ship sends one entry to the destination
	Ship(ctx context.Context, entry *models.ActivityEntry) error
	// Close cleans up any resources
	Close() error
}

// ShipperConfig holds configuration for one shipper destination.
type ShipperConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Type    string         `mapstructure:"type"` // "file" or "webhook"
	File    *FileConfig    `mapstructure:"file"`
	Webhook *WebhookConfig `mapstructure:"webhook"`
}

// FileConfig holds file shipper configuration.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// WebhookConfig holds webhook shipper configuration.
type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

// NewShipper builds a shipper fan-out from configuration. It returns nil (no
// shipping) when no destination is enabled.
func NewShipper(configs []ShipperConfig) (Shipper, error) {
	shippers := make([]Shipper, 0, len(configs))

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		var (
			s   Shipper
			err error
		)
		switch cfg.Type {
		case "file":
			if cfg.File == nil {
				return nil, fmt.Errorf("file config is required for file shipper")
			}
			s, err = NewFileShipper(cfg.File)
		case "webhook":
			if cfg.Webhook == nil {
				return nil, fmt.Errorf("webhook config is required for webhook shipper")
			}
			s = NewWebhookShipper(cfg.Webhook)
		default:
			return nil, fmt.Errorf("unknown shipper type: %s", cfg.Type)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create %s shipper: %w", cfg.Type, err)
		}

		shippers = append(shippers, s)
	}

	if len(shippers) == 0 {
		return nil, nil
	}
	return &multiShipper{shippers: shippers}, nil
}

// multiShipper fans one entry out to every configured destination.
type multiShipper struct {
	shippers []Shipper
}

func (ms *multiShipper) Ship(ctx context.Context, entry *models.ActivityEntry) error {
	var lastErr error
	for _, s := range ms.shippers {
		if err := s.Ship(ctx, entry); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (ms *multiShipper) Close() error {
	var lastErr error
	for _, s := range ms.shippers {
		if err := s.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// FileShipper appends entries as JSON lines to a local file, rotating when the
// configured size is exceeded.
type FileShipper struct {
	cfg  *FileConfig
	file *os.File
	mu   sync.Mutex
}

// NewFileShipper opens (or creates) the destination file for appending.
func NewFileShipper(cfg *FileConfig) (*FileShipper, error) {
	file, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit mirror file: %w", err)
	}

	return &FileShipper{cfg: cfg, file: file}, nil
}

// Ship writes one entry as a JSON line.
func (fs *FileShipper) Ship(_ context.Context, entry *models.ActivityEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.cfg.MaxSizeMB > 0 {
		info, err := fs.file.Stat()
		if err == nil && info.Size() > int64(fs.cfg.MaxSizeMB)*1024*1024 {
			if err := fs.rotate(); err != nil {
				return fmt.Errorf("failed to rotate audit mirror: %w", err)
			}
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write activity entry: %w", err)
	}

	return nil
}

func (fs *FileShipper) rotate() error {
	if err := fs.file.Close(); err != nil {
		return err
	}

	for i := fs.cfg.MaxBackups - 1; i >= 1; i-- {
		_ = os.Rename(fmt.Sprintf("%s.%d", fs.cfg.Path, i), fmt.Sprintf("%s.%d", fs.cfg.Path, i+1))
	}
	_ = os.Rename(fs.cfg.Path, fs.cfg.Path+".1")
	if fs.cfg.MaxBackups > 0 {
		_ = os.Remove(fmt.Sprintf("%s.%d", fs.cfg.Path, fs.cfg.MaxBackups+1))
	}

	file, err := os.OpenFile(fs.cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	fs.file = file
	return nil
}

// Close closes the file.
func (fs *FileShipper) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.file.Close()
}

// WebhookShipper POSTs entries one at a time to an HTTP endpoint.
type WebhookShipper struct {
	cfg    *WebhookConfig
	client *http.Client
}

// NewWebhookShipper creates a webhook shipper with the configured timeout.
func NewWebhookShipper(cfg *WebhookConfig) *WebhookShipper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &WebhookShipper{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Ship sends one entry as a JSON POST body.
func (ws *WebhookShipper) Ship(ctx context.Context, entry *models.ActivityEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range ws.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := ws.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// Close is a no-op for the webhook shipper.
func (ws *WebhookShipper) Close() error {
	return nil
}
