package gfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/windmap/internal/resilience"
	"github.com/i474232898/windmap/internal/store"
)

// ErrNotFound signals that the provider has not published a file yet. It is
// an expected outcome, not a failure.
var ErrNotFound = errors.New("forecast file not published")

// DownloadConfig describes the provider endpoint and the subset requested
// from it.
type DownloadConfig struct {
	BaseURL   string
	Variables []string // e.g. TMP, UGRD, VGRD
	Levels    []string // e.g. 10_m_above_ground, surface
}

// DownloadBridge fetches one (cycle, offset) grid from the provider into the
// raw area and hands it to the ConversionBridge.
type DownloadBridge struct {
	cfg       DownloadConfig
	httpCfg   resilience.HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
	store     *store.FileStore
	converter *ConversionBridge
	logger    *slog.Logger
}

// NewDownloadBridge creates a DownloadBridge using client for outbound calls.
func NewDownloadBridge(
	client *http.Client,
	cfg DownloadConfig,
	st *store.FileStore,
	converter *ConversionBridge,
	logger *slog.Logger,
) *DownloadBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &DownloadBridge{
		cfg: cfg,
		httpCfg: resilience.HTTPClientConfig{
			Client:  client,
			Backoff: resilience.DefaultBackoff,
		},
		circuit:   resilience.NewBreaker("nomads", NomadsBreaker()),
		store:     st,
		converter: converter,
		logger:    logger,
	}
}

// NomadsBreaker is the breaker policy for provider downloads. A half-open
// breaker admits a whole cycle, since every offset is requested at once.
func NomadsBreaker() resilience.BreakerConfig {
	cfg := resilience.DefaultBreaker
	cfg.MaxRequests = uint32(len(Offsets()))
	return cfg
}

// WithBreaker replaces the circuit breaker with one built from cfg.
func (d *DownloadBridge) WithBreaker(cfg resilience.BreakerConfig) *DownloadBridge {
	d.circuit = resilience.NewBreaker("nomads", cfg)
	return d
}

// WithBackoff overrides the retry policy.
func (d *DownloadBridge) WithBackoff(b resilience.BackoffConfig) *DownloadBridge {
	d.httpCfg.Backoff = b
	return d
}

// URL builds the filter request for one offset of a cycle, covering the full globe.
func (d *DownloadBridge) URL(c Cycle, offset int) string {
	values := url.Values{}
	values.Set("file", c.RemoteName(offset))
	for _, lev := range d.cfg.Levels {
		values.Set("lev_"+lev, "on")
	}
	for _, v := range d.cfg.Variables {
		values.Set("var_"+v, "on")
	}
	values.Set("leftlon", "0")
	values.Set("rightlon", "360")
	values.Set("toplat", "90")
	values.Set("bottomlat", "-90")
	values.Set("dir", c.RemoteDir())

	return fmt.Sprintf("%s?%s", d.cfg.BaseURL, values.Encode())
}

// Fetch downloads one offset of the cycle and converts it. It returns the raw
// file name, ErrNotFound when the provider has not published it yet, or any
// other error as fatal.
func (d *DownloadBridge) Fetch(ctx context.Context, c Cycle, offset int) (string, error) {
	name := c.RawName(offset)

	if err := d.store.EnsureRawDir(); err != nil {
		return "", err
	}

	u := d.URL(c, offset)
	resp, err := resilience.Do(ctx, d.httpCfg, d.circuit, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		if errors.Is(err, resilience.ErrNotFound) {
			d.logger.Info("file not found", "file", name)
			downloadsTotal.WithLabelValues("not_found").Inc()
			return "", ErrNotFound
		}
		d.logger.Error("error fetching file", "file", name, "error", err)
		downloadsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if err := d.store.WriteRaw(name, resp.Body); err != nil {
		d.logger.Error("error writing file", "file", name, "error", err)
		downloadsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	downloadsTotal.WithLabelValues("ok").Inc()
	d.logger.Debug("downloaded raw grid", "file", name)

	// Conversion failures are isolated to this file and already logged.
	_ = d.converter.ConvertAll(ctx, []string{name})

	return name, nil
}
