package gfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/i474232898/windmap/internal/store"
)

// Converter turns one raw grid file into a structured document at outPath.
type Converter interface {
	Convert(ctx context.Context, rawPath, outPath string) error
}

// ExecConverter runs the grib2json tool as an external process.
type ExecConverter struct {
	bin     string
	timeout time.Duration
}

// NewExecConverter creates an ExecConverter for the given binary. A zero
// timeout leaves the process bounded only by the caller's context.
func NewExecConverter(bin string, timeout time.Duration) *ExecConverter {
	return &ExecConverter{bin: bin, timeout: timeout}
}

func (c *ExecConverter) Convert(ctx context.Context, rawPath, outPath string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.bin, "--data", "--output", outPath, "--names", "--compact", rawPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if line := lastLine(stderr.String()); line != "" {
			return fmt.Errorf("%s failed: %s", c.bin, line)
		}
		return fmt.Errorf("%s failed: %w", c.bin, err)
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// ConversionBridge converts raw grid files into published documents and
// removes the raw file once its document is in place.
type ConversionBridge struct {
	store     *store.FileStore
	converter Converter
	logger    *slog.Logger
}

// NewConversionBridge creates a ConversionBridge.
func NewConversionBridge(st *store.FileStore, converter Converter, logger *slog.Logger) *ConversionBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversionBridge{
		store:     st,
		converter: converter,
		logger:    logger,
	}
}

// Convert converts a single raw file. On failure the raw file is kept and no
// document becomes visible.
func (b *ConversionBridge) Convert(ctx context.Context, rawName string) error {
	if err := b.store.EnsureDocDir(); err != nil {
		return err
	}

	docName := DocumentNameFor(rawName)
	tmp := b.store.TempDocumentPath(docName, uuid.NewString())

	if err := b.converter.Convert(ctx, b.store.RawPath(rawName), tmp); err != nil {
		b.store.DiscardTemp(tmp)
		return fmt.Errorf("convert %s: %w", rawName, err)
	}
	if err := b.store.PublishDocument(tmp, docName); err != nil {
		b.store.DiscardTemp(tmp)
		return err
	}

	if err := b.store.RemoveRaw(rawName); err != nil && !errors.Is(err, store.ErrNotFound) {
		b.logger.Warn("failed to remove raw file after conversion", "file", rawName, "error", err)
	}
	return nil
}

// ConvertAll converts names one after another. A failing file does not stop
// the rest; every failure is reported in the returned error.
func (b *ConversionBridge) ConvertAll(ctx context.Context, names []string) error {
	var result *multierror.Error

	for _, name := range names {
		if err := b.Convert(ctx, name); err != nil {
			b.logger.Error("conversion failed", "file", name, "error", err)
			conversionsTotal.WithLabelValues("error").Inc()
			result = multierror.Append(result, err)
			continue
		}
		b.logger.Info("converted raw grid", "file", name, "document", DocumentNameFor(name))
		conversionsTotal.WithLabelValues("ok").Inc()
	}

	return result.ErrorOrNil()
}
