// internal/stages/ingest/fetch-remote-data/handler.go
package fetchremotedata

import (
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "fetch-remote-data"
)

// Downloader copies the body of a GET request to dst.
type Downloader interface {
	Download(ctx context.Context, url string, dst io.Writer) (int64, error)
}

type Handler struct {
	config *Config
	logger logger.Logger
	client Downloader
}

func NewHandler(config *Config, log logger.Logger, client Downloader) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		client: client,
	}
}

func (h *Handler) Name() string { return TaskType }

func (h *Handler) Execute(ctx context.Context, st *pipeline.State) error {
	output, err := h.execute(ctx, st)
	if err != nil {
		return err
	}
	if output.Skipped {
		h.logger.Debug("No online data links configured", nil)
		return nil
	}
	h.logger.Info("Remote data fetched", map[string]interface{}{
		"targetDataFile": output.TargetDataFile,
		"modelFiles":     output.ModelFiles,
		"failedModels":   output.FailedModels,
		"bytes":          output.Bytes,
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, st *pipeline.State) (*Output, error) {
	cfg := st.Config
	out := &Output{}
	if cfg.TargetDataLink == "" && cfg.ModelOutputLink == "" {
		out.Skipped = true
		return out, nil
	}

	if link := cfg.TargetDataLink; link != "" {
		dir := filepath.Join(h.config.CacheDir, "target-data")
		if err := resetDir(dir); err != nil {
			return nil, apperrors.NewFetchFailedError(link, err)
		}
		dst := filepath.Join(dir, TargetFileName(link))
		n, err := h.fetch(ctx, link, dst)
		if err != nil {
			return nil, apperrors.NewFetchFailedError(link, err)
		}
		out.TargetDataFile = dst
		out.Bytes += n
		st.TargetDataDir = dir
	}

	if link := cfg.ModelOutputLink; link != "" {
		dir := filepath.Join(h.config.CacheDir, "model-output")
		if err := resetDir(dir); err != nil {
			return nil, apperrors.NewFetchFailedError(link, err)
		}

		var (
			mu     sync.Mutex
			failed = make(map[string]bool)
			bytes  atomic.Int64
			done   atomic.Int32
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(h.config.Concurrency)
		for _, m := range cfg.Models {
			name := m.Name
			g.Go(func() error {
				u := ModelURL(link, name)
				dst := filepath.Join(dir, name, name+".csv")
				n, err := h.fetch(gctx, u, dst)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					h.logger.Warn("Model download failed", map[string]interface{}{"model": name, "url": u, "error": err.Error()})
					mu.Lock()
					failed[name] = true
					mu.Unlock()
					return nil
				}
				bytes.Add(n)
				done.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// Report failures in config order.
		for _, m := range cfg.Models {
			if failed[m.Name] {
				out.FailedModels = append(out.FailedModels, m.Name)
				st.Warn("Could not download model output for '%s'", m.Name)
			}
		}
		out.ModelFiles = int(done.Load())
		out.Bytes += bytes.Load()
		st.ModelOutputDir = dir
	}
	return out, nil
}

// fetch downloads u into dst through a temporary file.
func (h *Handler) fetch(ctx context.Context, u, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := h.client.Download(ctx, u, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, err
	}
	h.logger.Debug("Downloaded", map[string]interface{}{"url": u, "file": dst, "bytes": n})
	return n, nil
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// ModelURL substitutes the escaped model name for every placeholder.
func ModelURL(link, model string) string {
	return strings.ReplaceAll(link, ModelPlaceholder, url.PathEscape(model))
}

// TargetFileName names the cached target-data file after the last URL path
// segment when it is a CSV file.
func TargetFileName(link string) string {
	if u, err := url.Parse(link); err == nil {
		if base := path.Base(u.Path); strings.HasSuffix(strings.ToLower(base), ".csv") {
			return base
		}
	}
	return "target-data.csv"
}
