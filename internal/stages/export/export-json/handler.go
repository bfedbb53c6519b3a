// internal/stages/export/export-json/handler.go
package exportjson

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/mobs-lab/hubverse-dashboards/internal/common/errors"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/logger"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/metrics"
	"github.com/mobs-lab/hubverse-dashboards/internal/common/validation"
	"github.com/mobs-lab/hubverse-dashboards/internal/models"
	"github.com/mobs-lab/hubverse-dashboards/internal/pipeline"
)

const (
	TaskType = "export-json"
)

//go:embed schema/*.json
var schemaFS embed.FS

type Handler struct {
	config         *Config
	logger         logger.Logger
	metrics        *metrics.Metrics
	metadataSchema *validation.Schema
	periodSchema   *validation.Schema
}

func NewHandler(config *Config, log logger.Logger, m *metrics.Metrics) (*Handler, error) {
	h := &Handler{
		config:  config,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
		metrics: m,
	}
	var err error
	if h.metadataSchema, err = loadSchema("metadata"); err != nil {
		return nil, err
	}
	if h.periodSchema, err = loadSchema("period"); err != nil {
		return nil, err
	}
	return h, nil
}

func loadSchema(name string) (*validation.Schema, error) {
	raw, err := schemaFS.ReadFile("schema/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s schema: %w", name, err)
	}
	return validation.CompileSchema(name, raw)
}

func (h *Handler) Name() string { return TaskType }

func (h *Handler) Execute(ctx context.Context, st *pipeline.State) error {
	output, err := h.execute(ctx, st)
	if err != nil {
		return err
	}
	h.logger.Info("Dashboard data exported", map[string]interface{}{
		"outputDir": output.OutputDir,
		"files":     len(output.Files),
	})
	return nil
}

func (h *Handler) execute(ctx context.Context, st *pipeline.State) (*Output, error) {
	if st.Metadata == nil {
		return nil, apperrors.NewExportFailedError(st.OutputDir, fmt.Errorf("metadata has not been built"))
	}
	if err := h.validate(h.metadataSchema, MetadataFile, st.Metadata); err != nil {
		return nil, err
	}

	periodsDir := filepath.Join(st.OutputDir, h.config.PeriodsDir)
	if err := os.RemoveAll(periodsDir); err != nil {
		return nil, apperrors.NewExportFailedError(periodsDir, err)
	}
	if err := os.MkdirAll(periodsDir, 0o755); err != nil {
		return nil, apperrors.NewExportFailedError(periodsDir, err)
	}

	out := &Output{OutputDir: st.OutputDir}
	if err := h.write(st, out, filepath.Join(st.OutputDir, MetadataFile), st.Metadata); err != nil {
		return nil, err
	}

	for _, part := range st.Partitions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := toPeriodFile(part)
		name := PeriodFileName(part.Period.ID)
		if err := h.validate(h.periodSchema, name, doc); err != nil {
			return nil, err
		}
		if err := h.write(st, out, filepath.Join(periodsDir, name), doc); err != nil {
			return nil, err
		}
	}

	manifest := &Manifest{
		RunID:       st.RunID,
		GeneratedAt: models.FormatISO(time.Now().UTC()),
		Mode:        st.Mode,
		Fingerprint: st.Fingerprint,
		Files:       append([]string{}, out.Files...),
	}
	if err := h.write(st, out, filepath.Join(st.OutputDir, ManifestFile), manifest); err != nil {
		return nil, err
	}
	return out, nil
}

// PeriodFileName maps a period ID to its file name under periods/.
func PeriodFileName(periodID string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return r.Replace(periodID) + ".json"
}

func (h *Handler) validate(schema *validation.Schema, name string, doc interface{}) error {
	if !h.config.ValidateSchema {
		return nil
	}
	result, err := schema.Validate(doc)
	if err != nil {
		return apperrors.NewSchemaValidationFailedError(fmt.Sprintf("%s: %v", name, err))
	}
	if !result.Valid {
		return apperrors.NewSchemaValidationFailedError(fmt.Sprintf("%s: %s", name, strings.Join(result.GetErrorMessages(), "; ")))
	}
	return nil
}

// write encodes v to path through a temporary file and records the path
// relative to the output directory.
func (h *Handler) write(st *pipeline.State, out *Output, path string, v interface{}) error {
	var (
		raw []byte
		err error
	)
	if h.config.Indent {
		raw, err = json.MarshalIndent(v, "", "  ")
	} else {
		raw, err = json.Marshal(v)
	}
	if err != nil {
		return apperrors.NewExportFailedError(path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.NewExportFailedError(path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return apperrors.NewExportFailedError(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.NewExportFailedError(path, err)
	}

	rel, err := filepath.Rel(st.OutputDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	out.Files = append(out.Files, rel)
	st.ExportedFiles = append(st.ExportedFiles, rel)
	if h.metrics != nil {
		h.metrics.FilesExported.Inc()
	}
	h.logger.Debug("File written", map[string]interface{}{"file": rel, "bytes": len(raw) + 1})
	return nil
}
