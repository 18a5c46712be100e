// Package backup snapshots the item table to object storage on the worker
// schedule. A snapshot is the restore path for the catalog: the rows are the
// whole system state, so one JSON document per run is enough.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/db/models"
	"github.com/mediafolio/catalog-backend/pkg/logger"
)

const objectTimeLayout = "20060102T150405Z"

type exporter interface {
	Export(ctx context.Context) ([]models.Item, error)
}

type uploader interface {
	Upload(ctx context.Context, object string, contentType string, body io.Reader) error
}

// Snapshot is the uploaded document shape.
type Snapshot struct {
	ExportedAt time.Time     `json:"exported_at"`
	Count      int           `json:"count"`
	Items      []models.Item `json:"items"`
}

// Job serializes the full catalog and uploads it to the configured bucket
// folder as <folder>/<prefix>-<timestamp>.json.
type Job struct {
	exporter exporter
	uploader uploader
	cfg      config.BackupConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewJob wires the backup job.
func NewJob(exp exporter, up uploader, cfg config.BackupConfig, logg *logger.Logger) (*Job, error) {
	if exp == nil {
		return nil, fmt.Errorf("exporter required")
	}
	if up == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "catalog"
	}
	if cfg.Folder == "" {
		cfg.Folder = "backup"
	}
	return &Job{
		exporter: exp,
		uploader: up,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (j *Job) Name() string { return "catalog-backup" }

func (j *Job) Run(ctx context.Context) error {
	items, err := j.exporter.Export(ctx)
	if err != nil {
		return fmt.Errorf("exporting items: %w", err)
	}

	snapshot := Snapshot{
		ExportedAt: j.now().UTC(),
		Count:      len(items),
		Items:      items,
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("serializing snapshot: %w", err)
	}

	object := j.ObjectName(snapshot.ExportedAt)
	if err := j.uploader.Upload(ctx, object, "application/json", bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("uploading snapshot %s: %w", object, err)
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"object": object,
		"items":  len(items),
	}), "catalog snapshot uploaded")
	return nil
}

// ObjectName derives the storage key for a snapshot taken at t.
func (j *Job) ObjectName(t time.Time) string {
	return fmt.Sprintf("%s/%s-%s.json", j.cfg.Folder, j.cfg.Prefix, t.UTC().Format(objectTimeLayout))
}
