package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartinventory/internal/models"
	"smartinventory/pkg/logger"
)

// DashboardSource produces dashboard snapshots.
type DashboardSource interface {
	GetDashboard(ctx context.Context) (*models.DashboardSnapshot, error)
}

// ArchivedReport describes one uploaded snapshot.
type ArchivedReport struct {
	Bucket     string    `json:"bucket"`
	Object     string    `json:"object"`
	Size       int64     `json:"size"`
	ArchivedAt time.Time `json:"archivedAt"`
}

type archiveDocument struct {
	ReportID    uuid.UUID                 `json:"reportId"`
	GeneratedAt time.Time                 `json:"generatedAt"`
	Dashboard   *models.DashboardSnapshot `json:"dashboard"`
}

// ReportArchive writes dashboard snapshots to object storage for offline
// reporting. Archived reports are never read back by the API.
type ReportArchive struct {
	store  MinioService
	source DashboardSource
	bucket string
	now    func() time.Time

	mu          sync.Mutex
	bucketReady bool
}

func NewReportArchive(store MinioService, source DashboardSource, bucket string) *ReportArchive {
	return &ReportArchive{
		store:  store,
		source: source,
		bucket: bucket,
		now:    time.Now,
	}
}

// Archive takes a fresh snapshot and uploads it.
func (a *ReportArchive) Archive(ctx context.Context) (*ArchivedReport, error) {
	snap, err := a.source.GetDashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("take dashboard snapshot: %w", err)
	}
	return a.Store(ctx, snap)
}

// Store uploads snap as dashboards/YYYY/MM/DD/<uuid>.json.
func (a *ReportArchive) Store(ctx context.Context, snap *models.DashboardSnapshot) (*ArchivedReport, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}

	now := a.now().UTC()
	doc := archiveDocument{
		ReportID:    uuid.New(),
		GeneratedAt: now,
		Dashboard:   snap,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode dashboard report: %w", err)
	}

	object := fmt.Sprintf("dashboards/%s/%s.json", now.Format("2006/01/02"), doc.ReportID)
	if err := a.store.UploadObject(ctx, a.bucket, object, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return nil, fmt.Errorf("upload dashboard report %s: %w", object, err)
	}

	logger.L().Info("dashboard report archived",
		logger.String("bucket", a.bucket),
		logger.String("object", object),
		logger.Int("size", len(body)),
	)

	return &ArchivedReport{
		Bucket:     a.bucket,
		Object:     object,
		Size:       int64(len(body)),
		ArchivedAt: now,
	}, nil
}

// ensureBucket creates the bucket on first use. A failure is retried on the
// next call.
func (a *ReportArchive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bucketReady {
		return nil
	}
	if err := a.store.EnsureBucketExists(ctx, a.bucket); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", a.bucket, err)
	}
	a.bucketReady = true
	return nil
}
