package archive

import (
	"context"
	"sync"
	"time"

	"github.com/amankumarsingh77/seo_audit/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryArchive keeps reports in process, for runs without MongoDB.
type MemoryArchive struct {
	mu      sync.Mutex
	reports []models.AuditReport
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

func (m *MemoryArchive) Save(_ context.Context, rec *models.AuditReport) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	}
	m.mu.Lock()
	m.reports = append(m.reports, *rec)
	m.mu.Unlock()
	return nil
}

func (m *MemoryArchive) List(_ context.Context, limit int) ([]models.AuditReport, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AuditReport{}
	for i := len(m.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.reports[i])
	}
	return out, nil
}
