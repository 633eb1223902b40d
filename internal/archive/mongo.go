// Package archive keeps rendered audit reports in MongoDB.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultListLimit = 20

type Archive interface {
	Save(ctx context.Context, rec *models.AuditReport) error
	List(ctx context.Context, limit int) ([]models.AuditReport, error)
}

func NewMongoClient(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

type ReportArchive struct {
	coll   *mongo.Collection
	logger logging.Logger
}

func NewReportArchive(coll *mongo.Collection, logger logging.Logger) *ReportArchive {
	return &ReportArchive{coll: coll, logger: logger}
}

// Save inserts rec and sets its ID and, when unset, its creation time.
func (a *ReportArchive) Save(ctx context.Context, rec *models.AuditReport) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.CreatedAt == 0 {
		rec.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	}
	res, err := a.coll.InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to insert audit report: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("failed to cast InsertedID to ObjectID: got type %T", res.InsertedID)
	}
	rec.ID = oid
	a.logger.Info("archived audit report", logging.String("domain", rec.Domain), logging.String("id", oid.Hex()))
	return nil
}

// List returns the newest reports first.
func (a *ReportArchive) List(ctx context.Context, limit int) ([]models.AuditReport, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := a.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []models.AuditReport{}
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode audit reports: %w", err)
	}
	return reports, nil
}
