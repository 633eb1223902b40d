// Package store persists tenants and imported analytics in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/amankumarsingh77/seo_audit/config"
	"github.com/amankumarsingh77/seo_audit/internal/logging"
	"github.com/amankumarsingh77/seo_audit/models"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var ErrTenantNotFound = errors.New("tenant not found")

type Store struct {
	db     *sqlx.DB
	logger logging.Logger
}

func NewPostgresStore(ctx context.Context, cfg *config.PostgresConfig, logger logging.Logger) (*Store, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return NewStore(db, logger), nil
}

func NewStore(db *sqlx.DB, logger logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) CreateTenant(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := s.db.QueryRowxContext(ctx, insertTenant, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("create tenant %q: %w", name, err)
	}
	s.logger.Info("created tenant", logging.String("tenant", name), logging.Int64("tenant_id", id))
	return id, nil
}

// TenantID looks a tenant up by name. The bool is false when none exists.
func (s *Store) TenantID(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, selectTenantID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get tenant %q: %w", name, err)
	}
	return id, true, nil
}

func (s *Store) EnsureTenant(ctx context.Context, name string) (int64, error) {
	id, ok, err := s.TenantID(ctx, name)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}
	return s.CreateTenant(ctx, name)
}

func (s *Store) RenameTenant(ctx context.Context, id int64, name string) error {
	return s.execOne(ctx, renameTenant, id, name)
}

// DeleteTenant removes the tenant and, through cascading keys, its data.
func (s *Store) DeleteTenant(ctx context.Context, id int64) error {
	return s.execOne(ctx, deleteTenant, id)
}

func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if n == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *Store) StoreSearchAnalytics(ctx context.Context, rows []models.SearchAnalyticsRow, siteURL string, tenantID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin search analytics tx: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		s.logger.Debug("inserting search analytics row",
			logging.String("site_url", siteURL),
			logging.Int64("tenant_id", tenantID),
			logging.String("query", row.Query),
		)
		if _, err := tx.ExecContext(ctx, insertSearchAnalytics,
			siteURL, row.Query, row.Clicks, row.Impressions, row.CTR, row.Position, tenantID,
		); err != nil {
			return fmt.Errorf("insert search analytics row: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) StoreCoverage(ctx context.Context, c models.CoverageSummary, siteURL string, tenantID int64) error {
	s.logger.Debug("inserting coverage", logging.String("site_url", siteURL), logging.Int64("tenant_id", tenantID))
	if _, err := s.db.ExecContext(ctx, insertCoverage, siteURL, c.Valid, c.Errors, c.Excluded, tenantID); err != nil {
		return fmt.Errorf("insert coverage: %w", err)
	}
	return nil
}

func (s *Store) StorePerformance(ctx context.Context, p models.PerformanceSummary, siteURL string, tenantID int64) error {
	s.logger.Debug("inserting performance", logging.String("site_url", siteURL), logging.Int64("tenant_id", tenantID))
	if _, err := s.db.ExecContext(ctx, insertPerformance,
		siteURL, p.AvgPosition, p.TotalClicks, p.TotalImpressions, tenantID,
	); err != nil {
		return fmt.Errorf("insert performance: %w", err)
	}
	return nil
}

func (s *Store) StorePageSpeed(ctx context.Context, ps *models.PageSpeedResult, tenantID int64) (int64, error) {
	s.logger.Debug("inserting pagespeed", logging.String("url", ps.URL), logging.Int64("tenant_id", tenantID))
	var id int64
	if err := s.db.QueryRowxContext(ctx, insertPageSpeed,
		ps.URL, ps.LCP, ps.FID, ps.CLS, ps.Score, ps.TTFB, ps.FCP, ps.TTI, ps.TBT, tenantID,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert pagespeed: %w", err)
	}
	return id, nil
}

func (s *Store) StorePageSpeedOpportunities(ctx context.Context, opportunities []models.Opportunity, pageSpeedID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin opportunities tx: %w", err)
	}
	defer tx.Rollback()

	for _, opp := range opportunities {
		if _, err := tx.ExecContext(ctx, insertOpportunity, pageSpeedID, opp.Name, opp.Savings); err != nil {
			return fmt.Errorf("insert pagespeed opportunity: %w", err)
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}
