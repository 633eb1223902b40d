package store

const (
	insertTenant   = `INSERT INTO tenants (name) VALUES ($1) RETURNING id`
	selectTenantID = `SELECT id FROM tenants WHERE name = $1`
	renameTenant   = `UPDATE tenants SET name = $2 WHERE id = $1`
	deleteTenant   = `DELETE FROM tenants WHERE id = $1`

	insertSearchAnalytics = `INSERT INTO search_analytics (site_url, query, clicks, impressions, ctr, position, tenant_id)
							VALUES ($1, $2, $3, $4, $5, $6, $7)`
	insertCoverage = `INSERT INTO coverage (site_url, valid, error, excluded, tenant_id)
							VALUES ($1, $2, $3, $4, $5)`
	insertPerformance = `INSERT INTO performance (site_url, average_position, total_clicks, total_impressions, tenant_id)
							VALUES ($1, $2, $3, $4, $5)`
	insertPageSpeed = `INSERT INTO pagespeed (url, lcp, fid, cls, score, ttfb, fcp, tti, tbt, tenant_id)
							VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
							RETURNING id`
	insertOpportunity = `INSERT INTO pagespeed_opportunities (pagespeed_id, name, savings)
							VALUES ($1, $2, $3)`

	createMigrationLog = `CREATE TABLE IF NOT EXISTS migration_log (
							id SERIAL PRIMARY KEY,
							version BIGINT NOT NULL,
							applied_at TIMESTAMP NOT NULL,
							applied_by VARCHAR(255) NOT NULL
						)`
	insertMigrationLog = `INSERT INTO migration_log (version, applied_at, applied_by) VALUES ($1, $2, $3)`
)
