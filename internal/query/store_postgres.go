package query

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStats runs the aggregates against the console's record tables. The
// thresholds mirror the classifier's so the answers agree with the alerts.
type PostgresStats struct {
	db               *sql.DB
	targetWindowDays int
	nearCapacityMark float64
	expiryWindowDays int
}

func NewPostgresStats(db *sql.DB, targetWindowDays int, nearCapacityMark float64, expiryWindowDays int) *PostgresStats {
	return &PostgresStats{
		db:               db,
		targetWindowDays: targetWindowDays,
		nearCapacityMark: nearCapacityMark,
		expiryWindowDays: expiryWindowDays,
	}
}

func (s *PostgresStats) ProcedureStats(ctx context.Context) (ProcedureStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE breached),
			COUNT(*) FILTER (WHERE NOT breached AND days_to_target > 0 AND days_to_target <= $1),
			COUNT(*) FILTER (WHERE NOT breached AND (days_to_target <= 0 OR days_to_target > $1))
		FROM procedures
	`
	var stats ProcedureStats
	err := s.db.QueryRowContext(ctx, query, s.targetWindowDays).Scan(
		&stats.Total, &stats.Breached, &stats.AtRisk, &stats.OnTrack,
	)
	if err != nil {
		return ProcedureStats{}, fmt.Errorf("procedure stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStats) SessionStats(ctx context.Context) (SessionStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE utilization >= $1),
			COALESCE(AVG(utilization), 0)
		FROM theatre_sessions
	`
	var stats SessionStats
	err := s.db.QueryRowContext(ctx, query, s.nearCapacityMark).Scan(
		&stats.Total, &stats.NearCapacity, &stats.AvgUtilization,
	)
	if err != nil {
		return SessionStats{}, fmt.Errorf("session stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStats) StaffingStats(ctx context.Context) (StaffingStats, error) {
	// Required and allocated headcounts live in a role breakdown table keyed
	// by allocation record.
	query := `
		SELECT
			COUNT(DISTINCT allocation_id),
			COUNT(*)
		FROM staff_allocation_roles
		WHERE required > allocated
	`
	var stats StaffingStats
	err := s.db.QueryRowContext(ctx, query).Scan(&stats.RecordsShort, &stats.RolesShort)
	if err != nil {
		return StaffingStats{}, fmt.Errorf("staffing stats: %w", err)
	}
	return stats, nil
}

func (s *PostgresStats) InventoryStats(ctx context.Context) (InventoryStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE stock <= reorder_level),
			COUNT(*) FILTER (WHERE days_to_expiry > 0 AND days_to_expiry <= $1),
			COUNT(*) FILTER (WHERE days_to_expiry <= 0)
		FROM inventory_items
	`
	var stats InventoryStats
	err := s.db.QueryRowContext(ctx, query, s.expiryWindowDays).Scan(
		&stats.LowStock, &stats.ExpiringSoon, &stats.Expired,
	)
	if err != nil {
		return InventoryStats{}, fmt.Errorf("inventory stats: %w", err)
	}
	return stats, nil
}

var _ StatsStore = (*PostgresStats)(nil)
