package query

import (
	"context"
	"sync"

	"theatreops/internal/domain"
)

// MemoryStats computes aggregates over records seeded directly by the
// caller. It backs tests and the no-Postgres fallback, where the console has
// no record store to aggregate over.
type MemoryStats struct {
	targetWindowDays int
	nearCapacityMark float64
	expiryWindowDays int

	mu         sync.RWMutex
	procedures map[string]domain.Procedure
	sessions   map[string]domain.TheatreSession
	staffing   map[string]domain.StaffAllocation
	inventory  map[string]domain.InventoryItem
}

func NewMemoryStats(targetWindowDays int, nearCapacityMark float64, expiryWindowDays int) *MemoryStats {
	return &MemoryStats{
		targetWindowDays: targetWindowDays,
		nearCapacityMark: nearCapacityMark,
		expiryWindowDays: expiryWindowDays,
		procedures:       make(map[string]domain.Procedure),
		sessions:         make(map[string]domain.TheatreSession),
		staffing:         make(map[string]domain.StaffAllocation),
		inventory:        make(map[string]domain.InventoryItem),
	}
}

func (s *MemoryStats) PutProcedure(p domain.Procedure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procedures[p.ID] = p
}

func (s *MemoryStats) RemoveProcedure(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.procedures, id)
}

func (s *MemoryStats) PutSession(sess domain.TheatreSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *MemoryStats) PutStaffing(a domain.StaffAllocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staffing[a.ID] = a
}

func (s *MemoryStats) PutInventory(item domain.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[item.ID] = item
}

func (s *MemoryStats) ProcedureStats(_ context.Context) (ProcedureStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats ProcedureStats
	for _, p := range s.procedures {
		stats.Total++
		switch {
		case p.Breached:
			stats.Breached++
		case p.DaysToTarget > 0 && p.DaysToTarget <= s.targetWindowDays:
			stats.AtRisk++
		default:
			stats.OnTrack++
		}
	}
	return stats, nil
}

func (s *MemoryStats) SessionStats(_ context.Context) (SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats SessionStats
	var total float64
	for _, sess := range s.sessions {
		stats.Total++
		total += sess.Utilization
		if sess.Utilization >= s.nearCapacityMark {
			stats.NearCapacity++
		}
	}
	if stats.Total > 0 {
		stats.AvgUtilization = total / float64(stats.Total)
	}
	return stats, nil
}

func (s *MemoryStats) StaffingStats(_ context.Context) (StaffingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats StaffingStats
	for _, a := range s.staffing {
		short := roleDeficits(a)
		if short > 0 {
			stats.RecordsShort++
			stats.RolesShort += short
		}
	}
	return stats, nil
}

func (s *MemoryStats) InventoryStats(_ context.Context) (InventoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats InventoryStats
	for _, item := range s.inventory {
		if item.Stock <= item.ReorderLevel {
			stats.LowStock++
		}
		switch {
		case item.DaysToExpiry <= 0:
			stats.Expired++
		case item.DaysToExpiry <= s.expiryWindowDays:
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}

func roleDeficits(a domain.StaffAllocation) int {
	short := 0
	for role, required := range a.Required {
		if required > a.Allocated[role] {
			short++
		}
	}
	return short
}
