package readiness

import (
	"log"
	"time"

	"github.com/ham-prep/backend/internal/models"
)

// Cache is the freshness-gated result cache. It is an optimization,
// never a source of truth: every write failure is logged and
// swallowed, and the computed result is returned regardless.
type Cache struct {
	store *Store
}

func NewCache(store *Store) *Cache {
	return &Cache{store: store}
}

// CheckFresh returns the cached result when one exists and is younger
// than the TTL, or nil when recomputation is needed. This is the
// engine's only throughput safeguard: rapid repeated calls for the
// same user and exam hit the cache instead of recomputing. The gate
// is advisory, not mutual exclusion; two near-simultaneous requests
// may both recompute, and last writer wins.
func (c *Cache) CheckFresh(userID int64, examType models.ExamType, ttlSeconds int) *CachedResult {
	rec, err := c.store.GetCachedResult(userID, examType)
	if err != nil {
		log.Printf("[readiness] cache read failed (user=%d exam=%s): %v", userID, examType, err)
		return nil
	}
	if rec == nil || !isFresh(rec.CalculatedAt, ttlSeconds, time.Now().UTC()) {
		return nil
	}
	return rec
}

func isFresh(calculatedAt time.Time, ttlSeconds int, now time.Time) bool {
	return now.Sub(calculatedAt) < time.Duration(ttlSeconds)*time.Second
}

// Upsert writes the freshly computed result. Failures cost only the
// cache: the next request recomputes from scratch.
func (c *Cache) Upsert(rec models.ReadinessCacheRecord) {
	if err := c.store.UpsertCache(rec); err != nil {
		log.Printf("[readiness] cache upsert failed (user=%d exam=%s): %v", rec.UserID, rec.ExamType, err)
	}
}

// SaveSnapshot records the daily trend row on a detached goroutine.
// The response never waits on it; success or failure is purely a
// bookkeeping concern and is logged on its own.
func (c *Cache) SaveSnapshot(snap models.ReadinessSnapshot) {
	go func() {
		if err := c.store.UpsertSnapshot(snap); err != nil {
			log.Printf("[readiness] snapshot upsert failed (user=%d exam=%s date=%s): %v",
				snap.UserID, snap.ExamType, snap.SnapshotDate.Format("2006-01-02"), err)
		}
	}()
}
