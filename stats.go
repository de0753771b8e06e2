package memcache

import "sync/atomic"

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
//
// For Prometheus integration, expose these as:
//   - Counters: Gets, GetMultis, GetMultiKeys, Sets, Deletes, Errors
//   - Counters: GetHits, SetStores, DeleteHits (derive rates against
//     their operation counters, e.g. GetHits/Gets)
type ClientStats struct {
	Gets         uint64 // Total Get operations
	GetHits      uint64 // Get operations that found the key
	GetMultis    uint64 // Total GetMulti operations
	GetMultiKeys uint64 // Distinct keys requested across GetMulti operations
	GetMultiHits uint64 // Keys answered by the server across GetMulti operations
	Sets         uint64 // Total Set operations
	SetStores    uint64 // Set operations acknowledged by the server
	Deletes      uint64 // Total Delete operations
	DeleteHits   uint64 // Delete operations that removed a key
	Errors       uint64 // Transport failures across all operations
}

// clientStatsCollector provides internal methods for updating client
// stats. Not exported - the client updates its own stats.
type clientStatsCollector struct {
	stats *ClientStats
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{
		stats: &ClientStats{},
	}
}

func (c *clientStatsCollector) recordGet(found bool) {
	atomic.AddUint64(&c.stats.Gets, 1)
	if found {
		atomic.AddUint64(&c.stats.GetHits, 1)
	}
}

func (c *clientStatsCollector) recordGetMulti(keys, hits int) {
	atomic.AddUint64(&c.stats.GetMultis, 1)
	atomic.AddUint64(&c.stats.GetMultiKeys, uint64(keys))
	atomic.AddUint64(&c.stats.GetMultiHits, uint64(hits))
}

func (c *clientStatsCollector) recordSet(stored bool) {
	atomic.AddUint64(&c.stats.Sets, 1)
	if stored {
		atomic.AddUint64(&c.stats.SetStores, 1)
	}
}

func (c *clientStatsCollector) recordDelete(deleted bool) {
	atomic.AddUint64(&c.stats.Deletes, 1)
	if deleted {
		atomic.AddUint64(&c.stats.DeleteHits, 1)
	}
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Gets:         atomic.LoadUint64(&c.stats.Gets),
		GetHits:      atomic.LoadUint64(&c.stats.GetHits),
		GetMultis:    atomic.LoadUint64(&c.stats.GetMultis),
		GetMultiKeys: atomic.LoadUint64(&c.stats.GetMultiKeys),
		GetMultiHits: atomic.LoadUint64(&c.stats.GetMultiHits),
		Sets:         atomic.LoadUint64(&c.stats.Sets),
		SetStores:    atomic.LoadUint64(&c.stats.SetStores),
		Deletes:      atomic.LoadUint64(&c.stats.Deletes),
		DeleteHits:   atomic.LoadUint64(&c.stats.DeleteHits),
		Errors:       atomic.LoadUint64(&c.stats.Errors),
	}
}
