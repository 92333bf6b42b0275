package ecs

// WorldStats is a point-in-time summary of a world's contents.
type WorldStats struct {
	Ticks          int64
	EntityCount    int
	PendingRemoval int
	SystemCount    int
	Queries        []QueryStats
}

// QueryStats reports the live membership sizes of one system query.
type QueryStats struct {
	System  string
	Query   string
	Results int
	Added   int
	Removed int
}

// CollectStats summarises the world. Entities pending removal are counted in
// EntityCount until the tick that removed them has been cleaned up.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		Ticks:          w.ticks,
		EntityCount:    w.store.count(),
		PendingRemoval: len(w.pending),
		SystemCount:    len(w.systems),
	}

	for _, system := range w.systems {
		for _, q := range system.queries {
			stats.Queries = append(stats.Queries, QueryStats{
				System:  system.name,
				Query:   q.name,
				Results: q.results.Len(),
				Added:   q.added.Len(),
				Removed: q.removed.Len(),
			})
		}
	}
	return stats
}
