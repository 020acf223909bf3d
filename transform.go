package lifelog

// MergeSeries unions bucketed series from several sources into one, summing
// values that share a bucket key. First-seen order wins, so chronological
// inputs stay chronological.
func MergeSeries(series ...[]SeriesPoint) []SeriesPoint {
	if len(series) == 0 {
		return nil
	}

	merged := make([]SeriesPoint, 0, len(series[0]))
	index := make(map[string]int)

	for _, points := range series {
		for _, p := range points {
			if at, ok := index[p.Key]; ok {
				merged[at].Value += p.Value
				continue
			}

			index[p.Key] = len(merged)
			merged = append(merged, p)
		}
	}

	return merged
}

// MergeHeatmaps sums the cell values of several heatmaps into a fresh one.
// The first heatmap decides the axis assignment. Grids with an Unknown
// column absorb grids without one. Nil entries are skipped.
func MergeHeatmaps(maps ...*Heatmap) *Heatmap {
	present := make([]*Heatmap, 0, len(maps))
	for _, h := range maps {
		if h != nil {
			present = append(present, h)
		}
	}
	maps = present
	if len(maps) == 0 {
		return nil
	}

	parts := DayParts[:]
	for _, h := range maps {
		if len(h.parts) > len(parts) {
			parts = h.parts
		}
	}

	merged := &Heatmap{
		rowAxis:    maps[0].rowAxis,
		columnAxis: maps[0].columnAxis,
		parts:      parts,
	}

	for day := 0; day < 7; day++ {
		merged.grid[day] = make(map[DayPart]float64, len(parts))
		for _, part := range parts {
			var total float64
			for _, h := range maps {
				total += h.grid[day][part]
			}
			merged.grid[day][part] = total
		}
	}

	return merged
}
