package lyrics

// timeEpsilon absorbs clock jitter when comparing playback time to
// line starts, so a line does not miss activation by a sub-millisecond
// float margin.
const timeEpsilon = 0.001

// ActiveIndex resolves the line index active at playback time t, or
// -1 before the first non-metadata line. The scan takes the last line
// whose start has been reached, so duplicate timestamps resolve to the
// later entry and stay stable across repeated calls. Metadata lines
// never become the pick but do not stop the scan.
func ActiveIndex(lines []Line, t float64) int {
	active := -1
	for i, ln := range lines {
		if ln.Metadata {
			continue
		}
		// Strict comparison: at exactly one epsilon early the line is
		// still pending. 1.999 and 2.0-0.001 round to the same double,
		// so >= would activate a full millisecond ahead of time.
		if t > ln.Time-timeEpsilon {
			active = i
		}
	}
	return active
}

// NextTime returns the start time of the first non-metadata line after
// index i, or -1 when none exists. Used to size the active line's
// remaining run.
func NextTime(lines []Line, i int) float64 {
	for j := i + 1; j < len(lines); j++ {
		if !lines[j].Metadata {
			return lines[j].Time
		}
	}
	return -1
}
