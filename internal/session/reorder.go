package session

// reconcileOrder maps an observed visual order (stable keys, top to bottom)
// back onto positions in the current canonical list.
//
// The result is a permutation of [0,len(cur)) expressed as "new position i is
// filled from current position perm[i]". Keys not present in cur are skipped
// (they belong to rows removed since the last render), duplicates count once,
// and current entries missing from the order are appended in their existing
// relative order so a partial observation never drops data.
func reconcileOrder(cur []Key, order []Key) []int {
	pos := make(map[Key]int, len(cur))
	for i, k := range cur {
		pos[k] = i
	}

	perm := make([]int, 0, len(cur))
	taken := make(map[int]bool, len(cur))
	for _, k := range order {
		i, ok := pos[k]
		if !ok || taken[i] {
			continue
		}
		taken[i] = true
		perm = append(perm, i)
	}
	for i := range cur {
		if !taken[i] {
			perm = append(perm, i)
		}
	}
	return perm
}
