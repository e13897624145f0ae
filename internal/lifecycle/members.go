package lifecycle

// MemberDiff is the delta between two versions of a project's
// assigned-user set.
type MemberDiff struct {
	Added   []string
	Removed []string
}

// DiffMembers computes which user IDs were added and removed between a
// previous and a desired membership set. Duplicates in either input are
// ignored. Added follows the order of next, removed the order of
// previous; no ordering beyond that is guaranteed.
func DiffMembers(previous, next []string) MemberDiff {
	prev := dedupIDs(previous)
	want := dedupIDs(next)

	prevSet := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		prevSet[id] = struct{}{}
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, id := range want {
		wantSet[id] = struct{}{}
	}

	var d MemberDiff
	for _, id := range prev {
		if _, ok := wantSet[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	for _, id := range want {
		if _, ok := prevSet[id]; !ok {
			d.Added = append(d.Added, id)
		}
	}
	return d
}

// dedupIDs removes duplicate IDs preserving first-seen order
func dedupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
