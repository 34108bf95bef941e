package identity

import "sort"

// Record is what the resolver sees of one input row: its batch position and
// its priority-ordered identity facets.
type Record struct {
	Index  int
	Facets []Facet
}

// Snapshot is the read-only identity state a resolution runs against.
type Snapshot interface {
	LookupFacet(key string) (string, bool)
}

// Resolution maps record indexes to canonical ids and carries the facet
// bindings a committed batch should persist so later runs resolve the same
// entities to the same ids.
type Resolution struct {
	IDs       map[int]string
	Aliases   map[string]string
	Merges    int
	Conflicts int
}

// Resolve clusters records by shared facet values (union-find, so the
// outcome is independent of record order), then assigns each cluster one
// canonical id: an existing id when any facet is already bound in the
// snapshot, otherwise the id minted by the cluster's best facet. When facets
// of one cluster point at distinct existing ids, the best facet's binding
// wins and the event counts as a conflict; it is never fatal.
func Resolve(records []Record, snap Snapshot) Resolution {
	res := Resolution{
		IDs:     make(map[int]string, len(records)),
		Aliases: make(map[string]string),
	}
	if len(records) == 0 {
		return res
	}

	parent := make([]int, len(records))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	firstByKey := make(map[string]int)
	for i, rec := range records {
		for _, f := range rec.Facets {
			if j, ok := firstByKey[f.Key]; ok {
				union(i, j)
			} else {
				firstByKey[f.Key] = i
			}
		}
	}

	clusters := make(map[int][]int)
	for i := range records {
		root := find(i)
		clusters[root] = append(clusters[root], i)
	}

	for _, members := range clusters {
		facets := clusterFacets(records, members)
		id, conflicted := adoptOrMint(facets, snap)
		if conflicted {
			res.Conflicts++
		}
		for _, m := range members {
			res.IDs[records[m].Index] = id
		}
		for _, f := range facets {
			res.Aliases[f.Key] = id
		}
		res.Merges += len(members) - 1
	}
	return res
}

// clusterFacets dedupes the members' facets by key (keeping the best
// priority) and orders them deterministically.
func clusterFacets(records []Record, members []int) []Facet {
	best := make(map[string]Facet)
	for _, m := range members {
		for _, f := range records[m].Facets {
			if cur, ok := best[f.Key]; !ok || f.Priority < cur.Priority {
				best[f.Key] = f
			}
		}
	}
	facets := make([]Facet, 0, len(best))
	for _, f := range best {
		facets = append(facets, f)
	}
	sort.Slice(facets, func(i, j int) bool {
		if facets[i].Priority != facets[j].Priority {
			return facets[i].Priority < facets[j].Priority
		}
		return facets[i].Key < facets[j].Key
	})
	return facets
}

func adoptOrMint(facets []Facet, snap Snapshot) (string, bool) {
	var adopted string
	conflicted := false
	for _, f := range facets {
		existing, ok := snap.LookupFacet(f.Key)
		if !ok {
			continue
		}
		if adopted == "" {
			adopted = existing
		} else if existing != adopted {
			conflicted = true
		}
	}
	if adopted != "" {
		return adopted, conflicted
	}
	return facets[0].ID, false
}
