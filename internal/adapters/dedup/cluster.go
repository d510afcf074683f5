package dedup

import "content-curator/internal/domain"

// cluster строит транзитивные группы: связность считается по всем парам,
// оригиналом группы становится её самая ранняя запись.
func (d *Deduplicator) cluster(records []domain.ContentRecord, prints []fingerprint) domain.DeduplicationResult {
	uf := newUnionFind(len(records))
	type edge struct {
		a      int
		reason string
	}
	var edges []edge
	for i := range records {
		for j := i + 1; j < len(records); j++ {
			if uf.find(i) == uf.find(j) {
				continue
			}
			if ok, why := d.isDuplicate(prints[i], prints[j]); ok {
				uf.union(i, j)
				edges = append(edges, edge{a: i, reason: why})
			}
		}
	}

	reasons := make(map[int]string)
	for _, e := range edges {
		root := uf.find(e.a)
		if _, ok := reasons[root]; !ok {
			reasons[root] = e.reason
		}
	}

	members := make(map[int][]int)
	var roots []int
	for i := range records {
		root := uf.find(i)
		if _, ok := members[root]; !ok {
			roots = append(roots, root)
		}
		members[root] = append(members[root], i)
	}

	result := domain.DeduplicationResult{
		UniqueContent:   make([]domain.ContentRecord, 0, len(roots)),
		DuplicateGroups: []domain.DuplicateGroup{},
	}
	for _, root := range roots {
		idx := members[root]
		original := records[idx[0]]
		result.UniqueContent = append(result.UniqueContent, original)
		if len(idx) == 1 {
			continue
		}
		duplicates := make([]domain.ContentRecord, 0, len(idx)-1)
		for _, i := range idx[1:] {
			duplicates = append(duplicates, records[i])
		}
		result.DuplicateGroups = append(result.DuplicateGroups, domain.DuplicateGroup{
			Original:   original,
			Duplicates: duplicates,
			Reason:     reasons[root],
		})
	}
	return result
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}
