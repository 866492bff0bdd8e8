// Package lineage collapses subagent sessions under their root session for
// display. Groups are rebuilt from the flat row set every refresh and never
// persisted.
package lineage

import (
	"sort"

	"github.com/aelaguiz/codex-ps/internal/domain"
)

// Group is one display unit: a root session plus everything spawned under it
// during this pass.
type Group struct {
	Root              domain.SessionRow
	Subagents         int
	Tally             map[domain.Status]int // child statuses only
	Status            domain.Status         // most active status across all members
	LastActivityUnixS *int64                // latest across all members
}

// GroupRows partitions rows by resolved root and orders the groups for
// display: labeled roots first, then latest activity, then host, then id.
func GroupRows(rows []domain.SessionRow) []Group {
	index := make(map[string]*domain.SessionRow, len(rows))
	for i := range rows {
		index[rows[i].Key()] = &rows[i]
	}

	members := make(map[string][]*domain.SessionRow)
	order := make([]string, 0, len(rows))
	for i := range rows {
		rootKey := resolveRootKey(index, &rows[i])
		if _, seen := members[rootKey]; !seen {
			order = append(order, rootKey)
		}
		members[rootKey] = append(members[rootKey], &rows[i])
	}

	groups := make([]Group, 0, len(order))
	for _, rootKey := range order {
		root := index[rootKey]
		group := Group{Root: *root, Tally: make(map[domain.Status]int), Status: root.Status}
		if root.LastActivityUnixS != nil {
			ts := *root.LastActivityUnixS
			group.LastActivityUnixS = &ts
		}
		for _, row := range members[rootKey] {
			if row.Key() == rootKey {
				continue
			}
			group.Subagents++
			group.Tally[row.Status]++
			if row.Status.Score() > group.Status.Score() {
				group.Status = row.Status
			}
			if row.LastActivityUnixS != nil {
				if group.LastActivityUnixS == nil || *row.LastActivityUnixS > *group.LastActivityUnixS {
					ts := *row.LastActivityUnixS
					group.LastActivityUnixS = &ts
				}
			}
		}
		groups = append(groups, group)
	}

	sortGroups(groups)
	return groups
}

// resolveRootKey walks parent pointers within the same host and pass. The
// walk ends at a node with no parent or whose parent is missing from the
// pass; that node is the root. Any cycle (including self-reference) makes
// the starting record its own root. Parent links never cross hosts.
func resolveRootKey(index map[string]*domain.SessionRow, row *domain.SessionRow) string {
	cur := row
	visited := map[string]struct{}{cur.Key(): {}}
	for cur.Lineage.Parent != nil {
		parentKey := domain.SessionKey(cur.Host, *cur.Lineage.Parent)
		if _, cycle := visited[parentKey]; cycle {
			return row.Key()
		}
		parent, ok := index[parentKey]
		if !ok {
			break
		}
		visited[parentKey] = struct{}{}
		cur = parent
	}
	return cur.Key()
}

func sortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := &groups[i], &groups[j]
		aNamed, bNamed := a.Root.Label != nil, b.Root.Label != nil
		if aNamed != bNamed {
			return aNamed
		}
		al, bl := int64(-1), int64(-1)
		if a.LastActivityUnixS != nil {
			al = *a.LastActivityUnixS
		}
		if b.LastActivityUnixS != nil {
			bl = *b.LastActivityUnixS
		}
		if al != bl {
			return al > bl
		}
		if a.Root.Host != b.Root.Host {
			return a.Root.Host < b.Root.Host
		}
		return a.Root.SessionID < b.Root.SessionID
	})
}
