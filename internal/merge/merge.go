// Package merge implements the conflict resolution applied when several
// devices upload annotation sets for the same document independently.
package merge

import (
	"sort"

	"github.com/iudanet/kosyncd/internal/models"
)

// Annotations reconciles the stored server set with an incoming client set.
//
// The result is keyed by position identity (models.Annotation.PositionKey):
//   - server annotations tombstoned by the client are dropped even though
//     they still exist server-side (client wins on delete);
//   - client annotations already tombstoned on the server are dropped, so a
//     late re-submission never resurrects a deleted annotation;
//   - when both sides occupy the same identity slot, a strictly greater
//     effective time wins and ties keep the server entry.
//
// The merged set is returned sorted by effective time so successive reads of
// the same state are stable.
func Annotations(server, client []models.Annotation, serverDeleted, clientDeleted []string) []models.Annotation {
	serverTombstones := toSet(serverDeleted)
	clientTombstones := toSet(clientDeleted)

	merged := make(map[string]models.Annotation, len(server)+len(client))

	for _, a := range server {
		if clientTombstones[a.Datetime] {
			continue
		}
		merged[a.PositionKey()] = a
	}

	for _, a := range client {
		if serverTombstones[a.Datetime] {
			continue
		}
		key := a.PositionKey()
		existing, ok := merged[key]
		if !ok || a.IsNewerThan(&existing) {
			merged[key] = a
		}
	}

	result := make([]models.Annotation, 0, len(merged))
	for _, a := range merged {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].EffectiveTime(), result[j].EffectiveTime()
		if ti != tj {
			return ti < tj
		}
		return result[i].PositionKey() < result[j].PositionKey()
	})
	return result
}

// Tombstones unions the stored and incoming deletion sets, preserving the
// stored order. Tombstones are permanent: nothing ever removes one.
func Tombstones(current, incoming []string) []string {
	seen := toSet(current)
	out := make([]string, 0, len(current)+len(incoming))
	out = append(out, current...)
	for _, d := range incoming {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
