package impl

// Cart, loan and review collections may live authoritatively on the server or
// only in the local mirror, depending on backend feature completeness. Reads
// merge both with one precedence rule: server wins on ID collision, local-only
// records are appended after, in their stored order.

func mergeByID[T any](server, local []T, id func(T) int64) []T {
	merged := make([]T, 0, len(server)+len(local))
	seen := make(map[int64]struct{}, len(server))

	for _, record := range server {
		merged = append(merged, record)
		seen[id(record)] = struct{}{}
	}

	for _, record := range local {
		if _, ok := seen[id(record)]; ok {
			continue
		}
		merged = append(merged, record)
	}

	return merged
}
