package manifest

// Filter returns the repositories whose groups intersect groups, in
// manifest order. An empty groups list selects every repository.
func Filter(m *Manifest, groups []string) []Repository {
	if len(groups) == 0 {
		return append([]Repository(nil), m.Repositories...)
	}
	groupSet := toSet(groups)

	var result []Repository
	for _, r := range m.Repositories {
		if hasAnyTag(r.Groups, groupSet) {
			result = append(result, r)
		}
	}
	return result
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func hasAnyTag(tags []string, tagSet map[string]bool) bool {
	for _, t := range tags {
		if tagSet[t] {
			return true
		}
	}
	return false
}
