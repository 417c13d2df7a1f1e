package export

// SubjectQuery selects books by their subject tags. The query is a logical
// OR over lines; each line is a logical AND over its items. Items are
// expected to be lower-cased and trimmed, matching how both the
// configuration loader and the opf package normalize subjects.
type SubjectQuery [][]string

// Match returns the index of the first line whose every item appears in
// subjects, or -1 when no line is satisfied.
func (q SubjectQuery) Match(subjects []string) int {
	have := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		have[s] = true
	}
line:
	for i, group := range q {
		for _, item := range group {
			if !have[item] {
				continue line
			}
		}
		return i
	}
	return -1
}

// Matches reports whether at least one line of the query is satisfied.
func (q SubjectQuery) Matches(subjects []string) bool {
	return q.Match(subjects) >= 0
}
