package pipeline

import "sort"

// Relabel rewrites the speaker of every word through mapping, in place, and
// returns the same slice. Ids missing from mapping pass through unchanged.
func Relabel(words []Word, mapping map[string]string) []Word {
	if len(mapping) == 0 {
		return words
	}
	for i := range words {
		if name, ok := mapping[words[i].Speaker]; ok {
			words[i].Speaker = name
		}
	}
	return words
}

// Speakers returns the sorted set of speaker ids present in words.
func Speakers(words []Word) []string {
	seen := make(map[string]struct{})
	for _, w := range words {
		seen[w.Speaker] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
