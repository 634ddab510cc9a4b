// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestDistance bounds how far a typo can be from a suggestion.
const maxSuggestDistance = 2

// Suggest returns the known name closest to name, or "" if none is close.
// Names containing the typed letters in order rank first, then edit distance.
func Suggest(name string, known []string) string {
	if name == "" || len(known) == 0 {
		return ""
	}
	lower := strings.ToLower(name)

	type candidate struct {
		name     string
		distance int
	}
	var cands []candidate

	for _, rank := range fuzzy.RankFindFold(lower, known) {
		if rank.Distance <= maxSuggestDistance+len(lower) {
			cands = append(cands, candidate{rank.Target, fuzzy.LevenshteinDistance(lower, strings.ToLower(rank.Target))})
		}
	}
	for _, k := range known {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(k)); d <= maxSuggestDistance {
			cands = append(cands, candidate{k, d})
		}
	}
	if len(cands) == 0 {
		return ""
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].distance != cands[j].distance {
			return cands[i].distance < cands[j].distance
		}
		return cands[i].name < cands[j].name
	})
	return cands[0].name
}
