// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// suggestCommand returns the closest matching subcommand name for an
// unknown input, or "" when nothing is within an edit distance of 3 —
// close enough to catch transpositions, dropped characters, and extra
// characters without suggesting nonsense.
func suggestCommand(unknown string, commands []*Command) string {
	bestName := ""
	bestDistance := 4

	for _, command := range commands {
		distance := editDistance(unknown, command.Name)
		if distance < bestDistance {
			bestDistance = distance
			bestName = command.Name
		}
	}
	return bestName
}

// editDistance computes the Levenshtein distance between two strings
// using a rolling row of the distance matrix.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			distance := previous[i-1] + cost
			if deletion := previous[i] + 1; deletion < distance {
				distance = deletion
			}
			if insertion := current[i-1] + 1; insertion < distance {
				distance = insertion
			}
			current[i] = distance
		}
		previous = current
	}
	return previous[len(a)]
}
