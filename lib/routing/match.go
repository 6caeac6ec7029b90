// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package routing

// Match reports whether path matches a shell-style glob pattern:
//
//   - "*" matches any run of characters, including "/"
//   - "?" matches exactly one character
//   - "[seq]" matches one character in seq, "[!seq]" one not in seq
//
// Unlike path.Match, "*" is not segment-bounded: "/repo/a*" matches
// "/repo/a/sub". This is the behavior route tables are written against —
// a rule for a directory covers everything beneath it.
//
// An unterminated character class is not an error: the "[" is matched
// as a literal character, the way fnmatch degrades. Match is total — no
// pattern can abort resolution.
func Match(pattern, path string) bool {
	p := []rune(pattern)
	s := []rune(path)

	// Single-star backtracking: remember the most recent "*" and the
	// path position it started consuming at. On a mismatch, extend that
	// star by one character and retry. A later "*" supersedes an earlier
	// one, which is sufficient because the earlier star can always
	// absorb everything up to the later star's match point.
	starPattern := -1
	starPath := 0

	i, j := 0, 0
	for i < len(s) {
		if j < len(p) {
			switch p[j] {
			case '*':
				starPattern, starPath = j, i
				j++
				continue
			case '?':
				i++
				j++
				continue
			case '[':
				if end := classEnd(p, j); end >= 0 {
					if matchClass(p[j+1:end], s[i]) {
						i++
						j = end + 1
						continue
					}
				} else if s[i] == '[' {
					// Unterminated class: the "[" is a literal.
					i++
					j++
					continue
				}
			default:
				if p[j] == s[i] {
					i++
					j++
					continue
				}
			}
		}
		if starPattern >= 0 {
			starPath++
			i = starPath
			j = starPattern + 1
			continue
		}
		return false
	}

	// Path consumed. The rest of the pattern must be stars (each
	// matching the empty string) for the match to succeed.
	for j < len(p) && p[j] == '*' {
		j++
	}
	return j == len(p)
}

// classEnd returns the index of the "]" that terminates the character
// class opening at p[start], or -1 when the class is unterminated. A "]"
// immediately after "[" or "[!" is a literal member, not the terminator.
func classEnd(p []rune, start int) int {
	k := start + 1
	if k < len(p) && p[k] == '!' {
		k++
	}
	if k < len(p) && p[k] == ']' {
		k++
	}
	for ; k < len(p); k++ {
		if p[k] == ']' {
			return k
		}
	}
	return -1
}

// matchClass reports whether c is matched by the class body (the runes
// between "[" and "]", possibly starting with "!" for negation). Ranges
// use "lo-hi"; a "-" at the start or end of the body is literal.
func matchClass(class []rune, c rune) bool {
	negated := false
	if len(class) > 0 && class[0] == '!' {
		negated = true
		class = class[1:]
	}
	matched := false
	for k := 0; k < len(class); k++ {
		if k+2 < len(class) && class[k+1] == '-' {
			if class[k] <= c && c <= class[k+2] {
				matched = true
			}
			k += 2
			continue
		}
		if class[k] == c {
			matched = true
		}
	}
	return matched != negated
}
