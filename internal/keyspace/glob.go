package keyspace

// Glob reports whether s matches the glob pattern p, using the same
// semantics as Redis KEYS/PUBSUB/PSUBSCRIBE pattern matching: `*` matches
// any run of characters (including none), `?` matches exactly one
// character, `[...]` matches a character class (supporting `^` negation and
// `a-z` ranges), and `\` escapes the following character so it is matched
// literally.
//
// Grounded on the classic recursive stringmatchlen algorithm rather than
// Go's stdlib path.Match, which does not accept the bare, everywhere-glob
// patterns Redis clients send (path.Match rejects patterns with unescaped
// separators and treats `[` errors as parse failures rather than literal
// matches).
func Glob(pattern, s string) bool {
	return globMatch(pattern, s)
}

func globMatch(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatch(pattern[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			s = s[1:]
			pattern = pattern[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			end := classEnd(pattern)
			if end < 0 {
				// Unterminated class: match '[' literally.
				if s[0] != '[' {
					return false
				}
				s = s[1:]
				pattern = pattern[1:]
				continue
			}
			if !matchClass(pattern[1:end], s[0]) {
				return false
			}
			s = s[1:]
			pattern = pattern[end+1:]
		case '\\':
			if len(pattern) >= 2 {
				pattern = pattern[1:]
			}
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			s = s[1:]
			pattern = pattern[1:]
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			s = s[1:]
			pattern = pattern[1:]
		}
	}
	return len(s) == 0
}

// classEnd returns the index of the closing ']' for the class starting at
// pattern[0] == '[', or -1 if there is none.
func classEnd(pattern string) int {
	for i := 1; i < len(pattern); i++ {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			i++
			continue
		}
		if pattern[i] == ']' {
			return i
		}
	}
	return -1
}

func matchClass(class string, c byte) bool {
	negate := false
	if len(class) > 0 && class[0] == '^' {
		negate = true
		class = class[1:]
	}
	matched := false
	for i := 0; i < len(class); i++ {
		if class[i] == '\\' && i+1 < len(class) {
			i++
			if class[i] == c {
				matched = true
			}
			continue
		}
		if i+2 < len(class) && class[i+1] == '-' {
			lo, hi := class[i], class[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			i += 2
			continue
		}
		if class[i] == c {
			matched = true
		}
	}
	if negate {
		return !matched
	}
	return matched
}
