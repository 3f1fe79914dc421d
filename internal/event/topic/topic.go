package topic

import "strings"

// Topic names a signal on the bus, for example "intent.session.started".
// Segments are separated by dots. Subscriptions may use "*" for a single
// segment and "**" for any run of segments, including none.
type Topic string

const (
	Separator      = "."
	WildcardSingle = "*"
	WildcardMulti  = "**"
)

// Join builds a topic from its segments.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}

func (t Topic) String() string { return string(t) }

// Segments splits the topic on the separator. An empty topic has none.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Child appends one segment.
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return Join(string(t), segment)
}

// IsWildcard reports whether t can only be used as a subscription pattern.
func (t Topic) IsWildcard() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// IsValid reports whether t is non-empty with no empty segment, so "a..b",
// ".a" and "a." are rejected.
func (t Topic) IsValid() bool {
	return t != "" && !strings.Contains(string(t), Separator+Separator) &&
		!strings.HasPrefix(string(t), Separator) && !strings.HasSuffix(string(t), Separator)
}

// Matches reports whether t is selected by pattern.
func (t Topic) Matches(pattern Topic) bool {
	if t == pattern {
		return true
	}
	return match(t.Segments(), pattern.Segments())
}

// match walks both segment lists, backtracking to the most recent "**"
// when a literal comparison fails.
func match(name, pat []string) bool {
	n, p := 0, 0
	star, resume := -1, 0
	for n < len(name) {
		switch {
		case p < len(pat) && pat[p] == WildcardMulti:
			star, resume = p, n
			p++
		case p < len(pat) && (pat[p] == WildcardSingle || pat[p] == name[n]):
			n++
			p++
		case star >= 0:
			resume++
			n, p = resume, star+1
		default:
			return false
		}
	}
	for p < len(pat) && pat[p] == WildcardMulti {
		p++
	}
	return p == len(pat)
}
