package surface

import (
	"fmt"
	"strings"
)

// Matcher is a predicate selecting elements.
type Matcher func(el *Element) bool

// MatchClass matches elements carrying the class name.
func MatchClass(name string) Matcher {
	return func(el *Element) bool {
		return el.HasClass(name)
	}
}

// MatchID matches the element with the given ID.
func MatchID(id string) Matcher {
	return func(el *Element) bool {
		return el.ID == id
	}
}

// MatchData matches elements that have the data attribute set.
func MatchData(key string) Matcher {
	return func(el *Element) bool {
		_, ok := el.data[key]
		return ok
	}
}

// MatchAny matches elements accepted by at least one matcher.
func MatchAny(ms ...Matcher) Matcher {
	return func(el *Element) bool {
		for _, m := range ms {
			if m(el) {
				return true
			}
		}
		return false
	}
}

// ParseSelector parses a small selector language into a Matcher.
//
// Supported forms, combinable with commas:
//
//	.class      element has the class
//	#id         element has the ID
//	[key]       element has the data attribute
func ParseSelector(sel string) (Matcher, error) {
	var ms []Matcher
	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		switch {
		case len(part) > 1 && part[0] == '.':
			ms = append(ms, MatchClass(part[1:]))
		case len(part) > 1 && part[0] == '#':
			ms = append(ms, MatchID(part[1:]))
		case len(part) > 2 && part[0] == '[' && part[len(part)-1] == ']':
			ms = append(ms, MatchData(part[1:len(part)-1]))
		default:
			return nil, fmt.Errorf("unsupported selector %q", part)
		}
	}
	if len(ms) == 1 {
		return ms[0], nil
	}
	return MatchAny(ms...), nil
}
