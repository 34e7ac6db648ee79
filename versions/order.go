package versions

import (
	"slices"
	"strconv"
	"strings"
)

// Latest is the sentinel that stands for the newest usable
// version. It is never a literal upstream version.
const Latest = "latest"

// IsSentinel reports whether v is the "latest" sentinel.
func IsSentinel(v string) bool {
	return v == Latest
}

// keyKind orders the three classes of version names.
type keyKind int

const (
	kindNumeric keyKind = iota
	kindOther
	kindLatest
)

// part is one tuple element: a number, or a pre-release label.
type part struct {
	num   int
	label string
	isStr bool
}

type sortKey struct {
	kind  keyKind
	parts []part
	raw   string
}

// parseKey builds the sort tuple of a version name. Release
// versions get a trailing 1, pre-releases a trailing 0 followed
// by the pre-release label.
func parseKey(v string) sortKey {
	if v == Latest {
		return sortKey{kind: kindLatest, raw: v}
	}

	numeric, pre, hasPre := strings.Cut(v, "-")

	fields := strings.Split(numeric, ".")
	parts := make([]part, 0, len(fields)+2)

	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return sortKey{kind: kindOther, raw: v}
		}

		parts = append(parts, part{num: n})
	}

	if hasPre {
		parts = append(parts, part{num: 0}, part{label: pre, isStr: true})
	} else {
		parts = append(parts, part{num: 1})
	}

	return sortKey{kind: kindNumeric, parts: parts, raw: v}
}

func comparePart(a, b part) int {
	switch {
	case a.isStr && b.isStr:
		return strings.Compare(a.label, b.label)
	case a.isStr:
		return 1
	case b.isStr:
		return -1
	default:
		return a.num - b.num
	}
}

// Compare orders two version names. It returns a negative
// number when a sorts before b, zero when they are equivalent
// and a positive number otherwise.
func Compare(a, b string) int {
	ka, kb := parseKey(a), parseKey(b)

	if ka.kind != kb.kind {
		return int(ka.kind) - int(kb.kind)
	}

	switch ka.kind {
	case kindLatest:
		return 0
	case kindOther:
		return strings.Compare(ka.raw, kb.raw)
	}

	for i := 0; i < len(ka.parts) && i < len(kb.parts); i++ {
		if c := comparePart(ka.parts[i], kb.parts[i]); c != 0 {
			return c
		}
	}

	return len(ka.parts) - len(kb.parts)
}

// Sort orders versions oldest first, in place. "latest" ends
// up last.
func Sort(vs []string) {
	slices.SortStableFunc(vs, Compare)
}

// Newest returns a copy of vs ordered newest first with the
// "latest" sentinel removed.
func Newest(vs []string) []string {
	out := make([]string, 0, len(vs))

	for _, v := range vs {
		if !IsSentinel(v) {
			out = append(out, v)
		}
	}

	Sort(out)
	slices.Reverse(out)

	return out
}
