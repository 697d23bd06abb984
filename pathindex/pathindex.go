// Package pathindex adapts the teacher's Redis-backed path search index
// (datastore/retrieve.go's StatPathGopher) into the narrow collaborator
// role spec.md §1 assigns it: the carbon listener notifies this service
// of newly seen paths, and the ingest/fetch core never touches it. The
// wildcard lookup machinery is kept so the external search index itself
// stays usable, even though nothing in this module calls it.
package pathindex

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/redis.v3"
)

// ToBigEndianString renders n as a 4-byte big-endian string so that
// lexicographic (ZRANGEBYLEX) ordering of "<depth>:<path>" members
// sorts by depth numerically, not as decimal text.
func ToBigEndianString(n int) string {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(n))
	return string(buf)
}

// Match is one resolved path in the index.
type Match struct {
	Path  string `json:"path"`
	Depth int    `json:"depth"`
	Leaf  bool   `json:"leaf"`
}

// Recorder is the one-way notification surface for a newly seen path
// (the carbon listener's Seen has the same shape); it deliberately has
// no read side.
type Recorder interface {
	Record(path string) error
}

// Index is the Redis-backed path search index: a single sorted set
// whose members are "<depth-bigendian>:<path>:<leaf>", letting prefix
// and single-wildcard queries resolve via ZRANGEBYLEX.
type Index struct {
	rc      *redis.Client
	keyname string
}

// New wraps an already-connected Redis client.
func New(rc *redis.Client, keyname string) *Index {
	return &Index{rc: rc, keyname: keyname}
}

// Record marks path as seen at its natural depth (dot-separated node
// count), so prefix/wildcard lookups can find it later.
func (idx *Index) Record(path string) error {
	depth := len(strings.Split(path, "."))
	member := strings.Join([]string{ToBigEndianString(depth), path, "true"}, ":")
	return idx.rc.ZAdd(idx.keyname, redis.Z{Score: 0, Member: member}).Err()
}

// Query resolves a Graphite-style path expression (optionally containing
// "*" wildcards) against the index.
func (idx *Index) Query(expr string) ([]Match, error) {
	nodes := strings.Split(expr, ".")
	splitWild := strings.Split(expr, "*")

	switch {
	case len(splitWild) == 1:
		return idx.noWild(expr, len(nodes))
	case len(splitWild) == 2 && splitWild[1] == "":
		return idx.simpleWild(splitWild[0], len(nodes))
	default:
		return idx.complexWild(splitWild, len(nodes))
	}
}

func (idx *Index) getMax(s string) string {
	if s[len(s)-1:] == "." || s[len(s)-1:] == ":" {
		return strings.Join([]string{s[:len(s)-1], `\`, s[len(s)-1:], "\xff"}, "")
	}
	return strings.Join([]string{s, "\xff"}, "")
}

func (idx *Index) simpleWild(prefix string, depth int) ([]Match, error) {
	min := strings.Join([]string{"[", ToBigEndianString(depth), ":", prefix}, "")
	max := idx.getMax(min)
	resp, err := idx.rc.ZRangeByLex(idx.keyname, redis.ZRangeByScore{Min: min, Max: max}).Result()
	if err != nil {
		return nil, err
	}
	return processMatches(resp, depth), nil
}

func (idx *Index) noWild(path string, depth int) ([]Match, error) {
	min := strings.Join([]string{"[", ToBigEndianString(depth), ":", path, ":"}, "")
	max := idx.getMax(min)
	resp, err := idx.rc.ZRangeByLex(idx.keyname, redis.ZRangeByScore{Min: min, Max: max}).Result()
	if err != nil {
		return nil, err
	}
	return processMatches(resp, depth), nil
}

func (idx *Index) complexWild(splitWild []string, depth int) ([]Match, error) {
	min := strings.Join([]string{"[", ToBigEndianString(depth), ":", splitWild[0]}, "")
	max := idx.getMax(min)
	resp, err := idx.rc.ZRangeByLex(idx.keyname, redis.ZRangeByScore{Min: min, Max: max}).Result()
	if err != nil {
		return nil, err
	}

	rawRegex := strings.Join(splitWild, `.*`)
	re, err := regexp.Compile(rawRegex)
	if err != nil {
		return nil, fmt.Errorf("could not compile %q into a regex: %w", rawRegex, err)
	}

	var matched []string
	for _, m := range resp {
		if re.MatchString(m) {
			matched = append(matched, m)
		}
	}
	return processMatches(matched, depth), nil
}

func processMatches(raw []string, depth int) []Match {
	out := make([]Match, 0, len(raw))
	for _, m := range raw {
		parts := strings.Split(m, ":")
		if len(parts) < 3 {
			continue
		}
		leaf, _ := strconv.ParseBool(parts[2])
		out = append(out, Match{Path: parts[1], Depth: depth, Leaf: leaf})
	}
	return out
}
