// Package nodeset expands and folds compact sets of names such as
// "rack[01-03,06]" or "cn[1-4/2],login".
//
// A pattern is a comma separated list of items. Each item is literal text
// mixed with bracketed range lists. A range is a number, an interval
// "a-b", an interval with a step "a-b/s", or a single letter interval
// "a-c". Zero padded bounds keep their width. Several bracket groups in
// one item expand to every combination, leftmost group varying slowest.
package nodeset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/artpar/racksdb/core/dberr"
)

// MaxNames is the largest number of names a pattern may expand to.
const MaxNames = 1 << 20

// Set is a parsed, expanded, duplicate free sequence of names kept in
// declaration order.
type Set struct {
	pattern string
	names   []string
	index   map[string]int
}

// Parse expands pattern.
func Parse(pattern string) (*Set, error) {
	items, err := splitTop(pattern)
	if err != nil {
		return nil, err
	}
	s := &Set{pattern: pattern, index: make(map[string]int)}
	for _, item := range items {
		expanded, err := expandItem(pattern, item)
		if err != nil {
			return nil, err
		}
		for _, name := range expanded {
			if _, dup := s.index[name]; dup {
				continue
			}
			s.index[name] = len(s.names)
			s.names = append(s.names, name)
		}
		if len(s.names) > MaxNames {
			return nil, tooMany(pattern)
		}
	}
	if len(s.names) == 0 {
		return nil, dberr.Formatf("Invalid range expression %q: empty set", pattern)
	}
	return s, nil
}

// String returns the pattern the set was parsed from.
func (s *Set) String() string { return s.pattern }

// Len returns the number of names.
func (s *Set) Len() int { return len(s.names) }

// Expand returns the names in declaration order.
func (s *Set) Expand() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Contains reports whether name belongs to the set.
func (s *Set) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Index returns the position of name in the expansion.
func (s *Set) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// splitTop splits on commas outside brackets.
func splitTop(pattern string) ([]string, error) {
	var items []string
	depth, start := 0, 0
	for i, c := range pattern {
		switch c {
		case '[':
			if depth > 0 {
				return nil, dberr.Formatf("Invalid range expression %q: nested brackets", pattern)
			}
			depth++
		case ']':
			if depth == 0 {
				return nil, dberr.Formatf("Invalid range expression %q: unbalanced brackets", pattern)
			}
			depth--
		case ',':
			if depth == 0 {
				items = append(items, pattern[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, dberr.Formatf("Invalid range expression %q: unbalanced brackets", pattern)
	}
	items = append(items, pattern[start:])
	for _, item := range items {
		if item == "" {
			return nil, dberr.Formatf("Invalid range expression %q: empty item", pattern)
		}
	}
	return items, nil
}

func expandItem(pattern, item string) ([]string, error) {
	results := []string{""}
	for len(item) > 0 {
		open := strings.IndexByte(item, '[')
		if open < 0 {
			results = appendText(results, item)
			break
		}
		results = appendText(results, item[:open])
		end := strings.IndexByte(item, ']')
		values, err := expandRanges(pattern, item[open+1:end])
		if err != nil {
			return nil, err
		}
		if len(results) > MaxNames/len(values) {
			return nil, tooMany(pattern)
		}
		next := make([]string, 0, len(results)*len(values))
		for _, prefix := range results {
			for _, v := range values {
				next = append(next, prefix+v)
			}
		}
		results = next
		item = item[end+1:]
	}
	return results, nil
}

func appendText(results []string, text string) []string {
	for i := range results {
		results[i] += text
	}
	return results
}

func expandRanges(pattern, body string) ([]string, error) {
	if body == "" {
		return nil, dberr.Formatf("Invalid range expression %q: empty brackets", pattern)
	}
	var out []string
	for _, r := range strings.Split(body, ",") {
		values, err := expandRange(pattern, r)
		if err != nil {
			return nil, err
		}
		if len(out)+len(values) > MaxNames {
			return nil, tooMany(pattern)
		}
		out = append(out, values...)
	}
	return out, nil
}

func tooMany(pattern string) error {
	return dberr.Formatf("Invalid range expression %q: too many names", pattern)
}

func expandRange(pattern, r string) ([]string, error) {
	if r == "" {
		return nil, dberr.Formatf("Invalid range expression %q: empty range", pattern)
	}
	step := 1
	if slash := strings.IndexByte(r, '/'); slash >= 0 {
		s, err := strconv.Atoi(r[slash+1:])
		if err != nil || s < 1 {
			return nil, dberr.Formatf("Invalid range expression %q: invalid step in %s", pattern, r)
		}
		step = s
		r = r[:slash]
	}
	low, high, interval := strings.Cut(r, "-")
	if !interval {
		high = low
	}

	if isLetter(low) && isLetter(high) {
		if low[0] > high[0] {
			return nil, dberr.Formatf("Invalid range expression %q: inverted range %s-%s", pattern, low, high)
		}
		var out []string
		for c := low[0]; c <= high[0]; c += byte(step) {
			out = append(out, string(c))
			if int(c)+step > 255 {
				break
			}
		}
		return out, nil
	}

	start, err := parseBound(low)
	if err != nil {
		return nil, dberr.Formatf("Invalid range expression %q: invalid bound %q", pattern, low)
	}
	end, err := parseBound(high)
	if err != nil {
		return nil, dberr.Formatf("Invalid range expression %q: invalid bound %q", pattern, high)
	}
	if start > end {
		return nil, dberr.Formatf("Invalid range expression %q: inverted range %s-%s", pattern, low, high)
	}
	width := 0
	if len(low) > 1 && low[0] == '0' {
		width = len(low)
	}
	count := (end-start)/step + 1
	if count > MaxNames {
		return nil, tooMany(pattern)
	}
	out := make([]string, 0, count)
	for k := 0; k < count; k++ {
		out = append(out, pad(start+k*step, width))
	}
	return out, nil
}

func parseBound(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func isLetter(s string) bool {
	return len(s) == 1 && (s[0] >= 'a' && s[0] <= 'z' || s[0] >= 'A' && s[0] <= 'Z')
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// Fold is the inverse of Parse: names sharing a prefix and a suffix around
// their last number are folded into one bracketed item. Groups are sorted
// by prefix, numbers in a group are sorted and deduplicated.
func Fold(names []string) string {
	type group struct {
		prefix, suffix string
		width          int
		numbers        []int
	}
	groups := map[string]*group{}
	var plain []string
	seenPlain := map[string]bool{}

	for _, name := range names {
		prefix, digits, suffix, ok := splitLastNumber(name)
		if !ok {
			if !seenPlain[name] {
				seenPlain[name] = true
				plain = append(plain, name)
			}
			continue
		}
		n, _ := strconv.Atoi(digits)
		key := prefix + "\x00" + suffix
		g, exists := groups[key]
		if !exists {
			g = &group{prefix: prefix, suffix: suffix}
			groups[key] = g
		}
		if len(digits) > 1 && digits[0] == '0' && len(digits) > g.width {
			g.width = len(digits)
		}
		g.numbers = append(g.numbers, n)
	}

	items := make([]string, 0, len(groups)+len(plain))
	for _, g := range groups {
		sort.Ints(g.numbers)
		g.numbers = dedupInts(g.numbers)
		if len(g.numbers) == 1 {
			items = append(items, g.prefix+pad(g.numbers[0], g.width)+g.suffix)
			continue
		}
		items = append(items, g.prefix+"["+foldRanges(g.numbers, g.width)+"]"+g.suffix)
	}
	items = append(items, plain...)
	sort.Strings(items)
	return strings.Join(items, ",")
}

func splitLastNumber(name string) (prefix, digits, suffix string, ok bool) {
	end := -1
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] >= '0' && name[i] <= '9' {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return "", "", "", false
	}
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	return name[:start], name[start:end], name[end:], true
}

func dedupInts(in []int) []int {
	out := in[:0]
	for i, n := range in {
		if i == 0 || n != in[i-1] {
			out = append(out, n)
		}
	}
	return out
}

func foldRanges(numbers []int, width int) string {
	var parts []string
	start := numbers[0]
	prev := start
	flush := func() {
		if start == prev {
			parts = append(parts, pad(start, width))
		} else {
			parts = append(parts, pad(start, width)+"-"+pad(prev, width))
		}
	}
	for _, n := range numbers[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return strings.Join(parts, ",")
}
