// Package slug turns option labels into lowercase ASCII deep-link segments
// and resolves such segments back to option ids.
package slug

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose into base + combining mark
var replacements = map[rune]string{
	'ß': "ss", 'æ': "ae", 'Æ': "ae", 'ø': "o", 'Ø': "o",
	'œ': "oe", 'Œ': "oe", 'đ': "d", 'Đ': "d", 'ł': "l", 'Ł': "l",
	'þ': "th", 'Þ': "th", 'ı': "i",
}

// Make returns the slug for label: diacritics removed, lowercased, every run
// of non [a-z0-9] characters collapsed into a single hyphen, no leading or
// trailing hyphen. "Marrón Oscuro" becomes "marron-oscuro".
func Make(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, label)
	if err != nil {
		plain = label
	}

	var b strings.Builder
	b.Grow(len(plain))
	pendingDash := false
	for _, r := range strings.ToLower(plain) {
		if rep, ok := replacements[r]; ok {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteString(rep)
			continue
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// Resolve maps a deep-link value to an option id. A numeric value wins when it
// names a known option; otherwise the value is compared case-insensitively
// against each label and finally against each label's slug. Ties resolve to
// the lowest option id so the result does not depend on map order.
func Resolve(value string, labels map[int]string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if id, err := strconv.Atoi(value); err == nil {
		if _, ok := labels[id]; ok {
			return id, true
		}
	}

	ids := make([]int, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if strings.EqualFold(labels[id], value) {
			return id, true
		}
	}
	want := Make(value)
	if want == "" {
		return 0, false
	}
	for _, id := range ids {
		if Make(labels[id]) == want {
			return id, true
		}
	}
	return 0, false
}
