package colortag

import (
	"strconv"
	"strings"
)

// tokenPrefix starts every token: attribute{attributeID}-{optionID}
const tokenPrefix = "attribute"

// Token is one parsed attribute{id}-{option} pair.
type Token struct {
	AttributeID int
	OptionID    int
}

// String returns the encoded form of the token.
func (t Token) String() string {
	return tokenPrefix + strconv.Itoa(t.AttributeID) + "-" + strconv.Itoa(t.OptionID)
}

// ParseToken parses a single trimmed token. Anything that is not
// attribute<digits>-<digits> is reported as not ok.
func ParseToken(s string) (Token, bool) {
	if !strings.HasPrefix(s, tokenPrefix) {
		return Token{}, false
	}
	rest := s[len(tokenPrefix):]
	dash := strings.IndexByte(rest, '-')
	if dash <= 0 || dash == len(rest)-1 {
		return Token{}, false
	}
	attr, ok := digits(rest[:dash])
	if !ok {
		return Token{}, false
	}
	opt, ok := digits(rest[dash+1:])
	if !ok {
		return Token{}, false
	}
	return Token{AttributeID: attr, OptionID: opt}, true
}

// digits accepts only ASCII digits, so signs and spaces inside a token are rejected.
func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parse returns the option ids that raw assigns for attributeID, in the order
// they appear and without duplicates. Malformed tokens and tokens for other
// attributes are dropped; Parse never fails.
func Parse(raw string, attributeID int) []int {
	if raw == "" {
		return nil
	}
	var out []int
	seen := make(map[int]struct{})
	for _, part := range strings.Split(raw, ",") {
		tok, ok := ParseToken(strings.TrimSpace(part))
		if !ok || tok.AttributeID != attributeID {
			continue
		}
		if _, dup := seen[tok.OptionID]; dup {
			continue
		}
		seen[tok.OptionID] = struct{}{}
		out = append(out, tok.OptionID)
	}
	return out
}

// ParseSet is Parse as a set, for membership checks.
func ParseSet(raw string, attributeID int) map[int]struct{} {
	ids := Parse(raw, attributeID)
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Build encodes optionIDs for attributeID, preserving input order. An empty
// id list yields "", the canonical "no tag" value. Duplicate ids are written once.
func Build(attributeID int, optionIDs []int) string {
	if len(optionIDs) == 0 {
		return ""
	}
	var b strings.Builder
	seen := make(map[int]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Token{AttributeID: attributeID, OptionID: id}.String())
	}
	return b.String()
}

// Matches reports whether raw assigns optionID of attributeID.
func Matches(raw string, attributeID, optionID int) bool {
	for _, id := range Parse(raw, attributeID) {
		if id == optionID {
			return true
		}
	}
	return false
}

// Merge adds optionIDs to the ids raw already assigns for attributeID.
// Tokens of other attributes are not carried over: a tag holds one attribute only.
func Merge(raw string, attributeID int, optionIDs ...int) string {
	ids := Parse(raw, attributeID)
	return Build(attributeID, append(ids, optionIDs...))
}

// Equal compares two tags for attributeID ignoring token order.
func Equal(a, b string, attributeID int) bool {
	as, bs := ParseSet(a, attributeID), ParseSet(b, attributeID)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}
