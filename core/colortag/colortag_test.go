package colortag

import (
	"reflect"
	"testing"
)

func TestParse_FiltersByAttribute(t *testing.T) {
	raw := "attribute93-10, attribute93-11,attribute142-10,attribute93-10"
	got := Parse(raw, 93)
	want := []int{10, 11}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestParse_Empty(t *testing.T) {
	if got := Parse("", 93); len(got) != 0 {
		t.Errorf("Parse(\"\") = %v, want empty", got)
	}
	if got := ParseSet("", 93); len(got) != 0 {
		t.Errorf("ParseSet(\"\") = %v, want empty", got)
	}
}

func TestParse_DropsMalformedTokens(t *testing.T) {
	raw := "color-10,attribute93-,attributeX-4,attribute-5,attribute93-+4,attribute93-12,,attribute93-1 2"
	got := Parse(raw, 93)
	want := []int{12}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %v, want %v", got, want)
	}
}

func TestBuild(t *testing.T) {
	if got := Build(93, nil); got != "" {
		t.Errorf("Build(93, nil) = %q, want empty", got)
	}
	if got := Build(93, []int{11, 10}); got != "attribute93-11,attribute93-10" {
		t.Errorf("Build = %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := [][]int{{1}, {10, 11}, {300, 5, 42, 7}}
	for _, ids := range cases {
		for _, attr := range []int{1, 93, 1024} {
			got := Parse(Build(attr, ids), attr)
			if !reflect.DeepEqual(got, ids) {
				t.Errorf("Parse(Build(%d, %v)) = %v", attr, ids, got)
			}
		}
	}
}

func TestMatchesAndMerge(t *testing.T) {
	raw := "attribute93-10,attribute142-11"
	if !Matches(raw, 93, 10) {
		t.Error("Matches(93,10) = false, want true")
	}
	if Matches(raw, 93, 11) {
		t.Error("Matches(93,11) = true, want false")
	}
	merged := Merge(raw, 93, 12, 10)
	if merged != "attribute93-10,attribute93-12" {
		t.Errorf("Merge = %q", merged)
	}
}

func TestEqual_IgnoresOrder(t *testing.T) {
	if !Equal("attribute93-1,attribute93-2", "attribute93-2, attribute93-1", 93) {
		t.Error("Equal: want true for reordered tokens")
	}
	if Equal("attribute93-1", "attribute93-1,attribute93-2", 93) {
		t.Error("Equal: want false for different sets")
	}
}
