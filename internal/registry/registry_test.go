package registry

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFamilies(t *testing.T) {
	tests := []struct {
		name   string
		family Family
	}{
		{"rand", FamilyRandom},
		{"randn", FamilyRandom},
		{"ones", FamilyConstructor},
		{"linspace", FamilyConstructor},
		{"sqrt", FamilyElementary},
		{"atan2", FamilyElementary},
		{"gamma", FamilyElementary},
		{"/", FamilyDivision},
		{"\\", FamilyDivision},
		{"inv", FamilyDivision},
		{"abs", FamilyComplexObserver},
		{"angle", FamilyComplexObserver},
		{"mean", FamilyStatistical},
		{"cor", FamilyStatistical},
		{"det", FamilyLinalg},
		{"dot", FamilyLinalg},
		{"+", FamilyBinary},
		{"^", FamilyBinary},
		{"include", FamilyInclude},
	}
	for _, tt := range tests {
		f, ok := Lookup(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.family, f, tt.name)
	}
}

func TestLookupUntracked(t *testing.T) {
	for _, name := range []string{"println", "reshape", "complex", "foo"} {
		_, ok := Lookup(name)
		assert.False(t, ok, name)
	}
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := Names()
	assert.True(t, sort.StringsAreSorted(names))

	// Every listed name resolves, and every family has at least one member.
	seen := map[Family]bool{}
	for _, n := range names {
		f, ok := Lookup(n)
		require.True(t, ok, n)
		seen[f] = true
	}
	for fam := range validFamilies {
		assert.True(t, seen[fam], "family %s has no operations", fam)
	}
}
