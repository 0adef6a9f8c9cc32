package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamesMatch(t *testing.T) {
	m := NewMatcher(NameThresholdDefault)

	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"both empty", "", "", false},
		{"one empty", "ABC Daycare", "", false},
		{"exact after normalization", "ABC Daycare LLC", "abc daycare inc.", true},
		{"same tokens different order", "Daycare Sunshine Academy", "Sunshine Academy Daycare", true},
		{"unrelated names", "Sunshine Daycare", "Oak Street Transport", false},
		{"partial overlap below threshold", "Bright Futures Academy", "Bright Beginnings Center", false},
		{"suffix only differs", "Little Stars Child Care Inc", "Little Stars Child Care", true},
		{"normalizes to empty", "LLC", "Inc", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.NamesMatch(tc.a, tc.b))
		})
	}
}

func TestNamesMatch_Symmetric(t *testing.T) {
	m := NewMatcher(NameThresholdDefault)

	pairs := [][2]string{
		{"ABC Daycare LLC", "abc daycare inc."},
		{"Bright Futures Academy", "Bright Beginnings Center"},
		{"Sunshine Daycare", "Oak Street Transport"},
		{"", "ABC Daycare"},
	}

	for _, p := range pairs {
		assert.Equal(t, m.NamesMatch(p[0], p[1]), m.NamesMatch(p[1], p[0]),
			"pair: %q vs %q", p[0], p[1])
	}
}

func TestNamesMatch_ThresholdTunable(t *testing.T) {
	// Three shared tokens over a union of four: Jaccard 0.75.
	a := "Sunny Meadows Learning Center"
	b := "Sunny Meadows Learning"

	strict := NewMatcher(0.8)
	assert.False(t, strict.NamesMatch(a, b))

	loose := NewMatcher(0.7)
	assert.True(t, loose.NamesMatch(a, b))
}

func TestAddressesMatch(t *testing.T) {
	m := NewMatcher(NameThresholdDefault)

	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"both empty", "", "", false},
		{"one empty", "123 Main St", "", false},
		{"unit and street type stripped", "123 Main St, Suite 4", "123 Main Street", true},
		{"fuller address contains partial", "123 Main St Springfield", "123 Main Street", true},
		{"different street numbers", "123 Main St", "125 Main St", false},
		{"different streets", "123 Main St", "123 Oak Ave", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.AddressesMatch(tc.a, tc.b))
		})
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard(tokenSet("alpha beta"), tokenSet("beta alpha")))
	assert.Equal(t, 0.0, jaccard(tokenSet("alpha"), tokenSet("gamma")))
	assert.InDelta(t, 1.0/3.0, jaccard(tokenSet("alpha beta"), tokenSet("beta gamma")), 1e-9)
	assert.Equal(t, 0.0, jaccard(tokenSet(""), tokenSet("")))
}
