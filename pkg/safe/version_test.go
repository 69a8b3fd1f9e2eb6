package safe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{"1.3.0", "1.3.0", 0},
		{"1.0.0", "1.2.0", -1},
		{"1.4.1", "1.0.0", 1},
		{"1.3", "1.3.0", 0},
		{"1.3.0", "1.3", 0},
		{"1.2.0", "1.10.0", -1},
		{"2", "1.9.9", 1},
		{"0.1.0", "1.0.0", -1},
		// non-numeric components coerce to zero
		{"1.x.0", "1.0.0", 0},
		{"", "0.0.0", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.a+"_vs_"+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.expected, CompareVersions(tc.a, tc.b))
			assert.Equal(t, -tc.expected, CompareVersions(tc.b, tc.a))
		})
	}
}

func TestCleanVersion(t *testing.T) {
	assert.Equal(t, "1.3.0", CleanVersion("1.3.0+L2"))
	assert.Equal(t, "1.4.1", CleanVersion("1.4.1"))
	assert.Equal(t, "1.3.0", CleanVersion(" 1.3.0+build.7 "))
}

func TestProfileFor(t *testing.T) {
	testCases := []struct {
		version      string
		legacyDomain bool
		txTypehash   string
	}{
		{"0.1.0", true, SafeTxTypehashLegacy.Hex()},
		{"1.0.0", true, SafeTxTypehash.Hex()},
		{"1.1.1", true, SafeTxTypehash.Hex()},
		{"1.2.0", true, SafeTxTypehash.Hex()},
		{"1.3.0", false, SafeTxTypehash.Hex()},
		{"1.3.0+L2", false, SafeTxTypehash.Hex()},
		{"1.4.1", false, SafeTxTypehash.Hex()},
	}

	for _, tc := range testCases {
		t.Run(tc.version, func(t *testing.T) {
			p := profileFor(tc.version)
			assert.Equal(t, tc.legacyDomain, p.legacyDomain)
			assert.Equal(t, tc.txTypehash, p.txTypehash.Hex())
			if tc.legacyDomain {
				assert.Equal(t, DomainSeparatorTypehashLegacy, p.domainTypehash)
			} else {
				assert.Equal(t, DomainSeparatorTypehash, p.domainTypehash)
			}
		})
	}
}
