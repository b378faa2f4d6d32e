package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJdkVersionLegacyEightUpdate(t *testing.T) {
	assert.Equal(t, JdkVersion{Major: 8, Minor: 0, Security: 392, Build: 8}, ParseJdkVersion("8u392+8"))
	assert.Equal(t, JdkVersion{Major: 8, Minor: 0, Security: 392}, ParseJdkVersion("8u392"))
	assert.Equal(t, JdkVersion{Major: 8, Minor: 0}, ParseJdkVersion("8U0"))
}

func TestParseJdkVersionDottedNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want JdkVersion
	}{
		{"23.0.1+13", JdkVersion{Major: 23, Minor: 0, Security: 1, Patch: 0, Build: 13}},
		{"23+38", JdkVersion{Major: 23, Minor: 0, Security: 0, Patch: 0, Build: 38}},
		{"18.0.2.1+1", JdkVersion{Major: 18, Minor: 0, Security: 2, Patch: 1, Build: 1}},
		{"17.0.8.1+1", JdkVersion{Major: 17, Minor: 0, Security: 8, Patch: 1, Build: 1}},
		{"17.0.3.1+2", JdkVersion{Major: 17, Minor: 0, Security: 3, Patch: 1, Build: 2}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseJdkVersion(c.in), c.in)
	}
}

func TestParseJdkVersionNeverErrors(t *testing.T) {
	// Unparsable components default to 0 rather than failing.
	assert.Equal(t, JdkVersion{}, ParseJdkVersion("not-a-version"))
}

func TestCompareJdkVersionOrdersByAllFiveFields(t *testing.T) {
	a := ParseJdkVersion("17.0.3+7")
	b := ParseJdkVersion("17.0.3.1+2")
	assert.Negative(t, CompareJdkVersion(a, b))

	c := ParseJdkVersion("18.0.1+12")
	d := ParseJdkVersion("17.0.13+12")
	assert.Positive(t, CompareJdkVersion(c, d))
}
