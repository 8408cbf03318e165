package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"alice@example.com", "a***e@example.com"},
		{"ab@example.com", "a*@example.com"},
		{"a@example.com", "*@example.com"},
		{"not-an-email", "***"},
		{"@example.com", "***"},
		{"", "***"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MaskEmail(tc.in), "input %q", tc.in)
	}
}
