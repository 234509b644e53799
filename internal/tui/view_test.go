package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "fits", truncateName("fits", 30))

	long := strings.Repeat("a", 50)
	assert.Equal(t, strings.Repeat("a", 27)+"...", truncateName(long, 30))
}

func TestTruncateNameMultiByte(t *testing.T) {
	long := strings.Repeat("日", 50)
	got := truncateName(long, 30)

	assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
	assert.Equal(t, strings.Repeat("日", 27)+"...", got)
}
