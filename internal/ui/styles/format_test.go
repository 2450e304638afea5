package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "", TruncateString("hello", 0))
	assert.Equal(t, "hello", TruncateString("hello", 5))
	assert.Equal(t, "...", TruncateString("hello", 3))
	assert.Equal(t, "hел...", TruncateString("hелло-мир", 6))
}

func TestFormatVisibility(t *testing.T) {
	assert.True(t, strings.Contains(FormatVisibility(true), "public"))
	assert.True(t, strings.Contains(FormatVisibility(false), "private"))
}
