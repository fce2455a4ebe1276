package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitNonEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitNonEmpty("a\n\n  \nb\n"))
	assert.Nil(t, splitNonEmpty("\n \n"))
}

func TestParseSeconds(t *testing.T) {
	assert.Equal(t, 3*time.Minute, parseSeconds("180"))
	assert.Equal(t, 90*time.Second, parseSeconds("90.0"))
	assert.Equal(t, time.Duration(0), parseSeconds("None"))
	assert.Equal(t, time.Duration(0), parseSeconds(""))
	assert.Equal(t, time.Duration(0), parseSeconds("not-a-number"))
}
