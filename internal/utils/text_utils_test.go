package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	short := "hello"
	assert.Equal(t, short, tp.TruncateText(short, 100))

	long := strings.Repeat("a", 200)
	out := tp.TruncateText(long, 50)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("a", 50)))
	assert.Contains(t, out, "truncated")
}

func TestTruncateTextDoesNotSplitRunes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "é" is two bytes; cutting at 3 would land mid-rune.
	out := tp.TruncateText("aéé", 3)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasPrefix(out, "aé"))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	valid := "all good"
	assert.Equal(t, valid, tp.SanitizeUTF8(valid))

	invalid := "bad\xff\xfebytes"
	out := tp.SanitizeUTF8(invalid)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "badbytes", out)
}
