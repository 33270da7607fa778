package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c \r\n"))
	assert.Equal(t, "", CleanText(" \n\t "))
}

func TestSplitBySentences(t *testing.T) {
	text := "I love you. Do you?  Yes!\nWe run. Far away"

	got := SplitBySentences(text, 2)
	assert.Equal(t, []string{"I love you. Do you?", "Yes! We run.", "Far away"}, got)

	got = SplitBySentences(text, 10)
	assert.Equal(t, []string{"I love you. Do you? Yes! We run. Far away"}, got)

	// zero is treated as one sentence per chunk
	got = SplitBySentences("One. Two.", 0)
	assert.Equal(t, []string{"One.", "Two."}, got)

	assert.Empty(t, SplitBySentences("   ", 3))
}

func TestSplitBySentencesKeepsInnerPunctuation(t *testing.T) {
	// no whitespace after the dot, so no split
	got := SplitBySentences("Version 1.5 shipped. Great", 1)
	assert.Equal(t, []string{"Version 1.5 shipped.", "Great"}, got)
}

func TestSplitByWords(t *testing.T) {
	got := SplitByWords("a b c d e f g", 3)
	assert.Equal(t, []string{"a b c", "d e f", "g"}, got)

	assert.Empty(t, SplitByWords("", 3))
	assert.Equal(t, []string{"a", "b"}, SplitByWords("a b", 0))
}

func TestSplitBundled(t *testing.T) {
	line := strings.Repeat("word ", 12) + "end."
	text := line + "\n" + line + "\n" + "short tail"

	got := SplitBundled(text, 10) // budget raised to 20
	require.Len(t, got, 2)
	assert.Equal(t, line+" "+line, got[0])
	assert.Equal(t, "short tail", got[1])
}

func TestSegmentDispatch(t *testing.T) {
	o := DefaultOptions()
	got, err := Segment("One. Two. Three. Four.", o)
	require.NoError(t, err)
	assert.Equal(t, []string{"One. Two. Three.", "Four."}, got)

	o.Method = "paragraphs"
	_, err = Segment("x", o)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestOptionsValidate(t *testing.T) {
	o := DefaultOptions()
	assert.NoError(t, o.Validate())

	assert.ErrorIs(t, o.WithParam(11).Validate(), ErrOutOfRange)

	o.Method = ByWords
	assert.NoError(t, o.Validate())
	assert.ErrorIs(t, o.WithParam(10).Validate(), ErrOutOfRange)
	assert.Equal(t, 350, o.Param())

	o.Method = Bundled
	assert.NoError(t, o.Validate())
	assert.ErrorIs(t, o.WithParam(301).Validate(), ErrOutOfRange)

	o.Method = "nope"
	assert.ErrorIs(t, o.Validate(), ErrUnknownMethod)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo", 5))
	assert.Equal(t, "hé…", Truncate("héllo", 2))
}
