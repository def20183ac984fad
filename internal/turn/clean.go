package turn

import (
	"regexp"
	"strings"
)

// whitespaceRegex matches one or more whitespace characters.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// decorGlyphs is the fixed set of decorative characters stripped by
// CleanDecor in addition to the pictographic ranges: bullets, dashes,
// checkmarks, and arrows commonly pasted out of chat transcripts.
var decorGlyphs = map[rune]bool{
	'•': true, '◦': true, '▪': true, '▸': true, '‣': true, '·': true,
	'–': true, '—': true, '―': true,
	'✓': true, '✔': true, '✗': true, '✘': true,
	'★': true, '☆': true, '✦': true, '✨': true,
	'→': true, '←': true, '↑': true, '↓': true, '⇒': true, '⇐': true, '⟶': true,
}

// emojiRanges covers emoji and pictographic code points, plus the joiner
// and variation selectors that travel with them.
var emojiRanges = [][2]rune{
	{0x1F000, 0x1F0FF}, // mahjong, dominoes, playing cards
	{0x1F100, 0x1F1FF}, // enclosed alphanumerics, regional indicators
	{0x1F300, 0x1F5FF}, // misc symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport and map symbols
	{0x1F700, 0x1F77F}, // alchemical symbols
	{0x1F900, 0x1F9FF}, // supplemental symbols and pictographs
	{0x1FA00, 0x1FAFF}, // extended pictographs
	{0x2600, 0x26FF},   // misc symbols
	{0x2700, 0x27BF},   // dingbats
	{0x2B00, 0x2BFF},   // misc symbols and arrows
	{0xFE00, 0xFE0F},   // variation selectors
	{0x200D, 0x200D},   // zero-width joiner
	{0x20E3, 0x20E3},   // combining enclosing keycap
}

// isEmoji reports whether r falls in a pictographic range.
func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// CleanDecor strips emoji, pictographic code points, and decorative glyphs
// from s, collapses runs of whitespace to a single space, and trims. No
// other characters are altered.
func CleanDecor(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isEmoji(r) || decorGlyphs[r] {
			// Leave a space so adjacent words do not fuse; collapsed below.
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	out := whitespaceRegex.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(out)
}
