package rules

// Unicode blocks treated as emoji by the emoji limiter. Coarse on
// purpose: misclassifying an odd symbol only costs one slot of the
// allowance.
var emojiRanges = [][2]rune{
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F680, 0x1F6FF}, // transport
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x1FA70, 0x1FAFF}, // extended pictographs
	{0x2600, 0x26FF},   // misc symbols
	{0x2700, 0x27BF},   // dingbats
	{0xFE00, 0xFE0F},   // variation selectors
	{0x1F1E6, 0x1F1FF}, // regional indicators
}

func isEmoji(r rune) bool {
	for _, rng := range emojiRanges {
		if r >= rng[0] && r <= rng[1] {
			return true
		}
	}
	return false
}

// limitEmojis keeps the first max emoji runes (left to right) and strips
// the rest. Variation selectors ride along with the rune they modify and
// do not consume a slot on their own.
func limitEmojis(text string, max int) string {
	if max < 0 {
		max = 0
	}
	kept := 0
	out := make([]rune, 0, len(text))
	for _, r := range text {
		if !isEmoji(r) {
			out = append(out, r)
			continue
		}
		if r >= 0xFE00 && r <= 0xFE0F {
			if len(out) > 0 && isEmoji(out[len(out)-1]) {
				out = append(out, r)
			}
			continue
		}
		if kept < max {
			out = append(out, r)
			kept++
		}
	}
	return string(out)
}
