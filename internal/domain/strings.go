package domain

// TruncateMiddle shortens s to at most max runes, keeping both ends. Head
// and tail usually carry the useful part of a long diagnostic (paths,
// stderr), so the cut happens in the middle.
func TruncateMiddle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	keepLeft := (max - 1) / 2
	keepRight := max - 1 - keepLeft
	return string(runes[:keepLeft]) + "…" + string(runes[len(runes)-keepRight:])
}
