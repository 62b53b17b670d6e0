//go:build !cgo

package keyboard

// buildSubstitutionTable reports no layout is available. Without cgo,
// the Carbon text-input-source APIs cannot be reached; the pipeline
// falls back to the reference US-QWERTY table for every character.
func buildSubstitutionTable() (map[rune]keycode, bool) {
	return nil, false
}
