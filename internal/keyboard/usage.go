// Package keyboard translates Unicode text and named keys into HID
// keyboard usage codes and modifier masks, chunks them into reports, and
// substitutes a non-reference host layout when configured.
package keyboard

// Modifier bit masks (left-side variants).
const (
	ModControl byte = 0x01
	ModShift   byte = 0x02
	ModOption  byte = 0x04
	ModCommand byte = 0x08
)

// ModifierMask ORs together the masks for the given modifier names.
// Unknown names are ignored.
func ModifierMask(names []string) byte {
	var mask byte
	for _, n := range names {
		switch n {
		case "command":
			mask |= ModCommand
		case "shift":
			mask |= ModShift
		case "option":
			mask |= ModOption
		case "control":
			mask |= ModControl
		}
	}
	return mask
}

// keycode pairs a HID usage code with the modifier bits it requires on
// the reference US-QWERTY layout.
type keycode struct {
	Usage    uint16
	Modifier byte
}

// charTable maps a reference-layout character to its usage code and
// required modifier. Built once at package init.
var charTable map[rune]keycode

// namedKeyTable maps named keys (return, escape, arrows, function keys,
// ...) to a usage code. These never carry an implicit modifier; any
// modifier comes from the caller.
var namedKeyTable map[string]uint16

func init() {
	charTable = make(map[rune]keycode, 96)
	namedKeyTable = make(map[string]uint16, 32)

	// Letters: usage codes 0x04-0x1D map a-z in order.
	for i := 0; i < 26; i++ {
		lower := rune('a' + i)
		upper := rune('A' + i)
		usage := uint16(0x04 + i)
		charTable[lower] = keycode{Usage: usage}
		charTable[upper] = keycode{Usage: usage, Modifier: ModShift}
	}

	// Digits: usage codes 0x1E-0x26 map 1-9, then 0x27 for 0.
	for i := 0; i < 9; i++ {
		charTable[rune('1'+i)] = keycode{Usage: uint16(0x1E + i)}
	}
	charTable['0'] = keycode{Usage: 0x27}

	// Shifted digit row punctuation (US-QWERTY reference).
	shiftedDigits := map[rune]uint16{
		'!': 0x1E, '@': 0x1F, '#': 0x20, '$': 0x21, '%': 0x22,
		'^': 0x23, '&': 0x24, '*': 0x25, '(': 0x26, ')': 0x27,
	}
	for r, usage := range shiftedDigits {
		charTable[r] = keycode{Usage: usage, Modifier: ModShift}
	}

	unshifted := map[rune]uint16{
		'\n': 0x28, '\t': 0x2B, ' ': 0x2C,
		'-': 0x2D, '=': 0x2E, '[': 0x2F, ']': 0x30, '\\': 0x31,
		';': 0x33, '\'': 0x34, '`': 0x35, ',': 0x36, '.': 0x37, '/': 0x38,
	}
	for r, usage := range unshifted {
		charTable[r] = keycode{Usage: usage}
	}

	shifted := map[rune]uint16{
		'_': 0x2D, '+': 0x2E, '{': 0x2F, '}': 0x30, '|': 0x31,
		':': 0x33, '"': 0x34, '~': 0x35, '<': 0x36, '>': 0x37, '?': 0x38,
	}
	for r, usage := range shifted {
		charTable[r] = keycode{Usage: usage, Modifier: ModShift}
	}

	namedKeyTable["return"] = 0x28
	namedKeyTable["enter"] = 0x28
	namedKeyTable["escape"] = 0x29
	namedKeyTable["delete"] = 0x2A
	namedKeyTable["tab"] = 0x2B
	namedKeyTable["space"] = 0x2C
	namedKeyTable["capslock"] = 0x39
	namedKeyTable["right"] = 0x4F
	namedKeyTable["left"] = 0x50
	namedKeyTable["down"] = 0x51
	namedKeyTable["up"] = 0x52
	namedKeyTable["home"] = 0x4A
	namedKeyTable["end"] = 0x4D
	namedKeyTable["pageup"] = 0x4B
	namedKeyTable["pagedown"] = 0x4E
	namedKeyTable["forwarddelete"] = 0x4C
	for i := 0; i < 12; i++ {
		namedKeyTable[fName(i+1)] = uint16(0x3A + i)
	}
}

func fName(n int) string {
	switch n {
	case 1:
		return "f1"
	case 2:
		return "f2"
	case 3:
		return "f3"
	case 4:
		return "f4"
	case 5:
		return "f5"
	case 6:
		return "f6"
	case 7:
		return "f7"
	case 8:
		return "f8"
	case 9:
		return "f9"
	case 10:
		return "f10"
	case 11:
		return "f11"
	default:
		return "f12"
	}
}

// lookupChar resolves a character against the active layout: the
// substitution table first (if built), then the reference table.
func (p *Pipeline) lookupChar(r rune) (keycode, bool) {
	if p.substitution != nil {
		if kc, ok := p.substitution[r]; ok {
			return kc, true
		}
		if _, skipped := p.skipped[r]; skipped {
			return keycode{}, false
		}
	}
	if kc, ok := charTable[r]; ok {
		return kc, true
	}
	if seq, ok := deadKeyTable[r]; ok {
		return seq.deadKey, true
	}
	return keycode{}, false
}

// ResolveNamedKey resolves a named key, falling back to the single-
// character table for a non-named single rune.
func ResolveNamedKey(name string) (usage uint16, ok bool) {
	if u, ok := namedKeyTable[name]; ok {
		return u, true
	}
	runes := []rune(name)
	if len(runes) == 1 {
		if kc, ok := charTable[runes[0]]; ok {
			return kc.Usage, true
		}
	}
	return 0, false
}
