package keyboard

import "mirroir/internal/hidclient"

// deadKeySequence describes how a precomposed accented character is
// produced on the reference US layout: an Option-modified dead key that
// arms a pending diacritic, followed by the base letter that composes
// it. The OS key-translation service holds the dead-key state between
// the two keystrokes; the synthesized HID stream must reproduce that
// timing with an explicit inter-keystroke delay or the base letter can
// land before the dead key is registered.
type deadKeySequence struct {
	deadKey keycode
	base    rune
}

// deadKeyTable maps a precomposed character to its dead-key trigger and
// base letter. Triggers match macOS's built-in US layout Option-key dead
// keys: Option+e (acute), Option+` (grave), Option+i (circumflex),
// Option+u (diaeresis), Option+n (tilde).
var deadKeyTable map[rune]deadKeySequence

func init() {
	acute := keycode{Usage: 0x08, Modifier: ModOption}      // Option+E
	grave := keycode{Usage: 0x35, Modifier: ModOption}      // Option+`
	circumflex := keycode{Usage: 0x0C, Modifier: ModOption} // Option+I
	diaeresis := keycode{Usage: 0x18, Modifier: ModOption}  // Option+U
	tilde := keycode{Usage: 0x11, Modifier: ModOption}      // Option+N

	type entry struct {
		r  rune
		dk keycode
		b  rune
	}
	entries := []entry{
		{'á', acute, 'a'}, {'é', acute, 'e'}, {'í', acute, 'i'}, {'ó', acute, 'o'}, {'ú', acute, 'u'},
		{'Á', acute, 'A'}, {'É', acute, 'E'}, {'Í', acute, 'I'}, {'Ó', acute, 'O'}, {'Ú', acute, 'U'},

		{'à', grave, 'a'}, {'è', grave, 'e'}, {'ì', grave, 'i'}, {'ò', grave, 'o'}, {'ù', grave, 'u'},
		{'À', grave, 'A'}, {'È', grave, 'E'}, {'Ì', grave, 'I'}, {'Ò', grave, 'O'}, {'Ù', grave, 'U'},

		{'â', circumflex, 'a'}, {'ê', circumflex, 'e'}, {'î', circumflex, 'i'}, {'ô', circumflex, 'o'}, {'û', circumflex, 'u'},
		{'Â', circumflex, 'A'}, {'Ê', circumflex, 'E'}, {'Î', circumflex, 'I'}, {'Ô', circumflex, 'O'}, {'Û', circumflex, 'U'},

		{'ä', diaeresis, 'a'}, {'ë', diaeresis, 'e'}, {'ï', diaeresis, 'i'}, {'ö', diaeresis, 'o'}, {'ü', diaeresis, 'u'}, {'ÿ', diaeresis, 'y'},
		{'Ä', diaeresis, 'A'}, {'Ë', diaeresis, 'E'}, {'Ï', diaeresis, 'I'}, {'Ö', diaeresis, 'O'}, {'Ü', diaeresis, 'U'},

		{'ã', tilde, 'a'}, {'ñ', tilde, 'n'}, {'õ', tilde, 'o'},
		{'Ã', tilde, 'A'}, {'Ñ', tilde, 'N'}, {'Õ', tilde, 'O'},
	}

	deadKeyTable = make(map[rune]deadKeySequence, len(entries))
	for _, e := range entries {
		deadKeyTable[e.r] = deadKeySequence{deadKey: e.dk, base: e.b}
	}
}

// typeDeadKeySequence emits the dead-key press/release, waits
// DeadKeyDelayUs, then emits the base letter's press/release. It never
// packs either keystroke alongside others in the same report: a dead key
// sharing a report with unrelated keys would not compose correctly.
func (p *Pipeline) typeDeadKeySequence(seq deadKeySequence) error {
	dead := hidclient.KeyboardReport{Modifier: seq.deadKey.Modifier}
	dead.Keys[0] = seq.deadKey.Usage
	if err := p.hid.PostKeyboard(dead); err != nil {
		return err
	}
	p.sleep(us(p.tun.KeyHoldUs))
	if err := p.hid.PostKeyboard(hidclient.ReleaseReport()); err != nil {
		return err
	}
	p.sleep(us(p.tun.DeadKeyDelayUs))

	baseKC, ok := charTable[seq.base]
	if !ok {
		return errUnresolvedKey
	}
	base := hidclient.KeyboardReport{Modifier: baseKC.Modifier}
	base.Keys[0] = baseKC.Usage
	if err := p.hid.PostKeyboard(base); err != nil {
		return err
	}
	p.sleep(us(p.tun.KeyHoldUs))
	if err := p.hid.PostKeyboard(hidclient.ReleaseReport()); err != nil {
		return err
	}
	p.sleep(us(p.tun.KeystrokeDelayUs))
	return nil
}
