package keyboard

import (
	"errors"
	"os"
	"time"

	"mirroir/internal/hidclient"
	"mirroir/internal/tunables"
)

// layoutIDEnvVar names the environment variable carrying the opaque
// non-reference layout identifier. Its value is not
// inspected beyond presence: the OS key-translation service looks up
// whatever layout is already active.
const layoutIDEnvVar = "LAYOUT_ID"

// KeyboardPoster is the subset of hidclient.Client the pipeline needs.
type KeyboardPoster interface {
	PostKeyboard(r hidclient.KeyboardReport) error
}

// Pipeline chunks typed text into keyboard reports, substituting a
// non-reference layout's key translations when LAYOUT_ID is configured.
type Pipeline struct {
	hid          KeyboardPoster
	tun          tunables.Values
	substitution map[rune]keycode
	skipped      map[rune]struct{}
	sleep        func(time.Duration)
}

// NewPipeline builds a keyboard Pipeline, resolving a layout substitution
// table at startup if LAYOUT_ID is set and the platform can build one.
func NewPipeline(hid KeyboardPoster, tun tunables.Values) *Pipeline {
	p := &Pipeline{hid: hid, tun: tun, sleep: time.Sleep, skipped: make(map[rune]struct{})}
	if os.Getenv(layoutIDEnvVar) != "" {
		if table, ok := buildSubstitutionTable(); ok {
			p.substitution = table
			for r := range charTable {
				if _, covered := table[r]; !covered {
					p.skipped[r] = struct{}{}
				}
			}
		}
	}
	return p
}

// SetTunables replaces the pipeline's tunable values, e.g. after a forced
// reload_policy re-read of the settings file. Safe to call between
// actions, matching the single-in-flight-command invariant the socket
// server enforces.
func (p *Pipeline) SetTunables(tun tunables.Values) {
	p.tun = tun
}

func us(n int) time.Duration { return time.Duration(n) * time.Microsecond }

// segment is a contiguous run of either typeable or skipped characters.
type segment struct {
	text     []rune
	typeable bool
}

// segmentText splits text into contiguous typeable/skipped runs.
func (p *Pipeline) segmentText(text string) []segment {
	var segments []segment
	var current []rune
	var currentTypeable bool
	first := true

	for _, r := range text {
		_, typeable := p.lookupChar(r)
		if first || typeable != currentTypeable {
			if !first {
				segments = append(segments, segment{text: current, typeable: currentTypeable})
			}
			current = nil
			currentTypeable = typeable
			first = false
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		segments = append(segments, segment{text: current, typeable: currentTypeable})
	}
	return segments
}

// Type sends a string to the virtual-HID service as a sequence of keyboard
// reports.
// It returns the runes that were skipped because no typeable mapping
// existed on either the reference or substitution table.
func (p *Pipeline) Type(text string) (skipped []rune, err error) {
	chunkSize := p.tun.HidTypingChunkSize
	if chunkSize <= 0 {
		chunkSize = 15
	}

	for _, seg := range p.segmentText(text) {
		if !seg.typeable {
			skipped = append(skipped, seg.text...)
			continue
		}
		if err := p.typeSegment(seg.text, chunkSize); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// typeSegment emits a typeable run, pulling any dead-key-composed
// character out of the normal chunking path: it flushes whatever plain
// runes were pending into their own chunk first, emits the dead-key
// sequence on its own, then resumes chunking the runes that follow. A
// dead key is never packed into the same report as surrounding keys.
func (p *Pipeline) typeSegment(runes []rune, chunkSize int) error {
	var pending []rune
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		for _, chunk := range chunkRunes(pending, chunkSize) {
			if err := p.typeChunk(chunk); err != nil {
				return err
			}
		}
		pending = nil
		return nil
	}

	for _, r := range runes {
		if seq, ok := deadKeyTable[r]; ok {
			if err := flush(); err != nil {
				return err
			}
			if err := p.typeDeadKeySequence(seq); err != nil {
				return err
			}
			continue
		}
		pending = append(pending, r)
	}
	return flush()
}

// chunkRunes splits runs into fixed-size chunks, starting a new chunk
// whenever the required modifier differs from the previous character.
func chunkRunes(runes []rune, size int) [][]rune {
	var chunks [][]rune
	var current []rune
	var currentMod byte
	haveMod := false

	for _, r := range runes {
		kc, _ := charTable[r]
		if len(current) >= size || (haveMod && kc.Modifier != currentMod) {
			chunks = append(chunks, current)
			current = nil
			haveMod = false
		}
		current = append(current, r)
		currentMod = kc.Modifier
		haveMod = true
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// typeChunk builds, emits, holds, and releases a keyboard report for up
// to 32 usage codes sharing one modifier mask.
func (p *Pipeline) typeChunk(runes []rune) error {
	var report hidclient.KeyboardReport
	slot := 0
	for _, r := range runes {
		kc, ok := p.lookupChar(r)
		if !ok || slot >= hidclient.KeyboardMaxSlots {
			continue
		}
		report.Modifier |= kc.Modifier
		report.Keys[slot] = kc.Usage
		slot++
	}

	if err := p.hid.PostKeyboard(report); err != nil {
		return err
	}
	p.sleep(us(p.tun.KeyHoldUs))
	if err := p.hid.PostKeyboard(hidclient.ReleaseReport()); err != nil {
		return err
	}
	p.sleep(us(p.tun.KeystrokeDelayUs))
	return nil
}

// PressKey resolves a named key (or single non-named character),
// ORs in the given modifier mask, and emits a single press/release cycle.
func (p *Pipeline) PressKey(name string, modifiers []string) error {
	usage, ok := ResolveNamedKey(name)
	if !ok {
		return errUnresolvedKey
	}
	mask := ModifierMask(modifiers)
	if _, named := namedKeyTable[name]; !named {
		if runes := []rune(name); len(runes) == 1 {
			mask |= charTable[runes[0]].Modifier
		}
	}

	var report hidclient.KeyboardReport
	report.Modifier = mask
	report.Keys[0] = usage

	if err := p.hid.PostKeyboard(report); err != nil {
		return err
	}
	p.sleep(us(p.tun.KeyHoldUs))
	return p.hid.PostKeyboard(hidclient.ReleaseReport())
}

var errUnresolvedKey = errors.New("keyboard: key name not resolvable")
