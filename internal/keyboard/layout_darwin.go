//go:build darwin && cgo

package keyboard

/*
#cgo LDFLAGS: -framework Carbon

#include <Carbon/Carbon.h>

// translateChar runs UCKeyTranslate for one (virtual keycode, modifier)
// pair against the current keyboard layout and returns the produced
// character, or 0 if nothing was produced. This is the same reverse
// lookup idiom used to build a keysym table from an xkb keymap: probe
// every input combination and invert the result into char -> input map.
static UInt32 translateChar(const UCKeyboardLayout *layout, UInt16 keyCode, UInt16 modifiers) {
    UInt32 deadKeyState = 0;
    UniChar chars[4];
    UniCharCount length = 0;

    OSStatus status = UCKeyTranslate(
        layout, keyCode, kUCKeyActionDown, modifiers,
        LMGetKbdType(), kUCKeyTranslateNoDeadKeysBit,
        &deadKeyState, 4, &length, chars
    );
    if (status != noErr || length == 0) {
        return 0;
    }
    return (UInt32)chars[0];
}

// buildReverseTable fills outChars/outKeyCodes/outShift for every
// producible character across virtual keycodes 0-127 with and without
// the shift bit. Returns the number of entries written.
static int buildReverseTable(UInt32 *outChars, UInt16 *outKeyCodes, UInt8 *outShift, int maxEntries) {
    TISInputSourceRef source = TISCopyCurrentKeyboardLayoutInputSource();
    if (source == NULL) {
        return -1;
    }
    CFDataRef layoutData = (CFDataRef)TISGetInputSourceProperty(source, kTISPropertyUnicodeKeyLayoutData);
    if (layoutData == NULL) {
        CFRelease(source);
        return -1;
    }
    const UCKeyboardLayout *layout = (const UCKeyboardLayout *)CFDataGetBytePtr(layoutData);

    int count = 0;
    for (UInt16 keyCode = 0; keyCode < 128 && count < maxEntries; keyCode++) {
        UInt32 plain = translateChar(layout, keyCode, 0);
        if (plain != 0) {
            outChars[count] = plain;
            outKeyCodes[count] = keyCode;
            outShift[count] = 0;
            count++;
        }
        if (count >= maxEntries) break;
        UInt32 shifted = translateChar(layout, keyCode, shiftKey >> 8);
        if (shifted != 0 && shifted != plain) {
            outChars[count] = shifted;
            outKeyCodes[count] = keyCode;
            outShift[count] = 1;
            count++;
        }
    }

    CFRelease(source);
    return count;
}
*/
import "C"

import "unsafe"

// buildSubstitutionTable probes the current keyboard layout and returns
// a char -> keycode mapping. Characters the layout cannot produce are
// absent; callers mark them skip.
func buildSubstitutionTable() (map[rune]keycode, bool) {
	const maxEntries = 256
	chars := make([]C.UInt32, maxEntries)
	keyCodes := make([]C.UInt16, maxEntries)
	shift := make([]C.UInt8, maxEntries)

	count := C.buildReverseTable(
		(*C.UInt32)(unsafe.Pointer(&chars[0])),
		(*C.UInt16)(unsafe.Pointer(&keyCodes[0])),
		(*C.UInt8)(unsafe.Pointer(&shift[0])),
		C.int(maxEntries),
	)
	if count < 0 {
		return nil, false
	}

	table := make(map[rune]keycode, count)
	for i := 0; i < int(count); i++ {
		usage, ok := virtualKeyCodeToUsage[int(keyCodes[i])]
		if !ok {
			continue
		}
		r := rune(chars[i])
		var mod byte
		if shift[i] != 0 {
			mod = ModShift
		}
		if existing, exists := table[r]; !exists || (mod == 0 && existing.Modifier != 0) {
			table[r] = keycode{Usage: usage, Modifier: mod}
		}
	}
	return table, true
}

// virtualKeyCodeToUsage maps macOS virtual keycodes (physical key
// position, stable across layouts) to HID usage codes (also physical
// position). Only the character UCKeyTranslate produces for a given
// keycode is layout-dependent; the keycode<->usage correspondence is not.
var virtualKeyCodeToUsage = map[int]uint16{
	0: 0x04, 1: 0x16, 2: 0x07, 3: 0x09, 4: 0x0B, 5: 0x0A, 6: 0x1D, 7: 0x1B,
	8: 0x06, 9: 0x19, 11: 0x05, 12: 0x14, 13: 0x1A, 14: 0x08, 15: 0x15,
	16: 0x1C, 17: 0x17, 18: 0x1E, 19: 0x1F, 20: 0x20, 21: 0x21, 22: 0x23,
	23: 0x22, 24: 0x2E, 25: 0x26, 26: 0x24, 27: 0x2D, 28: 0x25, 29: 0x27,
	30: 0x30, 31: 0x12,
	32: 0x18, 33: 0x2F, 34: 0x0C, 35: 0x13, 36: 0x28, 37: 0x0F, 38: 0x0D,
	39: 0x34, 40: 0x0E, 41: 0x33, 42: 0x31, 43: 0x36, 44: 0x38, 45: 0x11,
	46: 0x10, 47: 0x37, 48: 0x2B, 49: 0x2C, 50: 0x35, 51: 0x2A,
	53: 0x29, 76: 0x28, 123: 0x50, 124: 0x4F, 125: 0x51, 126: 0x52,
}
