package hidclient

// Packed wire records for the virtual-HID service. Byte layout is
// normative: fields are serialized field-by-field in
// little-endian order, never via the host struct's in-memory layout, since
// the service reads raw bytes at fixed offsets.

// PointingReport is the 8-byte packed pointing device report: a 32-bit
// button bitmask (bit 0 = primary) followed by four signed 8-bit deltas.
type PointingReport struct {
	Buttons         uint32
	X               int8
	Y               int8
	VerticalWheel   int8
	HorizontalWheel int8
}

// Bytes serializes the report to its exact 8-byte wire form.
func (r PointingReport) Bytes() [8]byte {
	var b [8]byte
	b[0] = byte(r.Buttons)
	b[1] = byte(r.Buttons >> 8)
	b[2] = byte(r.Buttons >> 16)
	b[3] = byte(r.Buttons >> 24)
	b[4] = byte(r.X)
	b[5] = byte(r.Y)
	b[6] = byte(r.VerticalWheel)
	b[7] = byte(r.HorizontalWheel)
	return b
}

// KeyboardReportID is the fixed report-id byte placed at offset 0.
const KeyboardReportID = 1

// KeyboardMaxSlots is the number of usage-code slots in a KeyboardReport.
const KeyboardMaxSlots = 32

// KeyboardReport is the 67-byte packed keyboard report: report-id,
// modifier mask, one reserved byte, then 32 little-endian u16 usage-code
// slots (unused slots are zero).
type KeyboardReport struct {
	Modifier byte
	Keys     [KeyboardMaxSlots]uint16
}

// Bytes serializes the report to its exact 67-byte wire form. Usage codes
// start at byte offset 3 with no padding between slots.
func (r KeyboardReport) Bytes() [67]byte {
	var b [67]byte
	b[0] = KeyboardReportID
	b[1] = r.Modifier
	b[2] = 0 // reserved
	for i, code := range r.Keys {
		off := 3 + i*2
		b[off] = byte(code)
		b[off+1] = byte(code >> 8)
	}
	return b
}

// ReleaseReport is the all-zero-usage-slots, modifier=0 report emitted to
// release every key after a chunk or single keystroke.
func ReleaseReport() KeyboardReport {
	return KeyboardReport{}
}

// KeyboardParameters is the 24-byte packed record sent once at keyboard
// init: three little-endian u64 fields.
type KeyboardParameters struct {
	VendorID    uint64
	ProductID   uint64
	CountryCode uint64
}

// DefaultKeyboardParameters are the values the mirrored service expects:
// Apple's vendor id, a fixed product id, and ISO country code.
func DefaultKeyboardParameters() KeyboardParameters {
	return KeyboardParameters{
		VendorID:    0x05AC,
		ProductID:   0x0250,
		CountryCode: 1,
	}
}

// Bytes serializes the parameters to their exact 24-byte wire form.
func (p KeyboardParameters) Bytes() [24]byte {
	var b [24]byte
	putU64(b[0:8], p.VendorID)
	putU64(b[8:16], p.ProductID)
	putU64(b[16:24], p.CountryCode)
	return b
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
