package protocol

// Flag captures bit-packing and framing properties of a protocol,
// independent of its timing constants.
type Flag uint16

const (
	// FlagMSBFirst packs bits most-significant-bit first; the zero
	// value (unset) means LSB-first.
	FlagMSBFirst Flag = 1 << iota
	// FlagPulseWidth means the space is constant and the mark varies
	// with the bit value; the zero value means pulse-distance (mark
	// constant, space varies).
	FlagPulseWidth
	// FlagBiphase marks a Manchester/biphase decoder (RC5, RC6): bit
	// value is the direction of a mid-bit transition, not a simple
	// mark/space comparison.
	FlagBiphase
	// FlagHasStopBit means a final mark closes the frame without a
	// matching data space.
	FlagHasStopBit
)

// Has reports whether f is set in the receiver.
func (flags Flag) Has(f Flag) bool { return flags&f != 0 }

// Constants is the fixed timing/layout record for one named protocol.
// A HeaderMark of 0 means the protocol is headerless.
type Constants struct {
	ID             ID
	CarrierKHz     int
	HeaderMark     int
	HeaderSpace    int
	BitMark        int
	OneSpace       int
	ZeroSpace      int
	Flags          Flag
	NominalBits    int // 0 = variable length
	RepeatPeriodUs int
}

// catalogue is the read-only table keyed by protocol id. Built once at
// init; Lookup never allocates.
var catalogue = map[ID]Constants{
	NEC: {
		ID: NEC, CarrierKHz: 38,
		HeaderMark: 9000, HeaderSpace: 4500,
		BitMark: 560, OneSpace: 1690, ZeroSpace: 560,
		Flags: FlagHasStopBit, NominalBits: 32, RepeatPeriodUs: 110000,
	},
	Samsung: {
		ID: Samsung, CarrierKHz: 38,
		HeaderMark: 4500, HeaderSpace: 4500,
		BitMark: 560, OneSpace: 1690, ZeroSpace: 560,
		Flags: FlagHasStopBit, NominalBits: 32, RepeatPeriodUs: 110000,
	},
	Samsung48: {
		ID: Samsung48, CarrierKHz: 38,
		HeaderMark: 4500, HeaderSpace: 4500,
		BitMark: 560, OneSpace: 1690, ZeroSpace: 560,
		Flags: FlagHasStopBit, NominalBits: 48, RepeatPeriodUs: 110000,
	},
	Sony: {
		ID: Sony, CarrierKHz: 40,
		HeaderMark: 2400, HeaderSpace: 600,
		BitMark: 600, OneSpace: 0, ZeroSpace: 0,
		Flags: FlagPulseWidth, NominalBits: 12, RepeatPeriodUs: 45000,
	},
	JVC: {
		ID: JVC, CarrierKHz: 38,
		HeaderMark: 8400, HeaderSpace: 4200,
		BitMark: 527, OneSpace: 1583, ZeroSpace: 527,
		Flags: 0, NominalBits: 16, RepeatPeriodUs: 55000,
	},
	RC5: {
		ID: RC5, CarrierKHz: 36,
		HeaderMark: 0, HeaderSpace: 0,
		BitMark: 889, OneSpace: 889, ZeroSpace: 889,
		Flags: FlagBiphase, NominalBits: 14, RepeatPeriodUs: 114000,
	},
	RC6: {
		ID: RC6, CarrierKHz: 36,
		HeaderMark: 2666, HeaderSpace: 889,
		BitMark: 444, OneSpace: 444, ZeroSpace: 444,
		Flags: FlagBiphase | FlagMSBFirst, NominalBits: 21, RepeatPeriodUs: 107000,
	},
	LG: {
		ID: LG, CarrierKHz: 38,
		HeaderMark: 8000, HeaderSpace: 4000,
		BitMark: 600, OneSpace: 1600, ZeroSpace: 550,
		Flags: FlagHasStopBit, NominalBits: 28, RepeatPeriodUs: 110000,
	},
	LG2: {
		ID: LG2, CarrierKHz: 38,
		HeaderMark: 4500, HeaderSpace: 4500,
		BitMark: 550, OneSpace: 1600, ZeroSpace: 550,
		Flags: FlagHasStopBit, NominalBits: 28, RepeatPeriodUs: 110000,
	},
	Denon: {
		ID: Denon, CarrierKHz: 38,
		HeaderMark: 0, HeaderSpace: 0,
		BitMark: 263, OneSpace: 1790, ZeroSpace: 790,
		Flags: 0, NominalBits: 15, RepeatPeriodUs: 65000,
	},
	Sharp: {
		ID: Sharp, CarrierKHz: 38,
		HeaderMark: 0, HeaderSpace: 0,
		BitMark: 320, OneSpace: 1680, ZeroSpace: 680,
		Flags: 0, NominalBits: 15, RepeatPeriodUs: 40000,
	},
	Panasonic: {
		ID: Panasonic, CarrierKHz: 38,
		HeaderMark: 3500, HeaderSpace: 1750,
		BitMark: 435, OneSpace: 1300, ZeroSpace: 435,
		Flags: FlagHasStopBit, NominalBits: 48, RepeatPeriodUs: 130000,
	},
	Apple: {
		ID: Apple, CarrierKHz: 38,
		HeaderMark: 9000, HeaderSpace: 4500,
		BitMark: 560, OneSpace: 1690, ZeroSpace: 560,
		Flags: FlagHasStopBit, NominalBits: 32, RepeatPeriodUs: 110000,
	},
	Onkyo: {
		ID: Onkyo, CarrierKHz: 38,
		HeaderMark: 9000, HeaderSpace: 4500,
		BitMark: 560, OneSpace: 1690, ZeroSpace: 560,
		Flags: FlagHasStopBit, NominalBits: 40, RepeatPeriodUs: 110000,
	},
	Whynter: {
		ID: Whynter, CarrierKHz: 38,
		HeaderMark: 2850, HeaderSpace: 840,
		BitMark: 420, OneSpace: 1260, ZeroSpace: 420,
		Flags: FlagHasStopBit, NominalBits: 32, RepeatPeriodUs: 110000,
	},
	LegoPF: {
		ID: LegoPF, CarrierKHz: 38,
		HeaderMark: 158, HeaderSpace: 1026,
		BitMark: 158, OneSpace: 553, ZeroSpace: 263,
		Flags: FlagHasStopBit, NominalBits: 16, RepeatPeriodUs: 0,
	},
	MagiQuest: {
		ID: MagiQuest, CarrierKHz: 38,
		HeaderMark: 0, HeaderSpace: 0,
		BitMark: 280, OneSpace: 0, ZeroSpace: 0,
		Flags: FlagPulseWidth, NominalBits: 56, RepeatPeriodUs: 0,
	},
	BoseWave: {
		ID: BoseWave, CarrierKHz: 38,
		HeaderMark: 6000, HeaderSpace: 3000,
		BitMark: 500, OneSpace: 1500, ZeroSpace: 500,
		Flags: FlagHasStopBit, NominalBits: 16, RepeatPeriodUs: 100000,
	},
	BangOlufsen: {
		ID: BangOlufsen, CarrierKHz: 455,
		HeaderMark: 210, HeaderSpace: 2620,
		BitMark: 210, OneSpace: 0, ZeroSpace: 0,
		Flags: FlagPulseWidth, NominalBits: 16, RepeatPeriodUs: 0,
	},
	FAST: {
		ID: FAST, CarrierKHz: 38,
		HeaderMark: 0, HeaderSpace: 0,
		BitMark: 0, OneSpace: 0, ZeroSpace: 0,
		Flags: 0, NominalBits: 42, RepeatPeriodUs: 0,
	},
	PulseDistance: {
		ID: PulseDistance, CarrierKHz: 38,
		Flags: 0, NominalBits: 0,
	},
	PulseWidth: {
		ID: PulseWidth, CarrierKHz: 38,
		Flags: FlagPulseWidth, NominalBits: 0,
	},
	Raw: {
		ID: Raw, CarrierKHz: 38,
	},

	// AC protocols: fixed frame layouts, see acstate for the bit-level
	// field descriptions. Timings here are used by the generic
	// byte-to-pulse expansion shared across all AC encoders.
	Carrier: {
		ID: Carrier, CarrierKHz: 38,
		HeaderMark: 8400, HeaderSpace: 4200,
		BitMark: 520, OneSpace: 1600, ZeroSpace: 520,
		Flags: 0, NominalBits: 128, RepeatPeriodUs: 0,
	},
	Daikin: {
		ID: Daikin, CarrierKHz: 38,
		HeaderMark: 3500, HeaderSpace: 1750,
		BitMark: 430, OneSpace: 1300, ZeroSpace: 430,
		Flags: 0, NominalBits: 312, RepeatPeriodUs: 0,
	},
	Hitachi: {
		ID: Hitachi, CarrierKHz: 38,
		HeaderMark: 3300, HeaderSpace: 1700,
		BitMark: 400, OneSpace: 1250, ZeroSpace: 400,
		Flags: 0, NominalBits: 264, RepeatPeriodUs: 0,
	},
	Mitsubishi: {
		ID: Mitsubishi, CarrierKHz: 38,
		HeaderMark: 3400, HeaderSpace: 1750,
		BitMark: 450, OneSpace: 1300, ZeroSpace: 420,
		Flags: 0, NominalBits: 152, RepeatPeriodUs: 0,
	},
	Midea: {
		ID: Midea, CarrierKHz: 38,
		HeaderMark: 4400, HeaderSpace: 4300,
		BitMark: 560, OneSpace: 1600, ZeroSpace: 560,
		Flags: 0, NominalBits: 48, RepeatPeriodUs: 0,
	},
	Haier: {
		ID: Haier, CarrierKHz: 38,
		HeaderMark: 3000, HeaderSpace: 3000,
		BitMark: 520, OneSpace: 1650, ZeroSpace: 520,
		Flags: 0, NominalBits: 104, RepeatPeriodUs: 0,
	},
	Fujitsu: {
		ID: Fujitsu, CarrierKHz: 38,
		HeaderMark: 3324, HeaderSpace: 1574,
		BitMark: 448, OneSpace: 1182, ZeroSpace: 390,
		Flags: 0, NominalBits: 128, RepeatPeriodUs: 0,
	},
}

// Lookup returns the constants record for id, or ok=false if id has no
// catalogue entry (e.g. Unknown, or an id outside the closed set).
func Lookup(id ID) (Constants, bool) {
	c, ok := catalogue[id]
	return c, ok
}

// Name is a free function equivalent of ID.Name, for call sites that
// only have an id and want the stable logging string without an
// import of the ID method set context.
func Name(id ID) string { return id.Name() }
