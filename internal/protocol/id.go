// Package protocol is the read-only protocol catalogue: the closed set
// of protocol identifiers and the per-protocol timing constants the
// decoders, encoders, and universal classifier all key off of.
package protocol

// ID identifies one member of the closed protocol set. Unknown is the
// zero value.
type ID int

const (
	Unknown ID = iota
	NEC
	Samsung
	Sony
	JVC
	RC5
	RC6
	LG
	LG2
	Denon
	Sharp
	Panasonic
	Apple
	Onkyo
	Samsung48
	Whynter
	LegoPF
	MagiQuest
	BoseWave
	BangOlufsen
	FAST
	Mitsubishi
	Daikin
	Fujitsu
	Haier
	Midea
	Carrier
	Hitachi
	PulseDistance
	PulseWidth
	Raw
)

var names = map[ID]string{
	Unknown:       "UNKNOWN",
	NEC:           "NEC",
	Samsung:       "SAMSUNG",
	Sony:          "SONY",
	JVC:           "JVC",
	RC5:           "RC5",
	RC6:           "RC6",
	LG:            "LG",
	LG2:           "LG2",
	Denon:         "DENON",
	Sharp:         "SHARP",
	Panasonic:     "PANASONIC",
	Apple:         "APPLE",
	Onkyo:         "ONKYO",
	Samsung48:     "SAMSUNG48",
	Whynter:       "WHYNTER",
	LegoPF:        "LEGO_PF",
	MagiQuest:     "MAGIQUEST",
	BoseWave:      "BOSEWAVE",
	BangOlufsen:   "BANG_OLUFSEN",
	FAST:          "FAST",
	Mitsubishi:    "MITSUBISHI",
	Daikin:        "DAIKIN",
	Fujitsu:       "FUJITSU",
	Haier:         "HAIER",
	Midea:         "MIDEA",
	Carrier:       "CARRIER",
	Hitachi:       "HITACHI",
	PulseDistance: "PULSE_DISTANCE",
	PulseWidth:    "PULSE_WIDTH",
	Raw:           "RAW",
}

// Name converts a protocol-id to a stable short string suitable for
// logging. It never allocates on a known id.
func (id ID) Name() string {
	if n, ok := names[id]; ok {
		return n
	}
	return "UNKNOWN"
}

func (id ID) String() string { return id.Name() }

var byName = func() map[string]ID {
	m := make(map[string]ID, len(names))
	for id, n := range names {
		m[n] = id
	}
	return m
}()

// FromName reverses Name, for config/CLI surfaces that accept a
// protocol by its catalogue name (e.g. config.Binding.Protocol).
func FromName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// ACProtocols is the subset of the catalogue that the AC state machine
// (acstate package) may select via set_protocol.
var ACProtocols = map[ID]bool{
	Mitsubishi: true,
	Daikin:     true,
	Fujitsu:    true,
	Haier:      true,
	Midea:      true,
	Carrier:    true,
	Hitachi:    true,
	Samsung48:  true,
	Panasonic:  true,
	LG2:        true,
}
