package actions

import (
	"bytes"
	"encoding/gob"

	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// codeBlob is the persisted representation of an ir-code's fixed-frame
// fields (§6: "ir_actions — (device, action) → ir-code blobs"). The
// raw buffer, when present, is stored under a sibling key rather than
// inline, per §4.H's "Raw-protocol codes persist the raw-buffer under
// a sibling key."
type codeBlob struct {
	Protocol    int
	Data        uint64
	Bits        int
	Address     uint32
	Command     uint32
	Flags       uint32
	CarrierHz   int
	DutyPercent int
}

func encodeCodeBlob(c ircode.Code) []byte {
	blob := codeBlob{
		Protocol: int(c.Protocol), Data: c.Data, Bits: c.Bits,
		Address: c.Address, Command: c.Command, Flags: uint32(c.Flags),
		CarrierHz: c.CarrierHz, DutyPercent: c.DutyPercent,
	}
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(blob)
	return buf.Bytes()
}

func decodeCodeBlob(raw []byte) (ircode.Code, error) {
	var blob codeBlob
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&blob); err != nil {
		return ircode.Code{}, err
	}
	return ircode.Code{
		Protocol: protocol.ID(blob.Protocol), Data: blob.Data, Bits: blob.Bits,
		Address: blob.Address, Command: blob.Command, Flags: ircode.Flag(blob.Flags),
		CarrierHz: blob.CarrierHz, DutyPercent: blob.DutyPercent,
	}, nil
}

func encodeRawBlob(pairs []pulse.Pair) []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(pairs)
	return buf.Bytes()
}

func decodeRawBlob(raw []byte) ([]pulse.Pair, error) {
	var pairs []pulse.Pair
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}
