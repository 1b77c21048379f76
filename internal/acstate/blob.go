package acstate

import (
	"bytes"
	"encoding/gob"

	"github.com/birchlabs/irengine/internal/protocol"
)

// stateBlob is the persisted representation of State; kept distinct
// from State itself so the wire format stays stable even if State
// gains fields with different zero-value semantics later.
type stateBlob struct {
	Power    int
	Mode     int
	TempC    int
	Fan      int
	Swing    int
	Protocol int
	Variant  string
	Learned  bool
}

func encodeStateBlob(s State) []byte {
	blob := stateBlob{
		Power: int(s.Power), Mode: int(s.Mode), TempC: s.TempC,
		Fan: int(s.Fan), Swing: int(s.Swing), Protocol: int(s.Protocol),
		Variant: s.Variant, Learned: s.Learned,
	}
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(blob)
	return buf.Bytes()
}

func decodeStateBlob(raw []byte) (State, error) {
	var blob stateBlob
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&blob); err != nil {
		return State{}, err
	}
	return State{
		Power: Power(blob.Power), Mode: Mode(blob.Mode), TempC: blob.TempC,
		Fan: FanSpeed(blob.Fan), Swing: Swing(blob.Swing), Protocol: protocol.ID(blob.Protocol),
		Variant: blob.Variant, Learned: blob.Learned,
	}, nil
}
