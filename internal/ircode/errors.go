package ircode

import "errors"

// Sentinel errors for the kinds named in spec §7. Checksum-failed is
// not among them: per spec it is delivered as a flag on a successfully
// decoded Code, not as an error.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrDecodeFailed    = errors.New("decode failed")
	ErrTimeout         = errors.New("learn timeout")
	ErrUnsupported     = errors.New("unsupported protocol")
	ErrHardwareBusy    = errors.New("hardware busy")
	ErrHardwareFault   = errors.New("hardware fault")
	ErrOverflow        = errors.New("pulse queue overflow")
)
