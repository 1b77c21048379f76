//go:build linux

// Package usbpulse implements the pulse-source/pulse-sink pair for a
// USB IR transceiver dongle (an IRToy-style device: bulk endpoints
// carrying big-endian 16-bit half-microsecond duration counts,
// terminated by a 0xFFFF sentinel), via github.com/google/gousb. This
// is the second concrete hardware collaborator alongside
// internal/gpiopulse, sharing the same transmit.Sink contract and
// orchestrator.Source contract so callers can swap one for the other.
package usbpulse

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/google/gousb"
)

// sentinel terminates a duration stream, matching IRToy-family sample
// mode framing.
const sentinel = 0xFFFF

// Device wraps a USB IR transceiver's bulk in/out endpoints.
type Device struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	done func()
	in   *gousb.InEndpoint
	out  *gousb.OutEndpoint

	freqHz int
	duty   float64
}

// Open claims vid/pid's default interface and its first bulk in/out
// endpoints.
func Open(vid, pid uint16) (*Device, error) {
	ctx := gousb.NewContext()

	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		ctx.Close()
		return nil, err
	}
	if dev == nil {
		ctx.Close()
		return nil, errors.New("usbpulse: no matching device found")
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}

	intf, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, err
	}

	inEP, err := firstInEndpoint(intf)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, err
	}
	outEP, err := firstOutEndpoint(intf)
	if err != nil {
		done()
		dev.Close()
		ctx.Close()
		return nil, err
	}

	return &Device{ctx: ctx, dev: dev, done: done, in: inEP, out: outEP, freqHz: 38000, duty: 0.33}, nil
}

func firstInEndpoint(intf *gousb.Interface) (*gousb.InEndpoint, error) {
	for _, desc := range intf.Setting.Endpoints {
		if desc.Direction == gousb.EndpointDirectionIn {
			return intf.InEndpoint(desc.Number)
		}
	}
	return nil, errors.New("usbpulse: no bulk IN endpoint")
}

func firstOutEndpoint(intf *gousb.Interface) (*gousb.OutEndpoint, error) {
	for _, desc := range intf.Setting.Endpoints {
		if desc.Direction == gousb.EndpointDirectionOut {
			return intf.OutEndpoint(desc.Number)
		}
	}
	return nil, errors.New("usbpulse: no bulk OUT endpoint")
}

// Close releases the interface, device, and USB context.
func (d *Device) Close() error {
	d.done()
	err := d.dev.Close()
	d.ctx.Close()
	return err
}

// Rearm implements orchestrator.Source: the device streams samples
// continuously once opened, so there is nothing to re-arm.
func (d *Device) Rearm(ctx context.Context) error { return nil }

// ReadBurst blocks for one burst of half-microsecond duration samples
// terminated by the sentinel and decodes it into a pulse.Buffer.
// Intended to be called in a loop from a dedicated goroutine feeding
// orchestrator.Submit.
func (d *Device) ReadBurst(ctx context.Context) (pulse.Buffer, error) {
	raw := make([]byte, 512)
	var samples []uint16
	for {
		n, err := d.in.ReadContext(ctx, raw)
		if err != nil {
			return pulse.Buffer{}, err
		}
		for i := 0; i+1 < n; i += 2 {
			v := binary.BigEndian.Uint16(raw[i : i+2])
			if v == sentinel {
				return pulse.Buffer{Pairs: samplesToPairs(samples)}, nil
			}
			samples = append(samples, v)
		}
	}
}

func samplesToPairs(samples []uint16) []pulse.Pair {
	pairs := make([]pulse.Pair, 0, len(samples)/2+1)
	for i := 0; i < len(samples); i += 2 {
		p := pulse.Pair{Mark: int(samples[i]) / 2}
		if i+1 < len(samples) {
			p.Space = int(samples[i+1]) / 2
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func pairsToSamples(pairs []pulse.Pair) []uint16 {
	samples := make([]uint16, 0, len(pairs)*2+1)
	for _, p := range pairs {
		samples = append(samples, uint16(p.Mark*2), uint16(p.Space*2))
	}
	return append(samples, sentinel)
}

// SetCarrier implements transmit.Sink. The carrier parameters are
// recorded and sent as a configuration frame ahead of the next Emit;
// the dongle's own firmware drives the physical PWM, so (unlike
// gpiopulse) this repo does not bit-bang the carrier itself.
func (d *Device) SetCarrier(ctx context.Context, freqHz int, dutyFraction float64) error {
	if freqHz <= 0 {
		return errors.New("usbpulse: carrier frequency must be positive")
	}
	d.freqHz = freqHz
	d.duty = dutyFraction
	cfg := make([]byte, 4)
	binary.BigEndian.PutUint16(cfg[0:2], uint16(freqHz/100))
	cfg[2] = byte(dutyFraction * 255)
	cfg[3] = 0
	_, err := d.out.WriteContext(ctx, cfg)
	return err
}

// Emit implements transmit.Sink: writes buf's pairs as a
// sentinel-terminated half-microsecond sample stream.
func (d *Device) Emit(ctx context.Context, buf pulse.Buffer) error {
	samples := pairsToSamples(buf.Pairs)
	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.BigEndian.PutUint16(raw[i*2:i*2+2], s)
	}
	_, err := d.out.WriteContext(ctx, raw)
	return err
}

// WaitComplete implements transmit.Sink. The bulk write in Emit is
// synchronous from the host's point of view once the transfer
// completes, so there is nothing further to wait for beyond ctx.
func (d *Device) WaitComplete(ctx context.Context) error {
	return ctx.Err()
}
