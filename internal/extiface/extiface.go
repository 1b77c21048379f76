// Package extiface names the external collaborators SPEC_FULL.md's
// Non-goals keep out of this repo's implementation scope: a cloud
// device/parameter model, Wi-Fi provisioning, boot-button/factory
// reset, status-LED animation, a console command table, and OTA
// update delivery. Each gets an interface here so the rest of the
// tree (controlsrv, cmd/irengined) can declare where such a
// collaborator would plug in without actually implementing one —
// matching the teacher's own habit of naming an external system
// (Hamlib rig control, an APRS-IS gateway) behind a narrow interface
// even where this build doesn't carry a working implementation of it.
package extiface

import "context"

// CloudAgent represents the vendor cloud's view of this device: its
// model identity and the parameter deltas it reports upstream. No
// implementation ships in this repo.
type CloudAgent interface {
	ReportState(ctx context.Context, deviceModel string, params map[string]any) error
}

// WiFiProvisioner carries a device through first-boot network setup
// (e.g. a captive-portal or BLE provisioning flow). No implementation
// ships in this repo.
type WiFiProvisioner interface {
	BeginProvisioning(ctx context.Context) error
	Credentials(ctx context.Context) (ssid, psk string, err error)
}

// FactoryReset represents the boot-button long-press handler that
// wipes persisted bindings and AC state. No implementation ships in
// this repo.
type FactoryReset interface {
	Triggered(ctx context.Context) <-chan struct{}
	Perform(ctx context.Context) error
}

// StatusIndicator drives a status LED animation reflecting daemon
// state (idle, armed-for-learning, transmitting, fault). No
// implementation ships in this repo.
type StatusIndicator interface {
	SetState(ctx context.Context, state string) error
}

// ConsoleCommands represents a serial/console command table for field
// diagnostics. No implementation ships in this repo.
type ConsoleCommands interface {
	Dispatch(ctx context.Context, line string) (output string, err error)
}

// OTAUpdater represents over-the-air firmware delivery. No
// implementation ships in this repo.
type OTAUpdater interface {
	CheckForUpdate(ctx context.Context) (version string, available bool, err error)
	Apply(ctx context.Context, version string) error
}
