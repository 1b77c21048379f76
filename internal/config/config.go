// Package config loads the daemon and control-tool settings from a
// YAML file, the way the teacher's src/deviceid.go loads tocalls.yaml
// via gopkg.in/yaml.v3 — a single unmarshal into a typed struct, no
// hand-rolled line parser. Static catalogue overrides (device/action
// bindings a site wants pre-populated without a learning session) and
// daemon settings (hardware backend selection, store location,
// control-surface address) live in the same file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend selects which concrete pulse source/sink pair the daemon
// wires up.
type Backend string

const (
	BackendGPIO Backend = "gpio"
	BackendUSB  Backend = "usb"
)

// GPIOConfig configures internal/gpiopulse.
type GPIOConfig struct {
	Chip         string `yaml:"chip"`
	ReceiveLine  int    `yaml:"receive_line"`
	TransmitLine int    `yaml:"transmit_line"`
	ActiveLow    bool   `yaml:"active_low"`
}

// USBConfig configures internal/usbpulse.
type USBConfig struct {
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
}

// StoreConfig selects and configures the kvstore.Store backing.
type StoreConfig struct {
	// Dir is the directory internal/kvstore.FileStore persists under.
	// Empty means an in-memory store (tests, dry-run).
	Dir string `yaml:"dir"`
}

// ControlSurfaceConfig configures internal/controlsrv.
type ControlSurfaceConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Binding is one pre-populated (device, action) → learned-from-file
// entry, for sites that ship a known-good code without a physical
// learning session (e.g. copied from another unit of the same model).
type Binding struct {
	Device   string `yaml:"device"`
	Action   string `yaml:"action"`
	Protocol string `yaml:"protocol"`
	Data     uint64 `yaml:"data"`
	Bits     int    `yaml:"bits"`
}

// Config is the daemon's full static configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Backend Backend    `yaml:"backend"`
	GPIO    GPIOConfig `yaml:"gpio"`
	USB     USBConfig  `yaml:"usb"`

	Store         StoreConfig          `yaml:"store"`
	ControlSurface ControlSurfaceConfig `yaml:"control_surface"`

	Bindings []Binding `yaml:"bindings"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		LogLevel: "info",
		Backend:  BackendGPIO,
		GPIO: GPIOConfig{
			Chip:         "gpiochip0",
			ReceiveLine:  17,
			TransmitLine: 18,
			ActiveLow:    true,
		},
		ControlSurface: ControlSurfaceConfig{ListenAddr: ":7890"},
	}
}

// Load reads and unmarshals the YAML file at path, starting from
// Default so a partial file only overrides what it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
