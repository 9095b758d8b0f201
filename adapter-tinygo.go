//go:build tinygo

package cc1101

import (
	"machine"
)

// tinygoPin wraps a machine.Pin to satisfy the Pin interface.
type tinygoPin struct {
	pin    machine.Pin
	mode   machine.PinMode
	output bool // configured as output; Out then only sets the level
}

func (p *tinygoPin) Out(l Level) error {
	if !p.output {
		p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.output = true
	}
	p.pin.Set(bool(l))
	return nil
}

func (p *tinygoPin) In(pull Pull) error {
	switch pull {
	case PullUp:
		p.mode = machine.PinInputPullup
	case PullDown:
		p.mode = machine.PinInputPulldown
	default:
		p.mode = machine.PinInput
	}
	p.pin.Configure(machine.PinConfig{Mode: p.mode})
	p.output = false
	return nil
}

func (p *tinygoPin) Read() Level {
	return Level(p.pin.Get())
}

// Watch runs handler in interrupt context.
func (p *tinygoPin) Watch(edge Edge, handler func()) error {
	var mEdge machine.PinChange
	switch edge {
	case RisingEdge:
		mEdge = machine.PinRising
	case FallingEdge:
		mEdge = machine.PinFalling
	case BothEdges:
		mEdge = machine.PinToggle
	default:
		return nil
	}

	return p.pin.SetInterrupt(mEdge, func(machine.Pin) {
		handler()
	})
}

func (p *tinygoPin) Unwatch() error {
	return p.pin.SetInterrupt(0, nil)
}

// readOnlyPin samples a pin owned by a peripheral without reconfiguring it.
type readOnlyPin struct {
	pin machine.Pin
}

func (p readOnlyPin) Out(Level) error          { return nil }
func (p readOnlyPin) In(Pull) error            { return nil }
func (p readOnlyPin) Read() Level              { return Level(p.pin.Get()) }
func (p readOnlyPin) Watch(Edge, func()) error { return nil }
func (p readOnlyPin) Unwatch() error           { return nil }

// Config holds the configuration for the TinyGo driver.
type Config struct {
	RadioConfig
	// SPI is the configured SPI peripheral (mode 0).
	SPI *machine.SPI
	// CSPin is wired to the radio's CSn.
	CSPin machine.Pin
	// GDOPin is wired to the GDO line selected by InterruptGDO.
	GDOPin machine.Pin
	// SOPin is the SPI peripheral's SDI (MISO) pin, sampled to detect crystal
	// startup. Optional: machine.NoPin polls the status byte instead.
	SOPin machine.Pin
}

// New creates and initializes a new CC1101 driver for TinyGo systems.
func New(c Config) (*Device, error) {
	bus, err := NewBus(c.SPI, &tinygoPin{pin: c.CSPin})
	if err != nil {
		return nil, err
	}

	hwConfig := HardwareConfig{
		RadioConfig: c.RadioConfig,
		GDO:         &tinygoPin{pin: c.GDOPin},
	}
	if c.SOPin != machine.NoPin {
		hwConfig.SO = readOnlyPin{pin: c.SOPin}
	}

	return NewWithHardware(hwConfig, bus)
}
