//go:build !tinygo

package cc1101

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// realPin wraps a gpio.PinIO to satisfy the Pin interface.
type realPin struct {
	gpio.PinIO
	pull      gpio.Pull
	stopWatch chan struct{}
}

func (p *realPin) Out(l Level) error {
	if l == High {
		return p.PinIO.Out(gpio.High)
	}
	return p.PinIO.Out(gpio.Low)
}

func (p *realPin) In(pull Pull) error {
	switch pull {
	case PullFloat:
		p.pull = gpio.Float
	case PullDown:
		p.pull = gpio.PullDown
	case PullUp:
		p.pull = gpio.PullUp
	default:
		p.pull = gpio.PullNoChange
	}
	return p.PinIO.In(p.pull, gpio.NoEdge)
}

func (p *realPin) Read() Level {
	if p.PinIO.Read() == gpio.High {
		return High
	}
	return Low
}

// Watch calls handler from a dedicated goroutine for every detected edge.
// The pull set by the last In call is kept.
func (p *realPin) Watch(edge Edge, handler func()) error {
	var pEdge gpio.Edge
	switch edge {
	case RisingEdge:
		pEdge = gpio.RisingEdge
	case FallingEdge:
		pEdge = gpio.FallingEdge
	case BothEdges:
		pEdge = gpio.BothEdges
	default:
		pEdge = gpio.NoEdge
	}

	if err := p.PinIO.In(p.pull, pEdge); err != nil {
		return err
	}

	stop := make(chan struct{})
	p.stopWatch = stop

	go func() {
		for {
			// -1 waits forever; a false return is a spurious wakeup or Unwatch.
			edged := p.PinIO.WaitForEdge(-1)
			select {
			case <-stop:
				return
			default:
			}
			if edged {
				handler()
			}
		}
	}()
	return nil
}

func (p *realPin) Unwatch() error {
	if p.stopWatch != nil {
		close(p.stopWatch)
		p.stopWatch = nil
	}
	// Disabling edge detection also wakes WaitForEdge up.
	return p.PinIO.In(p.pull, gpio.NoEdge)
}

// Config holds the configuration for the Linux/periph.io driver.
type Config struct {
	RadioConfig
	// SpiBusPath is the path to the SPI bus (e.g., "/dev/spidev0.0").
	// Defaults to "/dev/spidev0.0" if not provided.
	SpiBusPath string
	// SpiClockHz is the SPI clock frequency in Hz.
	// Defaults to 5000000 (5MHz) if not provided.
	SpiClockHz int
	// CSPin is the GPIO pin number (BCM numbering) wired to the radio's CSn.
	// The driver holds CSn low across several SPI transfers, so it has to be a
	// plain GPIO rather than the bus's hardware chip-select.
	// Defaults to 25 if not provided.
	CSPin int
	// GDOPin is the GPIO pin number (BCM numbering) wired to the GDO line
	// selected by InterruptGDO.
	// Defaults to 24 if not provided.
	GDOPin int
	// SOPin is the GPIO pin number (BCM numbering) of the bus's MISO line, which
	// is sampled to detect crystal startup (BCM 9 on spidev0).
	// Optional. If not provided, the status byte is polled instead.
	SOPin int
}

// New creates and initializes a new CC1101 driver for Linux systems.
// It applies configuration defaults, initializes the GPIO and SPI interfaces using periph.io,
// and configures the radio module.
// It returns the initialized driver or an error if hardware initialization fails.
func New(c Config) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph.io host: %w", err)
	}

	if c.SpiBusPath == "" {
		c.SpiBusPath = "/dev/spidev0.0"
	}
	if c.SpiClockHz == 0 {
		c.SpiClockHz = 5000000
	}
	if c.CSPin == 0 {
		c.CSPin = 25
	}
	if c.GDOPin == 0 {
		c.GDOPin = 24
	}

	p, err := spireg.Open(c.SpiBusPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port: %w", err)
	}

	// Mode 0, 8 bits
	conn, err := p.Connect(physic.Frequency(c.SpiClockHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to create SPI connection: %w", err)
	}

	cs, err := openPin(c.CSPin)
	if err != nil {
		p.Close()
		return nil, err
	}
	bus, err := NewBus(conn, cs)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to drive CS pin: %w", err)
	}

	gdo, err := openPin(c.GDOPin)
	if err != nil {
		p.Close()
		return nil, err
	}

	hwConfig := HardwareConfig{
		RadioConfig: c.RadioConfig,
		GDO:         gdo,
	}
	if c.SOPin != 0 {
		so, err := openPin(c.SOPin)
		if err != nil {
			p.Close()
			return nil, err
		}
		hwConfig.SO = so
	}

	dev, err := NewWithHardware(hwConfig, bus)
	if err != nil {
		p.Close()
		return nil, err
	}

	// Store the port closer so we can close it later
	dev.port = p
	return dev, nil
}

func openPin(n int) (*realPin, error) {
	name := fmt.Sprintf("GPIO%d", n)
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("failed to open pin %s", name)
	}
	return &realPin{PinIO: pin, pull: gpio.PullNoChange}, nil
}
