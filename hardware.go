package cc1101

// pinBus drives chip-select through a GPIO line and exchanges bytes over an
// SPI connection whose own chip-select (if any) is not wired to the radio.
type pinBus struct {
	spi SPI
	cs  Pin
}

// NewBus returns a Bus that exchanges bytes over spi and drives the active-low
// CSn line of the radio through cs. The line is parked high (released).
func NewBus(spi SPI, cs Pin) (Bus, error) {
	if err := cs.Out(High); err != nil {
		return nil, err
	}
	return &pinBus{spi: spi, cs: cs}, nil
}

func (b *pinBus) Select() error {
	return b.cs.Out(Low)
}

func (b *pinBus) Release() error {
	return b.cs.Out(High)
}

func (b *pinBus) Tx(w, r []byte) error {
	return b.spi.Tx(w, r)
}
