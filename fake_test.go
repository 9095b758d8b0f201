package cc1101

import (
	"errors"
	"testing"
)

// --- Mocks ---

type mockPin struct {
	mode      string
	level     Level
	pull      Pull
	reads     []Level // levels returned by successive Read calls, then level
	readCount int
	edge      Edge
	handler   func()
	unwatched bool
}

func (m *mockPin) Out(l Level) error {
	m.mode = "output"
	m.level = l
	return nil
}

func (m *mockPin) In(pull Pull) error {
	m.mode = "input"
	m.pull = pull
	return nil
}

func (m *mockPin) Read() Level {
	m.readCount++
	if len(m.reads) > 0 {
		l := m.reads[0]
		m.reads = m.reads[1:]
		return l
	}
	return m.level
}

func (m *mockPin) Watch(edge Edge, handler func()) error {
	m.edge = edge
	m.handler = handler
	return nil
}

func (m *mockPin) Unwatch() error {
	m.unwatched = true
	m.handler = nil
	return nil
}

// fire simulates the GDO edge.
func (m *mockPin) fire() {
	if m.handler != nil {
		m.handler()
	}
}

// fakeChip simulates the CC1101 side of a Bus: registers, FIFOs, strobes and
// the status byte.
type fakeChip struct {
	selected   bool
	selects    int
	burst      bool // a burst access is open until the next Release
	violations int  // transfers made while a burst was still open or while released

	txs     [][]byte // every transfer's write buffer
	strobes []Register

	regs    [0x2F]byte
	patable byte
	status  map[Register]byte

	state    State
	script   []State // states reported by successive SNOP strobes
	notReady int     // SNOP strobes answered with CHIP_RDYn set
	powered  bool

	rxFIFO []byte
	txFIFO []byte
	sent   [][]byte // TX FIFO contents taken by each STX

	// peer receives every sent frame followed by rssi and lqi.
	peer      *fakeChip
	rssi, lqi byte

	failTx error
}

func newFakeChip() *fakeChip {
	return &fakeChip{
		status:  map[Register]byte{PARTNUM: 0x00, VERSION: 0x14},
		powered: true,
		rssi:    0xD0,
		lqi:     0xAF,
	}
}

// clearTrace forgets the traffic recorded so far.
func (c *fakeChip) clearTrace() {
	c.txs = nil
	c.strobes = nil
	c.selects = 0
	c.violations = 0
}

func (c *fakeChip) Select() error {
	if c.selected {
		c.violations++
	}
	c.selected = true
	c.selects++
	return nil
}

func (c *fakeChip) Release() error {
	c.selected = false
	c.burst = false
	return nil
}

func (c *fakeChip) statusByte() byte {
	return byte(c.state)<<4 | byte(min(len(c.rxFIFO), 15))
}

func (c *fakeChip) Tx(w, r []byte) error {
	if c.failTx != nil {
		return c.failTx
	}
	if !c.selected || c.burst {
		c.violations++
	}
	c.txs = append(c.txs, append([]byte(nil), w...))

	resp := make([]byte, len(w))
	h := w[0]
	addr := Register(h & 0x3F)
	read := h&headerRead != 0
	burst := h&headerBurst != 0

	switch {
	case len(w) == 1:
		resp[0] = c.strobe(addr)
	case addr == FIFO:
		resp[0] = c.statusByte()
		if read {
			for i := 1; i < len(w); i++ {
				if len(c.rxFIFO) > 0 {
					resp[i] = c.rxFIFO[0]
					c.rxFIFO = c.rxFIFO[1:]
				}
			}
		} else {
			c.txFIFO = append(c.txFIFO, w[1:]...)
		}
	case addr == PATABLE:
		resp[0] = c.statusByte()
		if read {
			resp[1] = c.patable
		} else {
			c.patable = w[1]
		}
	case read && burst && addr >= SRES:
		// Status registers are single reads despite the burst bit.
		burst = false
		resp[0] = c.statusByte()
		if addr|headerBurst == RXBYTES {
			resp[1] = byte(len(c.rxFIFO))
		} else {
			resp[1] = c.status[addr|headerBurst]
		}
	default:
		resp[0] = c.statusByte()
		for i := 1; i < len(w); i++ {
			reg := int(addr) + i - 1
			if reg >= len(c.regs) {
				break
			}
			if read {
				resp[i] = c.regs[reg]
			} else {
				c.regs[reg] = w[i]
			}
		}
	}
	if burst {
		c.burst = true
	}
	copy(r, resp)
	return nil
}

func (c *fakeChip) strobe(s Register) byte {
	c.strobes = append(c.strobes, s)
	if s == SNOP {
		if len(c.script) > 0 {
			c.state = c.script[0]
			c.script = c.script[1:]
		}
		if c.notReady > 0 {
			c.notReady--
			return statusNotReady | c.statusByte()
		}
		return c.statusByte()
	}

	status := c.statusByte()
	switch s {
	case SIDLE:
		c.state = StateIdle
	case SRX:
		c.powered = true
		c.state = StateRX
	case SFRX:
		c.rxFIFO = nil
	case SFTX:
		c.txFIFO = nil
	case SPWD:
		c.powered = false
		c.state = StateIdle
	case STX:
		frame := c.txFIFO
		c.txFIFO = nil
		c.sent = append(c.sent, frame)
		if c.peer != nil {
			c.peer.deliver(append(frame, c.rssi, c.lqi))
		}
	}
	return status
}

// deliver appends a received frame to the RX FIFO and leaves RX the way
// MCSM1.RXOFF_MODE says.
func (c *fakeChip) deliver(frame []byte) {
	c.rxFIFO = append(c.rxFIFO, frame...)
	if c.state != StateRX {
		return
	}
	switch (c.regs[MCSM1] >> 2) & 0x3 {
	case 0:
		c.state = StateIdle
	case 1:
		c.state = StateFSTXON
	case 2:
		c.state = StateTX
	}
}

// flushes counts the SIDLE, SFRX, SRX sequences in the recorded strobes.
func (c *fakeChip) flushes() int {
	n := 0
	for i := 0; i+2 < len(c.strobes); i++ {
		if c.strobes[i] == SIDLE && c.strobes[i+1] == SFRX && c.strobes[i+2] == SRX {
			n++
		}
	}
	return n
}

func (c *fakeChip) countStrobe(s Register) int {
	n := 0
	for _, v := range c.strobes {
		if v == s {
			n++
		}
	}
	return n
}

func newTestDevice(t *testing.T, cfg RadioConfig) (*Device, *fakeChip, *mockPin) {
	t.Helper()
	SetLogger(nil)

	chip := newFakeChip()
	gdo := &mockPin{}
	dev, err := NewWithHardware(HardwareConfig{RadioConfig: cfg, GDO: gdo}, chip)
	if err != nil {
		t.Fatalf("NewWithHardware failed: %v", err)
	}
	chip.clearTrace()
	return dev, chip, gdo
}

var errBoom = errors.New("boom")
