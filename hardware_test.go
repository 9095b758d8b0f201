package cc1101

import (
	"bytes"
	"testing"
)

type mockSPIConn struct {
	tx      []byte
	rxQueue [][]byte // Queue of responses to return for subsequent Tx calls
}

func (m *mockSPIConn) Tx(w, r []byte) error {
	m.tx = append(m.tx, w...)

	if len(m.rxQueue) > 0 {
		next := m.rxQueue[0]
		m.rxQueue = m.rxQueue[1:]
		copy(r, next)
	}
	return nil
}

func TestPinBus(t *testing.T) {
	spi := &mockSPIConn{}
	cs := &mockPin{}

	bus, err := NewBus(spi, cs)
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	if cs.mode != "output" || cs.level != High {
		t.Errorf("Expected CS to be parked high, got %s/%v", cs.mode, cs.level)
	}

	bus.Select()
	if cs.level != Low {
		t.Error("Expected CS to be low while selected")
	}

	spi.rxQueue = [][]byte{{0x0F, 0x14}}
	r := make([]byte, 2)
	if err := bus.Tx([]byte{0xF1, 0x00}, r); err != nil {
		t.Fatalf("Tx failed: %v", err)
	}
	if !bytes.Equal(spi.tx, []byte{0xF1, 0x00}) {
		t.Errorf("Expected Tx to reach the SPI connection, got %X", spi.tx)
	}
	if !bytes.Equal(r, []byte{0x0F, 0x14}) {
		t.Errorf("Expected response 0F14, got %X", r)
	}

	bus.Release()
	if cs.level != High {
		t.Error("Expected CS to be high after release")
	}
}

func TestDeviceOverPinBus(t *testing.T) {
	SetLogger(nil)
	spi := &mockSPIConn{}
	cs := &mockPin{}

	bus, _ := NewBus(spi, cs)
	// Status bytes with CHIP_RDYn clear, then the part number and version.
	spi.rxQueue = [][]byte{{0x00}, {0x00, 0x00}, {0x00, 0x14}}

	if _, err := NewWithHardware(HardwareConfig{RadioConfig: RadioConfig{Channel: 76}, GDO: &mockPin{}}, bus); err != nil {
		t.Fatalf("NewWithHardware failed: %v", err)
	}
	if !bytes.Contains(spi.tx, []byte{byte(CHANNR), 76}) {
		t.Errorf("Expected SPI write to CHANNR, but not found in TX buffer: %X", spi.tx)
	}
	if cs.level != High {
		t.Error("Expected CS to be released after init")
	}
}
