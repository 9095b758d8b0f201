package cc1101

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"periph.io/x/conn/v3/physic"
)

var (
	ErrPkg           = errors.New("cc1101")
	ErrOversizeFrame = errors.New("frame exceeds maximum size")
	ErrBus           = errors.New("bus transfer failed")
)

// MaxPacketLen is the largest payload a frame can carry: the 64 byte FIFO less
// the length byte and the two status bytes appended on reception.
const MaxPacketLen = 64 - 1 - 2

// Defaults applied to zero RadioConfig fields.
const (
	DefaultSyncWord   = 0xD391
	DefaultTxPower    = 0xC6
	DefaultOscillator = 26 * physic.MegaHertz
)

// Register settings programmed at initialization.
const (
	iocfgHighImpedance = 0x2E // GDO tri-stated
	iocfgPacketCRCOK   = 0x07 // Asserts when a packet with CRC OK is received, deasserts on first FIFO read

	pktctrlAutoFlush   = 1 << 3 // PKTCTRL1: flush RX FIFO on CRC failure
	pktctrlAppend      = 1 << 2 // PKTCTRL1: append RSSI and LQI to the payload
	pktctrlCRCEnable   = 1 << 2 // PKTCTRL0: hardware CRC
	pktctrlVariableLen = 0x01   // PKTCTRL0: length byte after sync word

	mdmcfgSyncMode    = 0x03     // 30/32 sync word bits detected
	mdmcfgNumPreamble = 0x2 << 4 // 4 preamble bytes

	mcsmFSAutocal = 0x1 << 4 // Calibrate when going from IDLE to RX or TX
	mcsmRxoffRX   = 0x3 << 2 // Stay in RX after a packet is received
	mcsmTxoffRX   = 0x3      // Return to RX after a packet is sent
)

type RadioConfig struct {
	// Channel is the channel number (CHANNR), multiplied by the channel spacing
	// and added to the base frequency.
	Channel byte
	// Address is the device address (ADDR). Address filtering is disabled, so it
	// is informational for upper layers.
	Address byte
	// TxPower is the PATABLE[0] value used for transmission.
	// Defaults to 0xC6 if not provided.
	TxPower byte
	// SyncWord is the 16-bit sync word.
	// Defaults to 0xD391 if not provided.
	SyncWord uint16
	// InterruptGDO selects the GDO line (0 or 2) that signals a received packet.
	// Defaults to 0.
	InterruptGDO byte
	// Frequency is the base carrier frequency.
	// The chip reset value is kept if not provided.
	Frequency physic.Frequency
	// Oscillator is the frequency of the crystal attached to the chip.
	// Defaults to 26MHz if not provided.
	Oscillator physic.Frequency
}

type HardwareConfig struct {
	RadioConfig
	// GDO is the pin wired to the GDO line selected by InterruptGDO.
	GDO Pin
	// SO is the pin wired to the chip's SO (MISO) line. It is only ever read.
	// Optional. If not provided, readiness is polled through the status byte.
	SO Pin
}

// Device is a CC1101 transceiver. The mutex is held for the whole chip-select
// scope of every operation.
type Device struct {
	config  HardwareConfig
	bus     Bus
	port    io.Closer
	mu      sync.Mutex
	err     error    // first bus failure of the current chip-select scope
	scratch [64]byte // header byte + FIFO payload
	quality atomic.Uint32
	onRecv  atomic.Pointer[func()]
}

// NewWithHardware creates a driver over the provided bus and pins and
// initializes the chip. The radio is left powered down; call On to start
// receiving.
func NewWithHardware(c HardwareConfig, bus Bus) (*Device, error) {
	if c.SyncWord == 0 {
		c.SyncWord = DefaultSyncWord
	}
	if c.TxPower == 0 {
		c.TxPower = DefaultTxPower
	}
	if c.Oscillator == 0 {
		c.Oscillator = DefaultOscillator
	}
	if c.InterruptGDO != 0 && c.InterruptGDO != 2 {
		return nil, fmt.Errorf("%w: InterruptGDO must be 0 or 2", ErrPkg)
	}
	if bus == nil {
		return nil, fmt.Errorf("%w: bus not configured", ErrPkg)
	}
	if c.GDO == nil {
		return nil, fmt.Errorf("%w: GDO pin not configured", ErrPkg)
	}
	if c.Frequency != 0 {
		if _, err := frequencyWord(c.Oscillator, c.Frequency); err != nil {
			return nil, err
		}
	}

	dev := &Device{
		config: c,
		bus:    bus,
	}

	globalLogger.Info("Initializing CC1101 SPI communication...")

	if err := c.GDO.In(PullDown); err != nil {
		return nil, fmt.Errorf("failed to configure GDO pin: %w", err)
	}

	dev.mu.Lock()
	err := dev.configure()
	dev.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize CC1101: %w", err)
	}

	if err := c.GDO.Watch(RisingEdge, dev.handleInterrupt); err != nil {
		return nil, fmt.Errorf("failed to watch GDO pin: %w", err)
	}

	globalLogger.Info("CC1101 initialized and powered down.")
	return dev, nil
}

// configure programs the fixed register set. Call with lock held.
func (d *Device) configure() error {
	d.selectChip()
	// The chip resets itself on power-up; wait for the crystal.
	d.waitForReady()

	part := d.readRegister(PARTNUM)
	version := d.readRegister(VERSION)
	if d.err == nil && (part != 0x00 || (version != 0x14 && version != 0x04)) {
		globalLogger.Warn(fmt.Sprintf("Unexpected CCxxxx device: partnum 0x%02X, version 0x%02X", part, version))
	}

	gdo := IOCFG0
	if d.config.InterruptGDO == 2 {
		gdo = IOCFG2
	}
	d.writeRegister(IOCFG0, iocfgHighImpedance)
	d.writeRegister(gdo, iocfgPacketCRCOK)
	d.writeRegister(SYNC1, byte(d.config.SyncWord>>8))
	d.writeRegister(SYNC0, byte(d.config.SyncWord))
	d.writeRegister(PKTLEN, MaxPacketLen)
	d.writeRegister(PKTCTRL1, pktctrlAutoFlush|pktctrlAppend)
	d.writeRegister(PKTCTRL0, pktctrlCRCEnable|pktctrlVariableLen)
	d.writeRegister(CHANNR, d.config.Channel)
	d.writeRegister(ADDR, d.config.Address)
	if d.config.Frequency != 0 {
		word, _ := frequencyWord(d.config.Oscillator, d.config.Frequency)
		d.burstWrite(FREQ2, word[:])
	}
	d.writeRegister(MDMCFG2, mdmcfgSyncMode)
	d.writeRegister(MDMCFG1, mdmcfgNumPreamble)
	d.writeRegister(MCSM1, mcsmRxoffRX|mcsmTxoffRX)
	d.writeRegister(MCSM0, mcsmFSAutocal)
	d.writeRegister(PATABLE, d.config.TxPower)

	// Stay off until On is called.
	d.strobe(SPWD)

	return d.releaseChip()
}

func (d *Device) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return fmt.Sprintf("CC1101(Channel=%d, Address=0x%02X, TxPower=0x%02X, SyncWord=0x%04X, GDO%d)",
		d.config.Channel,
		d.config.Address,
		d.config.TxPower,
		d.config.SyncWord,
		d.config.InterruptGDO,
	)
}

// Close powers the radio down without waiting for pending traffic, stops
// watching the GDO pin and closes the SPI port if the driver opened it.
// This method is concurrent safe.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	d.strobe(SIDLE)
	d.strobe(SPWD)
	err := d.releaseChip()
	globalLogger.Info("CC1101 powered down.")

	if uerr := d.config.GDO.Unwatch(); uerr != nil {
		globalLogger.Warn("Failed to stop watching GDO pin")
	}

	if d.port != nil {
		if cerr := d.port.Close(); cerr != nil {
			globalLogger.Warn("Failed to close SPI port")
		}
		globalLogger.Info("SPI bus closed.")
	}

	return err
}

// --- CC1101 Core Functions (SPI interaction) ---

// selectChip opens a chip-select scope. Call with lock held.
func (d *Device) selectChip() {
	if err := d.bus.Select(); err != nil {
		d.fail(err)
	}
}

// releaseChip closes the chip-select scope and returns the first bus failure
// seen inside it.
func (d *Device) releaseChip() error {
	if err := d.bus.Release(); err != nil {
		d.fail(err)
	}
	err := d.err
	d.err = nil
	return err
}

func (d *Device) fail(err error) {
	if d.err != nil {
		return
	}
	globalLogger.Error("SPI transfer error: " + err.Error())
	d.err = fmt.Errorf("%w: %w: %w", ErrPkg, ErrBus, err)
}

// spiTransfer exchanges the first n bytes of the scratch buffer. Nothing is
// sent once the current scope has failed.
func (d *Device) spiTransfer(n int) (status Status, response []byte) {
	if d.err != nil {
		return statusNotReady, nil
	}
	slice := d.scratch[:n]
	if err := d.bus.Tx(slice, slice); err != nil {
		d.fail(err)
		return statusNotReady, nil
	}
	return Status(d.scratch[0]), d.scratch[1:n]
}

func (d *Device) strobe(cmd Register) Status {
	d.scratch[0] = Encode(cmd, Strobe)
	status, _ := d.spiTransfer(1)
	return status
}

func (d *Device) writeRegister(reg Register, val byte) {
	d.scratch[0] = Encode(reg, SingleWrite)
	d.scratch[1] = val
	d.spiTransfer(2)
}

func (d *Device) readRegister(reg Register) byte {
	d.scratch[0] = Encode(reg, SingleRead)
	d.scratch[1] = 0
	_, data := d.spiTransfer(2)
	if len(data) > 0 {
		return data[0]
	}
	return 0
}

// burstWrite writes data starting at reg and ends the burst.
func (d *Device) burstWrite(reg Register, data []byte) {
	d.scratch[0] = Encode(reg, BurstWrite)
	copy(d.scratch[1:], data)
	d.spiTransfer(1 + len(data))
	d.endBurst()
}

// burstRead fills buf starting at reg and ends the burst. buf is left
// untouched if the transfer fails.
func (d *Device) burstRead(reg Register, buf []byte) {
	d.scratch[0] = Encode(reg, BurstRead)
	clear(d.scratch[1 : 1+len(buf)])
	_, data := d.spiTransfer(1 + len(buf))
	copy(buf, data)
	d.endBurst()
}

// endBurst toggles chip-select, which is the only way to end a burst access.
func (d *Device) endBurst() {
	if d.err != nil {
		return
	}
	if err := d.bus.Release(); err != nil {
		d.fail(err)
		return
	}
	d.selectChip()
}

// flushRX drops whatever is in the RX FIFO and restarts reception.
func (d *Device) flushRX() {
	d.strobe(SIDLE)
	d.strobe(SFRX)
	d.strobe(SRX)
}

// --- Wait primitives ---

// waitForReady blocks until the crystal is running. The chip drives SO low
// once it is ready; without an SO pin the CHIP_RDYn bit is polled instead.
// There is no timeout.
func (d *Device) waitForReady() {
	if so := d.config.SO; so != nil {
		for d.err == nil && so.Read() == High {
		}
		return
	}
	for d.err == nil && !d.strobe(SNOP).Ready() {
	}
}

// waitForState blocks until the chip reports state s. There is no timeout;
// the loop only ends early on a bus failure.
func (d *Device) waitForState(s State) {
	for d.err == nil && d.strobe(SNOP).State() != s {
	}
}

// --- CC1101 Power Management ---

// On wakes the chip and enters receive mode.
// This method is concurrent safe.
func (d *Device) On() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip() // wakes the radio up
	d.waitForReady()
	d.strobe(SRX)
	return d.releaseChip()
}

// Off waits until no packet is pending transmission, then powers the chip
// down. A packet being received at that moment is dropped.
// This method is concurrent safe.
func (d *Device) Off() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	d.waitForState(StateRX)
	d.strobe(SIDLE)
	d.strobe(SPWD) // also flushes the FIFOs
	return d.releaseChip()
}

// --- CC1101 Configuration ---

// SetChannel changes the channel number.
// This method is concurrent safe.
func (d *Device) SetChannel(channel byte) error {
	return d.setRegister(CHANNR, channel, &d.config.Channel)
}

// SetTxPower changes the PATABLE entry used for transmission.
// This method is concurrent safe.
func (d *Device) SetTxPower(power byte) error {
	return d.setRegister(PATABLE, power, &d.config.TxPower)
}

// SetAddress changes the device address.
// This method is concurrent safe.
func (d *Device) SetAddress(addr byte) error {
	return d.setRegister(ADDR, addr, &d.config.Address)
}

func (d *Device) setRegister(reg Register, val byte, field *byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	d.writeRegister(reg, val)
	if err := d.releaseChip(); err != nil {
		return err
	}
	*field = val
	return nil
}

// SetFrequency changes the base carrier frequency.
// This method is concurrent safe.
func (d *Device) SetFrequency(freq physic.Frequency) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	word, err := frequencyWord(d.config.Oscillator, freq)
	if err != nil {
		return err
	}
	d.selectChip()
	d.burstWrite(FREQ2, word[:])
	if err := d.releaseChip(); err != nil {
		return err
	}
	d.config.Frequency = freq
	return nil
}

// Frequency reads the base carrier frequency back from the chip.
// This method is concurrent safe.
func (d *Device) Frequency() (physic.Frequency, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var word [3]byte
	d.selectChip()
	d.burstRead(FREQ2, word[:])
	if err := d.releaseChip(); err != nil {
		return 0, err
	}
	f := uint64(word[0])<<16 | uint64(word[1])<<8 | uint64(word[2])
	xosc := uint64(d.config.Oscillator / physic.Hertz)
	return physic.Frequency(f*xosc>>16) * physic.Hertz, nil
}

// frequencyWord converts freq into the FREQ2..FREQ0 register values, rounded
// to the nearest step of xosc/2^16.
func frequencyWord(xosc, freq physic.Frequency) ([3]byte, error) {
	hz := uint64(freq / physic.Hertz)
	xhz := uint64(xosc / physic.Hertz)
	if hz == 0 || xhz == 0 {
		return [3]byte{}, fmt.Errorf("%w: invalid frequency %s", ErrPkg, freq)
	}
	f := (hz<<16 + xhz/2) / xhz
	if f >= 1<<22 {
		return [3]byte{}, fmt.Errorf("%w: frequency %s out of range", ErrPkg, freq)
	}
	return [3]byte{byte(f >> 16), byte(f >> 8), byte(f)}, nil
}

// --- Signal quality ---

// Status reads the chip status byte.
// This method is concurrent safe.
func (d *Device) Status() (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	s := d.strobe(SNOP)
	if err := d.releaseChip(); err != nil {
		return 0, err
	}
	return s, nil
}

// RSSI reads the current received signal strength from the chip.
// This method is concurrent safe.
func (d *Device) RSSI() (int8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	v := d.readRegister(RSSI)
	if err := d.releaseChip(); err != nil {
		return 0, err
	}
	return int8(v), nil
}

// Pending returns the number of bytes waiting in the RX FIFO, length and
// status bytes included.
// This method is concurrent safe.
func (d *Device) Pending() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	v := d.readRegister(RXBYTES)
	if err := d.releaseChip(); err != nil {
		return 0, err
	}
	return int(v & 0x7F), nil
}

// LastRSSI returns the RSSI byte appended to the last successfully received
// packet.
func (d *Device) LastRSSI() int8 {
	return int8(d.quality.Load())
}

// LastLQI returns the LQI byte appended to the last successfully received
// packet. Bit 7 is the CRC_OK flag, always set on packets the chip lets through.
func (d *Device) LastLQI() uint8 {
	return uint8(d.quality.Load() >> 8)
}

func (d *Device) setQuality(rssi, lqi byte) {
	d.quality.Store(uint32(lqi)<<8 | uint32(rssi))
}

// RSSIToDBm converts a raw RSSI reading to dBm.
func RSSIToDBm(raw int8) int {
	return int(raw)/2 - 74
}

// IsChannelClear reports whether the channel is free for transmission.
// Clear channel assessment is not implemented: it always returns true.
func (d *Device) IsChannelClear() bool {
	return true
}
