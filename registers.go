package cc1101

// Register is a logical CC1101 address: a configuration register, a command
// strobe, a status register or a multi-byte region (PATABLE, FIFO).
type Register byte

// SPI header byte flags.
const (
	headerRead  = 1 << 7
	headerBurst = 1 << 6
)

// Configuration registers.
const (
	IOCFG2   Register = 0x00
	IOCFG1   Register = 0x01
	IOCFG0   Register = 0x02
	FIFOTHR  Register = 0x03
	SYNC1    Register = 0x04
	SYNC0    Register = 0x05
	PKTLEN   Register = 0x06
	PKTCTRL1 Register = 0x07
	PKTCTRL0 Register = 0x08
	ADDR     Register = 0x09
	CHANNR   Register = 0x0A
	FSCTRL1  Register = 0x0B
	FSCTRL0  Register = 0x0C
	FREQ2    Register = 0x0D
	FREQ1    Register = 0x0E
	FREQ0    Register = 0x0F
	MDMCFG4  Register = 0x10
	MDMCFG3  Register = 0x11
	MDMCFG2  Register = 0x12
	MDMCFG1  Register = 0x13
	MDMCFG0  Register = 0x14
	DEVIATN  Register = 0x15
	MCSM2    Register = 0x16
	MCSM1    Register = 0x17
	MCSM0    Register = 0x18
	FOCCFG   Register = 0x19
	BSCFG    Register = 0x1A
	AGCCTRL2 Register = 0x1B
	AGCCTRL1 Register = 0x1C
	AGCCTRL0 Register = 0x1D
	WOREVT1  Register = 0x1E
	WOREVT0  Register = 0x1F
	WORCTRL  Register = 0x20
	FREND1   Register = 0x21
	FREND0   Register = 0x22
	FSCAL3   Register = 0x23
	FSCAL2   Register = 0x24
	FSCAL1   Register = 0x25
	FSCAL0   Register = 0x26
	RCCTRL1  Register = 0x27
	RCCTRL0  Register = 0x28
	FSTEST   Register = 0x29
	PTEST    Register = 0x2A
	AGCTEST  Register = 0x2B
	TEST2    Register = 0x2C
	TEST1    Register = 0x2D
	TEST0    Register = 0x2E
)

// Command strobes.
const (
	SRES    Register = 0x30 // Reset chip
	SFSTXON Register = 0x31 // Enable and calibrate frequency synthesizer
	SXOFF   Register = 0x32 // Turn off crystal oscillator
	SCAL    Register = 0x33 // Calibrate frequency synthesizer and turn it off
	SRX     Register = 0x34 // Enable RX
	STX     Register = 0x35 // Enable TX
	SIDLE   Register = 0x36 // Exit RX/TX
	SWOR    Register = 0x38 // Start wake-on-radio
	SPWD    Register = 0x39 // Enter power down mode when CSn goes high
	SFRX    Register = 0x3A // Flush the RX FIFO
	SFTX    Register = 0x3B // Flush the TX FIFO
	SWORRST Register = 0x3C // Reset real time clock
	SNOP    Register = 0x3D // No operation, returns the status byte
)

// Status registers (read only). They share 0x30-0x3D with the command strobes
// and are told apart by the burst bit, which is part of their address here.
const (
	PARTNUM        Register = 0x30 | headerBurst
	VERSION        Register = 0x31 | headerBurst
	FREQEST        Register = 0x32 | headerBurst
	LQI            Register = 0x33 | headerBurst
	RSSI           Register = 0x34 | headerBurst
	MARCSTATE      Register = 0x35 | headerBurst
	WORTIME1       Register = 0x36 | headerBurst
	WORTIME0       Register = 0x37 | headerBurst
	PKTSTATUS      Register = 0x38 | headerBurst
	VCO_VC_DAC     Register = 0x39 | headerBurst
	TXBYTES        Register = 0x3A | headerBurst
	RXBYTES        Register = 0x3B | headerBurst
	RCCTRL1_STATUS Register = 0x3C | headerBurst
	RCCTRL0_STATUS Register = 0x3D | headerBurst
)

// Multi-byte registers.
const (
	PATABLE Register = 0x3E
	FIFO    Register = 0x3F // TX FIFO on write, RX FIFO on read
)

// RegisterKind classifies a Register.
type RegisterKind uint8

const (
	InvalidRegister RegisterKind = iota
	ConfigRegister
	CommandStrobe
	StatusRegister
	MultiByteRegister
)

func (k RegisterKind) String() string {
	switch k {
	case ConfigRegister:
		return "config"
	case CommandStrobe:
		return "strobe"
	case StatusRegister:
		return "status"
	case MultiByteRegister:
		return "multi-byte"
	default:
		return "invalid"
	}
}

// Kind reports which region of the address map r belongs to.
func (r Register) Kind() RegisterKind {
	switch {
	case r <= TEST0:
		return ConfigRegister
	case r >= SRES && r <= SNOP && r != 0x37:
		return CommandStrobe
	case r == PATABLE || r == FIFO:
		return MultiByteRegister
	case r >= PARTNUM && r <= RCCTRL0_STATUS:
		return StatusRegister
	default:
		return InvalidRegister
	}
}

// Access is the kind of SPI access made to a register.
type Access uint8

const (
	SingleWrite Access = iota
	SingleRead
	BurstWrite
	BurstRead
	Strobe
)

// Encode returns the SPI header byte for accessing reg. Status registers keep
// the burst bit they are defined with, whatever the access.
func Encode(reg Register, access Access) byte {
	h := byte(reg)
	switch access {
	case SingleRead:
		h |= headerRead
	case BurstWrite:
		h |= headerBurst
	case BurstRead:
		h |= headerRead | headerBurst
	}
	return h
}
