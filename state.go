package cc1101

// State is the main radio control state reported in the chip status byte.
type State byte

const (
	StateIdle        State = 0
	StateRX          State = 1
	StateTX          State = 2
	StateFSTXON      State = 3
	StateCalibrate   State = 4
	StateSettling    State = 5
	StateRXOverflow  State = 6
	StateTXUnderflow State = 7
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRX:
		return "RX"
	case StateTX:
		return "TX"
	case StateFSTXON:
		return "FSTXON"
	case StateCalibrate:
		return "CALIBRATE"
	case StateSettling:
		return "SETTLING"
	case StateRXOverflow:
		return "RX_OVERFLOW"
	case StateTXUnderflow:
		return "TX_UNDERFLOW"
	default:
		return "unknown"
	}
}

// Status is the byte the chip shifts out while it receives every header byte.
type Status byte

const statusNotReady = 1 << 7 // CHIP_RDYn

// Ready reports whether the crystal is running and the chip accepts commands.
func (s Status) Ready() bool {
	return s&statusNotReady == 0
}

// State returns the radio state field.
func (s Status) State() State {
	return State((s >> 4) & 0x07)
}

// FIFOAvailable returns the FIFO byte count field: free bytes in the TX FIFO
// after a write header, bytes waiting in the RX FIFO after a read header.
// The field saturates at 15.
func (s Status) FIFOAvailable() int {
	return int(s & 0x0F)
}
