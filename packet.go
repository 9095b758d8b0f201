package cc1101

import (
	"fmt"
)

// Send queues a frame made of header followed by payload and starts the
// transmission. The chip returns to RX by itself once the frame is on air.
// Either part may be empty. Frames longer than MaxPacketLen are rejected with
// ErrOversizeFrame before the bus is touched.
// This method is concurrent safe.
func (d *Device) Send(header, payload []byte) error {
	// Check each part first so the sum below cannot overflow.
	if len(header) > MaxPacketLen || len(payload) > MaxPacketLen || len(header)+len(payload) > MaxPacketLen {
		return fmt.Errorf("%w: %w: %d bytes, limit is %d", ErrPkg, ErrOversizeFrame, len(header)+len(payload), MaxPacketLen)
	}
	n := len(header) + len(payload)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	// RX means no earlier frame is still waiting to go out.
	d.waitForState(StateRX)

	d.writeRegister(FIFO, byte(n))
	if len(header) > 0 {
		d.burstWrite(FIFO, header)
	}
	if len(payload) > 0 {
		d.burstWrite(FIFO, payload)
	}
	d.strobe(STX)

	if err := d.releaseChip(); err != nil {
		return fmt.Errorf("failed to send data: %w", err)
	}
	return nil
}

// Write implements io.Writer by sending p as a single frame.
func (d *Device) Write(p []byte) (int, error) {
	if err := d.Send(nil, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Receive reads the frame at the head of the RX FIFO into buf and returns its
// length. The RSSI and LQI bytes the chip appends are kept for LastRSSI and
// LastLQI. A frame that does not fit in buf is flushed and ErrOversizeFrame is
// returned; buf is not written in that case.
// Receive does not wait for a frame: call it when the GDO interrupt fires.
// This method is concurrent safe.
func (d *Device) Receive(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()

	n := int(d.readRegister(FIFO))
	if d.err != nil {
		return 0, d.releaseChip()
	}
	if n > len(buf) || n > MaxPacketLen {
		globalLogger.Warn(fmt.Sprintf("Flushing oversize frame of %d bytes", n))
		d.flushRX()
		if err := d.releaseChip(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %w: %d bytes, buffer holds %d", ErrPkg, ErrOversizeFrame, n, len(buf))
	}

	if n > 0 {
		d.burstRead(FIFO, buf[:n])
	}
	// No need to check the CRC_OK bit: the chip only raises GDO for frames
	// that passed the hardware check, and auto-flush drops the others.
	var aux [2]byte
	d.burstRead(FIFO, aux[:])
	if d.err == nil {
		d.setQuality(aux[0], aux[1])
	}

	if d.strobe(SNOP).State() == StateRXOverflow {
		// The frame after an overflow is damaged.
		globalLogger.Debug("RX FIFO overflow, resynchronizing")
		d.flushRX()
	}

	if err := d.releaseChip(); err != nil {
		return 0, err
	}
	return n, nil
}

// Discard drops every frame waiting in the RX FIFO and restarts reception.
// This method is concurrent safe.
func (d *Device) Discard() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.selectChip()
	d.flushRX()
	return d.releaseChip()
}
