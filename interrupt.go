package cc1101

// SetReceiveCallback registers fn to be called each time the GDO line signals a
// received packet. fn takes over the packet: it is expected to call Receive or
// Discard. With no callback (fn == nil) pending packets are discarded.
//
// fn runs in the context that delivers the edge: a watcher goroutine on Linux,
// the interrupt handler on TinyGo. It must not block; use Notifier to hand the
// work to a goroutine that calls Receive.
//
// On TinyGo, register a callback before calling On. Without one the interrupt
// handler calls Discard itself, which deadlocks if the edge arrives while
// another operation holds the device.
// This method is concurrent safe.
func (d *Device) SetReceiveCallback(fn func()) {
	if fn == nil {
		d.onRecv.Store(nil)
		return
	}
	d.onRecv.Store(&fn)
}

// handleInterrupt is the GDO rising edge handler.
func (d *Device) handleInterrupt() {
	if fn := d.onRecv.Load(); fn != nil {
		(*fn)()
		return
	}
	globalLogger.Debug("No receive callback, discarding packet")
	if err := d.Discard(); err != nil {
		globalLogger.Error("Failed to discard packet: " + err.Error())
	}
}

// Notifier returns a receive callback that posts a token on ch and never
// blocks. When ch is full the token is dropped and the frame stays in the
// FIFO; consumers drain it by calling Receive while Pending reports bytes.
func Notifier(ch chan<- struct{}) func() {
	return func() {
		select {
		case ch <- struct{}{}:
		default:
			// Channel full
		}
	}
}
