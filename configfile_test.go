//go:build !tinygo

package cc1101

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"periph.io/x/conn/v3/physic"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`{
	// Europe
	"frequency_hz": 868300000,
	"channel": 4,
	"address": 18,
	"sync_word": 54161, /* 0xD391 */
	"interrupt_gdo": 2,
	"spi_bus": "/dev/spidev1.0",
	"cs_pin": 8,
	"gdo_pin": 17,
	"so_pin": 9
}`)

	c, err := parseConfig(data)
	if err != nil {
		t.Fatalf("parseConfig failed: %v", err)
	}

	if c.Frequency != 868300*physic.KiloHertz {
		t.Errorf("Expected 868.3MHz, got %s", c.Frequency)
	}
	if c.Oscillator != 0 {
		t.Errorf("Expected oscillator to be left for defaults, got %s", c.Oscillator)
	}
	if c.Channel != 4 || c.Address != 18 || c.SyncWord != 0xD391 || c.InterruptGDO != 2 {
		t.Errorf("Unexpected radio config: %+v", c.RadioConfig)
	}
	if c.SpiBusPath != "/dev/spidev1.0" || c.CSPin != 8 || c.GDOPin != 17 || c.SOPin != 9 {
		t.Errorf("Unexpected host config: %+v", c)
	}
}

func TestParseConfigErrors(t *testing.T) {
	if _, err := parseConfig([]byte(`{"frequency_hz": -1}`)); !errors.Is(err, ErrPkg) {
		t.Errorf("Expected ErrPkg for a negative frequency, got %v", err)
	}
	if _, err := parseConfig([]byte(`{"channel": `)); err == nil {
		t.Error("Expected an error for truncated input")
	}
	if _, err := parseConfig([]byte(`{"channel": 300}`)); err == nil {
		t.Error("Expected an error for a channel that does not fit a byte")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radio.json5")
	if err := os.WriteFile(path, []byte(`{"channel": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if c.Channel != 7 {
		t.Errorf("Expected channel 7, got %d", c.Channel)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.json5")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
