//go:build !tinygo

package cc1101

import (
	"fmt"
	"os"

	"github.com/flynn/json5"
	"periph.io/x/conn/v3/physic"
)

// fileConfig is the on-disk layout read by LoadConfigFile.
type fileConfig struct {
	Channel      byte   `json:"channel"`
	Address      byte   `json:"address"`
	TxPower      byte   `json:"tx_power"`
	SyncWord     uint16 `json:"sync_word"`
	InterruptGDO byte   `json:"interrupt_gdo"`
	FrequencyHz  int64  `json:"frequency_hz"`
	OscillatorHz int64  `json:"oscillator_hz"`
	SpiBusPath   string `json:"spi_bus"`
	SpiClockHz   int    `json:"spi_clock_hz"`
	CSPin        int    `json:"cs_pin"`
	GDOPin       int    `json:"gdo_pin"`
	SOPin        int    `json:"so_pin"`
}

// LoadConfigFile reads a JSON5 host configuration. Keys are snake_case and
// frequencies are given in Hz; omitted keys keep the defaults applied by New.
//
//	{
//	  // 868.3 MHz, channel 0
//	  frequency_hz: 868300000,
//	  channel: 0,
//	  sync_word: 54161, // 0xD391
//	  cs_pin: 25,
//	  gdo_pin: 24,
//	}
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (Config, error) {
	var fc fileConfig
	if err := json5.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if fc.FrequencyHz < 0 || fc.OscillatorHz < 0 {
		return Config{}, fmt.Errorf("%w: frequencies must not be negative", ErrPkg)
	}
	return Config{
		RadioConfig: RadioConfig{
			Channel:      fc.Channel,
			Address:      fc.Address,
			TxPower:      fc.TxPower,
			SyncWord:     fc.SyncWord,
			InterruptGDO: fc.InterruptGDO,
			Frequency:    physic.Frequency(fc.FrequencyHz) * physic.Hertz,
			Oscillator:   physic.Frequency(fc.OscillatorHz) * physic.Hertz,
		},
		SpiBusPath: fc.SpiBusPath,
		SpiClockHz: fc.SpiClockHz,
		CSPin:      fc.CSPin,
		GDOPin:     fc.GDOPin,
		SOPin:      fc.SOPin,
	}, nil
}
