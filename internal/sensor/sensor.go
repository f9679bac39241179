// Package sensor reads temperature and humidity from SHT3x sensors over I2C.
package sensor

import (
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Bus addresses selectable by the sensor's ADDR pin.
const (
	AddrDefault   uint16 = 0x44
	AddrAlternate uint16 = 0x45
)

// ConversionDelay is how long the sensor needs after a single-shot command.
const ConversionDelay = 20 * time.Millisecond

// measureCmd is single shot, high repeatability, clock stretching disabled.
var measureCmd = []byte{0x24, 0x00}

// Reading is one decoded measurement.
// Valid is false if either checksum failed; the values are still decoded.
type Reading struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
	Valid       bool
}

// Reader is anything that produces a Reading.
type Reader interface {
	Read() (Reading, error)
}

// Sensor is one SHT3x on a shared bus.
type Sensor struct {
	bus  i2c.Bus
	addr uint16

	// Sleep waits out the conversion delay. Tests replace it.
	Sleep func(time.Duration)
}

// New returns a Sensor at addr on bus.
func New(bus i2c.Bus, addr uint16) *Sensor {
	return &Sensor{bus: bus, addr: addr, Sleep: time.Sleep}
}

// Addr returns the sensor's bus address.
func (s *Sensor) Addr() uint16 {
	return s.addr
}

// Read triggers a measurement and decodes the 6-byte response.
// Checksum mismatches are logged but do not fail the read.
func (s *Sensor) Read() (Reading, error) {
	if err := s.bus.Tx(s.addr, measureCmd, nil); err != nil {
		return Reading{}, fmt.Errorf("sensor 0x%02x: write command: %w", s.addr, err)
	}

	s.Sleep(ConversionDelay)

	// temp MSB, temp LSB, CRC, hum MSB, hum LSB, CRC
	buf := make([]byte, 6)
	if err := s.bus.Tx(s.addr, nil, buf); err != nil {
		return Reading{}, fmt.Errorf("sensor 0x%02x: read data: %w", s.addr, err)
	}

	r := Decode(buf)
	if !Verify(buf[0:2], buf[2]) {
		log.Printf("sensor 0x%02x: temperature CRC mismatch", s.addr)
	}
	if !Verify(buf[3:5], buf[5]) {
		log.Printf("sensor 0x%02x: humidity CRC mismatch", s.addr)
	}
	return r, nil
}

// Decode converts a raw 6-byte response into a Reading.
func Decode(buf []byte) Reading {
	rawTemp := binary.BigEndian.Uint16(buf[0:2])
	rawHum := binary.BigEndian.Uint16(buf[3:5])

	return Reading{
		Temperature: -45 + 175*float64(rawTemp)/65535,
		Humidity:    100 * float64(rawHum) / 65535,
		Valid:       Verify(buf[0:2], buf[2]) && Verify(buf[3:5], buf[5]),
	}
}

// Average combines readings by mean. Valid only if all inputs were valid.
func Average(readings ...Reading) Reading {
	if len(readings) == 0 {
		return Reading{}
	}
	out := Reading{Valid: true}
	for _, r := range readings {
		out.Temperature += r.Temperature
		out.Humidity += r.Humidity
		out.Valid = out.Valid && r.Valid
	}
	n := float64(len(readings))
	out.Temperature /= n
	out.Humidity /= n
	return out
}
