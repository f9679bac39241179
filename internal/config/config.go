// Package config loads the hardware wiring configuration.
// Drying profiles are compiled in and cannot be configured here.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/filament-dryer/internal/bus"
	"github.com/sweeney/filament-dryer/internal/gpio"
)

// DefaultPath is where the daemon looks for its config file.
const DefaultPath = "/etc/filament-dryer.yaml"

// Config represents the daemon configuration.
type Config struct {
	GPIO      GPIOConfig    `yaml:"gpio"`
	I2C       I2CConfig     `yaml:"i2c"`
	Tick      time.Duration `yaml:"tick"`
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 disables
}

// GPIOConfig contains the chip name and BCM line offsets.
type GPIOConfig struct {
	Chip    string `yaml:"chip"`
	Heater  int    `yaml:"heater"`
	Fan     int    `yaml:"fan"`
	Back    int    `yaml:"back"`
	Confirm int    `yaml:"confirm"`
	Left    int    `yaml:"left"`
	Right   int    `yaml:"right"`
}

// I2CConfig names the bus shared by the sensors and the display.
type I2CConfig struct {
	Bus string `yaml:"bus"`
}

// Default returns the wiring of the reference build.
func Default() *Config {
	return &Config{
		GPIO: GPIOConfig{
			Chip:    "gpiochip0",
			Heater:  gpio.DefaultPinHeater,
			Fan:     gpio.DefaultPinFan,
			Back:    gpio.DefaultPinBack,
			Confirm: gpio.DefaultPinConfirm,
			Left:    gpio.DefaultPinLeft,
			Right:   gpio.DefaultPinRight,
		},
		I2C: I2CConfig{
			Bus: bus.DefaultName,
		},
		Tick:      time.Second,
		Heartbeat: 15 * time.Minute,
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects wiring that would put two functions on one line.
func (c *Config) Validate() error {
	pins := map[string]int{
		"heater":  c.GPIO.Heater,
		"fan":     c.GPIO.Fan,
		"back":    c.GPIO.Back,
		"confirm": c.GPIO.Confirm,
		"left":    c.GPIO.Left,
		"right":   c.GPIO.Right,
	}
	seen := make(map[int]string, len(pins))
	for _, name := range []string{"heater", "fan", "back", "confirm", "left", "right"} {
		pin := pins[name]
		if pin < 0 {
			return fmt.Errorf("config: gpio.%s: invalid pin %d", name, pin)
		}
		if other, ok := seen[pin]; ok {
			return fmt.Errorf("config: gpio.%s and gpio.%s both use pin %d", other, name, pin)
		}
		seen[pin] = name
	}
	return nil
}

// ensureDefaults restores defaults for fields the file set to empty values.
// Pins are left alone: 0 is a valid line offset.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.I2C.Bus == "" {
		c.I2C.Bus = def.I2C.Bus
	}
	if c.Tick <= 0 {
		c.Tick = def.Tick
	}
	if c.Heartbeat < 0 {
		c.Heartbeat = 0
	}
}
