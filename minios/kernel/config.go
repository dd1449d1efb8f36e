package kernel

import (
	"errors"
	"fmt"
)

// Config sizes the kernel tables and sets its time constants.
type Config struct {
	MaxProc         int `yaml:"maxProc"`
	NumMutex        int `yaml:"numMutex"`
	NumMutexPerProc int `yaml:"numMutexPerProc"`
	MaxMutexName    int `yaml:"maxMutexName"`
	MaxProgName     int `yaml:"maxProgName"`

	// TickHz is the number of clock interrupts per second of sleep.
	TickHz int `yaml:"tickHz"`
	// Quantum is the round robin slice in ticks.
	Quantum   int `yaml:"quantum"`
	StackSize int `yaml:"stackSize"`

	// Init is the program started at boot.
	Init string `yaml:"init"`
	// Verbose logs every clock tick.
	Verbose bool `yaml:"verbose"`
	// PowerOffWhenIdle stops the machine once no process is left instead of
	// idling forever.
	PowerOffWhenIdle bool `yaml:"powerOffWhenIdle"`
}

func DefaultConfig() Config {
	return Config{
		MaxProc:         16,
		NumMutex:        16,
		NumMutexPerProc: 4,
		MaxMutexName:    8,
		MaxProgName:     32,
		TickHz:          100,
		Quantum:         10,
		StackSize:       32768,
		Init:            "init",
	}
}

// Validate returns every invalid setting, joined.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("kernel.%s must be > 0", name))
		}
	}
	positive("maxProc", c.MaxProc)
	positive("numMutex", c.NumMutex)
	positive("numMutexPerProc", c.NumMutexPerProc)
	positive("maxMutexName", c.MaxMutexName)
	positive("maxProgName", c.MaxProgName)
	positive("tickHz", c.TickHz)
	positive("quantum", c.Quantum)
	positive("stackSize", c.StackSize)
	if c.Init == "" {
		errs = append(errs, errors.New("kernel.init must name a program"))
	}
	return errors.Join(errs...)
}
