package pmove

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

const (
	DebugModeMove = iota
	DebugModeSlide
	DebugModeGround
	DebugModeLadder
	DebugModeMantle
	DebugModeWater
	debugModeCount
)

var debugModeNames = [debugModeCount]string{"move", "slide", "ground", "ladder", "mantle", "water"}

// DebugModeName returns the name of a debug mode.
func DebugModeName(mode int) string {
	if mode < 0 || mode >= debugModeCount {
		return fmt.Sprintf("mode(%d)", mode)
	}
	return debugModeNames[mode]
}

// DebugModeFromName resolves the mode with the given name.
func DebugModeFromName(name string) (int, bool) {
	for mode, n := range debugModeNames {
		if n == name {
			return mode, true
		}
	}
	return 0, false
}

// Debugger routes per-concern movement traces to a logger. Every mode starts
// disabled.
type Debugger struct {
	log     *logrus.Logger
	enabled [debugModeCount]bool
	tick    uint64
}

// NewDebugger returns a debugger writing to the given logger.
func NewDebugger(log *logrus.Logger) *Debugger {
	return &Debugger{log: log}
}

// Toggle flips the given debug mode.
func (d *Debugger) Toggle(mode int) {
	if mode < 0 || mode >= debugModeCount {
		return
	}
	d.enabled[mode] = !d.enabled[mode]
}

// Enable sets the state of the given debug mode.
func (d *Debugger) Enable(mode int, enabled bool) {
	if mode < 0 || mode >= debugModeCount {
		return
	}
	d.enabled[mode] = enabled
}

func (d *Debugger) Enabled(mode int) bool {
	if mode < 0 || mode >= debugModeCount {
		return false
	}
	return d.enabled[mode]
}

// Notify logs the formatted message if the mode is enabled and cond holds.
func (d *Debugger) Notify(mode int, cond bool, format string, args ...any) {
	if !cond || !d.Enabled(mode) {
		return
	}
	d.log.WithFields(logrus.Fields{
		"mode": DebugModeName(mode),
		"tick": d.tick,
	}).Debugf(format, args...)
}

func (d *Debugger) advance() {
	d.tick++
}
