// Package pipeline - Admission, Worker und Veroeffentlichung der Overlays
//
// Diese Datei enthaelt:
// - State: Zustaende eines Verarbeitungszyklus
// - Stats: Zaehler-Snapshot fuer Diagnose und API
// - counters: atomare Zaehler der Pipeline
package pipeline

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrConfiguration meldet ungueltige Einstellungen beim Aufbau der Pipeline.
// Der Fehler tritt nie im Frame-Pfad auf.
var ErrConfiguration = errors.New("pipeline: configuration error")

// ErrBusy meldet, dass gerade ein Zyklus laeuft
var ErrBusy = errors.New("pipeline: cycle in flight")

// State ist der Zustand des teuren Verarbeitungspfads
type State int32

const (
	StateIdle State = iota
	StateCapturing
	StateAdmitted
	StateProcessing
	StatePublishing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateAdmitted:
		return "admitted"
	case StateProcessing:
		return "processing"
	case StatePublishing:
		return "publishing"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Stats ist ein konsistenter Blick auf die Zaehler, keine atomare Gesamtaufnahme
type Stats struct {
	State         State
	Delivered     uint64 // alle Frames der Quelle
	Admitted      uint64 // Frames mit gestartetem Zyklus
	Dropped       uint64 // verworfen weil ein Zyklus lief
	Malformed     uint64 // ungueltige Frames
	Failures      uint64 // fehlgeschlagene Zyklen (Inference)
	Published     uint64 // veroeffentlichte Snapshots
	LastInference time.Duration
	LastCycle     time.Duration
}

type counters struct {
	delivered     atomic.Uint64
	admitted      atomic.Uint64
	dropped       atomic.Uint64
	malformed     atomic.Uint64
	failures      atomic.Uint64
	published     atomic.Uint64
	lastInference atomic.Int64
	lastCycle     atomic.Int64
}
