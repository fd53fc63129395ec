// MODUL: registry
// ZWECK: Zentrale Registry fuer Backend-Factories mit Thread-sicherer Verwaltung
// INPUT: Backend-Name, Factory-Funktionen, Config
// OUTPUT: Geoeffnete Sessions
// NEBENEFFEKTE: Keine (rein speicherbasiert)
// ABHAENGIGKEITEN: sync (stdlib)
// HINWEISE: Backends registrieren sich via init(), Import mit _ "github.com/7blacky7/seglive/inference/onnx"

package inference

import (
	"errors"
	"slices"
	"sync"
)

// ErrBackendNotRegistered meldet einen unbekannten Backend-Namen
var ErrBackendNotRegistered = errors.New("inference: backend not registered")

// Factory oeffnet eine Session fuer die Konfiguration
type Factory func(cfg Config) (Session, error)

// RegistryError repraesentiert einen Registry-spezifischen Fehler.
type RegistryError struct {
	Op   string // Operation (z.B. "open")
	Name string // Backend-Name
	Err  error  // Urspruenglicher Fehler
}

// Error implementiert das error Interface.
func (e *RegistryError) Error() string {
	return "inference: " + e.Op + " backend '" + e.Name + "': " + e.Err.Error()
}

// Unwrap gibt den urspruenglichen Fehler zurueck.
func (e *RegistryError) Unwrap() error {
	return e.Err
}

// ============================================================================
// Registry
// ============================================================================

// Registry verwaltet registrierte Backend-Factories.
type Registry struct {
	backends map[string]Factory
	mu       sync.RWMutex
}

// NewRegistry erstellt eine neue leere Registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Factory)}
}

// DefaultRegistry ist die globale Registry, Backends tragen sich per init() ein.
var DefaultRegistry = NewRegistry()

// Register registriert eine Factory. Ueberschreibt existierende Eintraege ohne Warnung.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends[name] = factory
}

// Has prueft ob ein Backend unter dem Namen registriert ist.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.backends[name]
	return exists
}

// List gibt die registrierten Namen sortiert zurueck.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open oeffnet eine Session mit der Factory fuer cfg.Backend.
func (r *Registry) Open(cfg Config) (Session, error) {
	r.mu.RLock()
	factory, exists := r.backends[cfg.Backend]
	r.mu.RUnlock()

	if !exists {
		return nil, &RegistryError{Op: "open", Name: cfg.Backend, Err: ErrBackendNotRegistered}
	}

	s, err := factory(cfg)
	if err != nil {
		return nil, &RegistryError{Op: "open", Name: cfg.Backend, Err: err}
	}
	return s, nil
}

// Register traegt eine Factory in die DefaultRegistry ein.
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}
