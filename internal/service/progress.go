package service

import (
	"sync"
	"time"
)

// Parametros del avance sintetico del Data Upload Center: una
// aproximacion exponencial discreta, no lineal.
const (
	ProgressTarget = 100.0
	QualityTarget  = 75.0
	ApproachRate   = 0.05
	ProgressTick   = time.Second
)

// approach aplica un paso de la recurrencia p ← p + (target−p)×rate y
// fija p en target cuando queda a distancia de redondeo (< 1).
func approach(current, target, rate float64) float64 {
	next := current + (target-current)*rate
	if target-next < 1 {
		return target
	}
	return next
}

// QualityTracker lleva el avance sintetico de una sesion de upload. El
// "Continue" queda bloqueado hasta que Progress llega a 100.
type QualityTracker struct {
	Progress float64
	Quality  float64
}

// Tick avanza ambos valores un paso.
func (t *QualityTracker) Tick() {
	t.Progress = approach(t.Progress, ProgressTarget, ApproachRate)
	t.Quality = approach(t.Quality, QualityTarget, ApproachRate)
}

// Done indica si el avance alcanzo su objetivo.
func (t *QualityTracker) Done() bool {
	return t.Progress >= ProgressTarget
}

// ProgressRegistry deriva el estado de cada sesion del tiempo
// transcurrido desde Start: no hay goroutines ni tickers colgados, el
// valor se materializa recien al leerlo.
type ProgressRegistry struct {
	mu       sync.Mutex
	interval time.Duration
	started  map[string]time.Time
	now      func() time.Time
}

func NewProgressRegistry() *ProgressRegistry {
	return &ProgressRegistry{
		interval: ProgressTick,
		started:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Start registra el inicio del avance para la sesion. Idempotente.
func (r *ProgressRegistry) Start(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.started[sessionID]; !ok {
		r.started[sessionID] = r.now()
	}
}

// Snapshot devuelve el avance actual de la sesion; ok=false si nunca
// arranco.
func (r *ProgressRegistry) Snapshot(sessionID string) (QualityTracker, bool) {
	r.mu.Lock()
	startedAt, ok := r.started[sessionID]
	now := r.now()
	r.mu.Unlock()
	if !ok {
		return QualityTracker{}, false
	}

	ticks := int(now.Sub(startedAt) / r.interval)
	// Ambas series convergen mucho antes; no hay razon para iterar de mas.
	if ticks > 500 {
		ticks = 500
	}

	var tracker QualityTracker
	for i := 0; i < ticks; i++ {
		tracker.Tick()
	}
	return tracker, true
}

// Stop descarta el estado de la sesion.
func (r *ProgressRegistry) Stop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.started, sessionID)
}
