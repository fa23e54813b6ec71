package dispatch

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/metrics"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Movement tuning, in raw coordinate degrees. Distance to target is
// flat-plane, not great-circle: over the few kilometres of the Maputo
// operating area the curvature error is irrelevant.
const (
	speedPerTick     = 0.00004
	arrivalThreshold = 0.0001

	etaDecayPerTick      = 0.01
	etaFloor             = 0.1
	distanceDecayPerTick = 0.005
	distanceFloor        = 0.05

	// DefaultTickInterval approximates the original display refresh cadence
	DefaultTickInterval = 100 * time.Millisecond
)

// simulatorActor is the audit identity for phase transitions the simulator
// triggers on arrival.
var simulatorActor = models.Actor{ID: "SIM-001", Name: "Simulador de Posição", Role: models.RoleSystem}

// Simulator advances every moving mission toward its current target at a
// constant speed, decaying the displayed ETA and distance, and fires the
// arrival phase transition when the unit gets within the threshold. It is
// the sole writer of CurrentPos/Eta/Distance; all writes happen under the
// store mutex, so ticks serialize with the lifecycle operations.
type Simulator struct {
	store    *Store
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSimulator creates a simulator driving the given store. A non-positive
// interval falls back to the default cadence.
func NewSimulator(store *Store, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Simulator{
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the tick loop until the context is cancelled or Stop is called
func (sim *Simulator) Start(ctx context.Context) error {
	ticker := time.NewTicker(sim.interval)
	defer ticker.Stop()

	zap.S().Infow("position simulator started", "interval", sim.interval)
	for {
		select {
		case <-ctx.Done():
			zap.S().Info("position simulator stopped")
			return ctx.Err()
		case <-sim.stopCh:
			zap.S().Info("position simulator stopped")
			return nil
		case <-ticker.C:
			sim.Tick()
		}
	}
}

// Stop cancels the tick loop. Safe to call more than once.
func (sim *Simulator) Stop() {
	sim.stopOnce.Do(func() { close(sim.stopCh) })
}

// Tick advances every eligible mission by one step. Exported so tests can
// drive the simulation deterministically without the ticker.
func (sim *Simulator) Tick() {
	metrics.RecordSimulatorTick()

	s := sim.store
	s.mu.Lock()
	var updated, arrived []models.EmergencyCase
	for _, c := range s.cases {
		amb := c.AmbulanceState
		if amb == nil {
			continue
		}
		var target models.Coordinates
		switch amb.Phase {
		case models.PhaseEnRouteToPatient:
			target = c.Coords
		case models.PhaseEvacuating:
			target = HospitalCoords
		default:
			// stationary phases are skipped entirely
			continue
		}

		latDiff := target.Lat - amb.CurrentPos.Lat
		lngDiff := target.Lng - amb.CurrentPos.Lng
		dist := math.Sqrt(latDiff*latDiff + lngDiff*lngDiff)

		if dist < arrivalThreshold {
			amb.CurrentPos = target
			amb.Eta = 0
			amb.Distance = 0
			next := models.PhaseAtPatient
			if amb.Phase == models.PhaseEvacuating {
				next = models.PhaseAtHospital
			}
			s.advancePhaseLocked(c, next)
			arrived = append(arrived, c.Copy())
			continue
		}

		moveRatio := speedPerTick / dist
		amb.CurrentPos.Lat += latDiff * moveRatio
		amb.CurrentPos.Lng += lngDiff * moveRatio
		amb.Eta = math.Max(etaFloor, amb.Eta-etaDecayPerTick)
		amb.Distance = math.Max(distanceFloor, amb.Distance-distanceDecayPerTick)
		updated = append(updated, c.Copy())
	}
	s.mu.Unlock()

	for _, c := range arrived {
		s.auditLog.Record(simulatorActor, "AMBULANCE_PHASE_CHANGE", c.ID, "Fase: "+c.AmbulanceState.Phase.String())
		s.publish("phase_change", c)
	}
	for _, c := range updated {
		s.publish("position", c)
	}
}
