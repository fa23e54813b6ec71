package dispatch

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/audit"
	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

func distanceTo(pos, target models.Coordinates) float64 {
	latDiff := target.Lat - pos.Lat
	lngDiff := target.Lng - pos.Lng
	return math.Sqrt(latDiff*latDiff + lngDiff*lngDiff)
}

func TestSimulator_TickMovesTowardPatient(t *testing.T) {
	s, id, _ := newMissionStore(t)
	s.Dispatch(testOperator(), id)
	s.Accept(testOperator(), id)
	sim := NewSimulator(s, 0)

	before, _ := s.Get(id)
	target := before.Coords
	prevDist := distanceTo(before.AmbulanceState.CurrentPos, target)
	prevEta := before.AmbulanceState.Eta
	prevDisplay := before.AmbulanceState.Distance

	for i := 0; i < 10; i++ {
		sim.Tick()
		c, _ := s.Get(id)
		dist := distanceTo(c.AmbulanceState.CurrentPos, target)
		assert.Less(t, dist, prevDist, "tick %d must move the unit closer", i)
		assert.Less(t, c.AmbulanceState.Eta, prevEta)
		assert.Less(t, c.AmbulanceState.Distance, prevDisplay)
		prevDist = dist
		prevEta = c.AmbulanceState.Eta
		prevDisplay = c.AmbulanceState.Distance
	}
}

func TestSimulator_TickSkipsStationaryPhases(t *testing.T) {
	s, id, _ := newMissionStore(t)
	s.Dispatch(testOperator(), id)
	sim := NewSimulator(s, 0)

	// idle units have not accepted yet, so they must not move
	sim.Tick()
	c, _ := s.Get(id)
	assert.Equal(t, BasePosition, c.AmbulanceState.CurrentPos)
	assert.Equal(t, models.PhaseIdle, c.AmbulanceState.Phase)
}

func TestSimulator_ArrivalSnapsAndAdvancesPhase(t *testing.T) {
	clock := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := NewStore(audit.New(nil))
	s.now = func() time.Time { return clock }

	// incident close enough that the unit is within the arrival threshold
	created, err := s.Add(testOperator(), models.EmergencyCase{
		Priority:     models.PriorityCritical,
		LocationName: "Junto à base",
		Coords: models.Coordinates{
			Lat: BasePosition.Lat + arrivalThreshold/2,
			Lng: BasePosition.Lng,
		},
	})
	assert.NoError(t, err)
	s.Dispatch(testOperator(), created.ID)
	s.Accept(testOperator(), created.ID)

	sim := NewSimulator(s, 0)
	sim.Tick()

	c, _ := s.Get(created.ID)
	assert.Equal(t, models.PhaseAtPatient, c.AmbulanceState.Phase)
	assert.Equal(t, models.StatusTriage, c.Status)
	assert.Equal(t, c.Coords, c.AmbulanceState.CurrentPos)
	assert.Zero(t, c.AmbulanceState.Eta)
	assert.Zero(t, c.AmbulanceState.Distance)
	assert.Equal(t, "10:00:00", c.AmbulanceState.Timestamps.ArrivedAtPatient)
}

func TestSimulator_EtaAndDistanceRespectFloors(t *testing.T) {
	s := newTestStore()

	// incident far enough that 500 ticks of travel cannot reach it, so the
	// displayed eta (4.0) and distance (1.2) bottom out at their floors first
	created, err := s.Add(testOperator(), models.EmergencyCase{
		Priority:     models.PriorityHigh,
		LocationName: "Marracuene",
		Coords:       models.Coordinates{Lat: BasePosition.Lat, Lng: BasePosition.Lng + 0.03},
	})
	assert.NoError(t, err)
	id := created.ID
	s.Dispatch(testOperator(), id)
	s.Accept(testOperator(), id)
	sim := NewSimulator(s, 0)

	for i := 0; i < 500; i++ {
		sim.Tick()
	}

	c, _ := s.Get(id)
	assert.Equal(t, models.PhaseEnRouteToPatient, c.AmbulanceState.Phase)
	assert.Equal(t, etaFloor, c.AmbulanceState.Eta)
	assert.Equal(t, distanceFloor, c.AmbulanceState.Distance)
}

func TestSimulator_FullMissionJourney(t *testing.T) {
	clock := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := NewStore(audit.New(nil))
	s.now = func() time.Time { return clock }

	created, err := s.Add(testOperator(), models.EmergencyCase{
		Priority:     models.PriorityCritical,
		LocationName: "Av. Marginal",
		Coords:       models.Coordinates{Lat: -25.9702, Lng: 32.5747},
	})
	assert.NoError(t, err)
	id := created.ID

	s.Dispatch(testOperator(), id)
	s.Accept(testOperator(), id)
	sim := NewSimulator(s, 0)

	driveUntil := func(phase models.MissionPhase) {
		for i := 0; i < 100000; i++ {
			c, _ := s.Get(id)
			if c.AmbulanceState.Phase == phase {
				return
			}
			sim.Tick()
		}
		t.Fatalf("unit never reached phase %s", phase)
	}

	driveUntil(models.PhaseAtPatient)
	clock = clock.Add(10 * time.Minute)
	_, err = s.StartEvacuation(testOperator(), id)
	assert.NoError(t, err)

	driveUntil(models.PhaseAtHospital)
	c, _ := s.Get(id)
	assert.Equal(t, HospitalCoords, c.AmbulanceState.CurrentPos)

	final, err := s.Finalize(testOperator(), id, models.ClinicalInput{
		ConsciousnessState: models.ConsciousnessConscious,
		ParamedicName:      "Ana Cossa",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.StatusClosed, final.Status)
	assert.NotNil(t, final.Report)
	// the unit arrived at the hospital ten minutes after dispatch
	assert.Equal(t, "10m 0s", final.Report.TotalOperationTime)
}

func TestSimulator_StopIsIdempotent(t *testing.T) {
	s := NewStore(audit.New(nil))
	sim := NewSimulator(s, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- sim.Start(context.Background()) }()

	sim.Stop()
	sim.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop")
	}
}
