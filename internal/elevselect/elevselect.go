package elevselect

import (
	"github.com/dinaMadelen/elevdispatch/internal/elevcar"
)

// Eligible reports whether car may take a call to targetFloor. A car heading
// towards the floor qualifies, and a car with its door closed always does.
func Eligible(car elevcar.Car, targetFloor int) bool {
	if car.IsMovingUp && targetFloor >= car.CurrentFloor {
		return true
	}
	if !car.IsMovingUp && targetFloor <= car.CurrentFloor {
		return true
	}
	return !car.IsDoorOpen
}

// Nearest picks the eligible car closest to the request's target floor.
//
// Ties go to whichever tied car comes first in cars. Nothing beyond that is
// promised, so callers wanting lowest id must pass cars sorted by id.
// ok is false when no car is eligible, which is not an error.
func Nearest(cars []elevcar.Car, req elevcar.Request) (best elevcar.Car, ok bool) {
	bestDistance := 0
	for _, car := range cars {
		if !Eligible(car, req.TargetFloor) {
			continue
		}
		distance := car.Distance(req.TargetFloor)
		if !ok || distance < bestDistance {
			best, bestDistance, ok = car, distance, true
		}
	}
	return best, ok
}

// Ranked returns every eligible car ordered by distance, ties kept in input
// order. Workers walk this list when their first choice went stale.
func Ranked(cars []elevcar.Car, req elevcar.Request) []elevcar.Car {
	var ranked []elevcar.Car
	for _, car := range cars {
		if !Eligible(car, req.TargetFloor) {
			continue
		}
		i := len(ranked)
		for i > 0 && ranked[i-1].Distance(req.TargetFloor) > car.Distance(req.TargetFloor) {
			i--
		}
		ranked = append(ranked, elevcar.Car{})
		copy(ranked[i+1:], ranked[i:])
		ranked[i] = car
	}
	return ranked
}
