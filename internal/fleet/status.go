package fleet

import (
	"fmt"
	"time"
)

// Status enumerations are persisted as their display strings (the values
// the original dashboard renders verbatim).

// VehicleStatus is the vehicle availability state.
type VehicleStatus string

const (
	VehicleAvailable VehicleStatus = "Available"
	VehicleOnTrip    VehicleStatus = "On Trip"
	VehicleInShop    VehicleStatus = "In Shop"
	VehicleRetired   VehicleStatus = "Retired"
)

// DriverStatus is the driver duty state.
type DriverStatus string

const (
	DriverOnDuty    DriverStatus = "On Duty"
	DriverOffDuty   DriverStatus = "Off Duty"
	DriverOnTrip    DriverStatus = "On Trip"
	DriverSuspended DriverStatus = "Suspended"
)

// TripStatus is the trip lifecycle state.
type TripStatus string

const (
	TripDraft      TripStatus = "Draft"
	TripDispatched TripStatus = "Dispatched"
	TripCompleted  TripStatus = "Completed"
	TripCancelled  TripStatus = "Cancelled"
)

// tripTransitions is the trip state machine as a directed graph.
// Completed and Cancelled are terminal.
var tripTransitions = map[TripStatus][]TripStatus{
	TripDraft:      {TripDispatched, TripCancelled},
	TripDispatched: {TripCompleted, TripCancelled},
	TripCompleted:  {},
	TripCancelled:  {},
}

// vehicleTransitions mirrors what the lifecycle managers are allowed to
// do to a vehicle. Every state admits InShop: opening a maintenance log
// pulls the vehicle into the shop no matter what it was doing (a known
// quirk, kept as-is; see DESIGN.md).
var vehicleTransitions = map[VehicleStatus][]VehicleStatus{
	VehicleAvailable: {VehicleOnTrip, VehicleInShop, VehicleRetired},
	VehicleOnTrip:    {VehicleAvailable, VehicleInShop},
	VehicleInShop:    {VehicleAvailable, VehicleRetired, VehicleInShop},
	VehicleRetired:   {VehicleInShop},
}

// driverTransitions covers duty toggling plus the trip lifecycle pair.
var driverTransitions = map[DriverStatus][]DriverStatus{
	DriverOffDuty:   {DriverOnDuty, DriverSuspended},
	DriverOnDuty:    {DriverOnTrip, DriverOffDuty, DriverSuspended},
	DriverOnTrip:    {DriverOnDuty},
	DriverSuspended: {DriverOffDuty, DriverOnDuty},
}

// CanTripTransition reports whether from -> to is a legal trip move.
func CanTripTransition(from, to TripStatus) bool {
	if from == to {
		return true
	}
	for _, s := range tripTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanVehicleTransition reports whether from -> to is a legal vehicle move.
func CanVehicleTransition(from, to VehicleStatus) bool {
	if from == to {
		return true
	}
	for _, s := range vehicleTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanDriverTransition reports whether from -> to is a legal driver move.
func CanDriverTransition(from, to DriverStatus) bool {
	if from == to {
		return true
	}
	for _, s := range driverTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTripTransition moves a trip to the target status and maintains the
// completion timestamp. Rejects anything not in the table.
func ApplyTripTransition(t *Trip, to TripStatus, now time.Time) error {
	if t == nil {
		return fmt.Errorf("trip is nil")
	}
	if !CanTripTransition(t.Status, to) {
		return InvalidStatef("invalid trip status transition: %s -> %s", t.Status, to)
	}
	t.Status = to
	if to == TripCompleted && t.CompletedAt == nil {
		ts := now
		t.CompletedAt = &ts
	}
	return nil
}

// ValidVehicleStatus reports whether s is one of the known vehicle states.
func ValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehicleAvailable, VehicleOnTrip, VehicleInShop, VehicleRetired:
		return true
	}
	return false
}

// ValidDriverStatus reports whether s is one of the known driver states.
func ValidDriverStatus(s DriverStatus) bool {
	switch s {
	case DriverOnDuty, DriverOffDuty, DriverOnTrip, DriverSuspended:
		return true
	}
	return false
}

// ValidVehicleType reports whether t is one of the known vehicle classes.
func ValidVehicleType(t VehicleType) bool {
	switch t {
	case TypeTruck, TypeVan, TypeBike:
		return true
	}
	return false
}
