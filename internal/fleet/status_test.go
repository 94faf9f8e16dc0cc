package fleet

import (
	"testing"
	"time"
)

func TestTripTransitions(t *testing.T) {
	cases := []struct {
		from, to TripStatus
		ok       bool
	}{
		{TripDraft, TripDispatched, true},
		{TripDraft, TripCancelled, true},
		{TripDraft, TripCompleted, false},
		{TripDispatched, TripCompleted, true},
		{TripDispatched, TripCancelled, true},
		{TripDispatched, TripDraft, false},
		{TripCompleted, TripCancelled, false},
		{TripCompleted, TripDispatched, false},
		{TripCancelled, TripDispatched, false},
		{TripCancelled, TripCompleted, false},
		{TripCompleted, TripCompleted, true}, // self-loop is a no-op
	}
	for _, tc := range cases {
		if got := CanTripTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTripTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestVehicleTransitionsAdmitInShopFromAnywhere(t *testing.T) {
	for _, from := range []VehicleStatus{VehicleAvailable, VehicleOnTrip, VehicleInShop, VehicleRetired} {
		if !CanVehicleTransition(from, VehicleInShop) {
			t.Errorf("expected %s -> In Shop to be allowed", from)
		}
	}
	if CanVehicleTransition(VehicleRetired, VehicleOnTrip) {
		t.Error("Retired -> On Trip must not be allowed")
	}
	if CanVehicleTransition(VehicleOnTrip, VehicleRetired) {
		t.Error("On Trip -> Retired must not be allowed")
	}
}

func TestDriverTransitions(t *testing.T) {
	cases := []struct {
		from, to DriverStatus
		ok       bool
	}{
		{DriverOffDuty, DriverOnDuty, true},
		{DriverOnDuty, DriverOnTrip, true},
		{DriverOnTrip, DriverOnDuty, true},
		{DriverOnTrip, DriverOffDuty, false},
		{DriverOffDuty, DriverOnTrip, false},
		{DriverSuspended, DriverOnDuty, true},
		{DriverOnTrip, DriverSuspended, false},
	}
	for _, tc := range cases {
		if got := CanDriverTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanDriverTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestApplyTripTransitionSetsCompletedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trip := &Trip{Status: TripDispatched}

	if err := ApplyTripTransition(trip, TripCompleted, now); err != nil {
		t.Fatalf("ApplyTripTransition: %v", err)
	}
	if trip.Status != TripCompleted {
		t.Errorf("status = %s, want Completed", trip.Status)
	}
	if trip.CompletedAt == nil || !trip.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", trip.CompletedAt, now)
	}
}

func TestApplyTripTransitionRejectsTerminal(t *testing.T) {
	trip := &Trip{Status: TripCompleted}
	err := ApplyTripTransition(trip, TripCancelled, time.Now())
	if err == nil {
		t.Fatal("expected error for Completed -> Cancelled")
	}
	if KindOf(err) != KindInvalidState {
		t.Errorf("kind = %q, want invalid_state", KindOf(err))
	}
}
