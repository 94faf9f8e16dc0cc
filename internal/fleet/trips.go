package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TripService is the trip lifecycle manager. Every mutation runs inside
// one store transaction: the cross-entity invariant checks and the
// resulting vehicle/driver/trip writes commit together or not at all.
type TripService struct {
	store Store
	now   func() time.Time
}

// NewTripService builds a TripService over the given store.
func NewTripService(store Store) *TripService {
	return &TripService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// DispatchInput carries the caller-supplied assignment. Vehicle and
// driver selection is explicit; nothing here is computed.
type DispatchInput struct {
	VehicleID   string
	DriverID    string
	CargoWeight float64
	Origin      string
	Destination string
}

// Dispatch creates a trip and commits the vehicle and driver to it.
//
// Validation order is fixed so error reporting stays deterministic:
// vehicle existence, vehicle availability, driver existence, driver duty
// status, license expiry, capacity. The first failing check wins and
// nothing is mutated.
func (s *TripService) Dispatch(ctx context.Context, in DispatchInput) (*Trip, error) {
	in.VehicleID = strings.TrimSpace(in.VehicleID)
	in.DriverID = strings.TrimSpace(in.DriverID)

	var out *Trip
	err := s.store.InTx(ctx, func(tx Store) error {
		v, err := tx.Vehicles().FindByIDForUpdate(ctx, in.VehicleID)
		if err != nil {
			return err
		}
		if v.Status != VehicleAvailable {
			return InvalidStatef("Vehicle is currently %s", v.Status)
		}

		d, err := tx.Drivers().FindByIDForUpdate(ctx, in.DriverID)
		if err != nil {
			return err
		}
		if d.Status != DriverOnDuty {
			return InvalidStatef("Driver is currently %s", d.Status)
		}
		if d.LicenseExpiry.Before(dateOnly(s.now())) {
			return Expiredf("Driver license has expired")
		}

		if in.CargoWeight > v.Capacity {
			return CapacityExceededf("Load (%gkg) exceeds vehicle capacity (%gkg)",
				in.CargoWeight, v.Capacity)
		}

		trip := &Trip{
			ID:          uuid.NewString(),
			VehicleID:   v.ID,
			DriverID:    d.ID,
			CargoWeight: in.CargoWeight,
			Origin:      strings.TrimSpace(in.Origin),
			Destination: strings.TrimSpace(in.Destination),
			Status:      TripDispatched,
			CreatedAt:   s.now(),
		}
		if err := tx.Trips().Create(ctx, trip); err != nil {
			return err
		}

		if !CanVehicleTransition(v.Status, VehicleOnTrip) {
			return InvalidStatef("invalid vehicle status transition: %s -> %s", v.Status, VehicleOnTrip)
		}
		v.Status = VehicleOnTrip
		if err := tx.Vehicles().Save(ctx, v); err != nil {
			return err
		}

		if !CanDriverTransition(d.Status, DriverOnTrip) {
			return InvalidStatef("invalid driver status transition: %s -> %s", d.Status, DriverOnTrip)
		}
		d.Status = DriverOnTrip
		if err := tx.Drivers().Save(ctx, d); err != nil {
			return err
		}

		out = trip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Complete closes out a dispatched trip: the trip gets its completion
// timestamp, the vehicle returns to the available pool with the reported
// odometer (no monotonicity check, matching the original behavior), and
// the driver goes back on duty. A vehicle or driver deleted mid-trip is
// skipped, not an error.
func (s *TripService) Complete(ctx context.Context, tripID string, finalOdometer float64) (*Trip, error) {
	var out *Trip
	err := s.store.InTx(ctx, func(tx Store) error {
		t, err := tx.Trips().FindByIDForUpdate(ctx, strings.TrimSpace(tripID))
		if err != nil {
			return err
		}
		if t.Status != TripDispatched {
			return InvalidStatef("Only dispatched trips can be completed")
		}
		if err := ApplyTripTransition(t, TripCompleted, s.now()); err != nil {
			return err
		}
		if err := tx.Trips().Save(ctx, t); err != nil {
			return err
		}

		v, err := tx.Vehicles().FindByIDForUpdate(ctx, t.VehicleID)
		switch {
		case err == nil:
			v.Status = VehicleAvailable
			v.Odometer = finalOdometer
			if err := tx.Vehicles().Save(ctx, v); err != nil {
				return err
			}
		case !IsNotFound(err):
			return err
		}

		d, err := tx.Drivers().FindByIDForUpdate(ctx, t.DriverID)
		switch {
		case err == nil:
			d.Status = DriverOnDuty
			if err := tx.Drivers().Save(ctx, d); err != nil {
				return err
			}
		case !IsNotFound(err):
			return err
		}

		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a trip. Deleting a dispatched trip counts as a
// cancellation: the vehicle and driver roll back to Available/OnDuty
// first (best effort, dangling references skipped). Draft, Completed and
// Cancelled trips are removed without touching anyone's status.
func (s *TripService) Delete(ctx context.Context, tripID string) error {
	return s.store.InTx(ctx, func(tx Store) error {
		t, err := tx.Trips().FindByIDForUpdate(ctx, strings.TrimSpace(tripID))
		if err != nil {
			return err
		}

		if t.Status == TripDispatched {
			// rollback is unconditional: the vehicle may have been pulled
			// into the shop mid-trip and the original still frees it
			v, err := tx.Vehicles().FindByIDForUpdate(ctx, t.VehicleID)
			switch {
			case err == nil:
				v.Status = VehicleAvailable
				if err := tx.Vehicles().Save(ctx, v); err != nil {
					return err
				}
			case !IsNotFound(err):
				return err
			}

			d, err := tx.Drivers().FindByIDForUpdate(ctx, t.DriverID)
			switch {
			case err == nil:
				d.Status = DriverOnDuty
				if err := tx.Drivers().Save(ctx, d); err != nil {
					return err
				}
			case !IsNotFound(err):
				return err
			}
		}

		return tx.Trips().Delete(ctx, t.ID)
	})
}

// Get returns a trip by id.
func (s *TripService) Get(ctx context.Context, id string) (*Trip, error) {
	return s.store.Trips().FindByID(ctx, strings.TrimSpace(id))
}

// List returns all trips, newest first.
func (s *TripService) List(ctx context.Context) ([]Trip, error) {
	return s.store.Trips().List(ctx)
}

// dateOnly truncates a timestamp to its UTC calendar date, for comparing
// against date-resolution fields like license expiry.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
