package fleet

import (
	"context"
	"testing"
	"time"
)

func TestCreateVehicleDefaultsAndConflict(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(NewMemStore())

	v, err := svc.CreateVehicle(ctx, VehicleInput{
		Name:        "Atlas 01",
		Plate:       "FLT-0001",
		VehicleType: TypeTruck,
		Capacity:    9000,
	})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	if v.ID == "" {
		t.Error("expected generated id")
	}
	if v.Status != VehicleAvailable {
		t.Errorf("status = %s, want Available (default)", v.Status)
	}

	_, err = svc.CreateVehicle(ctx, VehicleInput{
		Name:        "Atlas Clone",
		Plate:       "FLT-0001",
		VehicleType: TypeVan,
		Capacity:    1200,
	})
	if KindOf(err) != KindConflict {
		t.Fatalf("kind = %q, want conflict", KindOf(err))
	}
	if err.Error() != "Vehicle with this plate already exists" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCreateVehicleRejectsUnknownType(t *testing.T) {
	svc := NewRegistryService(NewMemStore())

	_, err := svc.CreateVehicle(context.Background(), VehicleInput{
		Plate:       "FLT-0002",
		VehicleType: "Submarine",
		Capacity:    100,
	})
	if KindOf(err) != KindInvalidState {
		t.Fatalf("kind = %q, want invalid_state", KindOf(err))
	}
}

func TestUpdateVehiclePartial(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(NewMemStore())

	v, _ := svc.CreateVehicle(ctx, VehicleInput{
		Name: "Atlas 01", Plate: "FLT-0003", VehicleType: TypeTruck,
		Capacity: 9000, Odometer: 1000,
	})

	newName := "Atlas 01 (refit)"
	newOdo := 2500.0
	got, err := svc.UpdateVehicle(ctx, v.ID, VehicleUpdate{Name: &newName, Odometer: &newOdo})
	if err != nil {
		t.Fatalf("UpdateVehicle: %v", err)
	}
	if got.Name != newName || got.Odometer != newOdo {
		t.Errorf("update not applied: %+v", got)
	}
	// untouched fields survive
	if got.Capacity != 9000 || got.Status != VehicleAvailable {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateVehicleUnknownStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(NewMemStore())

	v, _ := svc.CreateVehicle(ctx, VehicleInput{
		Plate: "FLT-0004", VehicleType: TypeVan, Capacity: 1000,
	})

	bad := VehicleStatus("Lost")
	if _, err := svc.UpdateVehicle(ctx, v.ID, VehicleUpdate{Status: &bad}); KindOf(err) != KindInvalidState {
		t.Fatalf("kind = %q, want invalid_state", KindOf(err))
	}
}

func TestDeleteVehicle(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(NewMemStore())

	v, _ := svc.CreateVehicle(ctx, VehicleInput{
		Plate: "FLT-0005", VehicleType: TypeBike, Capacity: 40,
	})
	if err := svc.DeleteVehicle(ctx, v.ID); err != nil {
		t.Fatalf("DeleteVehicle: %v", err)
	}
	if _, err := svc.GetVehicle(ctx, v.ID); !IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
	if err := svc.DeleteVehicle(ctx, v.ID); !IsNotFound(err) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestCreateDriverDefaultsAndConflict(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(NewMemStore())

	d, err := svc.CreateDriver(ctx, DriverInput{
		Name:          "Marta Keller",
		LicenseNumber: "DL-1001",
		LicenseExpiry: time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	if d.Status != DriverOffDuty {
		t.Errorf("status = %s, want Off Duty (default)", d.Status)
	}
	if d.SafetyScore != 100 {
		t.Errorf("safety score = %g, want 100 (default)", d.SafetyScore)
	}

	_, err = svc.CreateDriver(ctx, DriverInput{
		Name:          "Impostor",
		LicenseNumber: "DL-1001",
		LicenseExpiry: time.Now().AddDate(1, 0, 0),
	})
	if KindOf(err) != KindConflict {
		t.Fatalf("kind = %q, want conflict", KindOf(err))
	}
	if err.Error() != "Driver with this license number already exists" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestUpdateDriverPartial(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(NewMemStore())

	d, _ := svc.CreateDriver(ctx, DriverInput{
		Name:          "Jonas Brandt",
		LicenseNumber: "DL-1002",
		LicenseExpiry: time.Now().AddDate(1, 0, 0),
		SafetyScore:   91,
	})

	onDuty := DriverOnDuty
	got, err := svc.UpdateDriver(ctx, d.ID, DriverUpdate{Status: &onDuty})
	if err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	if got.Status != DriverOnDuty {
		t.Errorf("status = %s, want On Duty", got.Status)
	}
	if got.SafetyScore != 91 || got.Name != "Jonas Brandt" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestDeleteDriverPermissiveWhileOnTrip(t *testing.T) {
	// deleting a driver with a dispatched trip is allowed; the trip keeps
	// a dangling reference
	ctx := context.Background()
	store := NewMemStore()
	registry := NewRegistryService(store)
	trips := newTestTripService(store)

	v := seedVehicle(t, store, VehicleAvailable, 1000)
	d := seedDriver(t, store, DriverOnDuty, validExpiry())
	trip, err := trips.Dispatch(ctx, DispatchInput{VehicleID: v.ID, DriverID: d.ID, CargoWeight: 500})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if err := registry.DeleteDriver(ctx, d.ID); err != nil {
		t.Fatalf("DeleteDriver: %v", err)
	}
	got, err := trips.Get(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Get trip: %v", err)
	}
	if got.DriverID != d.ID {
		t.Errorf("trip driver ref = %s, want %s", got.DriverID, d.ID)
	}
}

func TestFuelLogLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewRegistryService(NewMemStore())

	v, _ := svc.CreateVehicle(ctx, VehicleInput{
		Plate: "FLT-0006", VehicleType: TypeTruck, Capacity: 9000,
	})

	log, err := svc.CreateFuelLog(ctx, FuelInput{
		VehicleID:       v.ID,
		Liters:          140,
		Cost:            230.5,
		Date:            time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		OdometerReading: 48500,
	})
	if err != nil {
		t.Fatalf("CreateFuelLog: %v", err)
	}

	logs, err := svc.ListFuelLogs(ctx)
	if err != nil || len(logs) != 1 {
		t.Fatalf("ListFuelLogs = %d logs, err %v", len(logs), err)
	}

	if err := svc.DeleteFuelLog(ctx, log.ID); err != nil {
		t.Fatalf("DeleteFuelLog: %v", err)
	}
	if err := svc.DeleteFuelLog(ctx, log.ID); !IsNotFound(err) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestCreateFuelLogVehicleMustExist(t *testing.T) {
	svc := NewRegistryService(NewMemStore())

	_, err := svc.CreateFuelLog(context.Background(), FuelInput{VehicleID: "missing", Liters: 50})
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}
