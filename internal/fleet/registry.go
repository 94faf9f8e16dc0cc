package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RegistryService is the plain CRUD facade over vehicles, drivers and
// fuel logs: create with natural-key uniqueness, get, list,
// partial-field update and delete. No cross-entity invariants live here.
//
// Deleting a vehicle or driver that a dispatched trip still references
// is allowed; the trip keeps a weak reference and the lifecycle code
// tolerates the dangling id.
type RegistryService struct {
	store Store
}

// NewRegistryService builds a RegistryService over the given store.
func NewRegistryService(store Store) *RegistryService {
	return &RegistryService{store: store}
}

// VehicleInput is the full field set for creating a vehicle.
type VehicleInput struct {
	Name            string
	Plate           string
	VehicleType     VehicleType
	Capacity        float64
	Odometer        float64
	Status          VehicleStatus
	AcquisitionCost float64
}

// VehicleUpdate is a partial update; nil fields keep their prior values.
type VehicleUpdate struct {
	Name            *string
	Status          *VehicleStatus
	Odometer        *float64
	Capacity        *float64
	AcquisitionCost *float64
}

// CreateVehicle registers a vehicle, rejecting duplicate plates.
func (s *RegistryService) CreateVehicle(ctx context.Context, in VehicleInput) (*Vehicle, error) {
	in.Plate = strings.TrimSpace(in.Plate)
	if !ValidVehicleType(in.VehicleType) {
		return nil, InvalidStatef("unknown vehicle type: %s", in.VehicleType)
	}
	status := in.Status
	if status == "" {
		status = VehicleAvailable
	}
	if !ValidVehicleStatus(status) {
		return nil, InvalidStatef("unknown vehicle status: %s", status)
	}

	var out *Vehicle
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.Vehicles().FindByPlate(ctx, in.Plate); err == nil {
			return Conflictf("Vehicle with this plate already exists")
		} else if !IsNotFound(err) {
			return err
		}
		v := &Vehicle{
			ID:              uuid.NewString(),
			Name:            strings.TrimSpace(in.Name),
			Plate:           in.Plate,
			VehicleType:     in.VehicleType,
			Capacity:        in.Capacity,
			Odometer:        in.Odometer,
			Status:          status,
			AcquisitionCost: in.AcquisitionCost,
		}
		if err := tx.Vehicles().Create(ctx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetVehicle returns a vehicle by id.
func (s *RegistryService) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	return s.store.Vehicles().FindByID(ctx, strings.TrimSpace(id))
}

// ListVehicles returns the whole registry.
func (s *RegistryService) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	return s.store.Vehicles().List(ctx)
}

// UpdateVehicle merges the supplied fields into the stored vehicle.
func (s *RegistryService) UpdateVehicle(ctx context.Context, id string, in VehicleUpdate) (*Vehicle, error) {
	if in.Status != nil && !ValidVehicleStatus(*in.Status) {
		return nil, InvalidStatef("unknown vehicle status: %s", *in.Status)
	}

	var out *Vehicle
	err := s.store.InTx(ctx, func(tx Store) error {
		v, err := tx.Vehicles().FindByIDForUpdate(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		if in.Name != nil {
			v.Name = strings.TrimSpace(*in.Name)
		}
		if in.Status != nil {
			v.Status = *in.Status
		}
		if in.Odometer != nil {
			v.Odometer = *in.Odometer
		}
		if in.Capacity != nil {
			v.Capacity = *in.Capacity
		}
		if in.AcquisitionCost != nil {
			v.AcquisitionCost = *in.AcquisitionCost
		}
		if err := tx.Vehicles().Save(ctx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteVehicle removes a vehicle. Open trips referencing it are left
// alone (weak references).
func (s *RegistryService) DeleteVehicle(ctx context.Context, id string) error {
	return s.store.Vehicles().Delete(ctx, strings.TrimSpace(id))
}

// DriverInput is the full field set for creating a driver.
type DriverInput struct {
	Name            string
	LicenseNumber   string
	LicenseCategory VehicleType
	LicenseExpiry   time.Time
	SafetyScore     float64
	Status          DriverStatus
}

// DriverUpdate is a partial update; nil fields keep their prior values.
type DriverUpdate struct {
	Name          *string
	Status        *DriverStatus
	LicenseExpiry *time.Time
	SafetyScore   *float64
}

// CreateDriver registers a driver, rejecting duplicate license numbers.
func (s *RegistryService) CreateDriver(ctx context.Context, in DriverInput) (*Driver, error) {
	in.LicenseNumber = strings.TrimSpace(in.LicenseNumber)
	status := in.Status
	if status == "" {
		status = DriverOffDuty
	}
	if !ValidDriverStatus(status) {
		return nil, InvalidStatef("unknown driver status: %s", status)
	}

	var out *Driver
	err := s.store.InTx(ctx, func(tx Store) error {
		if _, err := tx.Drivers().FindByLicense(ctx, in.LicenseNumber); err == nil {
			return Conflictf("Driver with this license number already exists")
		} else if !IsNotFound(err) {
			return err
		}
		score := in.SafetyScore
		if score == 0 {
			score = 100
		}
		d := &Driver{
			ID:              uuid.NewString(),
			Name:            strings.TrimSpace(in.Name),
			LicenseNumber:   in.LicenseNumber,
			LicenseCategory: in.LicenseCategory,
			LicenseExpiry:   in.LicenseExpiry,
			SafetyScore:     score,
			Status:          status,
		}
		if err := tx.Drivers().Create(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetDriver returns a driver by id.
func (s *RegistryService) GetDriver(ctx context.Context, id string) (*Driver, error) {
	return s.store.Drivers().FindByID(ctx, strings.TrimSpace(id))
}

// ListDrivers returns all drivers.
func (s *RegistryService) ListDrivers(ctx context.Context) ([]Driver, error) {
	return s.store.Drivers().List(ctx)
}

// UpdateDriver merges the supplied fields into the stored driver.
func (s *RegistryService) UpdateDriver(ctx context.Context, id string, in DriverUpdate) (*Driver, error) {
	if in.Status != nil && !ValidDriverStatus(*in.Status) {
		return nil, InvalidStatef("unknown driver status: %s", *in.Status)
	}

	var out *Driver
	err := s.store.InTx(ctx, func(tx Store) error {
		d, err := tx.Drivers().FindByIDForUpdate(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		if in.Name != nil {
			d.Name = strings.TrimSpace(*in.Name)
		}
		if in.Status != nil {
			d.Status = *in.Status
		}
		if in.LicenseExpiry != nil {
			d.LicenseExpiry = *in.LicenseExpiry
		}
		if in.SafetyScore != nil {
			d.SafetyScore = *in.SafetyScore
		}
		if err := tx.Drivers().Save(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteDriver removes a driver, dangling trip references permitted.
func (s *RegistryService) DeleteDriver(ctx context.Context, id string) error {
	return s.store.Drivers().Delete(ctx, strings.TrimSpace(id))
}

// FuelInput describes a fill-up being recorded.
type FuelInput struct {
	VehicleID       string
	Liters          float64
	Cost            float64
	Date            time.Time
	OdometerReading float64
}

// CreateFuelLog records a fill-up against an existing vehicle.
func (s *RegistryService) CreateFuelLog(ctx context.Context, in FuelInput) (*FuelLog, error) {
	var out *FuelLog
	err := s.store.InTx(ctx, func(tx Store) error {
		v, err := tx.Vehicles().FindByID(ctx, strings.TrimSpace(in.VehicleID))
		if err != nil {
			return err
		}
		log := &FuelLog{
			ID:              uuid.NewString(),
			VehicleID:       v.ID,
			Liters:          in.Liters,
			Cost:            in.Cost,
			Date:            in.Date,
			OdometerReading: in.OdometerReading,
		}
		if err := tx.FuelLogs().Create(ctx, log); err != nil {
			return err
		}
		out = log
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListFuelLogs returns all fuel logs.
func (s *RegistryService) ListFuelLogs(ctx context.Context) ([]FuelLog, error) {
	return s.store.FuelLogs().List(ctx)
}

// DeleteFuelLog removes a fuel log.
func (s *RegistryService) DeleteFuelLog(ctx context.Context, id string) error {
	return s.store.FuelLogs().Delete(ctx, strings.TrimSpace(id))
}
