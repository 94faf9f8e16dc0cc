package fleet

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaintenanceService couples maintenance logs to vehicle status: an open
// log means the vehicle is in the shop.
//
// Two observed quirks are preserved deliberately (see DESIGN.md): Open
// overwrites the vehicle status no matter what it was, and
// Complete/Delete reset to Available without checking whether another
// open log exists for the same vehicle.
type MaintenanceService struct {
	store Store
	now   func() time.Time
}

// NewMaintenanceService builds a MaintenanceService over the given store.
func NewMaintenanceService(store Store) *MaintenanceService {
	return &MaintenanceService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// OpenInput describes a shop visit being opened.
type OpenInput struct {
	VehicleID   string
	ServiceType string
	Description string
	Cost        float64
	ServiceDate time.Time
	NextDueDate time.Time
}

// Open creates a maintenance log and pulls the vehicle into the shop.
func (s *MaintenanceService) Open(ctx context.Context, in OpenInput) (*MaintenanceLog, error) {
	var out *MaintenanceLog
	err := s.store.InTx(ctx, func(tx Store) error {
		v, err := tx.Vehicles().FindByIDForUpdate(ctx, strings.TrimSpace(in.VehicleID))
		if err != nil {
			return err
		}

		log := &MaintenanceLog{
			ID:          uuid.NewString(),
			VehicleID:   v.ID,
			ServiceType: strings.TrimSpace(in.ServiceType),
			Description: strings.TrimSpace(in.Description),
			Cost:        in.Cost,
			ServiceDate: in.ServiceDate,
			NextDueDate: in.NextDueDate,
			CreatedAt:   s.now(),
		}
		if err := tx.MaintenanceLogs().Create(ctx, log); err != nil {
			return err
		}

		v.Status = VehicleInShop
		if err := tx.Vehicles().Save(ctx, v); err != nil {
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

// Complete marks the shop visit done by releasing the vehicle back to
// Available. The log row itself carries no completed flag; NextDueDate
// stays informational. A deleted vehicle is skipped.
func (s *MaintenanceService) Complete(ctx context.Context, logID string) (*MaintenanceLog, error) {
	var out *MaintenanceLog
	err := s.store.InTx(ctx, func(tx Store) error {
		log, err := tx.MaintenanceLogs().FindByID(ctx, strings.TrimSpace(logID))
		if err != nil {
			return err
		}

		v, err := tx.Vehicles().FindByIDForUpdate(ctx, log.VehicleID)
		switch {
		case err == nil:
			v.Status = VehicleAvailable
			if err := tx.Vehicles().Save(ctx, v); err != nil {
				return err
			}
		case !IsNotFound(err):
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

// Delete removes a maintenance log. A vehicle still sitting in the shop
// is released first.
func (s *MaintenanceService) Delete(ctx context.Context, logID string) error {
	return s.store.InTx(ctx, func(tx Store) error {
		log, err := tx.MaintenanceLogs().FindByID(ctx, strings.TrimSpace(logID))
		if err != nil {
			return err
		}

		v, err := tx.Vehicles().FindByIDForUpdate(ctx, log.VehicleID)
		switch {
		case err == nil:
			if v.Status == VehicleInShop {
				v.Status = VehicleAvailable
				if err := tx.Vehicles().Save(ctx, v); err != nil {
					return err
				}
			}
		case !IsNotFound(err):
			return err
		}

		return tx.MaintenanceLogs().Delete(ctx, log.ID)
	})
}

// List returns all maintenance logs.
func (s *MaintenanceService) List(ctx context.Context) ([]MaintenanceLog, error) {
	return s.store.MaintenanceLogs().List(ctx)
}
