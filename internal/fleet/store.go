package fleet

import "context"

// Store is the unit-of-work facade over fleet persistence.
//
// InTx runs fn against a transactional view of the store: everything fn
// reads through the ForUpdate finders is row-locked until the transaction
// ends, and either every write commits or none does. Lifecycle managers
// do all of their work inside InTx; plain reads go through the outer
// store directly.
//
// Lock order inside a transaction is Trip -> Vehicle -> Driver. Dispatch
// holds no trip row and locks Vehicle -> Driver, a suffix of the same
// order, so transactions cannot wait on each other in a cycle.
type Store interface {
	Vehicles() VehicleRepo
	Drivers() DriverRepo
	Trips() TripRepo
	MaintenanceLogs() MaintenanceRepo
	FuelLogs() FuelRepo

	InTx(ctx context.Context, fn func(tx Store) error) error
}

// VehicleRepo persists vehicles.
type VehicleRepo interface {
	Create(ctx context.Context, v *Vehicle) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	// FindByIDForUpdate locks the row for the rest of the transaction.
	// Outside a transaction it behaves like FindByID.
	FindByIDForUpdate(ctx context.Context, id string) (*Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*Vehicle, error)
	List(ctx context.Context) ([]Vehicle, error)
	Save(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, s VehicleStatus) (int64, error)
	CountsByType(ctx context.Context) (map[VehicleType]int64, error)
}

// DriverRepo persists drivers.
type DriverRepo interface {
	Create(ctx context.Context, d *Driver) error
	FindByID(ctx context.Context, id string) (*Driver, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Driver, error)
	FindByLicense(ctx context.Context, license string) (*Driver, error)
	List(ctx context.Context) ([]Driver, error)
	Save(ctx context.Context, d *Driver) error
	Delete(ctx context.Context, id string) error
}

// TripRepo persists trips.
type TripRepo interface {
	Create(ctx context.Context, t *Trip) error
	FindByID(ctx context.Context, id string) (*Trip, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Trip, error)
	List(ctx context.Context) ([]Trip, error)
	Save(ctx context.Context, t *Trip) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, s TripStatus) (int64, error)
}

// MaintenanceRepo persists maintenance logs.
type MaintenanceRepo interface {
	Create(ctx context.Context, l *MaintenanceLog) error
	FindByID(ctx context.Context, id string) (*MaintenanceLog, error)
	List(ctx context.Context) ([]MaintenanceLog, error)
	Delete(ctx context.Context, id string) error
}

// FuelRepo persists fuel logs.
type FuelRepo interface {
	Create(ctx context.Context, l *FuelLog) error
	FindByID(ctx context.Context, id string) (*FuelLog, error)
	List(ctx context.Context) ([]FuelLog, error)
	Delete(ctx context.Context, id string) error
}
