package fleet

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore is the MySQL-backed Store. Inside InTx every ForUpdate finder
// adds SELECT ... FOR UPDATE so concurrent lifecycle operations serialize
// on the rows they touch.
type gormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore wraps a gorm DB in the Store interface.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// AutoMigrate creates or updates the fleet tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Vehicle{}, &Driver{}, &Trip{}, &MaintenanceLog{}, &FuelLog{})
}

func (s *gormStore) Vehicles() VehicleRepo            { return &gormVehicles{s} }
func (s *gormStore) Drivers() DriverRepo              { return &gormDrivers{s} }
func (s *gormStore) Trips() TripRepo                  { return &gormTrips{s} }
func (s *gormStore) MaintenanceLogs() MaintenanceRepo { return &gormMaintenance{s} }
func (s *gormStore) FuelLogs() FuelRepo               { return &gormFuel{s} }

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		// already transactional, reuse the same view
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, inTx: true})
	})
}

// forUpdate adds a row lock when running inside a transaction.
func (s *gormStore) forUpdate(q *gorm.DB) *gorm.DB {
	if s.inTx {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

type gormVehicles struct{ s *gormStore }

func (r *gormVehicles) db(ctx context.Context) *gorm.DB { return r.s.db.WithContext(ctx) }

func (r *gormVehicles) Create(ctx context.Context, v *Vehicle) error {
	return r.db(ctx).Create(v).Error
}

func (r *gormVehicles) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	if err := r.db(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, vehicleErr(err)
	}
	return &v, nil
}

func (r *gormVehicles) FindByIDForUpdate(ctx context.Context, id string) (*Vehicle, error) {
	var v Vehicle
	if err := r.s.forUpdate(r.db(ctx)).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, vehicleErr(err)
	}
	return &v, nil
}

func (r *gormVehicles) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	var v Vehicle
	if err := r.db(ctx).Where("plate = ?", plate).First(&v).Error; err != nil {
		return nil, vehicleErr(err)
	}
	return &v, nil
}

func (r *gormVehicles) List(ctx context.Context) ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := r.db(ctx).Order("created_at").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *gormVehicles) Save(ctx context.Context, v *Vehicle) error {
	return r.db(ctx).Save(v).Error
}

func (r *gormVehicles) Delete(ctx context.Context, id string) error {
	res := r.db(ctx).Where("id = ?", id).Delete(&Vehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("Vehicle not found")
	}
	return nil
}

func (r *gormVehicles) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&Vehicle{}).Count(&n).Error
	return n, err
}

func (r *gormVehicles) CountByStatus(ctx context.Context, s VehicleStatus) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&Vehicle{}).Where("status = ?", s).Count(&n).Error
	return n, err
}

func (r *gormVehicles) CountsByType(ctx context.Context) (map[VehicleType]int64, error) {
	var rows []struct {
		VehicleType VehicleType
		N           int64
	}
	err := r.db(ctx).Model(&Vehicle{}).
		Select("vehicle_type, count(id) as n").
		Group("vehicle_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[VehicleType]int64, len(rows))
	for _, row := range rows {
		out[row.VehicleType] = row.N
	}
	return out, nil
}

type gormDrivers struct{ s *gormStore }

func (r *gormDrivers) db(ctx context.Context) *gorm.DB { return r.s.db.WithContext(ctx) }

func (r *gormDrivers) Create(ctx context.Context, d *Driver) error {
	return r.db(ctx).Create(d).Error
}

func (r *gormDrivers) FindByID(ctx context.Context, id string) (*Driver, error) {
	var d Driver
	if err := r.db(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, driverErr(err)
	}
	return &d, nil
}

func (r *gormDrivers) FindByIDForUpdate(ctx context.Context, id string) (*Driver, error) {
	var d Driver
	if err := r.s.forUpdate(r.db(ctx)).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, driverErr(err)
	}
	return &d, nil
}

func (r *gormDrivers) FindByLicense(ctx context.Context, license string) (*Driver, error) {
	var d Driver
	if err := r.db(ctx).Where("license_number = ?", license).First(&d).Error; err != nil {
		return nil, driverErr(err)
	}
	return &d, nil
}

func (r *gormDrivers) List(ctx context.Context) ([]Driver, error) {
	var drivers []Driver
	if err := r.db(ctx).Order("created_at").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *gormDrivers) Save(ctx context.Context, d *Driver) error {
	return r.db(ctx).Save(d).Error
}

func (r *gormDrivers) Delete(ctx context.Context, id string) error {
	res := r.db(ctx).Where("id = ?", id).Delete(&Driver{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("Driver not found")
	}
	return nil
}

type gormTrips struct{ s *gormStore }

func (r *gormTrips) db(ctx context.Context) *gorm.DB { return r.s.db.WithContext(ctx) }

func (r *gormTrips) Create(ctx context.Context, t *Trip) error {
	return r.db(ctx).Create(t).Error
}

func (r *gormTrips) FindByID(ctx context.Context, id string) (*Trip, error) {
	var t Trip
	if err := r.db(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, tripErr(err)
	}
	return &t, nil
}

func (r *gormTrips) FindByIDForUpdate(ctx context.Context, id string) (*Trip, error) {
	var t Trip
	if err := r.s.forUpdate(r.db(ctx)).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, tripErr(err)
	}
	return &t, nil
}

func (r *gormTrips) List(ctx context.Context) ([]Trip, error) {
	var trips []Trip
	if err := r.db(ctx).Order("created_at desc").Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *gormTrips) Save(ctx context.Context, t *Trip) error {
	return r.db(ctx).Save(t).Error
}

func (r *gormTrips) Delete(ctx context.Context, id string) error {
	res := r.db(ctx).Where("id = ?", id).Delete(&Trip{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("Trip not found")
	}
	return nil
}

func (r *gormTrips) CountByStatus(ctx context.Context, s TripStatus) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&Trip{}).Where("status = ?", s).Count(&n).Error
	return n, err
}

type gormMaintenance struct{ s *gormStore }

func (r *gormMaintenance) db(ctx context.Context) *gorm.DB { return r.s.db.WithContext(ctx) }

func (r *gormMaintenance) Create(ctx context.Context, l *MaintenanceLog) error {
	return r.db(ctx).Create(l).Error
}

func (r *gormMaintenance) FindByID(ctx context.Context, id string) (*MaintenanceLog, error) {
	var l MaintenanceLog
	if err := r.db(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Maintenance log not found")
		}
		return nil, err
	}
	return &l, nil
}

func (r *gormMaintenance) List(ctx context.Context) ([]MaintenanceLog, error) {
	var logs []MaintenanceLog
	if err := r.db(ctx).Order("service_date desc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *gormMaintenance) Delete(ctx context.Context, id string) error {
	res := r.db(ctx).Where("id = ?", id).Delete(&MaintenanceLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("Maintenance log not found")
	}
	return nil
}

type gormFuel struct{ s *gormStore }

func (r *gormFuel) db(ctx context.Context) *gorm.DB { return r.s.db.WithContext(ctx) }

func (r *gormFuel) Create(ctx context.Context, l *FuelLog) error {
	return r.db(ctx).Create(l).Error
}

func (r *gormFuel) FindByID(ctx context.Context, id string) (*FuelLog, error) {
	var l FuelLog
	if err := r.db(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Fuel log not found")
		}
		return nil, err
	}
	return &l, nil
}

func (r *gormFuel) List(ctx context.Context) ([]FuelLog, error) {
	var logs []FuelLog
	if err := r.db(ctx).Order("date desc").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *gormFuel) Delete(ctx context.Context, id string) error {
	res := r.db(ctx).Where("id = ?", id).Delete(&FuelLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFoundf("Fuel log not found")
	}
	return nil
}

func vehicleErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("Vehicle not found")
	}
	return err
}

func driverErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("Driver not found")
	}
	return err
}

func tripErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundf("Trip not found")
	}
	return err
}
