package fleet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by tests and by the "memory"
// database driver for dependency-free dev runs.
//
// Transactions take the single store mutex for their whole duration and
// run against a cloned dataset that is swapped in only on success, which
// gives the same observable guarantees as the MySQL implementation:
// serializable lifecycle operations and all-or-nothing commits.
type memStore struct {
	mu   sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	vehicles    map[string]Vehicle
	drivers     map[string]Driver
	trips       map[string]Trip
	maintenance map[string]MaintenanceLog
	fuel        map[string]FuelLog
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() Store {
	return &memStore{data: newMemData()}
}

func newMemData() *memData {
	return &memData{
		vehicles:    make(map[string]Vehicle),
		drivers:     make(map[string]Driver),
		trips:       make(map[string]Trip),
		maintenance: make(map[string]MaintenanceLog),
		fuel:        make(map[string]FuelLog),
	}
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.vehicles {
		c.vehicles[k] = v
	}
	for k, v := range d.drivers {
		c.drivers[k] = v
	}
	for k, v := range d.trips {
		c.trips[k] = v
	}
	for k, v := range d.maintenance {
		c.maintenance[k] = v
	}
	for k, v := range d.fuel {
		c.fuel[k] = v
	}
	return c
}

func (s *memStore) Vehicles() VehicleRepo            { return &memVehicles{s} }
func (s *memStore) Drivers() DriverRepo              { return &memDrivers{s} }
func (s *memStore) Trips() TripRepo                  { return &memTrips{s} }
func (s *memStore) MaintenanceLogs() MaintenanceRepo { return &memMaintenance{s} }
func (s *memStore) FuelLogs() FuelRepo               { return &memFuel{s} }

func (s *memStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &memStore{data: s.data.clone(), inTx: true}
	if err := fn(view); err != nil {
		return err
	}
	s.data = view.data
	return nil
}

// with serializes access outside transactions; inside one, the root
// mutex is already held.
func (s *memStore) with(fn func(d *memData) error) error {
	if s.inTx {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

type memVehicles struct{ s *memStore }

func (r *memVehicles) Create(ctx context.Context, v *Vehicle) error {
	return r.s.with(func(d *memData) error {
		for _, other := range d.vehicles {
			if other.Plate == v.Plate {
				return Conflictf("Vehicle with this plate already exists")
			}
		}
		stampNew(&v.ID, &v.CreatedAt)
		v.UpdatedAt = v.CreatedAt
		d.vehicles[v.ID] = *v
		return nil
	})
}

func (r *memVehicles) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	var out Vehicle
	err := r.s.with(func(d *memData) error {
		v, ok := d.vehicles[id]
		if !ok {
			return NotFoundf("Vehicle not found")
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memVehicles) FindByIDForUpdate(ctx context.Context, id string) (*Vehicle, error) {
	// the transaction mutex already serializes everything
	return r.FindByID(ctx, id)
}

func (r *memVehicles) FindByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	var out *Vehicle
	err := r.s.with(func(d *memData) error {
		for _, v := range d.vehicles {
			if v.Plate == plate {
				cp := v
				out = &cp
				return nil
			}
		}
		return NotFoundf("Vehicle not found")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memVehicles) List(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	_ = r.s.with(func(d *memData) error {
		for _, v := range d.vehicles {
			out = append(out, v)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memVehicles) Save(ctx context.Context, v *Vehicle) error {
	return r.s.with(func(d *memData) error {
		v.UpdatedAt = time.Now().UTC()
		d.vehicles[v.ID] = *v
		return nil
	})
}

func (r *memVehicles) Delete(ctx context.Context, id string) error {
	return r.s.with(func(d *memData) error {
		if _, ok := d.vehicles[id]; !ok {
			return NotFoundf("Vehicle not found")
		}
		delete(d.vehicles, id)
		return nil
	})
}

func (r *memVehicles) Count(ctx context.Context) (int64, error) {
	var n int64
	_ = r.s.with(func(d *memData) error {
		n = int64(len(d.vehicles))
		return nil
	})
	return n, nil
}

func (r *memVehicles) CountByStatus(ctx context.Context, s VehicleStatus) (int64, error) {
	var n int64
	_ = r.s.with(func(d *memData) error {
		for _, v := range d.vehicles {
			if v.Status == s {
				n++
			}
		}
		return nil
	})
	return n, nil
}

func (r *memVehicles) CountsByType(ctx context.Context) (map[VehicleType]int64, error) {
	out := make(map[VehicleType]int64)
	_ = r.s.with(func(d *memData) error {
		for _, v := range d.vehicles {
			out[v.VehicleType]++
		}
		return nil
	})
	return out, nil
}

type memDrivers struct{ s *memStore }

func (r *memDrivers) Create(ctx context.Context, dr *Driver) error {
	return r.s.with(func(d *memData) error {
		for _, other := range d.drivers {
			if other.LicenseNumber == dr.LicenseNumber {
				return Conflictf("Driver with this license number already exists")
			}
		}
		stampNew(&dr.ID, &dr.CreatedAt)
		dr.UpdatedAt = dr.CreatedAt
		d.drivers[dr.ID] = *dr
		return nil
	})
}

func (r *memDrivers) FindByID(ctx context.Context, id string) (*Driver, error) {
	var out Driver
	err := r.s.with(func(d *memData) error {
		dr, ok := d.drivers[id]
		if !ok {
			return NotFoundf("Driver not found")
		}
		out = dr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memDrivers) FindByIDForUpdate(ctx context.Context, id string) (*Driver, error) {
	return r.FindByID(ctx, id)
}

func (r *memDrivers) FindByLicense(ctx context.Context, license string) (*Driver, error) {
	var out *Driver
	err := r.s.with(func(d *memData) error {
		for _, dr := range d.drivers {
			if dr.LicenseNumber == license {
				cp := dr
				out = &cp
				return nil
			}
		}
		return NotFoundf("Driver not found")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memDrivers) List(ctx context.Context) ([]Driver, error) {
	var out []Driver
	_ = r.s.with(func(d *memData) error {
		for _, dr := range d.drivers {
			out = append(out, dr)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memDrivers) Save(ctx context.Context, dr *Driver) error {
	return r.s.with(func(d *memData) error {
		dr.UpdatedAt = time.Now().UTC()
		d.drivers[dr.ID] = *dr
		return nil
	})
}

func (r *memDrivers) Delete(ctx context.Context, id string) error {
	return r.s.with(func(d *memData) error {
		if _, ok := d.drivers[id]; !ok {
			return NotFoundf("Driver not found")
		}
		delete(d.drivers, id)
		return nil
	})
}

type memTrips struct{ s *memStore }

func (r *memTrips) Create(ctx context.Context, t *Trip) error {
	return r.s.with(func(d *memData) error {
		stampNew(&t.ID, &t.CreatedAt)
		d.trips[t.ID] = *t
		return nil
	})
}

func (r *memTrips) FindByID(ctx context.Context, id string) (*Trip, error) {
	var out Trip
	err := r.s.with(func(d *memData) error {
		t, ok := d.trips[id]
		if !ok {
			return NotFoundf("Trip not found")
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memTrips) FindByIDForUpdate(ctx context.Context, id string) (*Trip, error) {
	return r.FindByID(ctx, id)
}

func (r *memTrips) List(ctx context.Context) ([]Trip, error) {
	var out []Trip
	_ = r.s.with(func(d *memData) error {
		for _, t := range d.trips {
			out = append(out, t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memTrips) Save(ctx context.Context, t *Trip) error {
	return r.s.with(func(d *memData) error {
		d.trips[t.ID] = *t
		return nil
	})
}

func (r *memTrips) Delete(ctx context.Context, id string) error {
	return r.s.with(func(d *memData) error {
		if _, ok := d.trips[id]; !ok {
			return NotFoundf("Trip not found")
		}
		delete(d.trips, id)
		return nil
	})
}

func (r *memTrips) CountByStatus(ctx context.Context, s TripStatus) (int64, error) {
	var n int64
	_ = r.s.with(func(d *memData) error {
		for _, t := range d.trips {
			if t.Status == s {
				n++
			}
		}
		return nil
	})
	return n, nil
}

type memMaintenance struct{ s *memStore }

func (r *memMaintenance) Create(ctx context.Context, l *MaintenanceLog) error {
	return r.s.with(func(d *memData) error {
		stampNew(&l.ID, &l.CreatedAt)
		d.maintenance[l.ID] = *l
		return nil
	})
}

func (r *memMaintenance) FindByID(ctx context.Context, id string) (*MaintenanceLog, error) {
	var out MaintenanceLog
	err := r.s.with(func(d *memData) error {
		l, ok := d.maintenance[id]
		if !ok {
			return NotFoundf("Maintenance log not found")
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memMaintenance) List(ctx context.Context) ([]MaintenanceLog, error) {
	var out []MaintenanceLog
	_ = r.s.with(func(d *memData) error {
		for _, l := range d.maintenance {
			out = append(out, l)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memMaintenance) Delete(ctx context.Context, id string) error {
	return r.s.with(func(d *memData) error {
		if _, ok := d.maintenance[id]; !ok {
			return NotFoundf("Maintenance log not found")
		}
		delete(d.maintenance, id)
		return nil
	})
}

type memFuel struct{ s *memStore }

func (r *memFuel) Create(ctx context.Context, l *FuelLog) error {
	return r.s.with(func(d *memData) error {
		stampNew(&l.ID, &l.CreatedAt)
		d.fuel[l.ID] = *l
		return nil
	})
}

func (r *memFuel) FindByID(ctx context.Context, id string) (*FuelLog, error) {
	var out FuelLog
	err := r.s.with(func(d *memData) error {
		l, ok := d.fuel[id]
		if !ok {
			return NotFoundf("Fuel log not found")
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memFuel) List(ctx context.Context) ([]FuelLog, error) {
	var out []FuelLog
	_ = r.s.with(func(d *memData) error {
		for _, l := range d.fuel {
			out = append(out, l)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memFuel) Delete(ctx context.Context, id string) error {
	return r.s.with(func(d *memData) error {
		if _, ok := d.fuel[id]; !ok {
			return NotFoundf("Fuel log not found")
		}
		delete(d.fuel, id)
		return nil
	})
}

// stampNew fills in identity and creation time for freshly created rows,
// mirroring what uuid defaults and autoCreateTime do on the MySQL path.
func stampNew(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
