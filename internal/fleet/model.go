package fleet

import "time"

// VehicleType is the class of vehicle a unit belongs to. Driver licenses
// carry the same values as their qualification category.
type VehicleType string

const (
	TypeTruck VehicleType = "Truck"
	TypeVan   VehicleType = "Van"
	TypeBike  VehicleType = "Bike"
)

// Vehicle is the vehicles table GORM model.
type Vehicle struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	Name            string        `gorm:"size:64" json:"name"`
	Plate           string        `gorm:"uniqueIndex;size:32;not null" json:"plate"`
	VehicleType     VehicleType   `gorm:"type:varchar(16);not null" json:"vehicle_type"`
	Capacity        float64       `gorm:"not null" json:"capacity"` // kg
	Odometer        float64       `gorm:"not null;default:0" json:"odometer"`
	Status          VehicleStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	AcquisitionCost float64       `json:"acquisition_cost"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// Driver is the drivers table GORM model.
type Driver struct {
	ID              string       `gorm:"primaryKey;size:36" json:"id"`
	Name            string       `gorm:"size:64" json:"name"`
	LicenseNumber   string       `gorm:"uniqueIndex;size:32;not null" json:"license_number"`
	LicenseCategory VehicleType  `gorm:"type:varchar(16)" json:"license_category"`
	LicenseExpiry   time.Time    `gorm:"type:date" json:"license_expiry"`
	SafetyScore     float64      `gorm:"not null;default:100" json:"safety_score"`
	Status          DriverStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// Trip is the trips table GORM model.
//
// VehicleID and DriverID are weak references: the trip never owns the
// vehicle or driver, and the rows they point at may be deleted while the
// trip is still around. Lifecycle code must branch on lookup failure.
type Trip struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	VehicleID   string     `gorm:"index;size:36" json:"vehicle_id"`
	DriverID    string     `gorm:"index;size:36" json:"driver_id"`
	CargoWeight float64    `gorm:"not null" json:"cargo_weight"` // kg
	Origin      string     `gorm:"size:255" json:"origin"`
	Destination string     `gorm:"size:255" json:"destination"`
	Status      TripStatus `gorm:"type:varchar(16);index;not null" json:"status"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // set iff Status == TripCompleted
}

// MaintenanceLog records a shop visit. There is no completed flag on the
// row itself: completion is expressed purely as the vehicle status
// side-effect, and NextDueDate stays informational.
type MaintenanceLog struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	VehicleID   string    `gorm:"index;size:36;not null" json:"vehicle_id"`
	ServiceType string    `gorm:"size:64" json:"service_type"`
	Description string    `gorm:"size:255" json:"description"`
	Cost        float64   `json:"cost"`
	ServiceDate time.Time `gorm:"type:date" json:"service_date"`
	NextDueDate time.Time `gorm:"type:date" json:"next_due_date"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// FuelLog records a fill-up.
type FuelLog struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	VehicleID       string    `gorm:"index;size:36;not null" json:"vehicle_id"`
	Liters          float64   `json:"liters"`
	Cost            float64   `json:"cost"`
	Date            time.Time `gorm:"type:date" json:"date"`
	OdometerReading float64   `json:"odometer_reading"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
