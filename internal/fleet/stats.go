package fleet

import (
	"context"
	"math"
)

// DashboardKPIs is the headline dashboard payload.
type DashboardKPIs struct {
	ActiveFleet       int64   `json:"active_fleet"`
	MaintenanceAlerts int64   `json:"maintenance_alerts"`
	UtilizationRate   float64 `json:"utilization_rate"` // percent, 1 decimal
	PendingCargo      int64   `json:"pending_cargo"`
	TotalVehicles     int64   `json:"total_vehicles"`
}

// SectorCount is one slice of the fleet-mix chart.
type SectorCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// EfficiencyPoint is one weekday of the efficiency series. The series is
// static until telemetry exists; the dashboard charts it as-is.
type EfficiencyPoint struct {
	Name       string `json:"name"`
	Efficiency int    `json:"efficiency"`
	Load       int    `json:"load"`
}

// AnalyticsData is the /stats/analytics-data payload.
type AnalyticsData struct {
	SectorData     []SectorCount     `json:"sectorData"`
	EfficiencyData []EfficiencyPoint `json:"efficiencyData"`
}

// StatsService aggregates read-only dashboard numbers. No invariants.
type StatsService struct {
	store Store
}

// NewStatsService builds a StatsService over the given store.
func NewStatsService(store Store) *StatsService {
	return &StatsService{store: store}
}

// DashboardKPIs computes fleet headline numbers.
func (s *StatsService) DashboardKPIs(ctx context.Context) (*DashboardKPIs, error) {
	total, err := s.store.Vehicles().Count(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.store.Vehicles().CountByStatus(ctx, VehicleOnTrip)
	if err != nil {
		return nil, err
	}
	inShop, err := s.store.Vehicles().CountByStatus(ctx, VehicleInShop)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.Trips().CountByStatus(ctx, TripDraft)
	if err != nil {
		return nil, err
	}

	var utilization float64
	if total > 0 {
		utilization = math.Round(float64(active)/float64(total)*1000) / 10
	}

	return &DashboardKPIs{
		ActiveFleet:       active,
		MaintenanceAlerts: inShop,
		UtilizationRate:   utilization,
		PendingCargo:      pending,
		TotalVehicles:     total,
	}, nil
}

// Analytics returns the fleet-mix breakdown plus the efficiency series.
func (s *StatsService) Analytics(ctx context.Context) (*AnalyticsData, error) {
	byType, err := s.store.Vehicles().CountsByType(ctx)
	if err != nil {
		return nil, err
	}

	sectors := make([]SectorCount, 0, len(byType))
	for _, t := range []VehicleType{TypeTruck, TypeVan, TypeBike} {
		if n, ok := byType[t]; ok {
			sectors = append(sectors, SectorCount{Name: string(t), Value: n})
		}
	}

	return &AnalyticsData{
		SectorData: sectors,
		EfficiencyData: []EfficiencyPoint{
			{Name: "Mon", Efficiency: 82, Load: 45},
			{Name: "Tue", Efficiency: 88, Load: 52},
			{Name: "Wed", Efficiency: 94, Load: 61},
			{Name: "Thu", Efficiency: 91, Load: 58},
			{Name: "Fri", Efficiency: 96, Load: 72},
			{Name: "Sat", Efficiency: 89, Load: 48},
			{Name: "Sun", Efficiency: 85, Load: 40},
		},
	}, nil
}
