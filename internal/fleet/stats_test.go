package fleet

import (
	"context"
	"testing"
)

func TestDashboardKPIs(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	svc := NewStatsService(store)

	seedVehicle(t, store, VehicleOnTrip, 1000)
	seedVehicle(t, store, VehicleOnTrip, 1000)
	seedVehicle(t, store, VehicleInShop, 1000)
	seedVehicle(t, store, VehicleAvailable, 1000)
	seedVehicle(t, store, VehicleAvailable, 1000)
	seedVehicle(t, store, VehicleRetired, 1000)

	if err := store.Trips().Create(ctx, &Trip{Status: TripDraft}); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	if err := store.Trips().Create(ctx, &Trip{Status: TripDispatched}); err != nil {
		t.Fatalf("seed trip: %v", err)
	}

	kpis, err := svc.DashboardKPIs(ctx)
	if err != nil {
		t.Fatalf("DashboardKPIs: %v", err)
	}
	if kpis.TotalVehicles != 6 {
		t.Errorf("total = %d, want 6", kpis.TotalVehicles)
	}
	if kpis.ActiveFleet != 2 {
		t.Errorf("active = %d, want 2", kpis.ActiveFleet)
	}
	if kpis.MaintenanceAlerts != 1 {
		t.Errorf("alerts = %d, want 1", kpis.MaintenanceAlerts)
	}
	if kpis.PendingCargo != 1 {
		t.Errorf("pending = %d, want 1", kpis.PendingCargo)
	}
	// 2/6 = 33.333..% rounded to one decimal
	if kpis.UtilizationRate != 33.3 {
		t.Errorf("utilization = %g, want 33.3", kpis.UtilizationRate)
	}
}

func TestDashboardKPIsEmptyFleet(t *testing.T) {
	svc := NewStatsService(NewMemStore())

	kpis, err := svc.DashboardKPIs(context.Background())
	if err != nil {
		t.Fatalf("DashboardKPIs: %v", err)
	}
	if kpis.UtilizationRate != 0 {
		t.Errorf("utilization = %g, want 0 for empty fleet", kpis.UtilizationRate)
	}
	if kpis.TotalVehicles != 0 || kpis.ActiveFleet != 0 {
		t.Errorf("unexpected KPIs: %+v", kpis)
	}
}

func TestAnalyticsSectorData(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	svc := NewStatsService(store)

	for i := 0; i < 3; i++ {
		v := seedVehicle(t, store, VehicleAvailable, 1000)
		v.VehicleType = TypeTruck
		if err := store.Vehicles().Save(ctx, v); err != nil {
			t.Fatalf("save vehicle: %v", err)
		}
	}
	v := seedVehicle(t, store, VehicleAvailable, 40)
	v.VehicleType = TypeBike
	if err := store.Vehicles().Save(ctx, v); err != nil {
		t.Fatalf("save vehicle: %v", err)
	}

	data, err := svc.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	// Van is absent, Truck comes before Bike (fixed order)
	if len(data.SectorData) != 2 {
		t.Fatalf("sectors = %d, want 2", len(data.SectorData))
	}
	if data.SectorData[0].Name != "Truck" || data.SectorData[0].Value != 3 {
		t.Errorf("sector[0] = %+v, want Truck/3", data.SectorData[0])
	}
	if data.SectorData[1].Name != "Bike" || data.SectorData[1].Value != 1 {
		t.Errorf("sector[1] = %+v, want Bike/1", data.SectorData[1])
	}
	if len(data.EfficiencyData) != 7 {
		t.Errorf("efficiency points = %d, want 7", len(data.EfficiencyData))
	}
}
