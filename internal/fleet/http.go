package fleet

import (
	"net/http"
	"time"

	"github.com/fleetnova/fleetnova/internal/common/config"
	"github.com/fleetnova/fleetnova/internal/common/logger"
	"github.com/fleetnova/fleetnova/internal/common/server"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// Handlers is the HTTP facade over the fleet services. Role gates follow
// the route table: registry writes need Admin/Manager, dispatching needs
// a Dispatcher seat, reads are open to any authenticated caller.
type Handlers struct {
	registry    *RegistryService
	trips       *TripService
	maintenance *MaintenanceService
	stats       *StatsService
	authCfg     config.AuthConfig
	log         logger.Logger
}

// NewHandlers wires the fleet services into one handler set.
func NewHandlers(registry *RegistryService, trips *TripService,
	maintenance *MaintenanceService, stats *StatsService,
	authCfg config.AuthConfig, log logger.Logger) *Handlers {
	return &Handlers{
		registry:    registry,
		trips:       trips,
		maintenance: maintenance,
		stats:       stats,
		authCfg:     authCfg,
		log:         log,
	}
}

// Register mounts all fleet routes on the engine.
func (h *Handlers) Register(r *gin.Engine) {
	manage := server.RequireRoles(h.authCfg, "Admin", "Manager")
	admin := server.RequireRoles(h.authCfg, "Admin")
	dispatch := server.RequireRoles(h.authCfg, "Admin", "Manager", "Dispatcher")

	v := r.Group("/vehicles")
	v.GET("", h.listVehicles)
	v.GET("/:id", h.getVehicle)
	v.POST("", manage, h.createVehicle)
	v.PATCH("/:id", manage, h.updateVehicle)
	v.DELETE("/:id", admin, h.deleteVehicle)

	d := r.Group("/drivers")
	d.GET("", h.listDrivers)
	d.GET("/:id", h.getDriver)
	d.POST("", server.RequireRoles(h.authCfg, "Admin", "Manager", "Analyst"), h.createDriver)
	d.PATCH("/:id", manage, h.updateDriver)
	d.DELETE("/:id", admin, h.deleteDriver)

	t := r.Group("/trips")
	t.GET("", h.listTrips)
	t.POST("", dispatch, h.dispatchTrip)
	t.PATCH("/:id/complete", h.completeTrip)
	t.DELETE("/:id", dispatch, h.deleteTrip)

	m := r.Group("/maintenance")
	m.GET("", h.listMaintenance)
	m.POST("", manage, h.openMaintenance)
	m.PATCH("/:id/complete", manage, h.completeMaintenance)
	m.DELETE("/:id", manage, h.deleteMaintenance)

	f := r.Group("/fuel")
	f.GET("", h.listFuel)
	f.POST("", h.createFuel)
	f.DELETE("/:id", manage, h.deleteFuel)

	s := r.Group("/stats")
	s.GET("/dashboard-kpis", h.dashboardKPIs)
	s.GET("/analytics-data", h.analyticsData)
}

// writeErr translates a service error into a JSON error response.
func (h *Handlers) writeErr(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		if h.log != nil {
			h.log.WithFields(map[string]interface{}{
				"path": c.Request.URL.Path,
				"err":  err.Error(),
			}).Error("request failed")
		}
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

// --- vehicles ---

type createVehicleReq struct {
	Name            string  `json:"name"`
	Plate           string  `json:"plate" binding:"required"`
	VehicleType     string  `json:"vehicle_type" binding:"required"`
	Capacity        float64 `json:"capacity" binding:"required,gt=0"`
	Odometer        float64 `json:"odometer"`
	Status          string  `json:"status"`
	AcquisitionCost float64 `json:"acquisition_cost"`
}

func (h *Handlers) createVehicle(c *gin.Context) {
	var req createVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	v, err := h.registry.CreateVehicle(c.Request.Context(), VehicleInput{
		Name:            req.Name,
		Plate:           req.Plate,
		VehicleType:     VehicleType(req.VehicleType),
		Capacity:        req.Capacity,
		Odometer:        req.Odometer,
		Status:          VehicleStatus(req.Status),
		AcquisitionCost: req.AcquisitionCost,
	})
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handlers) listVehicles(c *gin.Context) {
	vs, err := h.registry.ListVehicles(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, vs)
}

func (h *Handlers) getVehicle(c *gin.Context) {
	v, err := h.registry.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type updateVehicleReq struct {
	Name            *string  `json:"name"`
	Status          *string  `json:"status"`
	Odometer        *float64 `json:"odometer"`
	Capacity        *float64 `json:"capacity"`
	AcquisitionCost *float64 `json:"acquisition_cost"`
}

func (h *Handlers) updateVehicle(c *gin.Context) {
	var req updateVehicleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	upd := VehicleUpdate{
		Name:            req.Name,
		Odometer:        req.Odometer,
		Capacity:        req.Capacity,
		AcquisitionCost: req.AcquisitionCost,
	}
	if req.Status != nil {
		st := VehicleStatus(*req.Status)
		upd.Status = &st
	}
	v, err := h.registry.UpdateVehicle(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handlers) deleteVehicle(c *gin.Context) {
	if err := h.registry.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		h.writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- drivers ---

type createDriverReq struct {
	Name            string  `json:"name"`
	LicenseNumber   string  `json:"license_number" binding:"required"`
	LicenseCategory string  `json:"license_category"`
	LicenseExpiry   string  `json:"license_expiry" binding:"required"`
	SafetyScore     float64 `json:"safety_score"`
	Status          string  `json:"status"`
}

func (h *Handlers) createDriver(c *gin.Context) {
	var req createDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	expiry, ok := parseDate(req.LicenseExpiry)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "license_expiry must be YYYY-MM-DD"})
		return
	}
	d, err := h.registry.CreateDriver(c.Request.Context(), DriverInput{
		Name:            req.Name,
		LicenseNumber:   req.LicenseNumber,
		LicenseCategory: VehicleType(req.LicenseCategory),
		LicenseExpiry:   expiry,
		SafetyScore:     req.SafetyScore,
		Status:          DriverStatus(req.Status),
	})
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *Handlers) listDrivers(c *gin.Context) {
	ds, err := h.registry.ListDrivers(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (h *Handlers) getDriver(c *gin.Context) {
	d, err := h.registry.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

type updateDriverReq struct {
	Name          *string  `json:"name"`
	Status        *string  `json:"status"`
	LicenseExpiry *string  `json:"license_expiry"`
	SafetyScore   *float64 `json:"safety_score"`
}

func (h *Handlers) updateDriver(c *gin.Context) {
	var req updateDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	upd := DriverUpdate{
		Name:        req.Name,
		SafetyScore: req.SafetyScore,
	}
	if req.Status != nil {
		st := DriverStatus(*req.Status)
		upd.Status = &st
	}
	if req.LicenseExpiry != nil {
		expiry, ok := parseDate(*req.LicenseExpiry)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "license_expiry must be YYYY-MM-DD"})
			return
		}
		upd.LicenseExpiry = &expiry
	}
	d, err := h.registry.UpdateDriver(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handlers) deleteDriver(c *gin.Context) {
	if err := h.registry.DeleteDriver(c.Request.Context(), c.Param("id")); err != nil {
		h.writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- trips ---

type dispatchTripReq struct {
	VehicleID   string  `json:"vehicle_id" binding:"required"`
	DriverID    string  `json:"driver_id" binding:"required"`
	CargoWeight float64 `json:"cargo_weight" binding:"required,gt=0"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
}

func (h *Handlers) dispatchTrip(c *gin.Context) {
	var req dispatchTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.trips.Dispatch(c.Request.Context(), DispatchInput{
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		CargoWeight: req.CargoWeight,
		Origin:      req.Origin,
		Destination: req.Destination,
	})
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handlers) listTrips(c *gin.Context) {
	ts, err := h.trips.List(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

type completeTripReq struct {
	FinalOdometer float64 `json:"final_odometer" binding:"required,gt=0"`
}

func (h *Handlers) completeTrip(c *gin.Context) {
	var req completeTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.trips.Complete(c.Request.Context(), c.Param("id"), req.FinalOdometer)
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handlers) deleteTrip(c *gin.Context) {
	if err := h.trips.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- maintenance ---

type openMaintenanceReq struct {
	VehicleID   string  `json:"vehicle_id" binding:"required"`
	ServiceType string  `json:"service_type" binding:"required"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	ServiceDate string  `json:"service_date"`
	NextDueDate string  `json:"next_due_date"`
}

func (h *Handlers) openMaintenance(c *gin.Context) {
	var req openMaintenanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	serviceDate, ok := parseDate(req.ServiceDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_date must be YYYY-MM-DD"})
		return
	}
	nextDue, ok := parseDate(req.NextDueDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "next_due_date must be YYYY-MM-DD"})
		return
	}
	log, err := h.maintenance.Open(c.Request.Context(), OpenInput{
		VehicleID:   req.VehicleID,
		ServiceType: req.ServiceType,
		Description: req.Description,
		Cost:        req.Cost,
		ServiceDate: serviceDate,
		NextDueDate: nextDue,
	})
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *Handlers) listMaintenance(c *gin.Context) {
	logs, err := h.maintenance.List(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handlers) completeMaintenance(c *gin.Context) {
	log, err := h.maintenance.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *Handlers) deleteMaintenance(c *gin.Context) {
	if err := h.maintenance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- fuel ---

type createFuelReq struct {
	VehicleID       string  `json:"vehicle_id" binding:"required"`
	Liters          float64 `json:"liters" binding:"required,gt=0"`
	Cost            float64 `json:"cost"`
	Date            string  `json:"date"`
	OdometerReading float64 `json:"odometer_reading"`
}

func (h *Handlers) createFuel(c *gin.Context) {
	var req createFuelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	log, err := h.registry.CreateFuelLog(c.Request.Context(), FuelInput{
		VehicleID:       req.VehicleID,
		Liters:          req.Liters,
		Cost:            req.Cost,
		Date:            date,
		OdometerReading: req.OdometerReading,
	})
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *Handlers) listFuel(c *gin.Context) {
	logs, err := h.registry.ListFuelLogs(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handlers) deleteFuel(c *gin.Context) {
	if err := h.registry.DeleteFuelLog(c.Request.Context(), c.Param("id")); err != nil {
		h.writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- stats ---

func (h *Handlers) dashboardKPIs(c *gin.Context) {
	kpis, err := h.stats.DashboardKPIs(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (h *Handlers) analyticsData(c *gin.Context) {
	data, err := h.stats.Analytics(c.Request.Context())
	if err != nil {
		h.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
