package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch_crm_go/models"

	"gorm.io/gorm"
)

// DriverInput holds the fields of a new driver
type DriverInput struct {
	Name          string `json:"name" validate:"required,max=255"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"max=32"`
	LicenseNumber string `json:"licenseNumber" validate:"max=64"`
	Status        string `json:"status" validate:"max=32"`
}

// AssetInput holds the fields of a new truck or trailer
type AssetInput struct {
	UnitNumber      string `json:"unitNumber" validate:"required,max=64"`
	Type            string `json:"type" validate:"required,oneof=Truck Trailer"`
	MakeModel       string `json:"makeModel" validate:"max=128"`
	VIN             string `json:"vin" validate:"max=32"`
	PlateNumber     string `json:"plateNumber" validate:"max=32"`
	Status          string `json:"status" validate:"omitempty,assetstatus"`
	CurrentLocation string `json:"currentLocation" validate:"max=255"`
}

// LoadInput holds the fields of a new load
type LoadInput struct {
	CustomerName  string     `json:"customerName" validate:"required,max=255"`
	PickupDate    *time.Time `json:"pickupDate"`
	DeliveryDate  *time.Time `json:"deliveryDate"`
	Rate          float64    `json:"rate" validate:"gte=0"`
	DistanceMiles float64    `json:"distanceMiles" validate:"gte=0"`
	WeightLbs     float64    `json:"weightLbs" validate:"gte=0"`
	Commodity     string     `json:"commodity" validate:"max=255"`
	Status        string     `json:"status" validate:"omitempty,loadstatus"`
	Notes         string     `json:"notes" validate:"max=4000"`
}

// TripInput holds the fields of a new trip
type TripInput struct {
	DriverID   *string    `json:"driverId"`
	TruckID    *string    `json:"truckId"`
	TrailerID  *string    `json:"trailerId"`
	Status     string     `json:"status" validate:"omitempty,oneof=Planned Active Completed"`
	StartTime  *time.Time `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	TotalMiles float64    `json:"totalMiles" validate:"gte=0"`
}

// StopInput holds the fields of a new stop
type StopInput struct {
	LoadID        *string    `json:"loadId"`
	StopSequence  int        `json:"stopSequence" validate:"gte=0"`
	Type          string     `json:"type" validate:"required,oneof=Pickup Delivery Fuel Rest"`
	LocationName  string     `json:"locationName" validate:"max=255"`
	Address       string     `json:"address" validate:"max=512"`
	ScheduledTime *time.Time `json:"scheduledTime"`
}

// ListDrivers returns drivers by name
func ListDrivers(db *gorm.DB) ([]models.Driver, error) {
	var drivers []models.Driver
	if err := db.Order("name ASC").Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

// CreateDriver adds a driver
func CreateDriver(db *gorm.DB, input DriverInput) (*models.Driver, error) {
	driver := models.Driver{
		Name:          strings.TrimSpace(input.Name),
		Email:         strings.TrimSpace(input.Email),
		Phone:         strings.TrimSpace(input.Phone),
		LicenseNumber: strings.TrimSpace(input.LicenseNumber),
		Status:        input.Status,
	}
	if driver.Status == "" {
		driver.Status = "Active"
	}
	if err := db.Create(&driver).Error; err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return &driver, nil
}

// ListAssets returns trucks and trailers by unit number
func ListAssets(db *gorm.DB) ([]models.Asset, error) {
	var assets []models.Asset
	if err := db.Order("unit_number ASC").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// CreateAsset adds a truck or trailer
func CreateAsset(db *gorm.DB, input AssetInput) (*models.Asset, error) {
	if input.Status != "" && !models.IsValidAssetStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	asset := models.Asset{
		UnitNumber:      strings.TrimSpace(input.UnitNumber),
		Type:            input.Type,
		MakeModel:       input.MakeModel,
		VIN:             strings.ToUpper(strings.TrimSpace(input.VIN)),
		PlateNumber:     input.PlateNumber,
		Status:          input.Status,
		CurrentLocation: input.CurrentLocation,
	}
	if err := db.Create(&asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}
	return &asset, nil
}

// UpdateAssetStatus sets Active, Maintenance or Inactive
func UpdateAssetStatus(db *gorm.DB, id, status string) error {
	if !models.IsValidAssetStatus(status) {
		return ErrInvalidStatus
	}
	result := db.Model(&models.Asset{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update asset status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// ListLoads returns loads, newest first
func ListLoads(db *gorm.DB) ([]models.Load, error) {
	var loads []models.Load
	if err := db.Order("created_at DESC").Find(&loads).Error; err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}
	return loads, nil
}

// GetLoad fetches one load
func GetLoad(db *gorm.DB, id string) (*models.Load, error) {
	var load models.Load
	if err := db.First(&load, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoadNotFound
		}
		return nil, fmt.Errorf("failed to get load: %w", err)
	}
	return &load, nil
}

// CreateLoad books a load
func CreateLoad(db *gorm.DB, input LoadInput) (*models.Load, error) {
	if input.Status != "" && !models.IsValidLoadStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	load := models.Load{
		CustomerName:  strings.TrimSpace(input.CustomerName),
		PickupDate:    input.PickupDate,
		DeliveryDate:  input.DeliveryDate,
		Rate:          input.Rate,
		DistanceMiles: input.DistanceMiles,
		WeightLbs:     input.WeightLbs,
		Commodity:     input.Commodity,
		Status:        input.Status,
		Notes:         SanitizeText(input.Notes),
	}
	if err := db.Create(&load).Error; err != nil {
		return nil, fmt.Errorf("failed to create load: %w", err)
	}
	return &load, nil
}

// UpdateLoadStatus moves a load through Pending, Dispatched, In-Transit, Delivered, Invoiced
func UpdateLoadStatus(db *gorm.DB, id, status string) error {
	if !models.IsValidLoadStatus(status) {
		return ErrInvalidStatus
	}
	result := db.Model(&models.Load{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update load status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLoadNotFound
	}
	return nil
}

func preloadTrip(db *gorm.DB) *gorm.DB {
	return db.Preload("Driver").Preload("Truck").Preload("Trailer")
}

// ListTrips returns trips with their driver and equipment, latest start first
func ListTrips(db *gorm.DB) ([]models.Trip, error) {
	var trips []models.Trip
	if err := preloadTrip(db).Order("start_time DESC").Order("created_at DESC").Find(&trips).Error; err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// GetTrip fetches a trip with driver, equipment and stops
func GetTrip(db *gorm.DB, id string) (*models.Trip, error) {
	var trip models.Trip
	err := preloadTrip(db).
		Preload("Stops", func(db *gorm.DB) *gorm.DB { return db.Order("stop_sequence ASC") }).
		First(&trip, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

// exists checks a referenced row; a nil or empty id is not a reference
func exists(db *gorm.DB, model interface{}, id *string) (bool, error) {
	if id == nil || strings.TrimSpace(*id) == "" {
		return true, nil
	}
	var count int64
	if err := db.Model(model).Where("id = ?", strings.TrimSpace(*id)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateTrip assigns a driver and equipment. Every referenced driver or asset must exist.
func CreateTrip(db *gorm.DB, input TripInput) (*models.Trip, error) {
	checks := []struct {
		model interface{}
		id    *string
		name  string
	}{
		{&models.Driver{}, input.DriverID, "driver"},
		{&models.Asset{}, input.TruckID, "truck"},
		{&models.Asset{}, input.TrailerID, "trailer"},
	}
	for _, c := range checks {
		ok, err := exists(db, c.model, c.id)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", c.name, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrReferenceNotFound, c.name, *c.id)
		}
	}

	trip := models.Trip{
		DriverID:   nonEmpty(input.DriverID),
		TruckID:    nonEmpty(input.TruckID),
		TrailerID:  nonEmpty(input.TrailerID),
		Status:     input.Status,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		TotalMiles: input.TotalMiles,
	}
	if err := db.Create(&trip).Error; err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return GetTrip(db, trip.ID)
}

// ListStops returns a trip's stops in sequence
func ListStops(db *gorm.DB, tripID string) ([]models.Stop, error) {
	var stops []models.Stop
	if err := db.Where("trip_id = ?", tripID).Order("stop_sequence ASC").Find(&stops).Error; err != nil {
		return nil, fmt.Errorf("failed to list stops: %w", err)
	}
	return stops, nil
}

// CreateStop appends a stop to a trip. A zero sequence places it after the last stop.
func CreateStop(db *gorm.DB, tripID string, input StopInput) (*models.Stop, error) {
	ok, err := exists(db, &models.Trip{}, &tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to check trip: %w", err)
	}
	if !ok {
		return nil, ErrTripNotFound
	}
	ok, err = exists(db, &models.Load{}, input.LoadID)
	if err != nil {
		return nil, fmt.Errorf("failed to check load: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: load %s", ErrReferenceNotFound, *input.LoadID)
	}

	stop := models.Stop{
		TripID:        tripID,
		LoadID:        nonEmpty(input.LoadID),
		StopSequence:  input.StopSequence,
		Type:          input.Type,
		LocationName:  strings.TrimSpace(input.LocationName),
		Address:       strings.TrimSpace(input.Address),
		ScheduledTime: input.ScheduledTime,
	}
	if stop.StopSequence == 0 {
		var maxSeq int
		if err := db.Model(&models.Stop{}).Where("trip_id = ?", tripID).
			Select("COALESCE(MAX(stop_sequence), 0)").Scan(&maxSeq).Error; err != nil {
			return nil, fmt.Errorf("failed to number stop: %w", err)
		}
		stop.StopSequence = maxSeq + 1
	}

	if err := db.Create(&stop).Error; err != nil {
		return nil, fmt.Errorf("failed to create stop: %w", err)
	}
	return &stop, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
