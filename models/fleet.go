package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Asset types and statuses
const (
	AssetTypeTruck   = "Truck"
	AssetTypeTrailer = "Trailer"

	AssetStatusActive      = "Active"
	AssetStatusMaintenance = "Maintenance"
	AssetStatusInactive    = "Inactive"
)

// Load statuses
const (
	LoadStatusPending    = "Pending"
	LoadStatusDispatched = "Dispatched"
	LoadStatusInTransit  = "In-Transit"
	LoadStatusDelivered  = "Delivered"
	LoadStatusInvoiced   = "Invoiced"
)

// Trip statuses
const (
	TripStatusPlanned   = "Planned"
	TripStatusActive    = "Active"
	TripStatusCompleted = "Completed"
)

// Stop types
const (
	StopTypePickup   = "Pickup"
	StopTypeDelivery = "Delivery"
	StopTypeFuel     = "Fuel"
	StopTypeRest     = "Rest"
)

// IsValidAssetStatus checks if the status is valid
func IsValidAssetStatus(status string) bool {
	return status == AssetStatusActive || status == AssetStatusMaintenance || status == AssetStatusInactive
}

// IsValidLoadStatus checks if the status is valid
func IsValidLoadStatus(status string) bool {
	switch status {
	case LoadStatusPending, LoadStatusDispatched, LoadStatusInTransit, LoadStatusDelivered, LoadStatusInvoiced:
		return true
	}
	return false
}

// Driver is a person who can be assigned to trips
type Driver struct {
	ID            string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Name          string    `gorm:"not null;index" json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	LicenseNumber string    `json:"licenseNumber,omitempty"`
	Status        string    `gorm:"not null;default:Active" json:"status"`
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

func (Driver) TableName() string { return "drivers" }

// Asset is a truck or trailer
type Asset struct {
	ID              string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	UnitNumber      string    `gorm:"not null;index" json:"unitNumber"`
	Type            string    `gorm:"not null" json:"type"`
	MakeModel       string    `json:"makeModel,omitempty"`
	VIN             string    `gorm:"column:vin" json:"vin,omitempty"`
	PlateNumber     string    `json:"plateNumber,omitempty"`
	Status          string    `gorm:"not null;default:Active" json:"status"`
	CurrentLocation string    `json:"currentLocation,omitempty"`
}

func (a *Asset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = AssetStatusActive
	}
	return nil
}

func (Asset) TableName() string { return "assets" }

// Load is a shipment booked for a customer
type Load struct {
	ID            string     `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt     time.Time  `gorm:"index" json:"createdAt"`
	CustomerName  string     `gorm:"not null" json:"customerName"`
	PickupDate    *time.Time `json:"pickupDate,omitempty"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`
	Rate          float64    `json:"rate"`
	DistanceMiles float64    `json:"distanceMiles"`
	WeightLbs     float64    `json:"weightLbs"`
	Commodity     string     `json:"commodity,omitempty"`
	Status        string     `gorm:"not null;default:Pending;index" json:"status"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
}

func (l *Load) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = LoadStatusPending
	}
	return nil
}

func (Load) TableName() string { return "loads" }

// Trip assigns a driver and equipment to a run of stops
type Trip struct {
	ID         string     `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt  time.Time  `json:"createdAt"`
	DriverID   *string    `gorm:"type:uuid;index" json:"driverId,omitempty"`
	TruckID    *string    `gorm:"type:uuid" json:"truckId,omitempty"`
	TrailerID  *string    `gorm:"type:uuid" json:"trailerId,omitempty"`
	Status     string     `gorm:"not null;default:Planned" json:"status"`
	StartTime  *time.Time `gorm:"index" json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	TotalMiles float64    `json:"totalMiles"`

	Driver  *Driver `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Truck   *Asset  `gorm:"foreignKey:TruckID" json:"truck,omitempty"`
	Trailer *Asset  `gorm:"foreignKey:TrailerID" json:"trailer,omitempty"`
	Stops   []Stop  `gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE" json:"stops,omitempty"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = TripStatusPlanned
	}
	return nil
}

func (Trip) TableName() string { return "trips" }

// Stop is one pickup, delivery, fuel or rest point of a trip
type Stop struct {
	ID            string     `gorm:"type:uuid;primarykey" json:"id"`
	TripID        string     `gorm:"type:uuid;not null;index" json:"tripId"`
	LoadID        *string    `gorm:"type:uuid" json:"loadId,omitempty"`
	StopSequence  int        `gorm:"not null" json:"stopSequence"`
	Type          string     `gorm:"not null" json:"type"`
	LocationName  string     `json:"locationName"`
	Address       string     `json:"address"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
}

func (s *Stop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (Stop) TableName() string { return "stops" }
