package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusAssigned  BookingStatus = "assigned"
	BookingStatusOnRoute   BookingStatus = "on_route"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

const (
	ServiceTypePointToPoint = "point_to_point"
	ServiceTypeHourly       = "hourly"
	ServiceTypeAirport      = "airport"
	ServiceTypeCustom       = "custom"
)

// AllowedTransitions represents the booking state flow as code. Cancellation
// is reachable from every non-terminal state; completed and cancelled are
// terminal.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusAssigned, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusAssigned, BookingStatusCancelled},
	BookingStatusAssigned:  {BookingStatusOnRoute, BookingStatusCancelled},
	BookingStatusOnRoute:   {BookingStatusCompleted, BookingStatusCancelled},
}

func CanTransition(from, to BookingStatus) bool {
	if from == to {
		return true
	}
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// ValidBookingStatus reports whether s is one of the known statuses.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusAssigned,
		BookingStatusOnRoute, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// ValidServiceType reports whether s is one of the known service types.
func ValidServiceType(s string) bool {
	switch s {
	case ServiceTypePointToPoint, ServiceTypeHourly, ServiceTypeAirport, ServiceTypeCustom:
		return true
	}
	return false
}

// Booking is a persisted trip with the full price breakdown snapshotted onto
// it. The snapshot is what was quoted at create/update time; it is never
// re-derived lazily. final_price tracks total_price until a recompute or a
// cancellation replaces it.
type Booking struct {
	gorm.Model
	CompanyID  uint      `json:"companyId" gorm:"column:company_id;not null"`
	CustomerID *uint     `json:"customerId" gorm:"column:customer_id"`
	Customer   *Customer `json:"customer,omitempty"`
	VehicleID  *uint     `json:"vehicleId" gorm:"column:vehicle_id"`
	Vehicle    *Vehicle  `json:"vehicle,omitempty"`
	DriverID   *uint     `json:"driverId" gorm:"column:driver_id"`
	Driver     *Driver   `json:"driver,omitempty"`

	// Contact snapshot; filled from the customer row or from guest input.
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	ServiceType    string     `json:"serviceType" gorm:"column:service_type;not null"`
	PickupAddress  string     `json:"pickupAddress" gorm:"column:pickup_address;not null"`
	DropoffAddress string     `json:"dropoffAddress" gorm:"column:dropoff_address"`
	PickupTime     time.Time  `json:"pickupTime" gorm:"column:pickup_time;not null"`
	DropoffTime    *time.Time `json:"dropoffTime" gorm:"column:dropoff_time"`
	Passengers     int        `json:"passengers" gorm:"not null"`
	ChildSeats     int        `json:"childSeats" gorm:"column:child_seats"`
	Bags           int        `json:"bags"`
	FlightNumber   string     `json:"flightNumber" gorm:"column:flight_number"`
	Airlines       string     `json:"airlines"`
	DistanceKm     float64    `json:"distanceKm" gorm:"column:distance_km"`
	Hours          float64    `json:"hours"`

	// Price snapshot. Percentage knobs are stored alongside the resulting
	// amounts so a breakdown can be replayed for any historical booking.
	BasePrice        float64 `json:"basePrice" gorm:"column:base_price"`
	ExtrasPrice      float64 `json:"extrasPrice" gorm:"column:extras_price"`
	Parking          float64 `json:"parking"`
	Others           float64 `json:"others"`
	AirportFees      float64 `json:"airportFees" gorm:"column:airport_fees"`
	CongestionCharge float64 `json:"congestionCharge" gorm:"column:congestion_charge"`
	Taxes            float64 `json:"taxes"`
	TaxesAmount      float64 `json:"taxesAmount" gorm:"column:taxes_amount"`
	Gratuity         float64 `json:"gratuity"`
	GratuityAmount   float64 `json:"gratuityAmount" gorm:"column:gratuity_amount"`
	SurgeRate        float64 `json:"surgeRate" gorm:"column:surge_rate"`
	SurgeRateAmount  float64 `json:"surgeRateAmount" gorm:"column:surge_rate_amount"`
	RateBuffer       float64 `json:"rateBuffer" gorm:"column:rate_buffer"`
	RateBufferAmount float64 `json:"rateBufferAmount" gorm:"column:rate_buffer_amount"`
	CancellationFee  float64 `json:"cancellationFee" gorm:"column:cancellation_fee"`
	TotalPrice       float64 `json:"totalPrice" gorm:"column:total_price"`
	FinalPrice       float64 `json:"finalPrice" gorm:"column:final_price"`

	PaymentMethod string        `json:"paymentMethod" gorm:"column:payment_method"`
	PaymentStatus string        `json:"paymentStatus" gorm:"column:payment_status"`
	Status        BookingStatus `json:"status" gorm:"not null;default:'pending'"`
	Notes         string        `json:"notes"`

	// Opaque secret for guest bookings. Never serialized; returned exactly
	// once from the create response.
	BookingAccessToken string `json:"-" gorm:"column:booking_access_token"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// IsGuest reports whether the booking was created without an authenticated
// identity.
func (b *Booking) IsGuest() bool {
	return b.CustomerID == nil && b.BookingAccessToken != ""
}
