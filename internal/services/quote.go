package services

import (
	"context"
	"sort"
	"time"

	"github.com/ridewellhq/chauffeur-backend/internal/domain"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/pkg/utils"
	"gorm.io/gorm"
)

// QuoteRequest captures the trip parameters a client submits to price a trip
// before committing to a booking.
type QuoteRequest struct {
	ServiceType      string     `json:"service_type" binding:"required"`
	PickupTime       time.Time  `json:"pickup_time" binding:"required"`
	DropoffTime      *time.Time `json:"dropoff_time"`
	PickupAddress    string     `json:"pickup_address" binding:"required"`
	DropoffAddress   string     `json:"dropoff_address"`
	Passengers       int        `json:"passengers" binding:"required,min=1"`
	DistanceKm       float64    `json:"distance_km"`
	Hours            float64    `json:"hours"`
	ExtrasPrice      float64    `json:"extras_price"`
	Parking          float64    `json:"parking"`
	Others           float64    `json:"others"`
	AirportFees      float64    `json:"airport_fees"`
	CongestionCharge float64    `json:"congestion_charge"`
	ChildSeats       int        `json:"child_seats"`
	Bags             int        `json:"bags"`
	FlightNumber     string     `json:"flight_number"`
	Airlines         string     `json:"airlines"`
	Notes            string     `json:"notes"`
}

// VehicleOption is one priced vehicle in a quote, ranked by total price.
type VehicleOption struct {
	Vehicle     models.Vehicle         `json:"vehicle"`
	Price       utils.PriceCalculation `json:"price"`
	Recommended bool                   `json:"recommended"`
}

// QuoteEngine prices a trip across every vehicle a company can actually
// dispatch for the requested window.
type QuoteEngine struct {
	db           *gorm.DB
	availability *AvailabilityChecker
}

func NewQuoteEngine(db *gorm.DB) *QuoteEngine {
	return &QuoteEngine{db: db, availability: NewAvailabilityChecker(db)}
}

// Validate rejects quote requests that cannot be priced.
func (r *QuoteRequest) Validate() error {
	if !models.ValidServiceType(r.ServiceType) {
		return &domain.ValidationError{Field: "service_type", Msg: "unknown service type"}
	}
	if r.Passengers < 1 {
		return &domain.ValidationError{Field: "passengers", Msg: "at least one passenger required"}
	}
	if r.DropoffTime != nil && !r.DropoffTime.After(r.PickupTime) {
		return &domain.ValidationError{Field: "dropoff_time", Msg: "dropoff must be after pickup"}
	}
	if r.DistanceKm < 0 || r.Hours < 0 {
		return &domain.ValidationError{Field: "trip", Msg: "trip measurements cannot be negative"}
	}
	if r.ExtrasPrice < 0 || r.Parking < 0 || r.Others < 0 || r.AirportFees < 0 || r.CongestionCharge < 0 {
		return &domain.ValidationError{Field: "extras", Msg: "charges cannot be negative"}
	}
	return nil
}

// priceInput maps a quote request plus the company config onto the pricing
// engine's input. Status is left empty: quotes never carry a cancellation fee.
func (r *QuoteRequest) priceInput(config *models.SystemConfig) utils.PriceInput {
	return utils.PriceInput{
		ServiceType:        r.ServiceType,
		DistanceKm:         r.DistanceKm,
		Hours:              r.Hours,
		ExtrasPrice:        r.ExtrasPrice,
		Parking:            r.Parking,
		Others:             r.Others,
		AirportFees:        r.AirportFees,
		CongestionCharge:   r.CongestionCharge,
		BasePrice:          config.BasePriceFlat,
		TaxRate:            config.TaxRate,
		GratuityPercentage: config.GratuityPercentage,
		SurgeRate:          config.SurgeRate,
		RateBuffer:         config.RateBuffer,
		CancellationFee:    config.CancellationFee,
	}
}

func ratesOf(v *models.Vehicle) utils.VehicleRates {
	return utils.VehicleRates{
		HourlyRate:  v.HourlyRate,
		PerKmRate:   v.PerKmRate,
		AirportRate: v.AirportRate,
	}
}

// Quote prices the request against every available vehicle with enough seats
// and returns the options cheapest-first. Vehicles already committed during
// the trip window are excluded before pricing.
func (q *QuoteEngine) Quote(ctx context.Context, companyID uint, req *QuoteRequest) ([]VehicleOption, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	config, err := GetSystemConfig(ctx, q.db, companyID)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "system config", Err: err}
	}

	window := WindowFor(req.PickupTime, req.DropoffTime)
	busy, err := q.availability.BusyVehicleIDs(companyID, window, 0)
	if err != nil {
		return nil, err
	}

	vehicles := q.db.Where("company_id = ? AND status = ? AND capacity >= ?",
		companyID, string(models.VehicleStatusActive), req.Passengers)
	if len(busy) > 0 {
		vehicles = vehicles.Where("id NOT IN ?", busy)
	}

	var fleet []models.Vehicle
	if err := vehicles.Find(&fleet).Error; err != nil {
		return nil, err
	}

	in := req.priceInput(config)
	options := make([]VehicleOption, 0, len(fleet))
	for i := range fleet {
		options = append(options, VehicleOption{
			Vehicle: fleet[i],
			Price:   utils.CalculatePrice(ratesOf(&fleet[i]), in),
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Price.TotalPrice < options[j].Price.TotalPrice
	})
	markRecommended(options, req.Passengers)

	return options, nil
}

// markRecommended flags every vehicle with a little headroom over the party
// size. Two to four spare seats fits luggage without steering the customer
// into an oversized vehicle.
func markRecommended(options []VehicleOption, passengers int) {
	for i := range options {
		spare := options[i].Vehicle.Capacity - passengers
		options[i].Recommended = spare >= 2 && spare <= 4
	}
}
