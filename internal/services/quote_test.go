package services

import (
	"testing"
	"time"

	"github.com/ridewellhq/chauffeur-backend/internal/domain"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/pkg/utils"
)

func option(capacity int, total float64) VehicleOption {
	return VehicleOption{
		Vehicle: models.Vehicle{Capacity: capacity},
		Price:   utils.PriceCalculation{TotalPrice: total},
	}
}

func TestMarkRecommendedFlagsHeadroomBand(t *testing.T) {
	// Cheapest first, as Quote sorts them. Every vehicle with two to four
	// spare seats is flagged, not just the first.
	options := []VehicleOption{
		option(2, 100), // no spare seats
		option(4, 110), // 2 spare, in band
		option(6, 120), // 4 spare, in band
		option(9, 200), // 7 spare, over band
	}
	markRecommended(options, 2)

	want := []bool{false, true, true, false}
	for i := range options {
		if options[i].Recommended != want[i] {
			t.Errorf("option %d (capacity %d): recommended = %v, want %v",
				i, options[i].Vehicle.Capacity, options[i].Recommended, want[i])
		}
	}
}

func TestMarkRecommendedNoneInBand(t *testing.T) {
	options := []VehicleOption{
		option(2, 100),
		option(12, 300), // 10 spare, over band
	}
	markRecommended(options, 2)

	if options[0].Recommended || options[1].Recommended {
		t.Error("out-of-band vehicle recommended")
	}
}

func TestMarkRecommendedEmpty(t *testing.T) {
	markRecommended(nil, 2) // must not panic
}

func TestQuoteRequestValidate(t *testing.T) {
	pickup := time.Now().Add(24 * time.Hour)
	before := pickup.Add(-time.Hour)

	valid := QuoteRequest{
		ServiceType:   models.ServiceTypeHourly,
		PickupTime:    pickup,
		PickupAddress: "1 Main St",
		Passengers:    2,
		Hours:         3,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*QuoteRequest)
	}{
		{"unknown service type", func(r *QuoteRequest) { r.ServiceType = "shuttle" }},
		{"zero passengers", func(r *QuoteRequest) { r.Passengers = 0 }},
		{"dropoff before pickup", func(r *QuoteRequest) { r.DropoffTime = &before }},
		{"dropoff equals pickup", func(r *QuoteRequest) { r.DropoffTime = &r.PickupTime }},
		{"negative distance", func(r *QuoteRequest) { r.DistanceKm = -1 }},
		{"negative hours", func(r *QuoteRequest) { r.Hours = -0.5 }},
		{"negative parking", func(r *QuoteRequest) { r.Parking = -3 }},
	}

	for _, tt := range tests {
		req := valid
		tt.mutate(&req)
		err := req.Validate()
		if err == nil {
			t.Errorf("%s: accepted", tt.name)
			continue
		}
		if !domain.IsValidation(err) {
			t.Errorf("%s: error %v is not a validation error", tt.name, err)
		}
	}
}

func TestPriceInputCarriesConfig(t *testing.T) {
	req := QuoteRequest{
		ServiceType: models.ServiceTypeAirport,
		DistanceKm:  30,
		ExtrasPrice: 15,
		AirportFees: 8,
	}
	config := &models.SystemConfig{
		TaxRate:            10,
		BasePriceFlat:      5,
		CancellationFee:    25,
		SurgeRate:          20,
		RateBuffer:         5,
		GratuityPercentage: 15,
	}

	in := req.priceInput(config)

	if in.BasePrice != 5 || in.TaxRate != 10 || in.SurgeRate != 20 ||
		in.RateBuffer != 5 || in.GratuityPercentage != 15 || in.CancellationFee != 25 {
		t.Errorf("config not carried: %+v", in)
	}
	if in.Status != "" {
		t.Errorf("quote input carries status %q; quotes never price cancellation", in.Status)
	}
}
