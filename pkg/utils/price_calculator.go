package utils

import (
	"math"
)

// VehicleRates is the slice of a vehicle's rate card the calculator needs.
type VehicleRates struct {
	HourlyRate  float64 `json:"hourlyRate"`
	PerKmRate   float64 `json:"perKmRate"`
	AirportRate float64 `json:"airportRate"`
}

// PriceInput carries everything a price computation depends on: the trip
// parameters, the per-trip extras and the company pricing config. Callers are
// responsible for rejecting negative or otherwise invalid values before
// calling; the calculator itself never fails.
type PriceInput struct {
	ServiceType string  `json:"serviceType"`
	DistanceKm  float64 `json:"distanceKm"`
	Hours       float64 `json:"hours"`

	// Per-trip extras
	ExtrasPrice      float64 `json:"extrasPrice"`
	Parking          float64 `json:"parking"`
	Others           float64 `json:"others"`
	AirportFees      float64 `json:"airportFees"`
	CongestionCharge float64 `json:"congestionCharge"`

	// Company pricing config
	BasePrice          float64 `json:"basePrice"`
	TaxRate            float64 `json:"taxRate"`
	GratuityPercentage float64 `json:"gratuityPercentage"`
	SurgeRate          float64 `json:"surgeRate"`
	RateBuffer         float64 `json:"rateBuffer"`
	CancellationFee    float64 `json:"cancellationFee"`

	// Current booking status; the configured cancellation fee applies only
	// when it is "cancelled".
	Status string `json:"status"`
}

// PriceCalculation is the complete itemized breakdown. Every intermediate
// value is exposed so clients can display the math and updates can replay it.
// Values keep full float precision; rounding happens only when a breakdown is
// persisted onto a booking.
type PriceCalculation struct {
	ServiceType string  `json:"service_type"`
	Rate        float64 `json:"rate"`
	Units       float64 `json:"units"`
	DistanceKm  float64 `json:"distance_km"`
	Hours       float64 `json:"hours"`

	BasePrice        float64 `json:"base_price"`
	ExtrasPrice      float64 `json:"extras_price"`
	Parking          float64 `json:"parking"`
	Others           float64 `json:"others"`
	AirportFees      float64 `json:"airport_fees"`
	CongestionCharge float64 `json:"congestion_charge"`

	TaxRate            float64 `json:"tax_rate_percent"`
	GratuityPercentage float64 `json:"gratuity_percent"`
	SurgeRate          float64 `json:"surge_rate_percent"`
	RateBuffer         float64 `json:"rate_buffer_percent"`

	Subtotal        float64 `json:"subtotal"`
	SurgeRateAmount float64 `json:"surge_rate_amount"`
	TaxesAmount     float64 `json:"tax_amount"`
	GratuityAmount  float64 `json:"gratuity_amount"`
	CancellationFee float64 `json:"cancellation_fee"`
	BufferAmount    float64 `json:"rate_buffer_amount"`
	TotalPrice      float64 `json:"total_price"`
}

// CalculatePrice computes the itemized price for one vehicle and one trip.
// The order is fixed: rate selection, subtotal, surge, then taxes and gratuity
// on (subtotal+surge), cancellation fee when the booking is cancelled, and
// finally the authorization-hold buffer on top of everything.
func CalculatePrice(rates VehicleRates, in PriceInput) PriceCalculation {
	var rate, units float64

	switch in.ServiceType {
	case "hourly":
		rate = rates.HourlyRate
		units = in.Hours
	case "airport":
		rate = rates.AirportRate
		units = in.DistanceKm
	default: // point_to_point, custom
		rate = rates.PerKmRate
		units = in.DistanceKm
	}

	cancellationFee := 0.0
	if in.Status == "cancelled" {
		cancellationFee = in.CancellationFee
	}

	subtotal := in.BasePrice + units*rate + in.ExtrasPrice + in.Parking + in.Others +
		in.AirportFees + in.CongestionCharge
	surgeAmount := subtotal * in.SurgeRate / 100
	taxesAmount := (subtotal + surgeAmount) * in.TaxRate / 100
	gratuityAmount := (subtotal + surgeAmount) * in.GratuityPercentage / 100
	preAuthBase := subtotal + surgeAmount + taxesAmount + gratuityAmount + cancellationFee
	bufferAmount := preAuthBase * in.RateBuffer / 100
	total := preAuthBase + bufferAmount

	return PriceCalculation{
		ServiceType:        in.ServiceType,
		Rate:               rate,
		Units:              units,
		DistanceKm:         in.DistanceKm,
		Hours:              in.Hours,
		BasePrice:          in.BasePrice,
		ExtrasPrice:        in.ExtrasPrice,
		Parking:            in.Parking,
		Others:             in.Others,
		AirportFees:        in.AirportFees,
		CongestionCharge:   in.CongestionCharge,
		TaxRate:            in.TaxRate,
		GratuityPercentage: in.GratuityPercentage,
		SurgeRate:          in.SurgeRate,
		RateBuffer:         in.RateBuffer,
		Subtotal:           subtotal,
		SurgeRateAmount:    surgeAmount,
		TaxesAmount:        taxesAmount,
		GratuityAmount:     gratuityAmount,
		CancellationFee:    cancellationFee,
		BufferAmount:       bufferAmount,
		TotalPrice:         total,
	}
}

// CancellationPriceCalculation is the breakdown written onto a booking when
// it is cancelled: every trip-cost component zeroed and the flat fee standing
// in as the total.
func CancellationPriceCalculation(cancellationFee float64, serviceType string) PriceCalculation {
	return PriceCalculation{
		ServiceType:     serviceType,
		CancellationFee: cancellationFee,
		TotalPrice:      cancellationFee,
	}
}

// Round2 rounds a monetary value to 2 decimal places. Applied at the point of
// persistence only; intermediate math keeps full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
