package services

import (
	"context"
	"log"
	"time"

	"github.com/ridewellhq/chauffeur-backend/internal/domain"
	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"github.com/ridewellhq/chauffeur-backend/pkg/utils"
	"gorm.io/gorm"
)

// advisoryLockClass namespaces this module's advisory locks so they cannot
// collide with other users of the same database.
const advisoryLockClass = 7201

// BookingCreateRequest is a quote request plus the commitment: a chosen
// vehicle and the contact details of whoever is riding.
type BookingCreateRequest struct {
	QuoteRequest
	VehicleID     *uint  `json:"vehicle_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"payment_method"`
}

// BookingUpdateRequest carries a partial update. Nil pointers leave the
// corresponding field untouched.
type BookingUpdateRequest struct {
	Status         *string    `json:"status"`
	ServiceType    *string    `json:"service_type"`
	PickupTime     *time.Time `json:"pickup_time"`
	DropoffTime    *time.Time `json:"dropoff_time"`
	PickupAddress  *string    `json:"pickup_address"`
	DropoffAddress *string    `json:"dropoff_address"`
	Passengers     *int       `json:"passengers"`
	DistanceKm     *float64   `json:"distance_km"`
	Hours          *float64   `json:"hours"`

	ExtrasPrice      *float64 `json:"extras_price"`
	Parking          *float64 `json:"parking"`
	Others           *float64 `json:"others"`
	AirportFees      *float64 `json:"airport_fees"`
	CongestionCharge *float64 `json:"congestion_charge"`

	VehicleID  *uint   `json:"vehicle_id"`
	DriverID   *uint   `json:"driver_id"`
	ChildSeats *int    `json:"child_seats"`
	Bags       *int    `json:"bags"`
	FlightNo   *string `json:"flight_number"`
	Airlines   *string `json:"airlines"`
	Notes      *string `json:"notes"`

	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	CustomerID *uint   `json:"customer_id"`
}

// touchesRestrictedFields reports whether the update changes cost-bearing,
// assignment or contact fields. Those stay with staff; customers and guests
// can adjust trip logistics and cancel, nothing more.
func (r *BookingUpdateRequest) touchesRestrictedFields() bool {
	return r.ServiceType != nil || r.DistanceKm != nil || r.Hours != nil ||
		r.ExtrasPrice != nil || r.Parking != nil || r.Others != nil ||
		r.AirportFees != nil || r.CongestionCharge != nil ||
		r.VehicleID != nil || r.DriverID != nil ||
		r.Name != nil || r.Email != nil || r.Phone != nil || r.CustomerID != nil
}

// BookingLifecycle owns booking creation and every subsequent mutation. All
// price snapshots on a booking are written by this service; nothing else
// touches the cost columns.
type BookingLifecycle struct {
	db           *gorm.DB
	availability *AvailabilityChecker
	payments     *PaymentAuthority
}

func NewBookingLifecycle(db *gorm.DB, payments *PaymentAuthority) *BookingLifecycle {
	return &BookingLifecycle{
		db:           db,
		availability: NewAvailabilityChecker(db),
		payments:     payments,
	}
}

// CanActOn reports whether the actor may read or mutate the booking. Staff
// can act on any booking in their company, customers on their own bookings,
// guests only with the booking's access token.
func CanActOn(actor domain.Actor, b *models.Booking) bool {
	switch {
	case actor.IsStaff():
		return actor.CompanyID == b.CompanyID
	case actor.IsCustomer():
		return b.CustomerID != nil && *b.CustomerID == actor.CustomerID
	default:
		return utils.SecureCompare(b.BookingAccessToken, actor.AccessToken)
	}
}

// Create validates, prices and persists a new booking. When a vehicle is
// chosen, an advisory lock on the vehicle serializes concurrent creates so
// the availability re-check inside the transaction cannot race another
// booking for the same vehicle.
func (l *BookingLifecycle) Create(ctx context.Context, companyID uint, actor domain.Actor, req *BookingCreateRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	config, err := GetSystemConfig(ctx, l.db, companyID)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "system config", Err: err}
	}

	booking := models.Booking{
		CompanyID:      companyID,
		ServiceType:    req.ServiceType,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		PickupTime:     req.PickupTime,
		DropoffTime:    req.DropoffTime,
		Passengers:     req.Passengers,
		ChildSeats:     req.ChildSeats,
		Bags:           req.Bags,
		FlightNumber:   req.FlightNumber,
		Airlines:       req.Airlines,
		DistanceKm:     req.DistanceKm,
		Hours:          req.Hours,
		Notes:          req.Notes,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  "unpaid",
		Status:         models.BookingStatusPending,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
	}

	if actor.IsCustomer() {
		var customer models.Customer
		if err := l.db.First(&customer, actor.CustomerID).Error; err != nil {
			return nil, &domain.NotFoundError{Resource: "customer", Err: err}
		}
		booking.CustomerID = &customer.ID
		// Snapshot contact details so later account edits do not rewrite
		// history.
		if booking.Name == "" {
			booking.Name = customer.Name
		}
		if booking.Email == "" {
			booking.Email = customer.Email
		}
		if booking.Phone == "" {
			booking.Phone = customer.Phone
		}
	} else {
		token, err := utils.GenerateBookingAccessToken()
		if err != nil {
			return nil, err
		}
		booking.BookingAccessToken = token
		if booking.Email == "" {
			return nil, &domain.ValidationError{Field: "email", Msg: "guest bookings require an email"}
		}
	}

	var vehicle *models.Vehicle
	if req.VehicleID != nil {
		var v models.Vehicle
		if err := l.db.Where("company_id = ?", companyID).First(&v, *req.VehicleID).Error; err != nil {
			return nil, &domain.NotFoundError{Resource: "vehicle", Err: err}
		}
		if v.Status != string(models.VehicleStatusActive) {
			return nil, &domain.ConflictError{Resource: "vehicle", Msg: "vehicle is not in service"}
		}
		if v.Capacity < req.Passengers {
			return nil, &domain.ValidationError{Field: "vehicle_id", Msg: "vehicle cannot seat the party"}
		}
		vehicle = &v
		booking.VehicleID = &v.ID

		calc := utils.CalculatePrice(ratesOf(&v), req.priceInput(config))
		applyCalculation(&booking, calc)
	}

	window := WindowFor(req.PickupTime, req.DropoffTime)

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if vehicle != nil {
			// Held until commit; a concurrent create for the same vehicle
			// blocks here and then sees this booking in its re-check.
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", advisoryLockClass, vehicle.ID).Error; err != nil {
				return err
			}
			checker := NewAvailabilityChecker(tx)
			available, err := checker.IsVehicleAvailable(companyID, vehicle.ID, window, 0)
			if err != nil {
				return err
			}
			if !available {
				return &domain.ConflictError{Resource: "vehicle", Msg: "vehicle is already booked for this window"}
			}
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	if booking.Email != "" {
		go func(b models.Booking) {
			if err := utils.SendBookingConfirmationEmail(b.Email, b.ID, b.PickupAddress, b.TotalPrice, config.Currency); err != nil {
				log.Printf("Failed to send booking confirmation email: %v", err)
			}
		}(booking)
	}

	return &booking, nil
}

// Update applies a partial update to a booking on behalf of an actor. Status
// changes are validated against the allowed transitions; any change to a
// price-bearing field triggers a full recompute of the snapshot; moving to
// cancelled replaces the snapshot with the flat cancellation fee and then
// tries to capture that fee from the existing authorization.
func (l *BookingLifecycle) Update(ctx context.Context, actor domain.Actor, bookingID uint, req *BookingUpdateRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := l.db.First(&booking, bookingID).Error; err != nil {
		return nil, &domain.NotFoundError{Resource: "booking", Err: err}
	}
	if !CanActOn(actor, &booking) {
		return nil, &domain.UnauthorizedError{Msg: "not allowed to modify this booking"}
	}
	if !actor.IsStaff() && req.touchesRestrictedFields() {
		return nil, &domain.UnauthorizedError{Msg: "only staff can change cost or contact fields"}
	}

	newStatus := booking.Status
	if req.Status != nil {
		newStatus = models.BookingStatus(*req.Status)
		if !models.ValidBookingStatus(newStatus) {
			return nil, &domain.ValidationError{Field: "status", Msg: "unknown status"}
		}
		if !models.CanTransition(booking.Status, newStatus) {
			return nil, &domain.StateError{
				Msg: "cannot move booking from " + string(booking.Status) + " to " + string(newStatus),
			}
		}
		// Driver assignment and trip progress are staff actions; customers
		// and guests may only cancel.
		if !actor.IsStaff() && newStatus != booking.Status && newStatus != models.BookingStatusCancelled {
			return nil, &domain.UnauthorizedError{Msg: "only staff can change booking progress"}
		}
	}

	repricing := applyFields(&booking, req)
	booking.Status = newStatus

	if newStatus == models.BookingStatusCancelled {
		return l.cancel(ctx, &booking)
	}

	if repricing {
		if err := l.reprice(ctx, &booking); err != nil {
			return nil, err
		}
	}

	if req.VehicleID != nil {
		window := WindowFor(booking.PickupTime, booking.DropoffTime)
		available, err := l.availability.IsVehicleAvailable(booking.CompanyID, *req.VehicleID, window, booking.ID)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, &domain.ConflictError{Resource: "vehicle", Msg: "vehicle is already booked for this window"}
		}
	}

	if err := l.db.Save(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// cancel writes the cancellation snapshot and attempts to settle the fee
// against the outstanding authorization. A capture failure does not undo the
// cancellation: the booking is cancelled either way and the payment row keeps
// the failure for reconciliation.
func (l *BookingLifecycle) cancel(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	config, err := GetSystemConfig(ctx, l.db, booking.CompanyID)
	if err != nil {
		return nil, &domain.NotFoundError{Resource: "system config", Err: err}
	}

	calc := utils.CancellationPriceCalculation(config.CancellationFee, booking.ServiceType)
	applyCalculation(booking, calc)
	booking.Status = models.BookingStatusCancelled

	if err := l.db.Save(booking).Error; err != nil {
		return nil, err
	}

	if l.payments != nil && booking.CancellationFee > 0 {
		if _, err := l.payments.CaptureForBooking(ctx, booking.ID, booking.CancellationFee); err != nil {
			// Nothing authorized yet, or the processor refused; either way
			// the cancellation stands.
			log.Printf("Cancellation fee capture for booking %d not completed: %v", booking.ID, err)
		}
	}

	if booking.Email != "" {
		go func(b models.Booking, currency string) {
			if err := utils.SendBookingCancelledEmail(b.Email, b.ID, b.CancellationFee, currency); err != nil {
				log.Printf("Failed to send booking cancelled email: %v", err)
			}
		}(*booking, config.Currency)
	}

	return booking, nil
}

// reprice recomputes the price snapshot from the booking's current fields and
// the vehicle's current rate card.
func (l *BookingLifecycle) reprice(ctx context.Context, booking *models.Booking) error {
	if booking.VehicleID == nil {
		return nil
	}
	config, err := GetSystemConfig(ctx, l.db, booking.CompanyID)
	if err != nil {
		return &domain.NotFoundError{Resource: "system config", Err: err}
	}
	var vehicle models.Vehicle
	if err := l.db.Where("company_id = ?", booking.CompanyID).First(&vehicle, *booking.VehicleID).Error; err != nil {
		return &domain.NotFoundError{Resource: "vehicle", Err: err}
	}

	in := utils.PriceInput{
		ServiceType:        booking.ServiceType,
		DistanceKm:         booking.DistanceKm,
		Hours:              booking.Hours,
		ExtrasPrice:        booking.ExtrasPrice,
		Parking:            booking.Parking,
		Others:             booking.Others,
		AirportFees:        booking.AirportFees,
		CongestionCharge:   booking.CongestionCharge,
		BasePrice:          config.BasePriceFlat,
		TaxRate:            config.TaxRate,
		GratuityPercentage: config.GratuityPercentage,
		SurgeRate:          config.SurgeRate,
		RateBuffer:         config.RateBuffer,
		CancellationFee:    config.CancellationFee,
		Status:             string(booking.Status),
	}
	applyCalculation(booking, utils.CalculatePrice(ratesOf(&vehicle), in))
	return nil
}

// applyFields copies set request fields onto the booking and reports whether
// any of them bears on the price.
func applyFields(b *models.Booking, req *BookingUpdateRequest) bool {
	repricing := false
	priced := func() { repricing = true }

	if req.ServiceType != nil && *req.ServiceType != b.ServiceType {
		b.ServiceType = *req.ServiceType
		priced()
	}
	if req.PickupTime != nil {
		b.PickupTime = *req.PickupTime
	}
	if req.DropoffTime != nil {
		b.DropoffTime = req.DropoffTime
	}
	if req.PickupAddress != nil {
		b.PickupAddress = *req.PickupAddress
	}
	if req.DropoffAddress != nil {
		b.DropoffAddress = *req.DropoffAddress
	}
	if req.Passengers != nil {
		b.Passengers = *req.Passengers
	}
	if req.DistanceKm != nil && *req.DistanceKm != b.DistanceKm {
		b.DistanceKm = *req.DistanceKm
		priced()
	}
	if req.Hours != nil && *req.Hours != b.Hours {
		b.Hours = *req.Hours
		priced()
	}
	if req.ExtrasPrice != nil && *req.ExtrasPrice != b.ExtrasPrice {
		b.ExtrasPrice = *req.ExtrasPrice
		priced()
	}
	if req.Parking != nil && *req.Parking != b.Parking {
		b.Parking = *req.Parking
		priced()
	}
	if req.Others != nil && *req.Others != b.Others {
		b.Others = *req.Others
		priced()
	}
	if req.AirportFees != nil && *req.AirportFees != b.AirportFees {
		b.AirportFees = *req.AirportFees
		priced()
	}
	if req.CongestionCharge != nil && *req.CongestionCharge != b.CongestionCharge {
		b.CongestionCharge = *req.CongestionCharge
		priced()
	}
	if req.VehicleID != nil {
		if b.VehicleID == nil || *req.VehicleID != *b.VehicleID {
			b.VehicleID = req.VehicleID
			priced()
		}
	}
	if req.DriverID != nil {
		b.DriverID = req.DriverID
	}
	if req.ChildSeats != nil {
		b.ChildSeats = *req.ChildSeats
	}
	if req.Bags != nil {
		b.Bags = *req.Bags
	}
	if req.FlightNo != nil {
		b.FlightNumber = *req.FlightNo
	}
	if req.Airlines != nil {
		b.Airlines = *req.Airlines
	}
	if req.Notes != nil {
		b.Notes = *req.Notes
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Email != nil {
		b.Email = *req.Email
	}
	if req.Phone != nil {
		b.Phone = *req.Phone
	}
	if req.CustomerID != nil {
		b.CustomerID = req.CustomerID
	}
	return repricing
}

// applyCalculation writes an itemized breakdown onto the booking's snapshot
// columns, rounding every monetary value at this persistence boundary.
// BasePrice snapshots the flat configured base; the trip cost itself stays
// derivable from the stored distance or hours and the vehicle's rate card.
func applyCalculation(b *models.Booking, calc utils.PriceCalculation) {
	b.BasePrice = utils.Round2(calc.BasePrice)
	b.ExtrasPrice = utils.Round2(calc.ExtrasPrice)
	b.Parking = utils.Round2(calc.Parking)
	b.Others = utils.Round2(calc.Others)
	b.AirportFees = utils.Round2(calc.AirportFees)
	b.CongestionCharge = utils.Round2(calc.CongestionCharge)
	b.Taxes = calc.TaxRate
	b.TaxesAmount = utils.Round2(calc.TaxesAmount)
	b.Gratuity = calc.GratuityPercentage
	b.GratuityAmount = utils.Round2(calc.GratuityAmount)
	b.SurgeRate = calc.SurgeRate
	b.SurgeRateAmount = utils.Round2(calc.SurgeRateAmount)
	b.RateBuffer = calc.RateBuffer
	b.RateBufferAmount = utils.Round2(calc.BufferAmount)
	b.CancellationFee = utils.Round2(calc.CancellationFee)
	b.TotalPrice = utils.Round2(calc.TotalPrice)
	b.FinalPrice = b.TotalPrice
}
