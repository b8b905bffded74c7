package services

import (
	"os"
	"time"

	"github.com/ridewellhq/chauffeur-backend/internal/models"
	"gorm.io/gorm"
)

// fallbackTripDuration pads a requested window on both sides of pickup when
// no dropoff time was given.
const fallbackTripDuration = 2 * time.Hour

// ConflictWindow is the time span a booking occupies a vehicle for.
type ConflictWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFor derives the conflict window from a booking's pickup and optional
// dropoff. With a dropoff the window is exactly [pickup, dropoff]; without
// one the vehicle is held for two hours on either side of pickup.
func WindowFor(pickup time.Time, dropoff *time.Time) ConflictWindow {
	if dropoff != nil {
		return ConflictWindow{Start: pickup, End: *dropoff}
	}
	return ConflictWindow{
		Start: pickup.Add(-fallbackTripDuration),
		End:   pickup.Add(fallbackTripDuration),
	}
}

// Overlaps reports whether two windows share any instant. Touching endpoints
// count as a conflict: a vehicle dropping off at 14:00 is not free for a
// 14:00 pickup.
func (w ConflictWindow) Overlaps(other ConflictWindow) bool {
	return !w.Start.After(other.End) && !other.Start.After(w.End)
}

// AvailabilityChecker answers which vehicles are already committed over a
// requested window.
type AvailabilityChecker struct {
	db *gorm.DB

	// skipCancelled releases vehicles held by cancelled bookings. Off by
	// default: a cancelled booking may still be mid-refund, and dispatchers
	// expect the slot to reopen only once they confirm.
	skipCancelled bool
}

func NewAvailabilityChecker(db *gorm.DB) *AvailabilityChecker {
	return &AvailabilityChecker{
		db:            db,
		skipCancelled: os.Getenv("AVAILABILITY_SKIP_CANCELLED") == "true",
	}
}

// BusyVehicleIDs returns the ids of vehicles whose existing bookings conflict
// with the requested window. excludeBookingID removes one booking from
// consideration so a booking being rescheduled does not conflict with itself;
// pass zero to consider all bookings.
func (a *AvailabilityChecker) BusyVehicleIDs(companyID uint, window ConflictWindow, excludeBookingID uint) ([]uint, error) {
	q := a.db.Model(&models.Booking{}).
		Where("company_id = ?", companyID).
		Where("vehicle_id IS NOT NULL")

	if a.skipCancelled {
		q = q.Where("status <> ?", models.BookingStatusCancelled)
	}
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}

	// A booking with a dropoff occupies [pickup, dropoff]; one without
	// conflicts only when its pickup falls inside the requested window. Both
	// shapes are checked in one query.
	q = q.Where(
		a.db.Where("dropoff_time IS NOT NULL AND pickup_time <= ? AND dropoff_time >= ?", window.End, window.Start).
			Or("dropoff_time IS NULL AND pickup_time <= ? AND pickup_time >= ?", window.End, window.Start),
	)

	var ids []uint
	if err := q.Distinct().Pluck("vehicle_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IsVehicleAvailable checks a single vehicle against the window, excluding
// excludeBookingID from consideration.
func (a *AvailabilityChecker) IsVehicleAvailable(companyID, vehicleID uint, window ConflictWindow, excludeBookingID uint) (bool, error) {
	busy, err := a.BusyVehicleIDs(companyID, window, excludeBookingID)
	if err != nil {
		return false, err
	}
	for _, id := range busy {
		if id == vehicleID {
			return false, nil
		}
	}
	return true, nil
}
