package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func ts(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWindowFor(t *testing.T) {
	pickup := ts("2026-09-01 10:00")
	dropoff := ts("2026-09-01 13:00")

	w := WindowFor(pickup, &dropoff)
	if !w.Start.Equal(pickup) || !w.End.Equal(dropoff) {
		t.Errorf("bounded window = [%v, %v], want [pickup, dropoff]", w.Start, w.End)
	}

	open := WindowFor(pickup, nil)
	if !open.Start.Equal(ts("2026-09-01 08:00")) || !open.End.Equal(ts("2026-09-01 12:00")) {
		t.Errorf("open window = [%v, %v], want pickup padded by 2h each side", open.Start, open.End)
	}
}

func TestConflictWindowOverlaps(t *testing.T) {
	base := ConflictWindow{Start: ts("2026-09-01 10:00"), End: ts("2026-09-01 12:00")}

	tests := []struct {
		name  string
		other ConflictWindow
		want  bool
	}{
		{"inside", ConflictWindow{ts("2026-09-01 10:30"), ts("2026-09-01 11:00")}, true},
		{"covers", ConflictWindow{ts("2026-09-01 09:00"), ts("2026-09-01 13:00")}, true},
		{"straddles start", ConflictWindow{ts("2026-09-01 09:00"), ts("2026-09-01 10:30")}, true},
		{"straddles end", ConflictWindow{ts("2026-09-01 11:30"), ts("2026-09-01 13:00")}, true},
		{"touches end", ConflictWindow{ts("2026-09-01 12:00"), ts("2026-09-01 14:00")}, true},
		{"touches start", ConflictWindow{ts("2026-09-01 08:00"), ts("2026-09-01 10:00")}, true},
		{"before", ConflictWindow{ts("2026-09-01 07:00"), ts("2026-09-01 09:59")}, false},
		{"after", ConflictWindow{ts("2026-09-01 12:01"), ts("2026-09-01 14:00")}, false},
	}

	for _, tt := range tests {
		if got := base.Overlaps(tt.other); got != tt.want {
			t.Errorf("%s: overlaps = %v, want %v", tt.name, got, tt.want)
		}
		// Symmetry
		if got := tt.other.Overlaps(base); got != tt.want {
			t.Errorf("%s (reversed): overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBusyVehicleIDs(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(3).AddRow(8))

	checker := &AvailabilityChecker{db: db}
	window := ConflictWindow{Start: ts("2026-09-01 10:00"), End: ts("2026-09-01 12:00")}

	ids, err := checker.BusyVehicleIDs(1, window, 0)
	if err != nil {
		t.Fatalf("BusyVehicleIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 8 {
		t.Errorf("busy ids = %v, want [3 8]", ids)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBusyVehicleIDsOpenEndedBounds(t *testing.T) {
	db, mock := newTestDB(t)

	window := ConflictWindow{Start: ts("2026-09-01 10:00"), End: ts("2026-09-01 15:00")}

	// The open-ended branch compares pickup against the window bounds as-is:
	// a booking with no dropoff conflicts only when its pickup falls inside
	// the window, so a 16:30 pickup must not block a [10:00, 15:00] request.
	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM "bookings"`).
		WithArgs(1, window.End, window.Start, window.End, window.Start).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}))

	checker := &AvailabilityChecker{db: db}
	if _, err := checker.BusyVehicleIDs(1, window, 0); err != nil {
		t.Fatalf("BusyVehicleIDs: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestIsVehicleAvailable(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(3))
	mock.ExpectQuery(`SELECT DISTINCT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_id"}).AddRow(3))

	checker := &AvailabilityChecker{db: db}
	window := ConflictWindow{Start: ts("2026-09-01 10:00"), End: ts("2026-09-01 12:00")}

	available, err := checker.IsVehicleAvailable(1, 3, window, 0)
	if err != nil {
		t.Fatalf("IsVehicleAvailable: %v", err)
	}
	if available {
		t.Error("vehicle 3 reported available while booked")
	}

	available, err = checker.IsVehicleAvailable(1, 5, window, 0)
	if err != nil {
		t.Fatalf("IsVehicleAvailable: %v", err)
	}
	if !available {
		t.Error("vehicle 5 reported busy with no conflicting booking")
	}
}
