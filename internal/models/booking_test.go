package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusAssigned, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusPending, BookingStatusOnRoute, false},
		{BookingStatusConfirmed, BookingStatusAssigned, true},
		{BookingStatusConfirmed, BookingStatusOnRoute, false},
		{BookingStatusAssigned, BookingStatusOnRoute, true},
		{BookingStatusAssigned, BookingStatusCompleted, false},
		{BookingStatusOnRoute, BookingStatusCompleted, true},
		{BookingStatusOnRoute, BookingStatusCancelled, true},
		{BookingStatusOnRoute, BookingStatusPending, false},
		// No way back once terminal.
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCompleted, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		// Same status is never an error.
		{BookingStatusPending, BookingStatusPending, true},
		{BookingStatusCompleted, BookingStatusCompleted, true},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCancellableFromEveryNonTerminalState(t *testing.T) {
	for _, from := range []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusAssigned, BookingStatusOnRoute,
	} {
		if !CanTransition(from, BookingStatusCancelled) {
			t.Errorf("cannot cancel from %s", from)
		}
	}
}

func TestValidBookingStatus(t *testing.T) {
	for _, s := range []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusAssigned,
		BookingStatusOnRoute, BookingStatusCompleted, BookingStatusCancelled,
	} {
		if !ValidBookingStatus(s) {
			t.Errorf("%s reported invalid", s)
		}
	}
	if ValidBookingStatus("driving") {
		t.Error("unknown status reported valid")
	}
}

func TestValidServiceType(t *testing.T) {
	for _, s := range []string{ServiceTypePointToPoint, ServiceTypeHourly, ServiceTypeAirport, ServiceTypeCustom} {
		if !ValidServiceType(s) {
			t.Errorf("%s reported invalid", s)
		}
	}
	if ValidServiceType("shuttle") {
		t.Error("unknown service type reported valid")
	}
}

func TestVehicleRateFor(t *testing.T) {
	v := Vehicle{HourlyRate: 50, PerKmRate: 2, AirportRate: 3}

	if got := v.RateFor(ServiceTypeHourly); got != 50 {
		t.Errorf("hourly rate = %v, want 50", got)
	}
	if got := v.RateFor(ServiceTypeAirport); got != 3 {
		t.Errorf("airport rate = %v, want 3", got)
	}
	if got := v.RateFor(ServiceTypePointToPoint); got != 2 {
		t.Errorf("point_to_point rate = %v, want 2", got)
	}
	if got := v.RateFor(ServiceTypeCustom); got != 2 {
		t.Errorf("custom rate = %v, want 2", got)
	}
}

func TestBookingIsGuest(t *testing.T) {
	customerID := uint(7)

	guest := Booking{BookingAccessToken: "abc"}
	if !guest.IsGuest() {
		t.Error("tokened booking without customer not recognized as guest")
	}

	owned := Booking{CustomerID: &customerID}
	if owned.IsGuest() {
		t.Error("customer booking recognized as guest")
	}
}
