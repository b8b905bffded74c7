package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestPredicatesMatchConstructedErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"validation", &ValidationError{Field: "amount", Msg: "must be positive"}, IsValidation},
		{"not found", &NotFoundError{Resource: "booking"}, IsNotFound},
		{"conflict", &ConflictError{Resource: "vehicle"}, IsConflict},
		{"unauthorized", &UnauthorizedError{Msg: "wrong company"}, IsUnauthorized},
		{"state", &StateError{Msg: "not capturable"}, IsState},
		{"processor", &ProcessorError{Code: "card_declined"}, IsProcessor},
	}

	for _, tt := range tests {
		if !tt.pred(tt.err) {
			t.Errorf("%s: predicate missed %v", tt.name, tt.err)
		}
		// Still matches through a wrapping layer.
		if !tt.pred(fmt.Errorf("handling request: %w", tt.err)) {
			t.Errorf("%s: predicate missed wrapped %v", tt.name, tt.err)
		}
	}
}

func TestPredicatesRejectOtherKinds(t *testing.T) {
	stateErr := &StateError{Msg: "not capturable"}

	if IsValidation(stateErr) || IsNotFound(stateErr) || IsConflict(stateErr) ||
		IsUnauthorized(stateErr) || IsProcessor(stateErr) {
		t.Errorf("state error matched a foreign predicate")
	}
	if IsState(errors.New("plain")) {
		t.Error("plain error matched IsState")
	}
}

func TestAsProcessor(t *testing.T) {
	pe := &ProcessorError{Code: "card_declined", Msg: "Your card was declined.", IntentID: "pi_1"}

	got, ok := AsProcessor(fmt.Errorf("authorize: %w", pe))
	if !ok {
		t.Fatal("AsProcessor missed a wrapped processor error")
	}
	if got.Code != "card_declined" || got.IntentID != "pi_1" {
		t.Errorf("extracted %+v, want the original detail", got)
	}

	if _, ok := AsProcessor(errors.New("plain")); ok {
		t.Error("AsProcessor matched a plain error")
	}
}
