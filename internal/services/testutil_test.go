package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB wires gorm over a sqlmock connection. Expectations are matched
// out of order so gorm's internal statement ordering does not leak into
// tests.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 mockDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm init error: %v", err)
	}

	mock.MatchExpectationsInOrder(false)
	return db, mock
}

// fakeProcessor is a scripted PaymentProcessor for tests.
type fakeProcessor struct {
	authorizeIntent *ProcessorIntent
	authorizeErr    error
	captureIntent   *ProcessorIntent
	captureErr      error

	authorizeCalls int
	captureCalls   int
	lastCaptureID  string
	lastAmount     float64
}

func (f *fakeProcessor) Authorize(ctx context.Context, params AuthorizeParams) (*ProcessorIntent, error) {
	f.authorizeCalls++
	f.lastAmount = params.Amount
	if f.authorizeErr != nil {
		return nil, f.authorizeErr
	}
	return f.authorizeIntent, nil
}

func (f *fakeProcessor) Capture(ctx context.Context, intentID string, amount float64) (*ProcessorIntent, error) {
	f.captureCalls++
	f.lastCaptureID = intentID
	f.lastAmount = amount
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return f.captureIntent, nil
}

func (f *fakeProcessor) Retrieve(ctx context.Context, intentID string) (*ProcessorIntent, error) {
	return f.captureIntent, nil
}
