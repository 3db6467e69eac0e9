package services

import (
	"testing"
	"time"

	"github.com/mashamba/dairy-backend/internal/domain"
)

func TestFarmPhoneRule(t *testing.T) {
	good := []string{"+254712345678", "0712345678", "+1234567890", "123456789"}
	bad := []string{"12345678", "+12 345 678 90", "phone", "99999999999999999"}
	for _, p := range good {
		if err := checkStruct(FarmInput{Name: "x", Phone: p}); err != nil {
			t.Errorf("%q rejected: %v", p, err)
		}
	}
	for _, p := range bad {
		if err := checkStruct(FarmInput{Name: "x", Phone: p}); err == nil {
			t.Errorf("%q accepted", p)
		}
	}
}

func TestRuleMessages(t *testing.T) {
	err := checkStruct(FarmInput{})
	ve, ok := err.(*ValidationError)
	if !ok || ve.Error() != "name: is required" {
		t.Fatalf("got %v", err)
	}
	err = checkStruct(CowInput{NameOrTag: "x", Gender: "cow"})
	if ve, ok := err.(*ValidationError); !ok || ve.Message != "must be one of: male female" {
		t.Fatalf("got %v", err)
	}
}

func TestHelpers(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if notFuture("d", now.Add(4*time.Minute), now) != nil {
		t.Fatal("skew not tolerated")
	}
	if notFuture("d", now.Add(6*time.Minute), now) == nil {
		t.Fatal("future accepted")
	}
	if notFuturePtr("d", nil, now) != nil {
		t.Fatal("nil must pass")
	}
	if requireFemale(&domain.Cow{Gender: domain.Male}, "milking") == nil {
		t.Fatal("male accepted")
	}
	if requireActive(&domain.Cow{Status: domain.CowArchived}) != ErrCowArchived {
		t.Fatal("archived accepted")
	}
	if (&ValidationError{Message: "bare"}).Error() != "bare" {
		t.Fatal("fieldless message")
	}
	if firstErr(nil, nil) != nil {
		t.Fatal("firstErr")
	}
}
