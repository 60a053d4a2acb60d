package orm_test

import (
	"context"
	"testing"
	"time"

	"github.com/mickamy/jsonapi-hydrator/orm"
)

func TestNowUsesClockFromContext(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	ctx := orm.WithClock(t.Context(), orm.ClockFunc(func() time.Time { return fixed }))

	want := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.UTC)
	if got := orm.Now(ctx); !got.Equal(want) {
		t.Errorf("Now = %v, want %v", got, want)
	}
}

func TestNowFallsBackToWallClock(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	got := orm.Now(context.Background())
	if got.Before(before) {
		t.Errorf("Now = %v, want after %v", got, before)
	}
	if got.Nanosecond()%1000 != 0 {
		t.Errorf("Now = %v, want microsecond precision", got)
	}
}
