package scheduler

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/internal/store"
	"github.com/iwvelando/rental-projection/pkg/testutil"
	"go.uber.org/zap"
)

func newEngine(t *testing.T, policy projection.Policy) *projection.Engine {
	t.Helper()
	engine, err := projection.NewEngine(zap.NewNop(), policy)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestRunOnceAppliesCurrentPolicy(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "refresh.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer st.Close()

	property, err := st.CreateProperty(ctx, "Flat on Main", "Lyon", projection.LongTermRental)
	if err != nil {
		t.Fatalf("CreateProperty() error = %v", err)
	}
	in := testutil.LongTermInput()
	out, err := newEngine(t, projection.DefaultPolicy()).Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if err := st.UpsertProjection(ctx, property.ID, in, out); err != nil {
		t.Fatalf("UpsertProjection() error = %v", err)
	}

	average := projection.Policy{InterestDeduction: projection.DeductAverageInterest}
	s, err := New(zap.NewNop(), "@daily", newEngine(t, average), st)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := s.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if report.Refreshed != 1 || report.Failed != 0 {
		t.Fatalf("RunOnce() = %+v, want 1 refreshed", report)
	}

	stored, err := st.GetProjection(ctx, property.ID)
	if err != nil {
		t.Fatalf("GetProjection() error = %v", err)
	}
	want := stored.Output.TotalInterestOverTerm / 20
	if math.Abs(stored.Output.DeductibleInterest-want) > 0.01 {
		t.Errorf("DeductibleInterest = %v, want %v", stored.Output.DeductibleInterest, want)
	}
	if stored.Output.DeductibleInterest == out.DeductibleInterest {
		t.Error("expected the refreshed projection to differ from the first-year one")
	}
}

type fakeStore struct {
	inputs   []store.StoredInput
	listErr  error
	upserted []int64
}

func (f *fakeStore) ListInputs(context.Context) ([]store.StoredInput, error) {
	return f.inputs, f.listErr
}

func (f *fakeStore) UpsertProjection(_ context.Context, propertyID int64, _ projection.Input, _ *projection.Output) error {
	f.upserted = append(f.upserted, propertyID)
	return nil
}

func TestRunOnceSkipsFailures(t *testing.T) {
	fake := &fakeStore{inputs: []store.StoredInput{
		{PropertyID: 1, Input: projection.Input{Mode: "hotel"}},
		{PropertyID: 2, Input: testutil.LongTermInput()},
	}}
	s, err := New(nil, "@hourly", newEngine(t, projection.DefaultPolicy()), fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if report.Refreshed != 1 || report.Failed != 1 {
		t.Fatalf("RunOnce() = %+v, want 1 refreshed and 1 failed", report)
	}
	if len(fake.upserted) != 1 || fake.upserted[0] != 2 {
		t.Fatalf("upserted %v, want [2]", fake.upserted)
	}
}

func TestRunOnceListError(t *testing.T) {
	fake := &fakeStore{listErr: errors.New("database is locked")}
	s, err := New(nil, "@hourly", newEngine(t, projection.DefaultPolicy()), fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("expected an error when inputs cannot be listed")
	}
}

func TestRunOnceStopsOnCancel(t *testing.T) {
	fake := &fakeStore{inputs: []store.StoredInput{{PropertyID: 1, Input: testutil.LongTermInput()}}}
	s, err := New(nil, "@hourly", newEngine(t, projection.DefaultPolicy()), fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.RunOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunOnce() error = %v, want context.Canceled", err)
	}
	if len(fake.upserted) != 0 {
		t.Fatalf("expected nothing upserted, got %v", fake.upserted)
	}
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	if _, err := New(nil, "every tuesday", newEngine(t, projection.DefaultPolicy()), &fakeStore{}); err == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}
}

func TestStartStop(t *testing.T) {
	s, err := New(nil, "@daily", newEngine(t, projection.DefaultPolicy()), &fakeStore{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.Start()
	s.Stop()
}
