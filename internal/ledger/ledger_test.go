package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/repository"
)

type fakeStore struct {
	mu       sync.Mutex
	progress map[string]models.ProgressRecord
	cycles   map[string]models.BudgetCycle
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		progress: make(map[string]models.ProgressRecord),
		cycles:   make(map[string]models.BudgetCycle),
	}
}

func progressKey(householdID uuid.UUID, cycleKey, occurrenceKey string) string {
	return householdID.String() + "|" + cycleKey + "|" + occurrenceKey
}

func (f *fakeStore) Get(_ context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) (models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.progress[progressKey(householdID, cycleKey, occurrenceKey)]
	if !ok {
		return models.ProgressRecord{}, repository.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) Upsert(_ context.Context, record models.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.progress[progressKey(record.HouseholdID, record.CycleKey, record.OccurrenceKey)] = record
	return nil
}

func (f *fakeStore) Delete(_ context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := progressKey(householdID, cycleKey, occurrenceKey)
	if _, ok := f.progress[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.progress, key)
	return nil
}

type fakeCycles fakeStore

func (f *fakeCycles) Get(_ context.Context, householdID uuid.UUID, cycleKey string) (models.BudgetCycle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cycle, ok := f.cycles[householdID.String()+"|"+cycleKey]
	if !ok {
		return models.BudgetCycle{}, repository.ErrNotFound
	}
	return cycle, nil
}

func (f *fakeCycles) Upsert(_ context.Context, cycle models.BudgetCycle) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cycles[cycle.HouseholdID.String()+"|"+cycle.CycleKey] = cycle
	return nil
}

func (f *fakeCycles) Delete(_ context.Context, householdID uuid.UUID, cycleKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := householdID.String() + "|" + cycleKey
	if _, ok := f.cycles[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.cycles, key)
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, (*fakeCycles)(store), 30), store
}

const cycleKey = "2025-12-26"

// TestTogglePaidRoundTrip проверяет полный круг оплачено → ожидает.
func TestTogglePaidRoundTrip(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	householdID := uuid.New()

	paid, err := svc.TogglePaid(ctx, householdID, cycleKey, "recurring_a_2001", decimal.NewFromInt(18))
	if err != nil {
		t.Fatalf("expected toggle to succeed, got %v", err)
	}
	if !paid {
		t.Fatal("expected first toggle to mark paid")
	}

	record, err := store.Get(ctx, householdID, cycleKey, "recurring_a_2001")
	if err != nil {
		t.Fatalf("expected record, got %v", err)
	}
	if record.IsPaid != models.PaidStatePaid || !record.ActualAmount.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("unexpected record %+v", record)
	}

	paid, err = svc.TogglePaid(ctx, householdID, cycleKey, "recurring_a_2001", decimal.NewFromInt(18))
	if err != nil {
		t.Fatalf("expected toggle to succeed, got %v", err)
	}
	if paid {
		t.Fatal("expected second toggle to mark pending")
	}

	if _, err := store.Get(ctx, householdID, cycleKey, "recurring_a_2001"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected record deleted, got %v", err)
	}
}

// TestUndoRestoresPriorState проверяет, что откат возвращает ровно
// предыдущее сохраненное состояние, а повтор — новое.
func TestUndoRestoresPriorState(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	householdID := uuid.New()

	if _, err := svc.TogglePaid(ctx, householdID, cycleKey, "recurring_a_2001", decimal.NewFromInt(18)); err != nil {
		t.Fatalf("expected toggle to succeed, got %v", err)
	}

	if err := svc.Undo(ctx, householdID); err != nil {
		t.Fatalf("expected undo to succeed, got %v", err)
	}

	if _, err := store.Get(ctx, householdID, cycleKey, "recurring_a_2001"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected record gone after undo, got %v", err)
	}

	if err := svc.Redo(ctx, householdID); err != nil {
		t.Fatalf("expected redo to succeed, got %v", err)
	}

	record, err := store.Get(ctx, householdID, cycleKey, "recurring_a_2001")
	if err != nil {
		t.Fatalf("expected record back after redo, got %v", err)
	}
	if record.IsPaid != models.PaidStatePaid {
		t.Fatalf("expected paid state after redo, got %d", record.IsPaid)
	}
}

// TestSkipRestoreDiscardsOverride проверяет, что путь skip/restore
// отбрасывает сохраненное переопределение суммы.
func TestSkipRestoreDiscardsOverride(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	householdID := uuid.New()

	if _, err := svc.SetActualAmount(ctx, householdID, cycleKey, "recurring_a_2001", decimal.NewFromInt(25)); err != nil {
		t.Fatalf("expected override to succeed, got %v", err)
	}

	if err := svc.Skip(ctx, householdID, cycleKey, "recurring_a_2001"); err != nil {
		t.Fatalf("expected skip to succeed, got %v", err)
	}

	record, err := store.Get(ctx, householdID, cycleKey, "recurring_a_2001")
	if err != nil {
		t.Fatalf("expected skip record, got %v", err)
	}
	if record.IsPaid != models.PaidStateSkipped || !record.ActualAmount.IsZero() {
		t.Fatalf("unexpected skip record %+v", record)
	}

	if err := svc.Restore(ctx, householdID, cycleKey, "recurring_a_2001"); err != nil {
		t.Fatalf("expected restore to succeed, got %v", err)
	}

	if _, err := store.Get(ctx, householdID, cycleKey, "recurring_a_2001"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected pending with default amount after restore, got %v", err)
	}
}

// TestSetActualAmountIdempotent проверяет no-op при неизменном значении.
func TestSetActualAmountIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	householdID := uuid.New()

	if _, err := svc.SetActualAmount(ctx, householdID, cycleKey, "recurring_a_2001", decimal.NewFromInt(25)); err != nil {
		t.Fatalf("expected override to succeed, got %v", err)
	}

	if _, err := svc.SetActualAmount(ctx, householdID, cycleKey, "recurring_a_2001", decimal.NewFromInt(25)); err != nil {
		t.Fatalf("expected repeat override to no-op, got %v", err)
	}

	ctrl := svc.History(householdID)
	if err := ctrl.Undo(ctx); err != nil {
		t.Fatalf("expected one entry to undo, got %v", err)
	}
	if ctrl.CanUndo() {
		t.Fatal("expected exactly one history entry for an idempotent repeat")
	}
}

// TestUpsertCycleUndoDeletesFreshRow проверяет откат первой настройки цикла.
func TestUpsertCycleUndoDeletesFreshRow(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	householdID := uuid.New()

	cycle := models.BudgetCycle{
		HouseholdID:    householdID,
		CycleKey:       cycleKey,
		ActualPay:      decimal.NewFromInt(3000),
		CurrentBalance: decimal.NewFromInt(500),
	}

	if err := svc.UpsertCycle(ctx, cycle); err != nil {
		t.Fatalf("expected setup to succeed, got %v", err)
	}

	if err := svc.Undo(ctx, householdID); err != nil {
		t.Fatalf("expected undo to succeed, got %v", err)
	}

	if _, err := (*fakeCycles)(store).Get(ctx, householdID, cycleKey); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected cycle row removed by undo, got %v", err)
	}
}
