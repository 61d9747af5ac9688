package history

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"example.com/household-budget/backend/internal/models"
)

func recordingExecutor(applied *[]Command) Executor {
	return func(_ context.Context, cmd Command) error {
		*applied = append(*applied, cmd)
		return nil
	}
}

func upsertEntry(key string) Entry {
	householdID := uuid.New()
	return Entry{
		Undo: Command{Kind: CommandDeleteProgress, HouseholdID: householdID, CycleKey: "2026-01-01", OccurrenceKey: key},
		Redo: Command{Kind: CommandUpsertProgress, HouseholdID: householdID, CycleKey: "2026-01-01", OccurrenceKey: key,
			Record: &models.ProgressRecord{OccurrenceKey: key, IsPaid: models.PaidStatePaid}},
	}
}

// TestUndoRedoRoundTrip проверяет откат и повтор одной мутации.
func TestUndoRedoRoundTrip(t *testing.T) {
	var applied []Command
	ctrl := NewController(recordingExecutor(&applied), 30)

	ctrl.Record(upsertEntry("recurring_a_2001"))

	if err := ctrl.Undo(context.Background()); err != nil {
		t.Fatalf("expected undo to succeed, got %v", err)
	}

	if len(applied) != 1 || applied[0].Kind != CommandDeleteProgress {
		t.Fatalf("expected delete replay, got %+v", applied)
	}

	if err := ctrl.Redo(context.Background()); err != nil {
		t.Fatalf("expected redo to succeed, got %v", err)
	}

	if len(applied) != 2 || applied[1].Kind != CommandUpsertProgress {
		t.Fatalf("expected upsert replay, got %+v", applied)
	}
}

// TestUndoEmpty проверяет ошибки на пустых стеках.
func TestUndoEmpty(t *testing.T) {
	ctrl := NewController(recordingExecutor(&[]Command{}), 30)

	if err := ctrl.Undo(context.Background()); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}

	if err := ctrl.Redo(context.Background()); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("expected ErrNothingToRedo, got %v", err)
	}
}

// TestRecordClearsRedo проверяет инвалидацию ветки повтора новой мутацией.
func TestRecordClearsRedo(t *testing.T) {
	var applied []Command
	ctrl := NewController(recordingExecutor(&applied), 30)

	ctrl.Record(upsertEntry("recurring_a_2001"))
	if err := ctrl.Undo(context.Background()); err != nil {
		t.Fatalf("expected undo to succeed, got %v", err)
	}

	ctrl.Record(upsertEntry("recurring_b_2101"))

	if ctrl.CanRedo() {
		t.Fatal("expected redo stack to be cleared by a new mutation")
	}
}

// TestHistoryCap проверяет молчаливое вытеснение старейших записей.
func TestHistoryCap(t *testing.T) {
	var applied []Command
	ctrl := NewController(recordingExecutor(&applied), 30)

	for i := 0; i < 35; i++ {
		ctrl.Record(upsertEntry("recurring_a_2001"))
	}

	undone := 0
	for {
		if err := ctrl.Undo(context.Background()); err != nil {
			break
		}
		undone++
	}

	if undone != 30 {
		t.Fatalf("expected history capped at 30 entries, got %d", undone)
	}
}

// TestReplayDoesNotRecord проверяет подавление регистрации во время
// воспроизведения.
func TestReplayDoesNotRecord(t *testing.T) {
	var ctrl *Controller
	exec := func(_ context.Context, cmd Command) error {
		// A replay that tries to register itself must be ignored.
		ctrl.Record(upsertEntry("recurring_self_0101"))
		return nil
	}
	ctrl = NewController(exec, 30)

	ctrl.Record(upsertEntry("recurring_a_2001"))
	if err := ctrl.Undo(context.Background()); err != nil {
		t.Fatalf("expected undo to succeed, got %v", err)
	}

	if ctrl.CanUndo() {
		t.Fatal("expected no new entries recorded during replay")
	}
}

// TestFailedUndoKeepsEntry проверяет возврат записи в стек при сбое
// воспроизведения.
func TestFailedUndoKeepsEntry(t *testing.T) {
	failing := func(_ context.Context, _ Command) error {
		return errors.New("transport failure")
	}
	ctrl := NewController(failing, 30)

	ctrl.Record(upsertEntry("recurring_a_2001"))

	if err := ctrl.Undo(context.Background()); err == nil {
		t.Fatal("expected undo to surface the transport failure")
	}

	if !ctrl.CanUndo() {
		t.Fatal("expected failed undo to keep the entry on the stack")
	}
}
