package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/household-budget/backend/internal/history"
	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/repository"
)

// ProgressStore — персистентные операции над записями прогресса цикла.
type ProgressStore interface {
	Get(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) (models.ProgressRecord, error)
	Upsert(ctx context.Context, record models.ProgressRecord) error
	Delete(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) error
}

// CycleStore — персистентные операции над строками циклов.
type CycleStore interface {
	Get(ctx context.Context, householdID uuid.UUID, cycleKey string) (models.BudgetCycle, error)
	Upsert(ctx context.Context, cycle models.BudgetCycle) error
	Delete(ctx context.Context, householdID uuid.UUID, cycleKey string) error
}

// Service — реестр прогресса: переходы оплачено/ожидает/пропущено и
// переопределения сумм, каждый обернут в обратимую команду истории.
// Никаких блокировок и повторов: одновременные писатели дают
// last-write-wins, сверка — повторной загрузкой.
type Service struct {
	progress ProgressStore
	cycles   CycleStore
	limit    int

	mu       sync.Mutex
	sessions map[uuid.UUID]*history.Controller
}

// NewService создает сервис реестра с заданной глубиной истории.
func NewService(progress ProgressStore, cycles CycleStore, historyLimit int) *Service {
	return &Service{
		progress: progress,
		cycles:   cycles,
		limit:    historyLimit,
		sessions: make(map[uuid.UUID]*history.Controller),
	}
}

// History возвращает контроллер истории домохозяйства, создавая его лениво.
func (s *Service) History(householdID uuid.UUID) *history.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctrl, ok := s.sessions[householdID]
	if !ok {
		ctrl = history.NewController(s.replay, s.limit)
		s.sessions[householdID] = ctrl
	}

	return ctrl
}

// replay — единственный путь записи: и прямые мутации, и откаты проходят
// через него, поэтому повтор структурно идемпотентен.
func (s *Service) replay(ctx context.Context, cmd history.Command) error {
	switch cmd.Kind {
	case history.CommandUpsertProgress:
		if cmd.Record == nil {
			return fmt.Errorf("upsert_progress command without record")
		}
		return s.progress.Upsert(ctx, *cmd.Record)

	case history.CommandDeleteProgress:
		err := s.progress.Delete(ctx, cmd.HouseholdID, cmd.CycleKey, cmd.OccurrenceKey)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err

	case history.CommandUpsertCycle:
		if cmd.Cycle == nil {
			return fmt.Errorf("upsert_cycle command without cycle")
		}
		return s.cycles.Upsert(ctx, *cmd.Cycle)

	case history.CommandDeleteCycle:
		err := s.cycles.Delete(ctx, cmd.HouseholdID, cmd.CycleKey)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err

	default:
		return fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
}

// SetActualAmount сохраняет переопределенную сумму вхождения. Совпадение с
// уже сохраненным значением — no-op.
func (s *Service) SetActualAmount(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string, amount decimal.Decimal) (models.ProgressRecord, error) {
	prior, hasPrior, err := s.load(ctx, householdID, cycleKey, occurrenceKey)
	if err != nil {
		return models.ProgressRecord{}, err
	}

	if hasPrior && prior.ActualAmount.Equal(amount) {
		return prior, nil
	}

	record := models.ProgressRecord{
		HouseholdID:   householdID,
		CycleKey:      cycleKey,
		OccurrenceKey: occurrenceKey,
		ActualAmount:  amount,
		UpdatedAt:     time.Now().UTC(),
	}
	if hasPrior {
		record.IsPaid = prior.IsPaid
	}

	return record, s.mutateProgress(ctx, householdID, cycleKey, occurrenceKey, prior, hasPrior, &record)
}

// TogglePaid переключает вхождение между ожиданием и оплатой. Возврат в
// ожидание удаляет запись целиком, отбрасывая переопределение суммы.
func (s *Service) TogglePaid(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string, amount decimal.Decimal) (bool, error) {
	prior, hasPrior, err := s.load(ctx, householdID, cycleKey, occurrenceKey)
	if err != nil {
		return false, err
	}

	if hasPrior && prior.IsPaid == models.PaidStatePaid {
		return false, s.mutateProgress(ctx, householdID, cycleKey, occurrenceKey, prior, hasPrior, nil)
	}

	record := models.ProgressRecord{
		HouseholdID:   householdID,
		CycleKey:      cycleKey,
		OccurrenceKey: occurrenceKey,
		IsPaid:        models.PaidStatePaid,
		ActualAmount:  amount,
		UpdatedAt:     time.Now().UTC(),
	}

	return true, s.mutateProgress(ctx, householdID, cycleKey, occurrenceKey, prior, hasPrior, &record)
}

// Skip помечает вхождение пропущенным: оно уходит из всех сумм и прогнозов
// до явного восстановления.
func (s *Service) Skip(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) error {
	prior, hasPrior, err := s.load(ctx, householdID, cycleKey, occurrenceKey)
	if err != nil {
		return err
	}

	if hasPrior && prior.IsPaid == models.PaidStateSkipped {
		return nil
	}

	record := models.ProgressRecord{
		HouseholdID:   householdID,
		CycleKey:      cycleKey,
		OccurrenceKey: occurrenceKey,
		IsPaid:        models.PaidStateSkipped,
		ActualAmount:  decimal.Zero,
		UpdatedAt:     time.Now().UTC(),
	}

	return s.mutateProgress(ctx, householdID, cycleKey, occurrenceKey, prior, hasPrior, &record)
}

// Restore удаляет запись о пропуске, возвращая вхождение в ожидание с
// плановой суммой: путь skip/restore намеренно отбрасывает переопределения.
func (s *Service) Restore(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) error {
	prior, hasPrior, err := s.load(ctx, householdID, cycleKey, occurrenceKey)
	if err != nil {
		return err
	}

	if !hasPrior {
		return nil
	}

	return s.mutateProgress(ctx, householdID, cycleKey, occurrenceKey, prior, hasPrior, nil)
}

// UpsertCycle записывает настройки цикла, регистрируя обратную команду:
// откат первой настройки удаляет строку цикла.
func (s *Service) UpsertCycle(ctx context.Context, cycle models.BudgetCycle) error {
	prior, err := s.cycles.Get(ctx, cycle.HouseholdID, cycle.CycleKey)
	hasPrior := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	redo := history.Command{
		Kind:        history.CommandUpsertCycle,
		HouseholdID: cycle.HouseholdID,
		CycleKey:    cycle.CycleKey,
		Cycle:       &cycle,
	}

	undo := history.Command{
		Kind:        history.CommandDeleteCycle,
		HouseholdID: cycle.HouseholdID,
		CycleKey:    cycle.CycleKey,
	}
	if hasPrior {
		undo = history.Command{
			Kind:        history.CommandUpsertCycle,
			HouseholdID: cycle.HouseholdID,
			CycleKey:    cycle.CycleKey,
			Cycle:       &prior,
		}
	}

	if err := s.replay(ctx, redo); err != nil {
		return err
	}

	s.History(cycle.HouseholdID).Record(history.Entry{Undo: undo, Redo: redo})
	return nil
}

// Undo откатывает последнюю мутацию домохозяйства.
func (s *Service) Undo(ctx context.Context, householdID uuid.UUID) error {
	return s.History(householdID).Undo(ctx)
}

// Redo повторяет последнюю откаченную мутацию домохозяйства.
func (s *Service) Redo(ctx context.Context, householdID uuid.UUID) error {
	return s.History(householdID).Redo(ctx)
}

func (s *Service) load(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string) (models.ProgressRecord, bool, error) {
	prior, err := s.progress.Get(ctx, householdID, cycleKey, occurrenceKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.ProgressRecord{}, false, nil
		}
		return models.ProgressRecord{}, false, err
	}

	return prior, true, nil
}

// mutateProgress применяет прямую команду и регистрирует обратную пару.
// next == nil означает удаление записи.
func (s *Service) mutateProgress(ctx context.Context, householdID uuid.UUID, cycleKey, occurrenceKey string, prior models.ProgressRecord, hasPrior bool, next *models.ProgressRecord) error {
	redo := history.Command{
		Kind:          history.CommandDeleteProgress,
		HouseholdID:   householdID,
		CycleKey:      cycleKey,
		OccurrenceKey: occurrenceKey,
	}
	if next != nil {
		redo.Kind = history.CommandUpsertProgress
		redo.Record = next
	}

	undo := history.Command{
		Kind:          history.CommandDeleteProgress,
		HouseholdID:   householdID,
		CycleKey:      cycleKey,
		OccurrenceKey: occurrenceKey,
	}
	if hasPrior {
		undo.Kind = history.CommandUpsertProgress
		undo.Record = &prior
	}

	if err := s.replay(ctx, redo); err != nil {
		return err
	}

	s.History(householdID).Record(history.Entry{Undo: undo, Redo: redo})
	return nil
}
