package history

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"example.com/household-budget/backend/internal/models"
)

type CommandKind string

const (
	CommandUpsertProgress CommandKind = "upsert_progress"
	CommandDeleteProgress CommandKind = "delete_progress"
	CommandUpsertCycle    CommandKind = "upsert_cycle"
	CommandDeleteCycle    CommandKind = "delete_cycle"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command — сериализуемое описание воспроизведения сохраненного состояния.
// Откат воспроизводит состояние до мутации, повтор — после нее.
type Command struct {
	Kind          CommandKind            `json:"kind"`
	HouseholdID   uuid.UUID              `json:"household_id"`
	CycleKey      string                 `json:"cycle_key"`
	OccurrenceKey string                 `json:"occurrence_key,omitempty"`
	Record        *models.ProgressRecord `json:"record,omitempty"`
	Cycle         *models.BudgetCycle    `json:"cycle,omitempty"`
}

// Entry — пара команд одной мутации.
type Entry struct {
	Undo Command `json:"undo"`
	Redo Command `json:"redo"`
}

// Executor воспроизводит команду против хранилища.
type Executor func(ctx context.Context, cmd Command) error

// Controller хранит ограниченную линейную историю мутаций одной сессии.
// История живет только в памяти и теряется при перезапуске.
type Controller struct {
	mu        sync.Mutex
	exec      Executor
	limit     int
	undo      []Entry
	redo      []Entry
	replaying bool
}

// NewController создает контроллер истории с заданной глубиной.
func NewController(exec Executor, limit int) *Controller {
	if limit <= 0 {
		limit = 30
	}

	return &Controller{exec: exec, limit: limit}
}

// Record регистрирует прямую мутацию. Регистрация подавляется во время
// воспроизведения, чтобы контроллер не записывал собственные повторы.
// Новая мутация инвалидирует ветку повтора; переполнение молча выбрасывает
// самую старую запись.
func (c *Controller) Record(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.replaying {
		return
	}

	c.undo = append(c.undo, entry)
	if len(c.undo) > c.limit {
		c.undo = c.undo[1:]
	}

	c.redo = c.redo[:0]
}

// Undo снимает последнюю запись, воспроизводит прежнее состояние и
// переносит пару в стек повтора.
func (c *Controller) Undo(ctx context.Context) error {
	c.mu.Lock()
	if len(c.undo) == 0 {
		c.mu.Unlock()
		return ErrNothingToUndo
	}

	entry := c.undo[len(c.undo)-1]
	c.undo = c.undo[:len(c.undo)-1]
	c.replaying = true
	c.mu.Unlock()

	err := c.exec(ctx, entry.Undo)

	c.mu.Lock()
	c.replaying = false
	if err == nil {
		c.redo = append(c.redo, entry)
		if len(c.redo) > c.limit {
			c.redo = c.redo[1:]
		}
	} else {
		// Replay failed: put the entry back, the caller reconciles by
		// refetching.
		c.undo = append(c.undo, entry)
	}
	c.mu.Unlock()

	return err
}

// Redo — зеркальная операция к Undo.
func (c *Controller) Redo(ctx context.Context) error {
	c.mu.Lock()
	if len(c.redo) == 0 {
		c.mu.Unlock()
		return ErrNothingToRedo
	}

	entry := c.redo[len(c.redo)-1]
	c.redo = c.redo[:len(c.redo)-1]
	c.replaying = true
	c.mu.Unlock()

	err := c.exec(ctx, entry.Redo)

	c.mu.Lock()
	c.replaying = false
	if err == nil {
		c.undo = append(c.undo, entry)
		if len(c.undo) > c.limit {
			c.undo = c.undo[1:]
		}
	} else {
		c.redo = append(c.redo, entry)
	}
	c.mu.Unlock()

	return err
}

// CanUndo сообщает, есть ли что откатывать.
func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.undo) > 0
}

// CanRedo сообщает, есть ли что повторять.
func (c *Controller) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.redo) > 0
}
