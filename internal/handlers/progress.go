package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-budget/backend/internal/history"
	"example.com/household-budget/backend/internal/ledger"
	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/notifications"
)

type ProgressHandler struct {
	Ledger   *ledger.Service
	Notifier *notifications.Hub
}

// NewProgressHandler создает обработчик реестра оплат и истории.
func NewProgressHandler(ledgerService *ledger.Service, notifier *notifications.Hub) *ProgressHandler {
	return &ProgressHandler{Ledger: ledgerService, Notifier: notifier}
}

type ToggleRequest struct {
	Amount models.Amount `json:"amount"`
}

type SetAmountRequest struct {
	Amount models.Amount `json:"amount"`
}

type HistoryState struct {
	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

// Toggle переключает оплату вхождения: pending/skipped -> paid, paid -> pending.
// Сумма в теле — действующая сумма, фиксируемая при отметке оплаты.
func (h *ProgressHandler) Toggle(c echo.Context) error {
	householdID, cycleKey, occurrenceKey, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req ToggleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	paid, err := h.Ledger.TogglePaid(c.Request().Context(), householdID, cycleKey, occurrenceKey, req.Amount.Decimal)
	if err != nil {
		return serverError(c)
	}

	h.Notifier.PublishProgress(householdID, cycleKey, occurrenceKey)
	return c.JSON(http.StatusOK, map[string]bool{"paid": paid})
}

// Skip помечает вхождение пропущенным в текущем цикле.
func (h *ProgressHandler) Skip(c echo.Context) error {
	householdID, cycleKey, occurrenceKey, ok := h.scope(c)
	if !ok {
		return nil
	}

	if err := h.Ledger.Skip(c.Request().Context(), householdID, cycleKey, occurrenceKey); err != nil {
		return serverError(c)
	}

	h.Notifier.PublishProgress(householdID, cycleKey, occurrenceKey)
	return c.NoContent(http.StatusNoContent)
}

// Restore возвращает пропущенное вхождение в ожидающие.
func (h *ProgressHandler) Restore(c echo.Context) error {
	householdID, cycleKey, occurrenceKey, ok := h.scope(c)
	if !ok {
		return nil
	}

	if err := h.Ledger.Restore(c.Request().Context(), householdID, cycleKey, occurrenceKey); err != nil {
		return serverError(c)
	}

	h.Notifier.PublishProgress(householdID, cycleKey, occurrenceKey)
	return c.NoContent(http.StatusNoContent)
}

// SetAmount переопределяет действующую сумму вхождения в текущем цикле.
func (h *ProgressHandler) SetAmount(c echo.Context) error {
	householdID, cycleKey, occurrenceKey, ok := h.scope(c)
	if !ok {
		return nil
	}

	var req SetAmountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	record, err := h.Ledger.SetActualAmount(c.Request().Context(), householdID, cycleKey, occurrenceKey, req.Amount.Decimal)
	if err != nil {
		return serverError(c)
	}

	h.Notifier.PublishProgress(householdID, cycleKey, occurrenceKey)
	return c.JSON(http.StatusOK, record)
}

// Undo откатывает последнюю мутацию реестра или настроек цикла.
func (h *ProgressHandler) Undo(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	if err := h.Ledger.Undo(c.Request().Context(), householdID); err != nil {
		if errors.Is(err, history.ErrNothingToUndo) {
			return conflict(c, "nothing to undo")
		}
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, c.Param("cycleKey"))
	return c.JSON(http.StatusOK, h.state(householdID))
}

// Redo повторяет последнюю откаченную мутацию.
func (h *ProgressHandler) Redo(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	if err := h.Ledger.Redo(c.Request().Context(), householdID); err != nil {
		if errors.Is(err, history.ErrNothingToRedo) {
			return conflict(c, "nothing to redo")
		}
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, c.Param("cycleKey"))
	return c.JSON(http.StatusOK, h.state(householdID))
}

func (h *ProgressHandler) state(householdID uuid.UUID) HistoryState {
	ctrl := h.Ledger.History(householdID)
	return HistoryState{CanUndo: ctrl.CanUndo(), CanRedo: ctrl.CanRedo()}
}

// scope извлекает и проверяет параметры пути. При ошибке ответ уже записан.
func (h *ProgressHandler) scope(c echo.Context) (uuid.UUID, string, string, bool) {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		_ = badRequest(c, "invalid household id")
		return uuid.Nil, "", "", false
	}

	cycleKey := c.Param("cycleKey")
	if _, err := time.Parse(dateLayout, cycleKey); err != nil {
		_ = badRequest(c, "invalid cycle key")
		return uuid.Nil, "", "", false
	}

	occurrenceKey := c.Param("occurrenceKey")
	if occurrenceKey == "" {
		_ = badRequest(c, "missing occurrence key")
		return uuid.Nil, "", "", false
	}

	return householdID, cycleKey, occurrenceKey, true
}
