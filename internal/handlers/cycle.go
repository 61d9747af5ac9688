package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-budget/backend/internal/calendar"
	"example.com/household-budget/backend/internal/cycle"
	"example.com/household-budget/backend/internal/engine"
	"example.com/household-budget/backend/internal/ledger"
	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/notifications"
	"example.com/household-budget/backend/internal/repository"
)

const (
	setupModeFresh        = "fresh"
	setupModeCopyPrevious = "copy_previous"
)

type CycleHandler struct {
	Incomes     *repository.IncomeRepository
	Costs       *repository.CostRepository
	Obligations *repository.ObligationRepository
	Cycles      *repository.CycleRepository
	Progress    *repository.ProgressRepository
	Holidays    *repository.HolidayRepository
	Ledger      *ledger.Service
	Notifier    *notifications.Hub
}

// NewCycleHandler создает обработчик представления и настройки цикла.
func NewCycleHandler(
	incomes *repository.IncomeRepository,
	costs *repository.CostRepository,
	obligations *repository.ObligationRepository,
	cycles *repository.CycleRepository,
	progress *repository.ProgressRepository,
	holidays *repository.HolidayRepository,
	ledgerService *ledger.Service,
	notifier *notifications.Hub,
) *CycleHandler {
	return &CycleHandler{
		Incomes:     incomes,
		Costs:       costs,
		Obligations: obligations,
		Cycles:      cycles,
		Progress:    progress,
		Holidays:    holidays,
		Ledger:      ledgerService,
		Notifier:    notifier,
	}
}

type SetupCycleRequest struct {
	Mode           string        `json:"mode" validate:"required,oneof=fresh copy_previous"`
	Date           string        `json:"date"`
	ActualPay      models.Amount `json:"actual_pay"`
	CurrentBalance models.Amount `json:"current_balance"`
	BankAccountID  *uuid.UUID    `json:"bank_account_id"`
}

type UpdateCycleRequest struct {
	ActualPay      models.Amount `json:"actual_pay"`
	CurrentBalance models.Amount `json:"current_balance"`
	BankAccountID  *uuid.UUID    `json:"bank_account_id"`
}

// GetView возвращает производное представление активного цикла на
// просматриваемую дату.
func (h *CycleHandler) GetView(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	reference, err := parseDateParam(c.QueryParam("date"), time.Now().UTC())
	if err != nil {
		return badRequest(c, "invalid date")
	}

	view, err := h.deriveView(c.Request().Context(), householdID, reference)
	if err != nil {
		if errors.Is(err, cycle.ErrNoAnchorIncome) {
			return conflict(c, "no primary income source; cycle setup required")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, view)
}

// Setup инициализирует цикл явно: с нуля либо копией предыдущего.
func (h *CycleHandler) Setup(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	var req SetupCycleRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	reference, err := parseDateParam(req.Date, time.Now().UTC())
	if err != nil {
		return badRequest(c, "invalid date")
	}

	ctx := c.Request().Context()

	win, err := h.resolveWindow(ctx, householdID, reference)
	if err != nil {
		if errors.Is(err, cycle.ErrNoAnchorIncome) {
			return conflict(c, "no primary income source; cycle setup required")
		}
		return serverError(c)
	}

	row := models.BudgetCycle{
		HouseholdID:    householdID,
		CycleKey:       win.Key,
		ActualPay:      req.ActualPay.Decimal,
		CurrentBalance: req.CurrentBalance.Decimal,
		BankAccountID:  req.BankAccountID,
	}

	if req.Mode == setupModeCopyPrevious {
		previous, err := h.Cycles.GetLatestBefore(ctx, householdID, win.Key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound(c, "no previous cycle to copy")
			}
			return serverError(c)
		}

		row.ActualPay = previous.ActualPay
		row.CurrentBalance = previous.CurrentBalance
		row.BankAccountID = previous.BankAccountID
	}

	if err := h.Ledger.UpsertCycle(ctx, row); err != nil {
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, win.Key)
	return c.JSON(http.StatusCreated, row)
}

// UpdateSettings обновляет объявленную выплату, остаток и счет цикла.
func (h *CycleHandler) UpdateSettings(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	cycleKey := c.Param("cycleKey")
	if _, err := time.Parse(dateLayout, cycleKey); err != nil {
		return badRequest(c, "invalid cycle key")
	}

	var req UpdateCycleRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	ctx := c.Request().Context()

	if _, err := h.Cycles.Get(ctx, householdID, cycleKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "cycle not found")
		}
		return serverError(c)
	}

	row := models.BudgetCycle{
		HouseholdID:    householdID,
		CycleKey:       cycleKey,
		ActualPay:      req.ActualPay.Decimal,
		CurrentBalance: req.CurrentBalance.Decimal,
		BankAccountID:  req.BankAccountID,
	}

	if err := h.Ledger.UpsertCycle(ctx, row); err != nil {
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, cycleKey)
	return c.JSON(http.StatusOK, row)
}

// List возвращает определенные циклы домохозяйства.
func (h *CycleHandler) List(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	cycles, err := h.Cycles.List(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, cycles)
}

func (h *CycleHandler) resolveWindow(ctx context.Context, householdID uuid.UUID, reference time.Time) (cycle.Window, error) {
	incomes, err := h.Incomes.ListByHousehold(ctx, householdID)
	if err != nil {
		return cycle.Window{}, err
	}

	holidays, err := h.Holidays.ListDates(ctx)
	if err != nil {
		return cycle.Window{}, err
	}

	return cycle.Resolve(incomes, reference, calendar.New(holidays))
}

// deriveViewForCycle строит представление для заданного начала цикла.
// Дата начала может лежать ниже якорного дня из-за отката на рабочий день,
// поэтому опорная дата сдвигается к якорю, а ключ полученного окна
// сверяется с запрошенным.
func (h *CycleHandler) deriveViewForCycle(ctx context.Context, householdID uuid.UUID, cycleKey string) (engine.CycleView, error) {
	start, err := time.Parse(dateLayout, cycleKey)
	if err != nil {
		return engine.CycleView{}, err
	}

	incomes, err := h.Incomes.ListByHousehold(ctx, householdID)
	if err != nil {
		return engine.CycleView{}, err
	}

	reference, err := cycle.AnchorReference(incomes, start)
	if err != nil {
		return engine.CycleView{}, err
	}

	view, err := h.deriveView(ctx, householdID, reference)
	if err != nil {
		return engine.CycleView{}, err
	}
	if view.Window.Key != cycleKey {
		return engine.CycleView{}, repository.ErrNotFound
	}

	return view, nil
}

// deriveView собирает снимки внешнего хранилища и строит чистую проекцию
// цикла. После каждой мутации вызывающая сторона перечитывает
// представление целиком.
func (h *CycleHandler) deriveView(ctx context.Context, householdID uuid.UUID, reference time.Time) (engine.CycleView, error) {
	snap := engine.Snapshot{Reference: reference}

	var err error
	if snap.Incomes, err = h.Incomes.ListByHousehold(ctx, householdID); err != nil {
		return engine.CycleView{}, err
	}

	if snap.Holidays, err = h.Holidays.ListDates(ctx); err != nil {
		return engine.CycleView{}, err
	}

	win, err := cycle.Resolve(snap.Incomes, reference, calendar.New(snap.Holidays))
	if err != nil {
		return engine.CycleView{}, err
	}

	if snap.Costs, err = h.Costs.ListByHousehold(ctx, householdID, true); err != nil {
		return engine.CycleView{}, err
	}

	if snap.Obligations, err = h.Obligations.ListByHousehold(ctx, householdID); err != nil {
		return engine.CycleView{}, err
	}

	if snap.OneOffs, err = h.Costs.ListOneOffs(ctx, householdID); err != nil {
		return engine.CycleView{}, err
	}

	row, err := h.Cycles.Get(ctx, householdID, win.Key)
	switch {
	case err == nil:
		snap.Cycle = &row
	case errors.Is(err, repository.ErrNotFound):
		// No cycle row yet: the view reports setup-required.
	default:
		return engine.CycleView{}, err
	}

	if snap.Cycle != nil {
		if snap.Progress, err = h.Progress.ListByCycle(ctx, householdID, win.Key); err != nil {
			return engine.CycleView{}, err
		}

		if snap.Cycle.BankAccountID != nil {
			account, err := h.Obligations.GetAccount(ctx, householdID, *snap.Cycle.BankAccountID)
			if err == nil {
				snap.Account = &account
			} else if !errors.Is(err, repository.ErrNotFound) {
				return engine.CycleView{}, err
			}
		}
	}

	return engine.DeriveCycleView(snap)
}
