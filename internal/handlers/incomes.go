package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/notifications"
	"example.com/household-budget/backend/internal/repository"
)

type IncomeHandler struct {
	Incomes  *repository.IncomeRepository
	Notifier *notifications.Hub
}

// NewIncomeHandler создает обработчик источников дохода.
func NewIncomeHandler(incomes *repository.IncomeRepository, notifier *notifications.Hub) *IncomeHandler {
	return &IncomeHandler{Incomes: incomes, Notifier: notifier}
}

type IncomeRequest struct {
	Payer              string        `json:"payer" validate:"required,min=1,max=100"`
	Amount             models.Amount `json:"amount"`
	PaymentDay         int           `json:"payment_day" validate:"required,min=1,max=31"`
	AdjustToWorkingDay bool          `json:"adjust_to_working_day"`
	BankAccountID      *uuid.UUID    `json:"bank_account_id"`
	IsPrimary          bool          `json:"is_primary"`
}

// List возвращает источники дохода домохозяйства.
func (h *IncomeHandler) List(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	incomes, err := h.Incomes.ListByHousehold(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, incomes)
}

// Create добавляет источник дохода. Первый первичный источник задает
// якорь цикла.
func (h *IncomeHandler) Create(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	var req IncomeRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	income, err := h.Incomes.Create(c.Request().Context(), models.IncomeSource{
		HouseholdID:        householdID,
		Payer:              req.Payer,
		Amount:             req.Amount.Decimal,
		PaymentDay:         req.PaymentDay,
		AdjustToWorkingDay: req.AdjustToWorkingDay,
		BankAccountID:      req.BankAccountID,
		IsPrimary:          req.IsPrimary,
	})
	if err != nil {
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, "")
	return c.JSON(http.StatusCreated, income)
}

// Update изменяет источник дохода.
func (h *IncomeHandler) Update(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	var req IncomeRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	income, err := h.Incomes.Update(c.Request().Context(), householdID, incomeID,
		req.Payer, req.Amount.Decimal, req.PaymentDay, req.AdjustToWorkingDay,
		req.BankAccountID, req.IsPrimary)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income source not found")
		}
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, "")
	return c.JSON(http.StatusOK, income)
}

// Delete удаляет источник дохода.
func (h *IncomeHandler) Delete(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	incomeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid income id")
	}

	if err := h.Incomes.Delete(c.Request().Context(), householdID, incomeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "income source not found")
		}
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, "")
	return c.NoContent(http.StatusNoContent)
}
