package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/household-budget/backend/internal/repository"
)

type ObligationHandler struct {
	Obligations *repository.ObligationRepository
}

// NewObligationHandler создает обработчик чтения обязательств и счетов.
func NewObligationHandler(obligations *repository.ObligationRepository) *ObligationHandler {
	return &ObligationHandler{Obligations: obligations}
}

// List возвращает обязательства домохозяйства: карты, пенсии, инвестиции
// и накопительные счета.
func (h *ObligationHandler) List(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	obligations, err := h.Obligations.ListByHousehold(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, obligations)
}

// ListAccounts возвращает банковские счета домохозяйства с лимитами
// овердрафта.
func (h *ObligationHandler) ListAccounts(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	accounts, err := h.Obligations.ListAccounts(c.Request().Context(), householdID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, accounts)
}
