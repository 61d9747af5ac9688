package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/notifications"
	"example.com/household-budget/backend/internal/repository"
)

type CostHandler struct {
	Costs    *repository.CostRepository
	Notifier *notifications.Hub
}

// NewCostHandler создает обработчик регулярных трат и разовых записей.
func NewCostHandler(costs *repository.CostRepository, notifier *notifications.Hub) *CostHandler {
	return &CostHandler{Costs: costs, Notifier: notifier}
}

type CostRequest struct {
	Name               string            `json:"name" validate:"required,min=1,max=100"`
	Amount             models.Amount     `json:"amount"`
	Frequency          string            `json:"frequency" validate:"required,oneof=monthly weekly quarterly yearly"`
	DayOfMonth         *int              `json:"day_of_month" validate:"omitempty,min=1,max=31"`
	DayOfWeek          *int              `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	StartDate          string            `json:"start_date"`
	AdjustToWorkingDay bool              `json:"adjust_to_working_day"`
	Category           string            `json:"category" validate:"required,min=1,max=50"`
	OwnerType          string            `json:"owner_type" validate:"omitempty,oneof=household member vehicle pet"`
	OwnerID            *uuid.UUID        `json:"owner_id"`
	Metadata           map[string]string `json:"metadata"`
	IsActive           *bool             `json:"is_active"`
}

type OneOffRequest struct {
	Name     string        `json:"name" validate:"required,min=1,max=100"`
	Amount   models.Amount `json:"amount"`
	DueDate  string        `json:"due_date" validate:"required"`
	Category string        `json:"category"`
}

// List возвращает регулярные траты домохозяйства, включая неактивные.
func (h *CostHandler) List(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	costs, err := h.Costs.ListByHousehold(c.Request().Context(), householdID, false)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, costs)
}

// Create добавляет регулярную трату.
func (h *CostHandler) Create(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	cost, ok := h.bindCost(c, householdID)
	if !ok {
		return nil
	}

	created, err := h.Costs.Create(c.Request().Context(), cost)
	if err != nil {
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, "")
	return c.JSON(http.StatusCreated, created)
}

// Update изменяет регулярную трату.
func (h *CostHandler) Update(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	costID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid cost id")
	}

	cost, ok := h.bindCost(c, householdID)
	if !ok {
		return nil
	}
	cost.ID = costID

	updated, err := h.Costs.Update(c.Request().Context(), cost)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "recurring cost not found")
		}
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, "")
	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет регулярную трату.
func (h *CostHandler) Delete(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	costID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid cost id")
	}

	if err := h.Costs.Delete(c.Request().Context(), householdID, costID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "recurring cost not found")
		}
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, "")
	return c.NoContent(http.StatusNoContent)
}

// CreateOneOff добавляет разовую запись с конкретной датой списания.
func (h *CostHandler) CreateOneOff(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	var req OneOffRequest
	if err = c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err = c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return badRequest(c, "invalid due date")
	}

	entry, err := h.Costs.CreateOneOff(c.Request().Context(), models.OneOffEntry{
		HouseholdID: householdID,
		Name:        req.Name,
		Amount:      req.Amount.Decimal,
		DueDate:     dueDate,
		Category:    req.Category,
	})
	if err != nil {
		return serverError(c)
	}

	h.Notifier.PublishCycle(householdID, "")
	return c.JSON(http.StatusCreated, entry)
}

// bindCost разбирает и проверяет тело запроса. При ошибке ответ уже записан.
func (h *CostHandler) bindCost(c echo.Context, householdID uuid.UUID) (models.RecurringCost, bool) {
	var req CostRequest
	if err := c.Bind(&req); err != nil {
		_ = badRequest(c, "invalid payload")
		return models.RecurringCost{}, false
	}
	if err := c.Validate(&req); err != nil {
		_ = badRequest(c, "validation failed")
		return models.RecurringCost{}, false
	}

	frequency := models.Frequency(req.Frequency)
	if frequency == models.FrequencyMonthly && req.DayOfMonth == nil {
		_ = badRequest(c, "day_of_month is required for monthly costs")
		return models.RecurringCost{}, false
	}

	var startDate *time.Time
	if req.StartDate != "" {
		parsed, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			_ = badRequest(c, "invalid start date")
			return models.RecurringCost{}, false
		}
		startDate = &parsed
	}
	if frequency != models.FrequencyMonthly && startDate == nil {
		_ = badRequest(c, "start_date is required for non-monthly costs")
		return models.RecurringCost{}, false
	}

	if err := validateMetadata(req.Category, req.Metadata); err != nil {
		_ = badRequest(c, err.Error())
		return models.RecurringCost{}, false
	}

	owner := models.OwnerHousehold
	if req.OwnerType != "" {
		owner = models.OwnerType(req.OwnerType)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return models.RecurringCost{
		HouseholdID:        householdID,
		Name:               req.Name,
		Amount:             req.Amount.Decimal,
		Frequency:          frequency,
		DayOfMonth:         req.DayOfMonth,
		DayOfWeek:          req.DayOfWeek,
		StartDate:          startDate,
		AdjustToWorkingDay: req.AdjustToWorkingDay,
		Category:           req.Category,
		OwnerType:          owner,
		OwnerID:            req.OwnerID,
		Metadata:           req.Metadata,
		IsActive:           active,
	}, true
}

// validateMetadata сверяет свободные метаданные с реестром полей категории.
func validateMetadata(category string, metadata map[string]string) error {
	allowed, known := models.AllowedMetadataKeys(category)
	if !known {
		return nil
	}

	for key := range metadata {
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("unknown metadata key %q for category %q", key, category)
		}
	}

	return nil
}
