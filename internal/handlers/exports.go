package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/household-budget/backend/internal/cycle"
	"example.com/household-budget/backend/internal/engine"
	"example.com/household-budget/backend/internal/models"
	"example.com/household-budget/backend/internal/repository"
)

type ExportHandler struct {
	Cycle *CycleHandler
}

// NewExportHandler создает обработчик выгрузки расписания цикла.
func NewExportHandler(cycleHandler *CycleHandler) *ExportHandler {
	return &ExportHandler{Cycle: cycleHandler}
}

// ExportCSV выгружает расписание запрошенного цикла в CSV.
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	householdID, err := householdIDFromPath(c)
	if err != nil {
		return badRequest(c, "invalid household id")
	}

	cycleKey := c.Param("cycleKey")
	if _, err := time.Parse(dateLayout, cycleKey); err != nil {
		return badRequest(c, "invalid cycle key")
	}

	view, err := h.Cycle.deriveViewForCycle(c.Request().Context(), householdID, cycleKey)
	if err != nil {
		if errors.Is(err, cycle.ErrNoAnchorIncome) {
			return conflict(c, "no primary income source; cycle setup required")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "cycle not found")
		}
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Occurrence", "Name", "Category", "Due Date", "Amount", "State"}
	if err := writer.Write(header); err != nil {
		return serverError(c)
	}

	writeItem := func(item engine.Item) error {
		return writer.Write([]string{
			item.Key,
			item.Name,
			item.Category,
			item.DueDate.Format(dateLayout),
			item.Amount.StringFixed(2),
			stateLabel(item.State),
		})
	}

	for _, group := range view.Groups {
		for _, item := range group.Items {
			if err := writeItem(item); err != nil {
				return serverError(c)
			}
		}
	}
	for _, item := range view.Skipped {
		if err := writeItem(item); err != nil {
			return serverError(c)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := fmt.Sprintf("budget-cycle-%s.csv", view.Window.Key)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// stateLabel переводит состояние оплаты в читаемую метку для выгрузки.
func stateLabel(state models.PaidState) string {
	switch state {
	case models.PaidStatePaid:
		return "paid"
	case models.PaidStateSkipped:
		return "skipped"
	default:
		return "pending"
	}
}
