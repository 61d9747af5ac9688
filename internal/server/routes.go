package server

import (
	"github.com/labstack/echo/v4"

	"example.com/household-budget/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	cycleHandler *handlers.CycleHandler,
	progressHandler *handlers.ProgressHandler,
	incomeHandler *handlers.IncomeHandler,
	costHandler *handlers.CostHandler,
	obligationHandler *handlers.ObligationHandler,
	exportHandler *handlers.ExportHandler,
	notificationHandler *handlers.NotificationHandler,
	apiRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1", apiRateLimiter)
	households := api.Group("/households/:householdId")

	households.GET("/cycle", cycleHandler.GetView)
	households.POST("/cycle", cycleHandler.Setup)
	households.GET("/cycles", cycleHandler.List)
	households.PUT("/cycle/:cycleKey", cycleHandler.UpdateSettings)
	households.GET("/cycle/:cycleKey/export/csv", exportHandler.ExportCSV)

	households.PATCH("/cycle/:cycleKey/progress/:occurrenceKey/toggle", progressHandler.Toggle)
	households.PATCH("/cycle/:cycleKey/progress/:occurrenceKey/skip", progressHandler.Skip)
	households.PATCH("/cycle/:cycleKey/progress/:occurrenceKey/restore", progressHandler.Restore)
	households.PATCH("/cycle/:cycleKey/progress/:occurrenceKey/amount", progressHandler.SetAmount)
	households.POST("/cycle/:cycleKey/undo", progressHandler.Undo)
	households.POST("/cycle/:cycleKey/redo", progressHandler.Redo)

	households.GET("/incomes", incomeHandler.List)
	households.POST("/incomes", incomeHandler.Create)
	households.PUT("/incomes/:id", incomeHandler.Update)
	households.DELETE("/incomes/:id", incomeHandler.Delete)

	households.GET("/costs", costHandler.List)
	households.POST("/costs", costHandler.Create)
	households.PUT("/costs/:id", costHandler.Update)
	households.DELETE("/costs/:id", costHandler.Delete)
	households.POST("/entries", costHandler.CreateOneOff)

	households.GET("/obligations", obligationHandler.List)
	households.GET("/accounts", obligationHandler.ListAccounts)

	households.GET("/events/stream", notificationHandler.Stream)
}
