package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cosmico/webinar/internal/app"
	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/store"
	"github.com/labstack/echo/v5"
)

type RunsController struct {
	App *app.Context
}

func (ctrl *RunsController) List(c *echo.Context) error {
	if ctrl.App.History == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "history store is disabled"})
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = n
	}

	runs, err := ctrl.App.History.ListRuns(c.Request().Context(), limit)
	if err != nil {
		ctrl.App.Logger.Error("Listing runs: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list runs"})
	}
	if runs == nil {
		runs = []*domain.Run{}
	}
	return c.JSON(http.StatusOK, RunList{Runs: runs})
}

// Get returns one run with the outcome of each of its jobs.
func (ctrl *RunsController) Get(c *echo.Context) error {
	if ctrl.App.History == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "history store is disabled"})
	}

	id := c.Param("id")
	ctx := c.Request().Context()

	run, err := ctrl.App.History.GetRun(ctx, id)
	if errors.Is(err, store.ErrRunNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "run not found"})
	}
	if err != nil {
		ctrl.App.Logger.Error("Fetching run %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch run"})
	}

	results, err := ctrl.App.History.GetResults(ctx, id)
	if err != nil {
		ctrl.App.Logger.Error("Fetching results of run %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch results"})
	}
	if results == nil {
		results = []*domain.JobResult{}
	}

	return c.JSON(http.StatusOK, RunDetail{Run: run, Results: results})
}
