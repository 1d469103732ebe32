package controllers

import (
	"net/http"

	"github.com/cosmico/webinar/internal/app"
	"github.com/labstack/echo/v5"
)

type StatusController struct {
	App *app.Context
}

// Get returns the live board: active downloads and overall progress.
func (ctrl *StatusController) Get(c *echo.Context) error {
	return c.JSON(http.StatusOK, ctrl.App.Board.Snapshot())
}
