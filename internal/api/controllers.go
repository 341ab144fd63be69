package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/twiddle/internal/persistence"
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/qdm12/reprint"
)

type DeleteResult struct {
	Deleted int `json:"deleted"`
}

func registerControllerEndpoints(rest *echo.Echo, pers persistence.Persistence) {
	group := rest.Group("/controller")

	group.GET("/", getControllers)
	group.GET("/:"+urlParamId+"/", getController)
	group.GET("/:"+urlParamId+"/report/", getControllerReport)
	group.GET("/:"+urlParamId+"/history/", func(c echo.Context) error {
		return getControllerHistory(c, pers)
	})
	group.DELETE("/:"+urlParamId+"/history/", func(c echo.Context) error {
		return deleteControllerHistory(c, pers)
	})
}

func getControllers(c echo.Context) error {
	snapshots := map[string]tuning.Snapshot{}
	for id, session := range tuning.SessionMap.Items() {
		snapshots[id] = session.Snapshot()
	}
	data := reprint.This(snapshots)
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getController(c echo.Context) error {
	id := c.Param(urlParamId)
	session, exists := tuning.SessionMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	} else {
		return c.JSONPretty(http.StatusOK, session.Snapshot(), indentationChar)
	}
}

func getControllerReport(c echo.Context) error {
	id := c.Param(urlParamId)
	session, exists := tuning.SessionMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	report := session.Report()
	if c.QueryParam("windows") == "false" {
		report.Windows = nil
	}
	return c.JSONPretty(http.StatusOK, report, indentationChar)
}

// returns all stored reports of a controller, oldest first
func getControllerHistory(c echo.Context, pers persistence.Persistence) error {
	id := c.Param(urlParamId)
	reports, err := pers.LoadReports(id)
	if errors.Is(err, os.ErrNotExist) {
		return returnNotFound(c, id)
	} else if err != nil {
		return returnError(c, err)
	}
	if c.QueryParam("windows") == "false" {
		for i := range reports {
			reports[i].Windows = nil
		}
	}
	return c.JSONPretty(http.StatusOK, reports, indentationChar)
}

// deletes all stored reports of a controller
func deleteControllerHistory(c echo.Context, pers persistence.Persistence) error {
	deleted, err := pers.DeleteReports(c.Param(urlParamId))
	if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, &DeleteResult{Deleted: deleted}, indentationChar)
}
