package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/shift"
	"github.com/trezcool/malezi/core/user"
)

type shiftApi struct {
	svc    shift.Service
	usrSvc user.Service
}

func registerShiftAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc shift.Service, usrSvc user.Service) {
	api := shiftApi{
		svc:    svc,
		usrSvc: usrSvc,
	}

	sg := g.Group("/shifts", jwt)
	sg.POST("/clock-in", api.clockIn)
	sg.POST("/clock-out", api.clockOut)
	sg.GET("", api.query)
	sg.GET("/totals", api.totals)
	sg.GET("/:id", api.retrieve)
}

func (api *shiftApi) clockIn(ctx echo.Context) error {
	var data shift.ClockIn
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClockIn")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	s, err := api.svc.ClockIn(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "clocking in")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *shiftApi) clockOut(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	s, err := api.svc.ClockOut(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "clocking out")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *shiftApi) query(ctx echo.Context) error {
	var filter shift.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	shifts, err := api.svc.Query(ctx.Request().Context(), ctxUsr, filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying shifts")
	}
	if shifts == nil {
		shifts = []shift.Shift{}
	}
	return ctx.JSON(http.StatusOK, shifts)
}

func (api *shiftApi) totals(ctx echo.Context) error {
	var filter shift.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	totals, err := api.svc.Totals(ctx.Request().Context(), ctxUsr, filter)
	if err != nil {
		return errors.Wrap(err, "computing totals")
	}
	if totals == nil {
		totals = []shift.Total{}
	}
	return ctx.JSON(http.StatusOK, totals)
}

func (api *shiftApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	s, err := api.svc.GetByID(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding shift")
	}
	return ctx.JSON(http.StatusOK, s)
}
