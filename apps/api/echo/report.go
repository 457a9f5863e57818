package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/report"
	"github.com/trezcool/malezi/core/shift"
	"github.com/trezcool/malezi/core/user"
)

type reportApi struct {
	svc    report.Service
	usrSvc user.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc report.Service, usrSvc user.Service) {
	api := reportApi{
		svc:    svc,
		usrSvc: usrSvc,
	}

	rg := g.Group("/reports", jwt, adminMiddleware())
	rg.GET("/overview", api.overview)
	rg.GET("/hours", api.hours)
}

type reportWindow struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

func (api *reportApi) overview(ctx echo.Context) error {
	var win reportWindow
	if err := ctx.Bind(&win); err != nil {
		return errors.Wrap(err, "binding to reportWindow")
	}

	ov, err := api.svc.Overview(ctx.Request().Context(), win.From, win.To)
	if err != nil {
		return errors.Wrap(err, "building overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *reportApi) hours(ctx echo.Context) error {
	var win reportWindow
	if err := ctx.Bind(&win); err != nil {
		return errors.Wrap(err, "binding to reportWindow")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	totals, err := api.svc.Hours(ctx.Request().Context(), ctxUsr, win.From, win.To)
	if err != nil {
		return errors.Wrap(err, "aggregating hours")
	}
	if totals == nil {
		totals = []shift.Total{}
	}
	return ctx.JSON(http.StatusOK, totals)
}
