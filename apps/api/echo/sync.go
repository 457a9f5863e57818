package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	appsync "github.com/trezcool/malezi/core/sync"
	"github.com/trezcool/malezi/core/user"
)

type syncApi struct {
	svc    appsync.Service
	usrSvc user.Service
}

func registerSyncAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc appsync.Service, usrSvc user.Service) {
	api := syncApi{
		svc:    svc,
		usrSvc: usrSvc,
	}

	sg := g.Group("/sync", jwt)
	sg.POST("", api.replay)
	sg.GET("/history", api.history)
}

type SyncRequest struct {
	Operations []appsync.Operation `json:"operations"`
}

type SyncResponse struct {
	Results []appsync.Result `json:"results"`
}

func (api *syncApi) replay(ctx echo.Context) error {
	var data SyncRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SyncRequest")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	results, err := api.svc.Replay(ctx.Request().Context(), ctxUsr, data.Operations)
	if err != nil {
		return errors.Wrap(err, "replaying operations")
	}
	if results == nil {
		results = []appsync.Result{}
	}
	return ctx.JSON(http.StatusOK, SyncResponse{Results: results})
}

func (api *syncApi) history(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	entries, err := api.svc.History(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying sync history")
	}
	if entries == nil {
		entries = []appsync.LogEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}
