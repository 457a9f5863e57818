package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/observation"
	"github.com/trezcool/malezi/core/user"
)

type observationApi struct {
	svc    observation.Service
	usrSvc user.Service
}

func registerObservationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc observation.Service, usrSvc user.Service) {
	api := observationApi{
		svc:    svc,
		usrSvc: usrSvc,
	}

	og := g.Group("/observations", jwt)
	og.POST("", api.create)
	og.GET("", api.query)
	og.GET("/:id", api.retrieve)
	og.PUT("/:id", api.update)
	og.DELETE("/:id", api.destroy)
}

func (api *observationApi) create(ctx echo.Context) error {
	var data observation.NewObservation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewObservation")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	obs, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating observation")
	}
	return ctx.JSON(http.StatusCreated, obs)
}

func (api *observationApi) query(ctx echo.Context) error {
	var filter observation.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	obs, err := api.svc.Query(ctx.Request().Context(), ctxUsr, filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying observations")
	}
	if obs == nil {
		obs = []observation.Observation{}
	}
	return ctx.JSON(http.StatusOK, obs)
}

func (api *observationApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	obs, err := api.svc.GetByID(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding observation")
	}
	return ctx.JSON(http.StatusOK, obs)
}

func (api *observationApi) update(ctx echo.Context) error {
	var data observation.UpdateObservation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateObservation")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	obs, err := api.svc.Update(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating observation")
	}
	return ctx.JSON(http.StatusOK, obs)
}

func (api *observationApi) destroy(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting observation")
	}
	return ctx.NoContent(http.StatusNoContent)
}
