package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/moderation"
	"github.com/trezcool/malezi/core/user"
)

type moderationApi struct {
	svc    moderation.Service
	usrSvc user.Service
}

func registerModerationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc moderation.Service, usrSvc user.Service) {
	api := moderationApi{
		svc:    svc,
		usrSvc: usrSvc,
	}

	fg := g.Group("/flags", jwt)
	fg.POST("", api.flag) // any authenticated user can report content
	fg.GET("", api.pending, moderatorMiddleware())
	fg.GET("/:id", api.retrieve, moderatorMiddleware())
	fg.POST("/:id/resolve", api.resolve, moderatorMiddleware())
}

func (api *moderationApi) flag(ctx echo.Context) error {
	var data moderation.NewFlag
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFlag")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	flag, err := api.svc.Flag(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "flagging content")
	}
	return ctx.JSON(http.StatusCreated, flag)
}

func (api *moderationApi) pending(ctx echo.Context) error {
	flags, err := api.svc.Pending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying pending flags")
	}
	if flags == nil {
		flags = []moderation.Flag{}
	}
	return ctx.JSON(http.StatusOK, flags)
}

func (api *moderationApi) retrieve(ctx echo.Context) error {
	flag, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding flag")
	}
	return ctx.JSON(http.StatusOK, flag)
}

func (api *moderationApi) resolve(ctx echo.Context) error {
	var data moderation.ResolveFlag
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResolveFlag")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	flag, err := api.svc.Resolve(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "resolving flag")
	}
	return ctx.JSON(http.StatusOK, flag)
}
