package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/milestone"
	"github.com/trezcool/malezi/core/user"
)

type milestoneApi struct {
	svc    milestone.Service
	usrSvc user.Service
}

func registerMilestoneAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc milestone.Service, usrSvc user.Service) {
	api := milestoneApi{
		svc:    svc,
		usrSvc: usrSvc,
	}

	mg := g.Group("/milestones", jwt)
	mg.POST("", api.create, adminMiddleware())
	mg.GET("", api.query)
	mg.GET("/:id", api.retrieve)

	cg := g.Group("/children/:id", jwt)
	cg.POST("/achievements", api.recordAchievement)
	cg.GET("/achievements", api.queryAchievements)
	cg.GET("/progress", api.progress)

	g.DELETE("/achievements/:id", api.removeAchievement, jwt)
}

func (api *milestoneApi) create(ctx echo.Context) error {
	var data milestone.NewMilestone
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMilestone")
	}

	m, err := api.svc.CreateMilestone(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating milestone")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *milestoneApi) query(ctx echo.Context) error {
	var filter milestone.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	var ord Ordering
	ord.Bind(ctx)

	ms, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying milestones")
	}
	if ms == nil {
		ms = []milestone.Milestone{}
	}
	return ctx.JSON(http.StatusOK, ms)
}

func (api *milestoneApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding milestone")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *milestoneApi) recordAchievement(ctx echo.Context) error {
	var data milestone.NewAchievement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAchievement")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ach, err := api.svc.RecordAchievement(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "recording achievement")
	}
	return ctx.JSON(http.StatusCreated, ach)
}

func (api *milestoneApi) queryAchievements(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	achs, err := api.svc.AchievementsFor(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying achievements")
	}
	if achs == nil {
		achs = []milestone.Achievement{}
	}
	return ctx.JSON(http.StatusOK, achs)
}

func (api *milestoneApi) progress(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	prog, err := api.svc.ProgressFor(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *milestoneApi) removeAchievement(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.RemoveAchievement(ctx.Request().Context(), ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing achievement")
	}
	return ctx.NoContent(http.StatusNoContent)
}
