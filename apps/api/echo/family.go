package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/child"
	"github.com/trezcool/malezi/core/user"
)

type familyApi struct {
	svc      child.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerFamilyAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc child.Service, usrSvc user.Service, validate *validator.Validate) {
	api := familyApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	fg := g.Group("/families", jwt)
	fg.POST("", api.createFamily)
	fg.GET("", api.queryFamilies)
	fg.GET("/:id", api.retrieveFamily)
	fg.GET("/:id/members", api.queryMembers)
	fg.POST("/:id/members", api.addMember)
	fg.DELETE("/:id/members/:userID", api.removeMember)
	fg.POST("/:id/nannies", api.assignNanny, adminMiddleware())
	fg.DELETE("/:id/nannies/:nannyID", api.unassignNanny, adminMiddleware())

	cg := g.Group("/children", jwt)
	cg.POST("", api.createChild)
	cg.GET("", api.queryChildren)
	cg.GET("/:id", api.retrieveChild)
	cg.PUT("/:id", api.updateChild)
	cg.DELETE("/:id", api.destroyChild)
}

// Family handlers

func (api *familyApi) createFamily(ctx echo.Context) error {
	var data child.NewFamily
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFamily")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fam, err := api.svc.CreateFamily(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating family")
	}
	return ctx.JSON(http.StatusCreated, fam)
}

func (api *familyApi) queryFamilies(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fams, err := api.svc.QueryFamilies(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying families")
	}
	if fams == nil {
		fams = []child.Family{}
	}
	return ctx.JSON(http.StatusOK, fams)
}

func (api *familyApi) retrieveFamily(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fam, err := api.svc.GetFamily(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding family")
	}
	return ctx.JSON(http.StatusOK, fam)
}

func (api *familyApi) queryMembers(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	members, err := api.svc.Members(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []child.Membership{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *familyApi) addMember(ctx echo.Context) error {
	var data child.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.AddMember(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data); err != nil {
		return errors.Wrap(err, "adding member")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *familyApi) removeMember(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.RemoveMember(ctx.Request().Context(), ctxUsr, ctx.Param("id"), ctx.Param("userID")); err != nil {
		return errors.Wrap(err, "removing member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *familyApi) assignNanny(ctx echo.Context) error {
	var data AssignNannyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignNannyRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.AssignNanny(ctx.Request().Context(), ctx.Param("id"), data.NannyID); err != nil {
		return errors.Wrap(err, "assigning nanny")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *familyApi) unassignNanny(ctx echo.Context) error {
	if err := api.svc.UnassignNanny(ctx.Request().Context(), ctx.Param("id"), ctx.Param("nannyID")); err != nil {
		return errors.Wrap(err, "unassigning nanny")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Child handlers

func (api *familyApi) createChild(ctx echo.Context) error {
	var data child.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	chd, err := api.svc.CreateChild(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating child")
	}
	return ctx.JSON(http.StatusCreated, chd)
}

func (api *familyApi) queryChildren(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	children, err := api.svc.QueryChildren(ctx.Request().Context(), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	if children == nil {
		children = []child.Child{}
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *familyApi) retrieveChild(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	chd, err := api.svc.GetChild(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding child")
	}
	return ctx.JSON(http.StatusOK, chd)
}

func (api *familyApi) updateChild(ctx echo.Context) error {
	var data child.UpdateChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChild")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	orig, err := api.svc.GetChild(ctx.Request().Context(), ctxUsr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding child")
	}
	if err = data.Validate(api.validate, orig); err != nil {
		return err
	}

	chd, err := api.svc.UpdateChild(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating child")
	}
	return ctx.JSON(http.StatusOK, chd)
}

func (api *familyApi) destroyChild(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.DeleteChild(ctx.Request().Context(), ctxUsr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting child")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type AssignNannyRequest struct {
	NannyID string `json:"nanny_id" validate:"required"`
}
