package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/request"
	"github.com/trezcool/kazi/core/user"
)

type requestApi struct {
	svc    request.Service
	usrSvc user.Service
}

func registerRequestAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc request.Service, usrSvc user.Service) {
	api := requestApi{svc: svc, usrSvc: usrSvc}

	rg := g.Group("/requests", jwt)
	rg.POST("", api.create)
	rg.GET("", api.query)
	rg.GET("/all", api.queryAll, policyMiddleware(user.ResourceRequest, user.ActionReadAll))

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/confirm", api.confirm, policyMiddleware(user.ResourceRequest, user.ActionConfirm))
	dg.POST("/approve", api.approve, policyMiddleware(user.ResourceRequest, user.ActionApprove))
	dg.POST("/reject", api.reject, policyMiddleware(user.ResourceRequest, user.ActionReject))
	dg.POST("/cancel", api.cancel)
}

// Handlers

func (api *requestApi) create(ctx echo.Context) error {
	var data request.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req, err := api.svc.Create(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

// query returns the calling user's own requests.
func (api *requestApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return api.doQuery(ctx, ctxUsr.ID)
}

// queryAll returns any user's requests; reviewer roles only.
func (api *requestApi) queryAll(ctx echo.Context) error {
	return api.doQuery(ctx, ctx.QueryParam("user_id"))
}

func (api *requestApi) doQuery(ctx echo.Context, userID string) error {
	filter := new(request.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []request.Request{})
	}
	filter.UserID = userID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	reqs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	if reqs == nil {
		reqs = []request.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *requestApi) retrieve(ctx echo.Context) error {
	req, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == request.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting request")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	// owners see their own requests; reviewer roles see everyone's
	if req.UserID != ctxUsr.ID && !user.Allowed(user.ResourceRequest, user.ActionReadAll, ctxUsr.Roles) {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *requestApi) confirm(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Confirm, "confirming request")
}

func (api *requestApi) approve(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Approve, "approving request")
}

func (api *requestApi) reject(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Reject, "rejecting request")
}

func (api *requestApi) cancel(ctx echo.Context) error {
	return api.decide(ctx, api.svc.Cancel, "cancelling request")
}

func (api *requestApi) decide(
	ctx echo.Context,
	fn func(c context.Context, actor user.User, id string, d request.Decision) (request.Request, error),
	wrapMsg string,
) error {
	var data request.Decision
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req, err := fn(ctx.Request().Context(), ctxUsr, ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case request.ErrNotFound:
			return errHttpNotFound
		case request.ErrNotOwner:
			return errHttpForbidden
		}
		return errors.Wrap(err, wrapMsg)
	}
	return ctx.JSON(http.StatusOK, req)
}
