package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/attendance"
	"github.com/trezcool/kazi/core/user"
)

type attendanceApi struct {
	svc    attendance.Service
	usrSvc user.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service, usrSvc user.Service) {
	api := attendanceApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("/attendance", jwt)
	ag.POST("/check-in", api.checkIn)
	ag.POST("/check-out", api.checkOut)
	ag.GET("/today", api.today)
	ag.GET("", api.query)
	ag.GET("/all", api.queryAll, policyMiddleware(user.ResourceAttendance, user.ActionReadAll))
}

// Handlers

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	var data attendance.CheckInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, err := api.svc.CheckIn(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "checking in")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) checkOut(ctx echo.Context) error {
	var data attendance.CheckInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, err := api.svc.CheckOut(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "checking out")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) today(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, err := api.svc.Today(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting today's record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

// query returns the calling user's own attendance history.
func (api *attendanceApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return api.doQuery(ctx, ctxUsr.ID)
}

// queryAll returns any user's attendance history; reviewer roles only.
func (api *attendanceApi) queryAll(ctx echo.Context) error {
	return api.doQuery(ctx, ctx.QueryParam("user_id"))
}

func (api *attendanceApi) doQuery(ctx echo.Context, userID string) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Record{})
	}
	filter.UserID = userID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}
