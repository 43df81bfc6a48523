package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/directory"
	"github.com/trezcool/kazi/core/user"
)

type directoryApi struct {
	svc directory.Service
}

func registerDirectoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc directory.Service) {
	api := directoryApi{svc: svc}

	dg := g.Group("/directory", jwt, policyMiddleware(user.ResourceDirectory, user.ActionManage))

	gg := dg.Group("/groups")
	gg.POST("", api.createGroup)
	gg.GET("", api.queryGroups)
	gg.GET("/:id", api.retrieveGroup)
	gg.PUT("/:id", api.updateGroup)
	gg.DELETE("/:id", api.destroyGroup)

	tg := dg.Group("/device-types")
	tg.POST("", api.createDeviceType)
	tg.GET("", api.queryDeviceTypes)
	tg.GET("/:id", api.retrieveDeviceType)
	tg.PUT("/:id", api.updateDeviceType)
	tg.DELETE("/:id", api.destroyDeviceType)

	cg := dg.Group("/contracts")
	cg.POST("", api.createContract)
	cg.GET("", api.queryContracts)
	cg.GET("/:id", api.retrieveContract)
	cg.PUT("/:id", api.updateContract)
	cg.DELETE("/:id", api.destroyContract)
}

// Group handlers

func (api *directoryApi) createGroup(ctx echo.Context) error {
	var data directory.GroupInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GroupInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	g, err := api.svc.CreateGroup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *directoryApi) queryGroups(ctx echo.Context) error {
	groups, err := api.svc.QueryGroups(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []directory.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *directoryApi) retrieveGroup(ctx echo.Context) error {
	g, err := api.svc.GetGroup(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting group")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *directoryApi) updateGroup(ctx echo.Context) error {
	var data directory.GroupInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GroupInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	g, err := api.svc.UpdateGroup(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *directoryApi) destroyGroup(ctx echo.Context) error {
	if err := api.svc.DeleteGroup(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DeviceType handlers

func (api *directoryApi) createDeviceType(ctx echo.Context) error {
	var data directory.DeviceTypeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeviceTypeInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	dt, err := api.svc.CreateDeviceType(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating device type")
	}
	return ctx.JSON(http.StatusCreated, dt)
}

func (api *directoryApi) queryDeviceTypes(ctx echo.Context) error {
	dts, err := api.svc.QueryDeviceTypes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying device types")
	}
	if dts == nil {
		dts = []directory.DeviceType{}
	}
	return ctx.JSON(http.StatusOK, dts)
}

func (api *directoryApi) retrieveDeviceType(ctx echo.Context) error {
	dt, err := api.svc.GetDeviceType(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting device type")
	}
	return ctx.JSON(http.StatusOK, dt)
}

func (api *directoryApi) updateDeviceType(ctx echo.Context) error {
	var data directory.DeviceTypeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeviceTypeInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	dt, err := api.svc.UpdateDeviceType(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating device type")
	}
	return ctx.JSON(http.StatusOK, dt)
}

func (api *directoryApi) destroyDeviceType(ctx echo.Context) error {
	if err := api.svc.DeleteDeviceType(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting device type")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Contract handlers

func (api *directoryApi) createContract(ctx echo.Context) error {
	var data directory.ContractInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ContractInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.CreateContract(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating contract")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *directoryApi) queryContracts(ctx echo.Context) error {
	cs, err := api.svc.QueryContracts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying contracts")
	}
	if cs == nil {
		cs = []directory.Contract{}
	}
	return ctx.JSON(http.StatusOK, cs)
}

func (api *directoryApi) retrieveContract(ctx echo.Context) error {
	c, err := api.svc.GetContract(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting contract")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *directoryApi) updateContract(ctx echo.Context) error {
	var data directory.ContractInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ContractInput")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.UpdateContract(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == directory.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating contract")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *directoryApi) destroyContract(ctx echo.Context) error {
	if err := api.svc.DeleteContract(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting contract")
	}
	return ctx.NoContent(http.StatusNoContent)
}
