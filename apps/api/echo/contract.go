package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core/contract"
)

type contractApi struct {
	svc      contract.Service
	validate *validator.Validate
}

func registerContractAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc contract.Service, validate *validator.Validate) {
	api := contractApi{svc: svc, validate: validate}

	g.GET("/students/:id/contracts", api.queryByStudent, jwt)

	cg := g.Group("/contracts", jwt)
	cg.POST("", api.create)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/resend-link", api.resendLink)
	dg.PUT("/min-lessons", api.updateMinLessons)
	dg.POST("/cancel", api.cancel, adminMiddleware())
}

// Handlers

func (api *contractApi) create(ctx echo.Context) error {
	var data contract.NewContract
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContract")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data, contextActor(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *contractApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contractApi) queryByStudent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	contracts, err := api.svc.QueryByStudent(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, contracts)
}

func (api *contractApi) resendLink(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.ResendSigningLink(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusAccepted)
}

func (api *contractApi) updateMinLessons(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data contract.UpdateMinimumLessons
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMinimumLessons")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.UpdateMinLessons(ctx.Request().Context(), id, data.MinLessonsPerMonth)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contractApi) cancel(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Cancel(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}
