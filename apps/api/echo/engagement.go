package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core/engagement"
)

type engagementApi struct {
	svc      engagement.Service
	validate *validator.Validate
}

func registerEngagementAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc engagement.Service, validate *validator.Validate) {
	api := engagementApi{svc: svc, validate: validate}

	g.GET("/contracts/:id/engagements", api.queryByContract, jwt)

	eg := g.Group("/engagements", jwt)
	eg.POST("", api.create)

	dg := eg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/cancel", api.cancel)
}

// Handlers

func (api *engagementApi) create(ctx echo.Context) error {
	var data engagement.NewEngagement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEngagement")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *engagementApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	e, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *engagementApi) queryByContract(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	engagements, err := api.svc.QueryByContract(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, engagements)
}

func (api *engagementApi) cancel(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	e, err := api.svc.Cancel(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}
