package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core/mediation"
)

type mediationApi struct {
	svc      mediation.Service
	validate *validator.Validate
}

func registerMediationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc mediation.Service, validate *validator.Validate) {
	api := mediationApi{svc: svc, validate: validate}

	g.GET("/students/:id/subjects", api.queryByStudent, jwt)

	sg := g.Group("/subjects", jwt)
	sg.POST("", api.createSubject)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieveSubject)
	dg.DELETE("", api.deleteSubject, adminMiddleware())
	dg.POST("/stages", api.recordStage)
	dg.GET("/stages", api.stageHistory)
	dg.GET("/stage", api.currentStage)
	dg.GET("/engagement", api.resolveEngagement)
}

// Handlers

func (api *mediationApi) createSubject(ctx echo.Context) error {
	var data mediation.NewStudentSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudentSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ss, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student subject")
	}
	return ctx.JSON(http.StatusCreated, ss)
}

func (api *mediationApi) retrieveSubject(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	ss, err := api.svc.GetSubject(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ss)
}

func (api *mediationApi) queryByStudent(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.QueryByStudent(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *mediationApi) recordStage(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data mediation.RecordStageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordStageRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, err := api.svc.RecordStage(ctx.Request().Context(), id, data.Type, contextActor(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *mediationApi) currentStage(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	st, err := api.svc.CurrentStage(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *mediationApi) stageHistory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	stages, err := api.svc.StageHistory(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stages)
}

func (api *mediationApi) resolveEngagement(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	e, err := api.svc.ResolveEngagement(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	if e == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *mediationApi) deleteSubject(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSubject(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
