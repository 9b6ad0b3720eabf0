package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/lernwerk/backoffice/core/student"
)

type studentApi struct {
	svc      student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc student.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/status", api.setStatus)
	dg.GET("/status-history", api.statusHistory)
	dg.GET("/suggested-status", api.suggestedStatus)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) setStatus(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data student.StatusChangeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusChangeRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.SetStatus(ctx.Request().Context(), id, data.Status, contextActor(ctx), data.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) statusHistory(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	changes, err := api.svc.StatusHistory(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, changes)
}

// suggestedStatus serves the advisory next status for UI dropdowns. Not
// every status has one; those answer 204.
func (api *studentApi) suggestedStatus(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	next, ok := student.SuggestedNext(s.Status)
	if !ok {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, echo.Map{"suggested_status": next})
}

// pathID parses the ":id" path param; a malformed one reads as "no such
// resource" rather than a binding error.
func pathID(ctx echo.Context, names ...string) (int, error) {
	name := "id"
	if len(names) > 0 {
		name = names[0]
	}
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
