package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "userkeeper/internal/errors"
	"userkeeper/internal/model"
	"userkeeper/internal/service"
)

// dateLayouts are tried in order when parsing loggedInBefore / loggedInAfter.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// UserHandler bundles HTTP handlers.
type UserHandler struct {
	svc    service.UserService
	logger *zap.Logger
	binder *echo.DefaultBinder
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{svc: svc, logger: logger, binder: &echo.DefaultBinder{}}
}

// respond writes the envelope with its code as the HTTP status, or maps a fault to an error body.
func (h *UserHandler) respond(c echo.Context, resp model.Response, err error) error {
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			h.logger.Error("user operation failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err),
			)
		}
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(resp.Code, resp)
}

func (h *UserHandler) bindValid(c echo.Context, dst interface{}) error {
	if err := h.binder.BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidID
	}
	return uint(id), nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s must be an RFC 3339 timestamp or YYYY-MM-DD", apperrors.ErrInvalidQuery, field)
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body service.CreateUserInput true "User payload"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.Response
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var in service.CreateUserInput
	if err := h.bindValid(c, &in); err != nil {
		return err
	}
	resp, err := h.svc.CreateUser(c.Request().Context(), in)
	return h.respond(c, resp, err)
}

// BulkCreateUsers godoc
// @Summary Create many users
// @Description Rows are processed in order; rejected rows are counted, not reported.
// @Tags users
// @Accept json
// @Produce json
// @Param users body []service.CreateUserInput true "User payloads"
// @Success 200 {object} model.Response
// @Failure 400 {object} map[string]string
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/bulk [post]
func (h *UserHandler) BulkCreateUsers(c echo.Context) error {
	var rows []service.CreateUserInput
	if err := h.binder.BindBody(c, &rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.svc.BulkCreateUsers(c.Request().Context(), rows)
	return h.respond(c, resp, err)
}

// GetUser godoc
// @Summary Get active user by id
// @Description message is null when no active user has the id.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.respond(c, model.Response{}, err)
	}
	resp, err := h.svc.GetUserByID(c.Request().Context(), id)
	return h.respond(c, resp, err)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body service.UpdateUserInput true "Fields to change"
// @Success 200 {object} model.Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.respond(c, model.Response{}, err)
	}
	var in service.UpdateUserInput
	if err := h.bindValid(c, &in); err != nil {
		return err
	}
	resp, err := h.svc.UpdateUser(c.Request().Context(), id, in)
	return h.respond(c, resp, err)
}

// DeleteUser godoc
// @Summary Soft-delete user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.respond(c, model.Response{}, err)
	}
	resp, err := h.svc.DeleteUser(c.Request().Context(), id)
	return h.respond(c, resp, err)
}

// ListUsers godoc
// @Summary List active users
// @Tags users
// @Produce json
// @Success 200 {object} model.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	resp, err := h.svc.GetAllUsers(c.Request().Context())
	return h.respond(c, resp, err)
}

// FindUsers godoc
// @Summary Filter users
// @Description eliminated=false selects active users, any other value selects soft-deleted ones.
// @Description When both loggedInBefore and loggedInAfter are given only loggedInAfter applies.
// @Tags users
// @Produce json
// @Param eliminated query string false "true or false"
// @Param name query string false "Substring of the name"
// @Param loggedInBefore query string false "RFC 3339 or YYYY-MM-DD"
// @Param loggedInAfter query string false "RFC 3339 or YYYY-MM-DD"
// @Success 200 {object} model.Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) FindUsers(c echo.Context) error {
	params := c.QueryParams()

	q := service.UserQuery{Name: params.Get("name")}
	if values, ok := params["eliminated"]; ok && len(values) > 0 {
		q.Eliminated = &values[0]
	}

	var err error
	if q.LoggedInBefore, err = parseDate("loggedInBefore", params.Get("loggedInBefore")); err != nil {
		return h.respond(c, model.Response{}, err)
	}
	if q.LoggedInAfter, err = parseDate("loggedInAfter", params.Get("loggedInAfter")); err != nil {
		return h.respond(c, model.Response{}, err)
	}

	resp, err := h.svc.FindUsers(c.Request().Context(), q)
	return h.respond(c, resp, err)
}
