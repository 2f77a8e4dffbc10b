// internal/app/features/users/handler.go
package usersfeature

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/stratashop/internal/app/features/errors"
	userstore "github.com/dalemusser/stratashop/internal/app/store/users"
	"github.com/dalemusser/stratashop/internal/app/system/authutil"
	"github.com/dalemusser/stratashop/internal/app/system/jsonutil"
	"github.com/dalemusser/stratashop/internal/app/system/timeouts"
	"github.com/dalemusser/stratashop/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler handles console account HTTP requests.
type Handler struct {
	Users  *userstore.Store
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

// NewHandler creates a new users handler.
func NewHandler(users *userstore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		ErrLog: errLog,
		Log:    logger,
	}
}

// fieldFor names the request field an authutil validation error belongs to.
func fieldFor(err error) (string, bool) {
	switch {
	case errors.Is(err, authutil.ErrNameRequired):
		return "name", true
	case errors.Is(err, authutil.ErrEmailRequired), errors.Is(err, authutil.ErrInvalidEmail):
		return "email", true
	case errors.Is(err, authutil.ErrInvalidRole):
		return "role", true
	case errors.Is(err, authutil.ErrPasswordRequired),
		errors.Is(err, authutil.ErrPasswordTooShort),
		errors.Is(err, authutil.ErrPasswordTooLong),
		errors.Is(err, authutil.ErrPasswordCommon):
		return "password", true
	}
	return "", false
}

// validate runs authutil.ValidateUser and writes the error response if it fails.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request, in userInput, isEdit bool) (*authutil.UserResult, bool) {
	res, err := authutil.ValidateUser(authutil.UserInput{
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
		Password: in.Password,
		IsEdit:   isEdit,
	})
	if err == nil {
		return res, true
	}
	if field, ok := fieldFor(err); ok {
		jsonutil.ValidationError(w, map[string]string{field: err.Error()})
		return nil, false
	}
	h.ErrLog.Log(r, "failed to prepare user", err)
	jsonutil.InternalError(w, "failed to save user")
	return nil, false
}

// List handles GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.ErrLog.Log(r, "failed to list users", err)
		jsonutil.InternalError(w, "failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	jsonutil.OK(w, users)
}

// Create handles POST /api/users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	res, ok := h.validate(w, r, in, false)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         res.Name,
		Email:        res.Email,
		Role:         res.Role,
		PasswordHash: res.PasswordHash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		jsonutil.Conflict(w, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.Log(r, "failed to create user", err)
		jsonutil.InternalError(w, "failed to save user")
		return
	}

	h.Log.Info("user created", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	jsonutil.Created(w, u)
}

// Update handles PUT /api/users/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	var in userInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	res, ok := h.validate(w, r, in, true)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Users.Update(ctx, id, userstore.UserUpdate{
		Name:         res.Name,
		Email:        res.Email,
		Role:         res.Role,
		PasswordHash: res.PasswordHash,
	})
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		jsonutil.NotFound(w, "user not found")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		jsonutil.Conflict(w, err.Error())
		return
	case err != nil:
		h.ErrLog.Log(r, "failed to update user", err)
		jsonutil.InternalError(w, "failed to save user")
		return
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Log(r, "failed to reload user", err)
		jsonutil.InternalError(w, "failed to load user")
		return
	}
	jsonutil.OK(w, u)
}
