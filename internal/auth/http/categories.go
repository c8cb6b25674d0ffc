package http

import (
	"net/http"

	"github.com/aussiebroadwan/tollgate/internal/auth/domain"
	"github.com/aussiebroadwan/tollgate/internal/auth/service"
	"github.com/aussiebroadwan/tollgate/pkg/authsdk"
	"github.com/aussiebroadwan/tollgate/pkg/httpx"
)

type CategoriesHandler struct {
	AuthService *service.AuthService
}

func toSDKCategory(c domain.Category) authsdk.Category {
	return authsdk.Category{ID: c.ID, Name: c.Name, Label: c.Label}
}

// HandleList handles GET /categories
//
//	@Summary		List categories
//	@Tags			Categories
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		authsdk.Category		"Categories ordered by name"
//	@Failure		401	{object}	authsdk.ErrorResponse	"NO_TOKEN"
//	@Failure		403	{object}	authsdk.ErrorResponse	"INVALID_TOKEN"
//	@Failure		500	{object}	authsdk.ErrorResponse	"SERVER_ERROR"
//	@Router			/categories [get].
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.AuthService.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]authsdk.Category, 0, len(list))
	for _, c := range list {
		out = append(out, toSDKCategory(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /categories
//
//	@Summary		Create a category
//	@Description	Admin only. The role is checked before the body is validated.
//	@Tags			Categories
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateCategoryRequest	true	"Category"
//	@Success		201		{object}	authsdk.Category				"Created category"
//	@Failure		400		{object}	authsdk.ErrorResponse			"MISSING_FIELDS, INVALID_JSON"
//	@Failure		401		{object}	authsdk.ErrorResponse			"NO_TOKEN"
//	@Failure		403		{object}	authsdk.ErrorResponse			"INVALID_TOKEN, ROLE_REQUIRED"
//	@Failure		409		{object}	authsdk.ErrorResponse			"CATEGORY_EXISTS"
//	@Failure		500		{object}	authsdk.ErrorResponse			"SERVER_ERROR"
//	@Router			/categories [post].
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(r)
	if !ok {
		writeServiceError(w, r, service.ErrNoToken)
		return
	}

	// Non-admins are refused before their body is even read.
	if err := service.RequireAdmin(sess); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req authsdk.CreateCategoryRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, service.ErrInvalidJSON)
		return
	}

	c, err := h.AuthService.CreateCategory(r.Context(), sess, req.Name, req.Label)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toSDKCategory(c))
}
