package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kunalverma/groupbuy-backend/api/middleware"
	"github.com/kunalverma/groupbuy-backend/api/responses"
	"github.com/kunalverma/groupbuy-backend/api/validators"
	"github.com/kunalverma/groupbuy-backend/internal/retailers"
	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/pagination"
	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

type registerRetailerRequest struct {
	Phone    string         `json:"phone" validate:"required,e164"`
	Name     string         `json:"name" validate:"required"`
	ShopName string         `json:"shop_name" validate:"required"`
	Address  string         `json:"address" validate:"required"`
	Location types.Location `json:"location"`
}

type updateRetailerRequest struct {
	Name     *string         `json:"name,omitempty"`
	ShopName *string         `json:"shop_name,omitempty"`
	Address  *string         `json:"address,omitempty"`
	Location *types.Location `json:"location,omitempty"`
}

// RegisterRetailer creates the retailer profile for the authenticated phone.
func RegisterRetailer(svc retailers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "retailers service unavailable"))
			return
		}

		var body registerRetailerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Register(r.Context(), retailers.RegisterInput{
			TokenPhone: middleware.PhoneFromContext(r.Context()),
			Phone:      body.Phone,
			Name:       body.Name,
			ShopName:   body.ShopName,
			Address:    body.Address,
			Location:   body.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, profile)
	}
}

// MyProfile returns the caller's retailer profile with zone assignments.
func MyProfile(svc retailers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "retailers service unavailable"))
			return
		}

		profile, err := svc.Me(r.Context(), middleware.PhoneFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// UpdateMyProfile applies partial edits to the caller's profile.
func UpdateMyProfile(svc retailers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "retailers service unavailable"))
			return
		}

		var body updateRetailerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpdateProfile(r.Context(), middleware.PhoneFromContext(r.Context()), retailers.UpdateInput{
			Name:     body.Name,
			ShopName: body.ShopName,
			Address:  body.Address,
			Location: body.Location,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// MyZones lists the zones the caller was assigned at registration.
func MyZones(svc retailers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "retailers service unavailable"))
			return
		}

		zones, err := svc.MyZones(r.Context(), middleware.PhoneFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"zones": zones})
	}
}

// AdminListRetailers returns a paginated retailer listing for operators.
func AdminListRetailers(svc retailers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "retailers service unavailable"))
			return
		}

		params := pagination.Params{}
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		items, next, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := struct {
			Items  []models.Retailer `json:"items"`
			Cursor string            `json:"cursor,omitempty"`
		}{Items: items}
		if next != nil {
			resp.Cursor = pagination.EncodeCursor(*next)
		}
		responses.WriteSuccess(w, resp)
	}
}
