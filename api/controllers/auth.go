package controllers

import (
	"net/http"

	"github.com/kunalverma/groupbuy-backend/api/responses"
	"github.com/kunalverma/groupbuy-backend/api/validators"
	"github.com/kunalverma/groupbuy-backend/internal/auth"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
)

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Code  string `json:"code" validate:"required"`
}

// SendOTP starts a phone login by issuing a one-time code.
func SendOTP(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body sendOTPRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendOTP(r.Context(), body.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// VerifyOTP exchanges a one-time code for an access token.
func VerifyOTP(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body verifyOTPRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyOTP(r.Context(), body.Phone, body.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
