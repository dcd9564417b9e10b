package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/api/middleware"
	"github.com/kunalverma/groupbuy-backend/api/responses"
	"github.com/kunalverma/groupbuy-backend/api/validators"
	"github.com/kunalverma/groupbuy-backend/internal/payments"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
)

type recordPaymentRequest struct {
	OrderItemID     uuid.UUID       `json:"order_item_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Method          string          `json:"method" validate:"required"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

type disputePaymentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type resolveDisputeRequest struct {
	Note   string `json:"note" validate:"required"`
	Refund bool   `json:"refund"`
}

// RecordPayment registers a collected payment and starts its lock window.
// Operator endpoint: money is recorded by an admin, never by the retailer.
func RecordPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body recordPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Record(r.Context(), payments.RecordPaymentInput{
			OrderItemID:     body.OrderItemID,
			Amount:          body.Amount,
			Method:          body.Method,
			ReferenceNumber: body.ReferenceNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// MyPayments lists the caller's payments, sweeping expired locks first.
func MyPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		items, err := svc.ListMine(r.Context(), middleware.PhoneFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"payments": items})
	}
}

// GetPayment returns one payment by id, scoped to the caller's retailer.
// Operators see every payment.
func GetPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		phone := middleware.PhoneFromContext(r.Context())
		if middleware.IsAdminFromContext(r.Context()) {
			phone = ""
		}
		payment, err := svc.Get(r.Context(), phone, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// DisputePayment raises a dispute inside the lock window.
func DisputePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body disputePaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.RaiseDispute(r.Context(), middleware.PhoneFromContext(r.Context()), id, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// AdminListPayments returns payments across retailers for operators.
func AdminListPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var filters payments.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("retailer_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid retailer_id"))
				return
			}
			filters.RetailerID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("supplier_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier_id"))
				return
			}
			filters.SupplierID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		items, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"payments": items})
	}
}

// ResolveDispute settles a disputed payment by release or refund.
func ResolveDispute(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body resolveDisputeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Resolve(r.Context(), id, body.Note, body.Refund)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
