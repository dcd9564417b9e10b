package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kunalverma/groupbuy-backend/api/responses"
	"github.com/kunalverma/groupbuy-backend/api/validators"
	"github.com/kunalverma/groupbuy-backend/internal/offers"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
)

type createOfferRequest struct {
	ProductID         uuid.UUID          `json:"product_id" validate:"required"`
	SupplierID        uuid.UUID          `json:"supplier_id" validate:"required"`
	ZoneID            uuid.UUID          `json:"zone_id" validate:"required"`
	QuantitySlabs     []offers.SlabInput `json:"quantity_slabs" validate:"required,min=1"`
	MinFulfillmentQty int                `json:"min_fulfillment_qty" validate:"required,min=1"`
	LeadTimeDays      int                `json:"lead_time_days,omitempty"`
}

type updateOfferRequest struct {
	QuantitySlabs     []offers.SlabInput `json:"quantity_slabs,omitempty"`
	MinFulfillmentQty *int               `json:"min_fulfillment_qty,omitempty"`
	LeadTimeDays      *int               `json:"lead_time_days,omitempty"`
	IsActive          *bool              `json:"is_active,omitempty"`
}

type transitionOfferRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListZoneOffers returns the live offers in one zone, with pricing progress.
func ListZoneOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		zoneID, err := pathUUID(r, "zoneID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListZoneOffers(r.Context(), zoneID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"offers": items})
	}
}

// GetOffer returns one offer with its zone and progress detail.
func GetOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		id, err := pathUUID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		details, err := svc.GetDetails(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, details)
	}
}

// CreateOffer publishes a supplier offer into a zone.
func CreateOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		var body createOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Create(r.Context(), offers.CreateOfferInput{
			ProductID:         body.ProductID,
			SupplierID:        body.SupplierID,
			ZoneID:            body.ZoneID,
			QuantitySlabs:     body.QuantitySlabs,
			MinFulfillmentQty: body.MinFulfillmentQty,
			LeadTimeDays:      body.LeadTimeDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// UpdateOffer edits slabs or thresholds on an existing offer.
func UpdateOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		id, err := pathUUID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Update(r.Context(), id, offers.UpdateOfferInput{
			QuantitySlabs:     body.QuantitySlabs,
			MinFulfillmentQty: body.MinFulfillmentQty,
			LeadTimeDays:      body.LeadTimeDays,
			IsActive:          body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// TransitionOffer moves an offer through its lifecycle.
func TransitionOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		id, err := pathUUID(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transitionOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.TransitionStatus(r.Context(), id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// AdminListOffers returns offers across zones for operators.
func AdminListOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		var filters offers.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("zone_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid zone_id"))
				return
			}
			filters.ZoneID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("supplier_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier_id"))
				return
			}
			filters.SupplierID = &id
		}

		items, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"offers": items})
	}
}
