package controllers

import (
	"net/http"

	"github.com/kunalverma/groupbuy-backend/api/responses"
	"github.com/kunalverma/groupbuy-backend/api/validators"
	"github.com/kunalverma/groupbuy-backend/internal/geo"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

type createZoneRequest struct {
	Name     string         `json:"name" validate:"required"`
	Center   types.Location `json:"center"`
	RadiusKm float64        `json:"radius_km"`
}

// ListZones returns every active zone.
func ListZones(svc geo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "geo service unavailable"))
			return
		}

		zones, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"zones": zones})
	}
}

// CreateZone provisions a zone manually. Registration auto-creates zones too;
// this endpoint is for operators seeding a city ahead of launch.
func CreateZone(svc geo.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "geo service unavailable"))
			return
		}

		var body createZoneRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		zone, err := svc.CreateZone(r.Context(), geo.CreateZoneInput{
			Name:     body.Name,
			Center:   body.Center,
			RadiusKm: body.RadiusKm,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, zone)
	}
}
