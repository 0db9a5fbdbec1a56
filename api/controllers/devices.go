package controllers

import (
	"net/http"
	"strings"

	"github.com/sueworkspace/sungji-drop/api/responses"
	"github.com/sueworkspace/sungji-drop/internal/catalog"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/logger"
)

// DeviceList returns the active catalog, optionally filtered by brand.
func DeviceList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		brand := strings.TrimSpace(r.URL.Query().Get("brand"))
		devices, err := svc.List(r.Context(), brand)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"devices": devices})
	}
}

// DeviceDetail returns a single catalog entry.
func DeviceDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		deviceID, err := pathUUID(r, "deviceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		device, err := svc.Get(r.Context(), deviceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, device)
	}
}
