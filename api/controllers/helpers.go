package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sueworkspace/sungji-drop/api/middleware"
	"github.com/sueworkspace/sungji-drop/internal/chat"
	pkgerrors "github.com/sueworkspace/sungji-drop/pkg/errors"
	"github.com/sueworkspace/sungji-drop/pkg/enums"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func dealerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.DealerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealer context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer id")
	}
	return id, nil
}

// callerFromRequest assembles the chat caller identity from the auth context.
func callerFromRequest(r *http.Request) (chat.Caller, error) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		return chat.Caller{}, err
	}
	caller := chat.Caller{
		UserID: userID,
		Role:   enums.ActorRole(middleware.RoleFromContext(r.Context())),
	}
	if raw := middleware.DealerIDFromContext(r.Context()); raw != "" {
		dealerID, err := uuid.Parse(raw)
		if err != nil {
			return chat.Caller{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer id")
		}
		caller.DealerID = &dealerID
	}
	return caller, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path id").WithDetails(map[string]any{"param": param})
	}
	return id, nil
}
