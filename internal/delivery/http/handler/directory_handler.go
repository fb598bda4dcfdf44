package handler

import (
	"net/http"

	"pacs-study-browser/internal/delivery/http/middleware"
	"pacs-study-browser/internal/usecase"
	"pacs-study-browser/pkg/response"
)

type DirectoryHandler struct {
	directoryUsecase usecase.DirectoryUsecase
}

func NewDirectoryHandler(directoryUsecase usecase.DirectoryUsecase) *DirectoryHandler {
	return &DirectoryHandler{
		directoryUsecase: directoryUsecase,
	}
}

// GetApplicationEntities returns the AE directory filtered for the caller.
func (h *DirectoryHandler) GetApplicationEntities(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
		return
	}

	entities, err := h.directoryUsecase.Load(r.Context(), principal.Roles)
	if err != nil {
		response.BadGateway(w, usecase.MsgErrorGettingAets, nil)
		return
	}

	response.Success(w, http.StatusOK, "Application entities retrieved successfully", entities)
}
