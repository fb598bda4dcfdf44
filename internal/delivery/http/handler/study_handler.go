package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pacs-study-browser/internal/delivery/dto"
	"pacs-study-browser/internal/domain/entity"
	"pacs-study-browser/internal/usecase"
	"pacs-study-browser/pkg/response"
	"pacs-study-browser/pkg/validator"

	"github.com/gorilla/mux"
)

type StudyHandler struct {
	studyUsecase usecase.StudyUsecase
	validator    *validator.CustomValidator
}

func NewStudyHandler(studyUsecase usecase.StudyUsecase, validator *validator.CustomValidator) *StudyHandler {
	return &StudyHandler{
		studyUsecase: studyUsecase,
		validator:    validator,
	}
}

func (h *StudyHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.studyUsecase.GetPage(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get study page")
		return
	}

	response.Success(w, http.StatusOK, "Study page retrieved successfully", page)
}

func (h *StudyHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	tab := entity.Tab(mux.Vars(r)["tab"])

	page, err := h.studyUsecase.Navigate(r.Context(), tab)
	if err != nil {
		h.writeError(w, err, "Failed to open study page")
		return
	}

	response.Success(w, http.StatusOK, "Study page opened successfully", page)
}

func (h *StudyHandler) ChangeAccessLocation(w http.ResponseWriter, r *http.Request) {
	var req dto.AccessLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	page, err := h.studyUsecase.ChangeAccessLocation(r.Context(), entity.AccessLocation(req.AccessLocation))
	if err != nil {
		h.writeError(w, err, "Failed to change access location")
		return
	}

	response.Success(w, http.StatusOK, "Access location changed successfully", page)
}

func (h *StudyHandler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	var req dto.FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	page, err := h.studyUsecase.UpdateFilter(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to update filter")
		return
	}

	response.Success(w, http.StatusOK, "Filter updated successfully", page)
}

func (h *StudyHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := h.studyUsecase.Search(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to search studies")
		return
	}

	response.Success(w, http.StatusOK, "Search completed successfully", page)
}

func (h *StudyHandler) NextPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.studyUsecase.NextPage(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to load more studies")
		return
	}

	response.Success(w, http.StatusOK, "More studies loaded successfully", page)
}

func (h *StudyHandler) ClearResults(w http.ResponseWriter, r *http.Request) {
	page, err := h.studyUsecase.ClearResults(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to clear results")
		return
	}

	response.Success(w, http.StatusOK, "Results cleared successfully", page)
}

func (h *StudyHandler) ToggleExpand(w http.ResponseWriter, r *http.Request) {
	page, err := h.studyUsecase.ToggleExpand(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to toggle filter panel")
		return
	}

	response.Success(w, http.StatusOK, "Filter panel toggled successfully", page)
}

func (h *StudyHandler) Scroll(w http.ResponseWriter, r *http.Request) {
	var req dto.ScrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	page, err := h.studyUsecase.Scroll(r.Context(), req.Position)
	if err != nil {
		h.writeError(w, err, "Failed to update scroll position")
		return
	}

	response.Success(w, http.StatusOK, "Scroll position updated successfully", page)
}

func (h *StudyHandler) Count(w http.ResponseWriter, r *http.Request) {
	quantity, err := h.studyUsecase.Count(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to count")
		return
	}

	response.Success(w, http.StatusOK, "Count retrieved successfully", quantity)
}

func (h *StudyHandler) Size(w http.ResponseWriter, r *http.Request) {
	quantity, err := h.studyUsecase.Size(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get size")
		return
	}

	response.Success(w, http.StatusOK, "Size retrieved successfully", quantity)
}

func (h *StudyHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrPrincipalMissing):
		response.Unauthorized(w, "User not authenticated")
	case errors.Is(err, usecase.ErrInvalidTab):
		response.NotFound(w, "Unknown tab")
	case errors.Is(err, usecase.ErrInvalidAccessLocation):
		response.Error(w, http.StatusBadRequest, "Unknown access location", nil)
	case errors.Is(err, usecase.ErrCallingAetMissing):
		response.Error(w, http.StatusBadRequest, usecase.MsgCallingAetMissing, nil)
	case errors.Is(err, usecase.ErrNoMoreStudies):
		response.Error(w, http.StatusBadRequest, "No further studies available", nil)
	case errors.Is(err, usecase.ErrSizeNotSupported):
		response.Error(w, http.StatusBadRequest, "Size is only available for studies", nil)
	case errors.Is(err, usecase.ErrStaleSearch):
		response.Conflict(w, "Search was superseded by a newer search")
	case errors.Is(err, usecase.ErrDirectoryLoadFailed):
		response.BadGateway(w, usecase.MsgErrorGettingAets, nil)
	case errors.Is(err, usecase.ErrArchiveQueryFailed):
		response.BadGateway(w, fallback, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
