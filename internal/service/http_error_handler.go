package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	domainRepo "pacs-study-browser/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// Notifier receives user visible messages of a page operation.
type Notifier interface {
	ShowMsg(text string)
	ShowError(text string)
}

type HTTPErrorHandler interface {
	// HandleError presents a failed archive call to the user.
	HandleError(n Notifier, err error)
}

type httpErrorHandler struct {
	log *logrus.Logger
}

func NewHTTPErrorHandler(log *logrus.Logger) HTTPErrorHandler {
	return &httpErrorHandler{log: log}
}

func (h *httpErrorHandler) HandleError(n Notifier, err error) {
	if err == nil {
		return
	}
	text := ErrorMessage(err)
	h.log.Debugf("Presenting archive error to user: %s", text)
	n.ShowError(text)
}

// ErrorMessage renders err the way it is shown to a user.
func ErrorMessage(err error) string {
	var archiveErr *domainRepo.ArchiveError
	switch {
	case errors.As(err, &archiveErr):
		if archiveErr.Message != "" {
			return fmt.Sprintf("Error %d: %s", archiveErr.StatusCode, archiveErr.Message)
		}
		if text := http.StatusText(archiveErr.StatusCode); text != "" {
			return fmt.Sprintf("Error %d: %s", archiveErr.StatusCode, text)
		}
		return fmt.Sprintf("Error %d", archiveErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "Archive did not answer in time"
	case errors.Is(err, context.Canceled):
		return "Request was canceled"
	default:
		return "Archive is not reachable"
	}
}
