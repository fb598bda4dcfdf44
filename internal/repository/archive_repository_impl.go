package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pacs-study-browser/internal/domain/entity"
	domainRepo "pacs-study-browser/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

const (
	contentTypeDicomJSON = "application/dicom+json"
	contentTypeJSON      = "application/json"

	// error bodies are only read up to this size
	maxErrorBody = 4096
)

type archiveRepository struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewArchiveRepository creates a client for the archive REST interface rooted at baseURL,
// e.g. http://pacs:8080/dcm4chee-arc.
func NewArchiveRepository(baseURL string, timeout time.Duration, log *logrus.Logger) domainRepo.ArchiveRepository {
	return NewArchiveRepositoryWithClient(baseURL, &http.Client{Timeout: timeout}, log)
}

// NewArchiveRepositoryWithClient is NewArchiveRepository with a caller supplied *http.Client.
func NewArchiveRepositoryWithClient(baseURL string, client *http.Client, log *logrus.Logger) domainRepo.ArchiveRepository {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &archiveRepository{
		baseURL:    baseURL,
		httpClient: client,
		log:        log,
	}
}

func (r *archiveRepository) GetStudies(ctx context.Context, tab entity.Tab, callingAet entity.Aet, params url.Values) ([]entity.Attributes, error) {
	target := r.qidoURL(callingAet, tab.Resource(), params)

	var rows []entity.Attributes
	status, err := r.getJSON(ctx, target, contentTypeDicomJSON, &rows)
	if err != nil {
		return nil, err
	}
	// 204 No Content means no match
	if status == http.StatusNoContent {
		return nil, nil
	}
	return rows, nil
}

func (r *archiveRepository) CountStudies(ctx context.Context, tab entity.Tab, callingAet entity.Aet, params url.Values) (int64, error) {
	target := r.qidoURL(callingAet, tab.Resource()+"/count", params)

	var body struct {
		Count int64 `json:"count"`
	}
	if _, err := r.getJSON(ctx, target, contentTypeJSON, &body); err != nil {
		return 0, err
	}
	return body.Count, nil
}

func (r *archiveRepository) GetStudiesSize(ctx context.Context, callingAet entity.Aet, params url.Values) (int64, error) {
	target := r.qidoURL(callingAet, "studies/size", params)

	var body struct {
		Size int64 `json:"size"`
	}
	if _, err := r.getJSON(ctx, target, contentTypeJSON, &body); err != nil {
		return 0, err
	}
	return body.Size, nil
}

func (r *archiveRepository) GetAes(ctx context.Context) ([]entity.Aet, error) {
	var aes []entity.Aet
	if _, err := r.getJSON(ctx, r.baseURL+"/aes", contentTypeJSON, &aes); err != nil {
		return nil, err
	}
	return aes, nil
}

func (r *archiveRepository) GetAets(ctx context.Context) ([]entity.Aet, error) {
	var aets []entity.Aet
	if _, err := r.getJSON(ctx, r.baseURL+"/aets", contentTypeJSON, &aets); err != nil {
		return nil, err
	}
	return aets, nil
}

func (r *archiveRepository) GetAttributeFilter(ctx context.Context, entityName string) (*entity.AttributeFilter, error) {
	target := fmt.Sprintf("%s/attribute-filter/%s", r.baseURL, url.PathEscape(entityName))

	var filter entity.AttributeFilter
	if _, err := r.getJSON(ctx, target, contentTypeJSON, &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

func (r *archiveRepository) qidoURL(callingAet entity.Aet, resource string, params url.Values) string {
	target := fmt.Sprintf("%s/aets/%s/rs/%s", r.baseURL, url.PathEscape(callingAet.DicomAETitle), resource)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	return target
}

// getJSON issues a GET and decodes a JSON body into out. It returns the status code;
// a 204 leaves out untouched.
func (r *archiveRepository) getJSON(ctx context.Context, target, accept string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request to %s: %w", target, err)
	}
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request to %s: %w", target, err)
	}
	defer resp.Body.Close()

	r.log.WithFields(logrus.Fields{
		"url":      target,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Archive request completed")

	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newArchiveError(resp, target)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, fmt.Errorf("failed to decode response from %s: %w", target, err)
	}

	return resp.StatusCode, nil
}

// newArchiveError reads the archive's {"errorMessage": "..."} body if there is one.
func newArchiveError(resp *http.Response, target string) *domainRepo.ArchiveError {
	archiveErr := &domainRepo.ArchiveError{
		StatusCode: resp.StatusCode,
		URL:        target,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return archiveErr
	}

	var payload struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.ErrorMessage != "" {
		archiveErr.Message = payload.ErrorMessage
	} else {
		archiveErr.Message = string(body)
	}
	return archiveErr
}
