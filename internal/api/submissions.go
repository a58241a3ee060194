package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"example.com/healthreport/internal/auth"
	"example.com/healthreport/internal/config"
	"example.com/healthreport/internal/render"
	"example.com/healthreport/internal/report"
	"example.com/healthreport/internal/routing"
)

const multipartMemory = 32 << 20

// submissions accepts a multipart form with "subject", "body" and any number of "attachment" files,
// and dispatches it to the route routing.Classify picks.
func (h *Handler) submissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeReportsWrite)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeUploadError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "expected multipart form")
		return
	}

	files := r.MultipartForm.File["attachment"]
	submission := routing.Submission{
		Subject:     r.FormValue("subject"),
		Body:        r.FormValue("body"),
		Attachments: make([]routing.Attachment, 0, len(files)),
	}
	for _, fh := range files {
		submission.Attachments = append(submission.Attachments, routing.Attachment{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
	}

	decision := routing.Classify(submission)
	switch decision.Route {
	case routing.RouteExport:
		h.submitExport(w, r, claims, attachmentFile(files, decision.Attachment))
	case routing.RouteSettings:
		h.submitSettings(w, r, claims, submission, attachmentFile(files, decision.Attachment))
	default:
		writeJSON(w, http.StatusOK, SubmissionResponse{
			Route:   string(routing.RouteHelp),
			Options: optionViews(),
		})
	}
}

func (h *Handler) submitExport(w http.ResponseWriter, r *http.Request, claims *auth.Claims, fh *multipart.FileHeader) {
	if fh == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "export attachment missing")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to read attachment")
		return
	}
	defer f.Close()

	settings, err := h.settings.GetSettings(r.Context(), claims.TenantID, claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	result, err := h.service.Generate(r.Context(), report.GenerateInput{
		TenantID: claims.TenantID,
		UserID:   claims.Subject,
		Archive:  f,
		Size:     fh.Size,
		Settings: settings,
	})
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	doc := render.NewDocument(result.Report)
	w.Header().Set("X-Report-Run-Id", result.RunID)
	writeJSON(w, http.StatusOK, SubmissionResponse{
		Route:  string(routing.RouteExport),
		Run:    &result.Summary,
		Report: &doc,
	})
}

func (h *Handler) submitSettings(w http.ResponseWriter, r *http.Request, claims *auth.Claims, s routing.Submission, fh *multipart.FileHeader) {
	change := func(current config.Settings) (config.Settings, error) {
		if fh == nil {
			pairs, ok := routing.ParseSettingsText(s.Body)
			if !ok || len(pairs) == 0 {
				return config.Settings{}, fmt.Errorf("%w: message body is not a list of settings", config.ErrInvalidSettings)
			}
			return config.Apply(current, pairs)
		}
		f, err := fh.Open()
		if err != nil {
			return config.Settings{}, err
		}
		defer f.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, f); err != nil {
			return config.Settings{}, err
		}
		return config.ParseSettings(buf.Bytes(), current)
	}

	updated, err := h.updateSettings(r.Context(), claims, change)
	if err != nil {
		writeSettingsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SubmissionResponse{
		Route:    string(routing.RouteSettings),
		Settings: toSettingViews(updated),
	})
}

func attachmentFile(files []*multipart.FileHeader, att *routing.Attachment) *multipart.FileHeader {
	if att == nil {
		return nil
	}
	for _, fh := range files {
		if fh.Filename == att.Name {
			return fh
		}
	}
	return nil
}
