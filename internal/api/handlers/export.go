package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"wikijobs/internal/api/middleware"
	"wikijobs/internal/exporter"
	"wikijobs/internal/logging"
	"wikijobs/internal/logging/types"
	"wikijobs/internal/session"
	"wikijobs/pkg/utils"
)

// ExportUploader stores a rendered export and returns its public URL
type ExportUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// renderExport builds the workbook for the session's current job view. On
// failure the error response has already been written and ok is false.
func renderExport(c echo.Context, svc *session.Service) (exp exporter.Export, data []byte, ok bool, err error) {
	ctx := c.Request().Context()
	id := c.Param("id")

	view, err := ParseView(c)
	if err != nil {
		return exp, nil, false, errorJSON(c, http.StatusBadRequest, "invalid_query", err.Error())
	}

	jobs, err := svc.ListJobs(ctx, id, view)
	if err != nil {
		return exp, nil, false, domainError(c, err)
	}
	sess, err := svc.GetSession(ctx, id)
	if err != nil {
		return exp, nil, false, domainError(c, err)
	}

	exp = exporter.Export{
		SessionID:   id,
		Jobs:        jobs.Jobs,
		SelectedJob: sess.SelectedJob,
		Plan:        sess.Plan,
	}

	var buf bytes.Buffer
	if err := exporter.WriteXLSX(&buf, exp); err != nil {
		logging.LogWithRequestID(middleware.RequestID(c)).Error("Export failed", map[string]interface{}{
			types.FieldSessionID: id,
			types.FieldError:     err.Error(),
		})
		return exp, nil, false, errorJSON(c, http.StatusInternalServerError, "export_failed", "Failed to build the export")
	}
	return exp, buf.Bytes(), true, nil
}

// ExportJobsHandler downloads the session's current job view as xlsx. The
// plan sheet is included once the selected job's plan is ready.
func ExportJobsHandler(svc *session.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		exp, data, ok, err := renderExport(c, svc)
		if !ok {
			return err
		}

		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exp.FileName()))
		return c.Blob(http.StatusOK, exporter.ContentType, data)
	}
}

// ShareExportHandler uploads the export to object storage and returns its URL.
// Without configured storage it answers 503.
func ShareExportHandler(svc *session.Service, uploader ExportUploader) echo.HandlerFunc {
	return func(c echo.Context) error {
		if uploader == nil {
			return domainError(c, utils.NewConfigurationError("BUCKET_NAME", "export storage not configured"))
		}

		exp, data, ok, err := renderExport(c, svc)
		if !ok {
			return err
		}

		url, err := uploader.Upload(c.Request().Context(), exporter.ObjectKey(exp), data, exporter.ContentType)
		if err != nil {
			return errorJSON(c, http.StatusBadGateway, "export_upload_failed", "Failed to upload the export")
		}

		return c.JSON(http.StatusCreated, map[string]string{
			"session_id": exp.SessionID,
			"file_name":  exp.FileName(),
			"url":        url,
		})
	}
}
