package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/keatontom/salesforce-opportunity-analysis/app"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/render"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleAnalyze accepts a multipart upload in field "file" and returns the
// report as JSON. date_range is read from the query, then the form.
func (s *Server) handleAnalyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.abort(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds the %d MB limit", s.opts.MaxUploadBytes>>20))
			return
		}
		s.abort(c, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.abort(c, http.StatusBadRequest, "failed to read upload")
		return
	}

	dateRange := c.Query("date_range")
	if dateRange == "" {
		dateRange = c.PostForm("date_range")
	}

	report, err := s.service.Analyze(c.Request.Context(), app.AnalyzeRequest{
		Filename:  header.Filename,
		Content:   content,
		DateRange: dateRange,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleListReports(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.abort(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	reports, err := s.service.List(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) handleGetReport(c *gin.Context) {
	report, err := s.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleGetReportHTML(c *gin.Context) {
	report, err := s.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	page, err := render.HTML(report)
	if err != nil {
		s.fail(c, errors.Wrap(err, "failed to render report"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleGetReportMarkdown(c *gin.Context) {
	report, err := s.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(render.Markdown(report)))
}

// statusFor maps an error code to its HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeUnsupportedFormat:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": errors.GetCode(err)})
}

func (s *Server) abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
