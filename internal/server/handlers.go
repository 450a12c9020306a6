package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"fjacquet/invoice-extract/internal/batch"
	"fjacquet/invoice-extract/internal/export"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/session"
)

// UploadField is the multipart field holding the uploaded PDFs.
const UploadField = "files"

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

type outcomeResponse struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Template string `json:"template,omitempty"`
	Error    string `json:"error,omitempty"`
}

type uploadResponse struct {
	SessionID string            `json:"session_id"`
	Outcomes  []outcomeResponse `json:"outcomes"`
	Total     int               `json:"total"`
}

func (s *Server) upload(c *gin.Context) {
	if s.deps.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.deps.MaxUploadBytes)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(c, http.StatusBadRequest, "expected a multipart form: "+err.Error())
		return
	}
	files := form.File[UploadField]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("no files in form field %q", UploadField))
		return
	}

	docs := make([]batch.Document, 0, len(files))
	for _, fh := range files {
		docs = append(docs, uploadedDocument(fh))
	}

	sess := currentSession(c)
	report := s.deps.Processor.Process(c.Request.Context(), docs, sess)

	resp := uploadResponse{SessionID: sess.ID, Total: sess.Len()}
	for _, o := range report.Outcomes {
		resp.Outcomes = append(resp.Outcomes, outcomeResponse{
			Name:     o.Name,
			Status:   string(o.Status),
			Template: o.Template,
			Error:    o.Error(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func uploadedDocument(fh *multipart.FileHeader) batch.Document {
	return batch.Document{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

type invoicesResponse struct {
	SessionID  string              `json:"session_id"`
	Invoices   []models.Invoice    `json:"invoices"`
	Totals     []session.Total     `json:"totals"`
	Duplicates []session.Duplicate `json:"duplicates,omitempty"`
}

func (s *Server) listInvoices(c *gin.Context) {
	sess := currentSession(c)

	totals, err := sess.Totals()
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "could not compute totals")
		return
	}

	invoices := sess.All()
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	c.JSON(http.StatusOK, invoicesResponse{
		SessionID:  sess.ID,
		Invoices:   invoices,
		Totals:     totals,
		Duplicates: sess.PotentialDuplicates(),
	})
}

func (s *Server) clearInvoices(c *gin.Context) {
	sess := currentSession(c)
	sess.Clear()
	s.logger.Info("Session cleared", logging.F(logging.FieldSession, sess.ID))
	c.Status(http.StatusNoContent)
}

func (s *Server) exportInvoices(c *gin.Context) {
	enc, err := s.deps.Encoder(c.Query("format"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	sess := currentSession(c)
	data, err := enc.Encode(sess.All())
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "could not build the spreadsheet")
		return
	}

	name := export.FileName(s.deps.FileName, enc)
	s.logger.Info("Exported invoices",
		logging.F(logging.FieldSession, sess.ID),
		logging.F(logging.FieldCount, sess.Len()),
		logging.F(logging.FieldOutputFile, name))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, enc.ContentType(), data)
}

func (s *Server) debugReport(c *gin.Context) {
	data, err := currentSession(c).DebugReport()
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "could not render the debug report")
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", data)
}

type templateResponse struct {
	Issuer   string   `json:"issuer"`
	Keywords []string `json:"keywords"`
	Fields   []string `json:"fields"`
	Source   string   `json:"source"`
}

func (s *Server) listTemplates(c *gin.Context) {
	resp := make([]templateResponse, 0, len(s.deps.Templates))
	for _, t := range s.deps.Templates {
		fields := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, f.Name)
		}
		resp = append(resp, templateResponse{Issuer: t.Issuer, Keywords: t.Keywords, Fields: fields, Source: t.Source})
	}
	c.JSON(http.StatusOK, gin.H{"templates": resp})
}
