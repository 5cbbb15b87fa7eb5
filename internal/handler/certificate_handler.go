package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stemsi/portal-backend/internal/validator"
)

const multipartMemory = 8 << 20

// CertificateManager is the subset of service.CertificateService used by CertificateHandler.
type CertificateManager interface {
	List(ctx context.Context, studentID int) ([]model.Certificate, error)
	Create(ctx context.Context, studentID int, req *model.CreateCertificateRequest, file multipart.File, header *multipart.FileHeader) (*model.Certificate, error)
	Delete(ctx context.Context, studentID, id int) error
}

// CertificateHandler handles the certificate declaration page.
type CertificateHandler struct {
	certificates CertificateManager
	maxBodyBytes int64
}

// NewCertificateHandler creates a new CertificateHandler. maxUploadBytes bounds
// the image; the form fields get a small allowance on top.
func NewCertificateHandler(certificates CertificateManager, maxUploadBytes int64) *CertificateHandler {
	return &CertificateHandler{
		certificates: certificates,
		maxBodyBytes: maxUploadBytes + 64<<10,
	}
}

// ListCertificates godoc
// GET /api/v1/student/certificates
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	claims := middleware.GetClaims(c)

	certs, err := h.certificates.List(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"certificates": certs})
}

// CreateCertificate godoc
// POST /api/v1/student/certificates (multipart: title, issuer, issued_on, file)
func (h *CertificateHandler) CreateCertificate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}

	var req model.CreateCertificateRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	claims := middleware.GetClaims(c)
	cert, err := h.certificates.Create(c.Request.Context(), claims.UserID, &req, file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			failFromRepo(c, err)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"certificate": cert})
}

// DeleteCertificate godoc
// DELETE /api/v1/student/certificates/:id
func (h *CertificateHandler) DeleteCertificate(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)

	if err := h.certificates.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		failFromRepo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "certificate deleted successfully"})
}
