package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
)

// CertificateStore persists certificates.
type CertificateStore interface {
	ListByStudent(ctx context.Context, studentID int) ([]model.Certificate, error)
	Create(ctx context.Context, c *model.Certificate) error
	Delete(ctx context.Context, studentID, id int) (string, error)
}

// ImageStore saves and removes uploaded images.
type ImageStore interface {
	SaveUpload(file multipart.File, header *multipart.FileHeader) (string, error)
	Remove(url string) error
}

// CertificateService handles student-declared certificates.
type CertificateService struct {
	store  CertificateStore
	images ImageStore
	log    zerolog.Logger
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(store CertificateStore, images ImageStore, log zerolog.Logger) *CertificateService {
	return &CertificateService{
		store:  store,
		images: images,
		log:    log.With().Str("component", "certificate_service").Logger(),
	}
}

// List returns the student's certificates.
func (s *CertificateService) List(ctx context.Context, studentID int) ([]model.Certificate, error) {
	return s.store.ListByStudent(ctx, studentID)
}

// Create stores the scan and the certificate row. The scan is removed again
// when the row cannot be written.
func (s *CertificateService) Create(ctx context.Context, studentID int, req *model.CreateCertificateRequest, file multipart.File, header *multipart.FileHeader) (*model.Certificate, error) {
	issuedOn, err := time.Parse(time.DateOnly, req.IssuedOn)
	if err != nil {
		return nil, fmt.Errorf("parse issued_on: %w", err)
	}

	url, err := s.images.SaveUpload(file, header)
	if err != nil {
		return nil, err
	}

	cert := &model.Certificate{
		StudentID: studentID,
		Title:     req.Title,
		Issuer:    req.Issuer,
		IssuedOn:  issuedOn,
		ImageURL:  url,
	}
	if err := s.store.Create(ctx, cert); err != nil {
		s.removeImage(url)
		return nil, err
	}
	return cert, nil
}

// Delete removes one of the student's certificates and its scan.
func (s *CertificateService) Delete(ctx context.Context, studentID, id int) error {
	url, err := s.store.Delete(ctx, studentID, id)
	if err != nil {
		return err
	}
	s.removeImage(url)
	return nil
}

func (s *CertificateService) removeImage(url string) {
	if err := s.images.Remove(url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("Failed to remove certificate image")
	}
}
