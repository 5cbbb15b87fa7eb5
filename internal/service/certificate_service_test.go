package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func certRequest() *model.CreateCertificateRequest {
	return &model.CreateCertificateRequest{Title: "TOEIC 850", Issuer: "ETS", IssuedOn: "2024-03-15"}
}

func TestCertificateService_Create(t *testing.T) {
	store := &fakeCertStore{}
	images := &fakeImages{url: "/uploads/a.png"}
	svc := NewCertificateService(store, images, zerolog.Nop())

	cert, err := svc.Create(context.Background(), 7, certRequest(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, cert.StudentID)
	assert.Equal(t, "/uploads/a.png", cert.ImageURL)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), cert.IssuedOn)
	assert.Empty(t, images.removed)
}

func TestCertificateService_Create_RemovesImageWhenRowFails(t *testing.T) {
	store := &fakeCertStore{createErr: errors.New("insert failed")}
	images := &fakeImages{url: "/uploads/a.png"}
	svc := NewCertificateService(store, images, zerolog.Nop())

	_, err := svc.Create(context.Background(), 7, certRequest(), nil, nil)
	require.Error(t, err)
	assert.Equal(t, []string{"/uploads/a.png"}, images.removed)
}

func TestCertificateService_Create_BadDate(t *testing.T) {
	images := &fakeImages{url: "/uploads/a.png"}
	svc := NewCertificateService(&fakeCertStore{}, images, zerolog.Nop())

	req := certRequest()
	req.IssuedOn = "15/03/2024"
	_, err := svc.Create(context.Background(), 7, req, nil, nil)
	assert.Error(t, err)
	assert.Empty(t, images.removed)
}

func TestCertificateService_Delete(t *testing.T) {
	images := &fakeImages{}
	svc := NewCertificateService(&fakeCertStore{deleteURL: "/uploads/b.jpg"}, images, zerolog.Nop())

	require.NoError(t, svc.Delete(context.Background(), 7, 1))
	assert.Equal(t, []string{"/uploads/b.jpg"}, images.removed)

	svc = NewCertificateService(&fakeCertStore{deleteErr: repository.ErrNotFound}, images, zerolog.Nop())
	assert.ErrorIs(t, svc.Delete(context.Background(), 7, 2), repository.ErrNotFound)
}
