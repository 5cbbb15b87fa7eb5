package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
	"github.com/stemsi/portal-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func certificateRouter(certs *fakeCertificates, maxUpload int64) *gin.Engine {
	h := NewCertificateHandler(certs, maxUpload)
	r := gin.New()
	g := r.Group("/certificates", asUser(7))
	g.GET("", h.ListCertificates)
	g.POST("", h.CreateCertificate)
	g.DELETE("/:id", h.DeleteCertificate)
	return r
}

func certificateForm(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "scan.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

var validCertFields = map[string]string{"title": "TOEIC 850", "issuer": "ETS", "issued_on": "2024-03-15"}

func TestCertificateHandler_Create(t *testing.T) {
	certs := &fakeCertificates{}
	body, ct := certificateForm(t, validCertFields, []byte("fake image bytes"))

	code, env := do(t, certificateRouter(certs, 1<<20), http.MethodPost, "/certificates", body, ct)
	assert.Equal(t, http.StatusCreated, code, string(env.Data))
	require.NotNil(t, certs.created)
	assert.Equal(t, "TOEIC 850", certs.created.Title)
	assert.Equal(t, int64(16), certs.size)
}

func TestCertificateHandler_Create_Validation(t *testing.T) {
	body, ct := certificateForm(t, map[string]string{"title": "TOEIC", "issuer": "ETS", "issued_on": "15/03/2024"}, []byte("x"))

	code, env := do(t, certificateRouter(&fakeCertificates{}, 1<<20), http.MethodPost, "/certificates", body, ct)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
	assert.Contains(t, env.Error.Fields, "issued_on")
}

func TestCertificateHandler_Create_MissingFile(t *testing.T) {
	body, ct := certificateForm(t, validCertFields, nil)

	code, env := do(t, certificateRouter(&fakeCertificates{}, 1<<20), http.MethodPost, "/certificates", body, ct)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, response.ErrFileRequired, env.Error.Code)
}

func TestCertificateHandler_Create_MediaErrors(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantErr  response.ErrCode
	}{
		{service.ErrUnsupportedFileType, http.StatusBadRequest, response.ErrUnsupportedFile},
		{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	}
	for _, tc := range cases {
		body, ct := certificateForm(t, validCertFields, []byte("x"))
		code, env := do(t, certificateRouter(&fakeCertificates{err: tc.err}, 1<<20), http.MethodPost, "/certificates", body, ct)
		assert.Equal(t, tc.wantCode, code)
		assert.Equal(t, tc.wantErr, env.Error.Code)
	}
}

func TestCertificateHandler_Create_BodyTooLarge(t *testing.T) {
	body, ct := certificateForm(t, validCertFields, bytes.Repeat([]byte("x"), 200<<10))

	code, env := do(t, certificateRouter(&fakeCertificates{}, 1<<10), http.MethodPost, "/certificates", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, response.ErrFileTooLarge, env.Error.Code)
}

func TestCertificateHandler_Delete(t *testing.T) {
	code, _ := doJSON(t, certificateRouter(&fakeCertificates{}, 1<<20), http.MethodDelete, "/certificates/3", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, certificateRouter(&fakeCertificates{err: repository.ErrNotFound}, 1<<20), http.MethodDelete, "/certificates/3", "")
	assert.Equal(t, http.StatusNotFound, code)
}
