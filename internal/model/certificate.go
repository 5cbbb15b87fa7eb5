package model

import "time"

// Certificate is an external certificate (language, IT skills, ...) a student declares
// together with a scanned image.
type Certificate struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	Title     string    `json:"title"`
	Issuer    string    `json:"issuer"`
	IssuedOn  time.Time `json:"issued_on"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCertificateRequest is the multipart form accompanying a certificate image.
type CreateCertificateRequest struct {
	Title    string `form:"title" binding:"required,min=2,max=255"`
	Issuer   string `form:"issuer" binding:"required,max=255"`
	IssuedOn string `form:"issued_on" binding:"required,datetime=2006-01-02"`
}
