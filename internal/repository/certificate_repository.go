package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/portal-backend/internal/model"
)

// CertificateRepository handles declared certificates.
type CertificateRepository struct {
	pool *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(pool *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{pool: pool}
}

// ListByStudent retrieves a student's certificates, newest first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentID int) ([]model.Certificate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, title, issuer, issued_on, image_url, created_at
		 FROM certificates WHERE student_id = $1
		 ORDER BY issued_on DESC, id DESC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	certs := []model.Certificate{}
	for rows.Next() {
		var c model.Certificate
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Title, &c.Issuer, &c.IssuedOn, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// Create inserts a certificate.
func (r *CertificateRepository) Create(ctx context.Context, c *model.Certificate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO certificates (student_id, title, issuer, issued_on, image_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		c.StudentID, c.Title, c.Issuer, c.IssuedOn, c.ImageURL,
	).Scan(&c.ID, &c.CreatedAt)
}

// Delete removes one of the student's certificates and returns its image URL.
func (r *CertificateRepository) Delete(ctx context.Context, studentID, id int) (string, error) {
	var imageURL string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM certificates WHERE id = $1 AND student_id = $2 RETURNING image_url`,
		id, studentID,
	).Scan(&imageURL)
	if err != nil {
		return "", notFound(err)
	}
	return imageURL, nil
}
