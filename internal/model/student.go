package model

import "time"

// Student represents a student account of the portal.
type Student struct {
	ID           int       `json:"id"`
	StudentCode  string    `json:"student_code"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Major        string    `json:"major"`
	Cohort       int       `json:"cohort"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	StudentCode string `json:"student_code" binding:"required,min=4,max=20"`
	Password    string `json:"password" binding:"required,min=4,max=128"`
}

// CreateStudentRequest is the payload for creating a new student account.
type CreateStudentRequest struct {
	StudentCode string `json:"student_code" binding:"required,alphanum,min=4,max=20"`
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	Major       string `json:"major" binding:"required,max=100"`
	Cohort      int    `json:"cohort" binding:"required,min=1990,max=2100"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
}
