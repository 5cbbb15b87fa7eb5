package model

import "time"

// OfferedCourse is a course section open for registration in a semester.
type OfferedCourse struct {
	ID           int       `json:"id"`
	CourseCode   string    `json:"course_code"`
	CourseName   string    `json:"course_name"`
	Credits      int       `json:"credits"`
	Semester     string    `json:"semester"`
	Capacity     int       `json:"capacity"`
	Registered   int       `json:"registered_count"`
	ScheduleNote string    `json:"schedule_note"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlanEntry is an offered course as seen by one student on the registration plan page.
type PlanEntry struct {
	OfferedCourse
	IsRegistered bool `json:"is_registered"`
}

// RegistrationPlan groups the plan entries of a semester with the student's credit load.
type RegistrationPlan struct {
	Semester          string      `json:"semester"`
	Courses           []PlanEntry `json:"courses"`
	RegisteredCredits int         `json:"registered_credits"`
}

// CreateOfferedCourseRequest is the payload for opening a course section.
type CreateOfferedCourseRequest struct {
	CourseCode   string `json:"course_code" binding:"required,max=32"`
	CourseName   string `json:"course_name" binding:"required,max=255"`
	Credits      int    `json:"credits" binding:"required,min=1,max=20"`
	Semester     string `json:"semester" binding:"required,max=32"`
	Capacity     int    `json:"capacity" binding:"required,min=1,max=1000"`
	ScheduleNote string `json:"schedule_note" binding:"max=255"`
}
