package model

import "time"

// NotificationKind classifies a notification for the portal's bell menu.
type NotificationKind string

const (
	NotificationGradesUpdated NotificationKind = "GRADES_UPDATED"
	NotificationRegistration  NotificationKind = "REGISTRATION"
)

// Notification is a message addressed to one student.
type Notification struct {
	ID        int              `json:"id"`
	StudentID int              `json:"student_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at"`
}
