package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/config"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stemsi/portal-backend/internal/repository"
	"github.com/stemsi/portal-backend/internal/response"
)

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, db repository.DBTX, n *model.Notification) error
	ListPaginated(ctx context.Context, studentID, limit, offset int) ([]model.Notification, int, int, error)
	MarkRead(ctx context.Context, studentID, id int) error
}

// NotificationBus fans notifications out to connected clients.
type NotificationBus interface {
	Publish(ctx context.Context, n *model.Notification) error
	Subscribe(ctx context.Context, studentID int) *redis.PubSub
}

// NotificationList is a page of notifications plus the unread total.
type NotificationList struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unread_count"`
}

// NotificationService records and delivers student notifications.
type NotificationService struct {
	store NotificationStore
	bus   NotificationBus
	log   zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore, bus NotificationBus, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		store: store,
		bus:   bus,
		log:   log.With().Str("component", "notification_service").Logger(),
	}
}

// Record stores a notification through db (nil uses the pool). Callers inside
// a transaction publish after commit.
func (s *NotificationService) Record(ctx context.Context, db repository.DBTX, n *model.Notification) error {
	return s.store.Create(ctx, db, n)
}

// Publish pushes a stored notification to live subscribers. Delivery is best
// effort; the notification stays listed either way.
func (s *NotificationService) Publish(ctx context.Context, n *model.Notification) {
	if err := s.bus.Publish(ctx, n); err != nil {
		s.log.Warn().Err(err).Int("student_id", n.StudentID).Int("notification_id", n.ID).Msg("Publish failed")
	}
}

// Notify records and publishes a notification.
func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) error {
	if err := s.Record(ctx, nil, n); err != nil {
		return err
	}
	s.Publish(ctx, n)
	return nil
}

// List returns a page of the student's notifications.
func (s *NotificationService) List(ctx context.Context, studentID, page, perPage int) (*NotificationList, *response.Pagination, error) {
	page, perPage = normalizePage(page, perPage)

	items, total, unread, err := s.store.ListPaginated(ctx, studentID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	return &NotificationList{Notifications: items, UnreadCount: unread}, response.NewPagination(page, perPage, total), nil
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, studentID, id int) error {
	return s.store.MarkRead(ctx, studentID, id)
}

// Subscribe opens the live notification channel of a student.
func (s *NotificationService) Subscribe(ctx context.Context, studentID int) *redis.PubSub {
	return s.bus.Subscribe(ctx, studentID)
}

// RedisNotificationBus publishes notifications as JSON on student:<id>:notifications.
type RedisNotificationBus struct {
	rdb *redis.Client
}

// NewRedisNotificationBus creates a RedisNotificationBus.
func NewRedisNotificationBus(rdb *redis.Client) *RedisNotificationBus {
	return &RedisNotificationBus{rdb: rdb}
}

func (b *RedisNotificationBus) Publish(ctx context.Context, n *model.Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, config.CacheKey.StudentNotificationChannel(n.StudentID), raw).Err()
}

func (b *RedisNotificationBus) Subscribe(ctx context.Context, studentID int) *redis.PubSub {
	return b.rdb.Subscribe(ctx, config.CacheKey.StudentNotificationChannel(studentID))
}
