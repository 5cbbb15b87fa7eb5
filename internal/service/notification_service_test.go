package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_NotifyRecordsThenPublishes(t *testing.T) {
	store := &fakeNotificationStore{}
	bus := &fakeBus{}
	svc := NewNotificationService(store, bus, zerolog.Nop())

	n := &model.Notification{StudentID: 7, Kind: model.NotificationGradesUpdated, Title: "Nilai diperbarui"}
	require.NoError(t, svc.Notify(context.Background(), n))

	require.Len(t, store.created, 1)
	require.Len(t, bus.published, 1)
	assert.Equal(t, 1, bus.published[0].ID)
}

func TestNotificationService_PublishFailureIsNotFatal(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, &fakeBus{err: errors.New("redis down")}, zerolog.Nop())

	assert.NoError(t, svc.Notify(context.Background(), &model.Notification{StudentID: 7}))
	assert.Len(t, store.created, 1)
}

func TestNotificationService_ListPagination(t *testing.T) {
	store := &fakeNotificationStore{
		items:  []model.Notification{{ID: 3}, {ID: 2}, {ID: 1}},
		unread: 2,
	}
	svc := NewNotificationService(store, &fakeBus{}, zerolog.Nop())

	list, pagination, err := svc.List(context.Background(), 7, 2, 500)
	require.NoError(t, err)

	assert.Equal(t, 100, store.limit)
	assert.Equal(t, 100, store.offset)
	assert.Equal(t, 2, list.UnreadCount)
	assert.Len(t, list.Notifications, 3)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 100, pagination.PerPage)
	assert.Equal(t, 3, pagination.TotalItems)
	assert.Equal(t, 1, pagination.TotalPages)
}
