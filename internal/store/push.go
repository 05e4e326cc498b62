package store

import (
	"context"

	"gorm.io/gorm/clause"

	"mikrotik-manager/internal/model"
)

// UpsertPushSubscription creates or replaces the subscription keyed by endpoint.
func (s *gormStore) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error; err != nil {
		return wrap("upsert push subscription", err)
	}
	return nil
}

func (s *gormStore) ListPushSubscriptionsByUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, wrap("list push subscriptions", err)
	}
	return subs, nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
		return wrap("delete push subscription", err)
	}
	return nil
}
