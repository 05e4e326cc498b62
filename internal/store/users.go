package store

import (
	"context"

	"gorm.io/gorm/clause"

	"mikrotik-manager/internal/model"
)

func (s *gormStore) CreateIdentity(ctx context.Context, identity *model.Identity) error {
	if err := s.db.WithContext(ctx).Create(identity).Error; err != nil {
		return wrap("create identity", err)
	}
	return nil
}

func (s *gormStore) GetIdentity(ctx context.Context, id string) (*model.Identity, error) {
	var identity model.Identity
	found, err := findOne(s.db.WithContext(ctx), &identity, "id = ?", id)
	if err != nil {
		return nil, wrap("get identity", err)
	}
	if !found {
		return nil, nil
	}
	return &identity, nil
}

func (s *gormStore) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	found, err := findOne(s.db.WithContext(ctx), &identity, "email = ?", email)
	if err != nil {
		return nil, wrap("get identity by email", err)
	}
	if !found {
		return nil, nil
	}
	return &identity, nil
}

func (s *gormStore) InsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		return nil, wrap("insert user", err)
	}
	return user, nil
}

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	found, err := findOne(s.db.WithContext(ctx), &user, "id = ?", id)
	if err != nil {
		return nil, wrap("get user", err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (s *gormStore) UpdateUser(ctx context.Context, id string, columns map[string]any) (*model.User, error) {
	var user model.User
	if err := s.updateByID(ctx, &user, id, columns); err != nil {
		return nil, wrap("update user", err)
	}
	return &user, nil
}
