package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID assigns a random UUID when the record has none yet.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// BeforeCreate hooks assign ids so that every collection gets UUID keys
// regardless of the database driver.

func (i *Identity) BeforeCreate(tx *gorm.DB) error     { newID(&i.ID); return nil }
func (d *Device) BeforeCreate(tx *gorm.DB) error       { newID(&d.ID); return nil }
func (l *DeviceLog) BeforeCreate(tx *gorm.DB) error    { newID(&l.ID); return nil }
func (s *Subscription) BeforeCreate(tx *gorm.DB) error { newID(&s.ID); return nil }
func (i *Invoice) BeforeCreate(tx *gorm.DB) error      { newID(&i.ID); return nil }
