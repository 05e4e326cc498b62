package model

import "time"

// DeviceState is the reachability of a router as last observed.
type DeviceState string

const (
	DeviceOnline  DeviceState = "online"
	DeviceOffline DeviceState = "offline"
)

// Device is a Mikrotik router owned by exactly one user.
type Device struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	OwnerID   string      `gorm:"index;size:36;not null" json:"owner_id"`
	Name      string      `gorm:"size:256;not null" json:"name"`
	IPAddress string      `gorm:"size:64;not null" json:"ip_address"`
	Identity  string      `gorm:"size:256" json:"identity"`
	Model     string      `gorm:"size:128" json:"model"`
	Location  string      `gorm:"size:256" json:"location"`
	Status    DeviceState `gorm:"size:16;not null;default:offline" json:"status"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Associations
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}

// DeviceDraft carries the fields submitted when adding a device.
type DeviceDraft struct {
	Name      string `json:"name"`
	IPAddress string `json:"ip_address"`
	Identity  string `json:"identity"`
	Model     string `json:"model"`
	Location  string `json:"location"`
}

// DeviceUpdate lists the mutable device fields. Nil fields are left alone.
type DeviceUpdate struct {
	Name      *string      `json:"name"`
	IPAddress *string      `json:"ip_address"`
	Identity  *string      `json:"identity"`
	Model     *string      `json:"model"`
	Location  *string      `json:"location"`
	Status    *DeviceState `json:"status"`
}

// Columns returns the column assignments for a partial update.
func (u DeviceUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.IPAddress != nil {
		cols["ip_address"] = *u.IPAddress
	}
	if u.Identity != nil {
		cols["identity"] = *u.Identity
	}
	if u.Model != nil {
		cols["model"] = *u.Model
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.Status != nil {
		cols["status"] = string(*u.Status)
	}
	return cols
}

// DeviceStatus is the latest health snapshot of a device, one row per device.
type DeviceStatus struct {
	DeviceID    string      `gorm:"primaryKey;size:36" json:"device_id"`
	Status      DeviceState `gorm:"size:16;not null" json:"status"`
	CPULoad     *float64    `json:"cpu_load,omitempty"`
	FreeMemory  *int64      `json:"free_memory,omitempty"`
	Uptime      string      `gorm:"size:64" json:"uptime,omitempty"`
	Version     string      `gorm:"size:64" json:"version,omitempty"`
	LatencyMS   *int64      `json:"latency_ms,omitempty"`
	LastUpdated time.Time   `gorm:"not null" json:"last_updated"`

	Device Device `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE" json:"-"`
}

// DeviceLog is an append-only audit entry for a device.
type DeviceLog struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	DeviceID  string    `gorm:"index;size:36;not null" json:"device_id"`
	Action    string    `gorm:"size:64;not null" json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Device Device `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE" json:"-"`
}
