package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mikrotik-manager/internal/model"
)

// ErrMissingField is returned when a required input field is empty.
var ErrMissingField = errors.New("missing required field")

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for passwords bcrypt would refuse to hash.
var ErrPasswordTooLong = fmt.Errorf("password is longer than %d bytes", MaxPasswordBytes)

// DefaultLogLimit is the number of device log entries returned when no limit is given.
const DefaultLogLimit = 100

// DeviceDraft trims the submitted device fields and checks that name and IP
// address are present. Identity, model and location are optional.
func DeviceDraft(raw model.DeviceDraft) (model.DeviceDraft, error) {
	d := model.DeviceDraft{
		Name:      strings.TrimSpace(raw.Name),
		IPAddress: strings.TrimSpace(raw.IPAddress),
		Identity:  strings.TrimSpace(raw.Identity),
		Model:     strings.TrimSpace(raw.Model),
		Location:  strings.TrimSpace(raw.Location),
	}
	if d.Name == "" {
		return d, fmt.Errorf("name: %w", ErrMissingField)
	}
	if d.IPAddress == "" {
		return d, fmt.Errorf("ip_address: %w", ErrMissingField)
	}
	return d, nil
}

// DeviceState accepts "online" or "offline" in any case.
func DeviceState(raw string) (model.DeviceState, error) {
	switch model.DeviceState(strings.ToLower(strings.TrimSpace(raw))) {
	case model.DeviceOnline:
		return model.DeviceOnline, nil
	case model.DeviceOffline:
		return model.DeviceOffline, nil
	}
	return "", fmt.Errorf("invalid device status %q", raw)
}

// Credentials normalizes an email/password pair. The email is lower-cased;
// the password is kept verbatim.
func Credentials(email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", "", fmt.Errorf("email: %w", ErrMissingField)
	}
	if !strings.Contains(email, "@") {
		return "", "", fmt.Errorf("invalid email %q", email)
	}
	if password == "" {
		return "", "", fmt.Errorf("password: %w", ErrMissingField)
	}
	if len(password) > MaxPasswordBytes {
		return "", "", ErrPasswordTooLong
	}
	return email, password, nil
}

// Limit parses a positive page size, falling back to def for empty, invalid
// or non-positive input.
func Limit(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
