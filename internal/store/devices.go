package store

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DeviceStore keeps devices.json: user id -> device id -> Device. The same
// device id registered under two users yields two independent records.
type DeviceStore struct {
	file *jsonFile[map[string]map[string]Device]
	now  func() time.Time
}

func NewDeviceStore(dataDir string, logger *zap.Logger) *DeviceStore {
	return &DeviceStore{
		file: newJSONFile(filepath.Join(dataDir, "devices.json"), func() map[string]map[string]Device {
			return map[string]map[string]Device{}
		}, logger),
		now: time.Now,
	}
}

// Register creates or overwrites the user's record for deviceID.
func (s *DeviceStore) Register(userID, deviceID, deviceName, deviceType string) (Device, error) {
	registeredAt := s.now().UTC()
	d := Device{
		DeviceID:     deviceID,
		DeviceName:   deviceName,
		DeviceType:   deviceType,
		RegisteredAt: &registeredAt,
	}

	err := s.file.update(func(devices map[string]map[string]Device) (map[string]map[string]Device, error) {
		if devices[userID] == nil {
			devices[userID] = map[string]Device{}
		}
		devices[userID][deviceID] = d
		return devices, nil
	})
	if err != nil {
		return Device{}, err
	}
	return d, nil
}

// Touch sets the name on the user's record for deviceID, keeping its type and
// registration time. A missing record is created.
func (s *DeviceStore) Touch(userID, deviceID, deviceName string) (Device, error) {
	var d Device
	err := s.file.update(func(devices map[string]map[string]Device) (map[string]map[string]Device, error) {
		if devices[userID] == nil {
			devices[userID] = map[string]Device{}
		}
		existing, ok := devices[userID][deviceID]
		if !ok {
			registeredAt := s.now().UTC()
			existing = Device{DeviceID: deviceID, RegisteredAt: &registeredAt}
		}
		existing.DeviceName = deviceName
		devices[userID][deviceID] = existing
		d = existing
		return devices, nil
	})
	if err != nil {
		return Device{}, err
	}
	return d, nil
}

// List returns the user's devices keyed by device id; never nil.
func (s *DeviceStore) List(userID string) map[string]Device {
	out := map[string]Device{}
	s.file.view(func(devices map[string]map[string]Device) {
		for id, d := range devices[userID] {
			out[id] = d
		}
	})
	return out
}
