package core

import (
	"errors"
	"strings"

	"assistive.app/buttons/internal/store"
	"go.uber.org/zap"
)

var ErrDeviceIDRequired = errors.New("device_id is required")

type DeviceService struct {
	devices *store.DeviceStore
	logger  *zap.Logger
}

func NewDeviceService(devices *store.DeviceStore, logger *zap.Logger) *DeviceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{devices: devices, logger: logger}
}

// Register records deviceID under userID, replacing any earlier record for
// the same pair. The name defaults to the id.
func (s *DeviceService) Register(userID, deviceID, deviceName, deviceType string) (store.Device, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return store.Device{}, ErrDeviceIDRequired
	}
	if userID == "" {
		userID = DefaultUserID
	}
	if deviceName == "" {
		deviceName = deviceID
	}

	d, err := s.devices.Register(userID, deviceID, deviceName, deviceType)
	if err != nil {
		return store.Device{}, err
	}
	s.logger.Info("Device registered",
		zap.String("user_id", userID),
		zap.String("device_id", deviceID),
		zap.String("device_name", deviceName),
	)
	return d, nil
}

// AutoRegister is the trigger side-channel: it records the device name only
// when a name and a real user are given, and only logs failures. An existing
// record keeps its type and registration time.
func (s *DeviceService) AutoRegister(userID, deviceID, deviceName string) {
	if deviceName == "" || userID == "" || userID == DefaultUserID {
		return
	}
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}
	if _, err := s.devices.Touch(userID, deviceID, deviceName); err != nil {
		s.logger.Warn("Device auto-registration failed",
			zap.String("user_id", userID),
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
	}
}

func (s *DeviceService) List(userID string) map[string]store.Device {
	if userID == "" {
		userID = DefaultUserID
	}
	return s.devices.List(userID)
}
