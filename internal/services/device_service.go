package services

import (
	ua "github.com/mileusna/useragent"

	"deeplinkqr/internal/entities"
)

type DeviceService struct{}

// Classify maps a raw User-Agent header to a device type. Pure function,
// no I/O. Empty or unrecognisable input resolves to desktop rather than
// an error. Tablets count as mobile, so an iPad classifies as ios.
func (DeviceService) Classify(userAgent string) entities.DeviceType {
	parsed := ua.Parse(userAgent)
	mobile := parsed.Mobile || parsed.Tablet

	switch {
	case mobile && parsed.OS == ua.Android:
		return entities.DeviceAndroid
	case mobile && parsed.OS == ua.IOS:
		return entities.DeviceIOS
	case mobile:
		return entities.DeviceMobileOther
	default:
		return entities.DeviceDesktop
	}
}
