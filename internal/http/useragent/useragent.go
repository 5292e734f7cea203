// Package useragent maps raw User-Agent strings onto the fixed device
// taxonomy the resolver understands. Classification is heuristic; anything
// unrecognized reads as desktop, which always falls through to the default
// destination when no desktop rule exists.
package useragent

import (
	"strings"

	"github.com/relinkd/relink/internal/app/model"
)

// Classify derives the device class from a User-Agent header value.
func Classify(ua string) model.DeviceClass {
	ua = strings.ToLower(ua)

	switch {
	case strings.Contains(ua, "ipad"):
		return model.DeviceTablet
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipod"):
		return model.DeviceIOS
	case strings.Contains(ua, "android"):
		// Android tablets omit "mobile" from the UA; phones carry it.
		if strings.Contains(ua, "mobile") {
			return model.DeviceAndroid
		}
		return model.DeviceTablet
	case strings.Contains(ua, "tablet"), strings.Contains(ua, "kindle"),
		strings.Contains(ua, "silk"):
		return model.DeviceTablet
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "windows phone"),
		strings.Contains(ua, "blackberry"), strings.Contains(ua, "opera mini"):
		return model.DeviceMobile
	default:
		return model.DeviceDesktop
	}
}
