package entities

// DeviceType is a closed enum; the classifier returns nothing outside
// the four values below.
type DeviceType string

const (
	DeviceAndroid     DeviceType = "android"
	DeviceIOS         DeviceType = "ios"
	DeviceMobileOther DeviceType = "mobile_other"
	DeviceDesktop     DeviceType = "desktop"
)

// DeviceTypes lists every DeviceType, in the order analytics reports them.
var DeviceTypes = []DeviceType{DeviceAndroid, DeviceIOS, DeviceMobileOther, DeviceDesktop}

func (d DeviceType) Valid() bool {
	switch d {
	case DeviceAndroid, DeviceIOS, DeviceMobileOther, DeviceDesktop:
		return true
	}
	return false
}

func (d DeviceType) String() string { return string(d) }
