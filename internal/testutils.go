package internal

import "github.com/currantlabs/ble"

const (
	TestServiceUUID = "1276AAEE-DF5E-11E6-BF01-FE55135034F3"
	TestStatusUUID  = "12762B18-DF5E-11E6-BF01-FE55135034F3"
	TestTxUUID      = "1276B20A-DF5E-11E6-BF01-FE55135034F3"
	TestRxUUID      = "1276B20B-DF5E-11E6-BF01-FE55135034F3"

	TestStatusHandle = 0x0020
	TestTxHandle     = 0x0024
	TestRxHandle     = 0x0027
)

// GetTestProfile returns a device profile with status, tx and rx
// characteristics, plus any extra characteristic UUIDs given
func GetTestProfile(extra ...string) *ble.Profile {
	chars := []*ble.Characteristic{
		newTestChar(TestStatusUUID, TestStatusHandle),
		newTestChar(TestTxUUID, TestTxHandle),
		newTestChar(TestRxUUID, TestRxHandle),
	}
	for i, uuid := range extra {
		chars = append(chars, newTestChar(uuid, uint16(0x0040+i*3)))
	}
	return &ble.Profile{Services: []*ble.Service{{UUID: ble.MustParse(TestServiceUUID), Characteristics: chars}}}
}

func newTestChar(uuid string, valueHandle uint16) *ble.Characteristic {
	return &ble.Characteristic{UUID: ble.MustParse(uuid), Handle: valueHandle - 1, ValueHandle: valueHandle}
}
