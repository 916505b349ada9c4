package util

import (
	"strings"

	"github.com/currantlabs/ble"
)

// AddrEqualAddr compares two device addresses ignoring case
func AddrEqualAddr(a string, b string) bool {
	return strings.ToUpper(a) == strings.ToUpper(b)
}

// UuidEqualStr compares a ble UUID against its dashed string form
func UuidEqualStr(u ble.UUID, s string) bool {
	compare := strings.Replace(s, "-", "", -1)
	return AddrEqualAddr(compare, u.String())
}
