package domain

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidDeviceID = errors.New("invalid device id")

// DeviceID is the canonical 3-byte Insteon address: six uppercase hex digits.
type DeviceID string

var deviceIDPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2})([:.-]?)([0-9A-Fa-f]{2})([:.-]?)([0-9A-Fa-f]{2})$`)

// ParseDeviceID accepts "AABBCC", "aa:bb:cc", "aa-bb-cc" or "aa.bb.cc".
// Both separators must be the same; mixed forms like "aa:bb-cc" are rejected.
func ParseDeviceID(s string) (DeviceID, error) {
	m := deviceIDPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || m[2] != m[4] {
		return "", fmt.Errorf("%w: %q", ErrInvalidDeviceID, s)
	}
	return DeviceID(strings.ToUpper(m[1] + m[3] + m[5])), nil
}

func (d DeviceID) String() string {
	return string(d)
}

// HubEndpoint holds the connection parameters of one Insteon Hub.
type HubEndpoint struct {
	Address  string
	Port     uint16
	Username string
	Password string
}

func (e HubEndpoint) HostPort() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(int(e.Port)))
}
