package application

import (
	"fmt"
	"net"
	"strings"

	"insteon-alert/internal/domain"
)

// FieldError describes one invalid invocation field.
type FieldError struct {
	Field   string
	Value   string
	Message string
}

func (e FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (%q)", e.Field, e.Message, e.Value)
}

// ValidationErrors is returned when an invocation is rejected before any
// call to the hub is made.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid alert parameters: " + strings.Join(msgs, "; ")
}

// Fields lists the names of the invalid fields, in reporting order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, e := range v {
		fields[i] = e.Field
	}
	return fields
}

// Invocation carries the raw alert parameters as received from the caller.
// Devices is a comma-separated list; nil means the field was not supplied.
type Invocation struct {
	Address  string
	Port     int
	Username string
	Password string
	Devices  *string
	Command  string
}

// Alert is a fully validated invocation.
type Alert struct {
	Endpoint domain.HubEndpoint
	Devices  []domain.DeviceID
	Command  domain.CommandSpec
}

func validateAddress(address string) (string, *FieldError) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", &FieldError{Field: "address", Message: "is required"}
	}
	// IPv4-mapped IPv6 text such as "::ffff:10.0.0.1" parses with a non-nil
	// To4, so any colon is rejected outright.
	ip := net.ParseIP(address)
	if ip == nil || ip.To4() == nil || strings.Contains(address, ":") {
		return "", &FieldError{Field: "address", Value: address, Message: "must be an IPv4 address"}
	}
	return ip.To4().String(), nil
}

func validatePort(port int) (uint16, *FieldError) {
	if port < 1 || port > 65535 {
		return 0, &FieldError{Field: "port", Value: fmt.Sprint(port), Message: "must be between 1 and 65535"}
	}
	return uint16(port), nil
}

func validateRequired(field, value string) *FieldError {
	if value == "" {
		return &FieldError{Field: field, Message: "is required"}
	}
	return nil
}

func validateCommand(name string) (domain.CommandSpec, *FieldError) {
	if strings.TrimSpace(name) == "" {
		return domain.CommandSpec{}, &FieldError{Field: "command", Message: "is required"}
	}
	spec, err := domain.LookupCommand(name)
	if err != nil {
		return domain.CommandSpec{}, &FieldError{Field: "command", Value: name, Message: "is not a recognized command"}
	}
	return spec, nil
}
