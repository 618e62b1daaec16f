package application

import (
	"fmt"
	"strings"

	"insteon-alert/internal/domain"
)

// Normalizer turns device descriptors into canonical device IDs. A
// descriptor is either a hex address or a name known to the lookup.
type Normalizer struct {
	lookup DeviceLookup
}

func NewNormalizer(lookup DeviceLookup) *Normalizer {
	return &Normalizer{lookup: lookup}
}

// Normalize resolves a single descriptor. A name is looked up only once:
// the address it resolves to must itself be a valid hex address.
func (n *Normalizer) Normalize(device string) (domain.DeviceID, error) {
	id, ferr := n.normalize(device)
	if ferr != nil {
		return "", *ferr
	}
	return id, nil
}

func (n *Normalizer) normalize(device string) (domain.DeviceID, *FieldError) {
	if id, err := domain.ParseDeviceID(device); err == nil {
		return id, nil
	}

	if n.lookup != nil {
		if address, ok := n.lookup.FindAddressByName(device); ok {
			id, err := domain.ParseDeviceID(address)
			if err != nil {
				return "", &FieldError{
					Field:   "device",
					Value:   strings.TrimSpace(device),
					Message: fmt.Sprintf("resolves to %q in the lookup, which is not a valid Insteon device ID", address),
				}
			}
			return id, nil
		}
	}

	return "", &FieldError{
		Field:   "device",
		Value:   strings.TrimSpace(device),
		Message: "is not a valid Insteon device ID and no matching name was found in the lookup",
	}
}

// NormalizeAll parses a comma-separated descriptor list into unique device
// IDs in first-seen order. A nil list yields nil. Every token is checked and
// all failures are returned together.
func (n *Normalizer) NormalizeAll(devices *string) ([]domain.DeviceID, error) {
	if devices == nil {
		return nil, nil
	}

	var (
		ids  []domain.DeviceID
		errs ValidationErrors
		seen = make(map[domain.DeviceID]bool)
	)

	for _, token := range strings.Split(*devices, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		id, ferr := n.normalize(token)
		if ferr != nil {
			errs = append(errs, *ferr)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	if len(ids) == 0 {
		return nil, ValidationErrors{{Field: "device", Value: *devices, Message: "no devices given"}}
	}

	return ids, nil
}
