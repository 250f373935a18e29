// Package phone normalizes phone numbers with libphonenumber metadata.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/pkg/errors"

	"accounts/config"
	"accounts/internal/domain/service"
)

// ErrInvalidNumber is returned for numbers that do not parse or are not assignable.
var ErrInvalidNumber = errors.New("invalid phone number")

type normalizer struct {
	defaultRegion string
}

// NewNormalizer returns a normalizer that formats numbers as E.164.
func NewNormalizer(cfg *config.Config) service.PhoneNormalizer {
	region := "US"
	if cfg != nil && cfg.Phone.DefaultRegion != "" {
		region = strings.ToUpper(cfg.Phone.DefaultRegion)
	}

	return &normalizer{defaultRegion: region}
}

// Normalize returns the E.164 form. An empty input stays empty.
func (n *normalizer) Normalize(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(phone, n.defaultRegion)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidNumber, "parse %q: %v", phone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.Wrapf(ErrInvalidNumber, "%q", phone)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}
