package manager

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	iconerrors "github.com/go-drift/icons/pkg/errors"
)

// ParseName splits "prefix:name" into its parts. A name without a colon uses
// defaultPrefix; with no default prefix it is invalid. Input is trimmed and
// NFC-normalized so that visually identical names resolve identically.
func ParseName(name, defaultPrefix string) (prefix, local string, err error) {
	raw := name
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return "", "", iconerrors.Newf("manager.ParseName", iconerrors.KindInvalidName, raw, "empty name")
	}

	if !strings.Contains(name, ":") {
		if defaultPrefix == "" {
			return "", "", iconerrors.Newf("manager.ParseName", iconerrors.KindInvalidName, raw, "missing prefix")
		}
		return defaultPrefix, name, nil
	}

	parts := strings.Split(name, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", iconerrors.Newf("manager.ParseName", iconerrors.KindInvalidName, raw, "expected prefix:name")
	}
	return parts[0], parts[1], nil
}
