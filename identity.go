package govledger

import (
	"regexp"

	"github.com/petrodao/govledger/errors"
)

// isValidIdentity limits principals to a printable, url-safe alphabet.
// The host environment hands us opaque principal strings; we only
// reject the ones that could not survive being used as a store key.
var isValidIdentity = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{1,80}$`).MatchString

// Identity is an opaque principal identifier as supplied by the host:
// an attestor, a proposer, a voter or a funds recipient. Identities
// are compared byte for byte and carry no key material.
type Identity string

// Validate returns an error if this is not a usable identity.
func (i Identity) Validate() error {
	if i == "" {
		return errors.Wrap(errors.ErrEmpty, "identity")
	}
	if !isValidIdentity(string(i)) {
		return errors.Wrapf(errors.ErrInput, "invalid identity: %q", string(i))
	}
	return nil
}

// Equals returns true iff both identities name the same principal.
func (i Identity) Equals(other Identity) bool {
	return i == other
}

func (i Identity) String() string {
	return string(i)
}
