package revenue

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/petrodao/govledger"
	"github.com/petrodao/govledger/errors"
	"github.com/petrodao/govledger/gconf"
)

const pkgName = "revenue"

// Configuration holds the ledger parameters. It is persisted once at
// initialization and read by every operation, so tests can run the
// same code with a tiny supply ceiling or a zero lock period.
type Configuration struct {
	// MaxSupply is the ceiling the sum of all recorded amounts may
	// never exceed, including amounts that were released since.
	MaxSupply int64 `cbor:"1,keyasint"`

	// LockPeriod is how many ticks after recording an entry stays
	// locked. Release is allowed at lockedUntil exactly, not before.
	LockPeriod govledger.Tick `cbor:"2,keyasint"`

	// Currencies is the exact-match, case-sensitive allow-list.
	Currencies []string `cbor:"3,keyasint"`

	// AuditRelease makes Release append an audit row like every other
	// mutating operation. Off by default to match the reference
	// behavior, which audits recordings but not releases.
	AuditRelease bool `cbor:"4,keyasint"`
}

// DefaultConfiguration returns the production parameters.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxSupply:  1_000_000_000_000,
		LockPeriod: 1440,
		Currencies: []string{"USD", "STX", "OIL"},
	}
}

func (c *Configuration) Marshal() ([]byte, error)   { return cbor.Marshal(c) }
func (c *Configuration) Unmarshal(raw []byte) error { return cbor.Unmarshal(raw, c) }

func (c *Configuration) Validate() error {
	if c.MaxSupply <= 0 {
		return errors.Wrap(errors.ErrInput, "max supply must be positive")
	}
	if c.LockPeriod < 0 {
		return errors.Wrap(errors.ErrInput, "lock period must not be negative")
	}
	if len(c.Currencies) == 0 {
		return errors.Wrap(errors.ErrEmpty, "currency allow-list")
	}
	for _, cur := range c.Currencies {
		if cur == "" {
			return errors.Wrap(errors.ErrEmpty, "currency")
		}
	}
	return nil
}

func (c *Configuration) allowsCurrency(currency string) bool {
	for _, cur := range c.Currencies {
		if cur == currency {
			return true
		}
	}
	return false
}

func loadConf(db govledger.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, pkgName, &conf); err != nil {
		return nil, errors.Wrap(err, "revenue configuration")
	}
	return &conf, nil
}
