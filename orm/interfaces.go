// Package orm provides thin persistence helpers over the key-value
// store: prefixed model buckets and monotonic sequences.
package orm

import (
	"github.com/petrodao/govledger"
)

// Model is implemented by any entity that can be stored using
// ModelBucket. Marshal/Unmarshal define the binary representation,
// Validate guards what may be persisted.
type Model interface {
	govledger.Persistent
	Validate() error
}
