package orm

import (
	"encoding/binary"

	"github.com/petrodao/govledger"
)

// Sequence maintains a monotonic counter and generates a series of
// ids. The first id handed out is 0, each key is greater than the
// last, both as NextInt() and by bytes.Compare() on NextVal(). Ids are
// never reused, even when the entity they keyed is later deleted.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter. Sequence is using following
// pattern to construct a key:
//
//	_s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	id := "_s." + bucket + ":" + name
	return Sequence{
		id: []byte(id),
	}
}

// NextVal acquires the next id and returns it as 8 bytes.
func (s *Sequence) NextVal(db govledger.KVStore) ([]byte, error) {
	val, err := s.next(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(val), nil
}

// NextInt acquires the next id and returns it as an int.
func (s *Sequence) NextInt(db govledger.KVStore) (int64, error) {
	return s.next(db)
}

// Latest returns the count of ids handed out so far, which is also
// the id the next call to NextInt will return. This method does not
// modify the sequence state.
func (s *Sequence) Latest(db govledger.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, err
	}
	return DecodeSequence(raw), nil
}

func (s *Sequence) next(db govledger.KVStore) (int64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, err
	}
	val := DecodeSequence(raw)
	if err := db.Set(s.id, EncodeSequence(val+1)); err != nil {
		return 0, err
	}
	return val, nil
}

// DecodeSequence converts the stored bytes back to an int. Nil decodes
// to zero.
func DecodeSequence(bz []byte) int64 {
	if bz == nil {
		return 0
	}
	val := binary.BigEndian.Uint64(bz)
	return int64(val)
}

// EncodeSequence stores an int as 8 big-endian bytes, so sequence
// values sort the same as the ints they encode.
func EncodeSequence(val int64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, uint64(val))
	return bz
}
