// Package refdb decodes the on-chain reference directory accounts that
// map entity names to typed references. Each directory account holds a
// fixed header followed by fixed-size record slots; the reference type
// of every record in one directory is declared once in the header.
package refdb

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/solfarms/solfarm/common"
)

// MaxNameLen is the capacity of the zero-padded name field in headers
// and records.
const MaxNameLen = 64

// HeaderLen is the serialized size of a directory header.
const HeaderLen = 4 + 4 + 1 + MaxNameLen

// RecordFixedLen is the serialized size of a record without its
// reference payload.
const RecordFixedLen = 2 + 2 + MaxNameLen

// ReferenceType declares what kind of payload every record in a
// directory carries.
type ReferenceType uint8

const (
	ReferenceEmpty ReferenceType = iota
	ReferencePubkey
	ReferenceU8
	ReferenceU16
	ReferenceU32
	ReferenceU64
	ReferenceF64
)

func (t ReferenceType) String() string {
	switch t {
	case ReferenceEmpty:
		return "Empty"
	case ReferencePubkey:
		return "Pubkey"
	case ReferenceU8:
		return "U8"
	case ReferenceU16:
		return "U16"
	case ReferenceU32:
		return "U32"
	case ReferenceU64:
		return "U64"
	case ReferenceF64:
		return "F64"
	}
	return "Unknown"
}

// Size returns the payload length in bytes for this reference type.
func (t ReferenceType) Size() int {
	switch t {
	case ReferencePubkey:
		return 32
	case ReferenceU8:
		return 1
	case ReferenceU16:
		return 2
	case ReferenceU32:
		return 4
	case ReferenceU64, ReferenceF64:
		return 8
	}
	return 0
}

// Reference is a decoded record payload. Which field is meaningful
// depends on Type.
type Reference struct {
	Type   ReferenceType
	Pubkey solana.PublicKey
	Value  uint64
	Float  float64
}

// NewPubkeyReference is the common case: a record pointing at an
// account.
func NewPubkeyReference(key solana.PublicKey) Reference {
	return Reference{Type: ReferencePubkey, Pubkey: key}
}

// Header is the fixed prefix of every directory account.
type Header struct {
	Counter       uint32
	ActiveRecords uint32
	RefType       ReferenceType
	Name          string
}

// Record is one directory slot. A slot with a zero counter is free;
// the on-chain program assigns counters starting from 1.
type Record struct {
	Counter   uint16
	Tag       uint16
	Name      string
	Reference Reference
}

// PackName zero-pads a name into the fixed on-chain field.
func PackName(name string) ([MaxNameLen]byte, error) {
	var out [MaxNameLen]byte
	if len(name) > MaxNameLen {
		return out, common.ValueErrorf("name %q exceeds %d bytes", name, MaxNameLen)
	}
	copy(out[:], name)
	return out, nil
}

// UnpackName trims the zero padding off a stored name.
func UnpackName(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

// IsInitialized reports whether a directory account has been written at
// least once. An all-zero account is allocated but empty.
func IsInitialized(data []byte) bool {
	if len(data) < HeaderLen {
		return false
	}
	counter := binary.LittleEndian.Uint32(data[0:4])
	active := binary.LittleEndian.Uint32(data[4:8])
	return counter > 0 && uint64(active) <= uint64(Capacity(data, ReferenceType(data[8])))
}

// DecodeHeader reads the directory header.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderLen {
		return Header{}, &common.ParseError{What: "refdb header: account too short"}
	}
	return Header{
		Counter:       binary.LittleEndian.Uint32(data[0:4]),
		ActiveRecords: binary.LittleEndian.Uint32(data[4:8]),
		RefType:       ReferenceType(data[8]),
		Name:          UnpackName(data[9 : 9+MaxNameLen]),
	}, nil
}

// RecordLen returns the full slot size for a directory of the given
// reference type.
func RecordLen(t ReferenceType) int {
	return RecordFixedLen + t.Size()
}

// Capacity returns how many record slots fit in the account.
func Capacity(data []byte, t ReferenceType) int {
	if len(data) < HeaderLen {
		return 0
	}
	return (len(data) - HeaderLen) / RecordLen(t)
}

func decodeReference(t ReferenceType, payload []byte) Reference {
	ref := Reference{Type: t}
	switch t {
	case ReferencePubkey:
		ref.Pubkey = solana.PublicKeyFromBytes(payload[:32])
	case ReferenceU8:
		ref.Value = uint64(payload[0])
	case ReferenceU16:
		ref.Value = uint64(binary.LittleEndian.Uint16(payload))
	case ReferenceU32:
		ref.Value = uint64(binary.LittleEndian.Uint32(payload))
	case ReferenceU64:
		ref.Value = binary.LittleEndian.Uint64(payload)
	case ReferenceF64:
		ref.Float = math.Float64frombits(binary.LittleEndian.Uint64(payload))
	}
	return ref
}

func encodeReference(ref Reference, out []byte) {
	switch ref.Type {
	case ReferencePubkey:
		copy(out, ref.Pubkey[:])
	case ReferenceU8:
		out[0] = byte(ref.Value)
	case ReferenceU16:
		binary.LittleEndian.PutUint16(out, uint16(ref.Value))
	case ReferenceU32:
		binary.LittleEndian.PutUint32(out, uint32(ref.Value))
	case ReferenceU64:
		binary.LittleEndian.PutUint64(out, ref.Value)
	case ReferenceF64:
		binary.LittleEndian.PutUint64(out, math.Float64bits(ref.Float))
	}
}

// RecordAt decodes the record in slot idx. It returns found=false for a
// free slot.
func RecordAt(data []byte, t ReferenceType, idx int) (Record, bool, error) {
	size := RecordLen(t)
	off := HeaderLen + idx*size
	if idx < 0 || off+size > len(data) {
		return Record{}, false, common.ValueErrorf("record index %d out of range", idx)
	}
	slot := data[off : off+size]
	counter := binary.LittleEndian.Uint16(slot[0:2])
	if counter == 0 {
		return Record{}, false, nil
	}
	rec := Record{
		Counter: counter,
		Tag:     binary.LittleEndian.Uint16(slot[2:4]),
		Name:    UnpackName(slot[4 : 4+MaxNameLen]),
	}
	if t != ReferenceEmpty {
		rec.Reference = decodeReference(t, slot[RecordFixedLen:])
	}
	return rec, true, nil
}

// FindIndex returns the slot of the first occupied record with the
// given name, or -1.
func FindIndex(data []byte, t ReferenceType, name string) int {
	n := Capacity(data, t)
	for i := 0; i < n; i++ {
		rec, ok, err := RecordAt(data, t, i)
		if err != nil {
			return -1
		}
		if ok && rec.Name == name {
			return i
		}
	}
	return -1
}

// FindLastIndex returns the slot of the last occupied record with the
// given name, or -1.
func FindLastIndex(data []byte, t ReferenceType, name string) int {
	last := -1
	n := Capacity(data, t)
	for i := 0; i < n; i++ {
		rec, ok, err := RecordAt(data, t, i)
		if err != nil {
			break
		}
		if ok && rec.Name == name {
			last = i
		}
	}
	return last
}

// FindNextIndex returns the first free slot, or -1 when the directory
// is full.
func FindNextIndex(data []byte, t ReferenceType) int {
	n := Capacity(data, t)
	for i := 0; i < n; i++ {
		_, ok, err := RecordAt(data, t, i)
		if err != nil {
			return -1
		}
		if !ok {
			return i
		}
	}
	return -1
}

// Records decodes every occupied slot in directory order.
func Records(data []byte) ([]Record, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}
	var out []Record
	n := Capacity(data, hdr.RefType)
	for i := 0; i < n; i++ {
		rec, ok, err := RecordAt(data, hdr.RefType, i)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// PackRecord serializes a record the way the on-chain program stores
// it, for use in directory write instructions.
func PackRecord(rec Record) ([]byte, error) {
	name, err := PackName(rec.Name)
	if err != nil {
		return nil, err
	}
	out := make([]byte, RecordLen(rec.Reference.Type))
	binary.LittleEndian.PutUint16(out[0:2], rec.Counter)
	binary.LittleEndian.PutUint16(out[2:4], rec.Tag)
	copy(out[4:4+MaxNameLen], name[:])
	encodeReference(rec.Reference, out[RecordFixedLen:])
	return out, nil
}

// PackHeader serializes a directory header, mostly useful in tests and
// directory initialization instructions.
func PackHeader(hdr Header) ([]byte, error) {
	name, err := PackName(hdr.Name)
	if err != nil {
		return nil, err
	}
	out := make([]byte, HeaderLen)
	binary.LittleEndian.PutUint32(out[0:4], hdr.Counter)
	binary.LittleEndian.PutUint32(out[4:8], hdr.ActiveRecords)
	out[8] = byte(hdr.RefType)
	copy(out[9:], name[:])
	return out, nil
}
