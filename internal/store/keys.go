package store

import (
	"encoding/binary"
	"fmt"
)

// Category tags the kind of entry a key addresses. Categories order keys on disk.
type Category byte

const (
	// CategoryProjectCount holds the next project id as a big-endian u64.
	CategoryProjectCount Category = 0x01
	// CategoryProject holds encoded Project records keyed by id.
	CategoryProject Category = 0x02
	// CategoryOracle holds the verifier identity.
	CategoryOracle Category = 0x03
)

// DataKey is a tagged storage key: a category and, for projects, the id payload.
type DataKey struct {
	Category Category
	ID       uint64
}

// ProjectCountKey addresses the id counter singleton.
func ProjectCountKey() DataKey {
	return DataKey{Category: CategoryProjectCount}
}

// ProjectKey addresses a single project.
func ProjectKey(id uint64) DataKey {
	return DataKey{Category: CategoryProject, ID: id}
}

// OracleKey addresses the oracle singleton.
func OracleKey() DataKey {
	return DataKey{Category: CategoryOracle}
}

// Bytes encodes the key as tag byte plus payload. The id is big-endian so byte order
// matches (category, id) order.
func (k DataKey) Bytes() []byte {
	if k.Category != CategoryProject {
		return []byte{byte(k.Category)}
	}
	var buf [9]byte
	buf[0] = byte(k.Category)
	binary.BigEndian.PutUint64(buf[1:], k.ID)
	return buf[:]
}

// ParseKey decodes a key produced by Bytes.
func ParseKey(b []byte) (DataKey, error) {
	if len(b) == 0 {
		return DataKey{}, fmt.Errorf("empty key")
	}
	switch c := Category(b[0]); c {
	case CategoryProjectCount, CategoryOracle:
		if len(b) != 1 {
			return DataKey{}, fmt.Errorf("key %x: unexpected payload", b)
		}
		return DataKey{Category: c}, nil
	case CategoryProject:
		if len(b) != 9 {
			return DataKey{}, fmt.Errorf("key %x: want 9 bytes, got %d", b, len(b))
		}
		return ProjectKey(binary.BigEndian.Uint64(b[1:])), nil
	default:
		return DataKey{}, fmt.Errorf("key %x: unknown category 0x%02x", b, b[0])
	}
}

// Compare orders keys by category, then id.
func (k DataKey) Compare(other DataKey) int {
	switch {
	case k.Category < other.Category:
		return -1
	case k.Category > other.Category:
		return 1
	case k.ID < other.ID:
		return -1
	case k.ID > other.ID:
		return 1
	default:
		return 0
	}
}

func (k DataKey) String() string {
	switch k.Category {
	case CategoryProjectCount:
		return "ProjectCount"
	case CategoryProject:
		return fmt.Sprintf("Project(%d)", k.ID)
	case CategoryOracle:
		return "OracleKey"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", byte(k.Category))
	}
}
