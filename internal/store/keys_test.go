package store

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataKey_BytesRoundTrip(t *testing.T) {
	keys := []DataKey{
		ProjectCountKey(),
		ProjectKey(0),
		ProjectKey(1),
		ProjectKey(math.MaxUint64),
		OracleKey(),
	}
	for _, k := range keys {
		parsed, err := ParseKey(k.Bytes())
		require.NoError(t, err, k.String())
		require.Equal(t, k, parsed)
	}
}

func TestDataKey_Layout(t *testing.T) {
	require.Equal(t, []byte{0x01}, ProjectCountKey().Bytes())
	require.Equal(t, []byte{0x03}, OracleKey().Bytes())
	require.Equal(t, []byte{0x02, 0, 0, 0, 0, 0, 0, 0x01, 0x02}, ProjectKey(258).Bytes())
}

func TestDataKey_NoCollisions(t *testing.T) {
	seen := map[string]DataKey{}
	keys := []DataKey{ProjectCountKey(), OracleKey()}
	for id := uint64(0); id < 300; id++ {
		keys = append(keys, ProjectKey(id))
	}
	for _, k := range keys {
		enc := string(k.Bytes())
		prev, dup := seen[enc]
		require.False(t, dup, "%s collides with %s", k, prev)
		seen[enc] = k
	}
}

func TestDataKey_OrderMatchesBytes(t *testing.T) {
	keys := []DataKey{ProjectCountKey(), ProjectKey(0), ProjectKey(255), ProjectKey(256), ProjectKey(1 << 40), OracleKey()}
	for i := 1; i < len(keys); i++ {
		require.Equal(t, -1, keys[i-1].Compare(keys[i]))
		require.Equal(t, -1, bytes.Compare(keys[i-1].Bytes(), keys[i].Bytes()))
	}
	require.Equal(t, 0, ProjectKey(7).Compare(ProjectKey(7)))
}

func TestParseKey_Invalid(t *testing.T) {
	for _, raw := range [][]byte{nil, {0x02, 0x01}, {0x01, 0x00}, {0x7f}} {
		_, err := ParseKey(raw)
		require.Error(t, err, "%x", raw)
	}
}

func TestDataKey_String(t *testing.T) {
	require.Equal(t, "ProjectCount", ProjectCountKey().String())
	require.Equal(t, "Project(42)", ProjectKey(42).String())
	require.Equal(t, "OracleKey", OracleKey().String())
}
