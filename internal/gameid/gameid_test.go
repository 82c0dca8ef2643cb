package gameid

import (
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	id := Generate()
	require.Len(t, id, Length)
	require.NoError(t, Validate(id))
}

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator(nil, nil)
	ids := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen.Generate()
		require.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}
}

func TestGenerateSortsByTime(t *testing.T) {
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	gen := NewGenerator(clock, nil)

	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, gen.Generate())
		clock.Advance(time.Millisecond)
	}

	for i := 1; i < len(ids); i++ {
		assert.Negative(t, strings.Compare(ids[i-1], ids[i]), "%s should sort before %s", ids[i-1], ids[i])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	a := NewGenerator(clock, newMockRandSource(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)).Generate()
	b := NewGenerator(clock, newMockRandSource(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)).Generate()
	c := NewGenerator(clock, newMockRandSource(10, 9, 8, 7, 6, 5, 4, 3, 2, 1)).Generate()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a[:10], c[:10], "same millisecond shares the timestamp prefix")
}

func TestUUIDV7Layout(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := quartz.NewMock(t)
	clock.Set(now)

	for _, gen := range []*Generator{
		NewGenerator(clock, nil),
		NewGenerator(clock, newMockRandSource(0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)),
	} {
		u := gen.uuidV7()
		assert.Equal(t, uuid.Version(7), u.Version())
		assert.Equal(t, uuid.RFC4122, u.Variant())

		var ts [8]byte
		copy(ts[2:], u[:6])
		assert.Equal(t, uint64(now.UnixMilli()), binary.BigEndian.Uint64(ts[:]))
	}
}

func TestEncodeBase32(t *testing.T) {
	var zero [16]byte
	assert.Equal(t, strings.Repeat("0", Length), encodeBase32(zero))

	var max [16]byte
	for i := range max {
		max[i] = 0xff
	}
	assert.Equal(t, "7"+strings.Repeat("z", Length-1), encodeBase32(max))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid id", "01h5n0et5q6mt3v7ms1234abcd", false},
		{"too short", "01h5n0et5q6mt3v7ms123", true},
		{"too long", "01h5n0et5q6mt3v7ms1234abcdef", true},
		{"first char too high", "81h5n0et5q6mt3v7ms1234abcd", true},
		{"invalid character", "01h5n0et5q6mt3v7ms1234abci", true},
		{"uppercase not allowed", "01H5N0ET5Q6MT3V7MS1234ABCD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type mockRandSource struct {
	values []int
	index  int
}

func newMockRandSource(values ...int) *mockRandSource {
	return &mockRandSource{values: values}
}

func (m *mockRandSource) Intn(n int) int {
	if m.index >= len(m.values) {
		return 0
	}
	v := m.values[m.index] % n
	m.index++
	return v
}
