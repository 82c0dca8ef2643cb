// Package gameid generates game identifiers: a UUIDv7 rendered as a
// 26-character Crockford base32 string, so ids sort by creation time.
package gameid

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Crockford's base32, lower case
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded id
const Length = 26

// RandSource lets tests pin the random portion of an id
type RandSource interface {
	Intn(n int) int
}

// Generator creates game ids. It is safe for concurrent use.
type Generator struct {
	mu         sync.Mutex
	clock      quartz.Clock
	randSource RandSource
}

// NewGenerator creates a generator. A nil clock means the real clock and a
// nil randSource means the uuid package's crypto/rand source.
func NewGenerator(clock quartz.Clock, randSource RandSource) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{clock: clock, randSource: randSource}
}

// Generate creates a new game id using the real clock and crypto/rand
func Generate() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate creates a new game id
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return encodeBase32(g.uuidV7())
}

// uuidV7 takes a random RFC 4122 uuid and stamps the 48-bit unix
// millisecond timestamp and version 7 over it. uuid.NewV7 reads the wall
// clock directly, so the timestamp comes from the injected clock instead.
func (g *Generator) uuidV7() uuid.UUID {
	var u uuid.UUID
	if g.randSource == nil {
		u = uuid.New()
	} else {
		var err error
		if u, err = uuid.NewRandomFromReader(randReader{g.randSource}); err != nil {
			panic("gameid: reading random source: " + err.Error())
		}
	}

	ms := uint64(g.clock.Now("gameid").UnixMilli())
	u[0] = byte(ms >> 40)
	u[1] = byte(ms >> 32)
	u[2] = byte(ms >> 24)
	u[3] = byte(ms >> 16)
	u[4] = byte(ms >> 8)
	u[5] = byte(ms)
	u[6] = (u[6] & 0x0f) | 0x70
	return u
}

// randReader adapts a RandSource to io.Reader
type randReader struct {
	src RandSource
}

func (r randReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.src.Intn(256))
	}
	return len(p), nil
}

// encodeBase32 renders the 128-bit value as 26 symbols of 5 bits each; the
// leading symbol carries only the top 3 bits.
func encodeBase32(data [16]byte) string {
	hi := binary.BigEndian.Uint64(data[:8])
	lo := binary.BigEndian.Uint64(data[8:])

	out := make([]byte, Length)
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Validate checks that id has the shape produced by Generate
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game id must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("game id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
