// internal/daily/daily.go
//
// Deterministic daily puzzles. Every player asking on the same UTC date gets
// a generator seeded from HMAC(salt, YYYY-MM-DD), so the deal only changes
// when the date or the salt does.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed derives the day's seed from the first 8 bytes of HMAC-SHA256(salt, DateKey(date)).
func Seed(date time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// Rand returns a PCG-backed source for the day.
func Rand(date time.Time, salt string) *rand.Rand {
	s := Seed(date, salt)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}
