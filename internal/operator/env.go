package operator

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Env supplies the non-deterministic inputs operators need, so the operators
// themselves stay pure.
type Env struct {
	Now        func() time.Time
	NewID      func() string
	NewComanda func() string
}

// DefaultEnv uses the wall clock, UUIDv7 ids and random 4-digit comandas.
func DefaultEnv() Env {
	return Env{
		Now:        time.Now,
		NewID:      newID,
		NewComanda: newComanda,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// newComanda returns a number in 1000..9999.
func newComanda() string {
	return strconv.Itoa(1000 + rand.IntN(9000))
}

func (e Env) millis() int64 {
	return e.Now().UnixMilli()
}

func (e Env) today() string {
	return e.Now().Format("2006-01-02")
}
