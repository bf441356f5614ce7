// Package store is the remote key-document contract the replica syncs
// against, with in-memory, Redis and document-server implementations.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"go-restaurant-sync/internal/model"

	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("store closed")

// Document is one delivery of the shared aggregate. Exists is false when the
// key has never been written or its body could not be decoded.
type Document struct {
	Exists bool
	State  model.SystemState
}

// Store is a remote key-document store with whole-document writes.
type Store interface {
	// Get reads the current value.
	Get(ctx context.Context, key string) (Document, error)
	// Put overwrites the whole document. There is no concurrency token.
	Put(ctx context.Context, key string, state model.SystemState) error
	// Subscribe delivers the current value first and then one value per write
	// by any client, including the caller. The channel is closed when ctx ends.
	Subscribe(ctx context.Context, key string) (<-chan Document, error)
}

// decode turns a stored body into a Document. A malformed body is reported as
// missing so the replica treats it as a first run.
func decode(key string, body []byte) Document {
	if len(body) == 0 {
		return Document{}
	}
	var state model.SystemState
	if err := json.Unmarshal(body, &state); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("malformed document, treating as missing")
		return Document{}
	}
	state.Normalize()
	return Document{Exists: true, State: state}
}

// offerLatest puts doc on a capacity-1 channel, replacing a value the reader
// has not taken yet. Every document is a full aggregate, so only the newest
// pending one matters.
func offerLatest(ch chan Document, doc Document) {
	for {
		select {
		case ch <- doc:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
