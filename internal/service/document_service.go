package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/repository"
	"go-restaurant-sync/internal/ws"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidKey      = errors.New("document key is required")
	ErrInvalidDocument = errors.New("document body must be a JSON object")
)

// DocumentService is the hosted document store: get, whole-document put, and
// a push of every put to the key's subscribers.
type DocumentService interface {
	Get(key string) (*model.DocumentEnvelope, error)
	Put(key string, body []byte) (*model.DocumentEnvelope, error)
	List() ([]model.DocumentEnvelope, error)
	// Payload is the encoded envelope, as pushed to subscribers.
	Payload(key string) ([]byte, error)
}

type documentService struct {
	docRepo repository.DocumentRepository
	wsHub   *ws.Hub

	// writeMu keeps save and broadcast in the same order across writers.
	writeMu sync.Mutex
}

func NewDocumentService(docRepo repository.DocumentRepository, hub *ws.Hub) DocumentService {
	return &documentService{
		docRepo: docRepo,
		wsHub:   hub,
	}
}

func envelope(key string, doc *model.Document) *model.DocumentEnvelope {
	if doc == nil {
		return &model.DocumentEnvelope{Key: key}
	}
	return &model.DocumentEnvelope{
		Key:      key,
		Exists:   true,
		Revision: doc.Revision,
		Data:     json.RawMessage(doc.Body),
	}
}

func (s *documentService) Get(key string) (*model.DocumentEnvelope, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	doc, err := s.docRepo.FindByKey(key)
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", key, err)
	}
	return envelope(key, doc), nil
}

func (s *documentService) Put(key string, body []byte) (*model.DocumentEnvelope, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidDocument
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	doc, err := s.docRepo.Save(key, string(trimmed))
	if err != nil {
		return nil, fmt.Errorf("save document %s: %w", key, err)
	}
	env := envelope(key, doc)

	msg, err := json.Marshal(env)
	if err != nil {
		return nil, err
	}
	if s.wsHub != nil {
		s.wsHub.Broadcast <- ws.Message{Key: key, Payload: msg}
	}

	log.Debug().Str("key", key).Int64("revision", doc.Revision).Int("bytes", len(trimmed)).Msg("document written")
	return env, nil
}

func (s *documentService) List() ([]model.DocumentEnvelope, error) {
	docs, err := s.docRepo.FindAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.DocumentEnvelope, 0, len(docs))
	for _, d := range docs {
		out = append(out, model.DocumentEnvelope{Key: d.Key, Exists: true, Revision: d.Revision})
	}
	return out, nil
}

func (s *documentService) Payload(key string) ([]byte, error) {
	env, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
