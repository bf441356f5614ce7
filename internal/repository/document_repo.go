package repository

import (
	"errors"
	"time"

	"go-restaurant-sync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository interface {
	// FindByKey returns nil, nil when the key has never been written.
	FindByKey(key string) (*model.Document, error)
	// Save overwrites the body and bumps the revision.
	Save(key string, body string) (*model.Document, error)
	FindAll() ([]model.Document, error)
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db}
}

func (r *documentRepo) FindByKey(key string) (*model.Document, error) {
	var doc model.Document
	err := r.db.First(&doc, "doc_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) Save(key string, body string) (*model.Document, error) {
	var saved model.Document

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		doc := model.Document{
			Key:       key,
			Body:      body,
			Revision:  1,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// Upsert: a whole-document overwrite, no optimistic concurrency.
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "doc_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"body":       body,
				"revision":   gorm.Expr("documents.revision + 1"),
				"updated_at": now,
			}),
		}).Create(&doc).Error; err != nil {
			return err
		}
		return tx.First(&saved, "doc_key = ?", key).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *documentRepo) FindAll() ([]model.Document, error) {
	var docs []model.Document
	err := r.db.Order("doc_key ASC").Find(&docs).Error
	return docs, err
}
