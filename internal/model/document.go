package model

import (
	"encoding/json"
	"time"
)

// Document is a row of the document server: one JSON body per key.
// Revision grows by one on every write.
type Document struct {
	Key       string    `gorm:"column:doc_key;type:varchar(255);primaryKey" json:"key"`
	Body      string    `gorm:"type:text;not null" json:"-"`
	Revision  int64     `gorm:"not null;default:0" json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// DocumentEnvelope is what the document server returns for GET and pushes to
// subscribers on every write.
type DocumentEnvelope struct {
	Key      string          `json:"key"`
	Exists   bool            `json:"exists"`
	Revision int64           `json:"revision"`
	Data     json.RawMessage `json:"data,omitempty"`
}
