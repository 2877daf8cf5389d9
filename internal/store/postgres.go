package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// document is the single table all collections share
type document struct {
	Collection string    `gorm:"primaryKey;size:64"`
	ID         string    `gorm:"primaryKey;size:128"`
	Data       []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (document) TableName() string {
	return "documents"
}

// PostgresBackend stores documents in a JSONB column through gorm
type PostgresBackend struct {
	db *gorm.DB
}

// NewPostgresBackend migrates the documents table
func NewPostgresBackend(db *gorm.DB) (*PostgresBackend, error) {
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, err
	}
	return &PostgresBackend{db: db}, nil
}

func (b *PostgresBackend) Get(ctx context.Context, key Key) ([]byte, error) {
	var doc document
	err := b.db.WithContext(ctx).
		Where("collection = ? AND id = ?", key.Collection, key.ID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (b *PostgresBackend) Put(ctx context.Context, key Key, data []byte) error {
	doc := document{Collection: key.Collection, ID: key.ID, Data: data}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&doc).Error
}

func (b *PostgresBackend) Delete(ctx context.Context, key Key) error {
	return b.db.WithContext(ctx).
		Where("collection = ? AND id = ?", key.Collection, key.ID).
		Delete(&document{}).Error
}

func (b *PostgresBackend) List(ctx context.Context, collection string) ([]string, error) {
	var ids []string
	err := b.db.WithContext(ctx).Model(&document{}).
		Where("collection = ?", collection).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (b *PostgresBackend) Close(context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
