package repository

import (
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"gorm.io/gorm"
)

type AuditRepository interface {
	ListByEntity(entityID string, limit int) ([]domain.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (a *auditRepository) ListByEntity(entityID string, limit int) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	q := a.db.Where("entity_id = ?", entityID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
