package services

import (
	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/repository"
)

type AuditService interface {
	List(entityID string, limit int) ([]domain.AuditLog, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (a *auditService) List(entityID string, limit int) ([]domain.AuditLog, error) {
	if entityID == "" {
		return nil, validationErr("entity id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return a.repo.ListByEntity(entityID, limit)
}
