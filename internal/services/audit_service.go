package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
	"ginkit/internal/pagination"
)

// auditService reads audit entries written by the audit recorder.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// ListEntries returns audit entries matching filter, newest first.
func (s *auditService) ListEntries(ctx context.Context, page pagination.PageRequest, filter AuditFilter) (*pagination.PageResponse[models.AuditEntry], error) {
	query := s.db.WithContext(ctx).Model(&models.AuditEntry{})
	if filter.TableName != nil {
		query = query.Where("table_name = ?", *filter.TableName)
	}
	if filter.Action != nil {
		query = query.Where("action = ?", *filter.Action)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("date_created >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("date_created < ?", filter.To.UTC())
	}

	result, err := pagination.Find[models.AuditEntry](query, page, "date_created DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &result, nil
}

// GetEntry retrieves a single audit entry.
func (s *auditService) GetEntry(ctx context.Context, id string) (*models.AuditEntry, error) {
	var entry models.AuditEntry
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "Audit entry not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}
