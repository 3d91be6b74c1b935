package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/halopax/unlockd/internal/catalog/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry domain.ManagedService) error {
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *repository) GetByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.ManagedService, error) {
	var entry domain.ManagedService
	err := r.db.WithContext(ctx).First(&entry, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrServiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context, tenantID snowflake.ID, filter domain.ListFilter) ([]domain.ManagedService, error) {
	stmt := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.EnabledOnly {
		stmt = stmt.Where("enabled = ?", true)
	}
	if filter.SupplierID != 0 {
		stmt = stmt.Where("supplier_id = ?", filter.SupplierID)
	}

	var entries []domain.ManagedService
	if err := stmt.Order("category ASC, name ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Update(ctx context.Context, entry domain.ManagedService) error {
	entry.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(&entry).Error
}

func (r *repository) FindBySupplierService(ctx context.Context, tenantID, supplierID snowflake.ID, supplierServiceID string) (*domain.ManagedService, error) {
	var entry domain.ManagedService
	err := r.db.WithContext(ctx).
		First(&entry, "tenant_id = ? AND supplier_id = ? AND supplier_service_id = ?",
			tenantID, supplierID, supplierServiceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
