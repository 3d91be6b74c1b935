package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/halopax/unlockd/internal/supplier/domain"
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

func (r *repository) Create(ctx context.Context, supplier domain.Supplier) error {
	return r.db.WithContext(ctx).Create(&supplier).Error
}

func (r *repository) GetByID(ctx context.Context, tenantID, id snowflake.ID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := r.db.WithContext(ctx).First(&supplier, "tenant_id = ? AND id = ?", tenantID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("priority DESC, id ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *repository) Update(ctx context.Context, supplier domain.Supplier) error {
	supplier.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(&supplier).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id snowflake.ID) error {
	res := r.db.WithContext(ctx).Exec(
		`DELETE FROM suppliers WHERE tenant_id = ? AND id = ?`, tenantID, id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrSupplierNotFound
	}
	return nil
}

func (r *repository) CountCatalogReferences(ctx context.Context, id snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM managed_services WHERE supplier_id = ?`, id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
