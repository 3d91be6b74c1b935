package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/halopax/unlockd/internal/tenant/domain"
)

type repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewRepository(db *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &repository{db: db, genID: genID}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx, genID: r.genID}
}

func (r *repository) Create(ctx context.Context, tenant domain.Tenant) error {
	return r.db.WithContext(ctx).Create(&tenant).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) List(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repository) Update(ctx context.Context, tenant domain.Tenant) error {
	tenant.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(&tenant).Error
}

// DebitSMSBalance relies on a conditional UPDATE so concurrent debits
// can never drive the balance negative.
func (r *repository) DebitSMSBalance(ctx context.Context, id snowflake.ID, amount int64, reference string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE tenants
			 SET sms_balance = sms_balance - ?, updated_at = ?
			 WHERE id = ? AND sms_balance >= ?`,
			amount, time.Now().UTC(), id, amount,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientSMSBalance
		}

		return r.writeLedger(ctx, tx, id, -amount, domain.LedgerKindDebit, reference)
	})
}

func (r *repository) CreditSMSBalance(ctx context.Context, id snowflake.ID, amount int64, reference string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`UPDATE tenants
			 SET sms_balance = sms_balance + ?, updated_at = ?
			 WHERE id = ?`,
			amount, time.Now().UTC(), id,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrTenantNotFound
		}

		return r.writeLedger(ctx, tx, id, amount, domain.LedgerKindCredit, reference)
	})
}

func (r *repository) writeLedger(ctx context.Context, tx *gorm.DB, id snowflake.ID, amount int64, kind, reference string) error {
	var balance int64
	if err := tx.Raw(`SELECT sms_balance FROM tenants WHERE id = ?`, id).Scan(&balance).Error; err != nil {
		return err
	}

	return tx.WithContext(ctx).Create(&domain.SMSLedgerEntry{
		ID:        r.genID.Generate(),
		TenantID:  id,
		Amount:    amount,
		Balance:   balance,
		Kind:      kind,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	}).Error
}
