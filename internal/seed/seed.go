// Package seed bootstraps a default tenant so local runs are usable
// without any manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	tenantdomain "github.com/halopax/unlockd/internal/tenant/domain"
)

const (
	defaultTenantName = "Main"
	defaultTenantSlug = "main"
)

// EnsureDefaultTenant creates the default tenant when none exists.
func EnsureDefaultTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant tenantdomain.Tenant
		err := tx.Where("slug = ?", defaultTenantSlug).First(&tenant).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		return tx.Create(&tenantdomain.Tenant{
			ID:          node.Generate(),
			Name:        defaultTenantName,
			Slug:        defaultTenantSlug,
			CompanyName: defaultTenantName,
			Status:      tenantdomain.StatusActive,
			Metadata:    datatypes.JSONMap{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}).Error
	})
}
