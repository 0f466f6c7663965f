package model

import (
	"fmt"

	"gorm.io/gorm"
)

// SetupSQL runs before AutoMigrate. Every statement is idempotent.
var SetupSQL = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'generation_type') THEN CREATE TYPE generation_type AS ENUM ('IMAGE', 'VIDEO', 'MUSIC'); END IF; END $$;`,
	`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'generation_status') THEN CREATE TYPE generation_status AS ENUM ('SUCCESS', 'FAILED'); END IF; END $$;`,
}

// PostMigrationSQL holds the constraints AutoMigrate cannot express.
var PostMigrationSQL = []string{
	`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_quotas_used_non_negative') THEN ALTER TABLE quotas ADD CONSTRAINT chk_quotas_used_non_negative CHECK (daily_used >= 0 AND monthly_used >= 0); END IF; END $$;`,
	`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_user_usage_count_non_negative') THEN ALTER TABLE user_usage ADD CONSTRAINT chk_user_usage_count_non_negative CHECK (count >= 0); END IF; END $$;`,
}

func All() []interface{} {
	return []interface{}{
		&User{},
		&Quota{},
		&Generation{},
		&UserUsage{},
		&AuditLog{},
	}
}

// Migrate brings the schema up to date: enums, tables, then constraints.
func Migrate(db *gorm.DB) error {
	for _, sql := range SetupSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("setup sql: %w", err)
		}
	}

	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	for _, sql := range PostMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("post-migration sql: %w", err)
		}
	}
	return nil
}
