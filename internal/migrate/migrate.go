package migrate

import (
	"context"

	"storefront-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, pg_trgm
	CreateChecks           bool // CHECK-constraint'ы
	CreateIndexes          bool // индексы и UNIQUE
	CreateFKsViaSQL        bool // FK через Exec после AutoMigrate
	CreateUpdatedAtTrigger bool // триггеры updated_at
	CreateSearchIndexes    bool // GIN trgm для поиска по name
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
		CreateSearchIndexes:    true,
	}
}

func MigrateStorefrontDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы магазина")

	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("pgcrypto error", zap.Error(err))
			return err
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`).Error; err != nil {
			log.Error("pg_trgm error", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц: users, categories, products, orders, order_items")
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_users_updated ON users;
CREATE TRIGGER trg_users_updated BEFORE UPDATE ON users
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_categories_updated ON categories;
CREATE TRIGGER trg_categories_updated BEFORE UPDATE ON categories
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("triggers error", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")

		// Цена и остаток — неотрицательные. CHECK на stock — последний рубеж
		// против ухода остатка в минус, основная защита — условный UPDATE.
		if err := db.Exec(`
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_price_non_negative,
	ADD CONSTRAINT chk_products_price_non_negative
	CHECK (price_cents >= 0);
`).Error; err != nil {
			log.Error("chk products.price", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative,
	ADD CONSTRAINT chk_products_stock_non_negative
	CHECK (stock >= 0);
`).Error; err != nil {
			log.Error("chk products.stock", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE order_items
	DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero,
	ADD CONSTRAINT chk_order_items_quantity_gt_zero
	CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("chk order_items.quantity", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_totals_non_negative,
	ADD CONSTRAINT chk_orders_totals_non_negative
	CHECK (total_items >= 0 AND total_price_cents >= 0);
`).Error; err != nil {
			log.Error("chk orders.totals", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_status_allowed,
	ADD CONSTRAINT chk_orders_status_allowed
	CHECK (status IN ('pending','sent','delivered','cancelled'));
`).Error; err != nil {
			log.Error("chk orders.status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_pay_status_allowed,
	ADD CONSTRAINT chk_orders_pay_status_allowed
	CHECK (pay_status IN ('pending','completed'));
`).Error; err != nil {
			log.Error("chk orders.pay_status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE users
	DROP CONSTRAINT IF EXISTS chk_users_role_allowed,
	ADD CONSTRAINT chk_users_role_allowed
	CHECK (role IN ('user','admin'));
`).Error; err != nil {
			log.Error("chk users.role", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов и уникальностей")

		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email_lower
ON users (lower(email));
`).Error; err != nil {
			log.Error("ux users.email", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_users_username_lower
ON users (lower(username));
`).Error; err != nil {
			log.Error("ux users.username", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_categories_name_lower
ON categories (lower(name));
`).Error; err != nil {
			log.Error("ux categories.name", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_user_created
ON orders (user_id, created_at DESC);
`).Error; err != nil {
			log.Error("ix orders.user_created", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (status, created_at DESC);
`).Error; err != nil {
			log.Error("ix orders.status_created", zap.Error(err))
			return err
		}
	}

	if opt.CreateSearchIndexes {
		log.Info("Создание GIN(trgm) индексов для поиска")
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS gin_products_name_trgm
ON products USING gin (name gin_trgm_ops);
`).Error; err != nil {
			log.Error("gin products.name", zap.Error(err))
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("Создание внешних ключей")

		// products.category_id -> categories.id (SET NULL: удаление категории
		// не трогает товары)
		if err := db.Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS fk_products_category,
  ADD CONSTRAINT fk_products_category
    FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL;
`).Error; err != nil {
			log.Error("fk products.category_id", zap.Error(err))
			return err
		}

		// orders.user_id -> users.id (RESTRICT: пользователя с заказами не удалить)
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS fk_orders_user,
  ADD CONSTRAINT fk_orders_user
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE RESTRICT;
`).Error; err != nil {
			log.Error("fk orders.user_id", zap.Error(err))
			return err
		}

		// order_items.order_id -> orders.id (CASCADE).
		// FK на products намеренно отсутствует: позиция заказа — снимок,
		// она должна переживать удаление товара из каталога.
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS fk_order_items_order,
  ADD CONSTRAINT fk_order_items_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("fk order_items.order_id", zap.Error(err))
			return err
		}
	}

	log.Info("Миграция базы магазина успешно завершена")
	return nil
}
