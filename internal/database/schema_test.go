package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const migrationsDir = "../../migrations"

func TestMigrationFilesExist(t *testing.T) {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		t.Fatal("Migrations directory does not exist")
	}

	expectedMigrations := []string{
		"00001_create_users.sql",
		"00002_create_catalog.sql",
		"00003_create_products.sql",
		"00004_create_stock_transactions.sql",
		"00005_create_orders.sql",
		"00006_create_deliveries.sql",
		"00007_create_purchase_orders.sql",
		"00008_create_cart_items.sql",
	}

	for _, migration := range expectedMigrations {
		path := filepath.Join(migrationsDir, migration)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("Failed to read migrations directory: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := os.ReadFile(filepath.Join(migrationsDir, file.Name()))
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "-- +goose Up") {
			t.Errorf("Migration file %s missing '-- +goose Up' directive", file.Name())
		}
		if !strings.Contains(contentStr, "-- +goose Down") {
			t.Errorf("Migration file %s missing '-- +goose Down' directive", file.Name())
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"users":                "00001_create_users.sql",
		"refresh_tokens":       "00001_create_users.sql",
		"categories":           "00002_create_catalog.sql",
		"brands":               "00002_create_catalog.sql",
		"suppliers":            "00002_create_catalog.sql",
		"products":             "00003_create_products.sql",
		"inventory":            "00003_create_products.sql",
		"stock_transactions":   "00004_create_stock_transactions.sql",
		"orders":               "00005_create_orders.sql",
		"order_lines":          "00005_create_orders.sql",
		"deliveries":           "00006_create_deliveries.sql",
		"purchase_orders":      "00007_create_purchase_orders.sql",
		"purchase_order_lines": "00007_create_purchase_orders.sql",
		"cart_items":           "00008_create_cart_items.sql",
	}

	for tableName, migrationFile := range expectedTables {
		path := filepath.Join(migrationsDir, migrationFile)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "CREATE TABLE "+tableName) {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}
		if !strings.Contains(contentStr, "DROP TABLE "+tableName) {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestUsersTableHasRoleConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00001_create_users.sql"))
	if err != nil {
		t.Fatalf("Failed to read users migration: %v", err)
	}

	contentStr := string(content)
	for _, role := range []string{"customer", "admin", "shipper"} {
		if !strings.Contains(contentStr, "'"+role+"'") {
			t.Errorf("Users table role constraint missing value: %s", role)
		}
	}
}

func TestStockTransactionsTableHasTypeConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00004_create_stock_transactions.sql"))
	if err != nil {
		t.Fatalf("Failed to read stock transactions migration: %v", err)
	}

	contentStr := string(content)
	for _, txnType := range []string{"import", "export", "return", "adjustment", "order", "order_cancel"} {
		if !strings.Contains(contentStr, "'"+txnType+"'") {
			t.Errorf("Stock transactions type constraint missing value: %s", txnType)
		}
	}

	if !strings.Contains(contentStr, "previous_stock INTEGER NOT NULL") {
		t.Error("Stock transactions table missing previous_stock column")
	}
}

func TestOrdersTableHasStatusConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00005_create_orders.sql"))
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}

	contentStr := string(content)
	requiredStatuses := []string{"pending", "confirmed", "processing", "shipping", "delivered", "completed", "cancelled"}
	for _, status := range requiredStatuses {
		if !strings.Contains(contentStr, "'"+status+"'") {
			t.Errorf("Orders table status constraint missing value: %s", status)
		}
	}
}

func TestInventoryTableForbidsNegativeStock(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00003_create_products.sql"))
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	if !strings.Contains(string(content), "CHECK (stock >= 0)") {
		t.Error("Inventory table missing non-negative stock constraint")
	}
}

func TestDeliveriesTableIsOnePerOrder(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00006_create_deliveries.sql"))
	if err != nil {
		t.Fatalf("Failed to read deliveries migration: %v", err)
	}

	if !strings.Contains(string(content), "order_id UUID NOT NULL UNIQUE") {
		t.Error("Deliveries table missing unique constraint on order_id")
	}
}

func TestCartItemsTableHasUniqueConstraint(t *testing.T) {
	content, err := os.ReadFile(filepath.Join(migrationsDir, "00008_create_cart_items.sql"))
	if err != nil {
		t.Fatalf("Failed to read cart_items migration: %v", err)
	}

	if !strings.Contains(string(content), "UNIQUE (user_id, product_id)") {
		t.Error("Cart items table missing unique constraint on (user_id, product_id)")
	}
}
