package repository_test

import (
	"context"
	"sync"
	"testing"

	"storefront-service/internal/migrate"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateStorefrontDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreateUser(t *testing.T, repo *repository.Repository, username, email string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: email, Password: "x", Role: models.RoleUser}
	if err := repo.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return u
}

func mustCreateProduct(t *testing.T, repo *repository.Repository, name string, price int64, stock int32) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, PriceCents: price, Stock: stock, IsActive: true}
	if err := repo.Products.Create(context.Background(), p); err != nil {
		t.Fatalf("Create product: %v", err)
	}
	return p
}

func TestProductRepo_CRUD(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	p := &models.Product{Name: "Test Product", Description: "desc", PriceCents: 1000, Stock: 5, IsActive: true}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "Test Product" || got.Stock != 5 {
		t.Fatalf("GetByID mismatch: %+v", got)
	}

	// несуществующий id — nil, nil
	missing, err := repo.GetByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing product, got %+v", missing)
	}

	if err := repo.UpdateFields(ctx, p.ID, map[string]any{
		"name":        "Updated Product",
		"price_cents": int64(1500),
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	updated, _ := repo.GetByID(ctx, p.ID)
	if updated.Name != "Updated Product" || updated.PriceCents != 1500 {
		t.Fatalf("UpdateFields mismatch: %+v", updated)
	}

	deleted, err := repo.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted=true")
	}

	deleted2, err := repo.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("Delete second: %v", err)
	}
	if deleted2 {
		t.Fatal("expected deleted2=false")
	}
}

func TestProductRepo_List(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	cat := &models.Category{Name: "Fruits"}
	if err := repo.Categories.Create(ctx, cat); err != nil {
		t.Fatalf("Create category: %v", err)
	}

	products := []models.Product{
		{CategoryID: &cat.ID, Name: "Apple Juice", PriceCents: 1000, IsActive: true},
		{CategoryID: &cat.ID, Name: "Banana Chips", PriceCents: 2000, IsActive: true},
		{Name: "Cherry Pie", PriceCents: 3000, IsActive: true},
	}
	for i := range products {
		if err := repo.Products.Create(ctx, &products[i]); err != nil {
			t.Fatalf("Create product %d: %v", i, err)
		}
	}

	// деактивируем третий
	if err := repo.Products.UpdateFields(ctx, products[2].ID, map[string]any{"is_active": false}); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	// по категории
	list, total, err := repo.Products.List(ctx, repository.ProductListFilter{CategoryID: &cat.ID, Limit: 10})
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 in category, got total=%d len=%d", total, len(list))
	}

	// только активные
	activeTrue := true
	listActive, totalActive, err := repo.Products.List(ctx, repository.ProductListFilter{OnlyActive: &activeTrue, Limit: 10})
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if totalActive != 2 || len(listActive) != 2 {
		t.Fatalf("expected 2 active, got total=%d len=%d", totalActive, len(listActive))
	}

	// поиск по имени без учёта регистра
	listSearch, totalSearch, err := repo.Products.List(ctx, repository.ProductListFilter{Query: "apple", Limit: 10})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if totalSearch != 1 || len(listSearch) != 1 {
		t.Fatalf("expected 1 by search, got total=%d len=%d", totalSearch, len(listSearch))
	}

	// пагинация: total считается до Limit
	listPage, totalPage, err := repo.Products.List(ctx, repository.ProductListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if totalPage != 3 {
		t.Fatalf("expected totalPage=3, got %d", totalPage)
	}
	if len(listPage) != 2 {
		t.Fatalf("expected listPage len=2, got %d", len(listPage))
	}
}

func TestProductRepo_AdjustStock(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	p := &models.Product{Name: "Stock Test", PriceCents: 100, Stock: 10, IsActive: true}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// уменьшение
	ok, err := repo.AdjustStock(ctx, p.ID, -4)
	if err != nil {
		t.Fatalf("AdjustStock -4: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	got, _ := repo.GetByID(ctx, p.ID)
	if got.Stock != 6 {
		t.Fatalf("expected stock=6, got %d", got.Stock)
	}

	// увеличение
	ok, err = repo.AdjustStock(ctx, p.ID, 14)
	if err != nil {
		t.Fatalf("AdjustStock +14: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	got, _ = repo.GetByID(ctx, p.ID)
	if got.Stock != 20 {
		t.Fatalf("expected stock=20, got %d", got.Stock)
	}

	// попытка уйти в минус — false, значение не меняется
	ok, err = repo.AdjustStock(ctx, p.ID, -21)
	if err != nil {
		t.Fatalf("AdjustStock -21: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for negative result")
	}
	got, _ = repo.GetByID(ctx, p.ID)
	if got.Stock != 20 {
		t.Fatalf("expected stock=20 unchanged, got %d", got.Stock)
	}

	// списание до нуля допустимо
	ok, err = repo.AdjustStock(ctx, p.ID, -20)
	if err != nil {
		t.Fatalf("AdjustStock -20: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true for exact drain")
	}
	got, _ = repo.GetByID(ctx, p.ID)
	if got.Stock != 0 {
		t.Fatalf("expected stock=0, got %d", got.Stock)
	}

	// несуществующий товар — false
	ok, err = repo.AdjustStock(ctx, uuid.New(), 5)
	if err != nil {
		t.Fatalf("AdjustStock missing: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing product")
	}
}

// Несколько горутин борются за остаток: успешных списаний должно быть ровно
// столько, сколько было единиц на складе, и остаток не уходит в минус.
func TestProductRepo_AdjustStock_Concurrent(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewProductRepo(db)
	ctx := context.Background()

	p := &models.Product{Name: "Race Test", PriceCents: 100, Stock: 5, IsActive: true}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const workers = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.AdjustStock(ctx, p.ID, -1)
			if err != nil {
				t.Errorf("AdjustStock: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 5 {
		t.Fatalf("expected exactly 5 successful decrements, got %d", wins)
	}

	got, _ := repo.GetByID(ctx, p.ID)
	if got.Stock != 0 {
		t.Fatalf("expected stock=0 after race, got %d", got.Stock)
	}
}

func TestUserRepo_Basic(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	u := &models.User{Username: "Alice", Email: "Alice@Example.com", Password: "hash", Role: models.RoleUser}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// поиск по email без учёта регистра
	got, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("GetByEmail mismatch: %+v", got)
	}

	exists, err := repo.ExistsByUsername(ctx, "ALICE")
	if err != nil {
		t.Fatalf("ExistsByUsername: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true for case-insensitive username")
	}

	// уникальность email на уровне БД
	dup := &models.User{Username: "alice2", Email: "ALICE@example.com", Password: "hash", Role: models.RoleUser}
	if err := repo.Create(ctx, dup); err == nil {
		t.Fatal("expected unique violation for duplicate email")
	}

	ok, err := repo.UpdateRole(ctx, u.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	got, _ = repo.GetByID(ctx, u.ID)
	if got.Role != models.RoleAdmin {
		t.Fatalf("expected role=admin, got %s", got.Role)
	}

	list, total, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("expected 1 user, got total=%d len=%d", total, len(list))
	}
}

func TestCategoryRepo_Basic(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewCategoryRepo(db)
	ctx := context.Background()

	c := &models.Category{Name: "Electronics", Description: "gadgets"}
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByName(ctx, "ELECTRONICS")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got == nil || got.ID != c.ID {
		t.Fatalf("GetByName mismatch: %+v", got)
	}

	// имя уникально без учёта регистра
	if err := repo.Create(ctx, &models.Category{Name: "electronics"}); err == nil {
		t.Fatal("expected unique violation for duplicate category name")
	}

	if err := repo.UpdateFields(ctx, c.ID, map[string]any{"description": "updated"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ = repo.GetByID(ctx, c.ID)
	if got.Description != "updated" {
		t.Fatalf("expected updated description, got %q", got.Description)
	}

	deleted, err := repo.Delete(ctx, c.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Fatal("expected deleted=true")
	}
}

// При удалении категории товары остаются, category_id сбрасывается в NULL.
func TestCategoryDelete_ProductsKept(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	cat := &models.Category{Name: "Doomed"}
	if err := repo.Categories.Create(ctx, cat); err != nil {
		t.Fatalf("Create category: %v", err)
	}
	p := &models.Product{CategoryID: &cat.ID, Name: "Orphan", PriceCents: 100, IsActive: true}
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("Create product: %v", err)
	}

	if _, err := repo.Categories.Delete(ctx, cat.ID); err != nil {
		t.Fatalf("Delete category: %v", err)
	}

	got, err := repo.Products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil {
		t.Fatal("product must survive category deletion")
	}
	if got.CategoryID != nil {
		t.Fatalf("expected category_id=NULL, got %v", got.CategoryID)
	}
}

func TestOrderRepo_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	user := mustCreateUser(t, repo, "buyer", "buyer@example.com")
	p := mustCreateProduct(t, repo, "Widget", 1000, 10)

	ord := &models.Order{
		UserID: user.ID,
		Status: models.OrderStatusPending,
		Payment: models.PaymentInfo{
			Method: "card",
			Status: models.PaymentStatusPending,
		},
		TotalItems:      2,
		TotalPriceCents: 2000,
	}
	if err := repo.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create order: %v", err)
	}

	items := []models.OrderItem{{
		OrderID:        ord.ID,
		ProductID:      p.ID,
		ProductName:    p.Name,
		Quantity:       2,
		UnitPriceCents: 1000,
		LineTotalCents: 2000,
	}}
	if err := repo.OrderItems.BulkCreate(ctx, items); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	got, err := repo.Orders.GetByID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || len(got.Items) != 1 || got.User == nil {
		t.Fatalf("GetByID: expected preloaded items and user, got %+v", got)
	}
	if got.Items[0].ProductName != "Widget" || got.Items[0].LineTotalCents != 2000 {
		t.Fatalf("item snapshot mismatch: %+v", got.Items[0])
	}

	// чужой заказ не виден через GetByIDForUser
	stranger := mustCreateUser(t, repo, "stranger", "stranger@example.com")
	foreign, err := repo.Orders.GetByIDForUser(ctx, ord.ID, stranger.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if foreign != nil {
		t.Fatal("expected nil for foreign order")
	}

	own, err := repo.Orders.GetByIDForUser(ctx, ord.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByIDForUser own: %v", err)
	}
	if own == nil {
		t.Fatal("expected own order to be visible")
	}
}

// Снимок позиции переживает удаление товара из каталога.
func TestOrderItem_SnapshotSurvivesProductDelete(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	user := mustCreateUser(t, repo, "snap", "snap@example.com")
	p := mustCreateProduct(t, repo, "Ephemeral", 500, 3)

	ord := &models.Order{UserID: user.ID, Status: models.OrderStatusDelivered}
	if err := repo.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if err := repo.OrderItems.BulkCreate(ctx, []models.OrderItem{{
		OrderID:        ord.ID,
		ProductID:      p.ID,
		ProductName:    p.Name,
		Quantity:       1,
		UnitPriceCents: 500,
		LineTotalCents: 500,
	}}); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	if _, err := repo.Products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete product: %v", err)
	}

	rows, err := repo.OrderItems.GetByOrderID(ctx, ord.ID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if len(rows) != 1 || rows[0].ProductName != "Ephemeral" || rows[0].UnitPriceCents != 500 {
		t.Fatalf("snapshot must survive product deletion: %+v", rows)
	}
}

func TestOrderRepo_ListFilters(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	alice := mustCreateUser(t, repo, "alice", "alice@shop.dev")
	bob := mustCreateUser(t, repo, "bob", "bob@shop.dev")

	mk := func(userID uuid.UUID, status models.OrderStatus) *models.Order {
		o := &models.Order{UserID: userID, Status: status}
		if err := repo.Orders.Create(ctx, o); err != nil {
			t.Fatalf("Create order: %v", err)
		}
		return o
	}

	o1 := mk(alice.ID, models.OrderStatusPending)
	mk(alice.ID, models.OrderStatusSent)
	mk(bob.ID, models.OrderStatusPending)

	// фильтр по владельцу
	_, total, err := repo.Orders.List(ctx, repository.OrderListFilter{UserID: &alice.ID, Limit: 10})
	if err != nil {
		t.Fatalf("List by user: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 orders for alice, got %d", total)
	}

	// фильтр по статусу
	pending := models.OrderStatusPending
	_, total, err = repo.Orders.List(ctx, repository.OrderListFilter{Status: &pending, Limit: 10})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 pending orders, got %d", total)
	}

	// частичный поиск по id
	frag := o1.ID.String()[:8]
	list, total, err := repo.Orders.List(ctx, repository.OrderListFilter{OrderID: frag, Limit: 10})
	if err != nil {
		t.Fatalf("List by order id: %v", err)
	}
	if total < 1 {
		t.Fatalf("expected at least 1 order by id fragment, got %d", total)
	}
	found := false
	for _, o := range list {
		if o.ID == o1.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected o1 in results by id fragment")
	}

	// поиск по владельцу (username/email)
	_, total, err = repo.Orders.List(ctx, repository.OrderListFilter{UserSearch: "BOB", Limit: 10})
	if err != nil {
		t.Fatalf("List by user search: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 order by user search, got %d", total)
	}

	// пагинация: total после фильтров, до Limit
	page, total, err := repo.Orders.List(ctx, repository.OrderListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total=3, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected page len=2, got %d", len(page))
	}
}

func TestOrderRepo_MarkCancelled(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	user := mustCreateUser(t, repo, "mc", "mc@example.com")

	ord := &models.Order{UserID: user.ID, Status: models.OrderStatusPending}
	if err := repo.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create order: %v", err)
	}

	// первый перевод выигрывает
	ok, err := repo.Orders.MarkCancelled(ctx, ord.ID)
	if err != nil {
		t.Fatalf("MarkCancelled: %v", err)
	}
	if !ok {
		t.Fatalf("expected first MarkCancelled to win")
	}
	got, _ := repo.Orders.GetByID(ctx, ord.ID)
	if got.Status != models.OrderStatusCancelled {
		t.Fatalf("expected status=cancelled, got %s", got.Status)
	}

	// повторный — проигрывает, статус не трогает
	ok, err = repo.Orders.MarkCancelled(ctx, ord.ID)
	if err != nil {
		t.Fatalf("MarkCancelled repeat: %v", err)
	}
	if ok {
		t.Fatalf("second MarkCancelled must not win")
	}

	// из терминального delivered перевод тоже не срабатывает
	done := &models.Order{UserID: user.ID, Status: models.OrderStatusDelivered}
	if err := repo.Orders.Create(ctx, done); err != nil {
		t.Fatalf("Create delivered order: %v", err)
	}
	ok, err = repo.Orders.MarkCancelled(ctx, done.ID)
	if err != nil {
		t.Fatalf("MarkCancelled delivered: %v", err)
	}
	if ok {
		t.Fatalf("delivered order must not be cancellable")
	}
	got, _ = repo.Orders.GetByID(ctx, done.ID)
	if got.Status != models.OrderStatusDelivered {
		t.Fatalf("delivered status must be untouched, got %s", got.Status)
	}
}

func TestOrderRepo_UpdateStatusAndCountActive(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	user := mustCreateUser(t, repo, "upd", "upd@example.com")
	p := mustCreateProduct(t, repo, "Counted", 100, 10)

	ord := &models.Order{UserID: user.ID, Status: models.OrderStatusPending}
	if err := repo.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if err := repo.OrderItems.BulkCreate(ctx, []models.OrderItem{{
		OrderID: ord.ID, ProductID: p.ID, ProductName: p.Name,
		Quantity: 1, UnitPriceCents: 100, LineTotalCents: 100,
	}}); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	cnt, err := repo.Orders.CountActiveByProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("CountActiveByProduct: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 active order, got %d", cnt)
	}

	sent := models.OrderStatusSent
	if err := repo.Orders.UpdateStatus(ctx, ord.ID, repository.OrderStatusPatch{Status: &sent}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ := repo.Orders.GetByID(ctx, ord.ID)
	if got.Status != models.OrderStatusSent {
		t.Fatalf("expected status=sent, got %s", got.Status)
	}

	// sent всё ещё активный
	cnt, _ = repo.Orders.CountActiveByProduct(ctx, p.ID)
	if cnt != 1 {
		t.Fatalf("expected 1 active order for sent, got %d", cnt)
	}

	delivered := models.OrderStatusDelivered
	completed := models.PaymentStatusCompleted
	now := got.CreatedAt
	if err := repo.Orders.UpdateStatus(ctx, ord.ID, repository.OrderStatusPatch{
		Status:        &delivered,
		PaymentStatus: &completed,
		DeliveredAt:   &now,
		PaidAt:        &now,
	}); err != nil {
		t.Fatalf("UpdateStatus delivered: %v", err)
	}
	got, _ = repo.Orders.GetByID(ctx, ord.ID)
	if got.Status != models.OrderStatusDelivered || got.Payment.Status != models.PaymentStatusCompleted {
		t.Fatalf("expected delivered/completed, got %s/%s", got.Status, got.Payment.Status)
	}
	if got.DeliveredAt == nil || got.Payment.PaidAt == nil {
		t.Fatal("expected delivered_at and paid_at to be stamped")
	}

	// delivered больше не считается активным
	cnt, _ = repo.Orders.CountActiveByProduct(ctx, p.ID)
	if cnt != 0 {
		t.Fatalf("expected 0 active orders, got %d", cnt)
	}
}

func TestRepository_WithTx_Rollback(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := mustCreateProduct(t, repo, "Tx Test", 100, 50)

	err := repo.WithTx(func(tx *repository.Repository) error {
		ok, err := tx.Products.AdjustStock(ctx, p.ID, -30)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatal("AdjustStock failed in tx")
		}
		// возвращаем ошибку для отката
		return gorm.ErrInvalidTransaction
	})
	if err == nil {
		t.Fatal("expected error from WithTx")
	}

	got, _ := repo.Products.GetByID(ctx, p.ID)
	if got.Stock != 50 {
		t.Fatalf("expected rollback to stock=50, got %d", got.Stock)
	}
}
