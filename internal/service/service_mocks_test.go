package service

import (
	"context"
	"fmt"
	"sort"

	"smartshop/internal/domain"
	"smartshop/internal/repository"

	"github.com/google/uuid"
)

// memStore is a deep-copyable in-memory database backing the mock
// repositories. The mock TxRunner snapshots it before running a callback and
// restores the snapshot on error, mirroring real transaction semantics.
type memStore struct {
	users          map[uuid.UUID]*domain.User
	products       map[uuid.UUID]*domain.Product
	categories     map[uuid.UUID]*domain.Category
	brands         map[uuid.UUID]*domain.Brand
	suppliers      map[uuid.UUID]*domain.Supplier
	inventories    map[uuid.UUID]*domain.Inventory
	transactions   map[uuid.UUID]*domain.StockTransaction
	orders         map[uuid.UUID]*domain.Order
	deliveries     map[uuid.UUID]*domain.Delivery
	purchaseOrders map[uuid.UUID]*domain.PurchaseOrder
}

func newMemStore() *memStore {
	return &memStore{
		users:          map[uuid.UUID]*domain.User{},
		products:       map[uuid.UUID]*domain.Product{},
		categories:     map[uuid.UUID]*domain.Category{},
		brands:         map[uuid.UUID]*domain.Brand{},
		suppliers:      map[uuid.UUID]*domain.Supplier{},
		inventories:    map[uuid.UUID]*domain.Inventory{},
		transactions:   map[uuid.UUID]*domain.StockTransaction{},
		orders:         map[uuid.UUID]*domain.Order{},
		deliveries:     map[uuid.UUID]*domain.Delivery{},
		purchaseOrders: map[uuid.UUID]*domain.PurchaseOrder{},
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.products {
		p := *v
		if v.Inventory != nil {
			inv := *v.Inventory
			p.Inventory = &inv
		}
		c.products[k] = &p
	}
	for k, v := range s.categories {
		cat := *v
		c.categories[k] = &cat
	}
	for k, v := range s.brands {
		b := *v
		c.brands[k] = &b
	}
	for k, v := range s.suppliers {
		sup := *v
		c.suppliers[k] = &sup
	}
	for k, v := range s.inventories {
		inv := *v
		c.inventories[k] = &inv
	}
	for k, v := range s.transactions {
		txn := *v
		c.transactions[k] = &txn
	}
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range s.deliveries {
		d := *v
		c.deliveries[k] = &d
	}
	for k, v := range s.purchaseOrders {
		c.purchaseOrders[k] = clonePurchaseOrder(v)
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	*s = *from
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Lines = make([]*domain.OrderLine, len(o.Lines))
	for i, line := range o.Lines {
		l := *line
		c.Lines[i] = &l
	}
	if o.Delivery != nil {
		d := *o.Delivery
		c.Delivery = &d
	}
	return &c
}

func clonePurchaseOrder(po *domain.PurchaseOrder) *domain.PurchaseOrder {
	c := *po
	c.Lines = make([]*domain.PurchaseOrderLine, len(po.Lines))
	for i, line := range po.Lines {
		l := *line
		c.Lines[i] = &l
	}
	return &c
}

// mockTxRunner runs callbacks against the shared memStore with
// snapshot/rollback semantics.
type mockTxRunner struct {
	store *memStore
}

func newMockTxRunner(store *memStore) *mockTxRunner {
	return &mockTxRunner{store: store}
}

func (m *mockTxRunner) RunInTx(ctx context.Context, fn func(r *repository.Repos) error) error {
	snapshot := m.store.clone()
	err := fn(m.store.repos())
	if err != nil {
		m.store.restore(snapshot)
	}
	return err
}

func (s *memStore) repos() *repository.Repos {
	return &repository.Repos{
		Users:             &memUserRepo{s},
		Products:          &memProductRepo{s},
		Categories:        &memCategoryRepo{s},
		Brands:            &memBrandRepo{s},
		Suppliers:         &memSupplierRepo{s},
		Inventory:         &memInventoryRepo{s},
		StockTransactions: &memStockTransactionRepo{s},
		Orders:            &memOrderRepo{s},
		Deliveries:        &memDeliveryRepo{s},
		PurchaseOrders:    &memPurchaseOrderRepo{s},
	}
}

// seedProduct registers a product with the given stock level and returns it.
func (s *memStore) seedProduct(name string, price int64, stock, minStock int) *domain.Product {
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		UnitPrice: price,
	}
	inv := &domain.Inventory{ProductID: product.ID, Stock: stock, MinStock: minStock}
	product.Inventory = inv
	s.products[product.ID] = product
	s.inventories[product.ID] = inv
	return product
}

func (s *memStore) seedUser(role string) *domain.User {
	user := &domain.User{
		ID:    uuid.New(),
		Email: fmt.Sprintf("%s-%s@example.com", role, uuid.New().String()[:8]),
		Role:  role,
	}
	s.users[user.ID] = user
	return user
}

type memUserRepo struct{ s *memStore }

func (m *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	m.s.users[user.ID] = user
	return nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type memProductRepo struct{ s *memStore }

func (m *memProductRepo) Create(ctx context.Context, product *domain.Product) error {
	m.s.products[product.ID] = product
	return nil
}

func (m *memProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.s.products[product.ID]; !ok {
		return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
	}
	m.s.products[product.ID] = product
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.s.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	delete(m.s.products, id)
	delete(m.s.inventories, id)
	return nil
}

func (m *memProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	p := *product
	if inv, ok := m.s.inventories[id]; ok {
		invCopy := *inv
		p.Inventory = &invCopy
	}
	return &p, nil
}

func (m *memProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	products := []*domain.Product{}
	for id := range m.s.products {
		p, _ := m.FindByID(ctx, id)
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, len(products), nil
}

func (m *memProductRepo) ListLowStock(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for id, inv := range m.s.inventories {
		if inv.Stock <= inv.MinStock {
			p, err := m.FindByID(ctx, id)
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *memProductRepo) ReferenceCount(ctx context.Context, id uuid.UUID) (int, error) {
	count := 0
	for _, order := range m.s.orders {
		for _, line := range order.Lines {
			if line.ProductID == id {
				count++
			}
		}
	}
	for _, po := range m.s.purchaseOrders {
		for _, line := range po.Lines {
			if line.ProductID == id {
				count++
			}
		}
	}
	return count, nil
}

type memCategoryRepo struct{ s *memStore }

func (m *memCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	for _, existing := range m.s.categories {
		if existing.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.s.categories[category.ID] = category
	return nil
}

func (m *memCategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.s.categories[category.ID]; !ok {
		return fmt.Errorf("category %s: %w", category.ID, domain.ErrNotFound)
	}
	m.s.categories[category.ID] = category
	return nil
}

func (m *memCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	hasChildren, _ := m.HasChildren(ctx, id)
	if hasChildren {
		return repository.ErrCategoryHasChildren
	}
	if _, ok := m.s.categories[id]; !ok {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	delete(m.s.categories, id)
	return nil
}

func (m *memCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, c := range m.s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *memCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return category, nil
}

func (m *memCategoryRepo) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, c := range m.s.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

type memBrandRepo struct{ s *memStore }

func (m *memBrandRepo) Create(ctx context.Context, brand *domain.Brand) error {
	m.s.brands[brand.ID] = brand
	return nil
}

func (m *memBrandRepo) Update(ctx context.Context, brand *domain.Brand) error {
	if _, ok := m.s.brands[brand.ID]; !ok {
		return fmt.Errorf("brand %s: %w", brand.ID, domain.ErrNotFound)
	}
	m.s.brands[brand.ID] = brand
	return nil
}

func (m *memBrandRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.s.brands[id]; !ok {
		return fmt.Errorf("brand %s: %w", id, domain.ErrNotFound)
	}
	delete(m.s.brands, id)
	return nil
}

func (m *memBrandRepo) List(ctx context.Context) ([]*domain.Brand, error) {
	brands := []*domain.Brand{}
	for _, b := range m.s.brands {
		brands = append(brands, b)
	}
	return brands, nil
}

func (m *memBrandRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	brand, ok := m.s.brands[id]
	if !ok {
		return nil, fmt.Errorf("brand %s: %w", id, domain.ErrNotFound)
	}
	return brand, nil
}

type memSupplierRepo struct{ s *memStore }

func (m *memSupplierRepo) Create(ctx context.Context, supplier *domain.Supplier) error {
	m.s.suppliers[supplier.ID] = supplier
	return nil
}

func (m *memSupplierRepo) Update(ctx context.Context, supplier *domain.Supplier) error {
	if _, ok := m.s.suppliers[supplier.ID]; !ok {
		return fmt.Errorf("supplier %s: %w", supplier.ID, domain.ErrNotFound)
	}
	m.s.suppliers[supplier.ID] = supplier
	return nil
}

func (m *memSupplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.s.suppliers[id]; !ok {
		return fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	delete(m.s.suppliers, id)
	return nil
}

func (m *memSupplierRepo) List(ctx context.Context) ([]*domain.Supplier, error) {
	suppliers := []*domain.Supplier{}
	for _, s := range m.s.suppliers {
		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}

func (m *memSupplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	supplier, ok := m.s.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	return supplier, nil
}

type memInventoryRepo struct{ s *memStore }

func (m *memInventoryRepo) Create(ctx context.Context, inv *domain.Inventory) error {
	m.s.inventories[inv.ProductID] = inv
	return nil
}

func (m *memInventoryRepo) FindByProductID(ctx context.Context, productID uuid.UUID) (*domain.Inventory, error) {
	inv, ok := m.s.inventories[productID]
	if !ok {
		return nil, fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
	}
	invCopy := *inv
	return &invCopy, nil
}

func (m *memInventoryRepo) UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error {
	inv, ok := m.s.inventories[productID]
	if !ok {
		return fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
	}
	inv.Stock = stock
	return nil
}

func (m *memInventoryRepo) UpdateMinStock(ctx context.Context, productID uuid.UUID, minStock int) error {
	inv, ok := m.s.inventories[productID]
	if !ok {
		return fmt.Errorf("inventory for product %s: %w", productID, domain.ErrNotFound)
	}
	inv.MinStock = minStock
	return nil
}

type memStockTransactionRepo struct{ s *memStore }

func (m *memStockTransactionRepo) Insert(ctx context.Context, txn *domain.StockTransaction) error {
	t := *txn
	m.s.transactions[txn.ID] = &t
	return nil
}

func (m *memStockTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.StockTransaction, error) {
	txn, ok := m.s.transactions[id]
	if !ok {
		return nil, fmt.Errorf("stock transaction %s: %w", id, domain.ErrNotFound)
	}
	t := *txn
	return &t, nil
}

func (m *memStockTransactionRepo) Update(ctx context.Context, txn *domain.StockTransaction) error {
	if _, ok := m.s.transactions[txn.ID]; !ok {
		return fmt.Errorf("stock transaction %s: %w", txn.ID, domain.ErrNotFound)
	}
	t := *txn
	m.s.transactions[txn.ID] = &t
	return nil
}

func (m *memStockTransactionRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*domain.StockTransaction, int, error) {
	transactions := []*domain.StockTransaction{}
	for _, txn := range m.s.transactions {
		if filter.ProductID != nil && txn.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != nil && txn.Type != *filter.Type {
			continue
		}
		t := *txn
		transactions = append(transactions, &t)
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, len(transactions), nil
}

type memOrderRepo struct{ s *memStore }

func (m *memOrderRepo) Insert(ctx context.Context, order *domain.Order) error {
	m.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	result := cloneOrder(order)
	if delivery, ok := m.s.deliveries[id]; ok {
		d := *delivery
		result.Delivery = &d
	}
	return result, nil
}

func (m *memOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	orders := []*domain.Order{}
	for id, order := range m.s.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.ShipperID != nil {
			delivery, ok := m.s.deliveries[id]
			if !ok || delivery.ShipperID != *filter.ShipperID {
				continue
			}
		}
		o, _ := m.FindByID(ctx, id)
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderedAt.After(orders[j].OrderedAt) })
	return orders, len(orders), nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	order, ok := m.s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	order.Status = status
	return nil
}

func (m *memOrderRepo) SumRevenue(ctx context.Context) (int64, error) {
	var total int64
	for _, order := range m.s.orders {
		if order.Status.CountsAsRevenue() {
			total += order.TotalAmount
		}
	}
	return total, nil
}

func (m *memOrderRepo) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	counts := map[domain.Status]int{}
	for _, order := range m.s.orders {
		counts[order.Status]++
	}
	return counts, nil
}

type memDeliveryRepo struct{ s *memStore }

func (m *memDeliveryRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Delivery, error) {
	delivery, ok := m.s.deliveries[orderID]
	if !ok {
		return nil, fmt.Errorf("delivery for order %s: %w", orderID, domain.ErrNotFound)
	}
	d := *delivery
	return &d, nil
}

func (m *memDeliveryRepo) Upsert(ctx context.Context, orderID, shipperID uuid.UUID, status domain.Status) error {
	if existing, ok := m.s.deliveries[orderID]; ok {
		existing.ShipperID = shipperID
		existing.Status = status
		return nil
	}
	m.s.deliveries[orderID] = &domain.Delivery{
		ID:        uuid.New(),
		OrderID:   orderID,
		ShipperID: shipperID,
		Status:    status,
	}
	return nil
}

func (m *memDeliveryRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.Status) error {
	delivery, ok := m.s.deliveries[orderID]
	if !ok {
		return fmt.Errorf("delivery for order %s: %w", orderID, domain.ErrNotFound)
	}
	delivery.Status = status
	return nil
}

type memPurchaseOrderRepo struct{ s *memStore }

func (m *memPurchaseOrderRepo) Insert(ctx context.Context, po *domain.PurchaseOrder) error {
	m.s.purchaseOrders[po.ID] = clonePurchaseOrder(po)
	return nil
}

func (m *memPurchaseOrderRepo) UpdateHeader(ctx context.Context, po *domain.PurchaseOrder) error {
	existing, ok := m.s.purchaseOrders[po.ID]
	if !ok {
		return fmt.Errorf("purchase order %s: %w", po.ID, domain.ErrNotFound)
	}
	existing.SupplierID = po.SupplierID
	existing.Status = po.Status
	existing.TotalAmount = po.TotalAmount
	return nil
}

func (m *memPurchaseOrderRepo) ReplaceLines(ctx context.Context, poID uuid.UUID, lines []*domain.PurchaseOrderLine) error {
	existing, ok := m.s.purchaseOrders[poID]
	if !ok {
		return fmt.Errorf("purchase order %s: %w", poID, domain.ErrNotFound)
	}
	existing.Lines = make([]*domain.PurchaseOrderLine, len(lines))
	for i, line := range lines {
		l := *line
		existing.Lines[i] = &l
	}
	return nil
}

func (m *memPurchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	po, ok := m.s.purchaseOrders[id]
	if !ok {
		return nil, fmt.Errorf("purchase order %s: %w", id, domain.ErrNotFound)
	}
	return clonePurchaseOrder(po), nil
}

func (m *memPurchaseOrderRepo) List(ctx context.Context, filter repository.PurchaseOrderFilter) ([]*domain.PurchaseOrder, int, error) {
	pos := []*domain.PurchaseOrder{}
	for _, po := range m.s.purchaseOrders {
		if filter.SupplierID != nil && po.SupplierID != *filter.SupplierID {
			continue
		}
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		pos = append(pos, clonePurchaseOrder(po))
	}
	return pos, len(pos), nil
}

func (m *memPurchaseOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.s.purchaseOrders[id]; !ok {
		return fmt.Errorf("purchase order %s: %w", id, domain.ErrNotFound)
	}
	delete(m.s.purchaseOrders, id)
	return nil
}

// mockCartRepo is a minimal cart used by order-service tests.
type mockCartRepo struct {
	items map[uuid.UUID][]*domain.CartItem
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{items: map[uuid.UUID][]*domain.CartItem{}}
}

func (m *mockCartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	return m.items[userID], nil
}

func (m *mockCartRepo) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	m.items[userID] = append(m.items[userID], &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (m *mockCartRepo) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	items := m.items[userID]
	for i, item := range items {
		if item.ProductID == productID {
			m.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cart item: %w", domain.ErrNotFound)
}

func (m *mockCartRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	delete(m.items, userID)
	return nil
}
