package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bakeshop/backend/internal/domain"
	"bakeshop/backend/internal/store"
	"bakeshop/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	products        map[string]domain.Product
	batchesByProd   map[string][]domain.StockBatch
	movementsByID   map[string]domain.StockMovement
	ordersByID      map[string]*domain.Order
	refundsByID     map[string]domain.Refund
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the dev-mode accounts. Passwords come from
// SEED_ADMIN_PASSWORD / SEED_CASHIER_PASSWORD; without them, known dev
// defaults are used and a warning is printed. The memory store never
// backs a production deployment (DATABASE_URL selects postgres).
func seedUsers() map[string]domain.UserAccount {
	defaults := map[string]struct {
		envKey   string
		fallback string
		role     string
	}{
		"admin":   {"SEED_ADMIN_PASSWORD", "admin123", "admin"},
		"cashier": {"SEED_CASHIER_PASSWORD", "cashier123", "cashier"},
	}

	now := time.Now().UTC()
	users := make(map[string]domain.UserAccount, len(defaults))
	for username, d := range defaults {
		password := os.Getenv(d.envKey)
		if password == "" {
			password = d.fallback
			log.Printf("[memory-store] WARNING: %s unset, using default dev credentials for %q", d.envKey, username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] hashing seed password for %s: %v", username, err)
		}
		users[username] = domain.UserAccount{
			Username:  username,
			Password:  string(hash),
			Role:      d.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func New() *Store {
	return &Store{
		products:        make(map[string]domain.Product),
		batchesByProd:   make(map[string][]domain.StockBatch),
		movementsByID:   make(map[string]domain.StockMovement),
		ordersByID:      make(map[string]*domain.Order),
		refundsByID:     make(map[string]domain.Refund),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()
	products := []domain.Product{
		{ID: "prod-roti-tawar", Name: "Roti Tawar", Category: "bread", Price: 18000, Stock: 40, Unit: domain.UnitIndividual, MinStock: 10, Active: true},
		{ID: "prod-roti-sobek", Name: "Roti Sobek Coklat", Category: "bread", Price: 22000, Stock: 30, Unit: domain.UnitIndividual, MinStock: 8, Active: true},
		{ID: "prod-croissant", Name: "Croissant Butter", Category: "pastry", Price: 15000, Stock: 24, Unit: domain.UnitIndividual, MinStock: 6, Active: true},
		{ID: "prod-donat-box", Name: "Donat Gula Box Isi 6", Category: "pastry", Price: 48000, Stock: 36, Unit: domain.UnitBox, QtyPerBox: 6, MinStock: 12, Active: true},
		{ID: "prod-bolu-pandan", Name: "Bolu Pandan", Category: "cake", Price: 35000, Stock: 12, Unit: domain.UnitIndividual, MinStock: 4, Active: true},
		{ID: "prod-brownies", Name: "Brownies Panggang", Category: "cake", Price: 55000, Stock: 10, Unit: domain.UnitIndividual, MinStock: 3, Active: true},
		{ID: "prod-kue-lapis", Name: "Kue Lapis Legit", Category: "cake", Price: 95000, Stock: 6, Unit: domain.UnitIndividual, MinStock: 2, Active: true},
		{ID: "prod-kopi-botol", Name: "Kopi Susu Botol", Category: "beverage", Price: 12000, Stock: 48, Unit: domain.UnitIndividual, MinStock: 12, Active: true},
	}
	for _, p := range products {
		p.CreatedAt = now
		s.products[p.ID] = p
		expiry := now.AddDate(0, 0, seedShelfDays(p.Category))
		s.batchesByProd[p.ID] = []domain.StockBatch{{
			ID:         xid.New("batch"),
			ProductID:  p.ID,
			Quantity:   p.Stock,
			ExpiryDate: &expiry,
			ReceivedAt: now,
		}}
	}
	return s
}

func seedShelfDays(category string) int {
	switch category {
	case "bread", "pastry":
		return 4
	case "cake":
		return 7
	default:
		return 60
	}
}

func (s *Store) ListProducts(_ context.Context, activeOnly bool) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if activeOnly && !p.Active {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})

	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Category == "" || product.Price < 1 {
		return nil, store.ErrInvalidOrder
	}
	if product.Unit == domain.UnitBox && product.QtyPerBox < 1 {
		return nil, store.ErrInvalidOrder
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrInvalidOrder
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	product.Active = true
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.Active {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.Name == "" || product.Category == "" || product.Price < 1 {
		return nil, store.ErrInvalidOrder
	}
	existing, exists := s.products[product.ID]
	if !exists {
		return nil, store.ErrNotFound
	}

	// Stock and unit shape never change through a catalog edit.
	product.Stock = existing.Stock
	product.Unit = existing.Unit
	product.QtyPerBox = existing.QtyPerBox
	product.CreatedAt = existing.CreatedAt
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) ListLowStockProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, 8)
	for _, p := range s.products {
		if !p.Active || p.Stock > p.MinStock {
			continue
		}
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b domain.Product) int {
		if a.Stock == b.Stock {
			return strings.Compare(a.Name, b.Name)
		}
		if a.Stock < b.Stock {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) AdjustStock(_ context.Context, productID string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.adjustStockLocked(productID, delta)
}

func (s *Store) adjustStockLocked(productID string, delta int) (int, error) {
	product, exists := s.products[productID]
	if !exists {
		return 0, store.ErrNotFound
	}
	next := product.Stock + delta
	if next < 0 {
		next = 0
	}
	product.Stock = next
	s.products[productID] = product
	return next, nil
}

func (s *Store) AddBatch(_ context.Context, batch domain.StockBatch) (*domain.StockBatch, error) {
	if batch.ProductID == "" || batch.Quantity < 1 {
		return nil, store.ErrInvalidOrder
	}
	if batch.ID == "" {
		batch.ID = xid.New("batch")
	}
	if batch.ReceivedAt.IsZero() {
		batch.ReceivedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[batch.ProductID]; !exists {
		return nil, store.ErrNotFound
	}
	s.batchesByProd[batch.ProductID] = append(s.batchesByProd[batch.ProductID], batch)
	created := cloneBatch(batch)
	return &created, nil
}

func (s *Store) ListBatches(_ context.Context, productID string) ([]domain.StockBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockBatch, 0, 32)
	if productID != "" {
		for _, b := range s.batchesByProd[productID] {
			result = append(result, cloneBatch(b))
		}
	} else {
		for _, batches := range s.batchesByProd {
			for _, b := range batches {
				result = append(result, cloneBatch(b))
			}
		}
	}
	slices.SortStableFunc(result, compareBatchFIFO)
	return result, nil
}

func (s *Store) ConsumeBatchesFIFO(_ context.Context, productID string, qty int) (store.FIFOResult, error) {
	if qty < 1 {
		return store.FIFOResult{}, store.ErrInvalidOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[productID]; !exists {
		return store.FIFOResult{}, store.ErrNotFound
	}
	return s.consumeFIFOLocked(productID, qty), nil
}

// consumeFIFOLocked drains batches oldest-first, ties broken by insertion
// order. Exhausted batches stay in the ledger at zero. A shortfall is
// reported, never an error.
func (s *Store) consumeFIFOLocked(productID string, qty int) store.FIFOResult {
	batches := s.batchesByProd[productID]
	slices.SortStableFunc(batches, compareBatchFIFO)

	remaining := qty
	for i := range batches {
		if remaining == 0 {
			break
		}
		if batches[i].Quantity < 1 {
			continue
		}
		used := remaining
		if used > batches[i].Quantity {
			used = batches[i].Quantity
		}
		batches[i].Quantity -= used
		remaining -= used
	}
	s.batchesByProd[productID] = batches

	return store.FIFOResult{
		ProductID: productID,
		Requested: qty,
		Consumed:  qty - remaining,
		Shortfall: remaining,
	}
}

func (s *Store) ExpiringBatches(_ context.Context, withinDays int) ([]domain.StockBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().UTC().AddDate(0, 0, withinDays)
	result := make([]domain.StockBatch, 0, 16)
	for _, batches := range s.batchesByProd {
		for _, b := range batches {
			if b.Quantity < 1 || b.ExpiryDate == nil {
				continue
			}
			if b.ExpiryDate.After(cutoff) {
				continue
			}
			result = append(result, cloneBatch(b))
		}
	}
	slices.SortFunc(result, func(a, b domain.StockBatch) int {
		if a.ExpiryDate.Equal(*b.ExpiryDate) {
			return strings.Compare(a.ID, b.ID)
		}
		if a.ExpiryDate.Before(*b.ExpiryDate) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) NearestExpiry(_ context.Context, productID string) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.products[productID]; !exists {
		return nil, store.ErrNotFound
	}
	var nearest *time.Time
	for _, b := range s.batchesByProd[productID] {
		if b.Quantity < 1 || b.ExpiryDate == nil {
			continue
		}
		if nearest == nil || b.ExpiryDate.Before(*nearest) {
			expiry := b.ExpiryDate.UTC()
			nearest = &expiry
		}
	}
	return nearest, nil
}

func (s *Store) ReconcileStock(_ context.Context) ([]domain.StockDiscrepancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockDiscrepancy, 0, 4)
	for id, p := range s.products {
		batchTotal := 0
		for _, b := range s.batchesByProd[id] {
			batchTotal += b.Quantity
		}
		if batchTotal == p.Stock {
			continue
		}
		result = append(result, domain.StockDiscrepancy{
			ProductID:   id,
			ProductName: p.Name,
			FlatStock:   p.Stock,
			BatchTotal:  batchTotal,
			Delta:       p.Stock - batchTotal,
		})
	}
	slices.SortFunc(result, func(a, b domain.StockDiscrepancy) int {
		return strings.Compare(a.ProductID, b.ProductID)
	})
	return result, nil
}

func (s *Store) CreateMovement(_ context.Context, movement domain.StockMovement) (*domain.StockMovement, error) {
	if movement.ProductID == "" || movement.Quantity < 1 {
		return nil, store.ErrInvalidOrder
	}
	if movement.Type != domain.StockIn && movement.Type != domain.StockOut {
		return nil, store.ErrInvalidOrder
	}
	if movement.ID == "" {
		movement.ID = xid.New("mov")
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[movement.ProductID]; !exists {
		return nil, store.ErrNotFound
	}
	s.movementsByID[movement.ID] = movement
	created := movement
	return &created, nil
}

func (s *Store) ListMovements(_ context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.StockMovement, 0, len(s.movementsByID))
	for _, m := range s.movementsByID {
		if productID != "" && m.ProductID != productID {
			continue
		}
		result = append(result, m)
	}
	slices.SortFunc(result, func(a, b domain.StockMovement) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) UpdateMovementPaymentStatus(_ context.Context, movementID string, status domain.PaymentStatus) (*domain.StockMovement, error) {
	if status != domain.PaymentPaid && status != domain.PaymentUnpaid {
		return nil, store.ErrInvalidOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	movement, exists := s.movementsByID[movementID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if movement.Type != domain.StockIn || movement.PaymentStatus == "" {
		return nil, store.ErrInvalidOrder
	}
	movement.PaymentStatus = status
	s.movementsByID[movementID] = movement
	updated := movement
	return &updated, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order, deltas []store.CheckoutDelta) (*domain.Order, []store.FIFOResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(order.Items) == 0 {
		return nil, nil, store.ErrInvalidOrder
	}
	if order.ID == "" {
		order.ID = xid.New("ord")
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusCompleted
	}
	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, nil, store.ErrInvalidOrder
	}
	for _, d := range deltas {
		if _, exists := s.products[d.ProductID]; !exists {
			return nil, nil, store.ErrNotFound
		}
	}

	results := make([]store.FIFOResult, 0, len(deltas))
	for _, d := range deltas {
		if d.Units < 1 {
			continue
		}
		if _, err := s.adjustStockLocked(d.ProductID, -d.Units); err != nil {
			return nil, nil, err
		}
		results = append(results, s.consumeFIFOLocked(d.ProductID, d.Units))
	}

	orderCopy := cloneOrder(&order)
	s.ordersByID[order.ID] = orderCopy
	return cloneOrder(orderCopy), results, nil
}

func (s *Store) GetOrderByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (s *Store) ListOrders(_ context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Order, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		if status != "" && order.Status != status {
			continue
		}
		result = append(result, *cloneOrder(order))
	}
	slices.SortFunc(result, func(a, b domain.Order) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// VoidOrder restores the flat counter by each line's consumed units.
// Batches are left as consumed; restocking voided goods into dated lots
// would fabricate receipt dates the ledger never saw.
func (s *Store) VoidOrder(_ context.Context, id string, reason string, at time.Time) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ordersByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if order.Status != domain.OrderStatusCompleted {
		return nil, store.ErrInvalidOrder
	}

	for _, item := range order.Items {
		// Products are never hard-deleted, only deactivated, so the
		// lines of a stored order always resolve.
		if _, exists := s.products[item.ProductID]; !exists {
			continue
		}
		if _, err := s.adjustStockLocked(item.ProductID, item.Units); err != nil {
			return nil, err
		}
	}

	order.Status = domain.OrderStatusCancelled
	order.VoidReason = reason
	order.VoidedAt = &at

	return cloneOrder(order), nil
}

func (s *Store) CreateRefund(_ context.Context, refund domain.Refund) (*domain.Refund, error) {
	if strings.TrimSpace(refund.Reason) == "" || len(refund.Items) == 0 {
		return nil, store.ErrInvalidOrder
	}
	if refund.ID == "" {
		refund.ID = xid.New("refund")
	}
	if refund.CreatedAt.IsZero() {
		refund.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.ordersByID[refund.OrderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if order.Status != domain.OrderStatusCompleted {
		return nil, store.ErrInvalidOrder
	}

	lineByProduct := make(map[string]int, len(order.Items))
	for i, item := range order.Items {
		lineByProduct[item.ProductID] = i
	}
	for _, item := range refund.Items {
		idx, exists := lineByProduct[item.ProductID]
		if !exists {
			return nil, store.ErrInvalidOrder
		}
		line := order.Items[idx]
		if item.Qty < 1 || item.Qty > line.Qty-line.RefundedQty {
			return nil, store.ErrInvalidOrder
		}
	}
	for _, item := range refund.Items {
		order.Items[lineByProduct[item.ProductID]].RefundedQty += item.Qty
	}

	fullyRefunded := true
	for _, line := range order.Items {
		if line.RefundedQty < line.Qty {
			fullyRefunded = false
			break
		}
	}
	if fullyRefunded {
		order.Status = domain.OrderStatusRefunded
	}

	s.refundsByID[refund.ID] = cloneRefund(refund)
	created := cloneRefund(refund)
	return &created, nil
}

func (s *Store) ListRefundsByOrder(_ context.Context, orderID string) ([]domain.Refund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Refund, 0, 4)
	for _, refund := range s.refundsByID {
		if refund.OrderID != orderID {
			continue
		}
		result = append(result, cloneRefund(refund))
	}
	slices.SortFunc(result, func(a, b domain.Refund) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(a.ID, b.ID)
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return result, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidOrder
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidOrder
	}
	user.Username = username
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidOrder
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// compareBatchFIFO orders strictly by receipt time. Equal timestamps keep
// their insertion order under a stable sort, so it never inspects IDs.
func compareBatchFIFO(a domain.StockBatch, b domain.StockBatch) int {
	if a.ReceivedAt.Before(b.ReceivedAt) {
		return -1
	}
	if a.ReceivedAt.After(b.ReceivedAt) {
		return 1
	}
	return 0
}

func cloneOrder(src *domain.Order) *domain.Order {
	if src == nil {
		return nil
	}
	dup := *src
	items := make([]domain.OrderItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	if src.VoidedAt != nil {
		at := src.VoidedAt.UTC()
		dup.VoidedAt = &at
	}
	return &dup
}

func cloneRefund(src domain.Refund) domain.Refund {
	dup := src
	items := make([]domain.RefundItem, len(src.Items))
	copy(items, src.Items)
	dup.Items = items
	return dup
}

func cloneBatch(src domain.StockBatch) domain.StockBatch {
	dup := src
	if src.ExpiryDate != nil {
		expiry := src.ExpiryDate.UTC()
		dup.ExpiryDate = &expiry
	}
	return dup
}
