package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bakeshop/backend/internal/cache"
	"bakeshop/backend/internal/domain"
	"bakeshop/backend/internal/pricing"
	"bakeshop/backend/internal/store"
	"bakeshop/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo            store.Repository
	reports         cache.ReportCache
	logger          zerolog.Logger
	expiryAlertDays int
	expiryAlertTTL  time.Duration
}

func New(repo store.Repository, reports cache.ReportCache, logger zerolog.Logger, expiryAlertDays int, expiryAlertTTL time.Duration) *Service {
	if reports == nil {
		reports = cache.NoopReportCache{}
	}
	if expiryAlertDays < 1 {
		expiryAlertDays = 60
	}
	if expiryAlertTTL < time.Second {
		expiryAlertTTL = time.Minute
	}

	return &Service{
		repo:            repo,
		reports:         reports,
		logger:          logger.With().Str("component", "service").Logger(),
		expiryAlertDays: expiryAlertDays,
		expiryAlertTTL:  expiryAlertTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context, includeInactive bool) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, !includeInactive)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Unit == "" {
		req.Unit = domain.UnitIndividual
	}

	if req.Name == "" || req.Category == "" {
		return domain.Product{}, store.ErrInvalidOrder
	}
	if req.Price < 1 || req.MinStock < 0 || req.InitialStock < 0 {
		return domain.Product{}, store.ErrInvalidOrder
	}
	if req.Unit != domain.UnitIndividual && req.Unit != domain.UnitBox {
		return domain.Product{}, store.ErrInvalidOrder
	}
	if req.Unit == domain.UnitBox && req.QtyPerBox < 1 {
		return domain.Product{}, store.ErrInvalidOrder
	}

	product := domain.Product{
		ID:        xid.New("prod"),
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Stock:     req.InitialStock,
		Unit:      req.Unit,
		QtyPerBox: req.QtyPerBox,
		MinStock:  req.MinStock,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	if req.InitialStock > 0 {
		if _, err := s.repo.AddBatch(ctx, domain.StockBatch{
			ProductID:  created.ID,
			Quantity:   req.InitialStock,
			ReceivedAt: created.CreatedAt,
		}); err != nil {
			return domain.Product{}, err
		}
	}

	s.logAudit(ctx, "product_added", "product", created.ID, fmt.Sprintf("name=%s,price=%d,stock=%d", created.Name, created.Price, req.InitialStock))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	if strings.TrimSpace(id) == "" {
		return domain.Product{}, store.ErrInvalidOrder
	}

	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidOrder
		}
		updated.Name = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, store.ErrInvalidOrder
		}
		updated.Category = category
	}
	if req.Price != nil {
		if *req.Price < 1 {
			return domain.Product{}, store.ErrInvalidOrder
		}
		updated.Price = *req.Price
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return domain.Product{}, store.ErrInvalidOrder
		}
		updated.MinStock = *req.MinStock
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_edited", "product", saved.ID, fmt.Sprintf("active=%t,price=%d,min_stock=%d", saved.Active, saved.Price, saved.MinStock))
	return *saved, nil
}

func (s *Service) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListLowStockProducts(ctx)
}

// QuoteCart prices a cart without touching inventory or orders.
func (s *Service) QuoteCart(ctx context.Context, req domain.CartTotalsRequest) (domain.Totals, error) {
	items, _, err := s.resolveCart(ctx, req.Items)
	if err != nil {
		return domain.Totals{}, err
	}
	return pricing.ComputeTotals(items, req.OrderDiscount, req.TaxRatePercent)
}

func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return domain.Order{}, fmt.Errorf("authenticated cashier required")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}
	if !isSupportedPaymentMethod(req.PaymentMethod) {
		return domain.Order{}, store.ErrInvalidOrder
	}

	items, products, err := s.resolveCart(ctx, req.Items)
	if err != nil {
		return domain.Order{}, err
	}

	totals, err := pricing.ComputeTotals(items, req.OrderDiscount, req.TaxRatePercent)
	if err != nil {
		return domain.Order{}, err
	}

	change := int64(0)
	if req.PaymentMethod == "cash" {
		if req.CashReceived < totals.Total {
			return domain.Order{}, store.ErrInvalidOrder
		}
		change = req.CashReceived - totals.Total
	} else {
		req.CashReceived = 0
	}

	orderItems := make([]domain.OrderItem, 0, len(totals.Lines))
	deltas := make([]store.CheckoutDelta, 0, len(totals.Lines))
	for _, line := range totals.Lines {
		product := products[line.ProductID]
		units := product.IndividualUnits(line.Qty)
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:      line.ProductID,
			ProductName:    product.Name,
			Unit:           product.Unit,
			Qty:            line.Qty,
			Units:          units,
			UnitPrice:      line.UnitPrice,
			DiscountAmount: line.DiscountAmount,
			LineTotal:      line.Net,
		})
		deltas = append(deltas, store.CheckoutDelta{ProductID: line.ProductID, Units: units})
	}

	order := domain.Order{
		ID:                  xid.New("ord"),
		Status:              domain.OrderStatusCompleted,
		Items:               orderItems,
		Subtotal:            totals.Subtotal,
		ItemDiscountTotal:   totals.ItemDiscountTotal,
		OrderDiscountAmount: totals.OrderDiscountAmount,
		TaxRatePercent:      req.TaxRatePercent,
		TaxAmount:           totals.TaxAmount,
		Total:               totals.Total,
		PaymentMethod:       req.PaymentMethod,
		CashReceived:        req.CashReceived,
		Change:              change,
		CashierUsername:     actor.Username,
		CreatedAt:           time.Now().UTC(),
	}

	created, fifoResults, err := s.repo.CreateOrder(ctx, order, deltas)
	if err != nil {
		return domain.Order{}, err
	}

	for _, result := range fifoResults {
		if result.Shortfall == 0 {
			continue
		}
		s.logger.Warn().
			Str("order_id", created.ID).
			Str("product_id", result.ProductID).
			Int("requested", result.Requested).
			Int("consumed", result.Consumed).
			Int("shortfall", result.Shortfall).
			Msg("batch ledger held fewer units than sold")
	}

	s.logAudit(ctx, "order_created", "order", created.ID, fmt.Sprintf("total=%d,payment=%s,items=%d", created.Total, created.PaymentMethod, len(created.Items)))
	return *created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Order{}, store.ErrInvalidOrder
	}
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (s *Service) ListOrders(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch domain.OrderStatus(status) {
	case "", domain.OrderStatusCompleted, domain.OrderStatusPending, domain.OrderStatusCancelled, domain.OrderStatusRefunded:
	default:
		return nil, store.ErrInvalidOrder
	}
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListOrders(ctx, domain.OrderStatus(status), limit)
}

func (s *Service) VoidOrder(ctx context.Context, orderID string, req domain.VoidOrderRequest) (domain.Order, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Order{}, fmt.Errorf("admin role required")
	}
	if strings.TrimSpace(orderID) == "" {
		return domain.Order{}, store.ErrInvalidOrder
	}
	if strings.TrimSpace(req.Reason) == "" {
		return domain.Order{}, fmt.Errorf("%w: void reason required", store.ErrInvalidOrder)
	}

	voidedAt := time.Now().UTC()
	order, err := s.repo.VoidOrder(ctx, orderID, strings.TrimSpace(req.Reason), voidedAt)
	if err != nil {
		return domain.Order{}, err
	}

	s.logAudit(ctx, "order_voided", "order", order.ID, req.Reason)
	return *order, nil
}

func (s *Service) RefundOrder(ctx context.Context, orderID string, req domain.RefundOrderRequest) (domain.Refund, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Refund{}, fmt.Errorf("admin role required")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if strings.TrimSpace(orderID) == "" || req.Reason == "" || len(req.Items) == 0 {
		return domain.Refund{}, store.ErrInvalidOrder
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return domain.Refund{}, err
	}
	if order.Status != domain.OrderStatusCompleted {
		return domain.Refund{}, fmt.Errorf("%w: only completed orders can be refunded", store.ErrInvalidOrder)
	}

	lineByProduct := make(map[string]domain.OrderItem, len(order.Items))
	for _, line := range order.Items {
		lineByProduct[line.ProductID] = line
	}

	selections := make(map[string]int, len(req.Items))
	for _, sel := range req.Items {
		if sel.ProductID == "" || sel.Qty < 1 {
			return domain.Refund{}, store.ErrInvalidOrder
		}
		selections[sel.ProductID] += sel.Qty
	}

	refundItems := make([]domain.RefundItem, 0, len(selections))
	amount := int64(0)
	for productID, qty := range selections {
		line, exists := lineByProduct[productID]
		if !exists {
			return domain.Refund{}, fmt.Errorf("%w: product %s not on order", store.ErrInvalidOrder, productID)
		}
		if qty > line.Qty-line.RefundedQty {
			return domain.Refund{}, fmt.Errorf("%w: refund quantity exceeds remaining", store.ErrInvalidOrder)
		}
		apportioned := apportionDiscount(line.DiscountAmount, qty, line.Qty)
		lineAmount := int64(qty)*line.UnitPrice - apportioned
		refundItems = append(refundItems, domain.RefundItem{
			ProductID:           productID,
			ProductName:         line.ProductName,
			Qty:                 qty,
			UnitPrice:           line.UnitPrice,
			ApportionedDiscount: apportioned,
			Amount:              lineAmount,
		})
		amount += lineAmount
	}

	refund := domain.Refund{
		ID:          xid.New("refund"),
		OrderID:     order.ID,
		Reason:      req.Reason,
		Items:       refundItems,
		Amount:      amount,
		ProcessedBy: actor.Username,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.CreateRefund(ctx, refund)
	if err != nil {
		return domain.Refund{}, err
	}

	s.logAudit(ctx, "order_refunded", "order", order.ID, fmt.Sprintf("refund=%s,amount=%d,reason=%s", created.ID, created.Amount, req.Reason))
	return *created, nil
}

func (s *Service) StockIn(ctx context.Context, req domain.StockInRequest) (domain.StockMovement, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.StockMovement{}, fmt.Errorf("admin role required")
	}
	if req.ProductID == "" || req.Qty < 1 {
		return domain.StockMovement{}, store.ErrInvalidOrder
	}

	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return domain.StockMovement{}, err
	}

	var expiryDate *time.Time
	if strings.TrimSpace(req.ExpiryDate) != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return domain.StockMovement{}, store.ErrInvalidOrder
		}
		exp := parsed.UTC()
		expiryDate = &exp
	}

	now := time.Now().UTC()
	units := product.IndividualUnits(req.Qty)

	if _, err := s.repo.AddBatch(ctx, domain.StockBatch{
		ProductID:  product.ID,
		Quantity:   units,
		ExpiryDate: expiryDate,
		ReceivedAt: now,
	}); err != nil {
		return domain.StockMovement{}, err
	}
	if _, err := s.repo.AdjustStock(ctx, product.ID, units); err != nil {
		return domain.StockMovement{}, err
	}

	movement := domain.StockMovement{
		ProductID: product.ID,
		Type:      domain.StockIn,
		Quantity:  units,
		Reason:    strings.TrimSpace(req.Reason),
		Supplier:  strings.TrimSpace(req.Supplier),
		CreatedBy: actor.Username,
		CreatedAt: now,
	}
	if req.PaymentTerms != "" {
		switch req.PaymentTerms {
		case domain.TermsCOD, domain.TermsNet30, domain.TermsNet60, domain.TermsNet90:
		default:
			return domain.StockMovement{}, store.ErrInvalidOrder
		}
		movement.PaymentTerms = req.PaymentTerms
		if req.PaymentTerms == domain.TermsCOD {
			movement.PaymentStatus = domain.PaymentPaid
		} else {
			due := now.AddDate(0, 0, req.PaymentTerms.DueDays())
			movement.DueDate = &due
			movement.PaymentStatus = domain.PaymentUnpaid
		}
	}

	created, err := s.repo.CreateMovement(ctx, movement)
	if err != nil {
		return domain.StockMovement{}, err
	}

	s.logAudit(ctx, "stock_adjusted", "stock_movement", created.ID, fmt.Sprintf("type=in,product=%s,units=%d", product.ID, units))
	return *created, nil
}

func (s *Service) StockOut(ctx context.Context, req domain.StockOutRequest) (domain.StockMovement, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.StockMovement{}, fmt.Errorf("admin role required")
	}
	if req.ProductID == "" || req.Qty < 1 || strings.TrimSpace(req.Reason) == "" {
		return domain.StockMovement{}, store.ErrInvalidOrder
	}

	product, err := s.repo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return domain.StockMovement{}, err
	}

	units := product.IndividualUnits(req.Qty)
	if units > product.Stock {
		return domain.StockMovement{}, store.ErrInsufficientStock
	}

	if _, err := s.repo.AdjustStock(ctx, product.ID, -units); err != nil {
		return domain.StockMovement{}, err
	}
	result, err := s.repo.ConsumeBatchesFIFO(ctx, product.ID, units)
	if err != nil {
		return domain.StockMovement{}, err
	}
	if result.Shortfall > 0 {
		s.logger.Warn().
			Str("product_id", product.ID).
			Int("requested", result.Requested).
			Int("shortfall", result.Shortfall).
			Msg("batch ledger held fewer units than removed")
	}

	created, err := s.repo.CreateMovement(ctx, domain.StockMovement{
		ProductID: product.ID,
		Type:      domain.StockOut,
		Quantity:  units,
		Reason:    strings.TrimSpace(req.Reason),
		CreatedBy: actor.Username,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.StockMovement{}, err
	}

	s.logAudit(ctx, "stock_adjusted", "stock_movement", created.ID, fmt.Sprintf("type=out,product=%s,units=%d,reason=%s", product.ID, units, req.Reason))
	return *created, nil
}

func (s *Service) ListMovements(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListMovements(ctx, strings.TrimSpace(productID), limit)
}

func (s *Service) UpdateMovementPaymentStatus(ctx context.Context, movementID string, req domain.PaymentStatusUpdateRequest) (domain.StockMovement, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.StockMovement{}, fmt.Errorf("admin role required")
	}
	if strings.TrimSpace(movementID) == "" {
		return domain.StockMovement{}, store.ErrInvalidOrder
	}

	updated, err := s.repo.UpdateMovementPaymentStatus(ctx, movementID, req.PaymentStatus)
	if err != nil {
		return domain.StockMovement{}, err
	}

	s.logAudit(ctx, "payment_status_updated", "stock_movement", updated.ID, string(req.PaymentStatus))
	return *updated, nil
}

func (s *Service) ListBatches(ctx context.Context, productID string) ([]domain.StockBatch, error) {
	return s.repo.ListBatches(ctx, strings.TrimSpace(productID))
}

// ExpiryAlerts classifies every batch expiring inside the window. The
// report is cached briefly since the inventory page polls it.
func (s *Service) ExpiryAlerts(ctx context.Context, withinDays int) (domain.ExpiryAlertReport, error) {
	if withinDays < 1 {
		withinDays = s.expiryAlertDays
	}

	cacheKey := fmt.Sprintf("expiry-alerts:%d", withinDays)
	if cached, found, err := s.reports.Get(ctx, cacheKey); err == nil && found {
		return *cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Msg("expiry alert cache read failed")
	}

	batches, err := s.repo.ExpiringBatches(ctx, withinDays)
	if err != nil {
		return domain.ExpiryAlertReport{}, err
	}

	productIDs := make([]string, 0, len(batches))
	for _, b := range batches {
		productIDs = append(productIDs, b.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return domain.ExpiryAlertReport{}, err
	}

	now := time.Now().UTC()
	report := domain.ExpiryAlertReport{
		GeneratedAt: now.Format(time.RFC3339),
		WithinDays:  withinDays,
		Alerts:      make([]domain.ExpiryAlert, 0, len(batches)),
	}
	for _, b := range batches {
		days := daysUntil(now, *b.ExpiryDate)
		report.Alerts = append(report.Alerts, domain.ExpiryAlert{
			BatchID:     b.ID,
			ProductID:   b.ProductID,
			ProductName: products[b.ProductID].Name,
			Quantity:    b.Quantity,
			ExpiryDate:  *b.ExpiryDate,
			DaysLeft:    days,
			Level:       expiryLevel(days),
		})
	}

	if err := s.reports.Set(ctx, cacheKey, &report, s.expiryAlertTTL); err != nil {
		s.logger.Warn().Err(err).Msg("expiry alert cache write failed")
	}
	return report, nil
}

func (s *Service) ReconcileStock(ctx context.Context) ([]domain.StockDiscrepancy, error) {
	discrepancies, err := s.repo.ReconcileStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range discrepancies {
		s.logger.Warn().
			Str("product_id", d.ProductID).
			Int("flat_stock", d.FlatStock).
			Int("batch_total", d.BatchTotal).
			Msg("stock counter disagrees with batch ledger")
	}
	return discrepancies, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidOrder
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

// resolveCart normalizes cart lines, resolves their products from the
// catalog and returns both the priced input and the product lookup.
func (s *Service) resolveCart(ctx context.Context, items []domain.CartItem) ([]pricing.Item, map[string]domain.Product, error) {
	normalized := make([]domain.CartItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, nil, fmt.Errorf("%w: item without product id", pricing.ErrInvalidCart)
		}
		if idx, ok := seen[item.ProductID]; ok {
			// Same product, same discount: merge quantities. Different
			// discounts on one product are rejected rather than guessed at.
			if normalized[idx].Discount != item.Discount {
				return nil, nil, fmt.Errorf("%w: conflicting discounts for product %s", pricing.ErrInvalidCart, item.ProductID)
			}
			normalized[idx].Qty += item.Qty
			continue
		}
		seen[item.ProductID] = len(normalized)
		normalized = append(normalized, item)
	}
	if len(normalized) == 0 {
		return nil, nil, fmt.Errorf("%w: empty cart", pricing.ErrInvalidCart)
	}

	ids := make([]string, 0, len(normalized))
	for _, item := range normalized {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	priced := make([]pricing.Item, 0, len(normalized))
	for _, item := range normalized {
		product, exists := products[item.ProductID]
		if !exists {
			return nil, nil, fmt.Errorf("%w: product %s unavailable", store.ErrInvalidOrder, item.ProductID)
		}
		priced = append(priced, pricing.Item{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: product.Price,
			Discount:  item.Discount,
		})
	}
	return priced, products, nil
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

// apportionDiscount splits a line discount across a partial refund in
// proportion to quantity, rounding half-up.
func apportionDiscount(discountAmount int64, refundQty int, originalQty int) int64 {
	if discountAmount == 0 || originalQty == 0 {
		return 0
	}
	num := discountAmount*int64(refundQty)*2 + int64(originalQty)
	return num / (int64(originalQty) * 2)
}

func daysUntil(now time.Time, expiry time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today) / (24 * time.Hour))
}

func expiryLevel(daysLeft int) string {
	switch {
	case daysLeft <= 0:
		return "expired"
	case daysLeft <= 14:
		return "urgent"
	default:
		return "warning"
	}
}

func isSupportedPaymentMethod(method string) bool {
	switch method {
	case "cash", "card", "qris", "ewallet":
		return true
	default:
		return false
	}
}
