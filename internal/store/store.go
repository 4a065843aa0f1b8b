package store

import (
	"context"
	"errors"
	"time"

	"bakeshop/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidOrder      = errors.New("invalid order")
)

// CheckoutDelta is the per-product inventory effect of an order, already
// expanded to individual units.
type CheckoutDelta struct {
	ProductID string
	Units     int
}

// FIFOResult reports what ConsumeBatchesFIFO actually deducted. Shortfall
// is nonzero when the batch ledger held fewer units than requested.
type FIFOResult struct {
	ProductID string
	Requested int
	Consumed  int
	Shortfall int
}

type Repository interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	ListLowStockProducts(ctx context.Context) ([]domain.Product, error)

	// AdjustStock moves the flat counter by delta, flooring at zero.
	// It returns the stock level after the adjustment.
	AdjustStock(ctx context.Context, productID string, delta int) (int, error)

	AddBatch(ctx context.Context, batch domain.StockBatch) (*domain.StockBatch, error)
	ListBatches(ctx context.Context, productID string) ([]domain.StockBatch, error)
	ConsumeBatchesFIFO(ctx context.Context, productID string, qty int) (FIFOResult, error)
	ExpiringBatches(ctx context.Context, withinDays int) ([]domain.StockBatch, error)
	NearestExpiry(ctx context.Context, productID string) (*time.Time, error)
	ReconcileStock(ctx context.Context) ([]domain.StockDiscrepancy, error)

	CreateMovement(ctx context.Context, movement domain.StockMovement) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error)
	UpdateMovementPaymentStatus(ctx context.Context, movementID string, status domain.PaymentStatus) (*domain.StockMovement, error)

	// CreateOrder persists the order and applies its stock and batch
	// effects atomically. Returned FIFO results carry any shortfalls.
	CreateOrder(ctx context.Context, order domain.Order, deltas []CheckoutDelta) (*domain.Order, []FIFOResult, error)
	GetOrderByID(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus, limit int) ([]domain.Order, error)
	VoidOrder(ctx context.Context, id string, reason string, at time.Time) (*domain.Order, error)
	CreateRefund(ctx context.Context, refund domain.Refund) (*domain.Refund, error)
	ListRefundsByOrder(ctx context.Context, orderID string) ([]domain.Refund, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
