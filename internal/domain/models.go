package domain

import "time"

// Product is a catalog entry. Prices are whole rupiah.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	Unit      UnitType  `json:"unit"`
	QtyPerBox int       `json:"qty_per_box,omitempty"`
	MinStock  int       `json:"min_stock"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// IndividualUnits converts a sale quantity into individual units,
// expanding box products by their per-box count.
func (p Product) IndividualUnits(qty int) int {
	if p.Unit == UnitBox && p.QtyPerBox > 0 {
		return qty * p.QtyPerBox
	}
	return qty
}

type ProductCreateRequest struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Price        int64    `json:"price"`
	Unit         UnitType `json:"unit"`
	QtyPerBox    int      `json:"qty_per_box"`
	MinStock     int      `json:"min_stock"`
	InitialStock int      `json:"initial_stock"`
}

type ProductUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Price    *int64  `json:"price,omitempty"`
	MinStock *int    `json:"min_stock,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

// Discount is a tagged value: Type selects the interpretation of Value.
// The zero value means no discount.
type Discount struct {
	Type  DiscountType `json:"type,omitempty"`
	Value int64        `json:"value,omitempty"`
}

func (d Discount) IsZero() bool {
	return d.Type == "" || d.Type == DiscountNone
}

type CartItem struct {
	ProductID string   `json:"product_id"`
	Qty       int      `json:"qty"`
	Discount  Discount `json:"discount,omitempty"`
}

// PricedLine is one cart line after per-item discounting.
type PricedLine struct {
	ProductID      string   `json:"product_id"`
	Qty            int      `json:"qty"`
	UnitPrice      int64    `json:"unit_price"`
	Gross          int64    `json:"gross"`
	DiscountAmount int64    `json:"discount_amount"`
	Net            int64    `json:"net"`
	Discount       Discount `json:"discount,omitempty"`
}

type Totals struct {
	Subtotal            int64        `json:"subtotal"`
	ItemDiscountTotal   int64        `json:"item_discount_total"`
	OrderDiscountAmount int64        `json:"order_discount_amount"`
	TaxableBase         int64        `json:"taxable_base"`
	TaxAmount           int64        `json:"tax_amount"`
	Total               int64        `json:"total"`
	Lines               []PricedLine `json:"lines"`
}

type CartTotalsRequest struct {
	Items          []CartItem `json:"items"`
	OrderDiscount  Discount   `json:"order_discount,omitempty"`
	TaxRatePercent float64    `json:"tax_rate_percent"`
}

type CheckoutRequest struct {
	Items          []CartItem `json:"items"`
	OrderDiscount  Discount   `json:"order_discount,omitempty"`
	TaxRatePercent float64    `json:"tax_rate_percent"`
	PaymentMethod  string     `json:"payment_method"`
	CashReceived   int64      `json:"cash_received"`
}

// OrderItem is a frozen line of a completed order. Unit prices and
// discounts are copied at checkout time and never re-read from the catalog.
type OrderItem struct {
	ProductID      string   `json:"product_id"`
	ProductName    string   `json:"product_name"`
	Unit           UnitType `json:"unit"`
	Qty            int      `json:"qty"`
	Units          int      `json:"units"`
	UnitPrice      int64    `json:"unit_price"`
	DiscountAmount int64    `json:"discount_amount"`
	LineTotal      int64    `json:"line_total"`
	RefundedQty    int      `json:"refunded_qty"`
}

type Order struct {
	ID                  string      `json:"id"`
	Status              OrderStatus `json:"status"`
	Items               []OrderItem `json:"items"`
	Subtotal            int64       `json:"subtotal"`
	ItemDiscountTotal   int64       `json:"item_discount_total"`
	OrderDiscountAmount int64       `json:"order_discount_amount"`
	TaxRatePercent      float64     `json:"tax_rate_percent"`
	TaxAmount           int64       `json:"tax_amount"`
	Total               int64       `json:"total"`
	PaymentMethod       string      `json:"payment_method"`
	CashReceived        int64       `json:"cash_received,omitempty"`
	Change              int64       `json:"change,omitempty"`
	CashierUsername     string      `json:"cashier_username"`
	VoidReason          string      `json:"void_reason,omitempty"`
	VoidedAt            *time.Time  `json:"voided_at,omitempty"`
	CreatedAt           time.Time   `json:"created_at"`
}

type VoidOrderRequest struct {
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

type RefundSelection struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type RefundOrderRequest struct {
	Items      []RefundSelection `json:"items"`
	Reason     string            `json:"reason"`
	ManagerPIN string            `json:"manager_pin"`
}

type RefundItem struct {
	ProductID           string `json:"product_id"`
	ProductName         string `json:"product_name"`
	Qty                 int    `json:"qty"`
	UnitPrice           int64  `json:"unit_price"`
	ApportionedDiscount int64  `json:"apportioned_discount"`
	Amount              int64  `json:"amount"`
}

type Refund struct {
	ID          string       `json:"id"`
	OrderID     string       `json:"order_id"`
	Reason      string       `json:"reason"`
	Items       []RefundItem `json:"items"`
	Amount      int64        `json:"amount"`
	ProcessedBy string       `json:"processed_by"`
	CreatedAt   time.Time    `json:"created_at"`
}

// StockBatch is one received lot. Quantity only ever decreases after
// receipt; exhausted batches stay in the ledger at zero.
type StockBatch struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"product_id"`
	Quantity   int        `json:"quantity"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	ReceivedAt time.Time  `json:"received_at"`
}

type StockMovement struct {
	ID            string        `json:"id"`
	ProductID     string        `json:"product_id"`
	Type          StockType     `json:"type"`
	Quantity      int           `json:"quantity"`
	Reason        string        `json:"reason,omitempty"`
	Supplier      string        `json:"supplier,omitempty"`
	PaymentTerms  PaymentTerms  `json:"payment_terms,omitempty"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	CreatedBy     string        `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
}

type StockInRequest struct {
	ProductID    string       `json:"product_id"`
	Qty          int          `json:"qty"`
	ExpiryDate   string       `json:"expiry_date,omitempty"`
	Supplier     string       `json:"supplier,omitempty"`
	PaymentTerms PaymentTerms `json:"payment_terms,omitempty"`
	Reason       string       `json:"reason,omitempty"`
}

type StockOutRequest struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	Reason    string `json:"reason"`
}

type PaymentStatusUpdateRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// ExpiryAlert is a classified batch row for the expiry report.
type ExpiryAlert struct {
	BatchID     string    `json:"batch_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	ExpiryDate  time.Time `json:"expiry_date"`
	DaysLeft    int       `json:"days_left"`
	Level       string    `json:"level"`
}

type ExpiryAlertReport struct {
	GeneratedAt string        `json:"generated_at"`
	WithinDays  int           `json:"within_days"`
	Alerts      []ExpiryAlert `json:"alerts"`
}

// StockDiscrepancy reports a product whose flat counter disagrees with
// the sum of its batch quantities. Diagnostic only; nothing is corrected.
type StockDiscrepancy struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	FlatStock   int    `json:"flat_stock"`
	BatchTotal  int    `json:"batch_total"`
	Delta       int    `json:"delta"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

type UnitType string

const (
	UnitIndividual UnitType = "individual"
	UnitBox        UnitType = "box"
)

type DiscountType string

const (
	DiscountNone    DiscountType = "none"
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type StockType string

const (
	StockIn  StockType = "in"
	StockOut StockType = "out"
)

type PaymentTerms string

const (
	TermsCOD   PaymentTerms = "COD"
	TermsNet30 PaymentTerms = "NET30"
	TermsNet60 PaymentTerms = "NET60"
	TermsNet90 PaymentTerms = "NET90"
)

// DueDays returns the payment window in days, 0 for cash on delivery.
func (t PaymentTerms) DueDays() int {
	switch t {
	case TermsNet30:
		return 30
	case TermsNet60:
		return 60
	case TermsNet90:
		return 90
	default:
		return 0
	}
}

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)
