package domain

import "time"

// OrderStatus статус заказа.
// Переходы не ограничены таблицей: любое действие может выставить любой статус.
type OrderStatus string

const (
	StatusPending         OrderStatus = "pending"
	StatusProcessed       OrderStatus = "processed"
	StatusReady           OrderStatus = "ready"
	StatusShipped         OrderStatus = "shipped"
	StatusArrivedDubai    OrderStatus = "arrived_dubai"
	StatusArrivedBenghazi OrderStatus = "arrived_benghazi"
	StatusArrivedTobruk   OrderStatus = "arrived_tobruk"
	StatusOutForDelivery  OrderStatus = "out_for_delivery"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
	StatusPaid            OrderStatus = "paid"
)

// ActiveStatuses статусы, которые учитываются в долге клиента (все, кроме cancelled)
var ActiveStatuses = []OrderStatus{
	StatusPending,
	StatusProcessed,
	StatusReady,
	StatusShipped,
	StatusArrivedDubai,
	StatusArrivedBenghazi,
	StatusArrivedTobruk,
	StatusOutForDelivery,
	StatusDelivered,
	StatusPaid,
}

// Valid сообщает, известен ли статус
func (s OrderStatus) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	return s.Active()
}

// Active сообщает, входит ли статус в ActiveStatuses
func (s OrderStatus) Active() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// TransactionType тип записи журнала
type TransactionType string

const (
	TransactionOrder   TransactionType = "order"
	TransactionPayment TransactionType = "payment"
	TransactionOther   TransactionType = "other"
)

// Role роль владельца токена
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User клиент. Debt и OrderCount производные, их пишет только пересчет.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone"`
	Password     string    `json:"password,omitempty"` // bcrypt хеш, наружу не отдается
	Debt         float64   `json:"debt"`
	OrderCount   int       `json:"orderCount"`
	OrderCounter int       `json:"orderCounter"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserStats результат пересчета агрегатов клиента
type UserStats struct {
	Debt       float64 `json:"debt"`
	OrderCount int     `json:"orderCount"`
}

// Order основной заказ клиента
type Order struct {
	ID                   string      `json:"id"`
	UserID               string      `json:"userId"`
	CustomerName         string      `json:"customerName"`
	Description          string      `json:"description"`
	SellingPriceLYD      float64     `json:"sellingPriceLYD"`
	PurchasePriceUSD     float64     `json:"purchasePriceUSD"`
	DownPaymentLYD       float64     `json:"downPaymentLYD"`
	RemainingAmount      float64     `json:"remainingAmount"`
	Status               OrderStatus `json:"status"`
	ExchangeRate         float64     `json:"exchangeRate"`
	InvoiceNumber        string      `json:"invoiceNumber"`
	TrackingID           string      `json:"trackingId"`
	RepresentativeID     *string     `json:"representativeId"`
	RepresentativeName   string      `json:"representativeName"`
	Weight               float64     `json:"weight"`
	PricePerKilo         float64     `json:"pricePerKilo"`
	CustomerWeightCost   float64     `json:"customerWeightCost"`
	CustomerShippingCost float64     `json:"customerShippingCost"`
	SourceTempOrderID    string      `json:"sourceTempOrderId,omitempty"`
	DeliveredAt          *time.Time  `json:"deliveredAt,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// SubOrder позиция временной накладной
type SubOrder struct {
	ID                 string      `json:"id"`
	CustomerName       string      `json:"customerName"`
	Description        string      `json:"description"`
	TotalAmount        float64     `json:"totalAmount"`
	RemainingAmount    float64     `json:"remainingAmount"`
	RepresentativeID   string      `json:"representativeId,omitempty"`
	RepresentativeName string      `json:"representativeName,omitempty"`
	Status             OrderStatus `json:"status"`
}

// TempOrder временная сводная накладная.
// После конвертации в заказ ParentInvoiceID указывает на него и накладная не входит в долг клиента.
type TempOrder struct {
	ID               string      `json:"id"`
	InvoiceName      string      `json:"invoiceName"`
	SubOrders        []SubOrder  `json:"subOrders"`
	TotalAmount      float64     `json:"totalAmount"`
	RemainingAmount  float64     `json:"remainingAmount"`
	Status           OrderStatus `json:"status"`
	AssignedUserID   string      `json:"assignedUserId,omitempty"`
	AssignedUserName string      `json:"assignedUserName,omitempty"`
	ParentInvoiceID  *string     `json:"parentInvoiceId"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// Transaction запись журнала операций
type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        float64         `json:"amount"`
	OrderID       string          `json:"orderId,omitempty"`
	CustomerID    string          `json:"customerId,omitempty"`
	Description   string          `json:"description"`
	IsDownPayment bool            `json:"isDownPayment,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Representative курьер/представитель; AssignedOrders производное поле
type Representative struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	AssignedOrders int       `json:"assignedOrders"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Creditor внешний кредитор; TotalDebt равен сумме его ExternalDebt
type Creditor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Currency  string    `json:"currency"`
	TotalDebt float64   `json:"totalDebt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExternalDebt долг перед кредитором
type ExternalDebt struct {
	ID          string    `json:"id"`
	CreditorID  string    `json:"creditorId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Deposit struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Expense struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Conversation переписка; UnreadCount и Participants меняются операторами Increment/ArrayUnion
type Conversation struct {
	ID            string     `json:"id"`
	Subject       string     `json:"subject"`
	Participants  []string   `json:"participants"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount   int        `json:"unreadCount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ManualShippingLabel накладная, созданная вручную
type ManualShippingLabel struct {
	ID            string    `json:"id"`
	TrackingID    string    `json:"trackingId"`
	SenderName    string    `json:"senderName"`
	ReceiverName  string    `json:"receiverName"`
	ReceiverPhone string    `json:"receiverPhone"`
	Destination   string    `json:"destination"`
	Weight        float64   `json:"weight"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// InstantSale продажа со склада; Total = Quantity * UnitPrice
type InstantSale struct {
	ID           string    `json:"id"`
	ProductName  string    `json:"productName"`
	CustomerName string    `json:"customerName"`
	Quantity     float64   `json:"quantity"`
	UnitPrice    float64   `json:"unitPrice"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AppSettings единственная строка настроек с ID SettingsID
type AppSettings struct {
	ExchangeRate    float64   `json:"exchangeRate"`
	PricePerKiloLYD float64   `json:"pricePerKiloLYD"`
	PricePerKiloUSD float64   `json:"pricePerKiloUSD"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DefaultSettings значения до первой записи настроек
func DefaultSettings() AppSettings {
	return AppSettings{ExchangeRate: 1}
}
