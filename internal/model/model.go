// Package model содержит доменные сущности сервиса bakeshop.
package model

import "time"

// PrincipalKind определяет тип учётной записи: покупатель или владелец магазина.
type PrincipalKind string

const (
	KindCustomer PrincipalKind = "customer"
	KindOwner    PrincipalKind = "owner"
)

// Valid сообщает, является ли значение одним из известных типов учётных записей.
func (k PrincipalKind) Valid() bool {
	return k == KindCustomer || k == KindOwner
}

// Principal представляет аутентифицированную учётную запись конкретного типа.
// Тип неизменяем после создания; пространства имён разных типов не пересекаются.
type Principal struct {
	ID       string
	Kind     PrincipalKind
	Username string
}

// Address содержит почтовый адрес покупателя.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Preferences содержит вкусовые предпочтения покупателя.
type Preferences struct {
	Sweetness string   `json:"sweetness"`
	Flavors   string   `json:"flavors"`
	Types     []string `json:"types"`
	Allergies []string `json:"allergies"`
}

// Customer представляет зарегистрированного покупателя.
type Customer struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Address      Address
	Preferences  Preferences
	CreatedAt    time.Time
}

// Owner представляет владельца магазина.
type Owner struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

// Principal возвращает представление покупателя как учётной записи.
func (c *Customer) Principal() Principal {
	return Principal{ID: c.ID, Kind: KindCustomer, Username: c.Username}
}

// Principal возвращает представление владельца как учётной записи.
func (o *Owner) Principal() Principal {
	return Principal{ID: o.ID, Kind: KindOwner, Username: o.Username}
}

// CartOwnerType определяет вид владельца корзины.
type CartOwnerType string

const (
	CartOwnerVisitor CartOwnerType = "visitor"
	CartOwnerUser    CartOwnerType = "user"
)

// CartOwner — типизированный ключ владельца корзины: либо токен посетителя,
// либо идентификатор покупателя, но никогда оба сразу.
type CartOwner struct {
	Type CartOwnerType
	ID   string
}

// VisitorCart возвращает ключ корзины анонимного посетителя.
func VisitorCart(token string) CartOwner {
	return CartOwner{Type: CartOwnerVisitor, ID: token}
}

// UserCart возвращает ключ корзины зарегистрированного покупателя.
func UserCart(customerID string) CartOwner {
	return CartOwner{Type: CartOwnerUser, ID: customerID}
}

// CartLine описывает одну позицию корзины. Количество всегда положительное:
// позиция с нулевым количеством удаляется, а не сохраняется.
type CartLine struct {
	ID        string
	ProductID string
	Quantity  int32
}

// Cart представляет корзину, принадлежащую ровно одному владельцу.
// Version используется для оптимистичной блокировки при слиянии и очистке.
type Cart struct {
	ID       string
	Owner    CartOwner
	Version  int64
	MergedAt *time.Time
	Lines    []CartLine
}

// LineByProduct возвращает позицию корзины с указанным товаром, если она есть.
func (c *Cart) LineByProduct(productID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Empty сообщает, пуста ли корзина.
func (c *Cart) Empty() bool {
	return c == nil || len(c.Lines) == 0
}

// Product описывает товар каталога. Цена хранится в центах.
type Product struct {
	ID          string
	Slug        string
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Ingredients []string
	InStock     bool
	CreatedAt   time.Time
}

// OrderStatus описывает статус заказа. Жизненный цикл однонаправленный,
// переходы статусов управляются извне; сервис создаёт заказы только в статусе pending.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusInTransit OrderStatus = "in transit"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// OrderLine — позиция заказа с ценой, зафиксированной в момент оформления.
type OrderLine struct {
	ProductID      string
	Quantity       int32
	UnitPriceCents int64
}

// Order — неизменяемый снимок корзины на момент оформления.
type Order struct {
	ID         string
	CustomerID string
	Lines      []OrderLine
	TotalCents int64
	Status     OrderStatus
	CreatedAt  time.Time
}

// IssueStatus описывает статус обращения по заказу.
type IssueStatus string

const (
	IssueStatusOpen          IssueStatus = "open"
	IssueStatusInvestigating IssueStatus = "investigating"
	IssueStatusResolved      IssueStatus = "resolved"
	IssueStatusClosed        IssueStatus = "closed"
)

// Issue представляет обращение покупателя по конкретному заказу.
type Issue struct {
	ID          string
	CustomerID  string
	OrderID     string
	Description string
	Status      IssueStatus
	CreatedAt   time.Time
}

// Feedback представляет отзыв; может быть оставлен анонимно.
type Feedback struct {
	ID         string
	CustomerID *string
	Content    string
	CreatedAt  time.Time
}
