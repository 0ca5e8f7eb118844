package domain

// OrderItem is a row of the order/menu item association. Price is the unit
// price captured when the order was placed.
type OrderItem struct {
	ID         uint
	OrderID    uint
	MenuItemID int
	Quantity   int
	Price      int64
}
