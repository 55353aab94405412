package sync

// ShelfQuantity maps a raw warehouse quantity to the banded quantity the
// local catalog carries. The bands keep the shelf count conservative: small
// warehouse stocks round down to zero so the shop never oversells against a
// feed that lags reality.
func ShelfQuantity(warehouseQty int) int {
	switch {
	case warehouseQty <= 0:
		return 0
	case warehouseQty < 30:
		return 0
	case warehouseQty <= 50:
		return 2
	case warehouseQty < 200:
		return 5
	default:
		return 10
	}
}
