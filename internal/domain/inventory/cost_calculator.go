package inventory

import "github.com/shopspring/decimal"

// costScale decimales con que se guarda el costo unitario (NUMERIC(18,4)).
const costScale = 4

// CostCalculator implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock actual en cero el costo nuevo es el de la entrada.
func CostCalculator(stockActual int64, costoActual decimal.Decimal, cantEntrada int64, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual + cantEntrada
	if sum <= 0 {
		return decimal.Zero
	}
	if stockActual <= 0 {
		return costoEntrada
	}
	num := decimal.NewFromInt(stockActual).Mul(costoActual).Add(decimal.NewFromInt(cantEntrada).Mul(costoEntrada))
	return num.DivRound(decimal.NewFromInt(sum), costScale)
}

// MovementCost devuelve el costo total de mover quantity unidades a unitCost.
func MovementCost(quantity int64, unitCost decimal.Decimal) decimal.Decimal {
	if quantity < 0 {
		quantity = -quantity
	}
	return unitCost.Mul(decimal.NewFromInt(quantity))
}
