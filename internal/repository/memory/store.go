// Package memory provides in-memory repository implementations used by
// tests and by the server's dev mode (APP_STORE=memory). All state lives
// behind one RWMutex; repository calls are short critical sections, which
// gives every multi-layer mutation the all-or-nothing behavior the costing
// engine requires.
package memory

import (
	"sort"
	"sync"

	"github.com/stocklens/backend/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	nextLayerID  int64
	nextPOID     int64
	nextOrderID  int64
	nextReturnID int64

	layersBySKU    map[string][]*domain.CostLayer
	purchaseOrders map[int64]*domain.PurchaseOrder
	orders         map[int64]*domain.Order
	returns        map[int64]*domain.Return
}

func NewStore() *Store {
	return &Store{
		layersBySKU:    make(map[string][]*domain.CostLayer),
		purchaseOrders: make(map[int64]*domain.PurchaseOrder),
		orders:         make(map[int64]*domain.Order),
		returns:        make(map[int64]*domain.Return),
	}
}

// sortLayers orders a SKU's layers by acquired time ascending. The sort is
// stable so layers acquired at the same instant keep insertion order.
func sortLayers(layers []*domain.CostLayer) {
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].AcquiredAt.Before(layers[j].AcquiredAt)
	})
}
