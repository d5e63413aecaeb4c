// Package importer ingests purchase orders from CSV files. One row is one
// purchase order line; consecutive rows sharing a reference are grouped
// into a single purchase order.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stocklens/backend/internal/domain"
)

var requiredColumns = []string{"reference", "sku", "quantity", "unit_cost"}

// ParsePurchaseOrders reads a purchase order CSV and returns one create
// request per distinct reference, preserving file order.
func ParsePurchaseOrders(r io.Reader) ([]*domain.CreatePurchaseOrderRequest, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var orders []*domain.CreatePurchaseOrderRequest
	byRef := make(map[string]*domain.CreatePurchaseOrderRequest)
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rowNum++

		if err := appendRow(record, colMap, byRef, &orders); err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
	}

	return orders, nil
}

func appendRow(record []string, colMap map[string]int, byRef map[string]*domain.CreatePurchaseOrderRequest, orders *[]*domain.CreatePurchaseOrderRequest) error {
	getValue := func(colName string) string {
		if idx, ok := colMap[colName]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	reference := getValue("reference")
	if reference == "" {
		return fmt.Errorf("empty reference")
	}

	sku := getValue("sku")
	if sku == "" {
		return fmt.Errorf("empty sku")
	}

	quantity, err := strconv.Atoi(getValue("quantity"))
	if err != nil || quantity <= 0 {
		return fmt.Errorf("invalid quantity %q", getValue("quantity"))
	}

	unitCost, err := decimal.NewFromString(getValue("unit_cost"))
	if err != nil {
		return fmt.Errorf("invalid unit_cost %q", getValue("unit_cost"))
	}

	order, ok := byRef[reference]
	if !ok {
		order = &domain.CreatePurchaseOrderRequest{
			Reference: reference,
			Supplier:  getValue("supplier"),
		}

		if raw := getValue("delivery_cost"); raw != "" {
			deliveryCost, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("invalid delivery_cost %q", raw)
			}
			order.DeliveryCost = deliveryCost
		}

		if raw := getValue("ordered_at"); raw != "" {
			orderedAt, err := parseOrderedAt(raw)
			if err != nil {
				return fmt.Errorf("invalid ordered_at %q", raw)
			}
			order.OrderedAt = orderedAt
		}

		byRef[reference] = order
		*orders = append(*orders, order)
	}

	order.Lines = append(order.Lines, domain.CreatePurchaseOrderLineRequest{
		SKU:         sku,
		ProductName: getValue("product_name"),
		Quantity:    quantity,
		UnitCost:    unitCost,
	})

	return nil
}

func parseOrderedAt(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format")
}
