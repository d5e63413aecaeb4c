package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/urfave/cli/v2"
)

type demoPO struct {
	reference    string
	supplier     string
	status       int
	deliveryCost float64
	orderedAt    time.Time
	lines        []demoPOLine
}

type demoPOLine struct {
	sku         string
	productName string
	quantity    int
	unitCost    float64
}

type demoOrder struct {
	reference    string
	customer     string
	totalAmount  float64
	taxAmount    float64
	shippingCost float64
	placedAt     time.Time
	lines        []demoOrderLine
}

type demoOrderLine struct {
	sku       string
	quantity  int
	unitPrice float64
}

// runDemo inserts a small consistent dataset: two delivered purchase
// orders whose lines are mirrored as cost layers, one in-transit order
// feeding the incoming counter, and two unfulfilled sales orders.
func runDemo(c *cli.Context) error {
	db := dbFrom(c)

	now := time.Now().UTC()
	pos := []demoPO{
		{
			reference: "PO-1001", supplier: "Acme Supply", status: 3,
			deliveryCost: 250, orderedAt: now.AddDate(0, 0, -30),
			lines: []demoPOLine{
				{sku: "WIDGET-A", productName: "Widget A", quantity: 100, unitCost: 10},
				{sku: "WIDGET-B", productName: "Widget B", quantity: 75, unitCost: 24},
			},
		},
		{
			reference: "PO-1002", supplier: "Acme Supply", status: 3,
			deliveryCost: 120, orderedAt: now.AddDate(0, 0, -14),
			lines: []demoPOLine{
				{sku: "WIDGET-A", productName: "Widget A", quantity: 50, unitCost: 12},
			},
		},
		{
			reference: "PO-1003", supplier: "Bolt & Co", status: 2,
			deliveryCost: 80, orderedAt: now.AddDate(0, 0, -3),
			lines: []demoPOLine{
				{sku: "WIDGET-B", productName: "Widget B", quantity: 40, unitCost: 25},
			},
		},
	}

	orders := []demoOrder{
		{
			reference: "ORD-2001", customer: "Retail North",
			totalAmount: 899.70, taxAmount: 72, shippingCost: 19.99,
			placedAt: now.AddDate(0, 0, -7),
			lines: []demoOrderLine{
				{sku: "WIDGET-A", quantity: 30, unitPrice: 29.99},
			},
		},
		{
			reference: "ORD-2002", customer: "Retail South",
			totalAmount: 1249.75, taxAmount: 100, shippingCost: 24.99,
			placedAt: now.AddDate(0, 0, -2),
			lines: []demoOrderLine{
				{sku: "WIDGET-A", quantity: 10, unitPrice: 29.99},
				{sku: "WIDGET-B", quantity: 19, unitPrice: 49.99},
			},
		},
	}

	for _, po := range pos {
		if err := insertDemoPO(db, po); err != nil {
			return fmt.Errorf("failed to seed %s: %w", po.reference, err)
		}
	}
	for _, order := range orders {
		if err := insertDemoOrder(db, order); err != nil {
			return fmt.Errorf("failed to seed %s: %w", order.reference, err)
		}
	}

	log.Printf("demo data seeded: %d purchase orders, %d orders", len(pos), len(orders))
	return nil
}

func insertDemoPO(db *sql.DB, po demoPO) error {
	var id int64
	err := db.QueryRow(
		`INSERT INTO purchase_orders (reference, supplier, status, delivery_cost, ordered_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (reference) DO NOTHING
		 RETURNING id`,
		po.reference, po.supplier, po.status, po.deliveryCost, po.orderedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		log.Printf("%s already seeded, skipping", po.reference)
		return nil
	}
	if err != nil {
		return err
	}

	totalQty := 0
	for _, line := range po.lines {
		totalQty += line.quantity
	}
	perUnit := 0.0
	if totalQty > 0 {
		perUnit = po.deliveryCost / float64(totalQty)
	}

	for _, line := range po.lines {
		if _, err := db.Exec(
			`INSERT INTO purchase_order_lines (purchase_order_id, sku, product_name, quantity, unit_cost)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, line.sku, line.productName, line.quantity, line.unitCost,
		); err != nil {
			return err
		}

		// Delivered POs also get their cost layers, priced with the
		// delivery share folded in.
		if po.status == 3 {
			if _, err := db.Exec(
				`INSERT INTO cost_layers (sku, origin_id, quantity, unit_cost, acquired_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				line.sku, po.reference, line.quantity, line.unitCost+perUnit, po.orderedAt,
			); err != nil {
				return err
			}
		}
	}

	return nil
}

func insertDemoOrder(db *sql.DB, order demoOrder) error {
	var id int64
	err := db.QueryRow(
		`INSERT INTO orders (reference, customer, total_amount, tax_amount, shipping_cost, placed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (reference) DO NOTHING
		 RETURNING id`,
		order.reference, order.customer, order.totalAmount, order.taxAmount, order.shippingCost, order.placedAt,
	).Scan(&id)
	if err == sql.ErrNoRows {
		log.Printf("%s already seeded, skipping", order.reference)
		return nil
	}
	if err != nil {
		return err
	}

	for _, line := range order.lines {
		if _, err := db.Exec(
			`INSERT INTO order_lines (order_id, sku, quantity, unit_price, total_price)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, line.sku, line.quantity, line.unitPrice, line.unitPrice*float64(line.quantity),
		); err != nil {
			return err
		}
	}

	return nil
}
