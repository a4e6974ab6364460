package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecalculateTotals(t *testing.T) {
	q := Quote{
		Currency: "EUR",
		Items: []QuoteItem{
			{Description: "Consultancy", Quantity: dec("10.5"), UnitPrice: dec("95.00"), VATRate: dec("0.21"), Position: 0},
			{Description: "Hosting", Quantity: dec("1"), UnitPrice: dec("29.99"), VATRate: dec("0.21"), Position: 1},
		},
	}
	q.RecalculateTotals()

	if !q.Items[0].Subtotal.Equal(dec("997.50")) {
		t.Fatalf("line subtotal: got %s", q.Items[0].Subtotal)
	}
	if !q.Items[0].VATAmount.Equal(dec("209.48")) {
		t.Fatalf("line vat: got %s", q.Items[0].VATAmount)
	}
	// total = subtotal + vat, exactly
	if !q.Total.Equal(q.Subtotal.Add(q.VATAmount)) {
		t.Fatalf("total %s != subtotal %s + vat %s", q.Total, q.Subtotal, q.VATAmount)
	}
	// lines sum to quote totals
	sum := decimal.Zero
	for _, it := range q.Items {
		sum = sum.Add(it.Total)
	}
	if !sum.Equal(q.Total) {
		t.Fatalf("line totals %s != quote total %s", sum, q.Total)
	}
}

func TestPublicNameFallback(t *testing.T) {
	c := CompanySettings{Name: "Jansen Webdiensten B.V."}
	if c.PublicName() != "Jansen Webdiensten B.V." {
		t.Fatalf("expected registered name fallback")
	}
	c.DisplayName = "Jansen Webdiensten"
	if c.PublicName() != "Jansen Webdiensten" {
		t.Fatalf("expected display name")
	}
}
