package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote / offerte models
type Quote struct {
	ID        uint   `gorm:"primaryKey"`
	Number    string `gorm:"not null;index"` // human-readable, ex: OFF-2026-0042
	Status    string `gorm:"not null"`       // commercial lifecycle: draft, sent, accepted, rejected, converted
	UserID    uint   `gorm:"not null;index"`
	User      User   `gorm:"foreignKey:UserID"`
	CompanyID uint   `gorm:"not null"`
	Company   CompanySettings `gorm:"foreignKey:CompanyID"`
	ClientID  uint            `gorm:"not null"`
	Client    Client          `gorm:"foreignKey:ClientID"`
	Items     []QuoteItem     `gorm:"foreignKey:QuoteID"`

	Currency  string          `gorm:"not null;default:'EUR'"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2)"`
	VATAmount decimal.Decimal `gorm:"type:numeric(12,2)"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2)"`

	// Commercial validity of the offer, shown on the document. Independent of
	// the signing window below.
	ExpiryDate *time.Time

	// Public e-signing workflow. SigningStatus values: pending, signed, declined.
	// The token is the sole credential for the public endpoints; it is set when
	// the quote is sent and never reused.
	SigningStatus    string     `gorm:"not null;default:'pending'"`
	SigningToken     string     `gorm:"uniqueIndex"`
	SigningExpiresAt *time.Time // only gates the signing workflow, not ExpiryDate
	SignedAt         *time.Time
	DeclinedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type QuoteItem struct {
	ID          uint            `gorm:"primaryKey"`
	QuoteID     uint            `gorm:"not null;index"`
	Description string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(12,2)"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2)"`
	VATRate     decimal.Decimal `gorm:"type:numeric(5,4)"` // ex: 0.21
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2)"`
	VATAmount   decimal.Decimal `gorm:"type:numeric(12,2)"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2)"`
	Position    int             `gorm:"not null;default:0"`
}

// RecalculateLine fills the computed columns from quantity, unit price and
// VAT rate, rounding each intermediate to cents.
func (it *QuoteItem) RecalculateLine() {
	it.Subtotal = it.Quantity.Mul(it.UnitPrice).Round(2)
	it.VATAmount = it.Subtotal.Mul(it.VATRate).Round(2)
	it.Total = it.Subtotal.Add(it.VATAmount)
}

// RecalculateTotals recomputes every line and the quote totals so that
// Total = Subtotal + VATAmount holds exactly.
func (q *Quote) RecalculateTotals() {
	sub := decimal.Zero
	vat := decimal.Zero
	for i := range q.Items {
		q.Items[i].RecalculateLine()
		sub = sub.Add(q.Items[i].Subtotal)
		vat = vat.Add(q.Items[i].VATAmount)
	}
	q.Subtotal = sub
	q.VATAmount = vat
	q.Total = sub.Add(vat)
}
