package signing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/factuurly/signing-api/internal/models"
)

// SignPayload carries the signer fields collected on the public page. Schema
// validation happens in the request-parsing layer before the processor runs.
type SignPayload struct {
	SignerName  string `json:"signer_name"`
	SignerEmail string `json:"signer_email"`
	Agreed      bool   `json:"agreed"`
}

// DeclinePayload carries the optional decline comment.
type DeclinePayload struct {
	Reason string `json:"reason"`
}

// Meta is submission metadata captured at the HTTP boundary. AgreementText is
// the exact text shown to the signer, resolved by the caller immediately
// before the call so what is stored equals what was displayed.
type Meta struct {
	IP            string
	UserAgent     string
	AgreementText string
}

// Processor performs the one-time transition from pending to a terminal
// signing status. The transaction is the linearization point: the status is
// re-read inside it and the flip is a compare-and-set on the pending status,
// so exactly one of any number of concurrent submissions wins.
type Processor struct {
	db *gorm.DB
}

func NewProcessor(db *gorm.DB) *Processor {
	return &Processor{db: db}
}

// Sign writes the signature record and flips the quote to signed.
// Returns the signing timestamp.
func (p *Processor) Sign(ctx context.Context, quoteID uint, payload SignPayload, meta Meta) (time.Time, error) {
	var signedAt time.Time
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, terr := reloadQuote(tx, quoteID)
		if terr != nil {
			return terr
		}
		next, verr := Transition(Status(q.SigningStatus), ActionSign)
		if verr != nil {
			return conflictErr(verr)
		}
		signedAt = time.Now().UTC()
		if err := finalizeQuote(tx, q, next, map[string]any{"signed_at": signedAt}); err != nil {
			return err
		}
		rec := models.SignatureRecord{
			PublicID:      uuid.NewString(),
			QuoteID:       q.ID,
			SignerName:    payload.SignerName,
			SignerEmail:   payload.SignerEmail,
			AgreementText: meta.AgreementText,
			IPAddress:     optional(meta.IP),
			UserAgent:     optional(meta.UserAgent),
			SignedAt:      signedAt,
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return time.Time{}, classify(err)
	}
	return signedAt, nil
}

// Decline writes the decline record and flips the quote to declined.
// Returns the decline timestamp.
func (p *Processor) Decline(ctx context.Context, quoteID uint, payload DeclinePayload, meta Meta) (time.Time, error) {
	var declinedAt time.Time
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, terr := reloadQuote(tx, quoteID)
		if terr != nil {
			return terr
		}
		next, verr := Transition(Status(q.SigningStatus), ActionDecline)
		if verr != nil {
			return conflictErr(verr)
		}
		declinedAt = time.Now().UTC()
		if err := finalizeQuote(tx, q, next, map[string]any{"declined_at": declinedAt}); err != nil {
			return err
		}
		rec := models.DeclineRecord{
			PublicID:   uuid.NewString(),
			QuoteID:    q.ID,
			Reason:     payload.Reason,
			IPAddress:  optional(meta.IP),
			UserAgent:  optional(meta.UserAgent),
			DeclinedAt: declinedAt,
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return time.Time{}, classify(err)
	}
	return declinedAt, nil
}

// reloadQuote re-reads the quote inside the transaction. The guard's earlier
// read and this write are separated in time, so the re-check is mandatory,
// not an optimization.
func reloadQuote(tx *gorm.DB, quoteID uint) (*models.Quote, error) {
	var q models.Quote
	if err := tx.First(&q, quoteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr(err)
		}
		return nil, err
	}
	return &q, nil
}

// finalizeQuote flips the signing status with a compare-and-set on the status
// the transaction read. Zero rows affected means another request finalized
// the quote in between; the transaction rolls back, leaving no record.
func finalizeQuote(tx *gorm.DB, q *models.Quote, next Status, stamps map[string]any) error {
	updates := map[string]any{"signing_status": string(next)}
	for k, v := range stamps {
		updates[k] = v
	}
	res := tx.Model(&models.Quote{}).
		Where("id = ? AND signing_status = ?", q.ID, q.SigningStatus).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conflictErr(ErrTerminalState)
	}
	return nil
}

// classify keeps typed errors as-is and wraps everything else as internal.
func classify(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internalErr(err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
