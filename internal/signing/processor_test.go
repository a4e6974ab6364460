package signing

import (
	"context"
	"errors"
	"testing"

	"github.com/factuurly/signing-api/internal/models"
)

func TestSignHappyPath(t *testing.T) {
	db := setupSigningTestDB(t)
	q := seedPendingQuote(t, db, "tok-sign")
	p := NewProcessor(db)

	payload := SignPayload{SignerName: "P. de Vries", SignerEmail: "inkoop@korenbloem.nl", Agreed: true}
	meta := Meta{IP: "203.0.113.9", UserAgent: "curl/8.0", AgreementText: DefaultAgreementText}
	signedAt, err := p.Sign(context.Background(), q.ID, payload, meta)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if signedAt.IsZero() {
		t.Fatalf("expected signedAt timestamp")
	}

	var reloaded models.Quote
	if err := db.First(&reloaded, q.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.SigningStatus != string(StatusSigned) {
		t.Fatalf("expected signed, got %s", reloaded.SigningStatus)
	}
	if reloaded.SignedAt == nil {
		t.Fatalf("expected signed_at stamped on quote")
	}

	var rec models.SignatureRecord
	if err := db.Where("quote_id = ?", q.ID).First(&rec).Error; err != nil {
		t.Fatalf("signature record: %v", err)
	}
	if rec.SignerName != "P. de Vries" || rec.AgreementText != DefaultAgreementText {
		t.Fatalf("record fields wrong: %+v", rec)
	}
	if rec.IPAddress == nil || *rec.IPAddress != "203.0.113.9" {
		t.Fatalf("expected ip captured")
	}
	if rec.PublicID == "" {
		t.Fatalf("expected public id")
	}
}

func TestDeclineHappyPath(t *testing.T) {
	db := setupSigningTestDB(t)
	q := seedPendingQuote(t, db, "tok-decline")
	p := NewProcessor(db)

	declinedAt, err := p.Decline(context.Background(), q.ID, DeclinePayload{Reason: "te duur"}, Meta{UserAgent: "Mozilla/5.0"})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declinedAt.IsZero() {
		t.Fatalf("expected declinedAt timestamp")
	}

	var reloaded models.Quote
	if err := db.First(&reloaded, q.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.SigningStatus != string(StatusDeclined) || reloaded.DeclinedAt == nil {
		t.Fatalf("expected declined with stamp, got %+v", reloaded)
	}

	var rec models.DeclineRecord
	if err := db.Where("quote_id = ?", q.ID).First(&rec).Error; err != nil {
		t.Fatalf("decline record: %v", err)
	}
	if rec.Reason != "te duur" {
		t.Fatalf("expected reason captured, got %q", rec.Reason)
	}
	if rec.IPAddress != nil {
		t.Fatalf("missing ip must stay null, got %v", *rec.IPAddress)
	}
}

func TestTerminalStateIsIdempotencyBoundary(t *testing.T) {
	db := setupSigningTestDB(t)
	q := seedPendingQuote(t, db, "tok-terminal")
	p := NewProcessor(db)

	if _, err := p.Sign(context.Background(), q.ID, SignPayload{SignerName: "A"}, Meta{AgreementText: "x"}); err != nil {
		t.Fatalf("first sign: %v", err)
	}

	// both follow-up actions fail with CONFLICT and write nothing
	_, err := p.Sign(context.Background(), q.ID, SignPayload{SignerName: "B"}, Meta{AgreementText: "x"})
	assertCode(t, err, CodeConflict)
	_, err = p.Decline(context.Background(), q.ID, DeclinePayload{}, Meta{})
	assertCode(t, err, CodeConflict)

	var sigCount, decCount int64
	db.Model(&models.SignatureRecord{}).Where("quote_id = ?", q.ID).Count(&sigCount)
	db.Model(&models.DeclineRecord{}).Where("quote_id = ?", q.ID).Count(&decCount)
	if sigCount != 1 || decCount != 0 {
		t.Fatalf("expected exactly one signature and no declines, got %d/%d", sigCount, decCount)
	}
}

func TestConcurrentSignDeclineRace(t *testing.T) {
	// emulate two requests that both passed the guard while the quote was
	// still pending: the second transaction re-checks and loses
	db := setupSigningTestDB(t)
	q := seedPendingQuote(t, db, "tok-race")
	p := NewProcessor(db)

	var stale models.Quote
	if err := db.First(&stale, q.ID).Error; err != nil {
		t.Fatalf("stale read: %v", err)
	}
	if stale.SigningStatus != string(StatusPending) {
		t.Fatalf("precondition: pending")
	}

	if _, err := p.Decline(context.Background(), q.ID, DeclinePayload{Reason: "toch niet"}, Meta{}); err != nil {
		t.Fatalf("decline: %v", err)
	}
	// the sign request still holds the stale pending view
	_, err := p.Sign(context.Background(), stale.ID, SignPayload{SignerName: "Racer"}, Meta{AgreementText: "x"})
	assertCode(t, err, CodeConflict)

	var sigCount, decCount int64
	db.Model(&models.SignatureRecord{}).Where("quote_id = ?", q.ID).Count(&sigCount)
	db.Model(&models.DeclineRecord{}).Where("quote_id = ?", q.ID).Count(&decCount)
	if sigCount != 0 || decCount != 1 {
		t.Fatalf("expected exactly one terminal record, got sig=%d dec=%d", sigCount, decCount)
	}
	var reloaded models.Quote
	if err := db.First(&reloaded, q.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.SigningStatus != string(StatusDeclined) {
		t.Fatalf("first finalizing request must win, got %s", reloaded.SigningStatus)
	}
}

func TestSignQuoteVanished(t *testing.T) {
	db := setupSigningTestDB(t)
	p := NewProcessor(db)

	_, err := p.Sign(context.Background(), 99999, SignPayload{SignerName: "X"}, Meta{AgreementText: "x"})
	assertCode(t, err, CodeNotFound)
}

func TestAgreementTextSnapshot(t *testing.T) {
	db := setupSigningTestDB(t)
	q := seedPendingQuote(t, db, "tok-snapshot")
	p := NewProcessor(db)

	tpl := models.AgreementTemplate{UserID: q.UserID, Content: "Versie 1 van de voorwaarden."}
	if err := db.Create(&tpl).Error; err != nil {
		t.Fatalf("template: %v", err)
	}

	text := ResolveAgreementText(context.Background(), db, q.UserID)
	if text != "Versie 1 van de voorwaarden." {
		t.Fatalf("resolve: got %q", text)
	}
	if _, err := p.Sign(context.Background(), q.ID, SignPayload{SignerName: "S"}, Meta{AgreementText: text}); err != nil {
		t.Fatalf("sign: %v", err)
	}

	// mutate the template afterwards; the stored record must not change
	if err := db.Model(&tpl).Update("content", "Versie 2, heel anders.").Error; err != nil {
		t.Fatalf("update template: %v", err)
	}
	var rec models.SignatureRecord
	if err := db.Where("quote_id = ?", q.ID).First(&rec).Error; err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.AgreementText != "Versie 1 van de voorwaarden." {
		t.Fatalf("snapshot violated: %q", rec.AgreementText)
	}
}

func TestResolveAgreementTextDefault(t *testing.T) {
	db := setupSigningTestDB(t)
	q := seedPendingQuote(t, db, "tok-default-text")

	if got := ResolveAgreementText(context.Background(), db, q.UserID); got != DefaultAgreementText {
		t.Fatalf("expected default text, got %q", got)
	}
}

func assertCode(t *testing.T, err error, want Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *signing.Error, got %T: %v", err, err)
	}
	if e.Code != want {
		t.Fatalf("expected code %s, got %s", want, e.Code)
	}
}
