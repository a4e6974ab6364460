package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/factuurly/signing-api/internal/httpx"
	"github.com/factuurly/signing-api/internal/i18n"
	"github.com/factuurly/signing-api/internal/models"
	"github.com/factuurly/signing-api/internal/signing"
	"github.com/factuurly/signing-api/internal/validation"
)

// SigningHandler exposes the three public, token-addressed signing endpoints.
// Everything behind these routes is unauthenticated; the guard is the only
// gate.
type SigningHandler struct {
	DB        *gorm.DB
	Guard     *signing.Guard
	Processor *signing.Processor
	Log       *slog.Logger
}

func NewSigningHandler(db *gorm.DB, guard *signing.Guard, processor *signing.Processor, log *slog.Logger) *SigningHandler {
	return &SigningHandler{DB: db, Guard: guard, Processor: processor, Log: log}
}

func (h *SigningHandler) Register(r chi.Router) {
	r.Get("/signing/{token}", h.Status)
	r.Post("/signing/{token}/sign", h.Sign)
	r.Post("/signing/{token}/reject", h.Reject)
}

// Status: GET /signing/{token} – public-safe projection of the quote.
// Auditing of "viewed" events is deliberately not done here.
func (h *SigningHandler) Status(w http.ResponseWriter, r *http.Request) {
	httpx.NoStore(w)
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	token := chi.URLParam(r, "token")

	access, rej, err := h.Guard.ValidateAccess(r.Context(), token, clientIP(r))
	if err != nil {
		h.Log.Error("signing status guard failed", "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal_error"), nil)
		return
	}
	if rej != nil {
		// a finalized quote's status page must still render
		if rej.Reason == signing.ReasonAlreadyFinalized && rej.Quote != nil {
			httpx.RateLimitHeaders(w, rej.RateLimit.Remaining, rej.RateLimit.ResetAt)
			httpx.JSON(w, http.StatusOK, newQuoteView(rej.Quote))
			return
		}
		h.writeRejection(w, lang, rej)
		return
	}
	httpx.RateLimitHeaders(w, access.RateLimit.Remaining, access.RateLimit.ResetAt)
	httpx.JSON(w, http.StatusOK, newQuoteView(access.Quote))
}

// Sign: POST /signing/{token}/sign
func (h *SigningHandler) Sign(w http.ResponseWriter, r *http.Request) {
	httpx.NoStore(w)
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	token := chi.URLParam(r, "token")

	access, rej, err := h.Guard.ValidateAccess(r.Context(), token, clientIP(r))
	if err != nil {
		h.Log.Error("sign guard failed", "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal_error"), nil)
		return
	}
	if rej != nil {
		h.writeRejection(w, lang, rej)
		return
	}

	var payload signing.SignPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, i18n.T(lang, "invalid_json"), nil)
		return
	}
	v := validation.Violations{}
	validation.Required("signer_name", payload.SignerName, v)
	validation.MaxLen("signer_name", payload.SignerName, 200, v)
	validation.Email("signer_email", payload.SignerEmail, v)
	validation.Checked("agreed", payload.Agreed, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "validation_failed"), v)
		return
	}

	// resolve the agreement text right before the transactional write so the
	// stored snapshot equals what the signer saw
	text := signing.ResolveAgreementText(r.Context(), h.DB, access.Quote.UserID)
	meta := signing.Meta{IP: clientIP(r), UserAgent: r.UserAgent(), AgreementText: text}
	signedAt, err := h.Processor.Sign(r.Context(), access.Quote.ID, payload, meta)
	if err != nil {
		h.writeProcessorError(w, lang, err)
		return
	}
	httpx.RateLimitHeaders(w, access.RateLimit.Remaining, access.RateLimit.ResetAt)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"signedAt": signedAt.Format(time.RFC3339),
	})
}

// Reject: POST /signing/{token}/reject
func (h *SigningHandler) Reject(w http.ResponseWriter, r *http.Request) {
	httpx.NoStore(w)
	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	token := chi.URLParam(r, "token")

	access, rej, err := h.Guard.ValidateAccess(r.Context(), token, clientIP(r))
	if err != nil {
		h.Log.Error("reject guard failed", "err", err)
		httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal_error"), nil)
		return
	}
	if rej != nil {
		h.writeRejection(w, lang, rej)
		return
	}

	var payload signing.DeclinePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, i18n.T(lang, "invalid_json"), nil)
		return
	}
	v := validation.Violations{}
	validation.MaxLen("reason", payload.Reason, 1000, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, i18n.T(lang, "validation_failed"), v)
		return
	}

	meta := signing.Meta{IP: clientIP(r), UserAgent: r.UserAgent()}
	declinedAt, err := h.Processor.Decline(r.Context(), access.Quote.ID, payload, meta)
	if err != nil {
		h.writeProcessorError(w, lang, err)
		return
	}
	httpx.RateLimitHeaders(w, access.RateLimit.Remaining, access.RateLimit.ResetAt)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"declinedAt": declinedAt.Format(time.RFC3339),
	})
}

func (h *SigningHandler) writeRejection(w http.ResponseWriter, lang string, rej *signing.Rejection) {
	httpx.RateLimitHeaders(w, rej.RateLimit.Remaining, rej.RateLimit.ResetAt)
	if rej.Reason == signing.ReasonRateLimited {
		retry := rej.RetryAfter.Round(time.Second)
		if retry < time.Second {
			retry = time.Second
		}
		httpx.RetryAfter(w, retry)
		httpx.JSON(w, rej.HTTPStatus, map[string]any{
			"error":             i18n.T(lang, rej.MessageKey),
			"retryAfterSeconds": int(retry.Seconds()),
			"retryAfter":        retry.String(),
		})
		return
	}
	httpx.JSONError(w, rej.HTTPStatus, i18n.T(lang, rej.MessageKey), nil)
}

func (h *SigningHandler) writeProcessorError(w http.ResponseWriter, lang string, err error) {
	var e *signing.Error
	if errors.As(err, &e) {
		switch e.Code {
		case signing.CodeConflict:
			httpx.JSONError(w, http.StatusConflict, i18n.T(lang, "conflict"), nil)
			return
		case signing.CodeNotFound:
			httpx.JSONError(w, http.StatusNotFound, i18n.T(lang, "quote_not_found"), nil)
			return
		}
	}
	h.Log.Error("signing submission failed", "err", err)
	httpx.JSONError(w, http.StatusInternalServerError, i18n.T(lang, "internal_error"), nil)
}

// clientIP extracts a best-effort client address for rate-limit metadata and
// the audit fields on signature/decline records. Forwarded-for values are
// spoofable and are never used for authorization decisions.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Public-safe projection of a quote for the signing page. Never includes
// internal notes, the stored signature/decline payloads or the agreement text.
type quoteView struct {
	QuoteNumber      string     `json:"quoteNumber"`
	SigningStatus    string     `json:"signingStatus"`
	IsSigned         bool       `json:"isSigned"`
	IsDeclined       bool       `json:"isDeclined"`
	Currency         string     `json:"currency"`
	Subtotal         string     `json:"subtotal"`
	VATAmount        string     `json:"vatAmount"`
	Total            string     `json:"total"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
	SigningExpiresAt *time.Time `json:"signingExpiresAt,omitempty"`
	SignedAt         *time.Time `json:"signedAt,omitempty"`
	DeclinedAt       *time.Time `json:"declinedAt,omitempty"`
	CustomerName     string     `json:"customerName"`
	Company          struct {
		Name    string `json:"name"`
		LogoURL string `json:"logoUrl,omitempty"`
	} `json:"company"`
	Items []quoteItemView `json:"items"`
}

type quoteItemView struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	VATRate     string `json:"vatRate"`
	Subtotal    string `json:"subtotal"`
	VATAmount   string `json:"vatAmount"`
	Total       string `json:"total"`
	Position    int    `json:"position"`
}

func newQuoteView(q *models.Quote) quoteView {
	view := quoteView{
		QuoteNumber:      q.Number,
		SigningStatus:    q.SigningStatus,
		IsSigned:         q.SigningStatus == string(signing.StatusSigned),
		IsDeclined:       q.SigningStatus == string(signing.StatusDeclined),
		Currency:         q.Currency,
		Subtotal:         q.Subtotal.StringFixed(2),
		VATAmount:        q.VATAmount.StringFixed(2),
		Total:            q.Total.StringFixed(2),
		CreatedAt:        q.CreatedAt,
		ExpiryDate:       q.ExpiryDate,
		SigningExpiresAt: q.SigningExpiresAt,
		SignedAt:         q.SignedAt,
		DeclinedAt:       q.DeclinedAt,
		CustomerName:     q.Client.Name,
	}
	view.Company.Name = q.Company.PublicName()
	view.Company.LogoURL = q.Company.LogoURL
	view.Items = make([]quoteItemView, 0, len(q.Items))
	for _, it := range q.Items {
		view.Items = append(view.Items, quoteItemView{
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.StringFixed(2),
			VATRate:     it.VATRate.String(),
			Subtotal:    it.Subtotal.StringFixed(2),
			VATAmount:   it.VATAmount.StringFixed(2),
			Total:       it.Total.StringFixed(2),
			Position:    it.Position,
		})
	}
	return view
}
