package signing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/factuurly/signing-api/internal/models"
	"github.com/factuurly/signing-api/internal/ratelimit"
)

// Per-token budget for the public signing endpoints. The token is the
// attacker-relevant resource (IPs are shared and spoofable), so the counter is
// keyed by the raw token string. Garbage tokens consume budget too: the limit
// check runs before the lookup, which keeps probing cheap to refuse.
const (
	TokenRateLimit  = 10
	TokenRateWindow = time.Hour
)

// RejectReason tags why the guard refused a request.
type RejectReason string

const (
	ReasonRateLimited      RejectReason = "RATE_LIMITED"
	ReasonNotFound         RejectReason = "NOT_FOUND"
	ReasonAlreadyFinalized RejectReason = "ALREADY_FINALIZED"
	ReasonExpired          RejectReason = "EXPIRED"
)

// Rejection is the guard's typed refusal. HTTPStatus and MessageKey are
// ready for the response layer; RetryAfter is set only for RATE_LIMITED.
type Rejection struct {
	Reason     RejectReason
	HTTPStatus int
	MessageKey string
	RetryAfter time.Duration
	RateLimit  ratelimit.Result
	// Quote is set only for ALREADY_FINALIZED: the status page of a finalized
	// quote must still render, so the GET route treats that rejection as
	// informational rather than blocking.
	Quote *models.Quote
}

// Access is the guard's success result: the loaded aggregate plus the
// remaining-budget feedback to attach to the response.
type Access struct {
	Quote     *models.Quote
	RateLimit ratelimit.Result
}

// Guard gates every public signing request behind rate limiting and
// token/state validation. It never mutates quote state.
type Guard struct {
	db      *gorm.DB
	limiter ratelimit.Store
}

func NewGuard(db *gorm.DB, limiter ratelimit.Store) *Guard {
	return &Guard{db: db, limiter: limiter}
}

// ValidateAccess validates an opaque token from the URL path. clientIP is
// best-effort metadata for logging only; it plays no part in any decision.
// Expected refusals come back as a Rejection; only storage or limiter
// failures are returned as errors.
func (g *Guard) ValidateAccess(ctx context.Context, token, clientIP string) (*Access, *Rejection, error) {
	_ = clientIP

	res, err := g.limiter.Check(ctx, "signing:"+token, TokenRateLimit, TokenRateWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("guard rate check: %w", err)
	}
	if !res.Allowed {
		return nil, &Rejection{
			Reason:     ReasonRateLimited,
			HTTPStatus: http.StatusTooManyRequests,
			MessageKey: "too_many_requests",
			RetryAfter: time.Until(res.ResetAt),
			RateLimit:  res,
		}, nil
	}

	// Empty tokens would match unsent quotes whose token column is still
	// blank; refuse them before touching storage. Malformed and unknown
	// tokens are deliberately indistinguishable in the response.
	if token == "" {
		return nil, notFoundRejection(res), nil
	}

	var q models.Quote
	err = g.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position asc") }).
		Preload("Client").
		Preload("Company").
		Preload("User").
		Where("signing_token = ?", token).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundRejection(res), nil
		}
		return nil, nil, fmt.Errorf("guard quote lookup: %w", err)
	}

	// State checks in order; first failing check wins.
	if Status(q.SigningStatus).Terminal() {
		return nil, &Rejection{
			Reason:     ReasonAlreadyFinalized,
			HTTPStatus: http.StatusConflict,
			MessageKey: "quote_already_finalized",
			RateLimit:  res,
			Quote:      &q,
		}, nil
	}
	if q.SigningExpiresAt != nil && q.SigningExpiresAt.Before(time.Now()) {
		return nil, &Rejection{
			Reason:     ReasonExpired,
			HTTPStatus: http.StatusGone,
			MessageKey: "signing_link_expired",
			RateLimit:  res,
		}, nil
	}

	return &Access{Quote: &q, RateLimit: res}, nil, nil
}

func notFoundRejection(res ratelimit.Result) *Rejection {
	return &Rejection{
		Reason:     ReasonNotFound,
		HTTPStatus: http.StatusNotFound,
		MessageKey: "quote_not_found",
		RateLimit:  res,
	}
}
