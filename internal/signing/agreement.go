package signing

import (
	"context"

	"gorm.io/gorm"

	"github.com/factuurly/signing-api/internal/models"
)

// DefaultAgreementText is shown and stored when the quote's owner has not
// configured a custom agreement template.
const DefaultAgreementText = "Door te ondertekenen verklaart u akkoord te gaan met deze offerte " +
	"en de daarin beschreven werkzaamheden, prijzen en voorwaarden. / " +
	"By signing you agree to this quote and the work, prices and terms described in it."

// ResolveAgreementText returns the owner's custom agreement text, or the
// default when none is configured. Callers must resolve immediately before the
// transactional write: resolving earlier risks showing the signer text
// different from what gets persisted.
func ResolveAgreementText(ctx context.Context, db *gorm.DB, userID uint) string {
	var tpl models.AgreementTemplate
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		First(&tpl).Error
	if err != nil || tpl.Content == "" {
		return DefaultAgreementText
	}
	return tpl.Content
}
