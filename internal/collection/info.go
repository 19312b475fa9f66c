package collection

import (
	"net/url"

	"github.com/louisbranch/menagerie/internal/chain"
	apperrors "github.com/louisbranch/menagerie/internal/errors"
)

// MaxDescriptionLength bounds the collection description.
const MaxDescriptionLength = 512

// MaxRoyaltyShareBps is the full royalty share (100%) in basis points.
const MaxRoyaltyShareBps = 10_000

// RoyaltyInfo configures secondary-sale royalties. Shares are basis points
// so the arithmetic stays integral on every node.
type RoyaltyInfo struct {
	PaymentAddress string `json:"payment_address"`
	ShareBps       uint32 `json:"share_bps"`
}

// CollectionInfo is the collection-level metadata kept on chain.
type CollectionInfo struct {
	Creator         string       `json:"creator"`
	Description     string       `json:"description"`
	Image           string       `json:"image"`
	ExternalLink    string       `json:"external_link,omitempty"`
	ExplicitContent bool         `json:"explicit_content"`
	Royalty         *RoyaltyInfo `json:"royalty,omitempty"`
}

// UpdateCollectionInfoMsg carries a partial collection metadata update.
// Nil fields keep their stored value. ClearRoyalty removes the royalty
// config entirely; Royalty proposes a replacement whose share must not
// exceed the stored one.
type UpdateCollectionInfoMsg struct {
	Description     *string      `json:"description,omitempty"`
	Image           *string      `json:"image,omitempty"`
	ExternalLink    *string      `json:"external_link,omitempty"`
	ExplicitContent *bool        `json:"explicit_content,omitempty"`
	Royalty         *RoyaltyInfo `json:"royalty,omitempty"`
	ClearRoyalty    bool         `json:"clear_royalty,omitempty"`
}

func (info CollectionInfo) validate() error {
	if err := chain.ValidateAddress(info.Creator); err != nil {
		return err
	}
	if len(info.Description) > MaxDescriptionLength {
		return apperrors.New(apperrors.CodeDescriptionTooLong, "description of collection is too long")
	}
	if err := validateURL(info.Image); err != nil {
		return err
	}
	if info.ExternalLink != "" {
		if err := validateURL(info.ExternalLink); err != nil {
			return err
		}
	}
	if info.Royalty != nil {
		if err := info.Royalty.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r RoyaltyInfo) validate() error {
	if err := chain.ValidateAddress(r.PaymentAddress); err != nil {
		return err
	}
	if r.ShareBps > MaxRoyaltyShareBps {
		return apperrors.New(apperrors.CodeInvalidRoyalties, "royalty share exceeds 100%")
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return apperrors.WithMetadata(apperrors.CodeInvalidURL, "url must be absolute", map[string]string{"url": raw})
	}
	return nil
}
