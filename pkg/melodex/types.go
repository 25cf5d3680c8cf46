package melodex

import (
	"strings"
	"time"
)

// AssetType tags the kind of creative work a record represents.
type AssetType string

const (
	AssetTypeMusic     AssetType = "music"
	AssetTypeCharacter AssetType = "character"
	AssetTypeStory     AssetType = "story"
	AssetTypeImage     AssetType = "image"
	AssetTypeConcept   AssetType = "concept"
	AssetTypeOther     AssetType = "other"
)

// IsValid returns true if the asset type is one of the known tags.
func (t AssetType) IsValid() bool {
	switch t {
	case AssetTypeMusic, AssetTypeCharacter, AssetTypeStory, AssetTypeImage, AssetTypeConcept, AssetTypeOther:
		return true
	}
	return false
}

// placeholderCovers maps asset types to the stock cover used when an
// upload arrives without a cover image.
var placeholderCovers = map[AssetType]string{
	AssetTypeMusic:     "https://via.placeholder.com/400x400?text=Music+IP",
	AssetTypeCharacter: "https://via.placeholder.com/400x400?text=Character+IP",
	AssetTypeStory:     "https://via.placeholder.com/400x400?text=Story+IP",
	AssetTypeImage:     "https://via.placeholder.com/400x400?text=Image+IP",
	AssetTypeConcept:   "https://via.placeholder.com/400x400?text=Concept+IP",
	AssetTypeOther:     "https://via.placeholder.com/400x400?text=IP+Asset",
}

// PlaceholderCover returns the stock cover URL for an asset type,
// falling back to the generic placeholder for unknown types.
func PlaceholderCover(t AssetType) string {
	if url, ok := placeholderCovers[t]; ok {
		return url
	}
	return placeholderCovers[AssetTypeOther]
}

// PriceLabel formats a license price for display: "Free" for a zero
// price, otherwise the amount in IP tokens.
func PriceLabel(price string) string {
	if price == "0" {
		return "Free"
	}
	return price + " IP"
}

// AdminComment is a moderation note attached to an asset. Comments are
// append-only; the only permitted mutation is flipping Read to true.
type AdminComment struct {
	ID        string    `json:"id"`
	Admin     string    `json:"admin"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// AssetRecord is the persisted unit of the platform: one registered
// creative work together with its registration identifiers.
type AssetRecord struct {
	ID            string         `json:"id"`
	Type          AssetType      `json:"type"`
	Title         string         `json:"title"`
	Artist        string         `json:"artist"`
	Description   string         `json:"description"`
	Price         string         `json:"price"`
	MediaURL      string         `json:"mediaUrl"`
	CoverURL      string         `json:"coverUrl"`
	Owner         string         `json:"owner"`
	MetadataURL   string         `json:"metadataUrl"`
	CreatedAt     time.Time      `json:"createdAt"`
	IPID          string         `json:"ipId,omitempty"`
	TxHash        string         `json:"txHash,omitempty"`
	Hidden        bool           `json:"hidden,omitempty"`
	AdminComments []AdminComment `json:"adminComments,omitempty"`

	// Type-specific payload: character traits, story text and the like.
	Attributes  map[string]any `json:"attributes,omitempty"`
	TextContent string         `json:"textContent,omitempty"`

	// Field names written by the music-only release. Kept so old
	// documents round-trip; NormalizeRecords folds them into
	// MediaURL/CoverURL on read.
	LegacyAudioURL string `json:"audioUrl,omitempty"`
	LegacyImageURL string `json:"imageUrl,omitempty"`
}

// OwnedBy reports whether addr owns the record. Wallet addresses are
// stored verbatim but always compared case-insensitively.
func (a *AssetRecord) OwnedBy(addr string) bool {
	return strings.EqualFold(a.Owner, addr)
}

// Notification is one entry in an owner's feed, derived from an admin
// comment left on one of their assets.
type Notification struct {
	ID         string    `json:"id"`
	AssetID    string    `json:"assetId"`
	AssetTitle string    `json:"assetTitle"`
	AssetType  AssetType `json:"assetType"`
	AssetImage string    `json:"assetImage"`
	Admin      string    `json:"admin"`
	Comment    string    `json:"comment"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}
