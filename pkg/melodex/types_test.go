package melodex_test

import (
	"testing"

	"github.com/melodex/melodex/pkg/melodex"
	"github.com/stretchr/testify/assert"
)

func TestPriceLabel(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  string
	}{
		{name: "zero price renders Free", price: "0", want: "Free"},
		{name: "integer price", price: "5", want: "5 IP"},
		{name: "decimal price", price: "2.5", want: "2.5 IP"},
		{name: "large price", price: "1000", want: "1000 IP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, melodex.PriceLabel(tt.price))
		})
	}
}

func TestPlaceholderCover(t *testing.T) {
	tests := []struct {
		name      string
		assetType melodex.AssetType
		want      string
	}{
		{"music", melodex.AssetTypeMusic, "https://via.placeholder.com/400x400?text=Music+IP"},
		{"character", melodex.AssetTypeCharacter, "https://via.placeholder.com/400x400?text=Character+IP"},
		{"story", melodex.AssetTypeStory, "https://via.placeholder.com/400x400?text=Story+IP"},
		{"image", melodex.AssetTypeImage, "https://via.placeholder.com/400x400?text=Image+IP"},
		{"concept", melodex.AssetTypeConcept, "https://via.placeholder.com/400x400?text=Concept+IP"},
		{"other", melodex.AssetTypeOther, "https://via.placeholder.com/400x400?text=IP+Asset"},
		{"unknown falls back to generic", melodex.AssetType("video"), "https://via.placeholder.com/400x400?text=IP+Asset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, melodex.PlaceholderCover(tt.assetType))
		})
	}
}

func TestAssetTypeIsValid(t *testing.T) {
	for _, valid := range []melodex.AssetType{
		melodex.AssetTypeMusic,
		melodex.AssetTypeCharacter,
		melodex.AssetTypeStory,
		melodex.AssetTypeImage,
		melodex.AssetTypeConcept,
		melodex.AssetTypeOther,
	} {
		assert.True(t, valid.IsValid(), "type %q should be valid", valid)
	}
	assert.False(t, melodex.AssetType("").IsValid())
	assert.False(t, melodex.AssetType("video").IsValid())
}

func TestOwnedBy(t *testing.T) {
	record := melodex.AssetRecord{Owner: "0xABCdef1234567890ABCdef1234567890ABCdef12"}

	assert.True(t, record.OwnedBy("0xABCdef1234567890ABCdef1234567890ABCdef12"))
	assert.True(t, record.OwnedBy("0xabcdef1234567890abcdef1234567890abcdef12"))
	assert.True(t, record.OwnedBy("0XABCDEF1234567890ABCDEF1234567890ABCDEF12"))
	assert.False(t, record.OwnedBy("0x1111111111111111111111111111111111111111"))
}

func TestNormalizeRecords(t *testing.T) {
	t.Run("legacy record inherits type and urls", func(t *testing.T) {
		records := melodex.NormalizeRecords([]melodex.AssetRecord{
			{
				ID:             "1",
				LegacyAudioURL: "https://ipfs.io/ipfs/audio-cid",
				LegacyImageURL: "https://ipfs.io/ipfs/image-cid",
			},
		})

		assert.Equal(t, melodex.AssetTypeMusic, records[0].Type)
		assert.Equal(t, "https://ipfs.io/ipfs/audio-cid", records[0].MediaURL)
		assert.Equal(t, "https://ipfs.io/ipfs/image-cid", records[0].CoverURL)
	})

	t.Run("current record is left untouched", func(t *testing.T) {
		records := melodex.NormalizeRecords([]melodex.AssetRecord{
			{
				ID:       "2",
				Type:     melodex.AssetTypeStory,
				MediaURL: "https://ipfs.io/ipfs/story-cid",
				CoverURL: "https://ipfs.io/ipfs/cover-cid",
			},
		})

		assert.Equal(t, melodex.AssetTypeStory, records[0].Type)
		assert.Equal(t, "https://ipfs.io/ipfs/story-cid", records[0].MediaURL)
		assert.Equal(t, "https://ipfs.io/ipfs/cover-cid", records[0].CoverURL)
	})
}

func TestCommercialRemixTerms(t *testing.T) {
	terms := melodex.CommercialRemixTerms(2.5, 5)

	assert.True(t, terms.Transferable)
	assert.True(t, terms.CommercialUse)
	assert.True(t, terms.DerivativesAllowed)
	assert.Equal(t, 2.5, terms.DefaultMintingFee)
	assert.Equal(t, 5, terms.CommercialRevShare)
}
