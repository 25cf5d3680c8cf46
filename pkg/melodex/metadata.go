package melodex

// IPMetadata is the IP-asset metadata document pinned for each
// registration. The hash fields carry 0x-prefixed sha-256 digests of
// the referenced content.
type IPMetadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"createdAt"` // unix seconds, stringified
	Creators    []Creator `json:"creators"`
	Image       string    `json:"image"`
	ImageHash   string    `json:"imageHash,omitempty"`
	MediaURL    string    `json:"mediaUrl"`
	MediaHash   string    `json:"mediaHash"`
	MediaType   string    `json:"mediaType"`
}

// Creator identifies one contributor to an IP asset.
type Creator struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	ContributionPercent int    `json:"contributionPercent"`
}

// NFTMetadata is the ERC-721 style document pinned for the minted
// token. AnimationURL is set only for music assets.
type NFTMetadata struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Image        string         `json:"image"`
	AnimationURL string         `json:"animation_url,omitempty"`
	ExternalURL  string         `json:"external_url"`
	Attributes   []NFTAttribute `json:"attributes"`
}

// NFTAttribute is one trait entry in the NFT metadata attribute list.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}
