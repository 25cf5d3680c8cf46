package melodex

import "context"

// AssetStore persists the full asset collection as a single document.
// There is no per-record addressing: every mutation is implemented by
// callers as read-full, mutate in memory, write-full. Concurrent
// writers race with last-write-wins semantics; the store provides no
// locking or versioning.
type AssetStore interface {
	// Load returns the full collection. Implementations degrade to an
	// empty collection on read or parse failure rather than returning
	// an error, so callers cannot distinguish "no data" from "read
	// failed".
	Load(ctx context.Context) ([]AssetRecord, error)

	// Save replaces the full collection.
	Save(ctx context.Context, records []AssetRecord) error
}

// Pinner pins bytes or JSON documents to content-addressed storage and
// returns the content identifier. Calls are single-shot; no retries.
type Pinner interface {
	// PinFile pins raw bytes under the given filename.
	PinFile(ctx context.Context, filename string, data []byte) (string, error)

	// PinJSON pins the JSON serialization of v.
	PinJSON(ctx context.Context, v any) (string, error)

	// GatewayURL derives the public retrieval URL for a content id.
	GatewayURL(cid string) string
}

// Registrar mints an NFT and registers it as an IP asset with the
// protocol. The call is synchronous and returns only after on-chain
// confirmation.
type Registrar interface {
	MintAndRegister(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
}

// RegisterRequest carries the license terms and the metadata URI/digest
// pairs for a mint-and-register call.
type RegisterRequest struct {
	LicenseTerms    LicenseTerms
	IPMetadataURI   string
	IPMetadataHash  string
	NFTMetadataURI  string
	NFTMetadataHash string
}

// RegisterResult holds the identifiers returned by a confirmed
// registration.
type RegisterResult struct {
	IPID   string `json:"ipId"`
	TxHash string `json:"txHash"`
}

// LicenseTerms is the PIL terms structure attached to every minted
// asset.
type LicenseTerms struct {
	Transferable           bool    `json:"transferable"`
	DefaultMintingFee      float64 `json:"defaultMintingFee"`
	CommercialUse          bool    `json:"commercialUse"`
	CommercialAttribution  bool    `json:"commercialAttribution"`
	CommercialRevShare     int     `json:"commercialRevShare"`
	DerivativesAllowed     bool    `json:"derivativesAllowed"`
	DerivativesAttribution bool    `json:"derivativesAttribution"`
	DerivativesReciprocal  bool    `json:"derivativesReciprocal"`
}

// CommercialRemixTerms builds the standard commercial-remix license the
// platform registers every asset under.
func CommercialRemixTerms(mintingFee float64, revShare int) LicenseTerms {
	return LicenseTerms{
		Transferable:           true,
		DefaultMintingFee:      mintingFee,
		CommercialUse:          true,
		CommercialAttribution:  true,
		CommercialRevShare:     revShare,
		DerivativesAllowed:     true,
		DerivativesAttribution: true,
		DerivativesReciprocal:  true,
	}
}
