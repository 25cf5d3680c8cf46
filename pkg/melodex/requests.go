package melodex

// UploadRequest carries one multipart submission through the upload
// pipeline.
type UploadRequest struct {
	Type        AssetType // defaults to music when empty
	Title       string
	Artist      string
	Description string
	Price       string // string-encoded decimal, defaults to "0"
	Owner       string // wallet address, must start with 0x

	MediaFile []byte // required primary file
	MediaName string
	MediaType string // declared content type of the media file

	CoverFile []byte // optional cover image
	CoverName string

	AttributesJSON string // optional JSON-encoded type-specific payload
	TextContent    string // optional story/concept text
}

// UploadResult is returned to the caller after a successful pipeline
// run.
type UploadResult struct {
	Record      AssetRecord
	IPID        string
	TxHash      string
	ExplorerURL string
}

// DeletedAsset summarizes a removed record.
type DeletedAsset struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Artist string    `json:"artist"`
	Type   AssetType `json:"type"`
}

// DeleteResult reports what a delete removed and how many records
// remain.
type DeleteResult struct {
	Deleted   DeletedAsset
	Remaining int
}
