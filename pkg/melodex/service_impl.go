package melodex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// commercialRevSharePercent is the fixed revenue share every asset is
// registered under.
const commercialRevSharePercent = 5

// service implements the Service interface
type service struct {
	store        AssetStore
	pinner       Pinner
	registrar    Registrar
	explorerBase string
	now          func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithAssetStore sets the asset store for the service
func WithAssetStore(store AssetStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithPinner sets the content pinning client for the service
func WithPinner(pinner Pinner) Option {
	return func(s *service) {
		s.pinner = pinner
	}
}

// WithRegistrar sets the IP-registration client for the service
func WithRegistrar(registrar Registrar) Option {
	return func(s *service) {
		s.registrar = registrar
	}
}

// WithExplorerBase sets the block-explorer base URL used to build
// per-asset explorer links
func WithExplorerBase(base string) Option {
	return func(s *service) {
		s.explorerBase = strings.TrimSuffix(base, "/")
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		explorerBase: "https://aeneid.explorer.story.foundation",
		now:          time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	if s.pinner == nil {
		return nil, fmt.Errorf("pinner is required")
	}
	if s.registrar == nil {
		return nil, fmt.Errorf("registrar is required")
	}

	return s, nil
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.Type == "" {
		req.Type = AssetTypeMusic
	}
	if req.Price == "" {
		req.Price = "0"
	}

	// Validation happens before any external call.
	if !strings.HasPrefix(req.Owner, "0x") {
		return nil, ErrInvalidOwnerAddress
	}
	if req.Title == "" || req.Artist == "" || len(req.MediaFile) == 0 {
		return nil, ErrMissingFields
	}

	mediaHash := hexDigest(req.MediaFile)

	mediaCID, err := s.pinner.PinFile(ctx, req.MediaName, req.MediaFile)
	if err != nil {
		return nil, &PipelineError{Step: "pin media", Err: err}
	}
	mediaURL := s.pinner.GatewayURL(mediaCID)
	slog.Info("media pinned", "cid", mediaCID, "size", len(req.MediaFile))

	var coverURL, coverHash string
	if len(req.CoverFile) > 0 {
		coverCID, err := s.pinner.PinFile(ctx, req.CoverName, req.CoverFile)
		if err != nil {
			return nil, &PipelineError{Step: "pin cover", Err: err}
		}
		coverURL = s.pinner.GatewayURL(coverCID)
		coverHash = hexDigest(req.CoverFile)
	} else {
		coverURL = PlaceholderCover(req.Type)
	}

	now := s.now()

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("A %s created by %s", req.Type, req.Artist)
	}

	ipMeta := IPMetadata{
		Title:       req.Title,
		Description: description,
		CreatedAt:   strconv.FormatInt(now.Unix(), 10),
		Creators: []Creator{
			{Name: req.Artist, Address: req.Owner, ContributionPercent: 100},
		},
		Image:     coverURL,
		MediaURL:  mediaURL,
		MediaHash: "0x" + mediaHash,
		MediaType: req.MediaType,
	}
	if coverHash != "" {
		ipMeta.ImageHash = "0x" + coverHash
	}

	nftMeta := NFTMetadata{
		Name:        req.Title,
		Description: description + " This NFT represents ownership of the IP Asset.",
		Image:       coverURL,
		ExternalURL: mediaURL,
		Attributes: []NFTAttribute{
			{TraitType: "Artist", Value: req.Artist},
			{TraitType: "Type", Value: string(req.Type)},
			{TraitType: "Price", Value: PriceLabel(req.Price)},
			{TraitType: "Owner", Value: req.Owner},
			{TraitType: "Created", Value: now.UTC().Format(time.RFC3339)},
		},
	}
	if req.Type == AssetTypeMusic {
		nftMeta.AnimationURL = mediaURL
	}

	ipCID, err := s.pinner.PinJSON(ctx, ipMeta)
	if err != nil {
		return nil, &PipelineError{Step: "pin ip metadata", Err: err}
	}
	ipHash, err := jsonDigest(ipMeta)
	if err != nil {
		return nil, &PipelineError{Step: "digest ip metadata", Err: err}
	}

	nftCID, err := s.pinner.PinJSON(ctx, nftMeta)
	if err != nil {
		return nil, &PipelineError{Step: "pin nft metadata", Err: err}
	}
	nftHash, err := jsonDigest(nftMeta)
	if err != nil {
		return nil, &PipelineError{Step: "digest nft metadata", Err: err}
	}

	mintingFee, perr := strconv.ParseFloat(req.Price, 64)
	if perr != nil {
		mintingFee = 1
	}

	reg, err := s.registrar.MintAndRegister(ctx, RegisterRequest{
		LicenseTerms:    CommercialRemixTerms(mintingFee, commercialRevSharePercent),
		IPMetadataURI:   s.pinner.GatewayURL(ipCID),
		IPMetadataHash:  "0x" + ipHash,
		NFTMetadataURI:  s.pinner.GatewayURL(nftCID),
		NFTMetadataHash: "0x" + nftHash,
	})
	if err != nil {
		return nil, &PipelineError{Step: "register", Err: err}
	}
	slog.Info("ip asset registered", "ip_id", reg.IPID, "tx_hash", reg.TxHash)

	explorerURL := s.explorerBase + "/ipa/" + reg.IPID

	id := reg.IPID
	if id == "" {
		id = strconv.FormatInt(now.UnixMilli(), 10)
	}

	record := AssetRecord{
		ID:          id,
		Type:        req.Type,
		Title:       req.Title,
		Artist:      req.Artist,
		Description: req.Description,
		Price:       req.Price,
		MediaURL:    mediaURL,
		CoverURL:    coverURL,
		Owner:       req.Owner,
		MetadataURL: s.pinner.GatewayURL(nftCID),
		CreatedAt:   now.UTC(),
		IPID:        reg.IPID,
		TxHash:      reg.TxHash,
		TextContent: req.TextContent,
	}
	if req.AttributesJSON != "" {
		var attrs map[string]any
		if err := json.Unmarshal([]byte(req.AttributesJSON), &attrs); err != nil {
			return nil, &PipelineError{Step: "decode attributes", Err: err}
		}
		record.Attributes = attrs
	}

	// Not atomic with registration: a failure here leaves the on-chain
	// registration in place with no local record.
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, &PipelineError{Step: "load store", Err: err}
	}
	records = append(records, record)
	if err := s.store.Save(ctx, records); err != nil {
		return nil, &PipelineError{Step: "save store", Err: err}
	}

	return &UploadResult{
		Record:      record,
		IPID:        reg.IPID,
		TxHash:      reg.TxHash,
		ExplorerURL: explorerURL,
	}, nil
}

func (s *service) ListAssets(ctx context.Context) ([]AssetRecord, error) {
	return s.store.Load(ctx)
}

func (s *service) DeleteAsset(ctx context.Context, id, owner string) (*DeleteResult, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := findRecord(records, id)
	if idx < 0 {
		return nil, ErrAssetNotFound
	}
	if !records[idx].OwnedBy(owner) {
		return nil, ErrNotOwner
	}

	deleted := records[idx]
	records = append(records[:idx], records[idx+1:]...)

	if err := s.store.Save(ctx, records); err != nil {
		return nil, err
	}

	slog.Info("asset deleted", "id", deleted.ID, "title", deleted.Title, "type", deleted.Type)
	return &DeleteResult{
		Deleted: DeletedAsset{
			ID:     deleted.ID,
			Title:  deleted.Title,
			Artist: deleted.Artist,
			Type:   deleted.Type,
		},
		Remaining: len(records),
	}, nil
}

func (s *service) ToggleHidden(ctx context.Context, id, owner string) (bool, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}

	idx := findRecord(records, id)
	if idx < 0 {
		return false, ErrAssetNotFound
	}
	if !records[idx].OwnedBy(owner) {
		return false, ErrNotOwner
	}

	records[idx].Hidden = !records[idx].Hidden

	if err := s.store.Save(ctx, records); err != nil {
		return false, err
	}

	return records[idx].Hidden, nil
}

func (s *service) AddComment(ctx context.Context, id, admin, comment string) (*AdminComment, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := findRecord(records, id)
	if idx < 0 {
		return nil, ErrAssetNotFound
	}

	newComment := AdminComment{
		ID:        "comment-" + uuid.NewString(),
		Admin:     admin,
		Comment:   comment,
		Timestamp: s.now().UTC(),
		Read:      false,
	}
	records[idx].AdminComments = append(records[idx].AdminComments, newComment)

	if err := s.store.Save(ctx, records); err != nil {
		return nil, err
	}

	return &newComment, nil
}

func (s *service) Comments(ctx context.Context, id string) ([]AdminComment, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := findRecord(records, id)
	if idx < 0 {
		return nil, ErrAssetNotFound
	}

	comments := records[idx].AdminComments
	if comments == nil {
		comments = []AdminComment{}
	}
	return comments, nil
}

func (s *service) Notifications(ctx context.Context, owner string) ([]Notification, int, error) {
	records, err := s.store.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	notifications := []Notification{}
	for i := range records {
		if !records[i].OwnedBy(owner) {
			continue
		}
		image := records[i].CoverURL
		if image == "" {
			image = records[i].MediaURL
		}
		for _, c := range records[i].AdminComments {
			notifications = append(notifications, Notification{
				ID:         c.ID,
				AssetID:    records[i].ID,
				AssetTitle: records[i].Title,
				AssetType:  records[i].Type,
				AssetImage: image,
				Admin:      c.Admin,
				Comment:    c.Comment,
				Timestamp:  c.Timestamp,
				Read:       c.Read,
			})
		}
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].Timestamp.After(notifications[j].Timestamp)
	})

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	return notifications, unread, nil
}

func (s *service) MarkNotificationRead(ctx context.Context, assetID, commentID, owner string) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	idx := findRecord(records, assetID)
	if idx < 0 {
		return ErrAssetNotFound
	}
	if !records[idx].OwnedBy(owner) {
		return ErrNotOwner
	}

	// An unknown comment id is not an error; the write still happens.
	for i := range records[idx].AdminComments {
		if records[idx].AdminComments[i].ID == commentID {
			records[idx].AdminComments[i].Read = true
			break
		}
	}

	return s.store.Save(ctx, records)
}

// findRecord returns the index of the record with the given id, or -1.
// The collection is a plain sequence; lookups are linear scans.
func findRecord(records []AssetRecord, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func hexDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// jsonDigest hashes the JSON serialization of v, matching the bytes
// the pinner uploads for metadata documents.
func jsonDigest(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return hexDigest(data), nil
}
