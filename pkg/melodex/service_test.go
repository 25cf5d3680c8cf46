package melodex_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/melodex/melodex/pkg/melodex"
	"github.com/melodex/melodex/pkg/melodex/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinner struct {
	fileCalls int
	jsonDocs  []any
	fileErr   error
	jsonErr   error
}

func (p *fakePinner) PinFile(ctx context.Context, filename string, data []byte) (string, error) {
	if p.fileErr != nil {
		return "", p.fileErr
	}
	p.fileCalls++
	return fmt.Sprintf("file-cid-%d", p.fileCalls), nil
}

func (p *fakePinner) PinJSON(ctx context.Context, v any) (string, error) {
	if p.jsonErr != nil {
		return "", p.jsonErr
	}
	p.jsonDocs = append(p.jsonDocs, v)
	return fmt.Sprintf("json-cid-%d", len(p.jsonDocs)), nil
}

func (p *fakePinner) GatewayURL(cid string) string {
	return "https://ipfs.io/ipfs/" + cid
}

type fakeRegistrar struct {
	result  melodex.RegisterResult
	err     error
	calls   int
	lastReq melodex.RegisterRequest
}

func (r *fakeRegistrar) MintAndRegister(ctx context.Context, req melodex.RegisterRequest) (*melodex.RegisterResult, error) {
	r.calls++
	r.lastReq = req
	if r.err != nil {
		return nil, r.err
	}
	result := r.result
	return &result, nil
}

func setupTestService(t *testing.T, opts ...melodex.Option) (melodex.Service, *memory.Store, *fakePinner, *fakeRegistrar) {
	store := memory.New()
	pinner := &fakePinner{}
	registrar := &fakeRegistrar{
		result: melodex.RegisterResult{
			IPID:   "0x49f3cbbeef1234567890abcdef1234567890abcd",
			TxHash: "0xdeadbeef",
		},
	}

	options := append([]melodex.Option{
		melodex.WithAssetStore(store),
		melodex.WithPinner(pinner),
		melodex.WithRegistrar(registrar),
		melodex.WithExplorerBase("https://explorer.test"),
	}, opts...)

	svc, err := melodex.New(options...)
	require.NoError(t, err)
	require.NotNil(t, svc)

	return svc, store, pinner, registrar
}

func validUpload() melodex.UploadRequest {
	return melodex.UploadRequest{
		Type:      melodex.AssetTypeMusic,
		Title:     "T",
		Artist:    "A",
		Owner:     "0x1111111111111111111111111111111111111111",
		MediaFile: []byte("audio bytes"),
		MediaName: "track.mp3",
		MediaType: "audio/mpeg",
	}
}

func TestServiceCreation(t *testing.T) {
	store := memory.New()
	pinner := &fakePinner{}
	registrar := &fakeRegistrar{}

	tests := []struct {
		name        string
		options     []melodex.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []melodex.Option{},
			expectError: true,
		},
		{
			name: "missing registrar should fail",
			options: []melodex.Option{
				melodex.WithAssetStore(store),
				melodex.WithPinner(pinner),
			},
			expectError: true,
		},
		{
			name: "all collaborators should succeed",
			options: []melodex.Option{
				melodex.WithAssetStore(store),
				melodex.WithPinner(pinner),
				melodex.WithRegistrar(registrar),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := melodex.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("owner without 0x prefix", func(t *testing.T) {
		svc, _, pinner, _ := setupTestService(t)
		req := validUpload()
		req.Owner = "1111111111111111111111111111111111111111"

		_, err := svc.Upload(ctx, req)
		assert.ErrorIs(t, err, melodex.ErrInvalidOwnerAddress)
		assert.Zero(t, pinner.fileCalls, "nothing may be pinned before validation passes")
	})

	t.Run("missing required fields", func(t *testing.T) {
		for _, mutate := range []func(*melodex.UploadRequest){
			func(r *melodex.UploadRequest) { r.Title = "" },
			func(r *melodex.UploadRequest) { r.Artist = "" },
			func(r *melodex.UploadRequest) { r.MediaFile = nil },
		} {
			svc, _, pinner, _ := setupTestService(t)
			req := validUpload()
			mutate(&req)

			_, err := svc.Upload(ctx, req)
			assert.ErrorIs(t, err, melodex.ErrMissingFields)
			assert.Zero(t, pinner.fileCalls)
		}
	})
}

func TestUploadWithoutCover(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := setupTestService(t)

	req := validUpload()
	req.Type = "" // defaults to music
	req.Price = ""

	result, err := svc.Upload(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, melodex.AssetTypeMusic, result.Record.Type)
	assert.Equal(t, melodex.PlaceholderCover(melodex.AssetTypeMusic), result.Record.CoverURL)
	assert.Equal(t, "https://ipfs.io/ipfs/file-cid-1", result.Record.MediaURL)
	assert.Equal(t, "0", result.Record.Price)
	assert.Equal(t, "0x49f3cbbeef1234567890abcdef1234567890abcd", result.Record.ID)
	assert.Equal(t, result.Record.ID, result.Record.IPID)
	assert.Equal(t, "0xdeadbeef", result.Record.TxHash)
	// NFT metadata is the second JSON document pinned.
	assert.Equal(t, "https://ipfs.io/ipfs/json-cid-2", result.Record.MetadataURL)
	assert.Equal(t, "https://explorer.test/ipa/"+result.Record.IPID, result.ExplorerURL)
	// Owner is stored verbatim, not case-normalized.
	assert.Equal(t, req.Owner, result.Record.Owner)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.Record.ID, records[0].ID)
}

func TestUploadWithCover(t *testing.T) {
	ctx := context.Background()
	svc, _, pinner, _ := setupTestService(t)

	req := validUpload()
	req.CoverFile = []byte("cover bytes")
	req.CoverName = "cover.png"

	result, err := svc.Upload(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "https://ipfs.io/ipfs/file-cid-2", result.Record.CoverURL)

	require.Len(t, pinner.jsonDocs, 2)
	ipMeta, ok := pinner.jsonDocs[0].(melodex.IPMetadata)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(ipMeta.ImageHash, "0x"))
	assert.True(t, strings.HasPrefix(ipMeta.MediaHash, "0x"))
	assert.Equal(t, "audio/mpeg", ipMeta.MediaType)
	require.Len(t, ipMeta.Creators, 1)
	assert.Equal(t, "A", ipMeta.Creators[0].Name)
	assert.Equal(t, req.Owner, ipMeta.Creators[0].Address)
	assert.Equal(t, 100, ipMeta.Creators[0].ContributionPercent)
}

func TestUploadNFTMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("music sets animation url", func(t *testing.T) {
		svc, _, pinner, _ := setupTestService(t)
		req := validUpload()
		req.Price = "0"

		_, err := svc.Upload(ctx, req)
		require.NoError(t, err)

		nftMeta, ok := pinner.jsonDocs[1].(melodex.NFTMetadata)
		require.True(t, ok)
		assert.Equal(t, "https://ipfs.io/ipfs/file-cid-1", nftMeta.AnimationURL)
		assert.Equal(t, "https://ipfs.io/ipfs/file-cid-1", nftMeta.ExternalURL)

		var priceValue string
		for _, attr := range nftMeta.Attributes {
			if attr.TraitType == "Price" {
				priceValue = attr.Value
			}
		}
		assert.Equal(t, "Free", priceValue)
	})

	t.Run("story has no animation url and priced attribute", func(t *testing.T) {
		svc, _, pinner, _ := setupTestService(t)
		req := validUpload()
		req.Type = melodex.AssetTypeStory
		req.Price = "3"

		_, err := svc.Upload(ctx, req)
		require.NoError(t, err)

		nftMeta := pinner.jsonDocs[1].(melodex.NFTMetadata)
		assert.Empty(t, nftMeta.AnimationURL)

		var priceValue string
		for _, attr := range nftMeta.Attributes {
			if attr.TraitType == "Price" {
				priceValue = attr.Value
			}
		}
		assert.Equal(t, "3 IP", priceValue)
	})
}

func TestUploadMintingFee(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		price string
		want  float64
	}{
		{name: "parsable price becomes the fee", price: "2.5", want: 2.5},
		{name: "zero price stays zero", price: "0", want: 0},
		{name: "unparsable price falls back to 1", price: "abc", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, registrar := setupTestService(t)
			req := validUpload()
			req.Price = tt.price

			_, err := svc.Upload(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, registrar.lastReq.LicenseTerms.DefaultMintingFee)
			assert.Equal(t, 5, registrar.lastReq.LicenseTerms.CommercialRevShare)
		})
	}
}

func TestUploadFallbackID(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc, _, _, registrar := setupTestService(t, melodex.WithClock(func() time.Time { return fixed }))
	registrar.result = melodex.RegisterResult{TxHash: "0xdeadbeef"}

	result, err := svc.Upload(ctx, validUpload())
	require.NoError(t, err)

	assert.Equal(t, strconv.FormatInt(fixed.UnixMilli(), 10), result.Record.ID)
	assert.Empty(t, result.Record.IPID)
}

func TestUploadRegistrarFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, pinner, registrar := setupTestService(t)
	registrar.err = errors.New("rpc unavailable")

	_, err := svc.Upload(ctx, validUpload())
	require.Error(t, err)

	var pipelineErr *melodex.PipelineError
	require.ErrorAs(t, err, &pipelineErr)
	assert.Equal(t, "register", pipelineErr.Step)

	// No compensation: the media and metadata stay pinned even though
	// nothing was persisted.
	assert.Equal(t, 1, pinner.fileCalls)
	assert.Len(t, pinner.jsonDocs, 2)

	records, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUploadAttributes(t *testing.T) {
	ctx := context.Background()

	t.Run("valid json attaches", func(t *testing.T) {
		svc, _, _, _ := setupTestService(t)
		req := validUpload()
		req.Type = melodex.AssetTypeCharacter
		req.AttributesJSON = `{"strength": 10, "class": "bard"}`
		req.TextContent = "backstory"

		result, err := svc.Upload(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "bard", result.Record.Attributes["class"])
		assert.Equal(t, "backstory", result.Record.TextContent)
	})

	t.Run("invalid json aborts", func(t *testing.T) {
		svc, store, _, _ := setupTestService(t)
		req := validUpload()
		req.AttributesJSON = `{not json`

		_, err := svc.Upload(ctx, req)
		require.Error(t, err)

		records, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func seedRecords(t *testing.T, store *memory.Store, records ...melodex.AssetRecord) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), records))
}

func TestDeleteAsset(t *testing.T) {
	ctx := context.Background()
	owner := "0xABC0000000000000000000000000000000000001"

	t.Run("unknown id leaves collection unchanged", func(t *testing.T) {
		svc, store, _, _ := setupTestService(t)
		seedRecords(t, store, melodex.AssetRecord{ID: "a1", Owner: owner})

		_, err := svc.DeleteAsset(ctx, "missing", owner)
		assert.ErrorIs(t, err, melodex.ErrAssetNotFound)

		records, _ := store.Load(ctx)
		assert.Len(t, records, 1)
	})

	t.Run("mismatched owner leaves collection unchanged", func(t *testing.T) {
		svc, store, _, _ := setupTestService(t)
		seedRecords(t, store, melodex.AssetRecord{ID: "a1", Owner: owner})

		_, err := svc.DeleteAsset(ctx, "a1", "0x9990000000000000000000000000000000000999")
		assert.ErrorIs(t, err, melodex.ErrNotOwner)

		records, _ := store.Load(ctx)
		assert.Len(t, records, 1)
	})

	t.Run("case-insensitive owner match deletes", func(t *testing.T) {
		svc, store, _, _ := setupTestService(t)
		seedRecords(t, store,
			melodex.AssetRecord{ID: "a1", Owner: owner, Title: "First", Artist: "A", Type: melodex.AssetTypeMusic},
			melodex.AssetRecord{ID: "a2", Owner: owner},
		)

		result, err := svc.DeleteAsset(ctx, "a1", strings.ToLower(owner))
		require.NoError(t, err)
		assert.Equal(t, "a1", result.Deleted.ID)
		assert.Equal(t, "First", result.Deleted.Title)
		assert.Equal(t, 1, result.Remaining)

		records, _ := store.Load(ctx)
		require.Len(t, records, 1)
		assert.Equal(t, "a2", records[0].ID)
	})
}

func TestToggleHidden(t *testing.T) {
	ctx := context.Background()
	owner := "0xABC0000000000000000000000000000000000001"

	svc, store, _, _ := setupTestService(t)
	seedRecords(t, store, melodex.AssetRecord{ID: "a1", Owner: owner})

	hidden, err := svc.ToggleHidden(ctx, "a1", owner)
	require.NoError(t, err)
	assert.True(t, hidden)

	// A second toggle is a pure flip back to visible.
	hidden, err = svc.ToggleHidden(ctx, "a1", strings.ToUpper(owner))
	require.NoError(t, err)
	assert.False(t, hidden)

	_, err = svc.ToggleHidden(ctx, "a1", "0x9990000000000000000000000000000000000999")
	assert.ErrorIs(t, err, melodex.ErrNotOwner)

	_, err = svc.ToggleHidden(ctx, "missing", owner)
	assert.ErrorIs(t, err, melodex.ErrAssetNotFound)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	owner := "0xABC0000000000000000000000000000000000001"
	admin := "0xADa0000000000000000000000000000000000002"

	svc, store, _, _ := setupTestService(t)
	seedRecords(t, store, melodex.AssetRecord{ID: "a1", Owner: owner})

	t.Run("empty asset has no comments", func(t *testing.T) {
		comments, err := svc.Comments(ctx, "a1")
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("append and read back", func(t *testing.T) {
		comment, err := svc.AddComment(ctx, "a1", admin, "please add a cover")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(comment.ID, "comment-"))
		assert.False(t, comment.Read)
		assert.Equal(t, admin, comment.Admin)

		comments, err := svc.Comments(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, comment.ID, comments[0].ID)
	})

	t.Run("unknown asset", func(t *testing.T) {
		_, err := svc.AddComment(ctx, "missing", admin, "hi")
		assert.ErrorIs(t, err, melodex.ErrAssetNotFound)

		_, err = svc.Comments(ctx, "missing")
		assert.ErrorIs(t, err, melodex.ErrAssetNotFound)
	})
}

func TestNotificationsFlow(t *testing.T) {
	ctx := context.Background()
	owner := "0xABC0000000000000000000000000000000000001"
	stranger := "0xBBB0000000000000000000000000000000000002"
	admin := "0xADa0000000000000000000000000000000000003"

	svc, store, _, _ := setupTestService(t)
	seedRecords(t, store,
		melodex.AssetRecord{ID: "a1", Owner: owner, Title: "Mine", Type: melodex.AssetTypeMusic, CoverURL: "cover", MediaURL: "media"},
		melodex.AssetRecord{ID: "b1", Owner: stranger, Title: "Theirs"},
	)

	comment, err := svc.AddComment(ctx, "a1", admin, "nice track")
	require.NoError(t, err)

	notifications, unread, err := svc.Notifications(ctx, strings.ToLower(owner))
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, 1, unread)
	assert.False(t, notifications[0].Read)
	assert.Equal(t, "a1", notifications[0].AssetID)
	assert.Equal(t, "Mine", notifications[0].AssetTitle)
	assert.Equal(t, "cover", notifications[0].AssetImage)

	t.Run("mark read requires ownership", func(t *testing.T) {
		err := svc.MarkNotificationRead(ctx, "a1", comment.ID, stranger)
		assert.ErrorIs(t, err, melodex.ErrNotOwner)
	})

	require.NoError(t, svc.MarkNotificationRead(ctx, "a1", comment.ID, owner))

	notifications, unread, err = svc.Notifications(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].Read)
	assert.Equal(t, 0, unread)

	t.Run("unknown comment id is not an error", func(t *testing.T) {
		assert.NoError(t, svc.MarkNotificationRead(ctx, "a1", "comment-missing", owner))
	})
}

func TestNotificationsOrder(t *testing.T) {
	ctx := context.Background()
	owner := "0xABC0000000000000000000000000000000000001"
	admin := "0xADa0000000000000000000000000000000000003"

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	svc, store, _, _ := setupTestService(t, melodex.WithClock(func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}))
	seedRecords(t, store, melodex.AssetRecord{ID: "a1", Owner: owner})

	first, err := svc.AddComment(ctx, "a1", admin, "older")
	require.NoError(t, err)
	second, err := svc.AddComment(ctx, "a1", admin, "newer")
	require.NoError(t, err)

	notifications, _, err := svc.Notifications(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, second.ID, notifications[0].ID, "newest first")
	assert.Equal(t, first.ID, notifications[1].ID)
}
