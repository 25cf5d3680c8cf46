package melodex

import "context"

// Service is the server-side surface of the asset platform.
type Service interface {
	// Upload runs the full upload-and-registration pipeline and appends
	// the resulting record to the store. Steps are sequential with no
	// rollback on failure.
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// ListAssets returns the full current collection.
	ListAssets(ctx context.Context) ([]AssetRecord, error)

	// DeleteAsset permanently removes a record after verifying owner.
	DeleteAsset(ctx context.Context, id, owner string) (*DeleteResult, error)

	// ToggleHidden flips a record's visibility flag after verifying
	// owner, returning the new hidden state.
	ToggleHidden(ctx context.Context, id, owner string) (bool, error)

	// AddComment appends an admin comment to a record. There is no
	// ownership check on this path.
	AddComment(ctx context.Context, id, admin, comment string) (*AdminComment, error)

	// Comments returns the comments attached to one record.
	Comments(ctx context.Context, id string) ([]AdminComment, error)

	// Notifications derives an owner's feed from the comments across
	// all their records, newest first, along with the unread count.
	Notifications(ctx context.Context, owner string) ([]Notification, int, error)

	// MarkNotificationRead flips one comment's read flag after
	// verifying the caller owns the commented record.
	MarkNotificationRead(ctx context.Context, assetID, commentID, owner string) error
}
