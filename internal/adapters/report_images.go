package adapters

import (
	"context"

	"cityreport_backend/internal/adapters/storage"
	"cityreport_backend/internal/reports/ports"
)

// ReportImageSigner resolves stored report image keys to presigned download
// URLs.
type ReportImageSigner struct {
	storage storage.ObjectStore
	bucket  string
}

// NewReportImageSigner creates a new report image signer adapter.
func NewReportImageSigner(store storage.ObjectStore, bucket string) *ReportImageSigner {
	return &ReportImageSigner{storage: store, bucket: bucket}
}

// SignedURL generates a presigned download URL for the given image key.
func (a *ReportImageSigner) SignedURL(ctx context.Context, key string) (string, error) {
	presigned, err := a.storage.GenerateDownloadURL(ctx, a.bucket, key)
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// Compile-time check that ReportImageSigner implements ports.ImageURLSigner.
var _ ports.ImageURLSigner = (*ReportImageSigner)(nil)
