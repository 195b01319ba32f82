package client

import (
	"context"
)

// Milestone is what the CLI shows for a milestone.
type Milestone struct {
	ID              string
	Title           string
	PriceMinor      int64
	Status          string
	Label           string
	FreelancerID    string
	ClientID        string
	DeliverableName string
	DeliverableSize int64
	WatermarkText   *string
	HasPaymentProof bool
}

// SignedURL is a short-lived link; it must not be stored.
type SignedURL struct {
	URL         string
	ContentType string
	ExpiresIn   int64
}

type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type Client interface {
	Close() error
	Get(ctx context.Context, milestoneID string) (*Milestone, error)
	SubmitProof(ctx context.Context, milestoneID string, file Upload) (*Milestone, error)
	Review(ctx context.Context, milestoneID, decision string) (*Milestone, error)
	UploadDeliverable(ctx context.Context, milestoneID string, file Upload, watermark *string) (*Milestone, error)
	UpdateWatermark(ctx context.Context, milestoneID string, text *string) (*Milestone, error)
	DownloadURL(ctx context.Context, milestoneID string) (SignedURL, error)
	PreviewURL(ctx context.Context, milestoneID string) (SignedURL, error)
	ProofURL(ctx context.Context, milestoneID string) (SignedURL, error)
}
