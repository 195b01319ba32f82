package proto

import "time"

// Milestone is the caller-facing view of a milestone. It never carries
// object URLs; assets are reached through the signed URL methods.
type Milestone struct {
	ID              string       `json:"id"`
	ProjectID       string       `json:"project_id"`
	Title           string       `json:"title"`
	PriceMinor      int64        `json:"price_minor"`
	Status          string       `json:"status"`
	Label           string       `json:"label"`
	FreelancerID    string       `json:"freelancer_id"`
	ClientID        string       `json:"client_id"`
	Deliverable     *Deliverable `json:"deliverable,omitempty"`
	WatermarkText   *string      `json:"watermark_text,omitempty"`
	HasPaymentProof bool         `json:"has_payment_proof"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type Deliverable struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// File is an upload payload. Data is base64 on the wire.
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type GetMilestoneRequest struct {
	MilestoneID string `json:"milestone_id"`
}

type MilestoneResponse struct {
	Milestone *Milestone `json:"milestone"`
}

type SubmitProofRequest struct {
	MilestoneID string `json:"milestone_id"`
	File        File   `json:"file"`
}

type ReviewRequest struct {
	MilestoneID string `json:"milestone_id"`
	// Decision is "approve" or "reject".
	Decision string `json:"decision"`
}

type UploadDeliverableRequest struct {
	MilestoneID string `json:"milestone_id"`
	File        File   `json:"file"`
	// Watermark replaces the stored text when set; nil keeps it.
	Watermark *string `json:"watermark,omitempty"`
}

type UpdateWatermarkRequest struct {
	MilestoneID string  `json:"milestone_id"`
	Text        *string `json:"text"`
}

type SignedURLRequest struct {
	MilestoneID string `json:"milestone_id"`
}

type SignedURLResponse struct {
	URL              string `json:"url"`
	ContentType      string `json:"content_type,omitempty"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}
