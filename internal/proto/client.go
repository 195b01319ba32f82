package proto

import (
	"context"

	"google.golang.org/grpc"
)

type MilestoneServiceClient interface {
	GetMilestone(ctx context.Context, in *GetMilestoneRequest, opts ...grpc.CallOption) (*MilestoneResponse, error)
	SubmitProof(ctx context.Context, in *SubmitProofRequest, opts ...grpc.CallOption) (*MilestoneResponse, error)
	Review(ctx context.Context, in *ReviewRequest, opts ...grpc.CallOption) (*MilestoneResponse, error)
	UploadDeliverable(ctx context.Context, in *UploadDeliverableRequest, opts ...grpc.CallOption) (*MilestoneResponse, error)
	UpdateWatermark(ctx context.Context, in *UpdateWatermarkRequest, opts ...grpc.CallOption) (*MilestoneResponse, error)
	DownloadURL(ctx context.Context, in *SignedURLRequest, opts ...grpc.CallOption) (*SignedURLResponse, error)
	Preview(ctx context.Context, in *SignedURLRequest, opts ...grpc.CallOption) (*SignedURLResponse, error)
	ProofURL(ctx context.Context, in *SignedURLRequest, opts ...grpc.CallOption) (*SignedURLResponse, error)
}

type milestoneServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMilestoneServiceClient(cc grpc.ClientConnInterface) MilestoneServiceClient {
	return &milestoneServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *milestoneServiceClient) GetMilestone(ctx context.Context, in *GetMilestoneRequest, opts ...grpc.CallOption) (*MilestoneResponse, error) {
	return invoke[MilestoneResponse](ctx, c.cc, MethodGetMilestone, in, opts)
}

func (c *milestoneServiceClient) SubmitProof(ctx context.Context, in *SubmitProofRequest, opts ...grpc.CallOption) (*MilestoneResponse, error) {
	return invoke[MilestoneResponse](ctx, c.cc, MethodSubmitProof, in, opts)
}

func (c *milestoneServiceClient) Review(ctx context.Context, in *ReviewRequest, opts ...grpc.CallOption) (*MilestoneResponse, error) {
	return invoke[MilestoneResponse](ctx, c.cc, MethodReview, in, opts)
}

func (c *milestoneServiceClient) UploadDeliverable(ctx context.Context, in *UploadDeliverableRequest, opts ...grpc.CallOption) (*MilestoneResponse, error) {
	return invoke[MilestoneResponse](ctx, c.cc, MethodUploadDeliverable, in, opts)
}

func (c *milestoneServiceClient) UpdateWatermark(ctx context.Context, in *UpdateWatermarkRequest, opts ...grpc.CallOption) (*MilestoneResponse, error) {
	return invoke[MilestoneResponse](ctx, c.cc, MethodUpdateWatermark, in, opts)
}

func (c *milestoneServiceClient) DownloadURL(ctx context.Context, in *SignedURLRequest, opts ...grpc.CallOption) (*SignedURLResponse, error) {
	return invoke[SignedURLResponse](ctx, c.cc, MethodDownloadURL, in, opts)
}

func (c *milestoneServiceClient) Preview(ctx context.Context, in *SignedURLRequest, opts ...grpc.CallOption) (*SignedURLResponse, error) {
	return invoke[SignedURLResponse](ctx, c.cc, MethodPreview, in, opts)
}

func (c *milestoneServiceClient) ProofURL(ctx context.Context, in *SignedURLRequest, opts ...grpc.CallOption) (*SignedURLResponse, error) {
	return invoke[SignedURLResponse](ctx, c.cc, MethodProofURL, in, opts)
}
