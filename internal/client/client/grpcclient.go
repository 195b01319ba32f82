package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	pb "github.com/dmitrijs2005/milestonegate/internal/proto"
)

// callTimeout bounds a single RPC. Uploads carry up to MaxUploadSize.
const callTimeout = 30 * time.Second

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.MilestoneServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withAccessToken(ctx, s.accessToken), method, req, reply, cc, opts...)
}

func NewMilestoneClient(endpointURL, accessToken string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(int(common.MaxUploadSize)*2+64*1024)),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewMilestoneServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func fromPB(m *pb.Milestone) *Milestone {
	if m == nil {
		return nil
	}
	out := &Milestone{
		ID:              m.ID,
		Title:           m.Title,
		PriceMinor:      m.PriceMinor,
		Status:          m.Status,
		Label:           m.Label,
		FreelancerID:    m.FreelancerID,
		ClientID:        m.ClientID,
		WatermarkText:   m.WatermarkText,
		HasPaymentProof: m.HasPaymentProof,
	}
	if m.Deliverable != nil {
		out.DeliverableName = m.Deliverable.Name
		out.DeliverableSize = m.Deliverable.Size
	}
	return out
}

func toFile(u Upload) pb.File {
	return pb.File{Name: u.Name, ContentType: u.ContentType, Data: u.Data}
}

func (s *GRPCClient) milestone(resp *pb.MilestoneResponse, err error) (*Milestone, error) {
	if err != nil {
		return nil, s.mapError(err)
	}
	return fromPB(resp.Milestone), nil
}

func (s *GRPCClient) signed(resp *pb.SignedURLResponse, err error) (SignedURL, error) {
	if err != nil {
		return SignedURL{}, s.mapError(err)
	}
	return SignedURL{URL: resp.URL, ContentType: resp.ContentType, ExpiresIn: resp.ExpiresInSeconds}, nil
}

func (s *GRPCClient) Get(ctx context.Context, milestoneID string) (*Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return s.milestone(s.client.GetMilestone(ctx, &pb.GetMilestoneRequest{MilestoneID: milestoneID}))
}

func (s *GRPCClient) SubmitProof(ctx context.Context, milestoneID string, file Upload) (*Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return s.milestone(s.client.SubmitProof(ctx, &pb.SubmitProofRequest{MilestoneID: milestoneID, File: toFile(file)}))
}

func (s *GRPCClient) Review(ctx context.Context, milestoneID, decision string) (*Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return s.milestone(s.client.Review(ctx, &pb.ReviewRequest{MilestoneID: milestoneID, Decision: decision}))
}

func (s *GRPCClient) UploadDeliverable(ctx context.Context, milestoneID string, file Upload, watermark *string) (*Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	req := &pb.UploadDeliverableRequest{MilestoneID: milestoneID, File: toFile(file), Watermark: watermark}
	return s.milestone(s.client.UploadDeliverable(ctx, req))
}

func (s *GRPCClient) UpdateWatermark(ctx context.Context, milestoneID string, text *string) (*Milestone, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return s.milestone(s.client.UpdateWatermark(ctx, &pb.UpdateWatermarkRequest{MilestoneID: milestoneID, Text: text}))
}

func (s *GRPCClient) DownloadURL(ctx context.Context, milestoneID string) (SignedURL, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return s.signed(s.client.DownloadURL(ctx, &pb.SignedURLRequest{MilestoneID: milestoneID}))
}

func (s *GRPCClient) PreviewURL(ctx context.Context, milestoneID string) (SignedURL, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return s.signed(s.client.Preview(ctx, &pb.SignedURLRequest{MilestoneID: milestoneID}))
}

func (s *GRPCClient) ProofURL(ctx context.Context, milestoneID string) (SignedURL, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return s.signed(s.client.ProofURL(ctx, &pb.SignedURLRequest{MilestoneID: milestoneID}))
}

// mapError turns a status back into the sentinel the server started from,
// keeping the server's message for display.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	msg := st.Message()
	switch st.Code() {
	case codes.Unauthenticated:
		if msg == common.ErrTokenExpired.Error() {
			return common.ErrTokenExpired
		}
		return ErrUnauthorized
	case codes.PermissionDenied:
		if msg == common.ErrPaymentNotApproved.Error() {
			return fmt.Errorf("%w: %w", common.ErrAuthorization, common.ErrPaymentNotApproved)
		}
		return fmt.Errorf("%w: %s", common.ErrAuthorization, msg)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrValidation, msg)
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case codes.Aborted:
		return common.ErrConflict
	case codes.ResourceExhausted:
		return common.ErrRateLimited
	case codes.FailedPrecondition:
		if msg == common.ErrPreviewSuperseded.Error() {
			return common.ErrPreviewSuperseded
		}
		return common.ErrPreviewUnavailable
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
