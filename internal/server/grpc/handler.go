package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	pb "github.com/dmitrijs2005/milestonegate/internal/proto"
	"github.com/dmitrijs2005/milestonegate/internal/server/lifecycle"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/services"
)

// maxMessageSize leaves room for JSON base64 overhead on a full upload.
const maxMessageSize = int(common.MaxUploadSize)*2 + 64*1024

func (s *GRPCServer) actor(ctx context.Context) (models.Actor, error) {
	a, ok := actorFromContext(ctx)
	if !ok {
		return models.Actor{}, status.Error(codes.Unauthenticated, "missing token")
	}
	return a, nil
}

func toUpload(f pb.File) models.Upload {
	return models.Upload{Name: f.Name, ContentType: f.ContentType, Data: f.Data}
}

func toPB(m *models.Milestone) *pb.Milestone {
	out := &pb.Milestone{
		ID:              m.ID,
		ProjectID:       m.ProjectID,
		Title:           m.Title,
		PriceMinor:      m.PriceMinor,
		Status:          string(m.Status),
		Label:           string(lifecycle.StatusLabel(m.Status)),
		FreelancerID:    m.FreelancerID,
		ClientID:        m.ClientID,
		WatermarkText:   m.WatermarkText,
		HasPaymentProof: m.PaymentProofKey != "" || m.PaymentProofURL != "",
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Deliverable != nil {
		out.Deliverable = &pb.Deliverable{Name: m.Deliverable.Name, Size: m.Deliverable.Size}
	}
	return out
}

func milestoneResponse(m *models.Milestone, err error) (*pb.MilestoneResponse, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.MilestoneResponse{Milestone: toPB(m)}, nil
}

func signedURLResponse(url, contentType string, err error) (*pb.SignedURLResponse, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.SignedURLResponse{
		URL:              url,
		ContentType:      contentType,
		ExpiresInSeconds: int64(services.SignedURLTTL.Seconds()),
	}, nil
}

func (s *GRPCServer) GetMilestone(ctx context.Context, req *pb.GetMilestoneRequest) (*pb.MilestoneResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return milestoneResponse(s.access.Get(ctx, req.MilestoneID, actor))
}

func (s *GRPCServer) SubmitProof(ctx context.Context, req *pb.SubmitProofRequest) (*pb.MilestoneResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return milestoneResponse(s.payments.SubmitProof(ctx, req.MilestoneID, actor, toUpload(req.File)))
}

func (s *GRPCServer) Review(ctx context.Context, req *pb.ReviewRequest) (*pb.MilestoneResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return milestoneResponse(s.payments.Review(ctx, req.MilestoneID, actor, lifecycle.Decision(req.Decision)))
}

func (s *GRPCServer) UploadDeliverable(ctx context.Context, req *pb.UploadDeliverableRequest) (*pb.MilestoneResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return milestoneResponse(s.deliverables.Upload(ctx, req.MilestoneID, actor, toUpload(req.File), req.Watermark))
}

func (s *GRPCServer) UpdateWatermark(ctx context.Context, req *pb.UpdateWatermarkRequest) (*pb.MilestoneResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return milestoneResponse(s.deliverables.UpdateWatermark(ctx, req.MilestoneID, actor, req.Text))
}

func (s *GRPCServer) DownloadURL(ctx context.Context, req *pb.SignedURLRequest) (*pb.SignedURLResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.access.DownloadURL(ctx, req.MilestoneID, actor)
	return signedURLResponse(url, "", err)
}

func (s *GRPCServer) Preview(ctx context.Context, req *pb.SignedURLRequest) (*pb.SignedURLResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.access.Preview(ctx, req.MilestoneID, actor)
	return signedURLResponse(p.URL, p.ContentType, err)
}

func (s *GRPCServer) ProofURL(ctx context.Context, req *pb.SignedURLRequest) (*pb.SignedURLResponse, error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	url, err := s.payments.ProofURL(ctx, req.MilestoneID, actor)
	return signedURLResponse(url, "", err)
}
