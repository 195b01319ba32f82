// Package grpc exposes the milestone workflows over gRPC. Every method
// requires an access token; the caller's actor is resolved from it.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/milestonegate/internal/logging"
	pb "github.com/dmitrijs2005/milestonegate/internal/proto"
	"github.com/dmitrijs2005/milestonegate/internal/server/lifecycle"
	"github.com/dmitrijs2005/milestonegate/internal/server/metrics"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/services"
)

type PaymentWorkflow interface {
	SubmitProof(ctx context.Context, milestoneID string, actor models.Actor, file models.Upload) (*models.Milestone, error)
	Review(ctx context.Context, milestoneID string, actor models.Actor, decision lifecycle.Decision) (*models.Milestone, error)
	ProofURL(ctx context.Context, milestoneID string, actor models.Actor) (string, error)
}

type DeliverableWorkflow interface {
	Upload(ctx context.Context, milestoneID string, actor models.Actor, file models.Upload, watermark *string) (*models.Milestone, error)
	UpdateWatermark(ctx context.Context, milestoneID string, actor models.Actor, text *string) (*models.Milestone, error)
}

type AccessIssuer interface {
	Get(ctx context.Context, milestoneID string, actor models.Actor) (*models.Milestone, error)
	DownloadURL(ctx context.Context, milestoneID string, actor models.Actor) (string, error)
	Preview(ctx context.Context, milestoneID string, actor models.Actor) (services.PreviewResult, error)
}

type GRPCServer struct {
	pb.UnimplementedMilestoneServiceServer
	address      string
	payments     PaymentWorkflow
	deliverables DeliverableWorkflow
	access       AccessIssuer
	metrics      *metrics.Metrics
	logger       logging.Logger
	jwtSecret    []byte
}

func NewGRPCServer(a string, l logging.Logger, m *metrics.Metrics, ps PaymentWorkflow, ds DeliverableWorkflow, as AccessIssuer, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:      a,
		logger:       l.With("module", "grpc_server"),
		metrics:      m,
		payments:     ps,
		deliverables: ds,
		access:       as,
		jwtSecret:    []byte(secretKey),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// creates gRPC-server
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.observeInterceptor, s.accessTokenInterceptor),
		grpc.MaxRecvMsgSize(maxMessageSize),
	)

	// registers service
	pb.RegisterMilestoneServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
