package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "milestonegate.v1.MilestoneService"

const (
	MethodGetMilestone      = "/" + ServiceName + "/GetMilestone"
	MethodSubmitProof       = "/" + ServiceName + "/SubmitProof"
	MethodReview            = "/" + ServiceName + "/Review"
	MethodUploadDeliverable = "/" + ServiceName + "/UploadDeliverable"
	MethodUpdateWatermark   = "/" + ServiceName + "/UpdateWatermark"
	MethodDownloadURL       = "/" + ServiceName + "/DownloadURL"
	MethodPreview           = "/" + ServiceName + "/Preview"
	MethodProofURL          = "/" + ServiceName + "/ProofURL"
)

type MilestoneServiceServer interface {
	GetMilestone(context.Context, *GetMilestoneRequest) (*MilestoneResponse, error)
	SubmitProof(context.Context, *SubmitProofRequest) (*MilestoneResponse, error)
	Review(context.Context, *ReviewRequest) (*MilestoneResponse, error)
	UploadDeliverable(context.Context, *UploadDeliverableRequest) (*MilestoneResponse, error)
	UpdateWatermark(context.Context, *UpdateWatermarkRequest) (*MilestoneResponse, error)
	DownloadURL(context.Context, *SignedURLRequest) (*SignedURLResponse, error)
	Preview(context.Context, *SignedURLRequest) (*SignedURLResponse, error)
	ProofURL(context.Context, *SignedURLRequest) (*SignedURLResponse, error)
}

// UnimplementedMilestoneServiceServer answers every method with
// codes.Unimplemented. Embed it to stay forward compatible.
type UnimplementedMilestoneServiceServer struct{}

func (UnimplementedMilestoneServiceServer) GetMilestone(context.Context, *GetMilestoneRequest) (*MilestoneResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMilestone not implemented")
}

func (UnimplementedMilestoneServiceServer) SubmitProof(context.Context, *SubmitProofRequest) (*MilestoneResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitProof not implemented")
}

func (UnimplementedMilestoneServiceServer) Review(context.Context, *ReviewRequest) (*MilestoneResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Review not implemented")
}

func (UnimplementedMilestoneServiceServer) UploadDeliverable(context.Context, *UploadDeliverableRequest) (*MilestoneResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UploadDeliverable not implemented")
}

func (UnimplementedMilestoneServiceServer) UpdateWatermark(context.Context, *UpdateWatermarkRequest) (*MilestoneResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateWatermark not implemented")
}

func (UnimplementedMilestoneServiceServer) DownloadURL(context.Context, *SignedURLRequest) (*SignedURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DownloadURL not implemented")
}

func (UnimplementedMilestoneServiceServer) Preview(context.Context, *SignedURLRequest) (*SignedURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Preview not implemented")
}

func (UnimplementedMilestoneServiceServer) ProofURL(context.Context, *SignedURLRequest) (*SignedURLResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ProofURL not implemented")
}

func RegisterMilestoneServiceServer(s grpc.ServiceRegistrar, srv MilestoneServiceServer) {
	s.RegisterService(&MilestoneServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc's untyped handler
// signature, decoding the request and routing through the interceptor chain.
func unaryHandler[Req, Resp any](fullMethod string, call func(MilestoneServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MilestoneServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MilestoneServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var MilestoneServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MilestoneServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetMilestone",
			Handler:    unaryHandler(MethodGetMilestone, MilestoneServiceServer.GetMilestone),
		},
		{
			MethodName: "SubmitProof",
			Handler:    unaryHandler(MethodSubmitProof, MilestoneServiceServer.SubmitProof),
		},
		{
			MethodName: "Review",
			Handler:    unaryHandler(MethodReview, MilestoneServiceServer.Review),
		},
		{
			MethodName: "UploadDeliverable",
			Handler:    unaryHandler(MethodUploadDeliverable, MilestoneServiceServer.UploadDeliverable),
		},
		{
			MethodName: "UpdateWatermark",
			Handler:    unaryHandler(MethodUpdateWatermark, MilestoneServiceServer.UpdateWatermark),
		},
		{
			MethodName: "DownloadURL",
			Handler:    unaryHandler(MethodDownloadURL, MilestoneServiceServer.DownloadURL),
		},
		{
			MethodName: "Preview",
			Handler:    unaryHandler(MethodPreview, MilestoneServiceServer.Preview),
		},
		{
			MethodName: "ProofURL",
			Handler:    unaryHandler(MethodProofURL, MilestoneServiceServer.ProofURL),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "milestonegate/v1/milestone.json",
}
