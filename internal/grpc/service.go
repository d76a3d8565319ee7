package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// QueryServer is the wire-level contract of the query service. Server
// implements it; the service descriptor below binds it to the grpc
// runtime the same way generated stubs would.
type QueryServer interface {
	GetServerInfo(context.Context, *GetServerInfoRequest) (*GetServerInfoResponse, error)
	GetLedger(context.Context, *GetLedgerRequest) (*GetLedgerResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	GetOffer(context.Context, *GetOfferRequest) (*GetOfferResponse, error)
	GetAccountOffers(context.Context, *GetAccountOffersRequest) (*GetAccountOffersResponse, error)
	GetTx(context.Context, *GetTxRequest) (*GetTxResponse, error)
}

const serviceName = "swapd.v1.Query"

// RegisterQueryServer registers srv on a grpc server.
func RegisterQueryServer(s grpc.ServiceRegistrar, srv QueryServer) {
	s.RegisterService(&queryServiceDesc, srv)
}

var queryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*QueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetServerInfo", Handler: getServerInfoHandler},
		{MethodName: "GetLedger", Handler: getLedgerHandler},
		{MethodName: "GetAccount", Handler: getAccountHandler},
		{MethodName: "GetOffer", Handler: getOfferHandler},
		{MethodName: "GetAccountOffers", Handler: getAccountOffersHandler},
		{MethodName: "GetTx", Handler: getTxHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func getServerInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetServerInfoRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetServerInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetServerInfo"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).GetServerInfo(ctx, req.(*GetServerInfoRequest))
	})
}

func getLedgerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetLedgerRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetLedger(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetLedger"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).GetLedger(ctx, req.(*GetLedgerRequest))
	})
}

func getAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAccountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetAccount"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).GetAccount(ctx, req.(*GetAccountRequest))
	})
}

func getOfferHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOfferRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetOffer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetOffer"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).GetOffer(ctx, req.(*GetOfferRequest))
	})
}

func getAccountOffersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAccountOffersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetAccountOffers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetAccountOffers"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).GetAccountOffers(ctx, req.(*GetAccountOffersRequest))
	})
}

func getTxHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetTxRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).GetTx(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetTx"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).GetTx(ctx, req.(*GetTxRequest))
	})
}
