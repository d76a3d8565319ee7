package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QueryClient calls the query service.
type QueryClient interface {
	GetServerInfo(ctx context.Context, in *GetServerInfoRequest, opts ...grpc.CallOption) (*GetServerInfoResponse, error)
	GetLedger(ctx context.Context, in *GetLedgerRequest, opts ...grpc.CallOption) (*GetLedgerResponse, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error)
	GetOffer(ctx context.Context, in *GetOfferRequest, opts ...grpc.CallOption) (*GetOfferResponse, error)
	GetAccountOffers(ctx context.Context, in *GetAccountOffersRequest, opts ...grpc.CallOption) (*GetAccountOffersResponse, error)
	GetTx(ctx context.Context, in *GetTxRequest, opts ...grpc.CallOption) (*GetTxResponse, error)
}

// Dial opens a plaintext connection with the cbor codec selected for
// every call on it.
func Dial(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
}

// NewQueryClient wraps an established connection. Connections from
// Dial already select the cbor codec; others must pass
// grpc.CallContentSubtype(CodecName) per call.
func NewQueryClient(cc grpc.ClientConnInterface) QueryClient {
	return &queryClient{cc: cc}
}

type queryClient struct {
	cc grpc.ClientConnInterface
}

func (c *queryClient) GetServerInfo(ctx context.Context, in *GetServerInfoRequest, opts ...grpc.CallOption) (*GetServerInfoResponse, error) {
	out := new(GetServerInfoResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetServerInfo", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) GetLedger(ctx context.Context, in *GetLedgerRequest, opts ...grpc.CallOption) (*GetLedgerResponse, error) {
	out := new(GetLedgerResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetLedger", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	out := new(GetAccountResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetAccount", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) GetOffer(ctx context.Context, in *GetOfferRequest, opts ...grpc.CallOption) (*GetOfferResponse, error) {
	out := new(GetOfferResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetOffer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) GetAccountOffers(ctx context.Context, in *GetAccountOffersRequest, opts ...grpc.CallOption) (*GetAccountOffersResponse, error) {
	out := new(GetAccountOffersResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetAccountOffers", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *queryClient) GetTx(ctx context.Context, in *GetTxRequest, opts ...grpc.CallOption) (*GetTxResponse, error) {
	out := new(GetTxResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetTx", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
