package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	addresscodec "github.com/LeJamon/goswapd/internal/codec/address-codec"
	"github.com/LeJamon/goswapd/internal/core/ledger/record"
	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// Server hosts the query service over one node.
type Server struct {
	mu sync.Mutex

	node    *service.Service
	version string
	cfg     *ServerConfig

	grpcServer *grpc.Server
	listener   net.Listener
	running    bool
}

// NewServer builds a server for the given node.
func NewServer(cfg *ServerConfig, node *service.Service, version string) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gs := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.recvMsgSize()),
		grpc.MaxSendMsgSize(cfg.sendMsgSize()),
	)
	s := &Server{
		node:       node,
		version:    version,
		cfg:        cfg,
		grpcServer: gs,
	}
	RegisterQueryServer(gs, s)
	return s, nil
}

// Serve listens on the configured address and blocks until Stop or a
// listener failure.
func (s *Server) Serve() error {
	ln, err := s.bind()
	if err != nil {
		return err
	}
	return s.serve(ln)
}

// ServeListener serves on a caller-supplied listener. Tests use this
// with in-memory listeners.
func (s *Server) ServeListener(ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("grpc: server already running")
	}
	s.listener = ln
	s.running = true
	s.mu.Unlock()
	return s.serve(ln)
}

func (s *Server) serve(ln net.Listener) error {
	// Stop before Serve leaves the server stopped; that ordering is a
	// clean shutdown, not a failure.
	if err := s.grpcServer.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) bind() (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, errors.New("grpc: server already running")
	}
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen %s: %w", s.cfg.Address, err)
	}
	s.listener = ln
	s.running = true
	return ln, nil
}

// Stop drains in-flight calls and stops the server. Safe to call at
// any point relative to Serve, and more than once.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Addr returns the bound address, or empty before Serve.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GetServerInfo implements QueryServer.
func (s *Server) GetServerInfo(ctx context.Context, req *GetServerInfoRequest) (*GetServerInfoResponse, error) {
	info, err := s.node.Info()
	if err != nil {
		return nil, statusFromService(err)
	}
	return &GetServerInfoResponse{
		Version:            s.version,
		NetworkID:          info.NetworkID,
		Standalone:         info.Standalone,
		CompleteLedgers:    info.CompleteLedgers,
		OpenSequence:       info.OpenSequence,
		OpenTxCount:        info.OpenTxCount,
		ValidatedSequence:  info.ValidatedSequence,
		ValidatedHash:      info.ValidatedHash,
		ValidatedCloseTime: info.ValidatedCloseTime,
		TotalSupply:        info.TotalSupply.Units(),
		BaseFee:            info.Fees.Base.Units(),
		AccountReserve:     info.Fees.Reserve.Units(),
		OfferIncrement:     info.Fees.Increment.Units(),
		UptimeSeconds:      int64(info.Uptime.Seconds()),
	}, nil
}

// GetLedger implements QueryServer.
func (s *Server) GetLedger(ctx context.Context, req *GetLedgerRequest) (*GetLedgerResponse, error) {
	l, err := s.node.ResolveLedger(ctx, req.Specifier)
	if err != nil {
		return nil, statusFromService(err)
	}
	h := l.Header()
	return &GetLedgerResponse{
		Sequence:    h.Sequence,
		Hash:        h.Hash,
		ParentHash:  h.ParentHash,
		CloseTime:   h.CloseTime,
		TotalSupply: h.TotalSupply.Units(),
		TxCount:     l.TxCount(),
		EntryCount:  l.EntryCount(),
		Closed:      h.Closed,
		Validated:   h.Validated,
	}, nil
}

// GetAccount implements QueryServer.
func (s *Server) GetAccount(ctx context.Context, req *GetAccountRequest) (*GetAccountResponse, error) {
	res, err := s.node.AccountInfo(ctx, req.Address, req.Ledger)
	if err != nil {
		return nil, statusFromService(err)
	}
	return &GetAccountResponse{
		Address:        res.Address,
		Balance:        res.Root.Balance.Units(),
		Sequence:       res.Root.Sequence,
		OwnerCount:     res.Root.OwnerCount,
		LedgerSequence: res.LedgerSequence,
		Validated:      res.Validated,
	}, nil
}

// GetOffer implements QueryServer.
func (s *Server) GetOffer(ctx context.Context, req *GetOfferRequest) (*GetOfferResponse, error) {
	res, err := s.node.Offer(ctx, req.OfferID, req.Ledger)
	if err != nil {
		return nil, statusFromService(err)
	}
	return &GetOfferResponse{
		Offer:          offerState(res.OfferID, res.Offer),
		LedgerSequence: res.LedgerSequence,
		Validated:      res.Validated,
	}, nil
}

// GetAccountOffers implements QueryServer.
func (s *Server) GetAccountOffers(ctx context.Context, req *GetAccountOffersRequest) (*GetAccountOffersResponse, error) {
	res, err := s.node.AccountOffers(ctx, req.Address, req.Ledger)
	if err != nil {
		return nil, statusFromService(err)
	}
	offers := make([]OfferState, 0, len(res.Offers))
	for _, o := range res.Offers {
		offers = append(offers, offerState(o.OfferID, o.Offer))
	}
	return &GetAccountOffersResponse{
		Address:        res.Address,
		Offers:         offers,
		LedgerSequence: res.LedgerSequence,
		Validated:      res.Validated,
	}, nil
}

// GetTx implements QueryServer.
func (s *Server) GetTx(ctx context.Context, req *GetTxRequest) (*GetTxResponse, error) {
	res, err := s.node.Tx(ctx, req.Hash)
	if err != nil {
		return nil, statusFromService(err)
	}
	return &GetTxResponse{
		Hash:           res.Hash,
		LedgerSequence: res.LedgerSequence,
		CloseTime:      res.CloseTime,
		Validated:      res.Validated,
		Blob:           res.Blob,
		MetaJSON:       res.MetaJSON,
	}, nil
}

// offerState projects a record into its transport form.
func offerState(offerID string, o *record.Offer) OfferState {
	st := OfferState{
		OfferID:        offerID,
		Kind:           o.Kind.String(),
		Status:         o.Status.String(),
		Maker:          classicAddress(o.Maker),
		OfferAsset:     o.OfferAsset.String(),
		OfferAmount:    o.OfferAmount.Units(),
		ReceiveAsset:   o.ReceiveAsset.String(),
		ReceiveAmount:  o.ReceiveAmount.Units(),
		Balance:        o.Balance.Units(),
		EscrowedNative: o.EscrowedNative.Units(),
		IsCounter:      o.IsCounter,
		Salt:           o.Salt,
	}
	if o.Taker != nil {
		st.Taker = classicAddress(*o.Taker)
	}
	if o.Expiration != nil {
		st.Expiration = *o.Expiration
	}
	if o.OriginOffer != nil {
		st.OriginOffer = fmt.Sprintf("%X", o.OriginOffer[:])
	}
	return st
}

func classicAddress(id [20]byte) string {
	addr, err := addresscodec.EncodeAccountIDToClassicAddress(id[:])
	if err != nil {
		return ""
	}
	return addr
}

// statusFromService translates node errors into grpc status codes.
func statusFromService(err error) error {
	switch {
	case errors.Is(err, service.ErrLedgerNotFound),
		errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrOfferNotFound),
		errors.Is(err, service.ErrTxNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidLedgerSpec),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrInvalidOfferID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotStarted):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, service.ErrNoJournal):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
