package rpc

import (
	"errors"

	"github.com/LeJamon/goswapd/internal/core/ledger/service"
)

// RpcError is the error shape every method returns. It travels inside
// the result object on the HTTP surface and flat in the response on the
// WebSocket surface.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e *RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes. The negative block is JSON-RPC 2.0; the positive block
// follows the rippled numbering for the conditions swapd can actually
// report, so existing client error tables keep working.
const (
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcMISSING_COMMAND  = 2
	RpcNO_CURRENT       = 4
	RpcNOT_STANDALONE   = 10
	RpcLGR_NOT_FOUND    = 15
	RpcACT_NOT_FOUND    = 19
	RpcTXN_NOT_FOUND    = 24
	RpcNOT_SUPPORTED    = 32
	RpcOBJECT_NOT_FOUND = 92
)

func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: errorString,
		Message:     message,
	}
}

func RpcErrorUnknown(message string) *RpcError {
	return NewRpcError(RpcUNKNOWN, "unknown", message)
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorMissingCommand() *RpcError {
	return NewRpcError(RpcMISSING_COMMAND, "missingCommand", "Missing command field")
}

func RpcErrorNoCurrent(message string) *RpcError {
	return NewRpcError(RpcNO_CURRENT, "noCurrent", message)
}

func RpcErrorNotStandalone(message string) *RpcError {
	return NewRpcError(RpcNOT_STANDALONE, "notStandalone", message)
}

func RpcErrorLgrNotFound(message string) *RpcError {
	return NewRpcError(RpcLGR_NOT_FOUND, "lgrNotFound", message)
}

func RpcErrorActNotFound(message string) *RpcError {
	return NewRpcError(RpcACT_NOT_FOUND, "actNotFound", message)
}

func RpcErrorTxnNotFound(message string) *RpcError {
	return NewRpcError(RpcTXN_NOT_FOUND, "txnNotFound", message)
}

func RpcErrorNotSupported(message string) *RpcError {
	return NewRpcError(RpcNOT_SUPPORTED, "notSupported", message)
}

func RpcErrorObjectNotFound(message string) *RpcError {
	return NewRpcError(RpcOBJECT_NOT_FOUND, "objectNotFound", message)
}

func RpcErrorMissingField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "Missing field '"+field+"'.")
}

// errorFromService maps the node's sentinel errors onto RPC errors.
// Anything unrecognized is an internal failure.
func errorFromService(err error) *RpcError {
	switch {
	case errors.Is(err, service.ErrNotStarted):
		return RpcErrorNoCurrent("Node has no open ledger yet.")
	case errors.Is(err, service.ErrNotStandalone):
		return RpcErrorNotStandalone("Method is only available in standalone mode.")
	case errors.Is(err, service.ErrLedgerNotFound):
		return RpcErrorLgrNotFound("Ledger not found.")
	case errors.Is(err, service.ErrAccountNotFound):
		return RpcErrorActNotFound("Account not found.")
	case errors.Is(err, service.ErrOfferNotFound):
		return RpcErrorObjectNotFound("Offer not found.")
	case errors.Is(err, service.ErrTxNotFound):
		return RpcErrorTxnNotFound("Transaction not found.")
	case errors.Is(err, service.ErrNoJournal):
		return RpcErrorNotSupported("Node is running without a transaction journal.")
	case errors.Is(err, service.ErrInvalidAddress):
		return RpcErrorInvalidParams("Invalid account address.")
	case errors.Is(err, service.ErrInvalidOfferID):
		return RpcErrorInvalidParams("Invalid offer identifier.")
	case errors.Is(err, service.ErrInvalidLedgerSpec):
		return RpcErrorInvalidParams("Invalid ledger specifier.")
	default:
		return RpcErrorInternal(err.Error())
	}
}
