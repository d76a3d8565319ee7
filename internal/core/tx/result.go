package tx

import "fmt"

// Result is an engine result code. The numeric ranges follow the
// classic layout: tes is 0, tec codes are positive and claim the fee,
// and the negative ranges (tef, tel, tem, ter) leave the ledger
// untouched.
type Result int

// Success
const (
	TesSUCCESS Result = 0
)

// tec: the transaction failed but the fee was claimed and the sequence
// consumed. Range 100-199.
const (
	TecUNFUNDED             Result = 129 // Not enough spendable balance
	TecNO_PERMISSION        Result = 139 // Sender is not allowed to do this
	TecNO_ENTRY             Result = 140 // Referenced ledger record missing
	TecINSUFFICIENT_RESERVE Result = 141 // Balance would fall under the reserve
	TecINTERNAL             Result = 144 // Internal processing fault
	TecEXPIRED              Result = 148 // Offer expiration has passed
	TecDUPLICATE            Result = 149 // Record already exists
	TecINSUFFICIENT_FUNDS   Result = 159 // Not enough funds to settle

	TecOFFER_NOT_ACTIVE  Result = 174 // Offer is not in the active state
	TecOFFER_MISMATCH    Result = 175 // Presented terms differ from the offer
	TecASSET_MISMATCH    Result = 176 // Asset does not match the offer leg
	TecADDRESS_MISMATCH  Result = 177 // Derived offer key does not match
	TecWRONG_OWNER       Result = 178 // Record owned by someone else
	TecBAD_RECORD        Result = 179 // Stored record failed to parse
	TecOVERFLOW          Result = 180 // Amount arithmetic overflowed
)

// tef: the transaction cannot ever succeed against this ledger state.
// Range -199..-100.
const (
	TefFAILURE       Result = -199
	TefBAD_AUTH      Result = -196 // Signing key does not control the account
	TefINTERNAL      Result = -192
	TefPAST_SEQ      Result = -190 // Sequence already consumed
	TefMAX_LEDGER    Result = -187 // LastLedgerSequence already passed
	TefBAD_SIGNATURE Result = -186
)

// tel: local node error, the transaction may succeed elsewhere or
// later. Range -399..-300.
const (
	TelLOCAL_ERROR     Result = -399
	TelBAD_PUBLIC_KEY  Result = -396
	TelINSUF_FEE_P     Result = -394 // Fee below the current minimum

	TelWRONG_NETWORK                     Result = -386
	TelREQUIRES_NETWORK_ID               Result = -385
	TelNETWORK_ID_MAKES_TX_NON_CANONICAL Result = -384
)

// tem: malformed transaction, can never succeed on any ledger.
// Range -299..-200.
const (
	TemMALFORMED       Result = -299
	TemBAD_AMOUNT      Result = -298
	TemBAD_EXPIRATION  Result = -296
	TemBAD_FEE         Result = -295
	TemBAD_OFFER       Result = -292
	TemBAD_SEQUENCE    Result = -283
	TemBAD_SIGNATURE   Result = -282
	TemBAD_SRC_ACCOUNT Result = -281
	TemDST_IS_SRC      Result = -279
	TemDST_NEEDED      Result = -278
	TemINVALID         Result = -277
	TemINVALID_FLAG    Result = -276
	TemREDUNDANT       Result = -275
)

// ter: not applicable right now, retry in a later ledger.
// Range -99..-1.
const (
	TerRETRY       Result = -99
	TerINSUF_FEE_B Result = -97 // Account balance cannot pay the fee
	TerNO_ACCOUNT  Result = -96 // Source account not yet funded
	TerPRE_SEQ     Result = -92 // Sequence in the future
)

// String returns the canonical lowercase-prefixed code name.
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecUNFUNDED:
		return "tecUNFUNDED"
	case TecNO_PERMISSION:
		return "tecNO_PERMISSION"
	case TecNO_ENTRY:
		return "tecNO_ENTRY"
	case TecINSUFFICIENT_RESERVE:
		return "tecINSUFFICIENT_RESERVE"
	case TecINTERNAL:
		return "tecINTERNAL"
	case TecEXPIRED:
		return "tecEXPIRED"
	case TecDUPLICATE:
		return "tecDUPLICATE"
	case TecINSUFFICIENT_FUNDS:
		return "tecINSUFFICIENT_FUNDS"
	case TecOFFER_NOT_ACTIVE:
		return "tecOFFER_NOT_ACTIVE"
	case TecOFFER_MISMATCH:
		return "tecOFFER_MISMATCH"
	case TecASSET_MISMATCH:
		return "tecASSET_MISMATCH"
	case TecADDRESS_MISMATCH:
		return "tecADDRESS_MISMATCH"
	case TecWRONG_OWNER:
		return "tecWRONG_OWNER"
	case TecBAD_RECORD:
		return "tecBAD_RECORD"
	case TecOVERFLOW:
		return "tecOVERFLOW"
	case TefFAILURE:
		return "tefFAILURE"
	case TefBAD_AUTH:
		return "tefBAD_AUTH"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefPAST_SEQ:
		return "tefPAST_SEQ"
	case TefMAX_LEDGER:
		return "tefMAX_LEDGER"
	case TefBAD_SIGNATURE:
		return "tefBAD_SIGNATURE"
	case TelLOCAL_ERROR:
		return "telLOCAL_ERROR"
	case TelBAD_PUBLIC_KEY:
		return "telBAD_PUBLIC_KEY"
	case TelINSUF_FEE_P:
		return "telINSUF_FEE_P"
	case TelWRONG_NETWORK:
		return "telWRONG_NETWORK"
	case TelREQUIRES_NETWORK_ID:
		return "telREQUIRES_NETWORK_ID"
	case TelNETWORK_ID_MAKES_TX_NON_CANONICAL:
		return "telNETWORK_ID_MAKES_TX_NON_CANONICAL"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemBAD_AMOUNT:
		return "temBAD_AMOUNT"
	case TemBAD_EXPIRATION:
		return "temBAD_EXPIRATION"
	case TemBAD_FEE:
		return "temBAD_FEE"
	case TemBAD_OFFER:
		return "temBAD_OFFER"
	case TemBAD_SEQUENCE:
		return "temBAD_SEQUENCE"
	case TemBAD_SIGNATURE:
		return "temBAD_SIGNATURE"
	case TemBAD_SRC_ACCOUNT:
		return "temBAD_SRC_ACCOUNT"
	case TemDST_IS_SRC:
		return "temDST_IS_SRC"
	case TemDST_NEEDED:
		return "temDST_NEEDED"
	case TemINVALID:
		return "temINVALID"
	case TemINVALID_FLAG:
		return "temINVALID_FLAG"
	case TemREDUNDANT:
		return "temREDUNDANT"
	case TerRETRY:
		return "terRETRY"
	case TerINSUF_FEE_B:
		return "terINSUF_FEE_B"
	case TerNO_ACCOUNT:
		return "terNO_ACCOUNT"
	case TerPRE_SEQ:
		return "terPRE_SEQ"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// IsSuccess returns true if the result indicates success.
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (claimed cost) code.
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code.
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTel returns true if this is a tel (local error) code.
func (r Result) IsTel() bool {
	return r >= -399 && r <= -300
}

// IsTem returns true if this is a tem (malformed) code.
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code.
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// ShouldRetry returns true if the transaction should be retried later.
func (r Result) ShouldRetry() bool {
	return r.IsTer()
}

// IsApplied returns true if the transaction was applied to the ledger.
// This is true for tesSUCCESS and all tec codes.
func (r Result) IsApplied() bool {
	return r.IsSuccess() || r.IsTec()
}

// Class returns the result's class token: tes, tec, ter, tef, tem or
// tel.
func (r Result) Class() string {
	switch {
	case r.IsSuccess():
		return "tes"
	case r.IsTec():
		return "tec"
	case r.IsTer():
		return "ter"
	case r.IsTef():
		return "tef"
	case r.IsTem():
		return "tem"
	case r.IsTel():
		return "tel"
	default:
		return "unknown"
	}
}

// Message returns a human-readable message for the result.
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied. Only final in a validated ledger."
	case TecUNFUNDED:
		return "Insufficient spendable balance."
	case TecNO_PERMISSION:
		return "The sender is not allowed to perform this operation."
	case TecNO_ENTRY:
		return "The referenced ledger record does not exist."
	case TecINSUFFICIENT_RESERVE:
		return "Insufficient reserve to complete requested operation."
	case TecEXPIRED:
		return "The offer's expiration time has passed."
	case TecDUPLICATE:
		return "A record with this key already exists."
	case TecINSUFFICIENT_FUNDS:
		return "Not enough funds to settle the trade."
	case TecOFFER_NOT_ACTIVE:
		return "The offer is no longer active."
	case TecOFFER_MISMATCH:
		return "The presented terms do not match the stored offer."
	case TecASSET_MISMATCH:
		return "The asset does not match the offer leg."
	case TecADDRESS_MISMATCH:
		return "The derived offer key does not match the stored offer."
	case TecWRONG_OWNER:
		return "The record is owned by a different account."
	case TecBAD_RECORD:
		return "The stored record is unreadable."
	case TecOVERFLOW:
		return "Amount arithmetic overflowed."
	case TemBAD_AMOUNT:
		return "Can only trade positive amounts."
	case TemBAD_EXPIRATION:
		return "Malformed expiration."
	case TemBAD_FEE:
		return "Invalid fee."
	case TemBAD_OFFER:
		return "Malformed offer."
	case TemBAD_SEQUENCE:
		return "Sequence number must be non-zero."
	case TemDST_IS_SRC:
		return "Destination may not be source."
	case TemDST_NEEDED:
		return "Destination is required."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TemINVALID_FLAG:
		return "Invalid flags."
	case TemREDUNDANT:
		return "The transaction would do nothing."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerINSUF_FEE_B:
		return "Account balance can't pay fee."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	case TefBAD_AUTH:
		return "The signing key does not control the source account."
	case TefBAD_SIGNATURE:
		return "Invalid signature."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	case TefMAX_LEDGER:
		return "The ledger sequence limit has passed."
	case TelINSUF_FEE_P:
		return "The fee is below the network minimum."
	default:
		return r.String()
	}
}
