package ledger

import "errors"

// Sentinel errors for ledger operations. Every guard failure aborts the
// whole operation with no partial state mutation; callers discriminate with
// errors.Is.
var (
	ErrBelowMinimumDeposit   = errors.New("deposit below minimum")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrUnauthorizedSpender   = errors.New("unauthorized spender")
	ErrNotOwner              = errors.New("caller is not the owner")
	ErrRateLimitExceeded     = errors.New("rate limit exceeded")
	ErrUserBlocked           = errors.New("user is blocked")
	ErrPaused                = errors.New("ledger is paused")
	ErrInvalidReceiver       = errors.New("invalid receiver")
	ErrInvalidContentPointer = errors.New("invalid content pointer")
	ErrNotFound              = errors.New("message not found")
	ErrNoRefundAvailable     = errors.New("no refund available")
	ErrInvalidLimit          = errors.New("invalid pagination limit")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidAccount        = errors.New("invalid account")
	ErrInsufficientEscrow    = errors.New("insufficient escrow funds")
	ErrTransferFailed        = errors.New("transfer failed")
	ErrReentrantCall         = errors.New("reentrant call rejected")
	ErrNotSigner             = errors.New("caller is not an escrow signer")
	ErrAlreadyConfirmed      = errors.New("withdrawal already confirmed by caller")
	ErrAlreadyExecuted       = errors.New("withdrawal already executed")
	ErrUnknownWithdrawal     = errors.New("unknown withdrawal")
)
