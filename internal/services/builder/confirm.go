package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrConfirmTimeout means the attempt budget ran out without a terminal
// status. Distinct from an on-chain failure: the transaction may still land,
// so callers get the signature alongside this error.
var ErrConfirmTimeout = errors.New("transaction confirmation timeout")

// ConfirmSignature polls signature status at a fixed interval for a bounded
// number of attempts. An on-chain error result fails immediately.
func ConfirmSignature(ctx context.Context, rpcClient *rpc.Client, sig solana.Signature, attempts int, interval time.Duration) error {
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}

		out, err := rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil || len(out.Value) == 0 || out.Value[0] == nil {
			continue
		}
		st := out.Value[0]
		if st.Err != nil {
			return fmt.Errorf("transaction failed on-chain: %v", st.Err)
		}
		if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
	}
	return ErrConfirmTimeout
}
