package dbc

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DeriveMigratedPool computes the graduated cp-amm pool address for a
// completed curve. The migration keeper creates the pool at a PDA of the
// cp-amm program seeded by the fee tier and the pair's mints, so the address
// is fully determined by curve state.
func DeriveMigratedPool(cpammProgram solana.PublicKey, curve *Curve) (solana.PublicKey, error) {
	seeds := [][]byte{
		[]byte("pool"),
		{curve.State.MigrationFeeTier},
		curve.State.QuoteMint.Bytes(),
		curve.State.BaseMint.Bytes(),
	}
	addr, _, err := solana.FindProgramAddress(seeds, cpammProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("dbc: derive migrated pool for %s: %w", curve.Address, err)
	}
	return addr, nil
}
