package executor

import (
	"math/big"

	"github.com/filecoin-project/go-fvm-core/abi"
)

// GasOutputs is the settlement split spec.md §4.7 step 9 describes in
// prose: how much of a message's upfront gas_limit*fee_cap payment burns,
// goes to the miner, and refunds to the sender. Grounded field-for-field on
// original_source's GasOutputs::compute (fvm/src/gas/outputs.rs), which
// resolves the distilled spec's compressed formula into an exact algorithm;
// the prose alone under-specifies the over-estimation-burn piecewise
// function and the fee_cap-vs-base_fee clamping order.
type GasOutputs struct {
	BaseFeeBurn        abi.TokenAmount
	OverEstimationBurn abi.TokenAmount
	MinerPenalty       abi.TokenAmount
	MinerTip           abi.TokenAmount
	Refund             abi.TokenAmount

	GasRefund int64
	GasBurned int64
}

const (
	gasOveruseNum   = 11
	gasOveruseDenom = 10
)

// computeGasOutputs mirrors GasOutputs::compute exactly, working in
// *big.Int internally so the intermediate (base_fee - fee_cap) and
// (base_fee - base_fee_to_pay) subtractions - logically non-negative in the
// branches that use them, but not provably so to the type checker - never
// have to pass through the non-negative-enforcing abi.TokenAmount until the
// final, always-non-negative result.
func computeGasOutputs(gasUsed, gasLimit int64, baseFee, feeCap, gasPremium abi.TokenAmount) (GasOutputs, error) {
	base := baseFee.Int()
	feeCapBig := feeCap.Int()
	premium := gasPremium.Int()
	used := big.NewInt(gasUsed)
	limit := big.NewInt(gasLimit)

	var out GasOutputs
	minerPenalty := big.NewInt(0)

	baseFeeToPay := new(big.Int).Set(base)
	if base.Cmp(feeCapBig) > 0 {
		baseFeeToPay.Set(feeCapBig)
		minerPenalty.Mul(new(big.Int).Sub(base, feeCapBig), used)
	}

	baseFeeBurn := new(big.Int).Mul(baseFeeToPay, used)

	minerTip := new(big.Int).Set(premium)
	if sum := new(big.Int).Add(baseFeeToPay, minerTip); sum.Cmp(feeCapBig) > 0 {
		minerTip.Sub(feeCapBig, baseFeeToPay)
	}
	minerTip.Mul(minerTip, limit)

	gasRefund, gasBurned := computeGasOverestimationBurn(gasUsed, gasLimit)
	out.GasRefund = gasRefund
	out.GasBurned = gasBurned

	overEstimationBurn := big.NewInt(0)
	if gasBurned != 0 {
		burned := big.NewInt(gasBurned)
		overEstimationBurn.Mul(baseFeeToPay, burned)
		minerPenalty.Add(minerPenalty, new(big.Int).Mul(new(big.Int).Sub(base, baseFeeToPay), burned))
	}

	requiredFunds := new(big.Int).Mul(feeCapBig, limit)
	refund := new(big.Int).Sub(requiredFunds, baseFeeBurn)
	refund.Sub(refund, minerTip)
	refund.Sub(refund, overEstimationBurn)

	var err error
	if out.BaseFeeBurn, err = abi.NewTokenAmount(baseFeeBurn); err != nil {
		return GasOutputs{}, err
	}
	if out.OverEstimationBurn, err = abi.NewTokenAmount(overEstimationBurn); err != nil {
		return GasOutputs{}, err
	}
	if out.MinerPenalty, err = abi.NewTokenAmount(minerPenalty); err != nil {
		return GasOutputs{}, err
	}
	if out.MinerTip, err = abi.NewTokenAmount(minerTip); err != nil {
		return GasOutputs{}, err
	}
	if out.Refund, err = abi.NewTokenAmount(refund); err != nil {
		return GasOutputs{}, err
	}
	return out, nil
}

// computeGasOverestimationBurn splits the unused portion of gas_limit
// (gas_limit - gas_used) into a refunded part and a burned part: a message
// that asked for much more gas than it used (beyond the 1.1x overuse
// allowance) is charged a burn proportional to how far over the allowance
// it went, discouraging inflated gas_limit estimates without punishing
// reasonable headroom.
func computeGasOverestimationBurn(gasUsed, gasLimit int64) (gasRefund, gasBurned int64) {
	if gasUsed == 0 {
		return 0, gasLimit
	}

	over := gasLimit - (gasOveruseNum*gasUsed)/gasOveruseDenom
	if over < 0 {
		return gasLimit - gasUsed, 0
	}
	if over > gasUsed {
		over = gasUsed
	}

	gasToBurn := new(big.Int).Mul(big.NewInt(gasLimit-gasUsed), big.NewInt(over))
	gasToBurn.Quo(gasToBurn, big.NewInt(gasUsed))

	burned := gasToBurn.Int64()
	return gasLimit - gasUsed - burned, burned
}
