package kernel

// GetChainRandomness returns the chain-derived randomness for (pers, epoch,
// entropy), charging on_get_randomness first. Delegates entirely to the
// externs.Rand collaborator; the kernel adds only pricing and performs no
// lookback bound check of its own.
func (d *Default) GetChainRandomness(pers int64, epoch int64, entropy []byte) ([32]byte, error) {
	if err := d.chargeOrAbort(d.pricelist.OnGetRandomness(d.ctx.Epoch - epoch)); err != nil {
		return [32]byte{}, err
	}
	return d.ext.GetChainRandomness(pers, epoch, entropy)
}

func (d *Default) GetBeaconRandomness(pers int64, epoch int64, entropy []byte) ([32]byte, error) {
	if err := d.chargeOrAbort(d.pricelist.OnGetRandomness(d.ctx.Epoch - epoch)); err != nil {
		return [32]byte{}, err
	}
	return d.ext.GetBeaconRandomness(pers, epoch, entropy)
}
