package kernel

import (
	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-fvm-core/blocks"
	"github.com/filecoin-project/go-fvm-core/fvmerr"
)

// BlockOpen fails NotFound if c is not in the frame's reachable set.
func (d *Default) BlockOpen(c cid.Cid) (blocks.Handle, uint64, int, error) {
	if !d.reachable[c.KeyString()] {
		return 0, 0, 0, fvmerr.NewSyscallError(fvmerr.NotFound, "cid %s not reachable", c)
	}
	data, codec, err := d.loadBlock(c)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := d.chargeOrAbort(d.pricelist.OnBlockOpen(len(data))); err != nil {
		return 0, 0, 0, err
	}
	id, err := d.registry.Put(codec, data)
	if err != nil {
		return 0, 0, 0, err
	}
	return id, codec, len(data), nil
}

// loadBlock is a seam for the blockstore fetch the call manager wires in;
// Default does not hold a blockstore reference directly so tests can stub
// this without a real store. Overridden via SetBlockLoader.
func (d *Default) loadBlock(c cid.Cid) ([]byte, uint64, error) {
	if d.blockLoader == nil {
		return nil, 0, fvmerr.NewSyscallError(fvmerr.NotFound, "no block loader configured")
	}
	return d.blockLoader(c)
}

// SetBlockLoader installs the function used to resolve a reachable CID to
// its bytes and codec, typically backed by the message's blockstore.
func (d *Default) SetBlockLoader(f func(cid.Cid) ([]byte, uint64, error)) {
	d.blockLoader = f
}

func (d *Default) BlockCreate(codec uint64, data []byte) (blocks.Handle, error) {
	if d.ctx.ReadOnly {
		return 0, fvmerr.NewSyscallError(fvmerr.Forbidden, "block_create forbidden in read-only context")
	}
	if len(data) > d.limits.MaxBlockSize {
		return 0, fvmerr.NewSyscallError(fvmerr.LimitExceeded, "block of %d bytes exceeds max %d", len(data), d.limits.MaxBlockSize)
	}
	if err := d.chargeOrAbort(d.pricelist.OnBlockCreate(len(data))); err != nil {
		return 0, err
	}
	return d.registry.Put(codec, data)
}

func (d *Default) BlockLink(id blocks.Handle, hashFn uint64, hashLen int) (cid.Cid, error) {
	if hashLen > d.limits.MaxCIDLength {
		return cid.Undef, fvmerr.NewSyscallError(fvmerr.IllegalCid, "hash length %d exceeds max CID length %d", hashLen, d.limits.MaxCIDLength)
	}
	b, err := d.registry.Get(id)
	if err != nil {
		return cid.Undef, err
	}
	if err := d.chargeOrAbort(d.pricelist.OnBlockLink(len(b.Data))); err != nil {
		return cid.Undef, err
	}
	c, err := d.registry.Link(id, hashFn, hashLen)
	if err != nil {
		return cid.Undef, err
	}
	d.reachable[c.KeyString()] = true
	if d.blockStorer != nil {
		if err := d.blockStorer(c, b.Data); err != nil {
			return cid.Undef, err
		}
	}
	return c, nil
}

// SetBlockStorer installs the function used to persist a newly linked
// block, typically backed by the message's blockstore staging layer.
func (d *Default) SetBlockStorer(f func(cid.Cid, []byte) error) {
	d.blockStorer = f
}

func (d *Default) BlockRead(id blocks.Handle, offset int, buf []byte) (int, error) {
	b, err := d.registry.Get(id)
	if err != nil {
		return 0, err
	}
	if err := d.chargeOrAbort(d.pricelist.OnBlockRead(len(buf))); err != nil {
		return 0, err
	}
	return d.registry.Read(id, offset, buf)
}

func (d *Default) BlockStat(id blocks.Handle) (uint64, int, error) {
	if err := d.chargeOrAbort(d.pricelist.OnBlockStat()); err != nil {
		return 0, 0, err
	}
	return d.registry.Stat(id)
}
