package kernel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/filecoin-project/go-fvm-core/fvmerr"
)

// Log and StoreArtifact are the debug capability group: inert in
// production execution (no-ops unless the kernel was constructed with
// debug=true), matching spec.md §4.5.9's "only observable in debug-enabled
// execution" requirement.

func (d *Default) Log(msg string) {
	if !d.debug {
		return
	}
	fmt.Fprintf(os.Stderr, "[actor %d] %s\n", d.ctx.ActorID, msg)
}

const maxArtifactNameLen = 256

// StoreArtifact validates name per spec.md §4.5.9 (no path separators, no
// leading dot, bounded length) before writing, regardless of debug mode, so
// callers can't probe filesystem behavior through an error message; the
// write itself is skipped when debug is off.
func (d *Default) StoreArtifact(name string, data []byte) error {
	if len(name) == 0 || len(name) > maxArtifactNameLen {
		return fvmerr.NewSyscallError(fvmerr.IllegalArgument, "artifact name length %d out of range", len(name))
	}
	if strings.ContainsAny(name, "/\\") {
		return fvmerr.NewSyscallError(fvmerr.IllegalArgument, "artifact name %q must not contain a path separator", name)
	}
	if strings.HasPrefix(name, ".") {
		return fvmerr.NewSyscallError(fvmerr.IllegalArgument, "artifact name %q must not begin with '.'", name)
	}
	if !d.debug {
		return nil
	}
	if d.artifactDir == "" {
		return fvmerr.NewSyscallError(fvmerr.IllegalOperation, "no artifact directory configured")
	}
	path := filepath.Join(d.artifactDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fvmerr.NewSyscallError(fvmerr.IllegalOperation, "writing artifact %q: %v", name, err)
	}
	return nil
}
