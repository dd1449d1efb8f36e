package kernel

import (
	"minikernel/internal/buildinfo"
	"minikernel/internal/idgen"
)

// Boot brings the kernel up on the machine's boot context: it installs the
// trap table, creates the initial program and switches to it. It does not
// return.
func (k *Kernel) Boot() {
	k.reset()
	k.install()
	if k.bootID == "" {
		k.bootID = idgen.New()
	}
	k.printf("minikernel %s booting, boot id %s", buildinfo.Short(), idgen.Short(k.bootID))

	pid, err := k.createProcess(k.cfg.Init)
	if err != nil {
		k.hal.Panic("initial process not found")
	}
	k.printf("init %q is pid %d", k.cfg.Init, pid)

	first := k.pickNext()
	k.cur = first
	first.state = StateRunning
	k.hal.Swap(nil, first.ctx)
}

// BootID returns the identifier of the current boot.
func (k *Kernel) BootID() string { return k.bootID }
