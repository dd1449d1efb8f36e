package kernel

import (
	"bytes"
	"errors"

	"minikernel/internal/tracing"
	"minikernel/minios/proto"
)

// syscall runs the call named in the call register and stores its result.
func (k *Kernel) syscall() {
	p := k.cur
	call := proto.Call(k.hal.Register(proto.RegCall))
	if !call.Valid() {
		k.printf("pid %d: unknown system call %d", p.id, int64(call))
		k.hal.SetRegister(proto.RegResult, int64(proto.ErrGeneric))
		return
	}

	_, span := tracing.StartSpan(k.ctx, "syscall."+call.String())
	span.WithInt("pid", int64(p.id))
	if call == proto.CallExit {
		span.OnDone()
		k.terminateCurrent()
	}

	res, err := k.invoke(call)
	span.WithInt("result", res)
	tracing.EndSpan(span, err)
	k.hal.SetRegister(proto.RegResult, res)
}

func (k *Kernel) invoke(call proto.Call) (int64, error) {
	arg1 := k.hal.Register(proto.RegArg1)
	arg2 := k.hal.Register(proto.RegArg2)

	switch call {
	case proto.CallCreateProcess:
		name, err := k.readString(arg1, k.cfg.MaxProgName)
		if err != nil {
			return result(-1, err)
		}
		pid, err := k.createProcess(name)
		return result(int64(pid), err)
	case proto.CallWrite:
		return result(0, k.write(arg1, arg2))
	case proto.CallGetPID:
		return int64(k.cur.id), nil
	case proto.CallSleep:
		return result(0, k.sleep(arg1))
	case proto.CallCreateMutex:
		name, err := k.readString(arg1, k.cfg.MaxMutexName)
		if err != nil {
			return result(-1, err)
		}
		d, err := k.createMutex(name, proto.MutexKind(arg2))
		return result(int64(d), err)
	case proto.CallOpenMutex:
		name, err := k.readString(arg1, k.cfg.MaxMutexName)
		if err != nil {
			return result(-1, err)
		}
		d, err := k.openMutex(name)
		return result(int64(d), err)
	case proto.CallLock:
		return result(k.lock(arg1))
	case proto.CallUnlock:
		return result(k.unlock(arg1))
	case proto.CallCloseMutex:
		return result(0, k.closeMutex(arg1))
	}
	return int64(proto.ErrGeneric), proto.ErrGeneric
}

func result(v int64, err error) (int64, error) {
	if err == nil {
		return v, nil
	}
	var errno proto.Errno
	if errors.As(err, &errno) {
		return int64(errno), err
	}
	return int64(proto.ErrGeneric), err
}

// readString reads a NUL-terminated string of at most max bytes from the
// current image.
func (k *Kernel) readString(addr int64, max int) (string, error) {
	buf := make([]byte, max+1)
	n, _ := k.cur.image.ReadAt(buf, addr)
	if i := bytes.IndexByte(buf[:n], 0); i >= 0 {
		return string(buf[:i]), nil
	}
	if n < len(buf) {
		return "", proto.ErrInvalidArgument
	}
	return "", proto.ErrNameTooLong
}

// write copies n bytes at addr of the current image to the console.
func (k *Kernel) write(addr, n int64) error {
	if n < 0 {
		return proto.ErrInvalidArgument
	}
	var chunk [256]byte
	for n > 0 {
		c := chunk[:min(n, int64(len(chunk)))]
		if _, err := k.cur.image.ReadAt(c, addr); err != nil {
			return proto.ErrInvalidArgument
		}
		if _, err := k.hal.Console().Write(c); err != nil {
			return proto.ErrGeneric
		}
		addr += int64(len(c))
		n -= int64(len(c))
	}
	return nil
}
