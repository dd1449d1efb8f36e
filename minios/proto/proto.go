package proto

// Call is a system call number, passed in RegCall.
type Call int64

const (
	CallCreateProcess Call = iota
	CallExit
	CallWrite
	CallGetPID
	CallSleep
	CallCreateMutex
	CallOpenMutex
	CallLock
	CallUnlock
	CallCloseMutex

	NumCalls
)

func (c Call) String() string {
	switch c {
	case CallCreateProcess:
		return "create_process"
	case CallExit:
		return "exit"
	case CallWrite:
		return "write"
	case CallGetPID:
		return "get_pid"
	case CallSleep:
		return "sleep"
	case CallCreateMutex:
		return "create_mutex"
	case CallOpenMutex:
		return "open_mutex"
	case CallLock:
		return "lock"
	case CallUnlock:
		return "unlock"
	case CallCloseMutex:
		return "close_mutex"
	default:
		return "unknown"
	}
}

// Valid reports whether c names an entry of the call table.
func (c Call) Valid() bool { return c >= 0 && c < NumCalls }

// Register convention of the trap instruction.
//
// The call number goes in RegCall, arguments in RegArg1 and RegArg2. The result
// overwrites RegCall.
const (
	RegCall   = 0
	RegResult = 0
	RegArg1   = 1
	RegArg2   = 2
)

// MutexKind selects the locking semantics of a mutex at creation.
type MutexKind int64

const (
	NonRecursive MutexKind = iota
	Recursive
)

func (k MutexKind) String() string {
	switch k {
	case NonRecursive:
		return "non_recursive"
	case Recursive:
		return "recursive"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known mutex kind.
func (k MutexKind) Valid() bool { return k == NonRecursive || k == Recursive }
