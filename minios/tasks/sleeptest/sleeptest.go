// Package sleeptest exercises the sleep call: SleepTest starts two sleepers
// and exits while they doze.
package sleeptest

import (
	"minikernel/hal"
	"minikernel/minios/client/sys"
)

const SleeperName = "sleeper"

func SleepTest() hal.Entry {
	return sys.Main(func(e *sys.Env) {
		e.Printf("sleep_test: start\n")
		for i := 0; i < 2; i++ {
			if _, err := e.CreateProcess(SleeperName); err != nil {
				e.Printf("sleep_test: cannot create %s: %v\n", SleeperName, err)
			}
		}
		e.Printf("sleep_test: done\n")
	})
}

// Sleeper sleeps secs seconds between two messages.
func Sleeper(secs int) hal.Entry {
	return sys.Main(func(e *sys.Env) {
		pid := e.GetPID()
		e.Printf("sleeper %d: sleeping %ds\n", pid, secs)
		if err := e.Sleep(secs); err != nil {
			e.Printf("sleeper %d: %v\n", pid, err)
		}
		e.Printf("sleeper %d: awake\n", pid)
	})
}
