// Package tasks registers the bundled user programs.
package tasks

import (
	"minikernel/hal"
	"minikernel/minios/loader"
	"minikernel/minios/tasks/fault"
	"minikernel/minios/tasks/initproc"
	"minikernel/minios/tasks/mutexcreator"
	"minikernel/minios/tasks/mutexdemo"
	"minikernel/minios/tasks/sleeptest"
	"minikernel/minios/tasks/spinner"
)

// Register adds every bundled program to r. init starts children.
func Register(r *loader.Registry, children []string) error {
	progs := []struct {
		name  string
		entry hal.Entry
	}{
		{"init", initproc.New(children)},
		{"sleep_test", sleeptest.SleepTest()},
		{sleeptest.SleeperName, sleeptest.Sleeper(1)},
		{"mutex_creator", mutexcreator.New(18, 4, 1)},
		{mutexdemo.Name, mutexdemo.Demo(3)},
		{mutexdemo.WorkerName, mutexdemo.Worker()},
		{"fault_arith", fault.Arithmetic()},
		{"fault_mem", fault.Memory()},
		{"spinner", spinner.New(5, 200)},
	}
	for _, p := range progs {
		if err := r.Register(p.name, p.entry); err != nil {
			return err
		}
	}
	return nil
}
