//go:build windows

// Package process terminates the headless browser together with the
// helper processes it spawns (renderer, GPU, zygote).
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its child tree with taskkill.
// /F forces termination, /T includes children.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
