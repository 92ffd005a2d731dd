//go:build windows

package utils

import (
	"os/exec"
	"syscall"
)

// CREATE_NEW_PROCESS_GROUP | DETACHED_PROCESS
const detachedFlags = 0x00000200 | 0x00000008

// ConfigureDetachedProcAttr starts cmd detached from the daemon's console.
func ConfigureDetachedProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: detachedFlags,
	}
}
