//go:build unix

package lock

import "golang.org/x/sys/unix"

// SameProcessGroup reports whether pid belongs to our process group. A
// process we cannot inspect is treated as a stranger.
func SameProcessGroup(pid int) bool {
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		return false
	}
	return pgid == unix.Getpgrp()
}
