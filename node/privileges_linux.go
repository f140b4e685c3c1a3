//go:build linux

package node

import "syscall"

func setGID(gid int) error {
	return syscall.Setgid(gid)
}

func setUID(uid int) error {
	return syscall.Setuid(uid)
}
