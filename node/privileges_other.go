//go:build !linux

package node

import "fmt"

func setGID(gid int) error {
	return fmt.Errorf("node: setting process_gid is not supported on this platform")
}

func setUID(uid int) error {
	return fmt.Errorf("node: setting process_uid is not supported on this platform")
}
