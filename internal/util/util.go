//go:build !windows

package util

func IsRunFromGUI() bool {
	// On non-Windows, always return false. Double-clicking a binary into a
	// translator daemon is a Windows habit; elsewhere there is systemd,
	// nohup, and a bazillion other ways to run this.
	return false
}
