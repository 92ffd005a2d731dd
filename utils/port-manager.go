package utils

import (
	"errors"
	"fmt"
	"net"
)

var ErrAddressInUse = errors.New("listen address is not available")

// CheckListenAddress binds addr briefly so a second daemon fails before
// detaching instead of silently in the background.
func CheckListenAddress(addr string) error {
	Verbose("Checking if %s is available", addr)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		Verbose("error: %v", err)
		return fmt.Errorf("%w: %s: %v", ErrAddressInUse, addr, err)
	}
	return listener.Close()
}
