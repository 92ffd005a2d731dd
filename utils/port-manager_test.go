package utils

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckListenAddress(t *testing.T) {
	// port 0 lets the OS pick a free port
	assert.NoError(t, CheckListenAddress("127.0.0.1:0"))
}

func TestCheckListenAddress_InUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "Failed to create test listener")
	defer listener.Close()

	err = CheckListenAddress(listener.Addr().String())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAddressInUse)
}

func TestCheckListenAddress_Invalid(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"Port too high", "127.0.0.1:65536"},
		{"Negative port", "127.0.0.1:-1"},
		{"Missing port", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, CheckListenAddress(tt.addr), ErrAddressInUse)
		})
	}
}
