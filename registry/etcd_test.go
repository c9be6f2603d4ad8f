package registry

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Needs a running etcd; set ETCD_ENDPOINTS (comma separated) to enable.
func etcdForTest(t *testing.T) *EtcdRegistry {
	t.Helper()

	env := os.Getenv("ETCD_ENDPOINTS")
	if env == "" {
		t.Skip("ETCD_ENDPOINTS not set")
	}

	reg, err := NewEtcd(strings.Split(env, ","))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestEtcdRegisterAndDiscover(t *testing.T) {
	reg := etcdForTest(t)

	ep1 := Endpoint{Addr: "127.0.0.1:8001", Weight: 10, Version: "1.0"}
	ep2 := Endpoint{Addr: "127.0.0.1:8002", Weight: 5, Version: "1.0"}

	require.NoError(t, reg.Register("calc-test", ep1, 10))
	require.NoError(t, reg.Register("calc-test", ep2, 10))
	t.Cleanup(func() {
		reg.Deregister("calc-test", ep1.Addr)
		reg.Deregister("calc-test", ep2.Addr)
	})

	eps, err := reg.Discover("calc-test")
	require.NoError(t, err)
	require.Len(t, eps, 2)

	require.NoError(t, reg.Deregister("calc-test", ep1.Addr))
	time.Sleep(100 * time.Millisecond)

	eps, err = reg.Discover("calc-test")
	require.NoError(t, err)
	require.Len(t, eps, 1)
}
