package registry

import (
	"context"
	"encoding/json"
	"fmt"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const etcdPrefix = "/duplexrpc/"

// EtcdRegistry publishes endpoints in etcd under
// /duplexrpc/{service}/{addr}, with a TTL lease kept alive in the
// background so a crashed peer disappears once its lease expires.
type EtcdRegistry struct {
	client *clientv3.Client
}

// NewEtcd connects to the given etcd endpoints.
func NewEtcd(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{Endpoints: endpoints})
	if err != nil {
		return nil, fmt.Errorf("etcd connect: %w", err)
	}
	return &EtcdRegistry{client: c}, nil
}

// Close releases the etcd client.
func (r *EtcdRegistry) Close() error {
	return r.client.Close()
}

func etcdKey(service, addr string) string {
	return etcdPrefix + service + "/" + addr
}

func (r *EtcdRegistry) Register(service string, ep Endpoint, ttl int64) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("etcd lease: %w", err)
	}

	val, err := json.Marshal(ep)
	if err != nil {
		return err
	}

	if _, err := r.client.Put(ctx, etcdKey(service, ep.Addr), string(val), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("etcd put: %w", err)
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return fmt.Errorf("etcd keepalive: %w", err)
	}
	// Keepalive responses must be consumed or the channel fills up.
	go func() {
		for range ch {
		}
	}()
	return nil
}

func (r *EtcdRegistry) Deregister(service string, addr string) error {
	if _, err := r.client.Delete(context.TODO(), etcdKey(service, addr)); err != nil {
		return fmt.Errorf("etcd delete: %w", err)
	}
	return nil
}

func (r *EtcdRegistry) Discover(service string) ([]Endpoint, error) {
	resp, err := r.client.Get(context.TODO(), etcdPrefix+service+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("etcd get: %w", err)
	}

	eps := make([]Endpoint, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var ep Endpoint
		if err := json.Unmarshal(kv.Value, &ep); err != nil {
			continue
		}
		eps = append(eps, ep)
	}
	return eps, nil
}

// Watch follows the service prefix and re-reads the full endpoint list on
// every change; parsing individual events buys nothing at this scale.
func (r *EtcdRegistry) Watch(service string) <-chan []Endpoint {
	ch := make(chan []Endpoint, 1)

	go func() {
		watchCh := r.client.Watch(context.TODO(), etcdPrefix+service+"/", clientv3.WithPrefix())
		for range watchCh {
			eps, err := r.Discover(service)
			if err != nil {
				continue
			}
			ch <- eps
		}
	}()

	return ch
}
