//go:build integration

// Package containers starts the backing services used by integration tests.
// Containers are shared per test binary through the Manager singleton.
package containers

import (
	"sync"
	"testing"
)

// Manager lazily starts one container per backend and hands the same
// instance to every suite in the test binary.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	redis    *RedisContainer
	redpanda *RedpandaContainer
	minio    *MinioContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the process-wide Manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetPostgres returns the shared Postgres container with migrations applied.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

// GetRedis returns the shared Redis container.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = newRedisContainer(t)
	}
	return m.redis
}

// GetRedpanda returns the shared Kafka-compatible broker.
func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redpanda == nil {
		m.redpanda = NewRedpandaContainer(t)
	}
	return m.redpanda
}

// GetMinio returns the shared object store.
func (m *Manager) GetMinio(t *testing.T) *MinioContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.minio == nil {
		m.minio = NewMinioContainer(t)
	}
	return m.minio
}
