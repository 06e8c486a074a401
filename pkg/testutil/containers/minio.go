//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUser     = "agrocert"
	minioPassword = "agrocert-secret"
)

// MinioContainer wraps an S3-compatible object store.
type MinioContainer struct {
	Container testcontainers.Container
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewMinioContainer starts a single-node MinIO server.
func NewMinioContainer(t *testing.T) *MinioContainer {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:RELEASE.2024-11-07T00-52-20Z",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     minioUser,
				"MINIO_ROOT_PASSWORD": minioPassword,
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start minio container: %v", err)
	}

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get minio endpoint: %v", err)
	}

	return &MinioContainer{
		Container: container,
		Endpoint:  endpoint,
		AccessKey: minioUser,
		SecretKey: minioPassword,
	}
}
