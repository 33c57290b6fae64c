package provision

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	docker "github.com/fsouza/go-dockerclient"
	"go.uber.org/zap"
)

// ContainerClient is the subset of the docker API the provisioner drives.
// *docker.Client satisfies it.
type ContainerClient interface {
	CreateContainer(opts docker.CreateContainerOptions) (*docker.Container, error)
	StartContainerWithContext(id string, hostConfig *docker.HostConfig, ctx context.Context) error
	InspectContainerWithOptions(opts docker.InspectContainerOptions) (*docker.Container, error)
	RemoveContainer(opts docker.RemoveContainerOptions) error
	PullImage(opts docker.PullImageOptions, auth docker.AuthConfiguration) error
}

// Docker starts an image through the docker daemon and publishes its port
// on a random loopback port.
type Docker struct {
	Image          string
	ContainerPort  int
	StartupTimeout time.Duration
	Logger         *zap.Logger

	// Client talks to the daemon. Nil connects using DOCKER_HOST and friends.
	Client ContainerClient
}

// Provision creates and starts the container, resolves its host port and
// waits for GET / to answer 200.
func (d *Docker) Provision(ctx context.Context) (*Target, error) {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	client := d.Client
	if client == nil {
		c, err := docker.NewClientFromEnv()
		if err != nil {
			return nil, fmt.Errorf("unable to create docker client: %w", err)
		}
		client = c
	}

	port := docker.Port(fmt.Sprintf("%d/tcp", d.ContainerPort))
	id, err := d.create(ctx, client, port, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create container from %s: %w", d.Image, err)
	}
	log.Debug("container created", zap.String("image", d.Image), zap.String("id", shortID(id)))

	release := func(ctx context.Context) error {
		ctx, cancel := releaseTimeout(ctx)
		defer cancel()
		err := client.RemoveContainer(docker.RemoveContainerOptions{
			ID:            id,
			Force:         true,
			RemoveVolumes: true,
			Context:       ctx,
		})
		if err != nil {
			return fmt.Errorf("failed to remove container %s: %w", shortID(id), err)
		}
		log.Debug("container removed", zap.String("id", shortID(id)))
		return nil
	}

	if err := client.StartContainerWithContext(id, nil, ctx); err != nil {
		_ = release(context.Background())
		return nil, fmt.Errorf("failed to start container %s: %w", shortID(id), err)
	}

	container, err := client.InspectContainerWithOptions(docker.InspectContainerOptions{ID: id, Context: ctx})
	if err != nil {
		_ = release(context.Background())
		return nil, fmt.Errorf("failed to inspect container %s: %w", shortID(id), err)
	}
	hostPort, err := mappedPort(container, port)
	if err != nil {
		_ = release(context.Background())
		return nil, err
	}

	baseURL := fmt.Sprintf("http://127.0.0.1:%d/", hostPort)
	timeout := d.StartupTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if err := WaitReady(ctx, nil, baseURL, timeout, DefaultPollInterval); err != nil {
		_ = release(context.Background())
		return nil, err
	}

	log.Info("docker target ready", zap.String("image", d.Image), zap.String("url", baseURL))
	return NewTarget(baseURL, release), nil
}

// create makes the container, pulling the image once if the daemon lacks it.
func (d *Docker) create(ctx context.Context, client ContainerClient, port docker.Port, log *zap.Logger) (string, error) {
	opts := docker.CreateContainerOptions{
		Config: &docker.Config{
			Image:        d.Image,
			ExposedPorts: map[docker.Port]struct{}{port: {}},
		},
		HostConfig: &docker.HostConfig{
			PortBindings: map[docker.Port][]docker.PortBinding{
				port: {{HostIP: "127.0.0.1"}},
			},
		},
		Context: ctx,
	}

	container, err := client.CreateContainer(opts)
	if errors.Is(err, docker.ErrNoSuchImage) {
		repo, tag := docker.ParseRepositoryTag(d.Image)
		if tag == "" {
			tag = "latest"
		}
		log.Info("pulling image", zap.String("image", d.Image))
		if err := client.PullImage(docker.PullImageOptions{Repository: repo, Tag: tag, Context: ctx}, docker.AuthConfiguration{}); err != nil {
			return "", fmt.Errorf("pull %s: %w", d.Image, err)
		}
		container, err = client.CreateContainer(opts)
	}
	if err != nil {
		return "", err
	}
	if container == nil || container.ID == "" {
		return "", fmt.Errorf("daemon returned no container id")
	}
	return container.ID, nil
}

// mappedPort returns the first host port bound to port.
func mappedPort(container *docker.Container, port docker.Port) (int, error) {
	if container == nil || container.NetworkSettings == nil {
		return 0, fmt.Errorf("container has no network settings")
	}
	for _, binding := range container.NetworkSettings.Ports[port] {
		p, err := strconv.Atoi(binding.HostPort)
		if err != nil || p < 1 || p > 65535 {
			return 0, fmt.Errorf("unexpected host port %q for %s", binding.HostPort, port)
		}
		return p, nil
	}
	return 0, fmt.Errorf("no host port published for %s", port)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
