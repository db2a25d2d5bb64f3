package devservice

import (
	"context"
	"fmt"
	"io"
	"net/netip"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/network"
	"github.com/moby/moby/client"

	"github.com/pipestream-ai/schemaflow/internal/runtime/logging"
)

// DockerRuntime drives the local Docker engine through the Engine API.
type DockerRuntime struct {
	client *client.Client
	log    logging.ServiceLogger
}

// NewDockerRuntime initializes the Docker runtime using environment variables
// (e.g. DOCKER_HOST) and API version negotiation.
func NewDockerRuntime(log logging.ServiceLogger) (*DockerRuntime, error) {
	if log == nil {
		log = logging.NewNopServiceLogger()
	}
	c, err := client.New(
		client.FromEnv,
	)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerRuntime{client: c, log: log}, nil
}

// Available implements ContainerRuntime by pinging the engine.
func (d *DockerRuntime) Available(ctx context.Context) bool {
	_, err := d.client.Ping(ctx, client.PingOptions{})
	if err != nil {
		d.log.Debug("docker ping failed", logging.LogFields{"error": err.Error()})
		return false
	}
	return true
}

// Start implements ContainerRuntime. It pulls the image when missing, creates
// the container with the requested port binding, starts it, and resolves the
// published host port.
func (d *DockerRuntime) Start(ctx context.Context, spec ContainerSpec) (StartedContainer, error) {
	if err := d.pullImage(ctx, spec.Image); err != nil {
		return StartedContainer{}, err
	}

	port, ok := network.PortFrom(uint16(spec.ContainerPort), "tcp")
	if !ok {
		return StartedContainer{}, fmt.Errorf("invalid container port %d", spec.ContainerPort)
	}

	env := make([]string, 0, len(spec.Env))
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}

	hostPort := ""
	if spec.HostPort > 0 {
		hostPort = strconv.Itoa(spec.HostPort)
	}
	portMap := network.PortMap{
		port: []network.PortBinding{{
			HostIP:   netip.IPv4Unspecified(),
			HostPort: hostPort,
		}},
	}

	created, err := d.client.ContainerCreate(ctx, client.ContainerCreateOptions{
		Name:  spec.Name,
		Image: spec.Image,
		Config: &container.Config{
			Image:        spec.Image,
			Env:          env,
			Labels:       spec.Labels,
			ExposedPorts: network.PortSet{port: struct{}{}},
		},
		HostConfig: &container.HostConfig{
			PortBindings: portMap,
			AutoRemove:   true,
		},
	})
	if err != nil {
		return StartedContainer{}, fmt.Errorf("create container %q: %w", spec.Name, err)
	}

	if _, err := d.client.ContainerStart(ctx, created.ID, client.ContainerStartOptions{}); err != nil {
		return StartedContainer{}, fmt.Errorf("start container %q: %w", spec.Name, err)
	}

	published, err := d.publishedPort(ctx, created.ID, port)
	if err != nil {
		return StartedContainer{}, err
	}

	return StartedContainer{ID: created.ID, Host: "localhost", HostPort: published}, nil
}

func (d *DockerRuntime) pullImage(ctx context.Context, image string) error {
	rc, err := d.client.ImagePull(ctx, image, client.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %q: %w", image, err)
	}
	defer rc.Close()
	// Drain the progress stream; pulling is not complete until EOF.
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return fmt.Errorf("pull image %q: %w", image, err)
	}
	return nil
}

func (d *DockerRuntime) publishedPort(ctx context.Context, id string, port network.Port) (int, error) {
	inspect, err := d.client.ContainerInspect(ctx, id, client.ContainerInspectOptions{})
	if err != nil {
		return 0, fmt.Errorf("inspect container %q: %w", id, err)
	}
	settings := inspect.Container.NetworkSettings
	if settings == nil {
		return 0, fmt.Errorf("container %q has no network settings", id)
	}
	bindings := settings.Ports[port]
	if len(bindings) == 0 {
		return 0, fmt.Errorf("container %q did not publish port %s", id, port)
	}
	published, err := strconv.Atoi(bindings[0].HostPort)
	if err != nil {
		return 0, fmt.Errorf("container %q published invalid host port %q: %w", id, bindings[0].HostPort, err)
	}
	return published, nil
}

// Stop implements ContainerRuntime: stop (best-effort) then remove.
func (d *DockerRuntime) Stop(ctx context.Context, id string) error {
	_, _ = d.client.ContainerStop(ctx, id, client.ContainerStopOptions{})
	_, err := d.client.ContainerRemove(ctx, id, client.ContainerRemoveOptions{
		Force:         true,
		RemoveVolumes: false,
	})
	if err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("remove container %q: %w", id, err)
	}
	return nil
}

// FindShared implements ContainerRuntime by label-based service discovery.
func (d *DockerRuntime) FindShared(ctx context.Context, serviceName string) (StartedContainer, bool, error) {
	f := make(client.Filters).
		Add("label", ServiceLabel+"="+serviceName).
		Add("status", "running")

	containers, err := d.client.ContainerList(ctx, client.ContainerListOptions{
		Filters: f,
	})
	if err != nil {
		return StartedContainer{}, false, fmt.Errorf("list shared service containers: %w", err)
	}
	if len(containers.Items) == 0 {
		return StartedContainer{}, false, nil
	}

	id := containers.Items[0].ID
	port, ok := network.PortFrom(registryPort, "tcp")
	if !ok {
		return StartedContainer{}, false, fmt.Errorf("invalid registry port %d", registryPort)
	}

	published, err := d.publishedPort(ctx, id, port)
	if err != nil {
		return StartedContainer{}, false, err
	}
	return StartedContainer{ID: id, Host: "localhost", HostPort: published}, true, nil
}
