package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/brianrwillis/SPIMotorController/cmd/spimotorctl/monitor"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	client := &http.Client{}

	cmd := &cobra.Command{
		Use:     "spimotorctl",
		Short:   "A ctl use to interact with spimotord",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			socket, err := findSocket()
			if err != nil {
				return err
			}

			client.Transport = &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socket)
				},
				DisableCompression: false,
			}
			return nil
		},
	}
	cmd.AddCommand(monitor.Command(client))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for spimotorctl",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

//
//
//

type config struct {
	Socket string `yaml:"socket"`
}

var errNoSocket = errors.New("no socket found")

// resolveSocket tries the system socket first, then whatever the saved ctl
// config points at. errNoSocket means the caller has to ask the operator.
func resolveSocket(system, cpath string) (string, error) {
	if _, err := os.Stat(system); err == nil {
		return system, nil
	}

	p, err := os.ReadFile(cpath)
	if err != nil {
		return "", errNoSocket
	}

	var cfg config
	if err = yaml.Unmarshal(p, &cfg); err != nil {
		return "", err
	}

	if _, err = os.Stat(cfg.Socket); err == nil {
		return cfg.Socket, nil
	}

	fmt.Println("Invalid socket path:", cfg.Socket)
	return "", errNoSocket
}

func findSocket() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	cpath := filepath.Join(u.HomeDir, ".config", "spimotorctl", "spimotorctl.yml") // Does not follow XDG..

	socket, err := resolveSocket("/run/spimotord/spimotord.sock", cpath)
	if err == nil {
		return socket, nil
	}
	if err != errNoSocket {
		return "", err
	}

	fmt.Print("Enter a socket path: ")
	r := bufio.NewReader(os.Stdin)
	socket, err = r.ReadString('\n')
	if err != nil {
		return "", err
	}

	socket = strings.TrimSpace(socket)

	// Remember the answer for the next run.
	if err = os.MkdirAll(filepath.Dir(cpath), 0o755); err != nil {
		return "", err
	}

	p, err := yaml.Marshal(config{Socket: socket})
	if err != nil {
		return "", err
	}

	return socket, os.WriteFile(cpath, p, 0o600)
}
