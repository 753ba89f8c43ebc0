package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/solfarms/solfarm/client"
	"github.com/solfarms/solfarm/config"
	"github.com/solfarms/solfarm/ledger"
	"github.com/solfarms/solfarm/networks"
)

const commandTimeout = 60 * time.Second

func newClient() *client.Client {
	endpoint := config.RPCEndpoint
	if endpoint == "" {
		endpoint = networks.CurrentNetwork().GetDefaultRPC()
	}
	lg := ledger.NewNodeClient(endpoint, config.Logger())
	return client.New(lg, config.Logger())
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("couldn't render output: %s\n", err)
		os.Exit(1)
	}
	if config.JSONOutputFile != "" {
		if err := os.WriteFile(config.JSONOutputFile, append(out, '\n'), 0o644); err != nil {
			fmt.Printf("couldn't write %s: %s\n", config.JSONOutputFile, err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(string(out))
}

func abort(err error) {
	fmt.Println(err)
	os.Exit(1)
}
