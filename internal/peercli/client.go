// Package peercli drives a Fabric network through the peer CLI binary.
package peercli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"asset-registry/internal/config"
	"asset-registry/internal/logger"
	"asset-registry/internal/registry"
)

// Runner executes bin with args and extra environment, returning combined
// output.
type Runner func(ctx context.Context, bin string, env []string, args ...string) (string, error)

type Client struct {
	cfg config.Peer
	log *logger.Logger
	run Runner
}

func New(cfg config.Peer, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{cfg: cfg, log: log, run: execRunner}
}

// WithRunner replaces how the peer binary is executed.
func (c *Client) WithRunner(r Runner) *Client {
	c.run = r
	return c
}

// Submit runs a transaction from the operation table: read-only ones are
// queried on a single peer, the rest are invoked with endorsement from both
// organisations and ordered.
func (c *Client) Submit(ctx context.Context, name string, args []string) (string, error) {
	tx, err := registry.CheckArgs(name, args)
	if err != nil {
		return "", err
	}
	if tx.ReadOnly {
		return c.Query(ctx, name, args...)
	}
	return c.Invoke(ctx, name, args...)
}

// Invoke executes a chaincode invoke operation (write).
func (c *Client) Invoke(ctx context.Context, function string, args ...string) (string, error) {
	argsJSON, err := buildArgsJSON(function, args...)
	if err != nil {
		return "", err
	}

	c.log.Info("requesting endorsement", "function", function, "peer", c.cfg.PeerAddress, "peer2", c.cfg.Peer2Address)

	cmdArgs := []string{
		"chaincode", "invoke",
		"-o", c.cfg.OrdererAddress,
		"--tls",
		"--cafile", c.cfg.OrdererTLSRootCertFile,
		"-C", c.cfg.ChannelName,
		"-n", c.cfg.ChaincodeName,
		"-c", argsJSON,
		"--peerAddresses", c.cfg.PeerAddress,
		"--tlsRootCertFiles", c.cfg.TLSCertFile,
	}
	if c.cfg.Peer2Address != "" {
		cmdArgs = append(cmdArgs,
			"--peerAddresses", c.cfg.Peer2Address,
			"--tlsRootCertFiles", c.cfg.Peer2TLSCertFile,
		)
	}
	cmdArgs = append(cmdArgs, "--waitForEvent")

	out, err := c.exec(ctx, cmdArgs)
	if err != nil {
		return out, fmt.Errorf("invoke %s: %w", function, err)
	}
	return invokeResult(out), nil
}

// Query executes a chaincode query operation (read).
func (c *Client) Query(ctx context.Context, function string, args ...string) (string, error) {
	argsJSON, err := buildArgsJSON(function, args...)
	if err != nil {
		return "", err
	}

	out, err := c.exec(ctx, []string{
		"chaincode", "query",
		"-C", c.cfg.ChannelName,
		"-n", c.cfg.ChaincodeName,
		"-c", argsJSON,
	})
	if err != nil {
		return out, fmt.Errorf("query %s: %w", function, err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) exec(ctx context.Context, args []string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	out, err := c.run(ctx, c.cfg.Binary, c.env(), args...)
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("command timeout: %s %s", c.cfg.Binary, strings.Join(args, " "))
	}
	if err != nil {
		return out, fmt.Errorf("peer command failed: %w\nOutput: %s", err, out)
	}
	return out, nil
}

func (c *Client) env() []string {
	env := []string{
		"CORE_PEER_TLS_ENABLED=true",
		"CORE_PEER_LOCALMSPID=" + c.cfg.OrgMSP,
		"CORE_PEER_TLS_ROOTCERT_FILE=" + c.cfg.TLSCertFile,
		"CORE_PEER_MSPCONFIGPATH=" + c.cfg.MSPConfigPath,
		"CORE_PEER_ADDRESS=" + c.cfg.PeerAddress,
	}
	if c.cfg.FabricCfgPath != "" {
		env = append(env, "FABRIC_CFG_PATH="+filepath.Clean(c.cfg.FabricCfgPath))
	}
	return env
}

// buildArgsJSON builds the {"Args":[...]} object the peer CLI expects.
func buildArgsJSON(function string, args ...string) (string, error) {
	allArgs := append([]string{function}, args...)
	b, err := json.Marshal(map[string][]string{"Args": allArgs})
	if err != nil {
		return "", fmt.Errorf("marshal args: %w", err)
	}
	return string(b), nil
}

// invokeResult extracts the payload from the peer's
// `Chaincode invoke successful. result: status:200 payload:"..."` line.
func invokeResult(out string) string {
	const marker = `payload:"`
	i := strings.LastIndex(out, marker)
	if i < 0 {
		return ""
	}
	rest := out[i+len(marker):]
	j := strings.LastIndex(rest, `"`)
	if j < 0 {
		return ""
	}
	quoted := `"` + rest[:j] + `"`
	payload, err := strconv.Unquote(quoted)
	if err != nil {
		return rest[:j]
	}
	return payload
}

func execRunner(ctx context.Context, bin string, env []string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = append(cmd.Environ(), env...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	return buf.String(), err
}
