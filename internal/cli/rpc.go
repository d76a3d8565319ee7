package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goswapd/internal/rpc"
)

var (
	rpcURL     string
	rpcTimeout time.Duration
)

var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Call a JSON-RPC method on a running node",
	Long: `Call a JSON-RPC method on a running node and print the result.
Parameters are a single JSON object, for example:

  swapd rpc server_info
  swapd rpc ledger_accept
  swapd rpc account_info '{"account":"rGWrZyQqhTp9Xu7G5Pkayo7bXjH4k4QYpf"}'
  swapd rpc offer '{"offer_id":"4BF3..."}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRPC,
}

func init() {
	rootCmd.AddCommand(rpcCmd)
	rpcCmd.Flags().StringVar(&rpcURL, "url", "http://127.0.0.1:5005/", "node JSON-RPC endpoint")
	rpcCmd.Flags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "request timeout")
}

func runRPC(cmd *cobra.Command, args []string) error {
	var params json.RawMessage
	if len(args) == 2 {
		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("params must be a JSON object")
		}
		params = json.RawMessage(args[1])
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
	defer cancel()

	result, err := callRPC(ctx, rpcURL, args[0], params)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		return fmt.Errorf("malformed result: %w", err)
	}
	fmt.Println(pretty.String())
	return nil
}

// callRPC posts one request in the node's envelope and returns the raw
// result object. RPC-level failures still travel inside the result.
func callRPC(ctx context.Context, url, method string, params json.RawMessage) (json.RawMessage, error) {
	reqBody := rpc.Request{Method: method}
	if params != nil {
		reqBody.Params = []json.RawMessage{params}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(data))
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if envelope.Result == nil {
		return nil, fmt.Errorf("response has no result")
	}
	return envelope.Result, nil
}
