package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/matzehuels/algorithmia/pkg/algorithmia"
	"github.com/matzehuels/algorithmia/pkg/cache"
	"github.com/matzehuels/algorithmia/pkg/errors"
)

// runOptions holds flags for the run command.
type runOptions struct {
	json    bool
	text    bool
	file    string
	output  string
	timeout int
	stdout  bool
	raw     bool
	async   bool
}

// runCommand creates the run command for calling an algorithm.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <algorithm> [input]",
		Short: "Call an algorithm",
		Long: `Call an algorithm and print its result.

The input is taken from the second argument, from --file, or from stdin when
the argument is "-". An argument that parses as JSON is sent as JSON, anything
else as text; --json and --text force the choice. --file sends the file
content as binary.

Results are written to stdout unless --output names a file.`,
		Example: `  # JSON input
  algo run docs/JavaAddOne 5

  # Text input
  algo run demo/hello "HAL 9000"

  # Binary input and output
  algo run opencv/SmartThumbnail/0.1.14 --file cat.jpg -o thumb.jpg`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAlgorithm(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.json, "json", "j", false, "send input as JSON")
	cmd.Flags().BoolVarP(&opts.text, "text", "t", false, "send input as text")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "send the content of a file as binary input")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result to a file")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0, "algorithm timeout in seconds")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the algorithm's stdout (own algorithms only)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "request the raw result without metadata")
	cmd.Flags().BoolVar(&opts.async, "async", false, "start the algorithm without waiting for the result")
	cmd.MarkFlagsMutuallyExclusive("json", "text", "file")
	cmd.MarkFlagsMutuallyExclusive("raw", "async")

	return cmd
}

func (c *CLI) runAlgorithm(cmd *cobra.Command, args []string, opts runOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	ref := args[0]

	if err := errors.ValidateAlgorithmRef(ref); err != nil {
		return err
	}

	input, err := readInput(cmd.InOrStdin(), args[1:], opts)
	if err != nil {
		return err
	}

	client, store, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var pipeOpts []algorithmia.PipeOption
	if opts.timeout > 0 {
		pipeOpts = append(pipeOpts, algorithmia.WithAlgoTimeout(opts.timeout))
	}
	if opts.stdout {
		pipeOpts = append(pipeOpts, algorithmia.WithStdout(true))
	}
	if opts.raw {
		pipeOpts = append(pipeOpts, algorithmia.WithOutput(algorithmia.OutputRaw))
	}

	algo := client.Algo(ref)
	if opts.async {
		ack, err := algo.PipeAsync(ctx, input, pipeOpts...)
		if err != nil {
			return err
		}
		printSuccess(cmd.ErrOrStderr(), "Started %s", algo.Ref())
		printKeyValue(cmd.OutOrStdout(), "request id", ack.RequestID)
		return nil
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Calling "+algo.Ref())
	spinner.Start()
	resp, err := algo.Pipe(ctx, input, pipeOpts...)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Called "+algo.Ref(), "type", resp.Result.Kind(), "cached", resp.Cached)

	if resp.Metadata.Stdout != "" {
		fmt.Fprint(cmd.ErrOrStderr(), resp.Metadata.Stdout)
	}
	if err := writeResult(cmd.OutOrStdout(), resp.Result, opts.output); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(cmd.ErrOrStderr(), opts.output)
	}
	if resp.Result.Kind() == algorithmia.ResultBinary {
		data := resp.Result.Bytes()
		printDetail(cmd.ErrOrStderr(), "%s, sha256 %s", formatSize(int64(len(data))), cache.Hash(data))
	}
	printCallStats(cmd.ErrOrStderr(), string(resp.Result.Kind()), resp.Metadata.Duration, resp.Cached)
	return nil
}

// readInput builds the algorithm input from the flags and the optional
// positional argument.
func readInput(stdin io.Reader, args []string, opts runOptions) (any, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read input file")
		}
		return data, nil
	}

	var text string
	switch {
	case len(args) == 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input: pass an argument, --file, or - for stdin")
	case args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		text = string(data)
	default:
		text = args[0]
	}

	switch {
	case opts.text:
		return text, nil
	case opts.json:
		if !gjson.Valid(text) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "input is not valid json")
		}
		return json.RawMessage(text), nil
	case gjson.Valid(text):
		return json.RawMessage(text), nil
	default:
		return text, nil
	}
}

// writeResult writes the result to path, or to w when path is empty.
func writeResult(w io.Writer, r algorithmia.Result, path string) error {
	data := r.Bytes()
	if r.Kind() != algorithmia.ResultBinary && !strings.HasSuffix(string(data), "\n") {
		data = append(data, '\n')
	}
	if path != "" {
		return os.WriteFile(path, r.Bytes(), 0644)
	}
	_, err := w.Write(data)
	return err
}
