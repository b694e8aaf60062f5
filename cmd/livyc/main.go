package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/AltairaLabs/livy-mcp/internal/livy"
	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/logging"
	"github.com/AltairaLabs/livy-mcp/internal/tools"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

const clientVersion = "0.1.0"

const usage = `usage: livyc [flags] <command> [arguments]

commands:
  run <code>                 run a code fragment ("-" reads it from stdin)
  run-file <path>            run the contents of a local file
  read <expr>                evaluate an expression and print its value as JSON
  call <function> [arg...]   call a function; key=value arguments are passed by keyword

flags:
`

var (
	version    = flag.Bool("version", false, "Print version and exit")
	debug      = flag.Bool("debug", false, "Enable debug logging")
	configPath = flag.String("config", "", "Path to a livyc.yaml config file")
	url        = flag.String("url", "", "Gateway URL (overrides config)")
	port       = flag.String("port", "", "Gateway port (overrides config)")
	jars       = flag.String("jars", "", "Comma separated packages added to the session")
)

var kwargPattern = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)=(.*)$`)

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println("livyc v" + clientVersion)
		os.Exit(0)
	}
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "livyc: %v\n", err)
		os.Exit(1)
	}
	cfg = applyFlags(cfg, *url, *port, *jars)

	logger, logCloser := logging.Setup(cfg.Log, *debug)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, args := flag.Arg(0), flag.Args()[1:]
	err = livy.With(ctx, cfg, func(s *livy.Session) error {
		return execute(ctx, s, command, args, os.Stdin, os.Stdout)
	}, livy.WithLogger(logger))
	if err != nil {
		printError(os.Stderr, err)
		logCloser.Close()
		os.Exit(1)
	}
}

// applyFlags overlays non-empty command line values on the loaded config
func applyFlags(cfg config.Config, url, port, jars string) config.Config {
	if url != "" {
		cfg.URL = url
	}
	if port != "" {
		cfg.Port = port
	}
	if extra := tools.ParseJars(jars); len(extra) > 0 {
		cfg.Jars = append(append([]string(nil), cfg.Jars...), extra...)
	}
	return cfg
}

// execute runs one command against exec and writes its result to out
func execute(ctx context.Context, exec types.Executor, command string, args []string, in io.Reader, out io.Writer) error {
	switch command {
	case "run":
		if len(args) != 1 {
			return errors.New("run takes exactly one code argument")
		}
		code := args[0]
		if code == "-" {
			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			code = string(data)
		}
		text, err := exec.Run(ctx, code)
		if err != nil {
			return err
		}
		return writeText(out, text)

	case "run-file":
		if len(args) != 1 {
			return errors.New("run-file takes exactly one path argument")
		}
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		text, err := exec.RunFile(ctx, path)
		if err != nil {
			return err
		}
		return writeText(out, text)

	case "read":
		if len(args) != 1 {
			return errors.New("read takes exactly one expression argument")
		}
		v, err := exec.Read(ctx, args[0])
		if err != nil {
			return err
		}
		text, err := tools.FormatValue(config.DefaultSessionName, v)
		if err != nil {
			return err
		}
		return writeText(out, text)

	case "call":
		if len(args) < 1 {
			return errors.New("call takes a function name")
		}
		positional, kwargs := parseCallArgs(args[1:])
		v, err := exec.Call(ctx, args[0], positional, kwargs)
		if err != nil {
			return err
		}
		text, err := tools.FormatValue(config.DefaultSessionName, v)
		if err != nil {
			return err
		}
		return writeText(out, text)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// parseCallArgs splits call arguments into positional and keyword values.
// Each value is decoded as JSON when it parses, otherwise kept as a string.
func parseCallArgs(args []string) ([]any, map[string]any) {
	positional := []any{}
	kwargs := map[string]any{}
	for _, arg := range args {
		if m := kwargPattern.FindStringSubmatch(arg); m != nil {
			kwargs[m[1]] = parseValue(m[2])
			continue
		}
		positional = append(positional, parseValue(arg))
	}
	return positional, kwargs
}

func parseValue(s string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	return v
}

func writeText(out io.Writer, text string) error {
	if text == "" {
		return nil
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(out, text)
	return err
}

func printError(w io.Writer, err error) {
	var execErr *livy.ExecutionError
	if errors.As(err, &execErr) {
		fmt.Fprintf(w, "livyc: %s: %s\n", execErr.Name, execErr.Message)
		for _, line := range execErr.Traceback {
			fmt.Fprint(w, line)
			if !strings.HasSuffix(line, "\n") {
				fmt.Fprintln(w)
			}
		}
		return
	}
	fmt.Fprintf(w, "livyc: %v\n", err)
}
