// Command avm manages installed versions of Go, Node.js, and Liberica JDK
// toolchains: discovering releases, downloading and verifying them, and
// keeping them under named tags with an optional default alias.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avmtools/avm/internal/buildinfo"
	"github.com/avmtools/avm/internal/cancel"
	"github.com/avmtools/avm/internal/config"
	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/tool/goadapter"
	"github.com/avmtools/avm/internal/tool/liberica"
	"github.com/avmtools/avm/internal/tool/node"
)

var (
	quietFlag   bool
	verboseFlag bool
	debugFlag   bool
)

// defaultTag is the tag name the tag-scoped commands (path, exe-path, run)
// fall back to when no tag is given on the command line.
const defaultTag = "default"

// rootCtx is canceled on SIGINT/SIGTERM; subcommands that drive the
// install pipeline use it for their GetDownInfo/pipeline.Advance calls.
var rootCtx context.Context
var rootCancel context.CancelFunc

// runtimePaths is resolved once in main(), after config is loaded, and
// read by every tool subcommand tree.
type runtimePaths struct {
	configFile string
	toolsBase  string
	rustupPath string
	client     *httputil.MirrorClient
}

var paths runtimePaths

var rootCmd = &cobra.Command{
	Use:   "avm",
	Short: "(Potentially) Any language Version Manager",
	Long: `avm manages multiple versions of development tools — the Go
toolchain, Node.js, and Liberica JDK — under named tags with an optional
default alias, maximizing code reuse across tools.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Show errors only")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show verbose output (INFO level)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Show debug output")
	rootCmd.PersistentPreRunE = initLogger
	rootCmd.Version = buildinfo.Version()

	rootCmd.AddCommand(newConfigPathCmd())
	rootCmd.AddCommand(newRustupCmd())
}

func main() {
	rootCtx, rootCancel = context.WithCancel(context.Background())
	defer rootCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nreceived %s, cancelling...\n", sig)
		cancel.SetCancelled()
		rootCancel()

		<-sigChan
		fmt.Fprintln(os.Stderr, "forced exit")
		os.Exit(ExitCancelled)
	}()

	if err := loadRuntime(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitGeneral)
	}
	registerToolCommands(paths.client)

	if err := rootCmd.ExecuteContext(rootCtx); err != nil {
		reportError(err)
		if rootCtx.Err() == context.Canceled {
			os.Exit(ExitCancelled)
		}
		os.Exit(ExitGeneral)
	}
}

// loadRuntime resolves config and builds the shared mirror client, before
// the tool subcommand tree (which needs adapters) is attached to rootCmd.
func loadRuntime() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg, err = cfg.Defaulted()
	if err != nil {
		return err
	}

	configFile, err := config.Path()
	if err != nil {
		return err
	}

	var rules []httputil.MirrorRule
	for _, m := range cfg.Mirror {
		rules = append(rules, httputil.MirrorRule{From: m.From, To: m.To})
	}
	clientOpts := httputil.DefaultOptions()
	clientOpts.UserAgent = buildinfo.UserAgent()
	client := httputil.NewMirrorClient(httputil.NewSecureClient(clientOpts), rules, log.Default())

	rustupPath := cfg.Rustup.Path
	if rustupPath == "" {
		rustupPath = os.Getenv("RUSTUP_PATH")
	}

	paths = runtimePaths{
		configFile: configFile,
		toolsBase:  cfg.ToolsBase(),
		rustupPath: rustupPath,
		client:     client,
	}
	return nil
}

func registerToolCommands(client *httputil.MirrorClient) {
	rootCmd.AddCommand(newToolCommand(goadapter.New(client, log.Default())))
	rootCmd.AddCommand(newToolCommand(liberica.New(client, log.Default())))
	rootCmd.AddCommand(newToolCommand(node.New(client, log.Default())))
}

// initLogger installs the leveled logger once flags are parsed. Config and
// the tool command tree are resolved earlier, in loadRuntime, since cobra
// must see the full command tree before it can match the requested
// subcommand.
func initLogger(cmd *cobra.Command, args []string) error {
	log.SetDefault(log.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: determineLogLevel()})))
	return nil
}

func determineLogLevel() slog.Level {
	if debugFlag {
		return slog.LevelDebug
	}
	if verboseFlag {
		return slog.LevelInfo
	}
	if quietFlag {
		return slog.LevelError
	}
	if isTruthy(os.Getenv("AVM_LOG_DEBUG")) {
		return slog.LevelDebug
	}
	if isTruthy(os.Getenv("AVM_LOG_VERBOSE")) {
		return slog.LevelInfo
	}
	if isTruthy(os.Getenv("AVM_LOG_QUIET")) {
		return slog.LevelError
	}
	return slog.LevelWarn
}

func isTruthy(s string) bool {
	s = strings.ToLower(s)
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

func toolDir(toolName string) string {
	return filepath.Join(paths.toolsBase, toolName)
}
