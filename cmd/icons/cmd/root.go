// Package cmd implements the icons CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (get, list, has, fetch, cache, serve).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/icons/cmd/icons/internal/cachedir"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "icons",
	Short: "icons - resolve and render SVG icons",
	Long: `icons resolves names like "tabler:home" to SVG markup using the providers
declared in icons.yaml: local SVG directories, Iconify JSON collections and
the Iconify API.

Use "icons <command> --help" for more information about a command.`,
	Usage: "icons <command> [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return run(os.Args[1:])
}

func run(args []string) error {
	cachedir.SetGlobal(Version)

	// No arguments
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --cache-dir
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "icons version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--cache-dir":
			if i+1 < len(args) {
				cachedir.SetCacheDir(args[i+1])
				i++
			} else {
				return fmt.Errorf("--cache-dir requires a directory path")
			}
		default:
			if strings.HasPrefix(arg, "--cache-dir=") {
				cachedir.SetCacheDir(strings.TrimPrefix(arg, "--cache-dir="))
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func printHelp(cmd *Command) {
	w := stdout
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -h, --help           Show help for a command")
	fmt.Fprintln(w, "  -v, --version        Show version information")
	fmt.Fprintln(w, "  --cache-dir DIR      Override cache directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  ICONS_CACHE_DIR        Cache directory (lower priority than --cache-dir)")
	fmt.Fprintln(w, "  ICONS_CACHE_BACKEND    file, sqlite or none")
	fmt.Fprintln(w, "  ICONS_CACHE_TTL        Default entry lifetime, e.g. 24h (0 never expires)")
	fmt.Fprintln(w, "  ICONS_DEFAULT_PREFIX   Prefix for names without one")
	fmt.Fprintln(w, "  ICONS_FALLBACK         Icon used when a name cannot be found")
	fmt.Fprintln(w, "  ICONS_IGNORE_NOT_FOUND Render missing icons as empty <svg>")
	fmt.Fprintln(w, "  ICONS_ICONIFY_HOSTS    Comma separated Iconify API hosts")
	fmt.Fprintln(w, "  ICONS_HTTP_TIMEOUT     Per-request timeout for remote lookups")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  icons get tabler:home           Print the markup for an icon")
	fmt.Fprintln(w, "  icons fetch mdi                 Download the mdi collection")
	fmt.Fprintln(w, "  icons serve --addr :8080        Serve icons over HTTP")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
