// mirrorctl is the operator CLI for mirroird: it dials the daemon socket
// directly and issues one command per invocation.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"mirroir/internal/ipc"
	"mirroir/internal/orchestrator"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	Commit    = "unknown"
)

var (
	socketPath  = flag.String("socket", "/var/run/mirroird.sock", "daemon socket path")
	cursorMode  = flag.String("mode", "sync", "cursor mode: sync or leave")
	noColor     = flag.Bool("no-color", false, "disable colored output")
	showVersion = flag.Bool("version", false, "show version information")
	quiet       = flag.Bool("q", false, "suppress banner")
)

type colors struct {
	Reset, Bold, Dim, Red, Green, Yellow, Blue, Magenta, Cyan, White string
}

var c colors

func initColors() {
	if *noColor || os.Getenv("NO_COLOR") != "" || !isTerminal() {
		c = colors{}
		return
	}
	c = colors{
		Reset: "\033[0m", Bold: "\033[1m", Dim: "\033[2m",
		Red: "\033[31m", Green: "\033[32m", Yellow: "\033[33m",
		Blue: "\033[34m", Magenta: "\033[35m", Cyan: "\033[36m", White: "\033[37m",
	}
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

const banner = `
%s          ╔╦╗╦╦═╗╦═╗╔═╗╦╦═╗%s
%s          ║║║║╠╦╝╠╦╝║ ║║╠╦╝%s
%s          ╩ ╩╩╩╚═╩╚═╚═╝╩╩╚═%s%sctl%s
%s    ─────────────────────────────────%s
%s       iPhone Mirroring input bridge%s

`

func printBanner() {
	fmt.Fprintf(os.Stderr, banner,
		c.Cyan+c.Bold, c.Reset,
		c.Cyan+c.Bold, c.Reset,
		c.Cyan+c.Bold, c.Reset, c.Dim, c.Reset,
		c.Dim, c.Reset,
		c.Dim, c.Reset,
	)
}

func printVersion() {
	fmt.Printf("%smirrorctl%s %s%s%s\n", c.Bold, c.Reset, c.Cyan, Version, c.Reset)
	fmt.Printf("  %sBuild%s       %s\n", c.Dim, c.Reset, BuildTime)
	fmt.Printf("  %sCommit%s      %s\n", c.Dim, c.Reset, Commit)
	fmt.Printf("  %sPlatform%s    %s/%s\n", c.Dim, c.Reset, runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  %sGo%s          %s\n", c.Dim, c.Reset, runtime.Version())
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s%s ERROR %s %s\n", c.Bold, c.Red, c.Reset, msg)
}

func printSection(title string) {
	fmt.Printf("\n%s%s %s %s\n\n", c.Bold, c.Cyan, title, c.Reset)
}

func usage() {
	fmt.Fprintf(os.Stderr, `%sUSAGE%s
    mirrorctl [options] <command> [arguments]

%sCOMMANDS%s
    %sstatus%s                          Show daemon and virtual-HID readiness
    %sping%s                            Check whether the daemon is reachable
    %stap%s        <x> <y>              Click at a screen point
    %slong-press%s <x> <y> <ms>         Press and hold at a point
    %sdouble-tap%s <x> <y>              Double-click at a point
    %sdrag%s       <x1> <y1> <x2> <y2> <ms>  Drag between two points
    %sswipe%s      <x1> <y1> <x2> <y2> <ms>  Scroll between two points
    %smove%s       <dx> <dy>            Move the pointer by a relative delta
    %stype%s       <text>               Type literal text
    %spress-key%s  <name> [modifiers]   Press a named key with modifiers
    %sshake%s                           Send the shake-to-undo key combination
    %sreload-policy%s                   Reload the permission policy file
    %shelp%s                            Show this help message
    %sversion%s                         Show version information

%sOPTIONS%s
    -socket <path>   Daemon socket path (default: /var/run/mirroird.sock)
    -mode <mode>     Cursor mode for pointer actions: sync or leave (default: sync)
    -no-color        Disable colored output
    -q               Suppress banner

%sEXAMPLES%s
    mirrorctl tap 120 340
    mirrorctl type "hello there"
    mirrorctl press-key return
    mirrorctl drag 50 50 200 400 500

`,
		c.Bold+c.White, c.Reset,
		c.Bold+c.White, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Cyan, c.Reset, c.Cyan, c.Reset,
		c.Bold+c.White, c.Reset,
		c.Bold+c.White, c.Reset,
	)
}

func dialClient() *orchestrator.DaemonClient {
	cfg := orchestrator.DefaultClientConfig(*socketPath)
	return orchestrator.NewDaemonClient(cfg)
}

func reportResponse(resp *ipc.Response, err error) {
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	if !resp.OK {
		printError(resp.Error)
		os.Exit(1)
	}
	fmt.Printf("  %s✓%s ok\n", c.Green, c.Reset)
	if len(resp.Skipped) > 0 {
		fmt.Printf("  %s%d character(s) skipped (no mapping on the active layout)%s\n", c.Yellow, len(resp.Skipped), c.Reset)
	}
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		printError(fmt.Sprintf("invalid number: %s", s))
		os.Exit(1)
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		printError(fmt.Sprintf("invalid integer: %s", s))
		os.Exit(1)
	}
	return v
}

func main() {
	flag.Parse()
	initColors()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if flag.NArg() < 1 {
		if !*quiet {
			printBanner()
		}
		usage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	if !*quiet && cmd != "help" && cmd != "version" {
		printBanner()
	}

	switch cmd {
	case "status":
		cmdStatus()
	case "ping":
		cmdPing()
	case "tap":
		requireArgs(args, 2, "mirrorctl tap <x> <y>")
		cmdTap(parseFloat(args[0]), parseFloat(args[1]))
	case "long-press":
		requireArgs(args, 3, "mirrorctl long-press <x> <y> <ms>")
		cmdLongPress(parseFloat(args[0]), parseFloat(args[1]), parseInt(args[2]))
	case "double-tap":
		requireArgs(args, 2, "mirrorctl double-tap <x> <y>")
		cmdDoubleTap(parseFloat(args[0]), parseFloat(args[1]))
	case "drag":
		requireArgs(args, 5, "mirrorctl drag <x1> <y1> <x2> <y2> <ms>")
		cmdDrag(parseFloat(args[0]), parseFloat(args[1]), parseFloat(args[2]), parseFloat(args[3]), parseInt(args[4]))
	case "swipe":
		requireArgs(args, 5, "mirrorctl swipe <x1> <y1> <x2> <y2> <ms>")
		cmdSwipe(parseFloat(args[0]), parseFloat(args[1]), parseFloat(args[2]), parseFloat(args[3]), parseInt(args[4]))
	case "move":
		requireArgs(args, 2, "mirrorctl move <dx> <dy>")
		cmdMove(parseInt(args[0]), parseInt(args[1]))
	case "type":
		requireArgs(args, 1, "mirrorctl type <text>")
		cmdType(args[0])
	case "press-key":
		requireArgs(args, 1, "mirrorctl press-key <name> [modifiers...]")
		cmdPressKey(args[0], args[1:])
	case "shake":
		cmdShake()
	case "reload-policy":
		cmdReloadPolicy()
	case "help":
		if !*quiet {
			printBanner()
		}
		usage()
	case "version":
		printVersion()
	default:
		printError(fmt.Sprintf("unknown command: %s", cmd))
		usage()
		os.Exit(1)
	}
}

func requireArgs(args []string, n int, usageLine string) {
	if len(args) < n {
		printError("Usage: " + usageLine)
		os.Exit(1)
	}
}
