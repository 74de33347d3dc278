// muxkit is the terminal-multiplexer client: it finds or starts muxkitd,
// and either lists/kills sessions or attaches a terminal to one.
package main

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/LatosProject/muxkit/internal/client"
	"github.com/LatosProject/muxkit/internal/config"
	"github.com/LatosProject/muxkit/internal/i18n"
	"github.com/LatosProject/muxkit/internal/logx"
	"github.com/LatosProject/muxkit/internal/server"
	"github.com/LatosProject/muxkit/internal/sockpath"
	"github.com/LatosProject/muxkit/internal/wire"
)

// exitCode is spec.md §6's "0 on success, -1 (implementation: 255) on
// protocol mismatch, socket errors, or session-not-found".
const exitCode = 255

func main() {
	os.Exit(run())
}

func run() int {
	cat := i18n.New(i18n.Detect())

	var listFlag, listFlagUpper bool
	var attachID, attachIDUpper string
	var killID, killIDUpper string

	rootCmd := &cobra.Command{
		Use:           "muxkit",
		Short:         cat.T(i18n.HelpTitle),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case listFlag || listFlagUpper:
				return doList(cat)
			case attachID != "" || attachIDUpper != "":
				id := attachID
				if id == "" {
					id = attachIDUpper
				}
				return doAttach(cat, id)
			case killID != "" || killIDUpper != "":
				id := killID
				if id == "" {
					id = killIDUpper
				}
				return doKill(cat, id)
			default:
				if nested() {
					// spec.md §6 "Environment": MUXKIT or TMUX already set
					// refuses a new session, matching
					// original_source/src/client/client.c's nested-warning
					// branch, which prints and then _exit(-1).
					fmt.Fprintln(os.Stderr, cat.T(i18n.NestedWarning))
					os.Exit(exitCode)
				}
				return doNewSession(cat)
			}
		},
	}

	rootCmd.Flags().BoolVarP(&listFlag, "list", "l", false, cat.T(i18n.HelpOptList))
	rootCmd.Flags().BoolVarP(&listFlagUpper, "LIST", "L", false, cat.T(i18n.HelpOptList))
	rootCmd.Flags().StringVarP(&attachID, "attach", "s", "", cat.T(i18n.HelpOptAttach))
	rootCmd.Flags().StringVarP(&attachIDUpper, "ATTACH", "S", "", cat.T(i18n.HelpOptAttach))
	rootCmd.Flags().StringVarP(&killID, "kill", "k", "", cat.T(i18n.HelpOptKill))
	rootCmd.Flags().StringVarP(&killIDUpper, "KILL", "K", "", cat.T(i18n.HelpOptKill))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "muxkit: %v\n", err)
		return exitCode
	}
	return 0
}

// nested reports whether MUXKIT or TMUX is already set, meaning this
// process is itself running inside a multiplexer. Only the new-session
// path refuses on this (attach/list/kill all still work nested),
// matching original_source/src/client/client.c's check.
func nested() bool {
	return os.Getenv("MUXKIT") != "" || os.Getenv("TMUX") != ""
}

func dialDaemon() (*net.UnixConn, error) {
	socketPath, err := sockpath.Socket()
	if err != nil {
		return nil, err
	}
	conn, err := server.EnsureRunning(daemonBinaryPath(), socketPath)
	if err != nil {
		return nil, err
	}
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("unexpected connection type")
	}
	return uc, nil
}

// daemonBinaryPath resolves muxkitd next to the running muxkit binary,
// falling back to $PATH lookup.
func daemonBinaryPath() string {
	if exe, err := os.Executable(); err == nil {
		candidate := exe + "d"
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "muxkitd"
}

func doList(cat *i18n.Catalog) error {
	conn, err := dialDaemon()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := wire.WriteMessage(conn, wire.ListSessions, nil); err != nil {
		return err
	}
	typ, body, err := wire.ReadMessage(conn)
	if err != nil || typ != wire.ListSessions {
		return fmt.Errorf("%s", cat.T(i18n.ErrProtocolVersion))
	}
	fmt.Println(string(body))
	return nil
}

func doKill(cat *i18n.Catalog, idStr string) error {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return fmt.Errorf("invalid session id %q", idStr)
	}
	conn, err := dialDaemon()
	if err != nil {
		return err
	}
	defer conn.Close()

	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, uint32(id))
	if err := wire.WriteMessage(conn, wire.DetachKill, body); err != nil {
		return err
	}
	typ, resp, err := wire.ReadMessage(conn)
	if err != nil || typ != wire.DetachKill {
		return fmt.Errorf("%s", cat.T(i18n.ErrProtocolVersion))
	}
	fmt.Println(string(resp))
	return nil
}

func requireTTY() error {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("stdin is not a tty")
	}
	return nil
}

func doNewSession(cat *i18n.Catalog) error {
	if err := requireTTY(); err != nil {
		return err
	}
	conn, err := dialDaemon()
	if err != nil {
		return err
	}

	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		cols, rows = 80, 24
	}
	binds := loadKeybinds()

	c, err := client.NewSession(conn, logx.New("muxkit", ""), binds, rows, cols)
	if err != nil {
		conn.Close()
		return err
	}
	c.Run()
	return nil
}

func doAttach(cat *i18n.Catalog, idStr string) error {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return fmt.Errorf("invalid session id %q", idStr)
	}
	if err := requireTTY(); err != nil {
		return err
	}
	conn, err := dialDaemon()
	if err != nil {
		return err
	}

	cols, rows, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		cols, rows = 80, 24
	}
	binds := loadKeybinds()

	c, err := client.AttachExisting(conn, logx.New("muxkit", ""), binds, id, rows, cols)
	if err != nil {
		conn.Close()
		return err
	}
	if c == nil {
		// S5: attach-not-found; print localized failure and exit 0.
		conn.Close()
		fmt.Println(cat.T(i18n.AttachFailed))
		return nil
	}
	c.Run()
	return nil
}

func loadKeybinds() config.Keybinds {
	dir, err := sockpath.Dir()
	if err != nil {
		return config.Default()
	}
	binds, err := config.Load(dir + "/keybinds.yaml")
	if err != nil {
		return config.Default()
	}
	return binds
}
