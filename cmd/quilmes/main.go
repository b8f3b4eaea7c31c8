package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/puroquilmes/quilmes/internal/browser"
	"github.com/puroquilmes/quilmes/internal/config"
	"github.com/puroquilmes/quilmes/internal/tui"
	"github.com/puroquilmes/quilmes/pkg/client"
	"github.com/puroquilmes/quilmes/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Println("quilmes " + version)
		return nil
	case "help", "--help", "-h":
		printHelp(os.Stdout)
		return nil
	case "devserver":
		return runDevserver(args[1:])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", cfg.Home, err)
	}
	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	jar, err := client.OpenFileJar(cfg.CookiePath(), cfg.APIURL)
	if err != nil {
		return err
	}
	c := client.New(cfg.APIURL, jar, cfg.Timeout)
	st := session.New(c)
	ctx := context.Background()

	switch cmd {
	case "":
		return runTUI(c, st, jar, cfg)
	case "viajes":
		return runViajes(ctx, os.Stdout, c)
	case "reservas":
		return runReservas(ctx, os.Stdout, c, st)
	case "ticket":
		return runTicket(ctx, os.Stdout, c, st, cfg.TicketsDir(), args[1:])
	case "cancelar":
		return runCancelar(ctx, os.Stdin, os.Stdout, c, st, args[1:])
	case "logout":
		return runLogout(ctx, os.Stdout, st, jar)
	case "web":
		return browser.Open(cfg.WebURL)
	default:
		printHelp(os.Stderr)
		return fmt.Errorf("comando desconocido: %q", cmd)
	}
}

// setupLogging sends the standard logger to the debug file when QUILMES_DEBUG
// is set and silences it otherwise. The TUI owns the terminal.
func setupLogging(cfg config.Config) (func(), error) {
	if !cfg.Debug {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(cfg.LogPath(), "quilmes")
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	return func() { f.Close() }, nil //nolint:errcheck
}

func runTUI(c *client.Client, st *session.Store, jar *client.FileJar, cfg config.Config) error {
	app := tui.NewApp(c, tui.Options{
		Store:      st,
		Jar:        jar,
		WebURL:     cfg.WebURL,
		TicketsDir: cfg.TicketsDir(),
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout(ctx context.Context, w io.Writer, st *session.Store, jar *client.FileJar) error {
	if jar.Len() == 0 {
		fmt.Fprintln(w, "No había sesión iniciada.")
		return nil
	}
	st.Logout(ctx)
	if err := jar.Clear(); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	fmt.Fprintln(w, "Sesión cerrada.")
	return nil
}

var errNoSession = errors.New("no hay sesión iniciada: abre quilmes y pulsa l para ingresar")
