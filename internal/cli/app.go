// Package cli implements the interactive shell for operating the
// resilience core: registration, login, dependency status, and the
// operator-facing recovery and diagnostics commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/authguard/internal/auth"
	"github.com/dmitrijs2005/authguard/internal/common"
	"github.com/dmitrijs2005/authguard/internal/server"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in
// tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

type App struct {
	core   *server.App
	reader *bufio.Reader
	out    io.Writer

	userName string
}

func NewApp(core *server.App) *App {
	return &App{
		core:   core,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// Run drives the command loop until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to authguard (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "ag %s> ", a.getStatus())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			fmt.Fprintln(a.out, "Available commands: register, login, status, errors, retry-ai, exit")
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "status":
			a.status()
		case "errors":
			a.errors()
		case "retry-ai":
			a.retryAI(ctx)
		case "exit":
			return
		default:
			fmt.Fprintln(a.out, "Unknown command (type 'help' for commands)")
		}
	}
}

func (a *App) register(ctx context.Context) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	view, err := a.core.Register(ctx, auth.RegisterInput{Username: userName, Secret: string(password)})
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return
	}

	a.userName = view.Username
	fmt.Fprintln(a.out, "Success!")
}

func (a *App) login(ctx context.Context) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	defer common.WipeByteArray(password)

	res, err := a.core.Login(ctx, userName, string(password))
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %v\n", err)
		return
	}

	a.userName = res.User.Username
	fmt.Fprintln(a.out, "Success!")
}

func (a *App) status() {
	avail := a.core.FeatureAvailability()
	fmt.Fprintf(a.out, "style fallback active: %v\n", a.core.StyleFallbackActive())
	fmt.Fprintf(a.out, "ai feature enabled:    %v (model %s)\n", avail.Enabled, avail.Model)
	for category, n := range a.core.CountByCategory() {
		fmt.Fprintf(a.out, "%-8s failures: %d\n", category, n)
	}
}

func (a *App) errors() {
	recs := a.core.RecentErrors(10)
	if len(recs) == 0 {
		fmt.Fprintln(a.out, "No recorded failures")
		return
	}
	for _, r := range recs {
		fmt.Fprintf(a.out, "%s  %-8s  fallback=%v  %s (%s)\n",
			r.At.Format("15:04:05"), r.Category, r.FallbackUsed, r.Message, r.Context)
	}
}

func (a *App) retryAI(ctx context.Context) {
	avail := a.core.RetryAI(ctx)
	fmt.Fprintf(a.out, "ai feature enabled: %v\n", avail.Enabled)
}
