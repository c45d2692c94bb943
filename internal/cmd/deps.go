package cmd

import (
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/salmonumbrella/famtree/internal/secrets"
)

var (
	openSecretsStore = secrets.OpenDefault
	envGet           = os.Getenv
	stdoutIsTerminal = isTerminal
	listenAndServe   = func(srv *http.Server) error { return srv.ListenAndServe() }
	runProgram       = func(m tea.Model) error {
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}
)
