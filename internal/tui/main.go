package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/client"
	"github.com/Vicious806/TrueCircleNewVersion-sub000/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	program := tea.NewProgram(initialModel(serverURL), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initialModel(serverURL string) tea.Model {
	apiClient, err := client.NewAPIClient(serverURL)
	if err != nil {
		return models.NewServerDownModel(err.Error())
	}
	app := &models.App{API: apiClient}

	session, err := client.LoadSession()
	if err != nil || session.Token == "" {
		return models.NewRegisterModel(app)
	}

	apiClient.SetToken(session.Token)
	me, err := apiClient.Me()
	switch {
	case client.IsStatus(err, http.StatusUnauthorized), client.IsStatus(err, http.StatusNotFound):
		apiClient.SetToken("")
		return models.NewRegisterModel(app)
	case err != nil:
		return models.NewServerDownModel(err.Error())
	}

	app.UserID = me.ID
	app.Username = me.Username
	return models.NewMainMeetupModel(app)
}
