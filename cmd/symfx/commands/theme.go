package commands

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/wonny/symfx/internal/api/handlers"
)

// themeCmd represents the theme command
var themeCmd = &cobra.Command{
	Use:   "theme [light|dark|toggle]",
	Short: "테마 조회/변경",
	Long: `데스크 테마를 조회하거나 변경합니다.

Example:
  go run ./cmd/symfx theme
  go run ./cmd/symfx theme dark
  go run ./cmd/symfx theme toggle`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	client := newDeskClient(cfg, log, deskAddr)

	var resp handlers.ThemeResponse
	switch {
	case len(args) == 0:
		_, err = client.call(cmd.Context(), http.MethodGet, "/api/theme", nil, &resp)
	case args[0] == "toggle":
		_, err = client.call(cmd.Context(), http.MethodPost, "/api/theme/toggle", struct{}{}, &resp)
	default:
		_, err = client.call(cmd.Context(), http.MethodPut, "/api/theme", handlers.ThemeRequest{Theme: args[0]}, &resp)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintKeyValue("Theme", string(resp.Theme), 6)
	return nil
}
