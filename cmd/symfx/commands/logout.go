package commands

import (
	"net/http"

	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "데스크 세션 로그아웃",
	Long: `데스크를 통해 백엔드 세션을 종료합니다. 결과와 관계없이
데스크는 로그인 페이지로 이동시킵니다.

Example:
  go run ./cmd/symfx logout`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	// the redirect to /login is followed, so success is the login page
	if _, err := newDeskClient(cfg, log, deskAddr).call(cmd.Context(), http.MethodPost, "/auth/logout", nil, nil); err != nil {
		PrintError(err.Error())
		return err
	}

	PrintSuccess("Logged out")
	return nil
}
